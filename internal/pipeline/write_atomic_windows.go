//go:build windows

package pipeline

import (
	"os"
	"path/filepath"
)

// writeFileAtomically writes through a temporary file in the destination directory.
func writeFileAtomically(outputPath string, data []byte) error {
	temporaryFile, createError := os.CreateTemp(filepath.Dir(outputPath), ".ctxdoc-*")
	if createError != nil {
		return createError
	}
	temporaryPath := temporaryFile.Name()
	if _, writeError := temporaryFile.Write(data); writeError != nil {
		_ = temporaryFile.Close()
		_ = os.Remove(temporaryPath)
		return writeError
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		_ = os.Remove(temporaryPath)
		return closeError
	}
	if renameError := os.Rename(temporaryPath, outputPath); renameError != nil {
		_ = os.Remove(temporaryPath)
		return renameError
	}
	return nil
}
