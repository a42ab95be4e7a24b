package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/ctxdoc/internal/types"
)

const (
	outputFileNameFormat       = "%s_context.%s"
	errorCreateDirectoryFormat = "%w: creating directory %s: %w"
	errorWriteFileFormat       = "%w: writing %s: %w"
)

// ResolveOutputPath derives the document path. An empty path names
// <project>_context.<ext> in the working directory. An existing directory or a
// path ending in a separator receives that file name inside it. Any other path
// is used as a file path, gaining the format extension unless it already ends
// with it.
func ResolveOutputPath(outputPath string, projectName string, format string) string {
	extension := types.ExtensionForFormat(format)
	defaultFileName := fmt.Sprintf(outputFileNameFormat, projectName, extension)
	if outputPath == "" {
		return defaultFileName
	}
	if strings.HasSuffix(outputPath, "/") || strings.HasSuffix(outputPath, string(os.PathSeparator)) {
		return filepath.Join(outputPath, defaultFileName)
	}
	if info, statError := os.Stat(outputPath); statError == nil && info.IsDir() {
		return filepath.Join(outputPath, defaultFileName)
	}
	if !strings.EqualFold(filepath.Ext(outputPath), "."+extension) {
		return outputPath + "." + extension
	}
	return outputPath
}

// WriteOutput persists data at outputPath, creating parent directories. The
// file is replaced atomically so a failed write leaves no partial document.
func WriteOutput(outputPath string, data []byte) error {
	parentDirectory := filepath.Dir(outputPath)
	if makeDirError := os.MkdirAll(parentDirectory, 0o755); makeDirError != nil {
		return fmt.Errorf(errorCreateDirectoryFormat, ErrOutputWrite, parentDirectory, makeDirError)
	}
	if writeError := writeFileAtomically(outputPath, data); writeError != nil {
		return fmt.Errorf(errorWriteFileFormat, ErrOutputWrite, outputPath, writeError)
	}
	return nil
}
