//go:build !windows

package pipeline

import "github.com/google/renameio/v2"

func writeFileAtomically(outputPath string, data []byte) error {
	return renameio.WriteFile(outputPath, data, 0o644)
}
