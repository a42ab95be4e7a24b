// Package config loads ignore files and application configuration.
package config

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ctxdoc/internal/utils"
)

const (
	// listOnlySectionHeader identifies the section listing patterns whose content is not embedded.
	listOnlySectionHeader = "[list-only]"
	// ignoreSectionHeader identifies the section listing ignore patterns.
	ignoreSectionHeader = "[ignore]"

	unreadableIgnoreFileMessage = "Skipping unreadable ignore file"
	unreadableDirectoryMessage  = "Skipping unreadable directory while loading ignore files"
)

// IgnorePatterns holds root-relative patterns gathered from ignore files.
type IgnorePatterns struct {
	Ignore   []string
	ListOnly []string
}

// LoadIgnoreFilePatterns reads a specified ignore file and returns ignore patterns and list-only patterns.
// A missing file yields no patterns and no error.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, []string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil, nil
		}
		return nil, nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	var listOnlyPatterns []string
	currentSectionHeader := ignoreSectionHeader
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
			continue
		}
		if strings.EqualFold(trimmedLine, listOnlySectionHeader) {
			currentSectionHeader = listOnlySectionHeader
			continue
		}
		if strings.EqualFold(trimmedLine, ignoreSectionHeader) {
			currentSectionHeader = ignoreSectionHeader
			continue
		}
		if currentSectionHeader == listOnlySectionHeader {
			listOnlyPatterns = append(listOnlyPatterns, trimmedLine)
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, nil, scanError
	}
	return ignorePatterns, listOnlyPatterns, nil
}

// LoadRecursiveIgnorePatterns walks rootDirectoryPath and aggregates patterns from every
// utils.IgnoreFileName and utils.GitIgnoreFileName found below it. Patterns from nested
// directories are prefixed with that directory's path relative to rootDirectoryPath.
// Only utils.IgnoreFileName may carry a list-only section. Directories for which
// skipDirectory returns true are not visited. Unreadable directories and ignore files
// that cannot be read are logged at warn level and skipped.
func LoadRecursiveIgnorePatterns(rootDirectoryPath string, useGitignore bool, useIgnoreFile bool, skipDirectory func(relativePath string) bool, logger *zap.Logger) (IgnorePatterns, error) {
	var aggregated IgnorePatterns
	if !useGitignore && !useIgnoreFile {
		return aggregated, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	walkFunction := func(currentDirectoryPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			logger.Warn(unreadableDirectoryMessage, zap.String("path", currentDirectoryPath), zap.Error(walkError))
			if directoryEntry == nil || directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !directoryEntry.IsDir() {
			return nil
		}

		relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, rootDirectoryPath)
		if relativeDirectory != "." && skipDirectory != nil && skipDirectory(relativeDirectory) {
			return filepath.SkipDir
		}
		prefix := ""
		if relativeDirectory != "." {
			prefix = relativeDirectory + "/"
		}

		if useIgnoreFile {
			ignorePatterns, listOnlyPatterns := loadIgnoreFileOrWarn(filepath.Join(currentDirectoryPath, utils.IgnoreFileName), logger)
			aggregated.Ignore = append(aggregated.Ignore, prefixPatterns(prefix, ignorePatterns)...)
			aggregated.ListOnly = append(aggregated.ListOnly, prefixPatterns(prefix, listOnlyPatterns)...)
		}

		if useGitignore {
			gitIgnorePatterns, _ := loadIgnoreFileOrWarn(filepath.Join(currentDirectoryPath, utils.GitIgnoreFileName), logger)
			aggregated.Ignore = append(aggregated.Ignore, prefixPatterns(prefix, gitIgnorePatterns)...)
		}

		return nil
	}

	if walkError := filepath.WalkDir(rootDirectoryPath, walkFunction); walkError != nil {
		return IgnorePatterns{}, fmt.Errorf("walking %s for ignore files: %w", rootDirectoryPath, walkError)
	}

	aggregated.Ignore = utils.DeduplicatePatterns(aggregated.Ignore)
	aggregated.ListOnly = utils.DeduplicatePatterns(aggregated.ListOnly)
	return aggregated, nil
}

// loadIgnoreFileOrWarn contributes no patterns when the ignore file cannot be read.
func loadIgnoreFileOrWarn(ignoreFilePath string, logger *zap.Logger) ([]string, []string) {
	ignorePatterns, listOnlyPatterns, loadError := LoadIgnoreFilePatterns(ignoreFilePath)
	if loadError != nil {
		logger.Warn(unreadableIgnoreFileMessage, zap.String("path", ignoreFilePath), zap.Error(loadError))
		return nil, nil
	}
	return ignorePatterns, listOnlyPatterns
}

// prefixPatterns anchors patterns to the directory that declared them.
// Negations are not supported and are dropped.
func prefixPatterns(prefix string, patterns []string) []string {
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		result = append(result, prefix+strings.TrimPrefix(pattern, "/"))
	}
	return result
}
