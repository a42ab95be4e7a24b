// Package commands contains the core logic for data collection: building the
// filtered project tree and collecting the content of its files.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ctxdoc/internal/exclusion"
	"github.com/temirov/ctxdoc/internal/types"
	"github.com/temirov/ctxdoc/internal/utils"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorStatRootFormat is used when the root directory cannot be inspected.
	errorStatRootFormat = "inspecting root %s: %w"
	// errorRootNotDirectoryFormat is used when the root path is not a directory.
	errorRootNotDirectoryFormat = "root %s is not a directory"

	warningReadDirectoryMessage = "Skipping contents of unreadable directory"
	warningStatPathMessage      = "Skipping entry that cannot be inspected"
	warningSymlinkCycleMessage  = "Skipping symbolic link that revisits an ancestor directory"
	debugExcludedPathMessage    = "Excluded path"
)

// TreeBuilder builds the filtered in-memory mirror of a project directory.
type TreeBuilder struct {
	Policy *exclusion.Policy
	Logger *zap.Logger
}

// Build walks rootDirectoryPath depth first and returns the project tree.
// Children are ordered directories first, then files, each group sorted
// case-insensitively by name. A directory that cannot be listed is kept as an
// empty node. A symbolic link whose target is already on the traversal stack is
// skipped.
func (treeBuilder *TreeBuilder) Build(rootDirectoryPath string, projectName string) (*types.ProjectTree, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}
	rootInfo, statError := os.Stat(absoluteRootPath)
	if statError != nil {
		return nil, fmt.Errorf(errorStatRootFormat, absoluteRootPath, statError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorRootNotDirectoryFormat, absoluteRootPath)
	}
	if projectName == "" {
		projectName = filepath.Base(absoluteRootPath)
	}

	walker := treeWalker{
		policy:    treeBuilder.Policy,
		logger:    treeBuilder.Logger,
		ancestors: make(map[string]struct{}),
	}
	if walker.policy == nil {
		walker.policy = exclusion.NewPolicy(exclusion.DefaultRules())
	}
	if walker.logger == nil {
		walker.logger = zap.NewNop()
	}

	rootEntry := &types.PathEntry{
		Name:         projectName,
		RelativePath: ".",
		IsDirectory:  true,
	}
	canonicalRoot, canonicalError := filepath.EvalSymlinks(absoluteRootPath)
	if canonicalError != nil {
		canonicalRoot = absoluteRootPath
	}
	walker.ancestors[canonicalRoot] = struct{}{}
	rootEntry.Children = walker.buildChildren(absoluteRootPath, ".", 1)

	return &types.ProjectTree{
		Root:        rootEntry,
		ProjectName: projectName,
		RootPath:    absoluteRootPath,
	}, nil
}

type treeWalker struct {
	policy    *exclusion.Policy
	logger    *zap.Logger
	ancestors map[string]struct{}
}

func (walker *treeWalker) buildChildren(directoryPath string, relativeDirectory string, depth int) []*types.PathEntry {
	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		walker.logger.Warn(warningReadDirectoryMessage, zap.String("path", directoryPath), zap.Error(readDirectoryError))
		return nil
	}

	var directories []*types.PathEntry
	var files []*types.PathEntry
	for _, directoryEntry := range directoryEntries {
		childPath := filepath.Join(directoryPath, directoryEntry.Name())
		relativeChildPath := utils.JoinRelativePath(relativeDirectory, directoryEntry.Name())

		childInfo, statError := os.Stat(childPath)
		if statError != nil {
			walker.logger.Warn(warningStatPathMessage, zap.String("path", childPath), zap.Error(statError))
			continue
		}
		isDirectory := childInfo.IsDir()
		if !walker.policy.ShouldTraverse(relativeChildPath, isDirectory) {
			walker.logger.Debug(debugExcludedPathMessage, zap.String("path", relativeChildPath))
			continue
		}

		entry := &types.PathEntry{
			Name:         directoryEntry.Name(),
			RelativePath: relativeChildPath,
			IsDirectory:  isDirectory,
			Depth:        depth,
		}
		if !isDirectory {
			entry.SizeBytes = childInfo.Size()
			files = append(files, entry)
			continue
		}

		canonicalPath, canonicalError := filepath.EvalSymlinks(childPath)
		if canonicalError != nil {
			canonicalPath = childPath
		}
		if _, onStack := walker.ancestors[canonicalPath]; onStack {
			walker.logger.Warn(warningSymlinkCycleMessage, zap.String("path", childPath), zap.String("target", canonicalPath))
			continue
		}
		walker.ancestors[canonicalPath] = struct{}{}
		entry.Children = walker.buildChildren(childPath, relativeChildPath, depth+1)
		delete(walker.ancestors, canonicalPath)
		directories = append(directories, entry)
	}

	sortEntries(directories)
	sortEntries(files)
	return append(directories, files...)
}

// sortEntries orders entries case-insensitively by name, breaking ties byte-wise.
func sortEntries(entries []*types.PathEntry) {
	sort.Slice(entries, func(leftIndex, rightIndex int) bool {
		leftName := entries[leftIndex].Name
		rightName := entries[rightIndex].Name
		leftFolded := strings.ToLower(leftName)
		rightFolded := strings.ToLower(rightName)
		if leftFolded != rightFolded {
			return leftFolded < rightFolded
		}
		return leftName < rightName
	})
}
