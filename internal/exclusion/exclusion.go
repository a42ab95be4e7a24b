// Package exclusion decides which project paths are listed and which files have their content embedded.
package exclusion

import (
	"path"
	"strings"

	"github.com/temirov/ctxdoc/internal/utils"
)

// ExtensionClass names a closed category of file extensions that are never embedded.
type ExtensionClass string

const (
	ClassImage    ExtensionClass = "image"
	ClassAudio    ExtensionClass = "audio"
	ClassVideo    ExtensionClass = "video"
	ClassDocument ExtensionClass = "document"
	ClassArchive  ExtensionClass = "archive"
	ClassCompiled ExtensionClass = "compiled"
	ClassDatabase ExtensionClass = "database"
)

var defaultExtensionClasses = map[ExtensionClass][]string{
	ClassImage:    {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".ico", ".webp", ".tif", ".tiff"},
	ClassAudio:    {".mp3", ".wav", ".ogg", ".flac", ".aac", ".m4a"},
	ClassVideo:    {".mp4", ".avi", ".mov", ".mkv", ".webm", ".wmv"},
	ClassDocument: {".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".odt", ".ods", ".odp"},
	ClassArchive:  {".zip", ".tar", ".gz", ".tgz", ".bz2", ".xz", ".7z", ".rar", ".jar", ".war"},
	ClassCompiled: {".pyc", ".pyo", ".pyd", ".so", ".dll", ".exe", ".dylib", ".o", ".a", ".class", ".wasm", ".bin"},
	ClassDatabase: {".db", ".sqlite", ".sqlite3"},
}

var defaultDirectoryNames = []string{
	utils.GitDirectoryName,
	".hg",
	".svn",
	".bzr",
	"_darcs",
	"CVS",
}

var defaultFileNames = []string{
	utils.GitDirectoryName,
	utils.GitIgnoreFileName,
	utils.IgnoreFileName,
	".gitattributes",
	".gitmodules",
	".gitkeep",
}

// Rules is the static exclusion configuration for one run.
type Rules struct {
	// DirectoryNames are never traversed; their subtrees are invisible.
	DirectoryNames []string
	// FileNames are never listed.
	FileNames []string
	// FilePaths are root-relative, forward-slash file paths that are never listed.
	FilePaths []string
	// ExtensionClasses list extensions whose content is never embedded.
	ExtensionClasses map[ExtensionClass][]string
	// IgnorePatterns are root-relative patterns in ignore-file syntax; matching paths are not traversed.
	IgnorePatterns []string
	// ListOnlyPatterns are root-relative patterns whose matching files are listed without content.
	ListOnlyPatterns []string
}

// DefaultRules returns the built-in exclusion configuration.
func DefaultRules() Rules {
	extensionClasses := make(map[ExtensionClass][]string, len(defaultExtensionClasses))
	for class, extensions := range defaultExtensionClasses {
		extensionClasses[class] = append([]string(nil), extensions...)
	}
	return Rules{
		DirectoryNames:   append([]string(nil), defaultDirectoryNames...),
		FileNames:        append([]string(nil), defaultFileNames...),
		ExtensionClasses: extensionClasses,
	}
}

// WithIgnorePatterns returns a copy of the rules with additional ignore patterns appended.
func (rules Rules) WithIgnorePatterns(patterns ...string) Rules {
	result := rules
	result.IgnorePatterns = utils.DeduplicatePatterns(append(append([]string(nil), rules.IgnorePatterns...), patterns...))
	return result
}

// WithListOnlyPatterns returns a copy of the rules with additional list-only patterns appended.
func (rules Rules) WithListOnlyPatterns(patterns ...string) Rules {
	result := rules
	result.ListOnlyPatterns = utils.DeduplicatePatterns(append(append([]string(nil), rules.ListOnlyPatterns...), patterns...))
	return result
}

// WithExcludedFilePaths returns a copy of the rules that never lists the given root-relative files.
func (rules Rules) WithExcludedFilePaths(relativePaths ...string) Rules {
	result := rules
	result.FilePaths = utils.DeduplicatePatterns(append(append([]string(nil), rules.FilePaths...), relativePaths...))
	return result
}

// Policy is an immutable, precompiled view of Rules.
// It is safe for concurrent use.
type Policy struct {
	directoryNames   map[string]struct{}
	fileNames        map[string]struct{}
	filePaths        map[string]struct{}
	extensions       map[string]ExtensionClass
	ignorePatterns   []string
	listOnlyPatterns []string
}

// NewPolicy compiles rules into a Policy.
func NewPolicy(rules Rules) *Policy {
	policy := &Policy{
		directoryNames:   make(map[string]struct{}, len(rules.DirectoryNames)),
		fileNames:        make(map[string]struct{}, len(rules.FileNames)),
		filePaths:        make(map[string]struct{}, len(rules.FilePaths)),
		extensions:       make(map[string]ExtensionClass),
		ignorePatterns:   append([]string(nil), rules.IgnorePatterns...),
		listOnlyPatterns: append([]string(nil), rules.ListOnlyPatterns...),
	}
	for _, directoryName := range rules.DirectoryNames {
		policy.directoryNames[directoryName] = struct{}{}
	}
	for _, fileName := range rules.FileNames {
		policy.fileNames[fileName] = struct{}{}
	}
	for _, filePath := range rules.FilePaths {
		policy.filePaths[path.Clean(filePath)] = struct{}{}
	}
	for class, extensions := range rules.ExtensionClasses {
		for _, extension := range extensions {
			normalized := strings.ToLower(strings.TrimSpace(extension))
			if normalized == "" {
				continue
			}
			if !strings.HasPrefix(normalized, ".") {
				normalized = "." + normalized
			}
			policy.extensions[normalized] = class
		}
	}
	return policy
}

// ShouldTraverse reports whether the root-relative, forward-slash path appears in the tree at all.
// Directories answering false are not descended into.
func (policy *Policy) ShouldTraverse(relativePath string, isDirectory bool) bool {
	name := path.Base(relativePath)
	if isDirectory {
		if _, excluded := policy.directoryNames[name]; excluded {
			return false
		}
	} else {
		if _, excluded := policy.fileNames[name]; excluded {
			return false
		}
		if _, excluded := policy.filePaths[relativePath]; excluded {
			return false
		}
	}
	return !utils.ShouldIgnoreByPath(relativePath, policy.ignorePatterns)
}

// ShouldEmbedContent reports whether a listed file's content belongs in the document.
func (policy *Policy) ShouldEmbedContent(relativePath string) bool {
	if _, excluded := policy.ExtensionClass(relativePath); excluded {
		return false
	}
	return !utils.ShouldIgnoreByPath(relativePath, policy.listOnlyPatterns)
}

// ExtensionClass returns the excluded class matching the file's extension, if any.
// Matching is case-insensitive; unknown extensions are not excluded.
func (policy *Policy) ExtensionClass(relativePath string) (ExtensionClass, bool) {
	extension := strings.ToLower(path.Ext(relativePath))
	if extension == "" {
		return "", false
	}
	class, found := policy.extensions[extension]
	return class, found
}
