// Package types defines every cross‑package data structure used by the ctxdoc CLI.
package types

const (
	FormatPDF      = "pdf"
	FormatMarkdown = "md"

	ExtensionPDF      = "pdf"
	ExtensionMarkdown = "md"
)

// UnreadableReason explains why a FileRecord carries no content.
type UnreadableReason string

const (
	ReasonNone        UnreadableReason = ""
	ReasonBinary      UnreadableReason = "BINARY"
	ReasonDecodeError UnreadableReason = "DECODE_ERROR"
	ReasonIOError     UnreadableReason = "IO_ERROR"
	ReasonEmpty       UnreadableReason = "EMPTY"
)

// PathEntry is one filesystem node of a ProjectTree.
type PathEntry struct {
	Name         string
	RelativePath string
	IsDirectory  bool
	Children     []*PathEntry
	Depth        int
	SizeBytes    int64
}

// ProjectTree is the filtered in-memory mirror of a project directory.
type ProjectTree struct {
	Root        *PathEntry
	ProjectName string
	RootPath    string
}

// Files returns the file leaves of the tree in depth-first order.
func (tree *ProjectTree) Files() []*PathEntry {
	if tree == nil || tree.Root == nil {
		return nil
	}
	var files []*PathEntry
	var visit func(entry *PathEntry)
	visit = func(entry *PathEntry) {
		for _, child := range entry.Children {
			if child.IsDirectory {
				visit(child)
				continue
			}
			files = append(files, child)
		}
	}
	visit(tree.Root)
	return files
}

// FileRecord is the collected content of one embedded file.
// Exactly one of Content and UnreadableReason is meaningful.
type FileRecord struct {
	RelativePath     string
	LanguageHint     string
	Content          string
	UnreadableReason UnreadableReason
	Detail           string
	SizeBytes        int64
	Tokens           int
}

// IsReadable reports whether the record carries content.
func (record FileRecord) IsReadable() bool {
	return record.UnreadableReason == ReasonNone
}

// DocumentSummary captures aggregate information printed under the document title.
type DocumentSummary struct {
	TotalFiles  int
	TotalSize   string
	TotalTokens int
	Model       string
}

// ExtensionForFormat returns the file extension used for a document format.
func ExtensionForFormat(format string) string {
	if format == FormatMarkdown {
		return ExtensionMarkdown
	}
	return ExtensionPDF
}
