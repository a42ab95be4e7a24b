// Package output renders the project tree diagram and the final context
// document in Markdown or PDF form.
package output

import (
	"fmt"

	"github.com/temirov/ctxdoc/internal/types"
	"github.com/temirov/ctxdoc/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
	treeDirectorySuffix = "/"

	documentTitleFormat     = "Project Context: %s"
	structureSectionTitle   = "Project Structure"
	filesSectionTitle       = "Project Files"
	placeholderFormat       = "%s: %s"
	summaryLineFormat       = "Summary: %d %s, %s%s%s"
	summaryTokensFormat     = ", %d tokens"
	summaryModelFormat      = " (model: %s)"
	summarySingleFileLabel  = "file"
	summaryPluralFilesLabel = "files"
)

// Document is the complete input of a DocumentRenderer.
type Document struct {
	Tree        *types.ProjectTree
	Diagram     string
	Records     []types.FileRecord
	ProjectName string
	// Summary is printed under the title when set.
	Summary *types.DocumentSummary
}

// DocumentTitle returns the heading text of the document.
func DocumentTitle(projectName string) string {
	return fmt.Sprintf(documentTitleFormat, projectName)
}

// Summarize aggregates the listed files of tree and the token counts of records.
func Summarize(tree *types.ProjectTree, records []types.FileRecord, model string) types.DocumentSummary {
	var totalBytes int64
	files := tree.Files()
	for _, fileEntry := range files {
		totalBytes += fileEntry.SizeBytes
	}
	var totalTokens int
	for _, record := range records {
		totalTokens += record.Tokens
	}
	summary := types.DocumentSummary{
		TotalFiles:  len(files),
		TotalSize:   utils.FormatFileSize(totalBytes),
		TotalTokens: totalTokens,
	}
	if totalTokens > 0 {
		summary.Model = model
	}
	return summary
}

// FormatSummaryLine formats a DocumentSummary into the summary line.
func FormatSummaryLine(summary types.DocumentSummary) string {
	label := summaryPluralFilesLabel
	if summary.TotalFiles == 1 {
		label = summarySingleFileLabel
	}
	extra := ""
	if summary.TotalTokens > 0 {
		extra = fmt.Sprintf(summaryTokensFormat, summary.TotalTokens)
	}
	modelSuffix := ""
	if summary.Model != "" {
		modelSuffix = fmt.Sprintf(summaryModelFormat, summary.Model)
	}
	return fmt.Sprintf(summaryLineFormat, summary.TotalFiles, label, summary.TotalSize, extra, modelSuffix)
}

// placeholderText describes why a record carries no content.
func placeholderText(record types.FileRecord) string {
	if record.Detail == "" {
		return string(record.UnreadableReason)
	}
	return fmt.Sprintf(placeholderFormat, record.UnreadableReason, record.Detail)
}
