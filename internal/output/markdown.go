package output

import (
	"strings"

	"github.com/temirov/ctxdoc/internal/types"
)

const (
	markdownFenceCharacter = "`"
	markdownMinimumFence   = 3
)

var markdownHeadingEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
)

// MarkdownRenderer writes the document as CommonMark.
type MarkdownRenderer struct{}

// Format reports the document format produced by the renderer.
func (MarkdownRenderer) Format() string {
	return types.FormatMarkdown
}

// Render builds the Markdown document. Every code block is fenced with a
// backtick run longer than any run inside its content, so content can never
// close the block early.
func (MarkdownRenderer) Render(document Document) ([]byte, error) {
	var builder strings.Builder

	builder.WriteString("# " + escapeMarkdownHeading(DocumentTitle(document.ProjectName)) + "\n\n")
	if document.Summary != nil {
		builder.WriteString(FormatSummaryLine(*document.Summary) + "\n\n")
	}

	builder.WriteString("## " + structureSectionTitle + "\n\n")
	writeFencedBlock(&builder, "", document.Diagram)

	builder.WriteString("## " + filesSectionTitle + "\n\n")
	for _, record := range document.Records {
		builder.WriteString("### " + escapeMarkdownHeading(record.RelativePath) + "\n\n")
		if !record.IsReadable() {
			builder.WriteString("_(" + escapeMarkdownHeading(placeholderText(record)) + ")_\n\n")
			continue
		}
		writeFencedBlock(&builder, record.LanguageHint, record.Content)
	}

	return []byte(builder.String()), nil
}

func writeFencedBlock(builder *strings.Builder, languageHint string, content string) {
	fence := markdownFence(content)
	builder.WriteString(fence + languageHint + "\n")
	builder.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		builder.WriteString("\n")
	}
	builder.WriteString(fence + "\n\n")
}

// markdownFence returns a backtick fence one longer than the longest backtick run in content.
func markdownFence(content string) string {
	longestRun := 0
	currentRun := 0
	for index := 0; index < len(content); index++ {
		if content[index] == '`' {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}
	fenceLength := longestRun + 1
	if fenceLength < markdownMinimumFence {
		fenceLength = markdownMinimumFence
	}
	return strings.Repeat(markdownFenceCharacter, fenceLength)
}

func escapeMarkdownHeading(text string) string {
	return markdownHeadingEscaper.Replace(text)
}
