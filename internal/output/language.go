package output

import (
	"path"
	"strings"
)

var languageHintsByExtension = map[string]string{
	"py":    "python",
	"js":    "javascript",
	"jsx":   "jsx",
	"ts":    "typescript",
	"tsx":   "tsx",
	"html":  "html",
	"css":   "css",
	"c":     "c",
	"h":     "c",
	"cpp":   "cpp",
	"hpp":   "cpp",
	"cs":    "csharp",
	"java":  "java",
	"rb":    "ruby",
	"php":   "php",
	"go":    "go",
	"rs":    "rust",
	"sh":    "bash",
	"bash":  "bash",
	"md":    "markdown",
	"json":  "json",
	"xml":   "xml",
	"yaml":  "yaml",
	"yml":   "yaml",
	"toml":  "toml",
	"sql":   "sql",
	"kt":    "kotlin",
	"swift": "swift",
	"dart":  "dart",
	"r":     "r",
	"jl":    "julia",
	"pl":    "perl",
	"lua":   "lua",
	"ex":    "elixir",
	"exs":   "elixir",
}

// LanguageHint returns the code-fence language for a file path based on its
// extension. Unknown extensions yield an empty hint, meaning plain text.
func LanguageHint(relativePath string) string {
	extension := strings.ToLower(strings.TrimPrefix(path.Ext(relativePath), "."))
	return languageHintsByExtension[extension]
}
