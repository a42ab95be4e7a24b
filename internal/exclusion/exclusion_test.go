package exclusion_test

import (
	"testing"

	"github.com/temirov/ctxdoc/internal/exclusion"
)

func TestShouldTraverse(t *testing.T) {
	policy := exclusion.NewPolicy(exclusion.DefaultRules().WithIgnorePatterns("node_modules/", "*.log"))

	testCases := []struct {
		name         string
		relativePath string
		isDirectory  bool
		expected     bool
	}{
		{name: "git directory", relativePath: ".git", isDirectory: true, expected: false},
		{name: "nested git directory", relativePath: "vendor/lib/.git", isDirectory: true, expected: false},
		{name: "mercurial directory", relativePath: ".hg", isDirectory: true, expected: false},
		{name: "gitignore file", relativePath: ".gitignore", isDirectory: false, expected: false},
		{name: "gitattributes nested", relativePath: "sub/.gitattributes", isDirectory: false, expected: false},
		{name: "dotfile is listed", relativePath: ".env.example", isDirectory: false, expected: true},
		{name: "dot directory is listed", relativePath: ".github", isDirectory: true, expected: true},
		{name: "submodule git file", relativePath: "docs/.git", isDirectory: false, expected: false},
		{name: "ignored directory pattern", relativePath: "web/node_modules", isDirectory: true, expected: false},
		{name: "ignored file pattern", relativePath: "logs/app.log", isDirectory: false, expected: false},
		{name: "regular source", relativePath: "src/a.py", isDirectory: false, expected: true},
		{name: "image is listed", relativePath: "image.png", isDirectory: false, expected: true},
		{name: "git-prefixed ci file is listed", relativePath: ".gitlab-ci.yml", isDirectory: false, expected: true},
		{name: "blame ignore revs is listed", relativePath: ".git-blame-ignore-revs", isDirectory: false, expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := policy.ShouldTraverse(testCase.relativePath, testCase.isDirectory); actual != testCase.expected {
				t.Fatalf("ShouldTraverse(%q, %t) = %t, want %t", testCase.relativePath, testCase.isDirectory, actual, testCase.expected)
			}
		})
	}
}

func TestShouldEmbedContent(t *testing.T) {
	policy := exclusion.NewPolicy(exclusion.DefaultRules())

	testCases := []struct {
		relativePath  string
		expected      bool
		expectedClass exclusion.ExtensionClass
	}{
		{relativePath: "image.png", expected: false, expectedClass: exclusion.ClassImage},
		{relativePath: "assets/LOGO.PNG", expected: false, expectedClass: exclusion.ClassImage},
		{relativePath: "song.flac", expected: false, expectedClass: exclusion.ClassAudio},
		{relativePath: "clip.mkv", expected: false, expectedClass: exclusion.ClassVideo},
		{relativePath: "manual.pdf", expected: false, expectedClass: exclusion.ClassDocument},
		{relativePath: "release.tar", expected: false, expectedClass: exclusion.ClassArchive},
		{relativePath: "module.pyc", expected: false, expectedClass: exclusion.ClassCompiled},
		{relativePath: "data.sqlite3", expected: false, expectedClass: exclusion.ClassDatabase},
		{relativePath: "src/a.py", expected: true},
		{relativePath: "Makefile", expected: true},
		{relativePath: "notes.unknownext", expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.relativePath, func(t *testing.T) {
			if actual := policy.ShouldEmbedContent(testCase.relativePath); actual != testCase.expected {
				t.Fatalf("ShouldEmbedContent(%q) = %t, want %t", testCase.relativePath, actual, testCase.expected)
			}
			class, _ := policy.ExtensionClass(testCase.relativePath)
			if class != testCase.expectedClass {
				t.Fatalf("ExtensionClass(%q) = %q, want %q", testCase.relativePath, class, testCase.expectedClass)
			}
		})
	}
}

func TestDefaultRulesAreIndependentCopies(t *testing.T) {
	first := exclusion.DefaultRules()
	first.DirectoryNames[0] = "mutated"
	first.ExtensionClasses[exclusion.ClassImage][0] = ".mutated"

	second := exclusion.DefaultRules()
	policy := exclusion.NewPolicy(second)
	if policy.ShouldTraverse(".git", true) {
		t.Fatalf("mutating one rule set leaked into another")
	}
	if policy.ShouldEmbedContent("photo.jpg") {
		t.Fatalf("mutating extension classes leaked into another rule set")
	}
}

func TestListOnlyPatternsSuppressContent(t *testing.T) {
	policy := exclusion.NewPolicy(exclusion.DefaultRules().WithListOnlyPatterns("fixtures/", "*.lock"))

	if !policy.ShouldTraverse("fixtures/sample.json", false) {
		t.Fatalf("list-only files must remain in the tree")
	}
	if policy.ShouldEmbedContent("fixtures/sample.json") {
		t.Fatalf("expected fixtures content to be suppressed")
	}
	if policy.ShouldEmbedContent("go.lock") {
		t.Fatalf("expected lock file content to be suppressed")
	}
	if !policy.ShouldEmbedContent("main.go") {
		t.Fatalf("expected main.go content to be embedded")
	}
}

func TestExcludedFilePathsMatchExactly(t *testing.T) {
	policy := exclusion.NewPolicy(exclusion.DefaultRules().WithExcludedFilePaths("docs/[draft]_context.md"))

	testCases := []struct {
		name         string
		relativePath string
		isDirectory  bool
		expected     bool
	}{
		{name: "excluded path", relativePath: "docs/[draft]_context.md", expected: false},
		{name: "glob characters are literal", relativePath: "docs/d_context.md", expected: true},
		{name: "same name elsewhere", relativePath: "[draft]_context.md", expected: true},
		{name: "directory with the same path", relativePath: "docs/[draft]_context.md", isDirectory: true, expected: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := policy.ShouldTraverse(testCase.relativePath, testCase.isDirectory); actual != testCase.expected {
				t.Fatalf("ShouldTraverse(%q, %t) = %t, want %t", testCase.relativePath, testCase.isDirectory, actual, testCase.expected)
			}
		})
	}
}
