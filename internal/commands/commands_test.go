package commands_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/ctxdoc/internal/commands"
	"github.com/temirov/ctxdoc/internal/exclusion"
	"github.com/temirov/ctxdoc/internal/types"
)

type runeCounter struct{}

func (runeCounter) Name() string { return "runes" }

func (runeCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

// writeFixture creates every file in files under rootDirectory, creating parents as needed.
func writeFixture(testingHandle *testing.T, rootDirectory string, files map[string]string) {
	testingHandle.Helper()
	for relativePath, content := range files {
		absolutePath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		if makeDirError := os.MkdirAll(filepath.Dir(absolutePath), 0o755); makeDirError != nil {
			testingHandle.Fatalf("mkdir %s: %v", filepath.Dir(absolutePath), makeDirError)
		}
		if writeError := os.WriteFile(absolutePath, []byte(content), 0o644); writeError != nil {
			testingHandle.Fatalf("write %s: %v", absolutePath, writeError)
		}
	}
}

// collectPaths flattens the tree into relative paths in depth-first order.
func collectPaths(entry *types.PathEntry) []string {
	var paths []string
	for _, child := range entry.Children {
		paths = append(paths, child.RelativePath)
		if child.IsDirectory {
			paths = append(paths, collectPaths(child)...)
		}
	}
	return paths
}

func buildTree(testingHandle *testing.T, rootDirectory string, rules exclusion.Rules, logger *zap.Logger) *types.ProjectTree {
	testingHandle.Helper()
	builder := commands.TreeBuilder{Policy: exclusion.NewPolicy(rules), Logger: logger}
	tree, buildError := builder.Build(rootDirectory, "")
	if buildError != nil {
		testingHandle.Fatalf("Build error: %v", buildError)
	}
	return tree
}

func TestBuildOrdersDirectoriesFirstCaseInsensitive(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{
		"b.txt":          "b",
		"A.txt":          "a",
		"zeta/inner.txt": "z",
		"Alpha/one.txt":  "1",
		"c.md":           "c",
	})

	tree := buildTree(testingHandle, rootDirectory, exclusion.DefaultRules(), nil)

	expected := []string{"Alpha", "Alpha/one.txt", "zeta", "zeta/inner.txt", "A.txt", "b.txt", "c.md"}
	if got := collectPaths(tree.Root); !reflect.DeepEqual(got, expected) {
		testingHandle.Fatalf("unexpected order: got %v want %v", got, expected)
	}
	if tree.ProjectName != filepath.Base(rootDirectory) {
		testingHandle.Fatalf("expected default project name %s, got %s", filepath.Base(rootDirectory), tree.ProjectName)
	}
	if tree.Root.Children[1].Children[0].Depth != 2 {
		testingHandle.Fatalf("expected nested file depth 2, got %d", tree.Root.Children[1].Children[0].Depth)
	}
}

func TestBuildExcludesVersionControlAndIgnoredPaths(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{
		".git/config":          "[core]",
		".git/objects/ab/cdef": "blob",
		".gitignore":           "dist/",
		".env":                 "SECRET=1",
		"dist/bundle.js":       "x",
		"src/main.go":          "package main",
		"src/image.png":        "png",
	})

	rules := exclusion.DefaultRules().WithIgnorePatterns("dist/")
	tree := buildTree(testingHandle, rootDirectory, rules, nil)

	expected := []string{"src", "src/image.png", "src/main.go", ".env"}
	if got := collectPaths(tree.Root); !reflect.DeepEqual(got, expected) {
		testingHandle.Fatalf("unexpected paths: got %v want %v", got, expected)
	}
}

func TestBuildEmptyDirectory(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	builder := commands.TreeBuilder{}
	tree, buildError := builder.Build(rootDirectory, "empty-project")
	if buildError != nil {
		testingHandle.Fatalf("Build error: %v", buildError)
	}
	if tree.ProjectName != "empty-project" || tree.Root.Name != "empty-project" {
		testingHandle.Fatalf("unexpected project name: %+v", tree)
	}
	if len(tree.Root.Children) != 0 {
		testingHandle.Fatalf("expected no children, got %d", len(tree.Root.Children))
	}
}

func TestBuildRejectsInvalidRoot(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	filePath := filepath.Join(rootDirectory, "file.txt")
	writeFixture(testingHandle, rootDirectory, map[string]string{"file.txt": "x"})

	builder := commands.TreeBuilder{}
	if _, buildError := builder.Build(filePath, ""); buildError == nil {
		testingHandle.Fatalf("expected error for file root")
	}
	if _, buildError := builder.Build(filepath.Join(rootDirectory, "missing"), ""); buildError == nil {
		testingHandle.Fatalf("expected error for missing root")
	}
}

func TestBuildSkipsSymlinkCycles(testingHandle *testing.T) {
	if runtime.GOOS == "windows" {
		testingHandle.Skip("symbolic links require privileges on windows")
	}
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{
		"shared/lib.txt": "lib",
		"app/main.txt":   "main",
	})
	if linkError := os.Symlink(rootDirectory, filepath.Join(rootDirectory, "app", "loop")); linkError != nil {
		testingHandle.Fatalf("symlink: %v", linkError)
	}
	if linkError := os.Symlink(filepath.Join(rootDirectory, "shared"), filepath.Join(rootDirectory, "app", "linked")); linkError != nil {
		testingHandle.Fatalf("symlink: %v", linkError)
	}

	observedCore, observedLogs := observer.New(zapcore.WarnLevel)
	tree := buildTree(testingHandle, rootDirectory, exclusion.DefaultRules(), zap.New(observedCore))

	expected := []string{"app", "app/linked", "app/linked/lib.txt", "app/main.txt", "shared", "shared/lib.txt"}
	if got := collectPaths(tree.Root); !reflect.DeepEqual(got, expected) {
		testingHandle.Fatalf("unexpected paths: got %v want %v", got, expected)
	}
	cycleWarnings := observedLogs.FilterMessageSnippet("revisits an ancestor").All()
	if len(cycleWarnings) != 1 {
		testingHandle.Fatalf("expected one cycle warning, got %d", len(cycleWarnings))
	}
}

func TestBuildKeepsUnreadableDirectoryAsEmptyNode(testingHandle *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		testingHandle.Skip("permission bits are not enforced for this user")
	}
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{
		"locked/secret.txt": "s",
		"open.txt":          "o",
	})
	lockedPath := filepath.Join(rootDirectory, "locked")
	if chmodError := os.Chmod(lockedPath, 0o000); chmodError != nil {
		testingHandle.Fatalf("chmod: %v", chmodError)
	}
	testingHandle.Cleanup(func() { _ = os.Chmod(lockedPath, 0o755) })

	tree := buildTree(testingHandle, rootDirectory, exclusion.DefaultRules(), nil)

	expected := []string{"locked", "open.txt"}
	if got := collectPaths(tree.Root); !reflect.DeepEqual(got, expected) {
		testingHandle.Fatalf("unexpected paths: got %v want %v", got, expected)
	}
}

func TestCollectRecordsInTraversalOrder(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{
		"src/a.py":         "print(\"hi\")\n",
		"src/nested/b.js":  "console.log(1)\n",
		"README.md":        "# Readme\n",
		"logo.png":         "\x89PNG",
		"empty.txt":        "",
		"data.bin.txt":     "\x00\x01\x02\x03",
		"notes.txt":        "caf\xe9",
		"package.lock":     "{}",
		"zz/last.unknown1": "plain",
	})

	rules := exclusion.DefaultRules().WithListOnlyPatterns("*.lock")
	policy := exclusion.NewPolicy(rules)
	tree := buildTree(testingHandle, rootDirectory, rules, nil)

	for _, workers := range []int{1, 4} {
		collector := commands.ContentCollector{Policy: policy, Workers: workers, TokenCounter: runeCounter{}}
		records, collectError := collector.Collect(context.Background(), tree)
		if collectError != nil {
			testingHandle.Fatalf("Collect error: %v", collectError)
		}

		var paths []string
		for _, record := range records {
			paths = append(paths, record.RelativePath)
		}
		expectedPaths := []string{"src/nested/b.js", "src/a.py", "zz/last.unknown1", "data.bin.txt", "empty.txt", "notes.txt", "README.md"}
		if !reflect.DeepEqual(paths, expectedPaths) {
			testingHandle.Fatalf("workers=%d: unexpected record order: got %v want %v", workers, paths, expectedPaths)
		}

		recordsByPath := make(map[string]types.FileRecord, len(records))
		for _, record := range records {
			recordsByPath[record.RelativePath] = record
		}
		python := recordsByPath["src/a.py"]
		if python.LanguageHint != "python" || python.Content != "print(\"hi\")\n" || !python.IsReadable() {
			testingHandle.Fatalf("unexpected python record: %+v", python)
		}
		if python.Tokens != len([]rune(python.Content)) {
			testingHandle.Fatalf("expected token count %d, got %d", len([]rune(python.Content)), python.Tokens)
		}
		if recordsByPath["empty.txt"].UnreadableReason != types.ReasonEmpty {
			testingHandle.Fatalf("expected EMPTY, got %+v", recordsByPath["empty.txt"])
		}
		if recordsByPath["data.bin.txt"].UnreadableReason != types.ReasonDecodeError {
			testingHandle.Fatalf("expected DECODE_ERROR, got %+v", recordsByPath["data.bin.txt"])
		}
		if recordsByPath["notes.txt"].Content != "café" {
			testingHandle.Fatalf("expected latin-1 fallback decode, got %q", recordsByPath["notes.txt"].Content)
		}
		if recordsByPath["zz/last.unknown1"].LanguageHint != "" {
			testingHandle.Fatalf("expected empty language hint for unknown extension")
		}
	}
}

func TestCollectRecordsIOErrorForVanishedFile(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{
		"gone.txt": "soon removed",
		"kept.txt": "still here",
	})
	tree := buildTree(testingHandle, rootDirectory, exclusion.DefaultRules(), nil)
	if removeError := os.Remove(filepath.Join(rootDirectory, "gone.txt")); removeError != nil {
		testingHandle.Fatalf("remove: %v", removeError)
	}

	collector := commands.ContentCollector{}
	records, collectError := collector.Collect(context.Background(), tree)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	if len(records) != 2 {
		testingHandle.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].UnreadableReason != types.ReasonIOError || !strings.Contains(records[0].Detail, "open") {
		testingHandle.Fatalf("expected IO_ERROR for vanished file, got %+v", records[0])
	}
	if records[1].Content != "still here" {
		testingHandle.Fatalf("expected sibling to be collected, got %+v", records[1])
	}
}

func TestCollectHonorsCancelledContext(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{"a.txt": "a"})
	tree := buildTree(testingHandle, rootDirectory, exclusion.DefaultRules(), nil)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()
	collector := commands.ContentCollector{}
	if _, collectError := collector.Collect(cancelledContext, tree); collectError == nil {
		testingHandle.Fatalf("expected cancellation error")
	}
}
