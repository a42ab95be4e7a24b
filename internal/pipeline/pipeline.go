// Package pipeline assembles a project directory into a rendered context document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/ctxdoc/internal/commands"
	"github.com/temirov/ctxdoc/internal/config"
	"github.com/temirov/ctxdoc/internal/exclusion"
	"github.com/temirov/ctxdoc/internal/output"
	"github.com/temirov/ctxdoc/internal/tokenizer"
	"github.com/temirov/ctxdoc/internal/types"
)

var (
	// ErrInvalidRoot indicates the project root is missing or not a directory.
	ErrInvalidRoot = errors.New("invalid project root")
	// ErrUnsupportedFormat indicates the requested document format has no renderer.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrOutputWrite indicates the rendered document could not be persisted.
	ErrOutputWrite = errors.New("output write failed")
)

const (
	errorInvalidRootFormat    = "%w: %s: %v"
	errorRootNotDirFormat     = "%w: %s is not a directory"
	errorFormatFormat         = "%w: %q"
	errorIgnoreFilesFormat    = "loading ignore files under %s: %w"
	errorBuildTreeFormat      = "building tree for %s: %w"
	errorCollectFormat        = "collecting content for %s: %w"
	errorRenderDocumentFormat = "rendering %s document: %w"

	infoGeneratingMessage = "Generating context document"
	infoOutputMessage     = "Output file"

	debugOutputExcludedMessage = "Excluding the output document from its own listing"
)

// Request is the complete, immutable input of one document generation run.
type Request struct {
	RootPath    string
	ProjectName string
	Format      string
	// OutputPath is a file or directory; empty means the working directory.
	OutputPath string

	// Rules is the base exclusion configuration; the zero value means exclusion.DefaultRules.
	Rules           *exclusion.Rules
	ExcludePatterns []string
	UseGitignore    bool
	UseIgnoreFile   bool

	TokenCounter tokenizer.Counter
	TokenModel   string
	Workers      int

	RendererOptions output.RendererOptions
}

// Result describes a generated document.
type Result struct {
	OutputPath  string
	ProjectName string
	Format      string
	Document    []byte
	Summary     types.DocumentSummary
}

// Generate runs the whole pipeline and writes the document. The format is
// validated before the filesystem is touched, then the root; both failures
// are reported through ErrUnsupportedFormat and ErrInvalidRoot. A write
// failure is reported through ErrOutputWrite and leaves no partial file.
func Generate(ctx context.Context, request Request, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result, renderError := Render(ctx, request, logger)
	if renderError != nil {
		return Result{}, renderError
	}

	result.OutputPath = ResolveOutputPath(request.OutputPath, result.ProjectName, result.Format)
	if writeError := WriteOutput(result.OutputPath, result.Document); writeError != nil {
		return Result{}, writeError
	}
	logger.Info(infoOutputMessage, zap.String("path", result.OutputPath))
	return result, nil
}

// Render runs the pipeline without persisting the document.
func Render(ctx context.Context, request Request, logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer, rendererError := output.NewDocumentRenderer(request.Format, request.RendererOptions)
	if rendererError != nil {
		return Result{}, fmt.Errorf(errorFormatFormat, ErrUnsupportedFormat, request.Format)
	}

	absoluteRoot, rootError := validateRoot(request.RootPath)
	if rootError != nil {
		return Result{}, rootError
	}
	projectName := request.ProjectName
	if projectName == "" {
		projectName = filepath.Base(absoluteRoot)
	}
	logger.Info(infoGeneratingMessage,
		zap.String("project", projectName),
		zap.String("format", renderer.Format()),
		zap.String("root", absoluteRoot))

	outputRelativePath, outputInsideRoot := outputPathUnderRoot(absoluteRoot, ResolveOutputPath(request.OutputPath, projectName, renderer.Format()))
	if outputInsideRoot {
		logger.Debug(debugOutputExcludedMessage, zap.String("path", outputRelativePath))
	}

	policy, policyError := buildPolicy(absoluteRoot, request, outputRelativePath, logger)
	if policyError != nil {
		return Result{}, policyError
	}

	treeBuilder := commands.TreeBuilder{Policy: policy, Logger: logger}
	tree, buildError := treeBuilder.Build(absoluteRoot, projectName)
	if buildError != nil {
		return Result{}, fmt.Errorf(errorBuildTreeFormat, absoluteRoot, buildError)
	}
	diagram := output.RenderTree(tree)

	collector := commands.ContentCollector{
		Policy:       policy,
		Logger:       logger,
		TokenCounter: request.TokenCounter,
		Workers:      request.Workers,
	}
	records, collectError := collector.Collect(ctx, tree)
	if collectError != nil {
		return Result{}, fmt.Errorf(errorCollectFormat, absoluteRoot, collectError)
	}

	summary := output.Summarize(tree, records, request.TokenModel)
	document, documentError := renderer.Render(output.Document{
		Tree:        tree,
		Diagram:     diagram,
		Records:     records,
		ProjectName: projectName,
		Summary:     &summary,
	})
	if documentError != nil {
		return Result{}, fmt.Errorf(errorRenderDocumentFormat, renderer.Format(), documentError)
	}

	return Result{
		ProjectName: projectName,
		Format:      renderer.Format(),
		Document:    document,
		Summary:     summary,
	}, nil
}

func validateRoot(rootPath string) (string, error) {
	if rootPath == "" {
		rootPath = "."
	}
	absoluteRoot, absoluteError := filepath.Abs(rootPath)
	if absoluteError != nil {
		return "", fmt.Errorf(errorInvalidRootFormat, ErrInvalidRoot, rootPath, absoluteError)
	}
	info, statError := os.Stat(absoluteRoot)
	if statError != nil {
		return "", fmt.Errorf(errorInvalidRootFormat, ErrInvalidRoot, absoluteRoot, statError)
	}
	if !info.IsDir() {
		return "", fmt.Errorf(errorRootNotDirFormat, ErrInvalidRoot, absoluteRoot)
	}
	return absoluteRoot, nil
}

// buildPolicy folds ignore files, command-line exclusions and the document's own
// path (when it lies under the root) into the base rules.
func buildPolicy(absoluteRoot string, request Request, outputRelativePath string, logger *zap.Logger) (*exclusion.Policy, error) {
	rules := exclusion.DefaultRules()
	if request.Rules != nil {
		rules = *request.Rules
	}
	basePolicy := exclusion.NewPolicy(rules)
	skipDirectory := func(relativePath string) bool {
		return !basePolicy.ShouldTraverse(relativePath, true)
	}
	patterns, loadError := config.LoadRecursiveIgnorePatterns(absoluteRoot, request.UseGitignore, request.UseIgnoreFile, skipDirectory, logger)
	if loadError != nil {
		return nil, fmt.Errorf(errorIgnoreFilesFormat, absoluteRoot, loadError)
	}
	rules = rules.WithIgnorePatterns(request.ExcludePatterns...).
		WithIgnorePatterns(patterns.Ignore...).
		WithListOnlyPatterns(patterns.ListOnly...)
	if outputRelativePath != "" {
		rules = rules.WithExcludedFilePaths(outputRelativePath)
	}
	return exclusion.NewPolicy(rules), nil
}

// outputPathUnderRoot returns the root-relative, forward-slash form of outputPath
// when the document would be written inside the project root.
func outputPathUnderRoot(absoluteRoot string, outputPath string) (string, bool) {
	absoluteOutput, absoluteError := filepath.Abs(outputPath)
	if absoluteError != nil {
		return "", false
	}
	relativePath, relativeError := filepath.Rel(absoluteRoot, absoluteOutput)
	if relativeError != nil || relativePath == "." || relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(relativePath), true
}
