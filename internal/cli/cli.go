// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/ctxdoc/internal/config"
	"github.com/temirov/ctxdoc/internal/output"
	"github.com/temirov/ctxdoc/internal/pipeline"
	"github.com/temirov/ctxdoc/internal/services/clipboard"
	"github.com/temirov/ctxdoc/internal/tokenizer"
	"github.com/temirov/ctxdoc/internal/types"
	"github.com/temirov/ctxdoc/internal/utils"
)

const (
	rootUse              = "ctxdoc <project-directory>"
	rootShortDescription = "render a project directory into a single context document"
	rootLongDescription  = `ctxdoc converts a project directory into one PDF or Markdown document
containing the directory structure and the text content of its files.
Version control metadata is never included; images, media, archives and
compiled artifacts are listed in the structure without their content.`
	rootUsageExample = `  # Render ./myproject into myproject_context.pdf
  ctxdoc ./myproject

  # Write Markdown into the docs directory and count tokens
  ctxdoc ./myproject --format md --output docs/ --tokens

  # Exclude generated code and respect .gitignore files
  ctxdoc . -e gen/ -e "*.pb.go" --gitignore`

	initUse              = "init"
	initShortDescription = "write a default configuration file"
	versionUse           = "version"
	versionShortDesc     = "print the application version"
	versionTemplate      = "ctxdoc version: {{.Version}}\n"
	versionLineFormat    = "ctxdoc version: %s\n"

	nameFlagName       = "name"
	outputFlagName     = "output"
	formatFlagName     = "format"
	exclusionFlagName  = "exclude"
	exclusionShorthand = "e"
	gitignoreFlagName  = "gitignore"
	ignoreFlagName     = "ignore"
	tokensFlagName     = "tokens"
	modelFlagName      = "model"
	workersFlagName    = "workers"
	clipboardFlagName  = "clipboard"
	verboseFlagName    = "verbose"
	configFlagName     = "config"
	globalFlagName     = "global"
	forceFlagName      = "force"

	nameFlagDescription      = "project name (defaults to the directory name)"
	outputFlagDescription    = "output file or directory; a directory receives <name>_context.<ext>"
	formatFlagDescription    = "output format: pdf or md"
	exclusionFlagDescription = "exclude path pattern (repeatable)"
	gitignoreFlagDescription = "apply .gitignore files"
	ignoreFlagDescription    = "apply .ignore files"
	tokensFlagDescription    = "count tokens of embedded content"
	modelFlagDescription     = "tokenizer model used for token counting"
	workersFlagDescription   = "number of files read concurrently"
	clipboardFlagDescription = "copy the rendered Markdown to the clipboard"
	verboseFlagDescription   = "log debug details"
	configFlagDescription    = "configuration file (defaults to ./" + utils.ConfigFileName + ")"
	globalFlagDescription    = "write the global configuration under the home directory"
	forceFlagDescription     = "overwrite an existing configuration file"

	defaultWorkers = 1

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	loadConfigurationFormat     = "loading configuration: %w"
	tokenizerErrorFormat        = "initializing tokenizer for %s: %w"
	clipboardErrorFormat        = "copying document to clipboard: %w"
	initConfigurationFormat     = "initializing configuration: %w"

	warningClipboardFormatMessage = "Clipboard copy requires markdown format; skipping"
	infoClipboardMessage          = "Copied document to clipboard"
	infoTokensMessage             = "Token count"
	infoCompleteMessage           = "Generation complete"
)

// CounterFactory constructs token counters for a model.
type CounterFactory func(tokenizer.Config) (tokenizer.Counter, string, error)

// Dependencies are the external collaborators of the CLI.
type Dependencies struct {
	Logger         *zap.Logger
	Copier         clipboard.Copier
	CounterFactory CounterFactory
}

// generateOptions stores the values of the document generation flags.
type generateOptions struct {
	projectName       string
	outputPath        string
	format            string
	exclusionPatterns []string
	useGitignore      bool
	useIgnoreFile     bool
	tokensEnabled     bool
	tokenModel        string
	workers           int
	copyToClipboard   bool
	verbose           bool
	configPath        string
}

// Execute runs the ctxdoc application with the process arguments.
func Execute(ctx context.Context, logger *zap.Logger) error {
	rootCommand := NewRootCommand(Dependencies{
		Logger:         logger,
		Copier:         clipboard.NewService(),
		CounterFactory: tokenizer.NewCounter,
	})
	rootCommand.SetArgs(normalizeToggleArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(ctx)
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	if dependencies.Logger == nil {
		dependencies.Logger = zap.NewNop()
	}
	if dependencies.CounterFactory == nil {
		dependencies.CounterFactory = tokenizer.NewCounter
	}
	if dependencies.Copier == nil {
		dependencies.Copier = clipboard.NewService()
	}

	var options generateOptions
	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.ExactArgs(1),
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runGenerate(command, arguments[0], &options, dependencies)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)

	flags := rootCommand.Flags()
	flags.StringVar(&options.projectName, nameFlagName, "", nameFlagDescription)
	flags.StringVar(&options.outputPath, outputFlagName, "", outputFlagDescription)
	registerFormatFlag(flags, &options.format, formatFlagName, formatFlagDescription)
	flags.StringArrayVarP(&options.exclusionPatterns, exclusionFlagName, exclusionShorthand, nil, exclusionFlagDescription)
	registerToggleFlag(flags, &options.useGitignore, gitignoreFlagName, false, gitignoreFlagDescription)
	registerToggleFlag(flags, &options.useIgnoreFile, ignoreFlagName, true, ignoreFlagDescription)
	registerToggleFlag(flags, &options.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	flags.StringVar(&options.tokenModel, modelFlagName, tokenizer.DefaultModel, modelFlagDescription)
	flags.IntVar(&options.workers, workersFlagName, defaultWorkers, workersFlagDescription)
	registerToggleFlag(flags, &options.copyToClipboard, clipboardFlagName, false, clipboardFlagDescription)
	registerToggleFlag(flags, &options.verbose, verboseFlagName, false, verboseFlagDescription)
	flags.StringVar(&options.configPath, configFlagName, "", configFlagDescription)

	rootCommand.AddCommand(
		createInitCommand(),
		createVersionCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func runGenerate(command *cobra.Command, projectDirectory string, options *generateOptions, dependencies Dependencies) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	applicationConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configPath,
	})
	if loadError != nil {
		return fmt.Errorf(loadConfigurationFormat, loadError)
	}
	applyConfiguration(command, options, applicationConfiguration)

	logger := dependencies.Logger
	if options.verbose {
		verboseLogger, loggerError := utils.NewApplicationLogger(true)
		if loggerError != nil {
			return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
		}
		logger = verboseLogger
		defer func() { _ = verboseLogger.Sync() }()
	}

	request := pipeline.Request{
		RootPath:        projectDirectory,
		ProjectName:     options.projectName,
		Format:          options.format,
		OutputPath:      options.outputPath,
		ExcludePatterns: options.exclusionPatterns,
		UseGitignore:    options.useGitignore,
		UseIgnoreFile:   options.useIgnoreFile,
		Workers:         options.workers,
		RendererOptions: rendererOptions(applicationConfiguration.PDF),
	}
	if options.tokensEnabled {
		counter, resolvedModel, counterError := dependencies.CounterFactory(tokenizer.Config{Model: options.tokenModel})
		if counterError != nil {
			return fmt.Errorf(tokenizerErrorFormat, options.tokenModel, counterError)
		}
		request.TokenCounter = counter
		request.TokenModel = resolvedModel
	}

	result, generateError := pipeline.Generate(command.Context(), request, logger)
	if generateError != nil {
		return generateError
	}
	if result.Summary.TotalTokens > 0 {
		logger.Info(infoTokensMessage, zap.Int("tokens", result.Summary.TotalTokens), zap.String("model", result.Summary.Model))
	}

	if options.copyToClipboard {
		if result.Format != types.FormatMarkdown {
			logger.Warn(warningClipboardFormatMessage, zap.String("format", result.Format))
		} else {
			if copyError := dependencies.Copier.Copy(string(result.Document)); copyError != nil {
				return fmt.Errorf(clipboardErrorFormat, copyError)
			}
			logger.Info(infoClipboardMessage)
		}
	}

	logger.Info(infoCompleteMessage, zap.String("path", result.OutputPath), zap.String("summary", output.FormatSummaryLine(result.Summary)))
	return nil
}

// applyConfiguration fills every flag not set on the command line from the configuration file.
func applyConfiguration(command *cobra.Command, options *generateOptions, configuration config.ApplicationConfiguration) {
	flags := command.Flags()
	if !flags.Changed(formatFlagName) && configuration.Format != "" {
		if format, known := normalizeFormat(configuration.Format); known {
			options.format = format
		} else {
			options.format = configuration.Format
		}
	}
	if !flags.Changed(outputFlagName) && configuration.Output != "" {
		options.outputPath = configuration.Output
	}
	if len(configuration.Exclude) > 0 {
		options.exclusionPatterns = utils.DeduplicatePatterns(append(append([]string{}, configuration.Exclude...), options.exclusionPatterns...))
	}
	if !flags.Changed(gitignoreFlagName) && configuration.UseGitignore != nil {
		options.useGitignore = *configuration.UseGitignore
	}
	if !flags.Changed(ignoreFlagName) && configuration.UseIgnoreFile != nil {
		options.useIgnoreFile = *configuration.UseIgnoreFile
	}
	if !flags.Changed(tokensFlagName) && configuration.Tokens.Enabled != nil {
		options.tokensEnabled = *configuration.Tokens.Enabled
	}
	if !flags.Changed(modelFlagName) && configuration.Tokens.Model != "" {
		options.tokenModel = configuration.Tokens.Model
	}
	if !flags.Changed(workersFlagName) && configuration.Workers != nil {
		options.workers = *configuration.Workers
	}
	if !flags.Changed(clipboardFlagName) && configuration.Clipboard != nil {
		options.copyToClipboard = *configuration.Clipboard
	}
}

func rendererOptions(configuration config.PDFConfiguration) output.RendererOptions {
	options := output.RendererOptions{PDF: output.PDFOptions{PageSize: configuration.PageSize}}
	if configuration.FontSize != nil {
		options.PDF.FontSize = *configuration.FontSize
	}
	return options
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var useGlobal bool
	var force bool
	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if useGlobal {
				target = config.InitTargetGlobal
			}
			path, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: force})
			if initError != nil {
				return fmt.Errorf(initConfigurationFormat, initError)
			}
			_, writeError := fmt.Fprintln(command.OutOrStdout(), path)
			return writeError
		},
	}
	registerToggleFlag(initCommand.Flags(), &useGlobal, globalFlagName, false, globalFlagDescription)
	registerToggleFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// createVersionCommand returns the version subcommand.
func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   versionUse,
		Short: versionShortDesc,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			_, writeError := fmt.Fprintf(command.OutOrStdout(), versionLineFormat, utils.GetApplicationVersion())
			return writeError
		},
	}
}
