package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/temirov/ctxdoc/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `format: pdf
output: ""
exclude: []
use_gitignore: false
use_ignore: true
tokens:
  enabled: false
  model: gpt-4o
workers: 1
clipboard: false
pdf:
  page_size: Letter
  font_size: 9
`
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// ErrConfigurationExists reports that init found a configuration file and Force was not set.
var ErrConfigurationExists = errors.New("configuration file already exists")

const (
	configurationDirectoryPermissions = 0o755
	configurationFilePermissions      = 0o600

	workingDirectoryErrorFormat    = "determine working directory for configuration: %w"
	homeDirectoryErrorFormat       = "resolve home directory for configuration: %w"
	configurationDirectoryFormat   = "create configuration directory %s: %w"
	unsupportedInitTargetFormat    = "unsupported init target %q"
	configurationExistsErrorFormat = "%w at %s (use --force to overwrite)"
	inspectConfigurationFormat     = "inspect configuration path %s: %w"
	writeConfigurationErrorFormat  = "write configuration to %s: %w"
)

// InitializeConfiguration writes the default configuration template and returns its path.
func InitializeConfiguration(options InitOptions) (string, error) {
	destinationPath, destinationError := resolveInitDestination(options)
	if destinationError != nil {
		return "", destinationError
	}

	_, statError := os.Stat(destinationPath)
	switch {
	case statError == nil && !options.Force:
		return "", fmt.Errorf(configurationExistsErrorFormat, ErrConfigurationExists, destinationPath)
	case statError != nil && !errors.Is(statError, fs.ErrNotExist):
		return "", fmt.Errorf(inspectConfigurationFormat, destinationPath, statError)
	}

	if writeError := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), configurationFilePermissions); writeError != nil {
		return "", fmt.Errorf(writeConfigurationErrorFormat, destinationPath, writeError)
	}
	return destinationPath, nil
}

// resolveInitDestination maps an init target to the file it writes, creating the
// global configuration directory when needed.
func resolveInitDestination(options InitOptions) (string, error) {
	switch options.Target {
	case "", InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			currentDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return "", fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
			}
			workingDirectory = currentDirectory
		}
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	case InitTargetGlobal:
		homeDirectory, homeError := os.UserHomeDir()
		if homeError != nil {
			return "", fmt.Errorf(homeDirectoryErrorFormat, homeError)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if mkdirError := os.MkdirAll(configurationDirectory, configurationDirectoryPermissions); mkdirError != nil {
			return "", fmt.Errorf(configurationDirectoryFormat, configurationDirectory, mkdirError)
		}
		return filepath.Join(configurationDirectory, utils.GlobalConfigFileName), nil
	default:
		return "", fmt.Errorf(unsupportedInitTargetFormat, options.Target)
	}
}
