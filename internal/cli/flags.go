package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/ctxdoc/internal/types"
)

const (
	toggleFlagTypeName  = "bool"
	toggleTrueLiteral   = "true"
	toggleAcceptedValue = "true, false, yes, no, on, off, 1, 0"
	formatFlagTypeName  = "format"
	formatAcceptedValue = "pdf, md"
	invalidToggleFormat = "invalid boolean value %q for --%s; accepted values: %s"
	invalidFormatFormat = "invalid format value %q; accepted values: %s"
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

var formatAliases = map[string]string{
	types.FormatPDF:      types.FormatPDF,
	types.FormatMarkdown: types.FormatMarkdown,
	"markdown":           types.FormatMarkdown,
}

// normalizeFormat maps a user-supplied format name onto a document format.
func normalizeFormat(input string) (string, bool) {
	format, known := formatAliases[strings.ToLower(strings.TrimSpace(input))]
	return format, known
}

// toggleValue is a boolean flag that also accepts yes/no style literals.
type toggleValue struct {
	target *bool
	name   string
}

func (value *toggleValue) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = toggleTrueLiteral
	}
	parsed, known := toggleLiterals[normalized]
	if !known {
		return fmt.Errorf(invalidToggleFormat, input, value.name, toggleAcceptedValue)
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleFlagTypeName
}

// registerToggleFlag registers a boolean flag that may be given bare, with
// "=value", or followed by a separate yes/no literal.
func registerToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&toggleValue{target: target, name: name}, name, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = toggleTrueLiteral
}

// formatValue restricts the format flag to supported document formats.
type formatValue struct {
	target *string
}

func (value *formatValue) Set(input string) error {
	format, known := normalizeFormat(input)
	if !known {
		return fmt.Errorf(invalidFormatFormat, input, formatAcceptedValue)
	}
	*value.target = format
	return nil
}

func (value *formatValue) String() string {
	if value == nil || value.target == nil {
		return types.FormatPDF
	}
	return *value.target
}

func (value *formatValue) Type() string {
	return formatFlagTypeName
}

func registerFormatFlag(flagSet *pflag.FlagSet, target *string, name string, usage string) {
	*target = types.FormatPDF
	flagSet.Var(&formatValue{target: target}, name, usage)
}

// normalizeToggleArguments joins "--flag literal" pairs into "--flag=literal"
// for toggle flags so the literal is not taken as a positional argument.
func normalizeToggleArguments(command *cobra.Command, arguments []string) []string {
	toggleNames := map[string]struct{}{}
	collectToggleFlagNames(command, toggleNames)
	if len(toggleNames) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == "--" {
			return append(normalized, arguments[index:]...)
		}
		flagName, isLongFlag := strings.CutPrefix(currentArgument, "--")
		if isLongFlag && !strings.Contains(flagName, "=") && index+1 < len(arguments) {
			if _, isToggle := toggleNames[flagName]; isToggle {
				nextArgument := arguments[index+1]
				if _, isLiteral := toggleLiterals[strings.ToLower(strings.TrimSpace(nextArgument))]; isLiteral {
					normalized = append(normalized, "--"+flagName+"="+nextArgument)
					index++
					continue
				}
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func collectToggleFlagNames(command *cobra.Command, target map[string]struct{}) {
	visit := func(flag *pflag.Flag) {
		if _, isToggle := flag.Value.(*toggleValue); isToggle {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, child := range command.Commands() {
		collectToggleFlagNames(child, target)
	}
}
