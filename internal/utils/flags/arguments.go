// Package flags provides helpers for describing command-line choices and normalizing free-text arguments.
package flags

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	argumentsTerminatorConstant  = "--"
	longFlagPrefixConstant       = "--"
	shortFlagPrefixConstant      = "-"
	flagValueAssignmentConstant  = "="
	freeTextJoinSeparatorLiteral = " "
)

// NormalizeFreeTextArguments reorders arguments so that every token that is not a
// registered flag spelling, or the value of such a flag, follows a "--" terminator.
// Unregistered dash-prefixed tokens therefore reach the command as positional
// free text instead of failing flag parsing. Positional order is preserved and
// everything after an explicit "--" is treated as free text verbatim.
func NormalizeFreeTextArguments(command *cobra.Command, arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	flagSets := collectFlagSets(command)

	flagArguments := make([]string, 0, len(arguments))
	freeTextArguments := make([]string, 0, len(arguments))

	index := 0
	for index < len(arguments) {
		current := arguments[index]
		if current == argumentsTerminatorConstant {
			freeTextArguments = append(freeTextArguments, arguments[index+1:]...)
			break
		}

		consumed := recognizeFlagTokens(flagSets, arguments, index)
		if consumed == 0 {
			freeTextArguments = append(freeTextArguments, current)
			index++
			continue
		}

		flagArguments = append(flagArguments, arguments[index:index+consumed]...)
		index += consumed
	}

	if len(freeTextArguments) == 0 {
		return flagArguments
	}

	normalized := append(flagArguments, argumentsTerminatorConstant)
	return append(normalized, freeTextArguments...)
}

// JoinFreeText concatenates positional tokens with single spaces.
func JoinFreeText(arguments []string) string {
	trimmedArguments := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 {
			continue
		}
		trimmedArguments = append(trimmedArguments, trimmedArgument)
	}
	return strings.Join(trimmedArguments, freeTextJoinSeparatorLiteral)
}

func collectFlagSets(command *cobra.Command) []*pflag.FlagSet {
	if command == nil {
		return nil
	}
	command.InitDefaultHelpFlag()

	flagSets := []*pflag.FlagSet{command.Flags(), command.PersistentFlags()}
	for parent := command.Parent(); parent != nil; parent = parent.Parent() {
		flagSets = append(flagSets, parent.PersistentFlags())
	}
	return flagSets
}

// recognizeFlagTokens returns how many tokens starting at index belong to a registered flag, or zero.
func recognizeFlagTokens(flagSets []*pflag.FlagSet, arguments []string, index int) int {
	current := arguments[index]
	switch {
	case strings.HasPrefix(current, longFlagPrefixConstant):
		return recognizeLongFlag(flagSets, arguments, index)
	case strings.HasPrefix(current, shortFlagPrefixConstant) && len(current) > len(shortFlagPrefixConstant):
		return recognizeShorthandCluster(flagSets, arguments, index)
	default:
		return 0
	}
}

func recognizeLongFlag(flagSets []*pflag.FlagSet, arguments []string, index int) int {
	trimmed := strings.TrimPrefix(arguments[index], longFlagPrefixConstant)
	name := trimmed
	valueAttached := false
	if separatorIndex := strings.Index(trimmed, flagValueAssignmentConstant); separatorIndex >= 0 {
		name = trimmed[:separatorIndex]
		valueAttached = true
	}
	if len(name) == 0 {
		return 0
	}

	flag := lookupFlag(flagSets, name)
	if flag == nil {
		return 0
	}
	if valueAttached || !requiresValue(flag) {
		return 1
	}
	if index+1 < len(arguments) {
		return 2
	}
	return 1
}

// recognizeShorthandCluster accepts tokens such as -v, -mbranch and -vm branch.
// Every character up to the first value-taking flag must be a registered shorthand.
func recognizeShorthandCluster(flagSets []*pflag.FlagSet, arguments []string, index int) int {
	cluster := strings.TrimPrefix(arguments[index], shortFlagPrefixConstant)
	for position := 0; position < len(cluster); position++ {
		shorthand := cluster[position : position+1]
		flag := lookupShorthand(flagSets, shorthand)
		if flag == nil {
			return 0
		}
		if !requiresValue(flag) {
			if position+1 < len(cluster) && cluster[position+1:position+2] == flagValueAssignmentConstant {
				return 1
			}
			continue
		}
		if position+1 < len(cluster) {
			return 1
		}
		if index+1 < len(arguments) {
			return 2
		}
		return 1
	}
	return 1
}

func lookupFlag(flagSets []*pflag.FlagSet, name string) *pflag.Flag {
	for _, flagSet := range flagSets {
		if flagSet == nil {
			continue
		}
		if flag := flagSet.Lookup(name); flag != nil {
			return flag
		}
	}
	return nil
}

func lookupShorthand(flagSets []*pflag.FlagSet, shorthand string) *pflag.Flag {
	for _, flagSet := range flagSets {
		if flagSet == nil {
			continue
		}
		if flag := flagSet.ShorthandLookup(shorthand); flag != nil {
			return flag
		}
	}
	return nil
}

func requiresValue(flag *pflag.Flag) bool {
	return len(flag.NoOptDefVal) == 0
}
