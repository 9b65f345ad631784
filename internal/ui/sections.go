package ui

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	sectionRuleCharacterConstant = "="
	defaultRuleWidthConstant     = 60
	minimumRuleWidthConstant     = 20
	maximumRuleWidthConstant     = 100
)

// RuleWidth returns the width of section rules for the writer: the terminal width when the
// writer is a terminal, clamped to a readable range, and a fixed default otherwise.
func RuleWidth(writer io.Writer) int {
	file, isFile := writer.(*os.File)
	if !isFile {
		return defaultRuleWidthConstant
	}
	fileDescriptor := int(file.Fd())
	if !term.IsTerminal(fileDescriptor) {
		return defaultRuleWidthConstant
	}
	width, _, sizeError := term.GetSize(fileDescriptor)
	if sizeError != nil || width <= 0 {
		return defaultRuleWidthConstant
	}
	return ClampRuleWidth(width)
}

// ClampRuleWidth bounds a width to the supported rule range.
func ClampRuleWidth(width int) int {
	if width < minimumRuleWidthConstant {
		return minimumRuleWidthConstant
	}
	if width > maximumRuleWidthConstant {
		return maximumRuleWidthConstant
	}
	return width
}

// Rule renders a horizontal separator of the requested width.
func Rule(width int) string {
	return strings.Repeat(sectionRuleCharacterConstant, ClampRuleWidth(width))
}
