package cmd

import (
	"fmt"

	"github.com/fatih/color"
)

// Status lines go to stderr so stdout stays clean for reports and JSON.
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

func printSuccess(format string, args ...any) {
	successColor.Fprintf(color.Error, "✓ %s\n", fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	errorColor.Fprintf(color.Error, "✗ %s\n", fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	warningColor.Fprintf(color.Error, "⚠ Warning: %s\n", fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	infoColor.Fprintf(color.Error, "ℹ %s\n", fmt.Sprintf(format, args...))
}
