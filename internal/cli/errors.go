package cli

import (
	goerrors "errors"
	"strings"

	"github.com/malarbase/skillctl/internal/errors"
)

// ExitCode returns the exit code for any error.
func ExitCode(err error) int {
	var serr *errors.Error
	if goerrors.As(err, &serr) {
		return serr.CLIExitCode()
	}
	return ExitGeneralError
}

// FormatErrorMessage returns a formatted error with its suggestion if available.
func FormatErrorMessage(err error) string {
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())

	var serr *errors.Error
	if goerrors.As(err, &serr) && serr.Suggestion != "" {
		b.WriteString("\n\nSuggestion: ")
		b.WriteString(serr.Suggestion)
	}
	return b.String()
}

// Common suggestions
const (
	SuggestRunInit       = "Run 'skillctl init' to set up configuration and the history database."
	SuggestCheckStaged   = "Run 'skillctl status' to see staged skills."
	SuggestGhAuth        = "Run 'gh auth login' to authenticate the GitHub CLI."
	SuggestValidateFirst = "Run 'skillctl validate' and fix the reported problems first."
)
