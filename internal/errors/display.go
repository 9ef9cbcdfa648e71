package errors

import (
	"fmt"
	"io"
	"os"

	"tfevents/internal/ui"
)

// DisplayError formats and displays an error message to the user.
// It formats different error types appropriately and uses color coding.
func DisplayError(err error) {
	WriteError(os.Stderr, err)
}

// WriteError renders err to w the same way DisplayError does.
func WriteError(w io.Writer, err error) {
	if err == nil {
		return
	}

	errMsg := err.Error()

	switch {
	case IsValidationError(err):
		fmt.Fprintf(w, "%sValidation Error:%s %s\n", ui.ColorWarning, ui.ColorReset, errMsg)

	case IsUserInteractionError(err):
		fmt.Fprintf(w, "%sInput Error:%s %s\n", ui.ColorWarning, ui.ColorReset, errMsg)

	case IsConfigurationError(err):
		fmt.Fprintf(w, "%sConfiguration Error:%s %s\n", ui.ColorError, ui.ColorReset, errMsg)

	case IsErrUserAborted(err):
		fmt.Fprintf(w, "%sOperation Aborted:%s %s\n", ui.ColorWarning, ui.ColorReset, errMsg)

	case IsTimeout(err):
		// The run was killed, so the message is the only trace left
		fmt.Fprintf(w, "%s%sTimeout:%s %s\n", ui.ColorError, ui.TextBold, ui.ColorReset, errMsg)

	case IsPathError(err), IsPatternError(err):
		fmt.Fprintf(w, "%sSetup Error:%s %s\n", ui.ColorError, ui.ColorReset, errMsg)

	default:
		fmt.Fprintf(w, "%sError:%s %s\n", ui.ColorError, ui.ColorReset, errMsg)
	}
}

// ExitWithError displays an error and exits with non-zero status code.
func ExitWithError(err error, code int) {
	DisplayError(err)
	os.Exit(code)
}
