// Package confirm asks the user a yes/no question before destructive steps.
package confirm

import (
	"errors"
	"fmt"
	"io"

	"github.com/manifoldco/promptui"

	apperrors "tfevents/internal/errors"
)

// Prompter asks for confirmation. The CLI swaps it out in tests.
type Prompter interface {
	Confirm(label string) error
}

// Terminal prompts on the given terminal streams with promptui.
type Terminal struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

// Confirm returns nil when the user answers yes and ErrUserAborted when
// they answer no or interrupt the prompt.
func (t Terminal) Confirm(label string) error {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
		Stdin:     t.Stdin,
		Stdout:    t.Stdout,
	}

	_, err := prompt.Run()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, promptui.ErrAbort), errors.Is(err, promptui.ErrInterrupt), errors.Is(err, promptui.ErrEOF):
		return fmt.Errorf("%s: %w", label, apperrors.ErrUserAborted)
	default:
		return apperrors.NewUserInteractionError("confirm", "Failed to read confirmation", err)
	}
}

// Always confirms without asking, for --yes.
type Always struct{}

// Confirm implements Prompter.
func (Always) Confirm(string) error {
	return nil
}

// Never refuses without asking, for input that is not a terminal.
type Never struct {
	Reason string
}

// Confirm implements Prompter.
func (n Never) Confirm(label string) error {
	return apperrors.NewValidationError("yes", fmt.Sprintf("%s: %s", label, n.Reason), apperrors.ErrInvalidInput)
}

var (
	_ Prompter = Terminal{}
	_ Prompter = Always{}
	_ Prompter = Never{}
)
