package service

import (
	"context"
	"errors"
)

// ErrDismissed is returned by a Chooser when the user closed the prompt
// without picking any option. The matcher treats it like an explicit decline.
var ErrDismissed = errors.New("prompt dismissed")

// Chooser presents a modal choice to the user and reports which option was
// picked, as an index into options. It is the only point where the matching
// engine waits on user input; the call may block until the user responds, and
// implementations should honor ctx cancellation from screen teardown.
//
// The engine works correctly regardless of how the prompt is rendered — a
// mobile alert sheet in production, a scripted chooser in tests.
type Chooser interface {
	PresentChoice(ctx context.Context, prompt string, options []string) (int, error)
}

// ChooserFunc adapts a plain function to the Chooser interface.
type ChooserFunc func(ctx context.Context, prompt string, options []string) (int, error)

// PresentChoice implements Chooser.
func (f ChooserFunc) PresentChoice(ctx context.Context, prompt string, options []string) (int, error) {
	return f(ctx, prompt, options)
}
