package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
)

// ErrNoTerminal is returned when a confirmation is needed but no answer can
// be read from the input.
var ErrNoTerminal = errors.New("no interactive input available")

// PromptConfirmer asks yes/no questions. On a terminal it shows a huh
// confirm form; otherwise it reads a y/N answer line from the input.
type PromptConfirmer struct {
	in    io.Reader
	out   io.Writer
	theme *huh.Theme
}

// NewPromptConfirmer creates a confirmer reading from in and writing prompts to out.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{
		in:    in,
		out:   out,
		theme: NewHuhTheme(),
	}
}

// Confirm asks message and reports whether the user agreed. Aborting the
// form counts as declining.
func (c *PromptConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	if c.in == nil {
		return false, ErrNoTerminal
	}
	if IsTerminal(c.in) && IsTerminal(c.out) {
		return c.confirmForm(ctx, message)
	}
	return c.confirmLine(message)
}

func (c *PromptConfirmer) confirmForm(ctx context.Context, message string) (bool, error) {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(message).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).
		WithTheme(c.theme).
		WithInput(c.in).
		WithOutput(c.out)

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("failed to run confirmation: %w", err)
	}
	return confirmed, nil
}

func (c *PromptConfirmer) confirmLine(message string) (bool, error) {
	if c.out != nil {
		fmt.Fprintf(c.out, "%s [y/N]: ", message)
	}

	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return false, ErrNoTerminal
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// IsTerminal reports whether v is a terminal file.
func IsTerminal(v interface{}) bool {
	f, ok := v.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
