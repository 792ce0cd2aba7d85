package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/klabast/wb-services/ophaaldagen/internal/address"
)

var (
	// ErrNoTerminal means a house letter has to be chosen but stdin is not a
	// terminal to ask on
	ErrNoTerminal = errors.New("several house letters exist and stdin is not a terminal, use --letter")
	// ErrSelectionAborted means the prompt was closed without a choice
	ErrSelectionAborted = errors.New("house letter selection aborted")
)

// maxAttempts bounds how often an invalid selection is asked again
const maxAttempts = 3

// TerminalChooser asks for a house letter on an interactive terminal
type TerminalChooser struct {
	In  *os.File
	Out io.Writer
}

// ChooseLetter shows a numbered menu of letters and reads the selection
func (c *TerminalChooser) ChooseLetter(ctx context.Context, letters []string) (string, error) {
	if c.In == nil || !term.IsTerminal(int(c.In.Fd())) {
		return "", ErrNoTerminal
	}
	fd := int(c.In.Fd())

	// Raw mode lets term.Terminal handle line editing and Ctrl+C itself
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return "", fmt.Errorf("failed to switch terminal to raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	return promptLetter(ctx, struct {
		io.Reader
		io.Writer
	}{c.In, c.Out}, letters)
}

// promptLetter runs the menu over any reader and writer pair
func promptLetter(ctx context.Context, rw io.ReadWriter, letters []string) (string, error) {
	t := term.NewTerminal(rw, "")

	fmt.Fprintln(t, "Several addresses share this house number. Which house letter?")
	for i, letter := range letters {
		fmt.Fprintf(t, "  %d) %s\n", i+1, displayLetter(letter))
	}
	t.SetPrompt(fmt.Sprintf("House letter [1-%d]: ", len(letters)))

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		line, err := t.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", ErrSelectionAborted
			}
			return "", fmt.Errorf("failed to read house letter: %w", err)
		}

		if letter, ok := parseSelection(line, letters); ok {
			return letter, nil
		}
		fmt.Fprintf(t, "%q is not one of the options\n", line)
	}
	return "", fmt.Errorf("%w: no valid choice after %d attempts", address.ErrNoMatchingLetter, maxAttempts)
}

// parseSelection accepts a menu number or the letter itself. An empty line
// picks the address without a letter, if there is one.
func parseSelection(input string, letters []string) (string, bool) {
	input = strings.TrimSpace(input)

	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(letters) {
			return letters[n-1], true
		}
		return "", false
	}
	for _, letter := range letters {
		if strings.EqualFold(strings.TrimSpace(letter), input) {
			return letter, true
		}
	}
	return "", false
}

func displayLetter(letter string) string {
	if strings.TrimSpace(letter) == "" {
		return "(no letter)"
	}
	return letter
}
