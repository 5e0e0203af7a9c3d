package conflict

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// TerminalPrompter reads overwrite decisions from a line-oriented input and
// writes prompts to an output, normally stdin and stderr.
type TerminalPrompter struct {
	in       io.Reader
	out      io.Writer
	forceTTY *bool // override isTTY check for testing; nil = auto-detect
}

// NewTerminalPrompter creates a prompter on stdin and stderr.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{in: os.Stdin, out: os.Stderr}
}

// newTerminalPrompterWithIO creates a prompter with injectable I/O for testing.
func newTerminalPrompterWithIO(in io.Reader, out io.Writer, tty bool) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out, forceTTY: &tty}
}

// IsTTY reports whether r is connected to a terminal.
func IsTTY(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (p *TerminalPrompter) isTTYInput() bool {
	if p.forceTTY != nil {
		return *p.forceTTY
	}
	return IsTTY(p.in)
}

// ConfirmOverwrite shows the description and waits for y/n. Without a
// terminal it cancels with a warning rather than overwriting unattended.
// EOF and context cancellation also cancel.
func (p *TerminalPrompter) ConfirmOverwrite(ctx context.Context, description string) (Decision, error) {
	if !p.isTTYInput() {
		fmt.Fprintf(p.out, "warning: non-TTY stdin, not overwriting: %s\n", description)
		return Cancel, nil
	}

	fmt.Fprintf(p.out, "\n   %s\n   [o]verwrite  [c]ancel\n   > ", description)

	// Read input in a goroutine so we can respect context cancellation.
	type result struct {
		decision Decision
		err      error
	}
	ch := make(chan result, 1)
	go func() {
		scanner := bufio.NewScanner(p.in)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				ch <- result{err: fmt.Errorf("reading overwrite decision: %w", err)}
			} else {
				ch <- result{decision: Cancel}
			}
			return
		}
		ch <- result{decision: parseInput(scanner.Text())}
	}()

	select {
	case <-ctx.Done():
		return Cancel, nil
	case r := <-ch:
		return r.decision, r.err
	}
}

// parseInput maps a typed answer to a Decision. Anything that is not a
// clear yes cancels.
func parseInput(input string) Decision {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "o", "overwrite", "y", "yes":
		return Overwrite
	default:
		return Cancel
	}
}
