// Package prompter implements the interactive consent protocol for CLI
// front ends.
package prompter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/entities"
	"github.com/ShaheerHaq03/Desktop-AI-Assistant/domain/ports"
)

// CliPrompter implements ports.ConsentPrompter over an io.Reader/Writer
// pair, normally stdin/stdout. A single long-lived goroutine owns the
// reader, so a timed-out prompt never strands a goroutine mid-read.
type CliPrompter struct {
	in  io.Reader
	out io.Writer

	start   sync.Once
	lines   chan string
	done    chan struct{} // closed when the reader stops
	readErr error         // set before done is closed
}

var _ ports.ConsentPrompter = (*CliPrompter)(nil)

// NewCliPrompter creates a CliPrompter.
func NewCliPrompter(in io.Reader, out io.Writer) *CliPrompter {
	return &CliPrompter{
		in:    in,
		out:   out,
		lines: make(chan string, 1),
		done:  make(chan struct{}),
	}
}

// IsInteractive checks if the input is a terminal.
func (p *CliPrompter) IsInteractive() bool {
	if f, ok := p.in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	// Non-file readers (tests, pipes from a fronting process) are treated
	// as interactive; the engine's timeout still bounds the wait.
	return true
}

func (p *CliPrompter) startReader() {
	p.start.Do(func() {
		go func() {
			scanner := bufio.NewScanner(p.in)
			for scanner.Scan() {
				p.lines <- scanner.Text()
			}
			p.readErr = scanner.Err()
			if p.readErr == nil {
				p.readErr = io.EOF
			}
			close(p.done)
		}()
	})
}

// RequestConsent presents the action and waits for exactly one answer.
// Context expiry resolves to a cancelled response, never to an allow.
func (p *CliPrompter) RequestConsent(ctx context.Context, prompt ports.ConsentPrompt) (ports.ConsentResponse, error) {
	// Input typed before the prompt is displayed answers nothing: drop
	// lines left over from a prompt that already resolved.
	for drained := false; !drained; {
		select {
		case <-p.lines:
		default:
			drained = true
		}
	}
	p.startReader()

	fmt.Fprintf(p.out, "\nSAFETY CONFIRMATION REQUIRED\n")
	fmt.Fprintf(p.out, "Action: %s\n", prompt.Request.Kind)
	fmt.Fprintf(p.out, "Target: %s\n", prompt.Request.Resource)
	fmt.Fprintf(p.out, "Risk: %s\n", prompt.Tier)
	fmt.Fprintf(p.out, "Options:\n")
	fmt.Fprintf(p.out, "  y / yes    - Allow this action once\n")
	fmt.Fprintf(p.out, "  Y / YES    - Allow and remember\n")
	fmt.Fprintf(p.out, "  n / no     - Deny this action\n")
	fmt.Fprintf(p.out, "  <Enter>    - Cancel\n")
	fmt.Fprintf(p.out, "Your choice: ")

	select {
	case <-ctx.Done():
		fmt.Fprintf(p.out, "\nNo response. Action denied.\n")
		return ports.ConsentResponse{Cancelled: true}, nil
	case <-p.done:
		// An answer can race the reader reaching end of input; prefer it.
		select {
		case text := <-p.lines:
			return parseChoice(text), nil
		default:
		}
		return ports.ConsentResponse{Cancelled: true}, p.readErr
	case text := <-p.lines:
		return parseChoice(text), nil
	}
}

// parseChoice maps the raw answer to a decision. Case matters for the
// allow answers: lowercase allows once, uppercase remembers.
func parseChoice(raw string) ports.ConsentResponse {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "Y" || trimmed == "YES":
		return ports.ConsentResponse{Decision: entities.ConsentAllowAlways}
	case strings.EqualFold(trimmed, "y") || strings.EqualFold(trimmed, "yes"):
		return ports.ConsentResponse{Decision: entities.ConsentAllowOnce}
	case strings.EqualFold(trimmed, "n") || strings.EqualFold(trimmed, "no"):
		return ports.ConsentResponse{Decision: entities.ConsentDeny}
	default:
		return ports.ConsentResponse{Cancelled: true}
	}
}
