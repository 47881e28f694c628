package form

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/userdir/userdir/internal/submission"
)

// Prompter fills pending entries from line-oriented input.
type Prompter struct {
	in   *bufio.Scanner
	out  io.Writer
	flow *submission.Flow
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer, flow *submission.Flow) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out, flow: flow}
}

// Run prompts for every field of the last pending entry, then asks whether to
// add another one, repeating until the answer is not yes. End of input stops
// prompting and leaves the remaining fields as they are.
func (p *Prompter) Run(ctx context.Context) error {
	entries := p.flow.Entries()
	current := entries[len(entries)-1].LocalID

	for {
		fmt.Fprintf(p.out, "User Information #%d\n", current)
		for _, field := range submission.Fields {
			if err := ctx.Err(); err != nil {
				return err
			}
			value, ok := p.ask(fmt.Sprintf("  %s: ", Label(field)))
			if !ok {
				return p.in.Err()
			}
			if err := p.flow.UpdateField(current, field, value); err != nil {
				return err
			}
		}

		answer, ok := p.ask("Add another user? [y/N]: ")
		if !ok || !isYes(answer) {
			return p.in.Err()
		}
		current = p.flow.AddEntry().LocalID
	}
}

func (p *Prompter) ask(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimRight(p.in.Text(), "\r"), true
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}
