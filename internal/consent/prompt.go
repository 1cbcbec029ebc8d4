// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package consent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcelocantos/elevate/internal/operation"
)

// Warning returns the tier-specific warning shown in the prompt, or "" for
// tiers that carry none.
func Warning(t operation.Tier) string {
	switch t {
	case operation.Administrative:
		return "This operation makes system-level changes"
	case operation.Elevated:
		return "This operation requires elevated privileges"
	default:
		return ""
	}
}

// Prompter asks a human on an interactive channel. It blocks until a
// recognised answer arrives and never times out.
type Prompter struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer

	title lipgloss.Style
	label lipgloss.Style
	warn  lipgloss.Style
}

// NewPrompter reads answers from in and writes prompts to out. Styling is
// dropped automatically when out is not a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	r := lipgloss.NewRenderer(out)
	return &Prompter{
		in:    bufio.NewReader(in),
		out:   out,
		title: r.NewStyle().Bold(true),
		label: r.NewStyle().Faint(true),
		warn:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	}
}

// Approve renders the operation and reads answers until one is recognised:
// y/yes approve; n/no or an empty line decline.
func (p *Prompter) Approve(_ context.Context, op operation.Operation) (bool, error) {
	if !op.RequiresApproval {
		return true, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.render(op)
	for {
		fmt.Fprint(p.out, "Do you want to proceed? (y/N): ")
		line, err := p.in.ReadString('\n')
		if line == "" && err != nil {
			fmt.Fprintln(p.out)
			return false, noAnswer(err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no", "":
			return false, nil
		}
		if err != nil {
			fmt.Fprintln(p.out)
			return false, noAnswer(err)
		}
		fmt.Fprintln(p.out, "Please enter 'y' or 'n'")
	}
}

func (p *Prompter) render(op operation.Operation) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.title.Render("Privileged operation required"))
	if op.Description != "" {
		fmt.Fprintf(p.out, "%s %s\n", p.label.Render("Description:"), op.Description)
	}
	fmt.Fprintf(p.out, "%s %s\n", p.label.Render("Command:"), op.CommandLine())
	fmt.Fprintf(p.out, "%s %s\n", p.label.Render("Permission level:"), op.Tier)
	if w := Warning(op.Tier); w != "" {
		fmt.Fprintln(p.out, p.warn.Render("Warning: "+w))
	}
}

func noAnswer(err error) error {
	if errors.Is(err, io.EOF) {
		return ErrNoAnswer
	}
	return fmt.Errorf("%w: %v", ErrNoAnswer, err)
}
