// Package repl runs the interactive command loop.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"token-risk-agent/internal/agent"
)

// Prompt is printed before each input line.
const Prompt = "\n> "

// Handler handles one command line. *agent.Agent implements it.
type Handler interface {
	Handle(ctx context.Context, line string) agent.Reply
}

// Run prints the help text and reads lines from in until EOF, quit or exit,
// or ctx cancellation. Replies are written to out.
func Run(ctx context.Context, h Handler, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, agent.HelpText)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, Prompt)
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		reply := h.Handle(ctx, line)
		if reply.Quit {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, reply.Text)
	}

	fmt.Fprintln(out)
	return scanner.Err()
}
