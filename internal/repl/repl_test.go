package repl

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-risk-agent/internal/agent"
)

type echoHandler struct {
	lines []string
}

func (h *echoHandler) Handle(_ context.Context, line string) agent.Reply {
	h.lines = append(h.lines, line)
	if line == "quit" {
		return agent.Reply{Quit: true}
	}
	return agent.Reply{Text: "echo: " + line}
}

func TestRun_HandlesLinesUntilQuit(t *testing.T) {
	h := &echoHandler{}
	var out bytes.Buffer

	err := Run(context.Background(), h, strings.NewReader("trending\n\n  help  \nquit\nanalyze never\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"trending", "help", "quit"}, h.lines)
	assert.Contains(t, out.String(), "Available Commands:")
	assert.Contains(t, out.String(), "echo: trending")
	assert.Contains(t, out.String(), "Goodbye!")
	assert.NotContains(t, out.String(), "never")
}

func TestRun_StopsAtEOF(t *testing.T) {
	h := &echoHandler{}
	var out bytes.Buffer

	require.NoError(t, Run(context.Background(), h, strings.NewReader("trending"), &out))
	assert.Equal(t, []string{"trending"}, h.lines)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := &echoHandler{}
	err := Run(ctx, h, strings.NewReader("trending\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.lines)
}
