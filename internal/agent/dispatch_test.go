package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/tools"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Intent
	}{
		{"", Intent{}},
		{"help", Intent{Verb: VerbHelp, Query: "help"}},
		{"EXIT", Intent{Verb: VerbExit, Query: "EXIT"}},
		{"analyze " + testMint, Intent{Verb: VerbAnalyze, Address: testMint, Query: "analyze " + testMint}},
		{"/quick " + testMint, Intent{Verb: VerbQuick, Address: testMint, Query: "quick " + testMint}},
		{"holders", Intent{Verb: VerbHolders, Query: "holders"}},
		{"holders xyz", Intent{Verb: VerbHolders, Address: "xyz", Query: "holders xyz"}},
		{testMint, Intent{Verb: VerbAnalyze, Address: testMint, Query: testMint}},
		{"what is a rug pull?", Intent{Verb: VerbChat, Query: "what is a rug pull?"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCommand(tt.line))
		})
	}
}

func TestRouteQuery(t *testing.T) {
	tests := []struct {
		query   string
		verb    string
		address string
	}{
		{"Analyze this token for risk: So11111111111111111111111111111111111111112", VerbAnalyze, "So11111111111111111111111111111111111111112"},
		{"Is this token safe? EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", VerbAnalyze, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"},
		{"What's the holder concentration for DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263?", VerbHolders, bonkMint},
		{"What are the trending tokens right now?", VerbTrending, ""},
		{"Is this token safe?", VerbAnalyze, ""},
		{"Give me a quick overview of " + testMint, VerbQuick, testMint},
		{"How do liquidity pools work?", VerbChat, ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			in := RouteQuery(tt.query)
			assert.Equal(t, tt.verb, in.Verb)
			assert.Equal(t, tt.address, in.Address)
		})
	}
}

func TestHandle_Verbs(t *testing.T) {
	a, _ := newTestAgent(t, nil, safeTools()...)
	ctx := context.Background()

	reply := a.Handle(ctx, "help")
	assert.Equal(t, HelpText, reply.Text)

	reply = a.Handle(ctx, "quit")
	assert.True(t, reply.Quit)

	reply = a.Handle(ctx, "analyze "+testMint)
	assert.Contains(t, reply.Text, "## Risk Analysis: TEST")
	assert.Contains(t, reply.Text, "### Verdict & Recommendation")
	assert.NoError(t, reply.Err)

	reply = a.Handle(ctx, testMint)
	assert.Contains(t, reply.Text, "## Risk Analysis: TEST")

	reply = a.Handle(ctx, "quick "+testMint)
	assert.Contains(t, reply.Text, "## Quick Scan: TEST")

	reply = a.Handle(ctx, "   ")
	assert.Empty(t, reply.Text)
}

func TestHandle_MissingAddress(t *testing.T) {
	a, set := newTestAgent(t, nil)

	reply := a.Handle(context.Background(), "analyze")
	assert.True(t, reply.NeedsInput)
	assert.Contains(t, reply.Text, "Usage: analyze <token_address>")
	assert.Zero(t, set[tools.SecurityCheck].count())
}

func TestHandle_InvalidAddress(t *testing.T) {
	a, _ := newTestAgent(t, nil)

	reply := a.Handle(context.Background(), "holders xyz")
	assert.True(t, reply.NeedsInput)
	assert.ErrorIs(t, reply.Err, domain.ErrInvalidAddress)
	assert.Contains(t, reply.Text, "not a valid Solana token address")
}

func TestHandle_Trending(t *testing.T) {
	a, _ := newTestAgent(t, nil, succeed(tools.Trending, []domain.TrendingToken{{Symbol: "AAA", Address: testMint}}))

	reply := a.Handle(context.Background(), "trending")
	assert.Contains(t, reply.Text, "## Trending Solana Tokens")
	assert.Contains(t, reply.Text, "AAA")
}

func TestHandle_ChatWithoutModel(t *testing.T) {
	a, _ := newTestAgent(t, nil)

	reply := a.Handle(context.Background(), "how do pools work?")
	assert.Contains(t, reply.Text, "not configured")
	assert.Contains(t, reply.Text, "Available Commands")
}

func TestHandle_ChatRoutedToPlanner(t *testing.T) {
	a, _ := newTestAgent(t, answer("Pools pair two tokens."))

	reply := a.Handle(context.Background(), "how do pools work?")
	assert.Equal(t, "Pools pair two tokens.", reply.Text)
}

func TestHandle_InsufficientData(t *testing.T) {
	a, _ := newTestAgent(t, nil)

	reply := a.Handle(context.Background(), "analyze "+testMint)
	assert.Contains(t, reply.Text, "**Risk Score: insufficient data**")
}
