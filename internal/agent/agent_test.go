package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/orchestrator"
	"token-risk-agent/internal/storage"
	"token-risk-agent/internal/storage/memory"
	"token-risk-agent/internal/tools"
)

const (
	testMint = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeTool struct {
	name string
	res  func(args tools.Args) domain.ToolResult

	mu    sync.Mutex
	calls int
}

func (f *fakeTool) Descriptor() tools.Descriptor { return tools.Descriptor{Name: f.name} }

func (f *fakeTool) Call(_ context.Context, args tools.Args) domain.ToolResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.res(args)
}

func (f *fakeTool) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func succeed(name string, payload any) *fakeTool {
	return &fakeTool{name: name, res: func(tools.Args) domain.ToolResult {
		return domain.Success(name, "dexscreener", payload)
	}}
}

func fail(name string) *fakeTool {
	return &fakeTool{name: name, res: func(tools.Args) domain.ToolResult {
		return domain.Failure(name, "network error: upstream unavailable")
	}}
}

func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }

// newTestAgent registers every tool as failing unless overridden.
func newTestAgent(t *testing.T, chat orchestrator.Planner, overrides ...*fakeTool) (*Agent, map[string]*fakeTool) {
	t.Helper()
	set := map[string]*fakeTool{}
	for _, name := range []string{
		tools.SecurityCheck, tools.TokenMetadata, tools.RugcheckReport, tools.IncidentCheck,
		tools.AuditStatus, tools.HolderDistribution, tools.LargestHolders, tools.TransactionHistory,
		tools.TokenDetails, tools.TradingMetrics, tools.PoolSnapshot, tools.Trending, tools.MintInspection,
	} {
		set[name] = fail(name)
	}
	for _, o := range overrides {
		set[o.name] = o
	}

	reg := tools.NewRegistry(nil)
	for _, f := range set {
		require.NoError(t, reg.Register(f))
	}

	a, err := New(Options{
		Registry:         reg,
		AllowList:        memory.NewAllowListStore(storage.DefaultEstablishedTokens()...),
		Chat:             chat,
		OnChainFallbacks: true,
		Now:              func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return a, set
}

func safeTools() []*fakeTool {
	created := testNow.AddDate(-1, 0, 0)
	return []*fakeTool{
		succeed(tools.SecurityCheck, domain.SecuritySignal{
			MintAuthorityRenounced:   boolPtr(true),
			FreezeAuthorityRenounced: boolPtr(true),
		}),
		succeed(tools.AuditStatus, domain.AuditStatus{Audited: true, Status: "audited"}),
		succeed(tools.TokenDetails, domain.TokenDetails{
			Name:          "Test Token",
			Symbol:        "TEST",
			LiquidityUSD:  floatPtr(500_000),
			PairCreatedAt: &created,
		}),
		succeed(tools.HolderDistribution, domain.HolderDistribution{
			SampleSize:            20,
			Top10ConcentrationPct: 20,
			ConcentrationRisk:     domain.ConcentrationLow,
		}),
	}
}

// answer finishes immediately with fixed text.
type answer string

func (a answer) Next(context.Context, *orchestrator.RunState) (orchestrator.Step, error) {
	return orchestrator.Finish(string(a)), nil
}

func TestNew_RequiresRegistry(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestAnalyze_RendersReport(t *testing.T) {
	a, set := newTestAgent(t, nil, safeTools()...)

	r, err := a.Analyze(context.Background(), testMint, nil)
	require.NoError(t, err)
	assert.Equal(t, "TEST", r.Title)
	assert.Equal(t, domain.VerdictSafe, r.Assessment.Verdict)
	assert.Equal(t, 1, set[tools.IncidentCheck].count())
}

func TestAnalyze_InvalidAddress(t *testing.T) {
	a, set := newTestAgent(t, nil)

	_, err := a.Analyze(context.Background(), "not-an-address", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	assert.Zero(t, set[tools.SecurityCheck].count())
}

func TestAnalyze_AllowListedToken(t *testing.T) {
	a, set := newTestAgent(t, nil, safeTools()...)

	r, err := a.Analyze(context.Background(), bonkMint, nil)
	require.NoError(t, err)
	assert.True(t, r.Assessment.AllowListed)
	assert.Zero(t, set[tools.HolderDistribution].count())
}

func TestQuick_PhaseOneOnly(t *testing.T) {
	a, set := newTestAgent(t, nil, safeTools()...)

	_, err := a.Quick(context.Background(), testMint, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, set[tools.SecurityCheck].count())
	assert.Zero(t, set[tools.HolderDistribution].count())
}

func TestHolders_FallsBackToLargestHolders(t *testing.T) {
	a, _ := newTestAgent(t, nil,
		succeed(tools.TokenMetadata, domain.TokenMetadata{Symbol: "TEST", Name: "Test Token"}),
		succeed(tools.LargestHolders, domain.HolderDistribution{SampleSize: 20, Top10ConcentrationPct: 64, Source: "solana-rpc"}),
	)

	hr, err := a.Holders(context.Background(), testMint, nil)
	require.NoError(t, err)
	require.NotNil(t, hr.Holders)
	assert.Equal(t, "solana-rpc", hr.Holders.Source)
	assert.Equal(t, []string{tools.PoolSnapshot}, hr.Failed)
}

func TestHolders_AllSourcesFail(t *testing.T) {
	a, _ := newTestAgent(t, nil)

	_, err := a.Holders(context.Background(), testMint, nil)
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestTrending(t *testing.T) {
	list := []domain.TrendingToken{{Symbol: "AAA", Address: testMint, Volume24h: 10}}
	a, _ := newTestAgent(t, nil, succeed(tools.Trending, list))

	got, err := a.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, list, got)
}

func TestTrending_Failure(t *testing.T) {
	a, _ := newTestAgent(t, nil)

	_, err := a.Trending(context.Background())
	assert.Error(t, err)
}

func TestChat(t *testing.T) {
	a, _ := newTestAgent(t, answer("BONK looks established."))
	assert.True(t, a.ChatEnabled())

	text, err := a.Chat(context.Background(), "is bonk legit?", nil)
	require.NoError(t, err)
	assert.Equal(t, "BONK looks established.", text)
}

func TestChat_Unavailable(t *testing.T) {
	a, _ := newTestAgent(t, nil)
	assert.False(t, a.ChatEnabled())

	_, err := a.Chat(context.Background(), "hello", nil)
	assert.ErrorIs(t, err, ErrChatUnavailable)
}
