package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/orchestrator"
	"token-risk-agent/internal/reporting"
	"token-risk-agent/internal/solana"
)

// Verbs understood by Handle.
const (
	VerbAnalyze  = "analyze"
	VerbQuick    = "quick"
	VerbHolders  = "holders"
	VerbTrending = "trending"
	VerbHelp     = "help"
	VerbQuit     = "quit"
	VerbExit     = "exit"
	VerbChat     = "chat"
)

// HelpText lists the interactive commands.
const HelpText = `Available Commands:
───────────────────────────────────────────────────────────────
  analyze <token>    Full risk analysis for a token address
  quick <token>      Quick lookup of token info
  holders <token>    Check holder distribution
  trending           Show trending tokens on Solana
  help               Show this help message
  quit / exit        Exit the agent
───────────────────────────────────────────────────────────────

Example Token Addresses:
  SOL:   So11111111111111111111111111111111111111112
  USDC:  EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v
  BONK:  DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263

Or just ask any question about DeFi tokens!`

// AddressPrompt asks the caller for a missing token address.
const AddressPrompt = "Please provide a Solana token mint address (base58, 32-44 characters) so I can run the analysis."

// Reply is the outcome of one handled line.
type Reply struct {
	Text       string
	Quit       bool // the caller asked to leave
	NeedsInput bool // a token address is required to continue
	Err        error
}

// Intent is a parsed request.
type Intent struct {
	Verb    string
	Address string
	Query   string
}

var addressPattern = regexp.MustCompile(`[1-9A-HJ-NP-Za-km-z]{32,44}`)

// findAddress returns the first valid base58 public key in text.
func findAddress(text string) string {
	for _, m := range addressPattern.FindAllString(text, -1) {
		if solana.ValidatePubkey(m) == nil {
			return m
		}
	}
	return ""
}

// ParseCommand parses an interactive line. Explicit verbs win; a bare address
// means analyze; anything else is a chat query.
func ParseCommand(line string) Intent {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Intent{}
	}

	verb := strings.ToLower(fields[0])
	switch verb {
	case VerbAnalyze, VerbQuick, VerbHolders:
		in := Intent{Verb: verb, Query: line}
		if addr := findAddress(line); addr != "" {
			in.Address = addr
		} else if len(fields) > 1 {
			in.Address = fields[1]
		}
		return in
	case VerbTrending, VerbHelp, VerbQuit, VerbExit:
		return Intent{Verb: verb, Query: line}
	}

	if len(fields) == 1 && solana.ValidatePubkey(fields[0]) == nil {
		return Intent{Verb: VerbAnalyze, Address: fields[0], Query: line}
	}
	return Intent{Verb: VerbChat, Query: line}
}

// analysisWords mark a free-text request as a token check.
var analysisWords = []string{"analy", "risk", "rug", "safe", "scam", "check", "audit", "score"}

// RouteQuery maps a free-text service request onto a verb. Requests that
// name a token action but carry no address route to analyze with an empty
// address, which yields input_required.
func RouteQuery(query string) Intent {
	if in := ParseCommand(query); in.Verb != VerbChat {
		return in
	}

	lower := strings.ToLower(query)
	addr := findAddress(query)
	in := Intent{Query: query, Address: addr}
	switch {
	case strings.Contains(lower, "trending"):
		in.Verb = VerbTrending
	case strings.Contains(lower, "holder") || strings.Contains(lower, "whale"):
		in.Verb = VerbHolders
	case strings.Contains(lower, "quick") || strings.Contains(lower, "overview"):
		in.Verb = VerbQuick
		if addr == "" {
			in.Verb = VerbChat
		}
	case addr != "":
		in.Verb = VerbAnalyze
	case containsAny(lower, analysisWords):
		in.Verb = VerbAnalyze
	default:
		in.Verb = VerbChat
	}
	return in
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Handle runs one interactive line and renders the reply. Errors are turned
// into readable text.
func (a *Agent) Handle(ctx context.Context, line string) Reply {
	return a.Dispatch(ctx, ParseCommand(line), nil)
}

// Dispatch executes a parsed intent.
func (a *Agent) Dispatch(ctx context.Context, in Intent, obs orchestrator.Observer) Reply {
	switch in.Verb {
	case "":
		return Reply{}
	case VerbHelp:
		return Reply{Text: HelpText}
	case VerbQuit, VerbExit:
		return Reply{Text: "Goodbye!", Quit: true}
	case VerbTrending:
		list, err := a.Trending(ctx)
		if err != nil {
			return a.failure(in, err)
		}
		return Reply{Text: reporting.RenderTrending(list)}
	case VerbChat:
		text, err := a.Chat(ctx, in.Query, obs)
		if errors.Is(err, ErrChatUnavailable) {
			if addr := findAddress(in.Query); addr != "" {
				return a.Dispatch(ctx, Intent{Verb: VerbAnalyze, Address: addr, Query: in.Query}, obs)
			}
			return Reply{Text: "Free-text questions need a language model, which is not configured.\n\n" + HelpText}
		}
		if err != nil {
			return a.failure(in, err)
		}
		return Reply{Text: text}
	}

	if in.Address == "" {
		return Reply{Text: fmt.Sprintf("Usage: %s <token_address>\n\n%s", in.Verb, AddressPrompt), NeedsInput: true}
	}

	switch in.Verb {
	case VerbAnalyze:
		r, err := a.Analyze(ctx, in.Address, obs)
		if err != nil {
			return a.failure(in, err)
		}
		return Reply{Text: reporting.RenderAnalysis(r)}
	case VerbQuick:
		r, err := a.Quick(ctx, in.Address, obs)
		if err != nil {
			return a.failure(in, err)
		}
		return Reply{Text: reporting.RenderQuick(r)}
	case VerbHolders:
		hr, err := a.Holders(ctx, in.Address, obs)
		if err != nil {
			return a.failure(in, err)
		}
		return Reply{Text: reporting.RenderHolders(hr)}
	}
	return Reply{Text: fmt.Sprintf("Unknown command %q.\n\n%s", in.Verb, HelpText)}
}

func (a *Agent) failure(in Intent, err error) Reply {
	a.logger.Warn("request failed",
		zap.String("verb", in.Verb),
		zap.String("address", in.Address),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, domain.ErrInvalidAddress):
		return Reply{Text: fmt.Sprintf("%q is not a valid Solana token address.\n\n%s", in.Address, AddressPrompt), NeedsInput: true, Err: err}
	case errors.Is(err, domain.ErrInsufficientData):
		return Reply{Text: fmt.Sprintf("Insufficient data: %v", err), Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Reply{Text: "Request cancelled before the analysis finished.", Err: err}
	default:
		return Reply{Text: fmt.Sprintf("Error: %v", err), Err: err}
	}
}
