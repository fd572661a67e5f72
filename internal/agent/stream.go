package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/orchestrator"
	"token-risk-agent/internal/reporting"
)

// Update is one event of a streamed request. Working updates carry progress
// text; the last update is input_required, completed or failed and carries
// the reply.
type Update struct {
	State   domain.TaskState
	Content string
}

// Stream routes a free-text request and runs it, emitting updates in
// generation order. The channel is closed after the final update, or early
// when ctx is cancelled.
func (a *Agent) Stream(ctx context.Context, query, contextID string) <-chan Update {
	out := make(chan Update)

	go func() {
		defer close(out)

		send := func(u Update) bool {
			select {
			case out <- u:
				return true
			case <-ctx.Done():
				return false
			}
		}

		in := RouteQuery(query)
		a.logger.Debug("streaming request",
			zap.String("context_id", contextID),
			zap.String("verb", in.Verb),
			zap.String("address", in.Address),
		)

		if !send(Update{State: domain.TaskWorking, Content: startMessage(in)}) {
			return
		}
		reply := a.Dispatch(ctx, in, &streamObserver{send: send})
		if ctx.Err() != nil {
			return
		}

		final := Update{State: domain.TaskCompleted, Content: reply.Text}
		switch {
		case reply.NeedsInput:
			final.State = domain.TaskInputRequired
		case reply.Err != nil:
			final.State = domain.TaskFailed
		}
		send(final)
	}()

	return out
}

func startMessage(in Intent) string {
	switch in.Verb {
	case VerbAnalyze:
		if in.Address == "" {
			return "Preparing a token risk analysis..."
		}
		return fmt.Sprintf("Analyzing token %s for rug-pull risk...", reporting.ShortAddress(in.Address))
	case VerbQuick:
		return fmt.Sprintf("Running a quick scan of %s...", reporting.ShortAddress(in.Address))
	case VerbHolders:
		return "Checking holder distribution..."
	case VerbTrending:
		return "Fetching trending Solana tokens..."
	default:
		return "Processing your question..."
	}
}

// streamObserver republishes engine progress as working updates.
type streamObserver struct {
	send func(Update) bool
}

func (o *streamObserver) StepStarted(step orchestrator.Step) {
	names := make([]string, len(step.Calls))
	for i, c := range step.Calls {
		names[i] = c.Name
	}
	label := step.Label
	if label == "" {
		label = "calling tools"
	}
	o.send(Update{State: domain.TaskWorking, Content: fmt.Sprintf("%s (%s)", label, strings.Join(names, ", "))})
}

func (o *streamObserver) ToolFinished(call orchestrator.ToolCall, res domain.ToolResult) {
	var msg string
	switch res.Outcome {
	case domain.OutcomeSuccess:
		msg = fmt.Sprintf("%s: ok (Source: %s)", call.Name, reporting.SourceName(res.Source))
	case domain.OutcomeNotFound:
		msg = fmt.Sprintf("%s: no data", call.Name)
	default:
		msg = fmt.Sprintf("%s: unavailable (%s)", call.Name, res.Reason)
	}
	o.send(Update{State: domain.TaskWorking, Content: msg})
}
