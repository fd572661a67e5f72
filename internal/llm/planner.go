package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/orchestrator"
	"token-risk-agent/internal/tools"
)

// ErrEmptyResponse is returned when the model returns no choices.
var ErrEmptyResponse = errors.New("llm: empty response")

// Planner asks the model for the next tool calls. It implements
// orchestrator.Planner and replays the run transcript on every step.
type Planner struct {
	client      ChatClient
	model       string
	temperature float32
	maxTokens   int
	prompt      string
	tools       []openai.Tool
	known       map[string]bool
	logger      *zap.Logger
}

// Config for creating Planner.
type Config struct {
	Client      ChatClient // required
	Model       string
	Temperature float32
	MaxTokens   int
	Prompt      string // default SystemPrompt
	Tools       []tools.Descriptor
	Logger      *zap.Logger
}

// NewPlanner creates a Planner exposing descriptors as callable functions.
func NewPlanner(cfg Config) *Planner {
	p := &Planner{
		client:      cfg.Client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		prompt:      cfg.Prompt,
		known:       make(map[string]bool, len(cfg.Tools)),
		logger:      cfg.Logger,
	}
	if p.model == "" {
		p.model = DefaultModel
	}
	if p.maxTokens <= 0 {
		p.maxTokens = DefaultMaxTokens
	}
	if p.prompt == "" {
		p.prompt = SystemPrompt
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.Named("llm")

	for _, d := range cfg.Tools {
		p.tools = append(p.tools, functionTool(d))
		p.known[d.Name] = true
	}
	return p
}

// Name implements orchestrator.Namer.
func (p *Planner) Name() string { return "llm" }

// Allowed implements orchestrator.ToolFilter.
func (p *Planner) Allowed(tool string) bool { return p.known[tool] }

// Next implements orchestrator.Planner.
func (p *Planner) Next(ctx context.Context, st *orchestrator.RunState) (orchestrator.Step, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    p.messages(st),
		Tools:       p.tools,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return orchestrator.Step{}, fmt.Errorf("%w: chat completion: %v", domain.ErrNetwork, err)
	}
	if len(resp.Choices) == 0 {
		return orchestrator.Step{}, ErrEmptyResponse
	}
	msg := resp.Choices[0].Message

	if len(msg.ToolCalls) == 0 {
		return orchestrator.Finish(strings.TrimSpace(msg.Content)), nil
	}

	step := orchestrator.Step{Label: "model-selected tools"}
	for i, tc := range msg.ToolCalls {
		id := tc.ID
		if id == "" {
			id = fmt.Sprintf("call_%d_%d", len(st.Steps), i)
		}
		var args tools.Args
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				p.logger.Warn("undecodable tool arguments",
					zap.String("tool", tc.Function.Name),
					zap.String("arguments", tc.Function.Arguments),
					zap.Error(err),
				)
			}
		}
		if args.Address == "" && tc.Function.Name != tools.Trending {
			args.Address = st.Address
		}
		step.Calls = append(step.Calls, orchestrator.ToolCall{ID: id, Name: tc.Function.Name, Args: args})
	}
	return step, nil
}

// messages rebuilds the conversation: system, user, then one assistant
// message per step followed by its tool results.
func (p *Planner) messages(st *orchestrator.RunState) []openai.ChatCompletionMessage {
	user := st.Query
	if user == "" {
		user = "Analyze token " + st.Address
	} else if st.Address != "" && !strings.Contains(user, st.Address) {
		user += "\n\nToken address: " + st.Address
	}

	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: p.prompt},
		{Role: openai.ChatMessageRoleUser, Content: user},
	}

	for _, rec := range st.Steps {
		assistant := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
		for _, c := range rec.Calls {
			args, _ := json.Marshal(c.Args)
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ToolCall{
				ID:   c.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      c.Name,
					Arguments: string(args),
				},
			})
		}
		msgs = append(msgs, assistant)

		for i, c := range rec.Calls {
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Name:       c.Name,
				ToolCallID: c.ID,
				Content:    encodeResult(rec.Results[i]),
			})
		}
	}
	return msgs
}

// toolMessage is the JSON a tool result is reported to the model as.
type toolMessage struct {
	Status string `json:"status"`
	Source string `json:"source,omitempty"`
	Reason string `json:"reason,omitempty"`
	Data   any    `json:"data,omitempty"`
}

func encodeResult(r domain.ToolResult) string {
	b, err := json.Marshal(toolMessage{
		Status: r.Outcome.String(),
		Source: r.Source,
		Reason: r.Reason,
		Data:   r.Payload,
	})
	if err != nil {
		return fmt.Sprintf(`{"status":"error","reason":%q}`, err.Error())
	}
	return string(b)
}

func functionTool(d tools.Descriptor) openai.Tool {
	params := jsonschema.Definition{
		Type:       jsonschema.Object,
		Properties: make(map[string]jsonschema.Definition, len(d.Params)),
	}
	for _, prm := range d.Params {
		typ := jsonschema.String
		if prm.Type == "integer" {
			typ = jsonschema.Integer
		}
		params.Properties[prm.Name] = jsonschema.Definition{Type: typ, Description: prm.Description}
		if prm.Required {
			params.Required = append(params.Required, prm.Name)
		}
	}
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  params,
		},
	}
}
