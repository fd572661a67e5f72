// Package service exposes the agent over HTTP: an agent card, task send and
// stream endpoints, and task lookup.
package service

// AgentCard describes the agent to service clients.
type AgentCard struct {
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	URL                string       `json:"url"`
	Version            string       `json:"version"`
	DefaultInputModes  []string     `json:"default_input_modes"`
	DefaultOutputModes []string     `json:"default_output_modes"`
	Capabilities       Capabilities `json:"capabilities"`
	Skills             []Skill      `json:"skills"`
}

// Capabilities lists protocol features the agent supports.
type Capabilities struct {
	Streaming         bool `json:"streaming"`
	PushNotifications bool `json:"push_notifications"`
}

// Skill is one declared capability with example queries.
type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Examples    []string `json:"examples"`
}

// Skill identifiers.
const (
	SkillTokenRisk = "token_risk_analysis"
	SkillHolders   = "holder_analysis"
	SkillTrending  = "trending_tokens"
)

// NewAgentCard returns the card served at /.well-known/agent.json.
func NewAgentCard(url string) AgentCard {
	return AgentCard{
		Name:               "DeFi Risk Assessment Agent",
		Description:        "Analyzes Solana tokens for rug-pull risk using public security, holder, liquidity, audit and incident data",
		URL:                url,
		Version:            Version,
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"text/plain"},
		Capabilities:       Capabilities{Streaming: true},
		Skills: []Skill{
			{
				ID:          SkillTokenRisk,
				Name:        "DeFi Token Risk Analysis",
				Description: "Analyzes cryptocurrency tokens for rug-pull risk using security metrics, holder distribution, liquidity, and trading patterns",
				Tags:        []string{"defi", "risk-assessment", "rug-pull-detection", "token-security"},
				Examples: []string{
					"Analyze this token for risk: So11111111111111111111111111111111111111112",
					"Check the rug-pull risk for token EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
					"Is this token safe? EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
				},
			},
			{
				ID:          SkillHolders,
				Name:        "Holder Distribution Analysis",
				Description: "Analyzes token holder concentration and distribution patterns to identify whale risks and potential rug-pull indicators",
				Tags:        []string{"defi", "holders", "concentration", "whale-analysis"},
				Examples: []string{
					"Show me the top holders for this token: So11111111111111111111111111111111111111112",
					"What's the holder concentration for DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263?",
				},
			},
			{
				ID:          SkillTrending,
				Name:        "Trending Tokens Discovery",
				Description: "Identifies currently trending tokens on Solana based on price change and trading volume",
				Tags:        []string{"defi", "trending", "discovery", "market-analysis"},
				Examples: []string{
					"What are the trending tokens right now?",
					"Show me top trending tokens on Solana",
				},
			},
		},
	}
}
