package tools

import (
	"context"
	"strings"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/fetch"
)

const (
	sourceSlowMist    = "slowmist"
	shortAddressChars = 8
)

var projectNameParam = Param{
	Name:        "project_name",
	Type:        "string",
	Description: "Project name to search for; defaults to the first 8 characters of the address",
}

// SlowMist searches the SlowMist hacked-projects page for a term.
type SlowMist struct {
	client  *fetch.Client
	baseURL string
}

// NewSlowMist creates a SlowMist client.
func NewSlowMist(client *fetch.Client, baseURL string) *SlowMist {
	return &SlowMist{client: client, baseURL: baseURL}
}

// SearchTerm returns the project name, or the address prefix when empty.
func SearchTerm(address, projectName string) string {
	if term := strings.TrimSpace(projectName); term != "" {
		return term
	}
	if len(address) > shortAddressChars {
		return address[:shortAddressChars]
	}
	return address
}

// Incidents reports whether the term appears in the incident feed.
func (s *SlowMist) Incidents(ctx context.Context, address, projectName string) (domain.IncidentRecord, error) {
	term := SearchTerm(address, projectName)
	body, err := s.client.Get(ctx, sourceSlowMist, s.baseURL+"/", nil)
	if err != nil {
		return domain.IncidentRecord{}, err
	}

	rec := domain.IncidentRecord{SearchTerm: term}
	if strings.Contains(strings.ToLower(string(body)), strings.ToLower(term)) {
		rec.Found = true
		rec.SourceNote = "Project mentioned in SlowMist incident database, review at " + s.baseURL + "/"
	} else {
		rec.SourceNote = "No known security incidents found in SlowMist database"
	}
	return rec, nil
}

func slowmistTool(s *SlowMist) Tool {
	return newAddressTool(IncidentCheck,
		"Search the SlowMist hacked-projects database for the project name or address prefix.",
		func(ctx context.Context, args Args) (any, string, error) {
			v, err := s.Incidents(ctx, args.Address, args.ProjectName)
			return v, sourceSlowMist, err
		},
		projectNameParam)
}
