package tools

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/fetch"
)

const sourceRugcheck = "rugcheck"

// Rugcheck fetches the public rugcheck token page.
type Rugcheck struct {
	client  *fetch.Client
	baseURL string
}

// NewRugcheck creates a Rugcheck client.
func NewRugcheck(client *fetch.Client, baseURL string) *Rugcheck {
	return &Rugcheck{client: client, baseURL: baseURL}
}

// Report looks for the risk section of the token page. A page without one
// means the token is not indexed.
func (r *Rugcheck) Report(ctx context.Context, address string) (domain.RugcheckSummary, error) {
	page := r.baseURL + "/token/" + url.PathEscape(address)
	body, err := r.client.Get(ctx, sourceRugcheck, page, nil)
	if err != nil {
		return domain.RugcheckSummary{}, err
	}

	label := riskHeading(body)
	if label == "" {
		return domain.RugcheckSummary{}, fmt.Errorf("%w: token not indexed on rugcheck", domain.ErrNotFound)
	}
	return domain.RugcheckSummary{
		RiskSectionFound: true,
		RiskLabel:        label,
		URL:              page,
	}, nil
}

// riskHeading returns the first visible text node mentioning risk. Script and
// style contents, attributes and tag names do not count.
func riskHeading(body []byte) string {
	z := html.NewTokenizer(bytes.NewReader(body))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := strings.Join(strings.Fields(string(z.Text())), " ")
			if strings.Contains(strings.ToLower(text), "risk") {
				return text
			}
		}
	}
}

func isRawText(tag []byte) bool {
	switch string(tag) {
	case "script", "style", "noscript":
		return true
	}
	return false
}

func rugcheckTool(r *Rugcheck) Tool {
	return newAddressTool(RugcheckReport,
		"Fetch the rugcheck.xyz report page and return its risk section heading.",
		func(ctx context.Context, args Args) (any, string, error) {
			v, err := r.Report(ctx, args.Address)
			return v, sourceRugcheck, err
		})
}
