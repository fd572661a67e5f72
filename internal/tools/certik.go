package tools

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/fetch"
)

const sourceCertiK = "certik"

type certikResponse struct {
	Audited     flexBool  `json:"audited"`
	AuditStatus string    `json:"audit_status"`
	Score       flexFloat `json:"security_score"`
	AuditDate   *string   `json:"audit_date"`
}

// CertiK reads audit records from the CertiK API.
type CertiK struct {
	client  *fetch.Client
	baseURL string
}

// NewCertiK creates a CertiK client.
func NewCertiK(client *fetch.Client, baseURL string) *CertiK {
	return &CertiK{client: client, baseURL: baseURL}
}

// Audit returns the audit status of address. A token unknown to CertiK is
// reported as not audited rather than not found.
func (c *CertiK) Audit(ctx context.Context, address string) (domain.AuditStatus, error) {
	var resp certikResponse
	u := c.baseURL + "/v1/tokens/solana/" + url.PathEscape(address)
	err := c.client.GetJSON(ctx, sourceCertiK, u, jsonHeader, &resp)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.AuditStatus{Status: domain.AuditStatusNotAudited}, nil
	}
	if err != nil {
		return domain.AuditStatus{}, err
	}

	status := normalizeAuditStatus(resp.AuditStatus, resp.Audited.Value)
	return domain.AuditStatus{
		Audited: resp.Audited.Value,
		Status:  status,
		Score:   resp.Score.Ptr(),
		Date:    resp.AuditDate,
	}, nil
}

func normalizeAuditStatus(raw string, audited bool) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "pending"), strings.Contains(s, "progress"):
		return domain.AuditStatusPending
	case s == "" && audited:
		return "audited"
	case s == "", strings.Contains(s, "not"):
		if audited {
			return "audited"
		}
		return domain.AuditStatusNotAudited
	}
	return s
}

func certikTool(c *CertiK) Tool {
	return newAddressTool(AuditStatus,
		"Check whether the token has a CertiK audit, its status, security score and audit date.",
		func(ctx context.Context, args Args) (any, string, error) {
			v, err := c.Audit(ctx, args.Address)
			return v, sourceCertiK, err
		})
}
