package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	nf := FromError("tool", fmt.Errorf("%w: no pair", ErrNotFound))
	assert.Equal(t, OutcomeNotFound, nf.Outcome)
	assert.Contains(t, nf.Reason, "no pair")

	ne := FromError("tool", fmt.Errorf("%w: status 502", ErrNetwork))
	assert.Equal(t, OutcomeError, ne.Outcome)
	assert.False(t, ne.OK())
}

func TestAs(t *testing.T) {
	r := Success("details", "dexscreener", TokenDetails{Symbol: "BONK"})

	d, ok := As[TokenDetails](r)
	assert.True(t, ok)
	assert.Equal(t, "BONK", d.Symbol)

	_, ok = As[AuditStatus](r)
	assert.False(t, ok)

	_, ok = As[TokenDetails](Failure("details", "boom"))
	assert.False(t, ok)
}

func TestVerdict(t *testing.T) {
	assert.True(t, VerdictDangerous.IsValid())
	assert.False(t, Verdict("MAYBE").IsValid())
	assert.Equal(t, "HIGH", VerdictDangerous.Level())
	assert.Greater(t, VerdictCritical.Rank(), VerdictDangerous.Rank())
}
