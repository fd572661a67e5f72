package storage

import (
	"errors"
	"fmt"

	"token-risk-agent/internal/domain"
)

// Store errors. ErrNotFound wraps domain.ErrNotFound so tool and service
// layers can match on either.
var (
	// ErrNotFound means no task or allow-list entry matches the key.
	ErrNotFound = fmt.Errorf("%w: no such record", domain.ErrNotFound)

	// ErrDuplicateKey means the mint is already allow-listed.
	ErrDuplicateKey = errors.New("record already exists")

	// ErrInvalidInput means a task without ID or an entry without mint.
	ErrInvalidInput = errors.New("missing record key")
)
