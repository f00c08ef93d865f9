package asset

import (
	"strings"

	"github.com/google/uuid"
)

// NewGUID returns a fresh asset GUID: a random UUID as 32 hex digits.
func NewGUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
