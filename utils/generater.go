package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ShortID returns a compact url-safe identifier for new records.
func ShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
