package jobs

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// idLength is the width of a posting identifier in hex characters.
const idLength = 16

// PostingID derives the canonical identifier for a posting from its title,
// company and location. Identical inputs always produce identical ids, so
// re-ingesting the same posting can never create a second canonical row.
func PostingID(title, company, location string) string {
	content := strings.ToLower(title) + strings.ToLower(company) + strings.ToLower(location)
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])[:idLength]
}
