package builder

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// nameHash derives a stable identity from normalized input: trim,
// lowercase, md5. Repeat ingestion of the same name always lands on
// the same node.
func nameHash(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// AuthorID derives an author's identity from the name alone.
// Organization is excluded on purpose: the same person publishing
// under several affiliations over a career must merge, at the cost of
// a small false-merge rate between true same-name authors.
func AuthorID(name string) string {
	return nameHash(name)
}

// FieldID derives a field-of-study identity from its name.
func FieldID(name string) string {
	return nameHash(name)
}

// VenueID derives a venue identity from its name.
func VenueID(name string) string {
	return nameHash(name)
}

// ReferenceID derives a cited-work identity from its title, for
// citations that carry no natural key.
func ReferenceID(title string) string {
	return nameHash(title)
}
