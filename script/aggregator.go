package script

import (
	"strings"

	"github.com/blockberries/themis"
)

// Delimiter separates the fields of a raw response.
const Delimiter = ","

// Record holds the fields extracted from exactly one raw response.
type Record struct {
	Fields []string
}

// Parse splits raw on Delimiter and keeps the first n fields. Trailing
// newlines are stripped from the last kept field only; newlines inside
// earlier fields are preserved.
func Parse(raw string, n int) (Record, error) {
	if n <= 0 {
		return Record{}, nil
	}
	parts := strings.Split(raw, Delimiter)
	if len(parts) < n {
		return Record{}, themis.NewStructuralError(themis.KindMalformedResponse,
			"expected %d fields, got %d", n, len(parts))
	}
	fields := make([]string, n)
	copy(fields, parts[:n])
	fields[n-1] = strings.TrimRight(fields[n-1], "\n")
	return Record{Fields: fields}, nil
}

// ParseFirst parses the first collected response. The remaining
// responses only take part in consensus counting.
func ParseFirst(responses []string, n int) (Record, error) {
	if n <= 0 {
		return Record{}, nil
	}
	if len(responses) == 0 {
		return Record{}, themis.NewStructuralError(themis.KindMalformedResponse, "no responses to parse")
	}
	return Parse(responses[0], n)
}
