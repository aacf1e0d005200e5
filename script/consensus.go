package script

import (
	"fmt"

	"github.com/blockberries/themis/claim"
)

// Policy decides how responses are counted against the threshold.
type Policy uint8

const (
	// PolicyNone: the variant extracts fields and reports no validity.
	PolicyNone Policy = iota
	// PolicyRawCount: valid iff len(responses) >= minCount. Used when
	// the responses cannot be authenticated independently.
	PolicyRawCount
	// PolicyValidCount: valid iff the number of responses holding a
	// claim that verifies is >= minCount.
	PolicyValidCount
)

func (p Policy) String() string {
	switch p {
	case PolicyNone:
		return "none"
	case PolicyRawCount:
		return "raw-count"
	case PolicyValidCount:
		return "valid-count"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// Evaluate applies the policy. The comparison is inclusive and minCount
// is used as given. Under PolicyValidCount a response that is not a
// claim object does not count, while a claim whose fields cannot be
// parsed aborts with an InvalidClaimEncoding error.
func Evaluate(policy Policy, responses []string, minCount int64) (bool, error) {
	switch policy {
	case PolicyNone:
		return false, nil
	case PolicyRawCount:
		return int64(len(responses)) >= minCount, nil
	case PolicyValidCount:
		n, err := CountValid(responses)
		if err != nil {
			return false, err
		}
		return n >= minCount, nil
	default:
		return false, fmt.Errorf("script: invalid policy %s", policy)
	}
}

// CountValid returns the number of responses carrying an authentic claim.
func CountValid(responses []string) (int64, error) {
	var n int64
	for i, raw := range responses {
		rec, ok := claim.ParseRecord(raw)
		if !ok {
			continue
		}
		valid, err := claim.Verify(rec)
		if err != nil {
			return 0, fmt.Errorf("response %d: %w", i, err)
		}
		if valid {
			n++
		}
	}
	return n, nil
}
