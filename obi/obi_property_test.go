package obi_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/obi"
)

type linkRecord struct {
	Valid bool   `obi:"valid"`
	URL   string `obi:"url"`
	Count uint32 `obi:"count"`
	Tags  []string
}

// TestRoundTripProperties verifies decode(encode(r)) == r and the
// strictness of the decoder for arbitrary records.
func TestRoundTripProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(r)) == r", prop.ForAll(
		func(valid bool, url string, count uint32, tags []string) bool {
			in := linkRecord{Valid: valid, URL: url, Count: count, Tags: tags}
			data, err := obi.Marshal(in)
			if err != nil {
				return false
			}
			var out linkRecord
			if err := obi.Unmarshal(data, &out); err != nil {
				return false
			}
			if out.Valid != in.Valid || out.URL != in.URL || out.Count != in.Count || len(out.Tags) != len(in.Tags) {
				return false
			}
			for i := range in.Tags {
				if out.Tags[i] != in.Tags[i] {
					return false
				}
			}
			return true
		},
		gen.Bool(),
		gen.AlphaString(),
		gen.UInt32(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("encoding is deterministic", prop.ForAll(
		func(url string, tags []string) bool {
			in := linkRecord{URL: url, Tags: tags}
			a, err1 := obi.Marshal(in)
			b, err2 := obi.Marshal(in)
			return err1 == nil && err2 == nil && bytes.Equal(a, b)
		},
		gen.AlphaString(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("appended bytes are rejected", prop.ForAll(
		func(url string, extra []byte) bool {
			if len(extra) == 0 {
				return true
			}
			data, err := obi.Marshal(linkRecord{URL: url})
			if err != nil {
				return false
			}
			var out linkRecord
			err = obi.Unmarshal(append(data, extra...), &out)
			return errors.Is(err, themis.ErrMalformedEncoding)
		},
		gen.AlphaString(),
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
