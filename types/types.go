// Package types defines the call inputs and results exchanged with
// the oracle host.
//
// These are plain Go structs whose field order is their wire order:
// they are serialized with the canonical obi encoding, and the obi
// tags name the fields in the published schemas. A script accepts
// exactly one input shape and produces exactly one result shape.
package types

// VerificationData is the structured method/value pair of a
// verification request, e.g. {"tweet", "1392033585675317252"}.
type VerificationData struct {
	Method string `obi:"method"`
	Value  string `obi:"value"`
}

// VerificationCallInput is the call input of scripts that forward a
// method/value pair to the data source.
type VerificationCallInput struct {
	Application      string           `obi:"application"`
	VerificationData VerificationData `obi:"verification_data"`
}

// HexCallInput is the call input of scripts that forward a
// pre-encoded payload. CallData is hex encoded.
type HexCallInput struct {
	Application string `obi:"application"`
	CallData    string `obi:"call_data"`
}

// CallInput is implemented by every call input shape.
type CallInput interface {
	ApplicationName() string
}

func (c VerificationCallInput) ApplicationName() string { return c.Application }
func (c HexCallInput) ApplicationName() string          { return c.Application }
