package script

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/obi"
	"github.com/blockberries/themis/types"
)

// Compile-time interface check.
var _ themis.Script = (*Script)(nil)

// Script runs one Variant.
type Script struct {
	variant Variant
	info    themis.ScriptInfo
}

// New creates the script for v.
func New(v Variant) (*Script, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	in, err := inputSchema(v.Input)
	if err != nil {
		return nil, err
	}
	out, err := outputSchema(v.Shape)
	if err != nil {
		return nil, err
	}
	return &Script{
		variant: v,
		info:    themis.ScriptInfo{Name: v.Name, InputSchema: in, OutputSchema: out},
	}, nil
}

func (s *Script) Name() string            { return s.variant.Name }
func (s *Script) Info() themis.ScriptInfo { return s.info }
func (s *Script) Variant() Variant        { return s.variant }

// Prepare plans the data request for the call input.
func (s *Script) Prepare(callInput []byte) (themis.Request, error) {
	return Plan(s.variant.Input, s.variant.Sources, callInput)
}

// Execute validates the call input again, aggregates the responses and
// returns the encoded result.
func (s *Script) Execute(env themis.Env, callInput []byte, responses [][]byte) ([]byte, error) {
	if _, err := s.Prepare(callInput); err != nil {
		return nil, err
	}

	raw := make([]string, len(responses))
	for i, r := range responses {
		raw[i] = string(r)
	}

	rec, err := ParseFirst(raw, s.variant.Fields())
	if err != nil {
		return nil, err
	}
	valid, err := Evaluate(s.variant.Policy, raw, env.MinCount)
	if err != nil {
		return nil, err
	}
	result, err := s.build(rec, valid, raw)
	if err != nil {
		return nil, err
	}
	return obi.Marshal(result)
}

func (s *Script) build(rec Record, valid bool, raw []string) (any, error) {
	for _, f := range rec.Fields {
		if !utf8.ValidString(f) {
			return nil, themis.NewStructuralError(themis.KindMalformedResponse, "response field is not valid UTF-8")
		}
	}
	switch s.variant.Shape {
	case ShapeSignedValue:
		return types.SignedValueResult{
			Value:     rec.Fields[0],
			Signature: rec.Fields[1],
		}, nil
	case ShapeSignedUsername:
		return types.SignedUsernameResult{
			Value:     rec.Fields[0],
			Signature: rec.Fields[1],
			Username:  rec.Fields[2],
		}, nil
	case ShapeProof:
		var data string
		if len(raw) > 0 {
			data = strings.TrimRight(raw[0], "\n")
		}
		if !utf8.ValidString(data) {
			return nil, themis.NewStructuralError(themis.KindMalformedResponse, "signature data is not valid UTF-8")
		}
		return types.ProofResult{Valid: valid, SignatureData: data}, nil
	case ShapeLink:
		return types.LinkResult{Valid: valid, URL: rec.Fields[0]}, nil
	case ShapePresence:
		return types.PresenceResult{Valid: valid}, nil
	default:
		return nil, fmt.Errorf("script %s: invalid shape %s", s.variant.Name, s.variant.Shape)
	}
}

func inputSchema(kind InputKind) (string, error) {
	switch kind {
	case InputVerification:
		return obi.Schema(types.VerificationCallInput{})
	case InputHex:
		return obi.Schema(types.HexCallInput{})
	default:
		return "", fmt.Errorf("script: invalid input kind %s", kind)
	}
}

func outputSchema(shape Shape) (string, error) {
	switch shape {
	case ShapeSignedValue:
		return obi.Schema(types.SignedValueResult{})
	case ShapeSignedUsername:
		return obi.Schema(types.SignedUsernameResult{})
	case ShapeProof:
		return obi.Schema(types.ProofResult{})
	case ShapeLink:
		return obi.Schema(types.LinkResult{})
	case ShapePresence:
		return obi.Schema(types.PresenceResult{})
	default:
		return "", fmt.Errorf("script: invalid shape %s", shape)
	}
}
