// Package script implements the oracle scripts as one parameterized
// core.
//
// Every script variant runs the same pipeline: Plan resolves the data
// source and builds the query, Parse extracts fields from the first
// raw response, Evaluate applies the variant's consensus policy, and the
// result shape is encoded canonically. A Variant describes what differs
// between scripts: the accepted input shape, the source table, the
// consensus policy, the field count and the result shape.
package script

import (
	"fmt"

	"github.com/blockberries/themis/catalog"
)

// InputKind selects the call-input shape a variant accepts.
type InputKind uint8

const (
	// InputVerification accepts types.VerificationCallInput.
	InputVerification InputKind = iota + 1
	// InputHex accepts types.HexCallInput.
	InputHex
)

func (k InputKind) String() string {
	switch k {
	case InputVerification:
		return "verification"
	case InputHex:
		return "hex"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Shape selects the result record a variant produces.
type Shape uint8

const (
	// ShapeSignedValue produces types.SignedValueResult from the
	// fields value, signature.
	ShapeSignedValue Shape = iota + 1
	// ShapeSignedUsername produces types.SignedUsernameResult from the
	// fields value, signature, username.
	ShapeSignedUsername
	// ShapeProof produces types.ProofResult.
	ShapeProof
	// ShapeLink produces types.LinkResult from the field url.
	ShapeLink
	// ShapePresence produces types.PresenceResult.
	ShapePresence
)

func (s Shape) String() string {
	switch s {
	case ShapeSignedValue:
		return "signed-value"
	case ShapeSignedUsername:
		return "signed-username"
	case ShapeProof:
		return "proof"
	case ShapeLink:
		return "link"
	case ShapePresence:
		return "presence"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// fields returns the number of comma-separated fields the shape reads
// from the first response.
func (s Shape) fields() int {
	switch s {
	case ShapeSignedValue:
		return 2
	case ShapeSignedUsername:
		return 3
	case ShapeLink:
		return 1
	default:
		return 0
	}
}

// Variant describes one oracle script.
type Variant struct {
	Name    string
	Input   InputKind
	Sources *catalog.Catalog
	Policy  Policy
	Shape   Shape
}

// Fields returns the number of delimited fields parsed from the first
// response.
func (v Variant) Fields() int {
	return v.Shape.fields()
}

// Validate checks that the descriptor is internally consistent.
func (v Variant) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("script: variant has no name")
	}
	if v.Input != InputVerification && v.Input != InputHex {
		return fmt.Errorf("script %s: invalid input kind %s", v.Name, v.Input)
	}
	if v.Sources == nil || v.Sources.Len() == 0 {
		return fmt.Errorf("script %s: empty source table", v.Name)
	}
	switch v.Shape {
	case ShapeSignedValue, ShapeSignedUsername:
		if v.Policy != PolicyNone {
			return fmt.Errorf("script %s: shape %s carries no validity, policy must be %s", v.Name, v.Shape, PolicyNone)
		}
	case ShapeProof:
		if v.Policy != PolicyValidCount {
			return fmt.Errorf("script %s: shape %s requires policy %s", v.Name, v.Shape, PolicyValidCount)
		}
	case ShapeLink, ShapePresence:
		if v.Policy != PolicyRawCount && v.Policy != PolicyValidCount {
			return fmt.Errorf("script %s: shape %s requires a counting policy", v.Name, v.Shape)
		}
	default:
		return fmt.Errorf("script %s: invalid shape %s", v.Name, v.Shape)
	}
	return nil
}
