package script

import (
	"encoding/hex"
	"fmt"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/catalog"
	"github.com/blockberries/themis/obi"
	"github.com/blockberries/themis/types"
)

// DecodeInput decodes the call input for the variant's input shape.
func DecodeInput(kind InputKind, callInput []byte) (types.CallInput, error) {
	switch kind {
	case InputVerification:
		var in types.VerificationCallInput
		if err := obi.Unmarshal(callInput, &in); err != nil {
			return nil, err
		}
		return in, nil
	case InputHex:
		var in types.HexCallInput
		if err := obi.Unmarshal(callInput, &in); err != nil {
			return nil, err
		}
		return in, nil
	default:
		return nil, fmt.Errorf("script: invalid input kind %s", kind)
	}
}

// Query returns the bytes sent to the data source for in.
func Query(in types.CallInput) ([]byte, error) {
	switch in := in.(type) {
	case types.VerificationCallInput:
		return []byte(in.VerificationData.Method + " " + in.VerificationData.Value), nil
	case types.HexCallInput:
		bz, err := hex.DecodeString(in.CallData)
		if err != nil {
			return nil, themis.WrapStructural(themis.KindMalformedEncoding, err, "call data hex")
		}
		return bz, nil
	default:
		return nil, fmt.Errorf("script: unsupported call input %T", in)
	}
}

// Plan decodes the call input, resolves its application against
// sources and builds the single data request of the invocation.
func Plan(kind InputKind, sources *catalog.Catalog, callInput []byte) (themis.Request, error) {
	in, err := DecodeInput(kind, callInput)
	if err != nil {
		return themis.Request{}, err
	}
	id, err := sources.Resolve(in.ApplicationName())
	if err != nil {
		return themis.Request{}, err
	}
	query, err := Query(in)
	if err != nil {
		return themis.Request{}, err
	}
	return themis.Request{
		ExternalID: 0,
		SourceID:   int64(id),
		Calldata:   query,
	}, nil
}
