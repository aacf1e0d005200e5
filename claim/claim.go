// Package claim verifies that a bech32 address owns a value signed
// off-chain.
//
// A claim is authentic only when both checks pass: the secp256k1 ECDSA
// signature over SHA-256(value) verifies with the claimed public key,
// and the address payload is RIPEMD-160(SHA-256(public key)). A claim
// whose signature, key or address cannot be parsed is a structural
// InvalidClaimEncoding error, never a plain "false".
package claim

import "encoding/json"

// Record is a signed ownership claim as published by the account owner:
//
//	{
//	  "address": "desmos13yp2fq3tslq6mmtq4628q38xzj75ethzela9uu",
//	  "pub_key": "033024e9e0ad4f93045ef5a60bb92171e6418cd13b082e7a7bc3ed05312a0b417d",
//	  "value": "ricmontagnin",
//	  "signature": "a00a7d5b..."
//	}
type Record struct {
	Address   string `json:"address"`
	PublicKey string `json:"pub_key"`
	Signature string `json:"signature"`
	Value     string `json:"value"`
}

// ParseRecord decodes a JSON claim. It returns false when raw is not a
// JSON object with all four string keys.
func ParseRecord(raw string) (Record, bool) {
	var wire struct {
		Address   *string `json:"address"`
		PublicKey *string `json:"pub_key"`
		Signature *string `json:"signature"`
		Value     *string `json:"value"`
	}
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return Record{}, false
	}
	if wire.Address == nil || wire.PublicKey == nil || wire.Signature == nil || wire.Value == nil {
		return Record{}, false
	}
	return Record{
		Address:   *wire.Address,
		PublicKey: *wire.PublicKey,
		Signature: *wire.Signature,
		Value:     *wire.Value,
	}, true
}

// JSON returns the claim in its published JSON form.
func (r Record) JSON() (string, error) {
	bz, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(bz), nil
}
