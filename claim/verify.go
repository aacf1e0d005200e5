package claim

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/ripemd160"

	"github.com/blockberries/themis"
)

// compactSignatureHexLen is the hex length of a 64-byte r||s signature.
// Any other length is parsed as DER.
const compactSignatureHexLen = 128

// Verify reports whether the claim is authentic. The error is non-nil
// only when a field cannot be parsed.
func Verify(rec Record) (bool, error) {
	pub, err := ParsePublicKey(rec.PublicKey)
	if err != nil {
		return false, err
	}
	sig, err := ParseSignature(rec.Signature)
	if err != nil {
		return false, err
	}
	payload, err := decodeAddress(rec.Address)
	if err != nil {
		return false, err
	}
	expected, err := addressData(pub)
	if err != nil {
		return false, err
	}

	signatureValid := sig.Verify(valueHash(rec.Value), pub)
	addressValid := bytes.Equal(payload, expected)
	return signatureValid && addressValid, nil
}

// VerifySignature checks only the signature of the claim.
func VerifySignature(rec Record) (bool, error) {
	pub, err := ParsePublicKey(rec.PublicKey)
	if err != nil {
		return false, err
	}
	sig, err := ParseSignature(rec.Signature)
	if err != nil {
		return false, err
	}
	return sig.Verify(valueHash(rec.Value), pub), nil
}

// VerifyAddress checks only that the address derives from the public key.
func VerifyAddress(rec Record) (bool, error) {
	pub, err := ParsePublicKey(rec.PublicKey)
	if err != nil {
		return false, err
	}
	payload, err := decodeAddress(rec.Address)
	if err != nil {
		return false, err
	}
	expected, err := addressData(pub)
	if err != nil {
		return false, err
	}
	return bytes.Equal(payload, expected), nil
}

// ParsePublicKey parses a hex encoded compressed or uncompressed
// secp256k1 public key.
func ParsePublicKey(s string) (*secp256k1.PublicKey, error) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, themis.WrapStructural(themis.KindInvalidClaimEncoding, err, "public key hex")
	}
	pub, err := secp256k1.ParsePubKey(bz)
	if err != nil {
		return nil, themis.WrapStructural(themis.KindInvalidClaimEncoding, err, "public key")
	}
	return pub, nil
}

// ParseSignature parses a hex encoded signature, compact (r||s, 128 hex
// characters) or DER.
func ParseSignature(s string) (*ecdsa.Signature, error) {
	bz, err := hex.DecodeString(s)
	if err != nil {
		return nil, themis.WrapStructural(themis.KindInvalidClaimEncoding, err, "signature hex")
	}
	if len(s) != compactSignatureHexLen {
		sig, err := ecdsa.ParseDERSignature(bz)
		if err != nil {
			return nil, themis.WrapStructural(themis.KindInvalidClaimEncoding, err, "DER signature")
		}
		return sig, nil
	}

	var r, sv secp256k1.ModNScalar
	if overflow := r.SetByteSlice(bz[:32]); overflow {
		return nil, themis.NewStructuralError(themis.KindInvalidClaimEncoding, "compact signature R is not below the group order")
	}
	if overflow := sv.SetByteSlice(bz[32:]); overflow {
		return nil, themis.NewStructuralError(themis.KindInvalidClaimEncoding, "compact signature S is not below the group order")
	}
	return ecdsa.NewSignature(&r, &sv), nil
}

// DeriveAddress returns the bech32 address of pub under the given
// human-readable prefix.
func DeriveAddress(hrp string, pub *secp256k1.PublicKey) (string, error) {
	data, err := addressData(pub)
	if err != nil {
		return "", err
	}
	return bech32.Encode(hrp, data)
}

// decodeAddress returns the 5-bit data payload of a bech32 address.
func decodeAddress(address string) ([]byte, error) {
	_, data, err := bech32.Decode(address)
	if err != nil {
		return nil, themis.WrapStructural(themis.KindInvalidClaimEncoding, err, "bech32 address")
	}
	return data, nil
}

// addressData is RIPEMD-160(SHA-256(compressed key)) regrouped into the
// 5-bit words bech32 encodes.
func addressData(pub *secp256k1.PublicKey) ([]byte, error) {
	sha := sha256.Sum256(pub.SerializeCompressed())
	h := ripemd160.New()
	h.Write(sha[:])
	return bech32.ConvertBits(h.Sum(nil), 8, 5, true)
}

func valueHash(value string) []byte {
	h := sha256.Sum256([]byte(value))
	return h[:]
}
