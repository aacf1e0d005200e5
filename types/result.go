package types

// SignedValueResult is the result of an ownership script: the value
// and signature published by the account owner.
type SignedValueResult struct {
	Signature string `obi:"signature"`
	Value     string `obi:"value"`
}

// SignedUsernameResult extends SignedValueResult with the username the
// data source resolved the proof for.
type SignedUsernameResult struct {
	Signature string `obi:"signature"`
	Value     string `obi:"value"`
	Username  string `obi:"username"`
}

// ProofResult is the result of the cryptographic proof script.
// SignatureData is the claim returned by the first data source.
type ProofResult struct {
	Valid         bool   `obi:"valid"`
	SignatureData string `obi:"signature_data"`
}

// LinkResult is the result of an ownership-link script.
type LinkResult struct {
	Valid bool   `obi:"valid"`
	URL   string `obi:"url"`
}

// PresenceResult is the result of a script that only checks that
// enough sources answered.
type PresenceResult struct {
	Valid bool `obi:"valid"`
}
