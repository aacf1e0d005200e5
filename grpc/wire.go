package themisgrpc

import "github.com/blockberries/themis"

// Transport wrapper types for the Connection methods, whose signatures
// don't map to a single request/response struct.

// PrepareRequest wraps the parameters of Connection.Prepare.
type PrepareRequest struct {
	Script    string `cramberry:"1"`
	CallInput []byte `cramberry:"2"`
}

// ExecuteRequest wraps the parameters of Connection.Execute.
type ExecuteRequest struct {
	Script    string     `cramberry:"1"`
	Env       themis.Env `cramberry:"2"`
	CallInput []byte     `cramberry:"3"`
	Responses [][]byte   `cramberry:"4"`
}

// ExecuteResponse wraps the encoded result of Connection.Execute.
type ExecuteResponse struct {
	Result []byte `cramberry:"1"`
}

// ScriptsRequest is the (empty) request for Connection.Scripts.
type ScriptsRequest struct{}

// ScriptsResponse wraps the return value of Connection.Scripts.
type ScriptsResponse struct {
	Scripts []themis.ScriptInfo `cramberry:"1"`
}
