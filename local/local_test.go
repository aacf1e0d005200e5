package local

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/catalog"
	"github.com/blockberries/themis/obi"
	"github.com/blockberries/themis/script"
	"github.com/blockberries/themis/types"
)

func newConnection(t *testing.T) *Connection {
	t.Helper()
	list, err := script.Scripts(catalog.Default())
	if err != nil {
		t.Fatalf("Scripts: %v", err)
	}
	scripts := make([]themis.Script, len(list))
	for i, s := range list {
		scripts[i] = s
	}
	conn, err := NewConnection(nil, scripts...)
	if err != nil {
		t.Fatalf("NewConnection: %v", err)
	}
	return conn
}

func TestLocalConnection_FullCycle(t *testing.T) {
	conn := newConnection(t)
	defer conn.Close()

	input, err := obi.Marshal(types.HexCallInput{Application: "twitch", CallData: "6368616e6e656c20726963"})
	if err != nil {
		t.Fatal(err)
	}

	// Prepare.
	req, err := conn.Prepare(context.Background(), script.NameLink, input)
	if err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if req.SourceID != 52 || string(req.Calldata) != "channel ric" {
		t.Fatalf("unexpected request %+v", req)
	}

	// Execute with fewer responses than the threshold.
	out, err := conn.Execute(context.Background(), script.NameLink, themis.Env{AskCount: 3, MinCount: 3}, input,
		[][]byte{[]byte("https://twitch.tv/ric\n"), []byte("https://twitch.tv/ric\n")})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	var res types.LinkResult
	if err := obi.Unmarshal(out, &res); err != nil {
		t.Fatal(err)
	}
	if res.Valid {
		t.Error("expected consensus shortfall with 2 of 3 responses")
	}
	if res.URL != "https://twitch.tv/ric" {
		t.Errorf("unexpected url %q", res.URL)
	}

	// Scripts.
	infos, err := conn.Scripts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 5 {
		t.Errorf("expected 5 scripts, got %d", len(infos))
	}
}

func TestLocalConnection_StructuralError(t *testing.T) {
	conn := newConnection(t)

	_, err := conn.Execute(context.Background(), script.NamePresence, themis.Env{}, []byte{0xff}, nil)
	if !errors.Is(err, themis.ErrMalformedEncoding) {
		t.Fatalf("expected MalformedEncoding, got %v", err)
	}
}

func TestLocalConnection_ExecuteConcurrent(t *testing.T) {
	conn := newConnection(t)

	input, err := obi.Marshal(types.HexCallInput{Application: "domain", CallData: ""})
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, err := conn.Execute(context.Background(), script.NamePresence, themis.Env{MinCount: 1}, input, [][]byte{[]byte("up")})
			if err != nil {
				t.Errorf("Execute error: %v", err)
			}
		}()
	}
	for i := 0; i < 20; i++ {
		<-done
	}
}
