package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blockberries/themis"
	"github.com/blockberries/themis/local"
	"github.com/blockberries/themis/obi"
	"github.com/blockberries/themis/script"
	"github.com/blockberries/themis/types"
)

// inputFlags describe a call input on the command line.
type inputFlags struct {
	raw         string
	application string
	method      string
	value       string
	callData    string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.raw, "input", "", "Encoded call input as hex (overrides the other input flags)")
	cmd.Flags().StringVar(&f.application, "application", "", "Application name (twitter, github, discord, ...)")
	cmd.Flags().StringVar(&f.method, "method", "", "Verification method (verification scripts)")
	cmd.Flags().StringVar(&f.value, "value", "", "Verification value (verification scripts)")
	cmd.Flags().StringVar(&f.callData, "call-data", "", "Hex call data (hex scripts)")
}

// encode builds the canonical call input for s.
func (f *inputFlags) encode(s *script.Script) ([]byte, error) {
	if f.raw != "" {
		bz, err := hex.DecodeString(f.raw)
		if err != nil {
			return nil, fmt.Errorf("--input: %w", err)
		}
		return bz, nil
	}
	switch s.Variant().Input {
	case script.InputVerification:
		return obi.Marshal(types.VerificationCallInput{
			Application:      f.application,
			VerificationData: types.VerificationData{Method: f.method, Value: f.value},
		})
	case script.InputHex:
		return obi.Marshal(types.HexCallInput{Application: f.application, CallData: f.callData})
	default:
		return nil, fmt.Errorf("script %s: unsupported input kind %s", s.Name(), s.Variant().Input)
	}
}

func (a *app) connect() (*local.Connection, error) {
	return local.NewConnection(a.logger, a.registry()...)
}

func newPrepareCmd(a *app) *cobra.Command {
	var in inputFlags

	cmd := &cobra.Command{
		Use:   "prepare [script]",
		Short: "Plan the data request of one invocation",
		Example: `  themisd prepare ownership --application twitter --method tweet --value 1392033585675317252
  themisd prepare link --application github --call-data 67697374`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			input, err := in.encode(s)
			if err != nil {
				return err
			}
			conn, err := a.connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			req, err := conn.Prepare(cmd.Context(), s.Name(), input)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"external_id": req.ExternalID,
				"source_id":   req.SourceID,
				"calldata":    string(req.Calldata),
			})
		},
	}
	in.register(cmd)
	return cmd
}

func newExecuteCmd(a *app) *cobra.Command {
	var (
		in        inputFlags
		responses []string
		askCount  int64
		minCount  int64
	)

	cmd := &cobra.Command{
		Use:   "execute [script]",
		Short: "Run one invocation over the given responses",
		Example: `  themisd execute link --application twitter --call-data 74776565742031 \
    --response https://t.co/bLokglOAel --response https://t.co/bLokglOAel --min-count 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			input, err := in.encode(s)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ask-count") {
				askCount = int64(len(responses))
			}
			raw := make([][]byte, len(responses))
			for i, r := range responses {
				raw[i] = []byte(r)
			}

			conn, err := a.connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			out, err := conn.Execute(cmd.Context(), s.Name(), themis.Env{AskCount: askCount, MinCount: minCount}, input, raw)
			if err != nil {
				return err
			}
			result, err := decodeResult(s.Variant().Shape, out)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	in.register(cmd)
	cmd.Flags().StringArrayVar(&responses, "response", nil, "Raw data source response (repeatable, in source order)")
	cmd.Flags().Int64Var(&askCount, "ask-count", 0, "Number of sources queried (defaults to the number of responses)")
	cmd.Flags().Int64Var(&minCount, "min-count", 1, "Consensus threshold")
	return cmd
}

func newScriptsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scripts",
		Short: "List the scripts with their input and output schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := a.connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			infos, err := conn.Scripts(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, info := range infos {
				fmt.Fprintf(w, "%s\n  input:  %s\n  output: %s\n", info.Name, info.InputSchema, info.OutputSchema)
			}
			return nil
		},
	}
}

// decodeResult decodes an encoded result of the given shape.
func decodeResult(shape script.Shape, out []byte) (any, error) {
	var v any
	switch shape {
	case script.ShapeSignedValue:
		v = &types.SignedValueResult{}
	case script.ShapeSignedUsername:
		v = &types.SignedUsernameResult{}
	case script.ShapeProof:
		v = &types.ProofResult{}
	case script.ShapeLink:
		v = &types.LinkResult{}
	case script.ShapePresence:
		v = &types.PresenceResult{}
	default:
		return nil, fmt.Errorf("unsupported result shape %s", shape)
	}
	if err := obi.Unmarshal(out, v); err != nil {
		return nil, err
	}
	return v, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
