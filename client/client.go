package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/Gnanababu/solidity-utils/common"
	"github.com/Gnanababu/solidity-utils/gasspect"
	log "github.com/Gnanababu/solidity-utils/log"
)

// TraceClient fetches per-transaction execution traces from a node exposing
// the debug tracing namespace (hardhat, geth --http.api=debug, and friends).
// It never retries: fetch failures are surfaced to the caller unmodified.
type TraceClient struct {
	c *rpc.Client
}

// Dial connects to a node RPC endpoint.
func Dial(rawurl string) (*TraceClient, error) {
	return DialContext(context.Background(), rawurl)
}

func DialContext(ctx context.Context, rawurl string) (*TraceClient, error) {
	c, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return &TraceClient{c: c}, nil
}

// NewTraceClient wraps an existing RPC client.
func NewTraceClient(c *rpc.Client) *TraceClient {
	return &TraceClient{c: c}
}

func (tc *TraceClient) Close() {
	tc.c.Close()
}

// TraceTransaction fetches the full execution trace for txHash. It returns
// both the decoded trace and the raw server response; the raw form is what
// gets persisted or counted over, byte for byte.
func (tc *TraceClient) TraceTransaction(ctx context.Context, txHash common.Hash) (*gasspect.TransactionTrace, json.RawMessage, error) {
	var raw json.RawMessage
	if err := tc.c.CallContext(ctx, &raw, "debug_traceTransaction", txHash); err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil, fmt.Errorf("%w: %s", gasspect.ErrNoTrace, txHash.Hex())
	}
	trace, err := gasspect.ParseTrace(raw)
	if err != nil {
		return nil, nil, err
	}
	log.Debug(log.RPCMonitoring, "fetched trace", "tx", txHash.Hex(), "steps", len(trace.StructLogs))
	return trace, raw, nil
}

// ProfileEVM fetches the trace for txHash and counts each requested mnemonic
// in its serialized text, in request order. The count is the documented
// substring approximation; see gasspect.CountOps.
func (tc *TraceClient) ProfileEVM(ctx context.Context, txHash common.Hash, mnemonics []string) ([]int, error) {
	_, raw, err := tc.TraceTransaction(ctx, txHash)
	if err != nil {
		return nil, err
	}
	return gasspect.CountOps(raw, mnemonics), nil
}

// GasspectEVM fetches, normalizes and renders the trace for txHash into
// report lines.
func (tc *TraceClient) GasspectEVM(ctx context.Context, txHash common.Hash, opts gasspect.Options) ([]string, error) {
	trace, _, err := tc.TraceTransaction(ctx, txHash)
	if err != nil {
		return nil, err
	}
	ops, err := gasspect.Normalize(trace)
	if err != nil {
		return nil, err
	}
	return gasspect.FormatReport(ops, opts), nil
}
