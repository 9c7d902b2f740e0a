package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gnanababu/solidity-utils/common"
	"github.com/Gnanababu/solidity-utils/gasspect"
)

var testTxHash = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000deadbeef")

const testTraceJSON = `{"gas":43839,"failed":false,"returnValue":"","structLogs":[` +
	`{"pc":0,"op":"PUSH1","gas":78424,"gasCost":3,"depth":0,"stack":[]},` +
	`{"pc":2,"op":"SSTORE","gas":78421,"gasCost":22100,"depth":0,"stack":[` +
	`"000000000000000000000000000000000000000000000000000000000000001f",` +
	`"000000000000000000000000000000000000000000000000000000000000002a"]},` +
	`{"pc":3,"op":"SLOAD","gas":56321,"gasCost":100,"depth":0,"stack":[` +
	`"000000000000000000000000000000000000000000000000000000000000002a"]},` +
	`{"pc":4,"op":"STOP","gas":56221,"gasCost":0,"depth":0,"stack":[` +
	`"000000000000000000000000000000000000000000000000000000000000001f"]}]}`

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// traceServer answers debug_traceTransaction with the canned trace for the
// known transaction hash and a null result for anything else.
func traceServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "debug_traceTransaction", req.Method)
		require.NotEmpty(t, req.Params)

		result := "null"
		if strings.Contains(string(req.Params[0]), testTxHash.Hex()) {
			result = testTraceJSON
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
	}))
}

func TestTraceTransaction(t *testing.T) {
	srv := traceServer(t)
	defer srv.Close()

	tc, err := Dial(srv.URL)
	require.NoError(t, err)
	defer tc.Close()

	trace, raw, err := tc.TraceTransaction(context.Background(), testTxHash)
	require.NoError(t, err)
	assert.Equal(t, uint64(43839), trace.Gas)
	assert.Len(t, trace.StructLogs, 4)
	assert.Equal(t, "SSTORE", trace.StructLogs[1].Op)

	// the raw form is the server response untouched
	assert.JSONEq(t, testTraceJSON, string(raw))
}

func TestTraceTransactionNotFound(t *testing.T) {
	srv := traceServer(t)
	defer srv.Close()

	tc, err := Dial(srv.URL)
	require.NoError(t, err)
	defer tc.Close()

	_, _, err = tc.TraceTransaction(context.Background(), common.BytesToHash([]byte{0x01}))
	require.Error(t, err)
	assert.ErrorIs(t, err, gasspect.ErrNoTrace)
}

func TestTraceTransactionServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"error":{"code":-32000,"message":"historical state unavailable"}}`, req.ID)
	}))
	defer srv.Close()

	tc, err := Dial(srv.URL)
	require.NoError(t, err)
	defer tc.Close()

	_, _, err = tc.TraceTransaction(context.Background(), testTxHash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "historical state unavailable")
}

func TestProfileEVM(t *testing.T) {
	srv := traceServer(t)
	defer srv.Close()

	tc, err := Dial(srv.URL)
	require.NoError(t, err)
	defer tc.Close()

	counts, err := tc.ProfileEVM(context.Background(), testTxHash, []string{"STATICCALL", "CALL", "SSTORE", "SLOAD"})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 1, 1}, counts)
}

func TestGasspectEVM(t *testing.T) {
	srv := traceServer(t)
	defer srv.Close()

	tc, err := Dial(srv.URL)
	require.NoError(t, err)
	defer tc.Close()

	lines, err := tc.GasspectEVM(context.Background(), testTxHash, gasspect.DefaultOptions())
	require.NoError(t, err)
	// only the cold SSTORE clears the default threshold
	require.Len(t, lines, 1)
	assert.Equal(t, "0 - SSTORE_I = 22100", lines[0])
}
