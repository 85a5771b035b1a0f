package chain

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/domain"
)

type recordedCall struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeNode answers JSON-RPC calls from a method table
type fakeNode struct {
	mu      sync.Mutex
	calls   []recordedCall
	results map[string]any
	errors  map[string]*RPCError
	status  int
}

func newFakeNode() *fakeNode {
	return &fakeNode{results: map[string]any{}, errors: map[string]*RPCError{}}
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var call recordedCall
	_ = json.NewDecoder(r.Body).Decode(&call)

	f.mu.Lock()
	f.calls = append(f.calls, call)
	status := f.status
	rpcErr := f.errors[call.Method]
	result := f.results[call.Method]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("upstream unavailable"))
		return
	}
	resp := map[string]any{"jsonrpc": "2.0", "id": 1}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakeNode) setResult(method string, result any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[method] = result
}

func (f *fakeNode) setError(method string, rpcErr *RPCError) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[method] = rpcErr
}

func (f *fakeNode) callsTo(method string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func newTestClient(t *testing.T, node *fakeNode) *RPCClient {
	t.Helper()
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)
	return NewRPCClient(RPCConfig{URL: srv.URL, RequestsPerSecond: 1000, Burst: 100})
}

func TestRPCClient_GetAccountInfo(t *testing.T) {
	node := newFakeNode()
	client := newTestClient(t, node)
	ctx := context.Background()

	t.Run("missing account is nil", func(t *testing.T) {
		node.setResult(MethodGetAccountInfo, map[string]any{"context": map[string]any{"slot": 1}, "value": nil})
		info, err := client.GetAccountInfo(ctx, addr(3))
		require.NoError(t, err)
		assert.Nil(t, info)
	})

	t.Run("decodes base64 data", func(t *testing.T) {
		node.setResult(MethodGetAccountInfo, map[string]any{
			"value": map[string]any{
				"lamports":   2039280,
				"owner":      address.TokenProgramID.String(),
				"data":       []string{base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), "base64"},
				"executable": false,
			},
		})
		info, err := client.GetAccountInfo(ctx, addr(3))
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, uint64(2039280), info.Lamports)
		assert.Equal(t, address.TokenProgramID, info.Owner)
		assert.Equal(t, []byte{1, 2, 3}, info.Data)
	})
}

func TestRPCClient_GetTokenBalance(t *testing.T) {
	node := newFakeNode()
	client := newTestClient(t, node)

	node.setResult(MethodGetTokenAccountBalance, map[string]any{"value": map[string]any{"amount": "1500000", "decimals": 6}})
	amount, err := client.GetTokenBalance(context.Background(), addr(4))
	require.NoError(t, err)
	assert.Equal(t, uint64(1500000), amount)

	node.setError(MethodGetTokenAccountBalance, &RPCError{Code: -32602, Message: "Invalid param: could not find account"})
	_, err = client.GetTokenBalance(context.Background(), addr(4))
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRPCClient_GetLatestBlockhash(t *testing.T) {
	node := newFakeNode()
	client := newTestClient(t, node)
	hash := addr(9)

	node.setResult(MethodGetLatestBlockhash, map[string]any{
		"value": map[string]any{"blockhash": hash.String(), "lastValidBlockHeight": 3090},
	})
	bh, err := client.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, hash, bh.Hash)
	assert.Equal(t, uint64(3090), bh.LastValidBlockHeight)
}

func TestRPCClient_SimulateTransaction(t *testing.T) {
	node := newFakeNode()
	client := newTestClient(t, node)

	node.setResult(MethodSimulateTransaction, map[string]any{
		"value": map[string]any{
			"err":           map[string]any{"InstructionError": []any{0, "Custom"}},
			"logs":          []string{"Program log: insufficient funds"},
			"unitsConsumed": 1200,
		},
	})
	res, err := client.SimulateTransaction(context.Background(), []byte{1, 2})
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, uint64(1200), res.UnitsConsumed)

	calls := node.callsTo(MethodSimulateTransaction)
	require.Len(t, calls, 1)
	var opts map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Params[1], &opts))
	assert.Equal(t, false, opts["sigVerify"])
	assert.Equal(t, encodingBase64, opts["encoding"])
}

func TestRPCClient_GetSignatureStatus(t *testing.T) {
	node := newFakeNode()
	client := newTestClient(t, node)

	node.setResult(MethodGetSignatureStatuses, map[string]any{"value": []any{nil}})
	status, err := client.GetSignatureStatus(context.Background(), "sig")
	require.NoError(t, err)
	assert.Nil(t, status)

	node.setResult(MethodGetSignatureStatuses, map[string]any{
		"value": []any{map[string]any{"slot": 10, "confirmations": nil, "err": nil, "confirmationStatus": "finalized"}},
	})
	status, err = client.GetSignatureStatus(context.Background(), "sig")
	require.NoError(t, err)
	assert.True(t, status.Landed())
}

func TestRPCClient_HTTPErrorIsRetryable(t *testing.T) {
	node := newFakeNode()
	node.status = http.StatusServiceUnavailable
	client := newTestClient(t, node)

	_, err := client.GetBlockHeight(context.Background())
	require.Error(t, err)
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.True(t, Retryable(err))
}

func TestSubmitter_SendsOnce(t *testing.T) {
	node := newFakeNode()
	node.setResult(MethodSendTransaction, "5sig")
	client := newTestClient(t, node)
	submitter := NewSubmitter(client)

	signed := NewSignedTransaction([]byte{9, 9, 9}, "5sig", Blockhash{Hash: addr(9), LastValidBlockHeight: 10})

	sig, err := submitter.Send(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "5sig", sig)
	assert.True(t, signed.Consumed())

	_, err = submitter.Send(context.Background(), signed)
	assert.ErrorIs(t, err, domain.ErrPayloadConsumed)

	calls := node.callsTo(MethodSendTransaction)
	require.Len(t, calls, 1, "a signed payload reaches the network at most once")

	var opts map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Params[1], &opts))
	assert.Equal(t, true, opts["skipPreflight"])
	assert.EqualValues(t, 0, opts["maxRetries"])
}

func TestSubmitter_FailedSendStillConsumes(t *testing.T) {
	node := newFakeNode()
	node.setError(MethodSendTransaction, &RPCError{Code: -32002, Message: "Transaction simulation failed: Blockhash not found"})
	client := newTestClient(t, node)
	submitter := NewSubmitter(client)

	signed := NewSignedTransaction([]byte{1}, "sigX", Blockhash{})
	_, err := submitter.Send(context.Background(), signed)
	assert.ErrorIs(t, err, domain.ErrBlockhashExpired)

	_, err = submitter.Send(context.Background(), signed)
	assert.ErrorIs(t, err, domain.ErrPayloadConsumed)
	assert.Len(t, node.callsTo(MethodSendTransaction), 1)
}
