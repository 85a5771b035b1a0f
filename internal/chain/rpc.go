package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/metrics"
)

// Client is the read and send surface of a cluster node
type Client interface {
	GetBalance(ctx context.Context, account address.Address) (uint64, error)
	// GetAccountInfo returns nil, nil when the account does not exist
	GetAccountInfo(ctx context.Context, account address.Address) (*AccountInfo, error)
	// GetTokenBalance returns ErrAccountNotFound when the token account does not exist
	GetTokenBalance(ctx context.Context, tokenAccount address.Address) (uint64, error)
	GetLatestBlockhash(ctx context.Context) (Blockhash, error)
	SimulateTransaction(ctx context.Context, raw []byte) (*SimulationResult, error)
	SendRawTransaction(ctx context.Context, raw []byte, opts SendOptions) (string, error)
	// GetSignatureStatus returns nil, nil when the cluster has never seen the signature
	GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error)
	GetBlockHeight(ctx context.Context) (uint64, error)
}

// RPCConfig configures the HTTP JSON-RPC client
type RPCConfig struct {
	URL               string
	Commitment        string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// RPCClient talks JSON-RPC over HTTP, rate limited on the client side
type RPCClient struct {
	url        string
	commitment string
	http       *http.Client
	limiter    *rate.Limiter
	nextID     atomic.Int64
}

// NewRPCClient builds a client, filling zero config values with defaults
func NewRPCClient(cfg RPCConfig) *RPCClient {
	if cfg.Commitment == "" {
		cfg.Commitment = CommitmentConfirmed
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRequestTimeout
	}
	return &RPCClient{
		url:        cfg.URL,
		commitment: cfg.Commitment,
		http:       &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// RPCError is an error object returned by the node
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// HTTPStatusError is a non-200 response from the node
type HTTPStatusError struct {
	Method     string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf(ErrMsgUnexpectedStatus, e.Method, e.StatusCode, e.Body)
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeSuccess
		if err != nil {
			outcome = metrics.OutcomeError
		}
		metrics.RPCRequestsTotal.WithLabelValues(method, outcome).Inc()
		metrics.RPCRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf(ErrMsgRateLimitWait, err)
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: jsonRPCVersion,
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf(ErrMsgEncodeRequestFailed, method, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf(ErrMsgRequestFailed, method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf(ErrMsgRequestFailed, method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPStatusError{Method: method, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf(ErrMsgDecodeResponseFailed, method, err)
	}
	if decoded.Error != nil {
		return decoded.Error
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return fmt.Errorf(ErrMsgDecodeResponseFailed, method, err)
	}
	return nil
}

func (c *RPCClient) commitmentOpt() map[string]any {
	return map[string]any{"commitment": c.commitment}
}

// GetBalance returns the native balance in base units
func (c *RPCClient) GetBalance(ctx context.Context, account address.Address) (uint64, error) {
	var out struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, MethodGetBalance, []any{account.String(), c.commitmentOpt()}, &out); err != nil {
		return 0, err
	}
	return out.Value, nil
}

// GetAccountInfo reads an account, nil when it does not exist
func (c *RPCClient) GetAccountInfo(ctx context.Context, account address.Address) (*AccountInfo, error) {
	var out struct {
		Value *struct {
			Lamports   uint64          `json:"lamports"`
			Owner      address.Address `json:"owner"`
			Data       []string        `json:"data"`
			Executable bool            `json:"executable"`
		} `json:"value"`
	}
	opts := c.commitmentOpt()
	opts["encoding"] = encodingBase64
	if err := c.call(ctx, MethodGetAccountInfo, []any{account.String(), opts}, &out); err != nil {
		return nil, err
	}
	if out.Value == nil {
		return nil, nil
	}
	info := &AccountInfo{
		Lamports:   out.Value.Lamports,
		Owner:      out.Value.Owner,
		Executable: out.Value.Executable,
	}
	if len(out.Value.Data) > 0 && out.Value.Data[0] != "" {
		data, err := base64.StdEncoding.DecodeString(out.Value.Data[0])
		if err != nil {
			return nil, fmt.Errorf(ErrMsgDecodeAccountFailed, err)
		}
		info.Data = data
	}
	return info, nil
}

// GetTokenBalance returns the raw token amount held by a token account
func (c *RPCClient) GetTokenBalance(ctx context.Context, tokenAccount address.Address) (uint64, error) {
	var out struct {
		Value struct {
			Amount string `json:"amount"`
		} `json:"value"`
	}
	if err := c.call(ctx, MethodGetTokenAccountBalance, []any{tokenAccount.String(), c.commitmentOpt()}, &out); err != nil {
		if isAccountNotFound(err) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	amount, err := strconv.ParseUint(out.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf(ErrMsgParseAmountFailed, out.Value.Amount, err)
	}
	return amount, nil
}

// GetLatestBlockhash fetches a fresh blockhash and its validity bound
func (c *RPCClient) GetLatestBlockhash(ctx context.Context) (Blockhash, error) {
	var out struct {
		Value struct {
			Blockhash            address.Address `json:"blockhash"`
			LastValidBlockHeight uint64          `json:"lastValidBlockHeight"`
		} `json:"value"`
	}
	if err := c.call(ctx, MethodGetLatestBlockhash, []any{c.commitmentOpt()}, &out); err != nil {
		return Blockhash{}, err
	}
	return Blockhash{Hash: out.Value.Blockhash, LastValidBlockHeight: out.Value.LastValidBlockHeight}, nil
}

// SimulateTransaction runs a serialized transaction without signature checks
func (c *RPCClient) SimulateTransaction(ctx context.Context, raw []byte) (*SimulationResult, error) {
	var out struct {
		Value struct {
			Err           any      `json:"err"`
			Logs          []string `json:"logs"`
			UnitsConsumed uint64   `json:"unitsConsumed"`
		} `json:"value"`
	}
	opts := c.commitmentOpt()
	opts["encoding"] = encodingBase64
	opts["sigVerify"] = false
	params := []any{base64.StdEncoding.EncodeToString(raw), opts}
	if err := c.call(ctx, MethodSimulateTransaction, params, &out); err != nil {
		return nil, err
	}
	return &SimulationResult{
		Err:           out.Value.Err,
		Logs:          out.Value.Logs,
		UnitsConsumed: out.Value.UnitsConsumed,
	}, nil
}

// SendRawTransaction broadcasts signed bytes and returns the signature.
// Callers outside this package go through Submitter.
func (c *RPCClient) SendRawTransaction(ctx context.Context, raw []byte, opts SendOptions) (string, error) {
	params := []any{
		base64.StdEncoding.EncodeToString(raw),
		map[string]any{
			"encoding":            encodingBase64,
			"skipPreflight":       opts.SkipPreflight,
			"maxRetries":          opts.MaxRetries,
			"preflightCommitment": c.commitment,
		},
	}
	var signature string
	if err := c.call(ctx, MethodSendTransaction, params, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

// GetSignatureStatus reads one signature's status including history
func (c *RPCClient) GetSignatureStatus(ctx context.Context, signature string) (*SignatureStatus, error) {
	var out struct {
		Value []*struct {
			Slot               uint64  `json:"slot"`
			Confirmations      *uint64 `json:"confirmations"`
			Err                any     `json:"err"`
			ConfirmationStatus string  `json:"confirmationStatus"`
		} `json:"value"`
	}
	params := []any{[]string{signature}, map[string]any{"searchTransactionHistory": true}}
	if err := c.call(ctx, MethodGetSignatureStatuses, params, &out); err != nil {
		return nil, err
	}
	if len(out.Value) == 0 || out.Value[0] == nil {
		return nil, nil
	}
	v := out.Value[0]
	return &SignatureStatus{
		Slot:               v.Slot,
		Confirmations:      v.Confirmations,
		Err:                v.Err,
		ConfirmationStatus: v.ConfirmationStatus,
	}, nil
}

// GetBlockHeight returns the current block height
func (c *RPCClient) GetBlockHeight(ctx context.Context) (uint64, error) {
	var height uint64
	if err := c.call(ctx, MethodGetBlockHeight, []any{c.commitmentOpt()}, &height); err != nil {
		return 0, err
	}
	return height, nil
}
