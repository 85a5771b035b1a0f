package chain

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/btcsuite/btcutil/base58"

	"github.com/osse101/SpinVault_Go/internal/address"
)

var (
	// ErrSignerMismatch means the signer does not hold the fee payer's key
	ErrSignerMismatch = errors.New("signer does not control the fee payer")

	// ErrInvalidKeypair is returned for malformed keypair material
	ErrInvalidKeypair = errors.New("invalid keypair")
)

// KeypairSigner signs with a single local ed25519 key. It only signs
// transactions whose fee payer is that key.
type KeypairSigner struct {
	key    ed25519.PrivateKey
	pubkey address.Address
}

// NewKeypairSigner wraps a 64-byte ed25519 private key
func NewKeypairSigner(key ed25519.PrivateKey) (*KeypairSigner, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKeypair, ed25519.PrivateKeySize, len(key))
	}
	var pub address.Address
	copy(pub[:], key.Public().(ed25519.PublicKey))
	return &KeypairSigner{key: key, pubkey: pub}, nil
}

// LoadKeypairSigner reads a keypair file holding either a JSON byte array
// (the CLI wallet format) or a base58 string
func LoadKeypairSigner(path string) (*KeypairSigner, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgReadKeypair, path, err)
	}
	text := strings.TrimSpace(string(raw))

	var key []byte
	if strings.HasPrefix(text, "[") {
		if err := json.Unmarshal([]byte(text), &key); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeypair, err)
		}
	} else {
		key = base58.Decode(text)
	}
	return NewKeypairSigner(ed25519.PrivateKey(key))
}

// PublicKey is the address the signer controls
func (s *KeypairSigner) PublicKey() address.Address {
	return s.pubkey
}

func (s *KeypairSigner) SignTransaction(_ context.Context, tx *Transaction) (*SignedTransaction, error) {
	if tx.FeePayer != s.pubkey {
		return nil, fmt.Errorf("%w: %s", ErrSignerMismatch, tx.FeePayer)
	}
	required, err := tx.RequiredSignatures()
	if err != nil {
		return nil, fmt.Errorf(ErrMsgSerializeFailed, err)
	}
	if required != 1 {
		return nil, fmt.Errorf("%w: transaction needs %d signatures", ErrSignerMismatch, required)
	}
	msg, err := tx.MarshalMessage()
	if err != nil {
		return nil, fmt.Errorf(ErrMsgSerializeFailed, err)
	}

	sig := ed25519.Sign(s.key, msg)
	wire, err := AppendCompactU16(nil, 1)
	if err != nil {
		return nil, err
	}
	wire = append(wire, sig...)
	wire = append(wire, msg...)
	return NewSignedTransaction(wire, base58.Encode(sig), tx.Blockhash), nil
}

// RemoteSigner hands the unsigned message to a wallet relay over HTTP and
// gets back the signed wire transaction
type RemoteSigner struct {
	url        string
	httpClient *http.Client
}

// NewRemoteSigner creates a signer for the relay at url
func NewRemoteSigner(url string, httpClient *http.Client) *RemoteSigner {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultSignerTimeout}
	}
	return &RemoteSigner{url: url, httpClient: httpClient}
}

type signRequest struct {
	FeePayer string `json:"fee_payer"`
	Message  string `json:"message"`
}

type signResponse struct {
	Signature   string `json:"signature"`
	Transaction string `json:"transaction"`
}

func (s *RemoteSigner) SignTransaction(ctx context.Context, tx *Transaction) (*SignedTransaction, error) {
	msg, err := tx.MarshalMessage()
	if err != nil {
		return nil, fmt.Errorf(ErrMsgSerializeFailed, err)
	}
	body, err := json.Marshal(signRequest{FeePayer: tx.FeePayer.String(), Message: base64.StdEncoding.EncodeToString(msg)})
	if err != nil {
		return nil, fmt.Errorf(ErrMsgEncodeRequestFailed, signerMethod, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf(ErrMsgEncodeRequestFailed, signerMethod, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgRequestFailed, signerMethod, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPStatusError{Method: signerMethod, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	var out signResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf(ErrMsgDecodeResponseFailed, signerMethod, err)
	}
	wire, err := base64.StdEncoding.DecodeString(out.Transaction)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgDecodeResponseFailed, signerMethod, err)
	}
	if out.Signature == "" || len(wire) == 0 {
		return nil, fmt.Errorf(ErrMsgDecodeResponseFailed, signerMethod, errors.New("empty signature"))
	}
	return NewSignedTransaction(wire, out.Signature, tx.Blockhash), nil
}
