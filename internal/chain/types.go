package chain

import (
	"context"
	"sync/atomic"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/domain"
)

// AccountMeta is one account referenced by an instruction
type AccountMeta struct {
	Address    address.Address `json:"address"`
	IsSigner   bool            `json:"is_signer"`
	IsWritable bool            `json:"is_writable"`
}

// Instruction is a single program invocation
type Instruction struct {
	Name      string          `json:"name"`
	ProgramID address.Address `json:"program_id"`
	Accounts  []AccountMeta   `json:"accounts"`
	Data      []byte          `json:"data"`
}

// Blockhash bounds the validity window of a transaction
type Blockhash struct {
	Hash                 address.Address `json:"hash"`
	LastValidBlockHeight uint64          `json:"last_valid_block_height"`
}

// Transaction is an unsigned, ordered instruction list ready for a signer
type Transaction struct {
	FeePayer     address.Address `json:"fee_payer"`
	Blockhash    Blockhash       `json:"blockhash"`
	Instructions []Instruction   `json:"instructions"`
}

// SignedTransaction is a signed wire payload that can be sent exactly once.
// Only Submitter can read the raw bytes, and reading them consumes the payload.
type SignedTransaction struct {
	raw       []byte
	signature string
	blockhash Blockhash
	consumed  atomic.Bool
}

// NewSignedTransaction wraps the signer's output
func NewSignedTransaction(raw []byte, signature string, blockhash Blockhash) *SignedTransaction {
	return &SignedTransaction{raw: raw, signature: signature, blockhash: blockhash}
}

// Signature is the transaction id (first signature, base58)
func (s *SignedTransaction) Signature() string {
	return s.signature
}

// Blockhash is the blockhash the payload was signed against
func (s *SignedTransaction) Blockhash() Blockhash {
	return s.blockhash
}

// Consumed reports whether the payload was already handed to the network
func (s *SignedTransaction) Consumed() bool {
	return s.consumed.Load()
}

func (s *SignedTransaction) take() ([]byte, error) {
	if !s.consumed.CompareAndSwap(false, true) {
		return nil, domain.ErrPayloadConsumed
	}
	return s.raw, nil
}

// Signer is the external wallet collaborator
type Signer interface {
	SignTransaction(ctx context.Context, tx *Transaction) (*SignedTransaction, error)
}

// AccountInfo is the subset of on-chain account state the service reads
type AccountInfo struct {
	Lamports   uint64          `json:"lamports"`
	Owner      address.Address `json:"owner"`
	Data       []byte          `json:"data"`
	Executable bool            `json:"executable"`
}

// SimulationResult is the pre-flight outcome of a transaction
type SimulationResult struct {
	Err           any      `json:"err"`
	Logs          []string `json:"logs"`
	UnitsConsumed uint64   `json:"units_consumed"`
}

// Failed reports whether the simulation returned an error
func (r *SimulationResult) Failed() bool {
	return r != nil && r.Err != nil
}

// SignatureStatus is the cluster's view of a sent transaction
type SignatureStatus struct {
	Slot               uint64  `json:"slot"`
	Confirmations      *uint64 `json:"confirmations"`
	Err                any     `json:"err"`
	ConfirmationStatus string  `json:"confirmation_status"`
}

// Landed reports whether the transaction reached at least confirmed
func (s *SignatureStatus) Landed() bool {
	if s == nil {
		return false
	}
	return s.ConfirmationStatus == CommitmentConfirmed || s.ConfirmationStatus == CommitmentFinalized
}

// SendOptions controls sendTransaction
type SendOptions struct {
	SkipPreflight bool
	MaxRetries    uint
}
