package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// OperationKind is the kind of vault transaction a user asked for
type OperationKind string

const (
	OperationDeposit  OperationKind = "deposit"
	OperationWithdraw OperationKind = "withdraw"
	OperationClaim    OperationKind = "claim"
)

// Valid reports whether k is a known operation kind
func (k OperationKind) Valid() bool {
	switch k {
	case OperationDeposit, OperationWithdraw, OperationClaim:
		return true
	}
	return false
}

// OperationStatus is the terminal state of a vault operation
type OperationStatus string

const (
	StatusConfirmed        OperationStatus = "confirmed"
	StatusLikelySucceeded  OperationStatus = "likely_succeeded"
	StatusPendingReconcile OperationStatus = "pending_reconcile"
	StatusFailed           OperationStatus = "failed"
)

// PendingOperation is an admitted, not yet finished vault operation
type PendingOperation struct {
	OperationID string    `json:"operation_id"`
	UserID      string    `json:"user_id"`
	Amount      uint64    `json:"amount"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewOperationID derives the composite in-flight key from user, amount,
// timestamp and a random nonce
func NewOperationID(userID string, amount uint64, at time.Time, nonce string) string {
	h := sha256.New()
	h.Write([]byte(userID))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatUint(amount, 10)))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatInt(at.UnixNano(), 10)))
	h.Write([]byte{'|'})
	h.Write([]byte(nonce))
	return hex.EncodeToString(h.Sum(nil))
}
