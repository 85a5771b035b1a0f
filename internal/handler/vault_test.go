package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/txbuilder"
	"github.com/osse101/SpinVault_Go/internal/vault"
)

const (
	testUser    = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	testMint    = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testProgram = "Vau1tXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX"
)

func newTestVaultHandler(exec VaultExecutor) *VaultHandler {
	builder := txbuilder.NewBuilder(address.NewDeriver(address.MustParse(testProgram)), txbuilder.DefaultConfig())
	return NewVaultHandler(exec, builder)
}

func TestHandleOperation(t *testing.T) {
	valid := VaultOperationRequest{User: testUser, Mint: testMint, Amount: 1000}
	want := vault.Request{
		Kind:   domain.OperationDeposit,
		User:   address.MustParse(testUser),
		Mint:   address.MustParse(testMint),
		Amount: 1000,
	}

	tests := []struct {
		name           string
		reqBody        any
		setupMock      func(*MockVaultExecutor)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Bad Address",
			reqBody:        VaultOperationRequest{User: "not-an-address", Mint: testMint, Amount: 1},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"user":"Invalid address"`,
		},
		{
			name:           "Zero Amount",
			reqBody:        VaultOperationRequest{User: testUser, Mint: testMint},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"amount"`,
		},
		{
			name:    "Cooldown",
			reqBody: valid,
			setupMock: func(m *MockVaultExecutor) {
				m.On("Execute", mock.Anything, want).Return(nil, domain.CooldownError{Remaining: 2e9})
			},
			expectedStatus: http.StatusTooManyRequests,
			expectedBody:   ErrMsgOnCooldownError,
		},
		{
			name:    "Simulation Failure Carries Hint",
			reqBody: valid,
			setupMock: func(m *MockVaultExecutor) {
				m.On("Execute", mock.Anything, want).Return(nil, &domain.SimulationError{Reason: "custom program error: 0x1", Hint: "top up first"})
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"hint":"top up first"`,
		},
		{
			name:    "Confirmed",
			reqBody: valid,
			setupMock: func(m *MockVaultExecutor) {
				m.On("Execute", mock.Anything, want).Return(&vault.Receipt{
					OperationID: "op-1", Signature: "5sig", Status: domain.StatusConfirmed,
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"confirmed"`,
		},
		{
			name:    "Pending Confirmation Keeps Signature",
			reqBody: valid,
			setupMock: func(m *MockVaultExecutor) {
				m.On("Execute", mock.Anything, want).Return(&vault.Receipt{
					OperationID: "op-1", Signature: "5sig", Status: domain.StatusPendingReconcile,
				}, fmt.Errorf("sig 5sig: %w", domain.ErrConfirmationUnknown))
			},
			expectedStatus: http.StatusAccepted,
			expectedBody:   `"signature":"5sig"`,
		},
		{
			name:    "Failed On Chain",
			reqBody: valid,
			setupMock: func(m *MockVaultExecutor) {
				m.On("Execute", mock.Anything, want).Return(&vault.Receipt{
					OperationID: "op-1", Signature: "5sig", Status: domain.StatusFailed,
				}, domain.ErrTransactionFailed)
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   ErrMsgTxFailedError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &MockVaultExecutor{}
			if tt.setupMock != nil {
				tt.setupMock(exec)
			}

			w := httptest.NewRecorder()
			newTestVaultHandler(exec).HandleOperation(domain.OperationDeposit)(w,
				jsonRequest(t, http.MethodPost, "/api/v1/vault/deposit", tt.reqBody))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			exec.AssertExpectations(t)
		})
	}
}

func TestHandleOperation_ClaimTarget(t *testing.T) {
	exec := &MockVaultExecutor{}
	exec.On("Execute", mock.Anything, mock.MatchedBy(func(req vault.Request) bool {
		return req.Kind == domain.OperationClaim && req.ClaimTarget == address.MustParse(testMint)
	})).Return(&vault.Receipt{Status: domain.StatusLikelySucceeded, LikelySucceeded: true}, nil)

	w := httptest.NewRecorder()
	newTestVaultHandler(exec).HandleOperation(domain.OperationClaim)(w, jsonRequest(t, http.MethodPost, "/api/v1/vault/claim",
		VaultOperationRequest{User: testUser, Mint: address.NativeMint.String(), Amount: 1, ClaimTarget: testMint}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"likely_succeeded":true`)
	exec.AssertExpectations(t)
}

func TestHandleAddresses(t *testing.T) {
	h := newTestVaultHandler(&MockVaultExecutor{})

	t.Run("Claim Includes Tracker", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleAddresses(w, httptest.NewRequest(http.MethodGet,
			"/api/v1/vault/addresses?user="+testUser+"&mint="+testMint+"&kind=claim", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var accounts txbuilder.PlanAccounts
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accounts))
		assert.Equal(t, address.AssociatedTokenAddress(address.MustParse(testUser), address.MustParse(testMint)), accounts.UserTokenAccount)
		assert.False(t, accounts.Tracker.IsZero())
	})

	t.Run("Invalid Mint", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleAddresses(w, httptest.NewRequest(http.MethodGet, "/api/v1/vault/addresses?user="+testUser+"&mint=xyz", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), fmt.Sprintf(ErrMsgInvalidAddress, "mint"))
	})

	t.Run("Unknown Kind", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.HandleAddresses(w, httptest.NewRequest(http.MethodGet,
			"/api/v1/vault/addresses?user="+testUser+"&mint="+testMint+"&kind=swap", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
