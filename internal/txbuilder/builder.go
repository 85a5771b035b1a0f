package txbuilder

import (
	"context"
	"fmt"
	"math"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/chain"
	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/logger"
)

// Request is one user-initiated vault operation
type Request struct {
	Kind   domain.OperationKind
	User   address.Address
	Mint   address.Address
	Amount uint64
	// ClaimTarget is the asset mint for claims; Mint is used when zero
	ClaimTarget address.Address
}

// Asset is the mint the operation moves
func (r Request) Asset() address.Address {
	if r.Kind == domain.OperationClaim && !r.ClaimTarget.IsZero() {
		return r.ClaimTarget
	}
	return r.Mint
}

// Probe is the on-chain state the builder decides on
type Probe struct {
	UserTokenAccountExists bool
	UserNativeBalance      uint64
	UserTokenBalance       uint64
	VaultHoldings          uint64
	ClaimAnyAvailable      bool
	TrackerInitialized     bool
}

// PlanAccounts are the derived addresses a plan touches
type PlanAccounts struct {
	UserTokenAccount address.Address      `json:"user_token_account"`
	UserBalance      address.Address      `json:"user_balance"`
	Vault            address.VaultAccount `json:"vault"`
	Tracker          address.Address      `json:"tracker,omitempty"`
}

// Plan is an ordered, unsigned instruction list
type Plan struct {
	Kind               domain.OperationKind `json:"kind"`
	Instructions       []chain.Instruction  `json:"instructions"`
	ReadyForSimulation bool                 `json:"ready_for_simulation"`
	Accounts           PlanAccounts         `json:"accounts"`
}

// InstructionNames lists the plan's instruction names in order
func (p *Plan) InstructionNames() []string {
	names := make([]string, len(p.Instructions))
	for i, ix := range p.Instructions {
		names[i] = ix.Name
	}
	return names
}

// Transaction wraps the plan for a signer
func (p *Plan) Transaction(feePayer address.Address, bh chain.Blockhash) *chain.Transaction {
	return &chain.Transaction{FeePayer: feePayer, Blockhash: bh, Instructions: p.Instructions}
}

// Config holds the builder's local balance rules
type Config struct {
	FeeMargin        uint64
	TokenAccountRent uint64
}

// DefaultConfig returns the standard fee margin and rent
func DefaultConfig() Config {
	return Config{FeeMargin: DefaultFeeMargin, TokenAccountRent: DefaultTokenAccountRent}
}

// Builder assembles instruction lists. It never signs or sends.
type Builder struct {
	deriver *address.Deriver
	program *chain.VaultProgram
	config  Config
}

// NewBuilder creates a builder for the vault program behind deriver
func NewBuilder(deriver *address.Deriver, config Config) *Builder {
	return &Builder{
		deriver: deriver,
		program: chain.NewVaultProgram(deriver),
		config:  config,
	}
}

// Accounts derives every address the request touches
func (b *Builder) Accounts(req Request) PlanAccounts {
	asset := req.Asset()
	accounts := PlanAccounts{
		UserTokenAccount: address.AssociatedTokenAddress(req.User, asset),
		UserBalance:      b.deriver.UserBalanceAddress(req.User, asset),
		Vault:            b.deriver.VaultAccount(asset),
	}
	if req.Kind == domain.OperationClaim {
		accounts.Tracker = b.deriver.NFTTrackerAddress(req.User)
	}
	return accounts
}

// Build checks balances locally and returns the ordered instructions
func (b *Builder) Build(ctx context.Context, req Request, probe Probe) (*Plan, error) {
	if req.Amount == 0 {
		return nil, fmt.Errorf(ErrMsgZeroAmount, domain.ErrInvalidInput)
	}

	plan := &Plan{Kind: req.Kind, Accounts: b.Accounts(req)}

	// Fees plus rent for any account we create on the user's behalf
	overhead := b.config.FeeMargin
	if !probe.UserTokenAccountExists {
		overhead += b.config.TokenAccountRent
		plan.Instructions = append(plan.Instructions,
			chain.CreateAssociatedTokenAccount(req.User, req.User, req.Asset()))
	}

	var err error
	switch req.Kind {
	case domain.OperationDeposit:
		err = b.deposit(plan, req, probe, overhead)
	case domain.OperationWithdraw:
		err = b.withdraw(plan, req, probe, overhead)
	case domain.OperationClaim:
		err = b.claim(plan, req, probe, overhead)
	default:
		err = fmt.Errorf(ErrMsgUnknownKind, domain.ErrUnsupportedOperation, req.Kind)
	}
	if err != nil {
		return nil, err
	}

	plan.ReadyForSimulation = true
	logger.FromContext(ctx).Debug(LogMsgPlanBuilt,
		"kind", req.Kind,
		"user", req.User.String(),
		"instructions", plan.InstructionNames())
	return plan, nil
}

func (b *Builder) deposit(plan *Plan, req Request, probe Probe, overhead uint64) error {
	if req.Mint == address.NativeMint {
		// compared by subtraction so a huge amount cannot wrap past the balance
		if probe.UserNativeBalance < overhead || probe.UserNativeBalance-overhead < req.Amount {
			need := req.Amount + overhead
			if need < req.Amount {
				need = math.MaxUint64
			}
			return fmt.Errorf(ErrMsgNeedHave, domain.ErrInsufficientBalance, need, probe.UserNativeBalance)
		}
		plan.Instructions = append(plan.Instructions,
			chain.SystemTransfer(req.User, plan.Accounts.UserTokenAccount, req.Amount),
			chain.SyncNative(plan.Accounts.UserTokenAccount),
		)
	} else {
		if probe.UserTokenBalance < req.Amount {
			return fmt.Errorf(ErrMsgNeedHave, domain.ErrInsufficientBalance, req.Amount, probe.UserTokenBalance)
		}
		if probe.UserNativeBalance < overhead {
			return fmt.Errorf(ErrMsgNeedHave, domain.ErrInsufficientBalance, overhead, probe.UserNativeBalance)
		}
	}
	plan.Instructions = append(plan.Instructions, b.program.Deposit(req.User, req.Mint, req.Amount))
	return nil
}

func (b *Builder) withdraw(plan *Plan, req Request, probe Probe, overhead uint64) error {
	if probe.UserNativeBalance < overhead {
		return fmt.Errorf(ErrMsgNeedHave, domain.ErrInsufficientBalance, overhead, probe.UserNativeBalance)
	}
	if probe.VaultHoldings < req.Amount {
		return fmt.Errorf(ErrMsgVaultShort, domain.ErrInsufficientBalance, probe.VaultHoldings, req.Amount)
	}
	plan.Instructions = append(plan.Instructions, b.program.Withdraw(req.User, req.Mint, req.Amount))
	if req.Mint == address.NativeMint {
		// Unwrap so the user receives native coin, not a wrapped token
		plan.Instructions = append(plan.Instructions,
			chain.CloseAccount(plan.Accounts.UserTokenAccount, req.User, req.User))
	}
	return nil
}

func (b *Builder) claim(plan *Plan, req Request, probe Probe, overhead uint64) error {
	asset := req.Asset()
	if asset.IsZero() {
		return fmt.Errorf(ErrMsgNoClaimTarget, domain.ErrInvalidInput)
	}
	if probe.VaultHoldings == 0 {
		return fmt.Errorf(ErrMsgNoAssetForTarget, domain.ErrNoAssetAvailable, asset)
	}
	if probe.UserNativeBalance < overhead {
		return fmt.Errorf(ErrMsgNeedHave, domain.ErrInsufficientBalance, overhead, probe.UserNativeBalance)
	}

	switch {
	case probe.ClaimAnyAvailable:
		plan.Instructions = append(plan.Instructions, b.program.ClaimAny(req.User, asset, req.Amount))
	case probe.TrackerInitialized:
		plan.Instructions = append(plan.Instructions, b.program.ClaimOwned(req.User, asset, req.Amount))
	default:
		return &domain.AccountNotInitializedError{
			Account: plan.Accounts.Tracker.String(),
			Hint:    HintInitializeTracker,
		}
	}
	return nil
}
