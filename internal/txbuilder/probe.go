package txbuilder

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/chain"
	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/retry"
)

// Prober reads the chain state a Request needs. Reads run concurrently and
// each one is retried on its own.
type Prober struct {
	client   chain.Client
	builder  *Builder
	policy   retry.Policy
	claimAny bool
}

// NewProber creates a prober. claimAnyEnabled reports whether the deployed
// vault program accepts claim_any.
func NewProber(client chain.Client, builder *Builder, policy retry.Policy, claimAnyEnabled bool) *Prober {
	return &Prober{
		client:   client,
		builder:  builder,
		policy:   policy.WithRetryable(chain.Retryable),
		claimAny: claimAnyEnabled,
	}
}

// Probe fills a Probe for req
func (p *Prober) Probe(ctx context.Context, req Request) (Probe, error) {
	accounts := p.builder.Accounts(req)
	var probe Probe

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		balance, err := retry.Do(gctx, p.policy, chain.MethodGetBalance, func(ctx context.Context) (uint64, error) {
			return p.client.GetBalance(ctx, req.User)
		})
		if err != nil {
			return fmt.Errorf(ErrMsgProbeFailed, "native balance", err)
		}
		probe.UserNativeBalance = balance
		return nil
	})

	g.Go(func() error {
		balance, exists, err := p.tokenBalance(gctx, accounts.UserTokenAccount)
		if err != nil {
			return fmt.Errorf(ErrMsgProbeFailed, "user token account", err)
		}
		probe.UserTokenBalance = balance
		probe.UserTokenAccountExists = exists
		return nil
	})

	if req.Kind != domain.OperationDeposit {
		g.Go(func() error {
			holdings, _, err := p.tokenBalance(gctx, accounts.Vault.TokenAccount)
			if err != nil {
				return fmt.Errorf(ErrMsgProbeFailed, "vault holdings", err)
			}
			probe.VaultHoldings = holdings
			return nil
		})
	}

	if req.Kind == domain.OperationClaim {
		probe.ClaimAnyAvailable = p.claimAny
		g.Go(func() error {
			info, err := retry.Do(gctx, p.policy, chain.MethodGetAccountInfo, func(ctx context.Context) (*chain.AccountInfo, error) {
				return p.client.GetAccountInfo(ctx, accounts.Tracker)
			})
			if err != nil {
				return fmt.Errorf(ErrMsgProbeFailed, "tracker", err)
			}
			probe.TrackerInitialized = info != nil
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Probe{}, err
	}

	logger.FromContext(ctx).Debug(LogMsgProbeReady,
		"user", req.User.String(),
		"token_account_exists", probe.UserTokenAccountExists,
		"vault_holdings", probe.VaultHoldings)
	return probe, nil
}

// tokenBalance treats a missing token account as an empty one
func (p *Prober) tokenBalance(ctx context.Context, account address.Address) (uint64, bool, error) {
	balance, err := retry.Do(ctx, p.policy, chain.MethodGetTokenAccountBalance, func(ctx context.Context) (uint64, error) {
		return p.client.GetTokenBalance(ctx, account)
	})
	if errors.Is(err, chain.ErrAccountNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}
