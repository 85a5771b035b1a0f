package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/chain"
	"github.com/osse101/SpinVault_Go/internal/config"
	"github.com/osse101/SpinVault_Go/internal/event"
	"github.com/osse101/SpinVault_Go/internal/guard"
	"github.com/osse101/SpinVault_Go/internal/retry"
	"github.com/osse101/SpinVault_Go/internal/txbuilder"
	"github.com/osse101/SpinVault_Go/internal/vault"
	"github.com/osse101/SpinVault_Go/internal/worker"
)

// VaultComponents is the wired vault stack
type VaultComponents struct {
	Orchestrator *vault.Orchestrator
	Builder      *txbuilder.Builder
	Client       *chain.RPCClient
}

// VaultDependencies are the shared components the vault stack runs on
type VaultDependencies struct {
	Guard     guard.Guard
	Jobs      *worker.Pool
	Publisher *event.ResilientPublisher
}

// InitializeVault wires the node client, builder, prober, signer and
// submitter behind an orchestrator. Callers check cfg.VaultEnabled first.
func InitializeVault(cfg *config.Config, deps VaultDependencies) (*VaultComponents, error) {
	programID, err := address.Parse(cfg.VaultProgramID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgInvalidProgramID, err)
	}

	signer, signerKind, err := newSigner(cfg)
	if err != nil {
		return nil, err
	}

	client := chain.NewRPCClient(chain.RPCConfig{
		URL:               cfg.RPCURL,
		RequestsPerSecond: float64(cfg.RPCRequestsPerSecond),
		Burst:             cfg.RPCBurst,
		Timeout:           cfg.RPCTimeout,
	})
	builder := txbuilder.NewBuilder(address.NewDeriver(programID), txbuilder.DefaultConfig())
	prober := txbuilder.NewProber(client, builder, retry.DefaultPolicy(), cfg.ClaimAnyEnabled)

	vaultConfig := vault.DefaultConfig()
	vaultConfig.MaxRebuilds = cfg.MaxRebuilds
	vaultConfig.ReconcileTimeout = cfg.ReconcileTimeout

	orchestrator := vault.NewOrchestrator(vault.Deps{
		Guard:     deps.Guard,
		Prober:    prober,
		Planner:   builder,
		Client:    client,
		Signer:    signer,
		Sender:    chain.NewSubmitter(client),
		Jobs:      deps.Jobs,
		Publisher: deps.Publisher,
	}, vaultConfig)

	slog.Info(LogMsgVaultInitialized,
		"program_id", programID.String(),
		"rpc_url", cfg.RPCURL,
		"signer", signerKind,
		"claim_any", cfg.ClaimAnyEnabled,
		"max_rebuilds", cfg.MaxRebuilds)

	return &VaultComponents{Orchestrator: orchestrator, Builder: builder, Client: client}, nil
}

// newSigner prefers the remote relay when both are configured
func newSigner(cfg *config.Config) (chain.Signer, string, error) {
	if cfg.SignerURL != "" {
		return chain.NewRemoteSigner(cfg.SignerURL, nil), SignerKindRemote, nil
	}
	signer, err := chain.LoadKeypairSigner(cfg.SignerKeypairPath)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", ErrMsgFailedLoadSigner, err)
	}
	return signer, SignerKindKeypair, nil
}
