package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/osse101/SpinVault_Go/internal/address"
	"github.com/osse101/SpinVault_Go/internal/chain"
	"github.com/osse101/SpinVault_Go/internal/domain"
	"github.com/osse101/SpinVault_Go/internal/event"
	"github.com/osse101/SpinVault_Go/internal/guard"
	"github.com/osse101/SpinVault_Go/internal/logger"
	"github.com/osse101/SpinVault_Go/internal/metrics"
	"github.com/osse101/SpinVault_Go/internal/retry"
	"github.com/osse101/SpinVault_Go/internal/txbuilder"
	"github.com/osse101/SpinVault_Go/internal/worker"
)

// Request is one user-initiated vault operation
type Request struct {
	Kind        domain.OperationKind `json:"kind"`
	User        address.Address      `json:"user"`
	Mint        address.Address      `json:"mint"`
	Amount      uint64               `json:"amount"`
	ClaimTarget address.Address      `json:"claim_target,omitempty"`
}

func (r Request) txRequest() txbuilder.Request {
	return txbuilder.Request{Kind: r.Kind, User: r.User, Mint: r.Mint, Amount: r.Amount, ClaimTarget: r.ClaimTarget}
}

// Receipt reports how a vault operation ended
type Receipt struct {
	OperationID     string                 `json:"operation_id"`
	Signature       string                 `json:"signature,omitempty"`
	Status          domain.OperationStatus `json:"status"`
	LikelySucceeded bool                   `json:"likely_succeeded"`
	Message         string                 `json:"message"`
}

// Prober reads the chain state a build needs
type Prober interface {
	Probe(ctx context.Context, req txbuilder.Request) (txbuilder.Probe, error)
}

// Planner turns a request and probe into instructions
type Planner interface {
	Build(ctx context.Context, req txbuilder.Request, probe txbuilder.Probe) (*txbuilder.Plan, error)
}

// Sender broadcasts a signed payload once
type Sender interface {
	Send(ctx context.Context, tx *chain.SignedTransaction) (string, error)
}

// JobQueue runs background jobs
type JobQueue interface {
	Enqueue(job worker.Job) error
}

// Config tunes the orchestrator. Zero values take the defaults; a negative
// MaxRebuilds disables rebuilding.
type Config struct {
	MaxRebuilds        int
	ReadPolicy         retry.Policy
	ConfirmPolicy      retry.Policy
	StatusCheckTimeout time.Duration
	ReconcileInterval  time.Duration
	ReconcileTimeout   time.Duration
}

// DefaultConfig returns the standard orchestrator settings
func DefaultConfig() Config {
	return Config{
		MaxRebuilds: DefaultMaxRebuilds,
		ReadPolicy:  retry.DefaultPolicy(),
		ConfirmPolicy: retry.Policy{
			MaxAttempts: DefaultConfirmAttempts,
			BaseDelay:   DefaultConfirmInterval,
			MaxDelay:    DefaultConfirmMaxDelay,
		},
		StatusCheckTimeout: DefaultStatusCheckTimeout,
		ReconcileInterval:  DefaultReconcileInterval,
		ReconcileTimeout:   DefaultReconcileTimeout,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	switch {
	case c.MaxRebuilds < 0:
		c.MaxRebuilds = 0
	case c.MaxRebuilds == 0:
		c.MaxRebuilds = d.MaxRebuilds
	}
	if c.ReadPolicy.MaxAttempts == 0 {
		c.ReadPolicy = d.ReadPolicy
	}
	if c.ConfirmPolicy.MaxAttempts == 0 {
		c.ConfirmPolicy = d.ConfirmPolicy
	}
	if c.StatusCheckTimeout <= 0 {
		c.StatusCheckTimeout = d.StatusCheckTimeout
	}
	if c.ReconcileInterval <= 0 {
		c.ReconcileInterval = d.ReconcileInterval
	}
	if c.ReconcileTimeout <= 0 {
		c.ReconcileTimeout = d.ReconcileTimeout
	}
	c.ReadPolicy = c.ReadPolicy.WithRetryable(chain.Retryable)
	c.ConfirmPolicy = c.ConfirmPolicy.WithRetryable(chain.Retryable)
	return c
}

// Orchestrator runs a vault operation from admission to a settled receipt:
// guard, probe, build, simulate, sign, send once, confirm, reconcile
type Orchestrator struct {
	guard     guard.Guard
	prober    Prober
	planner   Planner
	client    chain.Client
	signer    chain.Signer
	sender    Sender
	jobs      JobQueue
	publisher *event.ResilientPublisher
	config    Config
}

// Deps are the collaborators of an Orchestrator. Jobs and Publisher may be nil.
type Deps struct {
	Guard     guard.Guard
	Prober    Prober
	Planner   Planner
	Client    chain.Client
	Signer    chain.Signer
	Sender    Sender
	Jobs      JobQueue
	Publisher *event.ResilientPublisher
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(deps Deps, config Config) *Orchestrator {
	return &Orchestrator{
		guard:     deps.Guard,
		prober:    deps.Prober,
		planner:   deps.Planner,
		client:    deps.Client,
		signer:    deps.Signer,
		sender:    deps.Sender,
		jobs:      deps.Jobs,
		publisher: deps.Publisher,
		config:    config.withDefaults(),
	}
}

func validate(req Request) error {
	if !req.Kind.Valid() {
		return fmt.Errorf(ErrMsgUnknownKind, domain.ErrUnsupportedOperation, req.Kind)
	}
	if req.User.IsZero() {
		return fmt.Errorf(ErrMsgMissingUser, domain.ErrInvalidInput)
	}
	if req.Amount == 0 {
		return fmt.Errorf(ErrMsgZeroAmount, domain.ErrInvalidInput)
	}
	return nil
}

// Execute runs req to completion. A receipt is returned whenever a payload
// was sent, even together with an error, so the caller can show the
// signature.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (*Receipt, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	ticket, err := o.guard.Admit(ctx, req.User.String(), req.Amount)
	if err != nil {
		return nil, err
	}
	op := ticket.Operation

	ctx = logger.WithOperationID(ctx, op.OperationID)
	log := logger.FromContext(ctx)
	log.Info(LogMsgOperationStarted, "kind", req.Kind, "user", req.User.String(), "amount", req.Amount)

	status := domain.StatusFailed
	defer func() {
		// The request context may already be cancelled here
		ticket.Release(context.WithoutCancel(ctx), status)
	}()

	receipt, err := o.run(ctx, op, req)
	if receipt == nil {
		receipt = &Receipt{OperationID: op.OperationID, Status: domain.StatusFailed, Message: MsgFailed}
	}
	status = receipt.Status

	metrics.VaultOperationsTotal.WithLabelValues(string(req.Kind), string(status)).Inc()
	log.Info(LogMsgOperationFinished, "status", status, "signature", receipt.Signature, "error", err)
	if o.publisher != nil && receipt.Signature != "" {
		o.publisher.PublishWithRetry(ctx, event.NewVaultOperationEvent(op.OperationID, req.Kind, req.User.String(), req.Amount, receipt.Signature, status))
	}

	if err != nil && receipt.Signature == "" {
		return nil, err
	}
	return receipt, err
}

// run retries the whole build when the blockhash expired before the
// transaction landed. Each round signs a new payload.
func (o *Orchestrator) run(ctx context.Context, op domain.PendingOperation, req Request) (*Receipt, error) {
	for rebuild := 0; ; rebuild++ {
		receipt, err := o.attempt(ctx, op, req)
		if !errors.Is(err, domain.ErrBlockhashExpired) {
			return receipt, err
		}
		if rebuild >= o.config.MaxRebuilds {
			return receipt, fmt.Errorf(ErrMsgRebuildsSpent, err, rebuild)
		}
		logger.FromContext(ctx).Warn(LogMsgRebuilding, "rebuild", rebuild+1, "error", err)
	}
}

func (o *Orchestrator) attempt(ctx context.Context, op domain.PendingOperation, req Request) (*Receipt, error) {
	log := logger.FromContext(ctx)
	txReq := req.txRequest()

	probe, err := o.prober.Probe(ctx, txReq)
	if err != nil {
		return nil, err
	}
	plan, err := o.planner.Build(ctx, txReq, probe)
	if err != nil {
		return nil, err
	}

	bh, err := retry.Do(ctx, o.config.ReadPolicy, chain.MethodGetLatestBlockhash, o.client.GetLatestBlockhash)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgBlockhash, err)
	}
	tx := plan.Transaction(req.User, bh)

	unsigned, err := tx.MarshalUnsigned()
	if err != nil {
		return nil, fmt.Errorf(ErrMsgSerialize, err)
	}
	sim, err := retry.Do(ctx, o.config.ReadPolicy, chain.MethodSimulateTransaction, func(ctx context.Context) (*chain.SimulationResult, error) {
		return o.client.SimulateTransaction(ctx, unsigned)
	})
	if err != nil {
		return nil, fmt.Errorf(ErrMsgSimulate, chain.ClassifyError(err))
	}
	if simErr := chain.ClassifySimulation(sim); simErr != nil {
		if errors.Is(simErr, domain.ErrAlreadyProcessed) {
			return o.likelySucceeded(op, ""), nil
		}
		log.Warn(LogMsgSimulationRejected, "error", simErr, "logs", sim.Logs)
		return nil, simErr
	}

	signed, err := o.signer.SignTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf(ErrMsgSign, err)
	}

	signature, err := o.sender.Send(ctx, signed)
	if signature == "" {
		signature = signed.Signature()
	}
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrAlreadyProcessed):
		return o.likelySucceeded(op, signature), nil
	case errors.Is(err, domain.ErrBlockhashExpired):
		// Rejected before broadcast; the caller rebuilds
		return nil, err
	case chain.Retryable(err):
		// The payload may have reached the node before the connection broke
		log.Warn(LogMsgSendAmbiguous, "signature", signature, "error", err)
	default:
		return nil, err
	}

	return o.confirm(ctx, op, req, signature, signed.Blockhash())
}

// confirm polls until the signature lands or its blockhash expires. When
// polling runs out first, the status is looked up once more and, if still
// unknown, handed to a background job.
func (o *Orchestrator) confirm(ctx context.Context, op domain.PendingOperation, req Request, signature string, bh chain.Blockhash) (*Receipt, error) {
	log := logger.FromContext(ctx)

	_, err := retry.Do(ctx, o.config.ConfirmPolicy, methodConfirm, func(ctx context.Context) (*chain.SignatureStatus, error) {
		return chain.PollConfirmation(ctx, o.client, signature, bh)
	})
	switch {
	case err == nil:
		return o.receipt(op, signature, domain.StatusConfirmed, MsgConfirmed), nil
	case errors.Is(err, domain.ErrTransactionFailed):
		return o.receipt(op, signature, domain.StatusFailed, MsgFailed), err
	case errors.Is(err, domain.ErrBlockhashExpired):
		return nil, err
	}

	log.Warn(LogMsgConfirmExhausted, "signature", signature, "error", err)
	checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.StatusCheckTimeout)
	defer cancel()
	status, statusErr := o.client.GetSignatureStatus(checkCtx, signature)
	if statusErr == nil && status != nil {
		if status.Err != nil {
			return o.receipt(op, signature, domain.StatusFailed, MsgFailed),
				fmt.Errorf("%w: %v", domain.ErrTransactionFailed, status.Err)
		}
		if status.Landed() {
			return o.receipt(op, signature, domain.StatusConfirmed, MsgConfirmed), nil
		}
	}

	o.scheduleReconcile(ctx, op, req, signature, bh)
	return o.receipt(op, signature, domain.StatusPendingReconcile, MsgPendingReconcile),
		fmt.Errorf(ErrMsgStillUnknown, domain.ErrConfirmationUnknown, signature)
}

func (o *Orchestrator) scheduleReconcile(ctx context.Context, op domain.PendingOperation, req Request, signature string, bh chain.Blockhash) {
	if o.jobs == nil {
		return
	}
	log := logger.FromContext(ctx)
	job := &ReconcileJob{
		client:    o.client,
		publisher: o.publisher,
		operation: op,
		request:   req,
		signature: signature,
		blockhash: bh,
		interval:  o.config.ReconcileInterval,
		timeout:   o.config.ReconcileTimeout,
	}
	if err := o.jobs.Enqueue(job); err != nil {
		log.Error(LogMsgReconcileQueueFull, "signature", signature, "error", err)
		return
	}
	log.Info(LogMsgReconcileQueued, "signature", signature)
}

func (o *Orchestrator) likelySucceeded(op domain.PendingOperation, signature string) *Receipt {
	r := o.receipt(op, signature, domain.StatusLikelySucceeded, MsgLikelySucceeded)
	r.LikelySucceeded = true
	return r
}

func (o *Orchestrator) receipt(op domain.PendingOperation, signature string, status domain.OperationStatus, msg string) *Receipt {
	return &Receipt{OperationID: op.OperationID, Signature: signature, Status: status, Message: msg}
}
