package address

import "errors"

// Derivation limits enforced by the runtime
const (
	Size                 = 32
	MaxSeeds             = 16
	MaxSeedLength        = 32
	MaxBump              = 255
	ProgramDerivedMarker = "ProgramDerivedAddress"
)

// Seed labels. These must match the on-chain program byte-for-byte.
const (
	SeedVault       = "vault"
	SeedFeeVault    = "fee_vault"
	SeedFeeConfig   = "fee_config"
	SeedUserBalance = "user_balance"
	SeedNFTTracker  = "nft_tracker"
)

// Well-known program and account ids
var (
	SystemProgramID          = Zero
	TokenProgramID           = MustParse("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	AssociatedTokenProgramID = MustParse("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	NativeMint               = MustParse("So11111111111111111111111111111111111111112")
	SysvarRentID             = MustParse("SysvarRent111111111111111111111111111111111")
)

var (
	ErrMaxSeedsExceeded      = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("seed too long")
	ErrOnCurve               = errors.New("derived address lies on the ed25519 curve")
	ErrNoViableBump          = errors.New("no viable bump seed")
)
