package address

import "fmt"

// VaultAccount is the derived vault for one mint. It is never persisted.
type VaultAccount struct {
	AuthoritySeed  string  `json:"authority_seed"`
	Mint           Address `json:"mint"`
	OwnerAuthority Address `json:"owner_authority"`
	AuthorityBump  uint8   `json:"authority_bump"`
	TokenAccount   Address `json:"token_account"`
}

// Deriver computes program-derived addresses for one vault program
type Deriver struct {
	programID Address
}

// NewDeriver creates a deriver bound to the vault program id
func NewDeriver(programID Address) *Deriver {
	return &Deriver{programID: programID}
}

// ProgramID returns the vault program id
func (d *Deriver) ProgramID() Address {
	return d.programID
}

// Derive builds the seed list [label, keys...] in exactly the given order
// and finds the program address for it
func (d *Deriver) Derive(label string, keys ...Address) (Address, uint8, error) {
	seeds := make([][]byte, 0, len(keys)+1)
	seeds = append(seeds, []byte(label))
	for i := range keys {
		seeds = append(seeds, keys[i][:])
	}
	addr, bump, err := FindProgramAddress(seeds, d.programID)
	if err != nil {
		return Zero, 0, fmt.Errorf("derive %q: %w", label, err)
	}
	return addr, bump, nil
}

func (d *Deriver) mustDerive(label string, keys ...Address) Address {
	addr, _, err := d.Derive(label, keys...)
	if err != nil {
		// Only reachable with more than 15 keys, which no caller passes
		panic(err)
	}
	return addr
}

// VaultAddress is ["vault", mint]
func (d *Deriver) VaultAddress(mint Address) Address {
	return d.mustDerive(SeedVault, mint)
}

// FeeVaultAddress is ["fee_vault", mint]
func (d *Deriver) FeeVaultAddress(mint Address) Address {
	return d.mustDerive(SeedFeeVault, mint)
}

// FeeConfigAddress is ["fee_config"]
func (d *Deriver) FeeConfigAddress() Address {
	return d.mustDerive(SeedFeeConfig)
}

// UserBalanceAddress is ["user_balance", user, mint]
func (d *Deriver) UserBalanceAddress(user, mint Address) Address {
	return d.mustDerive(SeedUserBalance, user, mint)
}

// NFTTrackerAddress is ["nft_tracker", user]
func (d *Deriver) NFTTrackerAddress(user Address) Address {
	return d.mustDerive(SeedNFTTracker, user)
}

// VaultAccount derives the vault authority and the token account it owns
func (d *Deriver) VaultAccount(mint Address) VaultAccount {
	authority, bump, err := d.Derive(SeedVault, mint)
	if err != nil {
		panic(err)
	}
	return VaultAccount{
		AuthoritySeed:  SeedVault,
		Mint:           mint,
		OwnerAuthority: authority,
		AuthorityBump:  bump,
		TokenAccount:   AssociatedTokenAddress(authority, mint),
	}
}

// AssociatedTokenAddress is the canonical token account of owner for mint:
// [owner, tokenProgram, mint] under the associated-token program
func AssociatedTokenAddress(owner, mint Address) Address {
	addr, _, err := FindProgramAddress(
		[][]byte{owner[:], TokenProgramID[:], mint[:]},
		AssociatedTokenProgramID,
	)
	if err != nil {
		panic(err)
	}
	return addr
}
