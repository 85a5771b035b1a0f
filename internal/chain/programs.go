package chain

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/osse101/SpinVault_Go/internal/address"
)

// Instruction tags of the system, token and associated-token programs
const (
	systemTransferTag      uint32 = 2
	tokenCloseAccountTag   byte   = 9
	tokenSyncNativeTag     byte   = 17
	ataCreateIdempotentTag byte   = 1
)

// Instruction names, used in logs and plan summaries
const (
	IxCreateTokenAccount = "create_token_account"
	IxTransfer           = "system_transfer"
	IxSyncNative         = "sync_native"
	IxCloseAccount       = "close_account"
	IxVaultDeposit       = "deposit"
	IxVaultWithdraw      = "withdraw"
	IxVaultClaimAny      = "claim_any"
	IxVaultClaimOwned    = "claim_owned"
)

func writable(a address.Address) AccountMeta { return AccountMeta{Address: a, IsWritable: true} }
func readonly(a address.Address) AccountMeta { return AccountMeta{Address: a} }
func signerWritable(a address.Address) AccountMeta {
	return AccountMeta{Address: a, IsSigner: true, IsWritable: true}
}

// SystemTransfer moves lamports between two system accounts
func SystemTransfer(from, to address.Address, lamports uint64) Instruction {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], systemTransferTag)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	return Instruction{
		Name:      IxTransfer,
		ProgramID: address.SystemProgramID,
		Accounts:  []AccountMeta{signerWritable(from), writable(to)},
		Data:      data,
	}
}

// CreateAssociatedTokenAccount creates owner's token account for mint and is
// a no-op if it already exists
func CreateAssociatedTokenAccount(payer, owner, mint address.Address) Instruction {
	return Instruction{
		Name:      IxCreateTokenAccount,
		ProgramID: address.AssociatedTokenProgramID,
		Accounts: []AccountMeta{
			signerWritable(payer),
			writable(address.AssociatedTokenAddress(owner, mint)),
			readonly(owner),
			readonly(mint),
			readonly(address.SystemProgramID),
			readonly(address.TokenProgramID),
		},
		Data: []byte{ataCreateIdempotentTag},
	}
}

// SyncNative updates a wrapped-native token account's amount to its lamports
func SyncNative(tokenAccount address.Address) Instruction {
	return Instruction{
		Name:      IxSyncNative,
		ProgramID: address.TokenProgramID,
		Accounts:  []AccountMeta{writable(tokenAccount)},
		Data:      []byte{tokenSyncNativeTag},
	}
}

// CloseAccount closes a token account and sends its lamports to destination.
// For wrapped-native accounts this is the unwrap step.
func CloseAccount(tokenAccount, destination, owner address.Address) Instruction {
	return Instruction{
		Name:      IxCloseAccount,
		ProgramID: address.TokenProgramID,
		Accounts: []AccountMeta{
			writable(tokenAccount),
			writable(destination),
			{Address: owner, IsSigner: true},
		},
		Data: []byte{tokenCloseAccountTag},
	}
}

// Discriminator is the 8-byte method selector the vault program expects:
// the first 8 bytes of sha256("global:<method>")
func Discriminator(method string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + method))
	var d [8]byte
	copy(d[:], sum[:8])
	return d
}

func encodeAmount(method string, amount uint64) []byte {
	d := Discriminator(method)
	data := make([]byte, 16)
	copy(data, d[:])
	binary.LittleEndian.PutUint64(data[8:], amount)
	return data
}

// VaultProgram builds instructions for the deployed vault program
type VaultProgram struct {
	deriver *address.Deriver
}

// NewVaultProgram binds instruction builders to the program's deriver
func NewVaultProgram(deriver *address.Deriver) *VaultProgram {
	return &VaultProgram{deriver: deriver}
}

// ProgramID is the vault program id
func (p *VaultProgram) ProgramID() address.Address {
	return p.deriver.ProgramID()
}

// Deposit moves amount of mint from the user's token account into the vault
func (p *VaultProgram) Deposit(user, mint address.Address, amount uint64) Instruction {
	vault := p.deriver.VaultAccount(mint)
	return Instruction{
		Name:      IxVaultDeposit,
		ProgramID: p.ProgramID(),
		Accounts: []AccountMeta{
			signerWritable(user),
			writable(p.deriver.UserBalanceAddress(user, mint)),
			readonly(p.deriver.FeeConfigAddress()),
			readonly(vault.OwnerAuthority),
			writable(vault.TokenAccount),
			writable(address.AssociatedTokenAddress(user, mint)),
			readonly(mint),
			readonly(address.TokenProgramID),
			readonly(address.SystemProgramID),
		},
		Data: encodeAmount(IxVaultDeposit, amount),
	}
}

// Withdraw moves amount of mint out of the vault into the user's token account
func (p *VaultProgram) Withdraw(user, mint address.Address, amount uint64) Instruction {
	vault := p.deriver.VaultAccount(mint)
	return Instruction{
		Name:      IxVaultWithdraw,
		ProgramID: p.ProgramID(),
		Accounts: []AccountMeta{
			signerWritable(user),
			writable(p.deriver.UserBalanceAddress(user, mint)),
			readonly(p.deriver.FeeConfigAddress()),
			readonly(vault.OwnerAuthority),
			writable(vault.TokenAccount),
			writable(address.AssociatedTokenAddress(user, mint)),
			writable(p.deriver.FeeVaultAddress(mint)),
			readonly(mint),
			readonly(address.TokenProgramID),
		},
		Data: encodeAmount(IxVaultWithdraw, amount),
	}
}

// ClaimAny releases one unit of asset from the vault to any eligible claimer
func (p *VaultProgram) ClaimAny(user, asset address.Address, amount uint64) Instruction {
	vault := p.deriver.VaultAccount(asset)
	return Instruction{
		Name:      IxVaultClaimAny,
		ProgramID: p.ProgramID(),
		Accounts: []AccountMeta{
			signerWritable(user),
			readonly(vault.OwnerAuthority),
			writable(vault.TokenAccount),
			writable(address.AssociatedTokenAddress(user, asset)),
			readonly(asset),
			readonly(address.TokenProgramID),
			readonly(address.SystemProgramID),
		},
		Data: encodeAmount(IxVaultClaimAny, amount),
	}
}

// ClaimOwned is the ownership-restricted claim; it requires the user's
// tracker account to exist
func (p *VaultProgram) ClaimOwned(user, asset address.Address, amount uint64) Instruction {
	vault := p.deriver.VaultAccount(asset)
	return Instruction{
		Name:      IxVaultClaimOwned,
		ProgramID: p.ProgramID(),
		Accounts: []AccountMeta{
			signerWritable(user),
			writable(p.deriver.NFTTrackerAddress(user)),
			readonly(vault.OwnerAuthority),
			writable(vault.TokenAccount),
			writable(address.AssociatedTokenAddress(user, asset)),
			readonly(asset),
			readonly(address.TokenProgramID),
		},
		Data: encodeAmount(IxVaultClaimOwned, amount),
	}
}
