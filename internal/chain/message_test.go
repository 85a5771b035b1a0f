package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/SpinVault_Go/internal/address"
)

func addr(b byte) address.Address {
	var a address.Address
	a[0] = b
	a[31] = b
	return a
}

func TestAppendCompactU16(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xff, 0x01}},
		{16383, []byte{0xff, 0x7f}},
		{16384, []byte{0x80, 0x80, 0x01}},
		{65535, []byte{0xff, 0xff, 0x03}},
	}
	for _, tt := range tests {
		got, err := AppendCompactU16(nil, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}

	_, err := AppendCompactU16(nil, 65536)
	assert.ErrorIs(t, err, ErrTooManyItems)
	_, err = AppendCompactU16(nil, -1)
	assert.ErrorIs(t, err, ErrTooManyItems)
}

func TestMarshalMessage_KeyOrderAndHeader(t *testing.T) {
	payer, signer, writableAcct, readonlyAcct, program := addr(1), addr(2), addr(3), addr(4), addr(5)
	blockhash := addr(9)

	tx := &Transaction{
		FeePayer:  payer,
		Blockhash: Blockhash{Hash: blockhash, LastValidBlockHeight: 100},
		Instructions: []Instruction{{
			ProgramID: program,
			Accounts: []AccountMeta{
				{Address: readonlyAcct},
				{Address: writableAcct, IsWritable: true},
				{Address: signer, IsSigner: true},
			},
			Data: []byte{0xaa, 0xbb},
		}},
	}

	msg, err := tx.MarshalMessage()
	require.NoError(t, err)

	// header: 2 signers, 1 readonly signer, 2 readonly non-signers
	assert.Equal(t, []byte{2, 1, 2}, msg[:3])
	assert.Equal(t, byte(5), msg[3])

	keys := msg[4 : 4+5*address.Size]
	order := []address.Address{payer, signer, writableAcct, readonlyAcct, program}
	for i, want := range order {
		assert.Equal(t, want[:], keys[i*address.Size:(i+1)*address.Size], "key %d", i)
	}

	rest := msg[4+5*address.Size:]
	assert.Equal(t, blockhash[:], rest[:address.Size])
	rest = rest[address.Size:]

	// one instruction: program index 4, accounts [3 2 1], data aa bb
	assert.Equal(t, []byte{1, 4, 3, 3, 2, 1, 2, 0xaa, 0xbb}, rest)
}

func TestMarshalMessage_MergesDuplicateAccounts(t *testing.T) {
	payer, shared, program := addr(1), addr(2), addr(5)

	tx := &Transaction{
		FeePayer: payer,
		Instructions: []Instruction{
			{ProgramID: program, Accounts: []AccountMeta{{Address: shared, IsSigner: true}}},
			{ProgramID: program, Accounts: []AccountMeta{{Address: shared, IsWritable: true}}},
		},
	}

	msg, err := tx.MarshalMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 1}, msg[:3], "shared account becomes a writable signer")
	assert.Equal(t, byte(3), msg[3])

	n, err := tx.RequiredSignatures()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMarshalMessage_Errors(t *testing.T) {
	_, err := (&Transaction{FeePayer: addr(1)}).MarshalMessage()
	assert.ErrorIs(t, err, ErrNoInstructions)

	_, err = (&Transaction{Instructions: []Instruction{SyncNative(addr(3))}}).MarshalMessage()
	assert.ErrorIs(t, err, ErrNoFeePayer)
}

func TestMarshalUnsigned_ZeroSignatureSlots(t *testing.T) {
	tx := &Transaction{
		FeePayer:     addr(1),
		Instructions: []Instruction{SystemTransfer(addr(1), addr(2), 5)},
	}
	raw, err := tx.MarshalUnsigned()
	require.NoError(t, err)

	msg, err := tx.MarshalMessage()
	require.NoError(t, err)

	assert.Equal(t, byte(1), raw[0])
	assert.Equal(t, make([]byte, 64), raw[1:65])
	assert.Equal(t, msg, raw[65:])
}
