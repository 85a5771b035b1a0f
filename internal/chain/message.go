package chain

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/osse101/SpinVault_Go/internal/address"
)

// Legacy message layout limits
const (
	signatureLength = 64
	maxCompactU16   = 1<<16 - 1
)

var (
	ErrNoInstructions = errors.New("transaction has no instructions")
	ErrNoFeePayer     = errors.New("transaction has no fee payer")
	ErrTooManyItems   = errors.New("too many items for compact-u16")
)

// AppendCompactU16 appends n in the 7-bit little-endian varint form used by
// the wire format
func AppendCompactU16(dst []byte, n int) ([]byte, error) {
	if n < 0 || n > maxCompactU16 {
		return dst, fmt.Errorf("%w: %d", ErrTooManyItems, n)
	}
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			return append(dst, b), nil
		}
		dst = append(dst, b|0x80)
	}
}

type compiledKey struct {
	addr     address.Address
	signer   bool
	writable bool
}

// accountKeys returns the deduplicated key list in wire order: writable
// signers, readonly signers, writable non-signers, readonly non-signers.
// The fee payer is always first.
func (tx *Transaction) accountKeys() ([]compiledKey, error) {
	if tx.FeePayer.IsZero() {
		return nil, ErrNoFeePayer
	}
	index := map[address.Address]int{}
	var keys []compiledKey

	add := func(a address.Address, signer, writable bool) {
		if i, ok := index[a]; ok {
			keys[i].signer = keys[i].signer || signer
			keys[i].writable = keys[i].writable || writable
			return
		}
		index[a] = len(keys)
		keys = append(keys, compiledKey{addr: a, signer: signer, writable: writable})
	}

	add(tx.FeePayer, true, true)
	for _, ix := range tx.Instructions {
		for _, meta := range ix.Accounts {
			add(meta.Address, meta.IsSigner, meta.IsWritable)
		}
	}
	for _, ix := range tx.Instructions {
		add(ix.ProgramID, false, false)
	}

	rank := func(k compiledKey) int {
		switch {
		case k.signer && k.writable:
			return 0
		case k.signer:
			return 1
		case k.writable:
			return 2
		default:
			return 3
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].addr == tx.FeePayer {
			return keys[j].addr != tx.FeePayer
		}
		if keys[j].addr == tx.FeePayer {
			return false
		}
		return rank(keys[i]) < rank(keys[j])
	})
	return keys, nil
}

// MarshalMessage serializes the legacy message that signers sign
func (tx *Transaction) MarshalMessage() ([]byte, error) {
	if len(tx.Instructions) == 0 {
		return nil, ErrNoInstructions
	}
	keys, err := tx.accountKeys()
	if err != nil {
		return nil, err
	}

	var numSigners, readonlySigned, readonlyUnsigned byte
	position := make(map[address.Address]int, len(keys))
	for i, k := range keys {
		position[k.addr] = i
		switch {
		case k.signer && k.writable:
			numSigners++
		case k.signer:
			numSigners++
			readonlySigned++
		case !k.writable:
			readonlyUnsigned++
		}
	}

	var buf bytes.Buffer
	buf.Write([]byte{numSigners, readonlySigned, readonlyUnsigned})

	out, err := AppendCompactU16(nil, len(keys))
	if err != nil {
		return nil, err
	}
	buf.Write(out)
	for _, k := range keys {
		buf.Write(k.addr[:])
	}
	buf.Write(tx.Blockhash.Hash[:])

	out, err = AppendCompactU16(nil, len(tx.Instructions))
	if err != nil {
		return nil, err
	}
	buf.Write(out)
	for _, ix := range tx.Instructions {
		buf.WriteByte(byte(position[ix.ProgramID]))

		out, err = AppendCompactU16(nil, len(ix.Accounts))
		if err != nil {
			return nil, err
		}
		for _, meta := range ix.Accounts {
			out = append(out, byte(position[meta.Address]))
		}
		buf.Write(out)

		out, err = AppendCompactU16(nil, len(ix.Data))
		if err != nil {
			return nil, err
		}
		buf.Write(out)
		buf.Write(ix.Data)
	}
	return buf.Bytes(), nil
}

// RequiredSignatures is the number of signer slots in the message
func (tx *Transaction) RequiredSignatures() (int, error) {
	keys, err := tx.accountKeys()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, k := range keys {
		if k.signer {
			n++
		}
	}
	return n, nil
}

// MarshalUnsigned serializes the transaction with zeroed signature slots.
// Simulation runs with signature verification off, so this is enough.
func (tx *Transaction) MarshalUnsigned() ([]byte, error) {
	msg, err := tx.MarshalMessage()
	if err != nil {
		return nil, err
	}
	n, err := tx.RequiredSignatures()
	if err != nil {
		return nil, err
	}
	out, err := AppendCompactU16(nil, n)
	if err != nil {
		return nil, err
	}
	out = append(out, make([]byte, n*signatureLength)...)
	return append(out, msg...), nil
}
