package address

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcutil/base58"

	"github.com/osse101/SpinVault_Go/internal/domain"
)

// Address is a 32-byte account key rendered as base58
type Address [Size]byte

// Zero is the all-zero address (the system program id)
var Zero Address

// Parse decodes a base58 address string
func Parse(s string) (Address, error) {
	if s == "" {
		return Zero, fmt.Errorf("%w: empty", domain.ErrInvalidAddress)
	}
	raw := base58.Decode(s)
	if len(raw) != Size {
		return Zero, fmt.Errorf("%w: %q decodes to %d bytes", domain.ErrInvalidAddress, s, len(raw))
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// MustParse is Parse for constants; it panics on malformed input
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromBytes copies a 32-byte slice into an Address
func FromBytes(b []byte) (Address, error) {
	if len(b) != Size {
		return Zero, fmt.Errorf("%w: expected %d bytes, got %d", domain.ErrInvalidAddress, Size, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns a copy of the raw key bytes
func (a Address) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, a[:])
	return b
}

// IsZero reports whether a is the zero address
func (a Address) IsZero() bool {
	return a == Zero
}

// MarshalText implements encoding.TextMarshaler
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// IsOnCurve reports whether b is a valid compressed ed25519 point.
// Program-derived addresses must not be, so nobody can hold their private key.
func IsOnCurve(b []byte) bool {
	if len(b) != Size {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress hashes the seeds with the program id and marker.
// It fails with ErrOnCurve when the result is a valid public key.
func CreateProgramAddress(seeds [][]byte, programID Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Zero, ErrMaxSeedsExceeded
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Zero, fmt.Errorf("%w: seed of %d bytes", ErrMaxSeedLengthExceeded, len(seed))
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(ProgramDerivedMarker))

	sum := h.Sum(nil)
	if IsOnCurve(sum) {
		return Zero, ErrOnCurve
	}
	var a Address
	copy(a[:], sum)
	return a, nil
}

// FindProgramAddress searches bump seeds from 255 down and returns the first
// off-curve address together with the bump that produced it
func FindProgramAddress(seeds [][]byte, programID Address) (Address, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := MaxBump; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return Zero, 0, err
		}
	}
	return Zero, 0, ErrNoViableBump
}
