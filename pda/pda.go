package pda

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/iov-one/tokenswap/errors"
)

const (
	// MaxSeeds is the maximum number of seeds, bump included, that can be
	// used to derive an address.
	MaxSeeds = solana.MaxSeeds

	// MaxSeedLen is the maximum length of a single seed.
	MaxSeedLen = solana.MaxSeedLength
)

var (
	// ErrInvalidSeeds is returned when given seeds produce an address that
	// has a private key, or when there are too many seeds.
	ErrInvalidSeeds = errors.Register("pda", 1, "invalid seeds, address must fall off the curve")

	// ErrMaxSeedLength is returned when a single seed is too long.
	ErrMaxSeedLength = errors.Register("pda", 2, "length of the seed is too long for address generation")

	// ErrNoViableBump is returned when no bump value produces a valid
	// address. This is practically impossible.
	ErrNoViableBump = errors.Register("pda", 3, "unable to find a viable program address bump seed")
)

// CreateProgramAddress returns the address derived from given seeds for the
// program. An address that is a valid ed25519 point is rejected, because
// someone could hold its private key.
func CreateProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, error) {
	if err := checkSeeds(seeds, MaxSeeds); err != nil {
		return solana.PublicKey{}, err
	}
	addr, err := solana.CreateProgramAddress(seeds, programID)
	if err != nil {
		return solana.PublicKey{}, errors.Wrap(ErrInvalidSeeds, err.Error())
	}
	return addr, nil
}

// FindProgramAddress searches for a bump value, starting from 255 and going
// down, that appended to given seeds produces a valid program address. The
// first match is returned so the result is deterministic.
func FindProgramAddress(seeds [][]byte, programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	if err := checkSeeds(seeds, MaxSeeds-1); err != nil {
		return solana.PublicKey{}, 0, err
	}
	// The bump is appended to seeds, which must not write into the
	// caller's backing array.
	addr, bump, err := solana.FindProgramAddress(seeds[:len(seeds):len(seeds)], programID)
	if err != nil {
		return solana.PublicKey{}, 0, errors.Wrap(ErrNoViableBump, err.Error())
	}
	return addr, bump, nil
}

// checkSeeds reports each violated limit with its own error.
func checkSeeds(seeds [][]byte, max int) error {
	if len(seeds) > max {
		return errors.Wrapf(ErrInvalidSeeds, "%d seeds", len(seeds))
	}
	for _, s := range seeds {
		if len(s) > MaxSeedLen {
			return errors.Wrapf(ErrMaxSeedLength, "seed of %d bytes", len(s))
		}
	}
	return nil
}

// Authority is an address controlled by a program. It has no private key.
// A program acts as its authority by presenting a Proof when invoking another
// program.
type Authority struct {
	Address solana.PublicKey
	Bump    uint8

	seed []byte
}

// Derive returns the authority of given program for a domain seed. Any
// party can compute the same result.
func Derive(seed []byte, programID solana.PublicKey) (Authority, error) {
	addr, bump, err := FindProgramAddress([][]byte{seed}, programID)
	if err != nil {
		return Authority{}, errors.Wrapf(err, "derive %q authority", seed)
	}
	return Authority{
		Address: addr,
		Bump:    bump,
		seed:    append([]byte(nil), seed...),
	}, nil
}

// Proof returns the capability that allows the owning program to sign as
// this authority in a nested invocation.
func (a Authority) Proof() Proof {
	return Proof{seeds: [][]byte{a.seed, {a.Bump}}}
}

// Proof is a derivation proof. The host recomputes the address from it using
// the id of the program that presents the proof, so a proof is only ever
// valid for the program that owns the authority.
//
// A proof is not meant to be stored or logged.
type Proof struct {
	seeds [][]byte
}

// Address recomputes the address this proof signs for, when presented by
// given program.
func (p Proof) Address(programID solana.PublicKey) (solana.PublicKey, error) {
	if len(p.seeds) == 0 {
		return solana.PublicKey{}, errors.Wrap(ErrInvalidSeeds, "empty proof")
	}
	return CreateProgramAddress(p.seeds, programID)
}

// String does not reveal the proof content.
func (p Proof) String() string {
	return fmt.Sprintf("pda.Proof(%d seeds)", len(p.seeds))
}

// GoString does not reveal the proof content.
func (p Proof) GoString() string {
	return p.String()
}
