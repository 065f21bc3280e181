package crypto

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Identity names every record, token account and signer in the ledger.
type Identity = solana.PublicKey

type Signature [SignatureSize]byte

// PoolAuthority derives the program address that owns the token pool of
// the given pool type record.
func PoolAuthority(poolType Identity, programID Identity) (Identity, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{poolType[:]}, programID)
	if err != nil {
		return Identity{}, 0, fmt.Errorf("deriving pool authority for %s: %w", poolType, err)
	}
	return addr, bump, nil
}

var (
	policySeed    = []byte("policy")
	devestingSeed = []byte("devesting")
)

// PolicyAddress derives the only address a devesting policy of poolType
// may live at.
func PolicyAddress(poolType Identity, programID Identity) (Identity, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{policySeed, poolType[:]}, programID)
	if err != nil {
		return Identity{}, fmt.Errorf("deriving policy address for %s: %w", poolType, err)
	}
	return addr, nil
}

// ProgressAddress derives the only address the devesting progress of grant
// may live at.
func ProgressAddress(grant Identity, programID Identity) (Identity, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{devestingSeed, grant[:]}, programID)
	if err != nil {
		return Identity{}, fmt.Errorf("deriving progress address for %s: %w", grant, err)
	}
	return addr, nil
}

func ParseIdentity(s string) (Identity, error) {
	return solana.PublicKeyFromBase58(s)
}
