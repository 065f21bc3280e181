// Package auth turns signed instruction envelopes into the set of
// identities that authorised them.
package auth

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/eigerco/vesting/internal/crypto"
	"github.com/eigerco/vesting/internal/crypto/ed25519"
	"github.com/eigerco/vesting/pkg/serialization/codec/fixed"
)

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrNoSignatures     = errors.New("envelope carries no signatures")
)

type Signature struct {
	Signer    crypto.Identity
	Signature crypto.Signature
}

// Envelope is an encoded instruction and the signatures over its digest.
type Envelope struct {
	Payload    []byte
	Signatures []Signature
}

// Digest is the message every signer signs.
func Digest(payload []byte) crypto.Hash {
	return crypto.HashData(payload)
}

// Sign wraps payload in an envelope signed by every key.
func Sign(payload []byte, keys ...solana.PrivateKey) Envelope {
	digest := Digest(payload)
	env := Envelope{Payload: payload}
	for _, key := range keys {
		var sig crypto.Signature
		copy(sig[:], ed25519.Sign(ed25519.PrivateKey(key), digest[:]))
		env.Signatures = append(env.Signatures, Signature{Signer: key.PublicKey(), Signature: sig})
	}
	return env
}

// Verify checks every signature and returns the signers.
func (e Envelope) Verify() (crypto.IdentitySet, error) {
	if len(e.Signatures) == 0 {
		return nil, ErrNoSignatures
	}
	digest := Digest(e.Payload)
	signers := crypto.NewIdentitySet()
	for _, s := range e.Signatures {
		if !ed25519.Verify(s.Signer[:], digest[:], s.Signature[:]) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSignature, s.Signer)
		}
		signers.Add(s.Signer)
	}
	return signers, nil
}

func (e Envelope) Marshal() ([]byte, error) {
	return fixed.Marshal(e)
}

func Unmarshal(data []byte) (Envelope, error) {
	var e Envelope
	if err := fixed.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return e, nil
}
