// Package solana derives Solana wallet addresses from base58 secrets and
// signs off-chain messages with them.
package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Sentinel errors for key handling
var (
	ErrInvalidSecret = errors.New("invalid wallet secret")
	ErrKeyGeneration = errors.New("keypair generation failed")
)

// Keypair is an ed25519 signing key together with its public address.
// The zero value is not usable; obtain one from ParseKeypair or NewKeypair.
type Keypair struct {
	private ed25519.PrivateKey
	address string
}

// ParseKeypair decodes a base58 encoded 64-byte keypair (seed followed by public key),
// the format wallets export private keys in.
func ParseKeypair(secret string) (Keypair, error) {
	raw, err := base58.Decode(strings.TrimSpace(secret))
	if err != nil {
		return Keypair{}, fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return Keypair{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSecret, ed25519.PrivateKeySize, len(raw))
	}

	private := ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize])
	if !bytes.Equal(private[ed25519.SeedSize:], raw[ed25519.SeedSize:]) {
		return Keypair{}, fmt.Errorf("%w: public key does not match seed", ErrInvalidSecret)
	}

	return newKeypair(private), nil
}

// NewKeypair generates a fresh random keypair
func NewKeypair() (Keypair, error) {
	_, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Keypair{}, fmt.Errorf("%w: %w", ErrKeyGeneration, err)
	}
	return newKeypair(private), nil
}

func newKeypair(private ed25519.PrivateKey) Keypair {
	public := private.Public().(ed25519.PublicKey)
	return Keypair{
		private: private,
		address: base58.Encode(public),
	}
}

// Address returns the base58 public key
func (k Keypair) Address() string {
	return k.address
}

// Sign signs the UTF-8 bytes of message and returns the base58 signature
func (k Keypair) Sign(message string) string {
	return base58.Encode(ed25519.Sign(k.private, []byte(message)))
}

// Secret returns the base58 encoded keypair, the inverse of ParseKeypair
func (k Keypair) Secret() string {
	return base58.Encode(k.private)
}

// String keeps secrets out of logs and fmt verbs
func (k Keypair) String() string {
	return k.address
}

// Verify reports whether signature is a valid base58 signature of message by address
func Verify(address, message, signature string) bool {
	public, err := base58.Decode(address)
	if err != nil || len(public) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base58.Decode(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(public, []byte(message), sig)
}
