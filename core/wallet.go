package core

// wallet.go — the concrete Wallet implementation (spec §6's wallet.*
// collaborator), a thin wrapper around an unlocked RSA private key. Kept
// separate from keystore.go so the latter stays focused on at-rest
// encryption and this stays focused on the signing contract the Bridge and
// CLI tools depend on.

import (
	"crypto/rsa"
	"fmt"
)

// RSAWallet implements Wallet over an in-memory RSA private key.
type RSAWallet struct {
	priv *rsa.PrivateKey
	addr Address
}

// NewRSAWallet wraps an already-unlocked private key.
func NewRSAWallet(priv *rsa.PrivateKey) *RSAWallet {
	pub := PublicKeyBytes(&priv.PublicKey)
	return &RSAWallet{priv: priv, addr: ToAddress(pub)}
}

// Address implements Wallet.
func (w *RSAWallet) Address() Address { return w.addr }

// Sign implements Wallet: it signs tx in place, deriving tx.ID from the
// resulting signature (spec §4.3/§4.4).
func (w *RSAWallet) Sign(tx *Tx) error {
	if err := Sign(tx, w.priv); err != nil {
		return fmt.Errorf("wallet: sign: %w", err)
	}
	return nil
}
