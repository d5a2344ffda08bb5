package core

// sign.go — RSA/SHA-256 signing and id binding, spec §4.1/§4.3/§6:
//
//	signature := RSA-Sign(priv, SHA-256(canonical(tx)))
//	id        := SHA-256(signature)
//
// Grounded on the teacher's wallet.go SignTx (derive key, hash, sign,
// stamp the transaction) but using the signature primitive the spec
// mandates (RSA) rather than the teacher's ed25519.

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"math/big"
)

// KeyBits is the RSA modulus size used for newly generated keys.
const KeyBits = 4096

// GenerateKey creates a fresh RSA keypair suitable for transaction signing.
func GenerateKey() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, KeyBits)
}

// ToAddress derives the 32-byte wallet address for an RSA public key:
// SHA-256 of the public key's DER-free wire form used as Tx.Owner (spec §6:
// wallet.to_address(public_key) -> 32 bytes, SHA-256 of the public key).
func ToAddress(ownerPubKeyBytes []byte) Address {
	return sha256.Sum256(ownerPubKeyBytes)
}

// PublicKeyBytes returns the canonical byte encoding of pub used both as
// Tx.Owner and as the input to ToAddress: the big-endian modulus bytes.
// RSA public keys in this subsystem are wire-identified purely by modulus;
// the exponent is fixed (65537) by GenerateKey.
func PublicKeyBytes(pub *rsa.PublicKey) []byte {
	return pub.N.Bytes()
}

// signHash computes SHA-256(canonical(tx)), the RSA signing input.
func signHash(tx *Tx) [32]byte {
	return sha256.Sum256(Canonical(tx))
}

// idFromSignature computes the id binding SHA-256(signature) (spec §4.1/§6).
func idFromSignature(signature []byte) ID {
	return sha256.Sum256(signature)
}

// Sign signs tx in place: it sets Owner to priv's public key bytes, computes
// the RSA-PKCS1v15/SHA-256 signature over Canonical(tx), stores it in
// Signature, and derives ID as SHA-256(Signature) (spec §4.3).
func Sign(tx *Tx, priv *rsa.PrivateKey) error {
	if priv == nil {
		return errors.New("core: nil private key")
	}
	tx.Owner = PublicKeyBytes(&priv.PublicKey)

	h := signHash(tx)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, h[:])
	if err != nil {
		return err
	}
	tx.Signature = sig
	tx.ID = sha256.Sum256(sig)
	return nil
}

// VerifySignature checks that signature is a valid RSA/SHA-256 signature of
// canonical(tx) under the owner's public key bytes (spec §4.4 check 1).
func VerifySignature(ownerPubKeyBytes []byte, canonicalBytes []byte, signature []byte) bool {
	pub, err := parsePublicKey(ownerPubKeyBytes)
	if err != nil {
		return false
	}
	h := sha256.Sum256(canonicalBytes)
	return rsa.VerifyPKCS1v15(pub, crypto.SHA256, h[:], signature) == nil
}

// parsePublicKey reconstructs an RSA public key from the modulus bytes
// produced by PublicKeyBytes, using the fixed public exponent 65537.
func parsePublicKey(modulusBytes []byte) (*rsa.PublicKey, error) {
	if len(modulusBytes) == 0 {
		return nil, errors.New("core: empty owner bytes")
	}
	n := new(big.Int).SetBytes(modulusBytes)
	return &rsa.PublicKey{N: n, E: 65537}, nil
}
