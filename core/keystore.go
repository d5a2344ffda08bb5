package core

// keystore.go — RSA private-key storage, encrypted at rest. spec.md treats
// wallet-key derivation as an external collaborator and explicitly places it
// out of scope (§1), but some concrete way to generate and persist signing
// keys is needed to exercise §4.3 end to end (SPEC_FULL §4.3.1). This mirrors
// the teacher's wallet.go HD-wallet-from-seed shape (hmac-sha512 over a
// bip39 seed) but protects a generated RSA key rather than deriving one.

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	bip39 "github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/scrypt"
)

// Scrypt cost parameters. N is kept modest (vs. the 2^20 geth default) since
// this keystore protects a single signing key rather than a funded exchange
// wallet. GenerateKeystore always uses these values; OpenKeystore uses the
// parameters stored in the keystore being opened.
const (
	defaultScryptN = 1 << 15
	defaultScryptR = 8
	defaultScryptP = 1
	scryptKeyLen   = 32
	saltLen        = 16
)

// Keystore is the on-disk, passphrase-encrypted form of an RSA private key.
type Keystore struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
	ScryptN    int    `json:"scrypt_n"`
	ScryptR    int    `json:"scrypt_r"`
	ScryptP    int    `json:"scrypt_p"`
}

// GenerateKeystore creates a fresh RSA signing key, encrypts it under a key
// derived from passphrase via scrypt, and returns the encrypted keystore
// alongside a BIP-39 mnemonic that encodes the salt for recovery display
// (the mnemonic does not replace the passphrase; it lets an operator label
// and recover a specific keystore file by its salt).
func GenerateKeystore(passphrase string, logger *logrus.Logger) (*Keystore, string, *rsa.PrivateKey, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	priv, err := GenerateKey()
	if err != nil {
		return nil, "", nil, fmt.Errorf("keystore: generate rsa key: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, "", nil, fmt.Errorf("keystore: read salt: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(salt)
	if err != nil {
		return nil, "", nil, fmt.Errorf("keystore: encode salt mnemonic: %w", err)
	}

	ks, err := sealKeystore(priv, passphrase, salt, defaultScryptN, defaultScryptR, defaultScryptP)
	if err != nil {
		return nil, "", nil, err
	}

	logger.WithField("addr", ToAddress(PublicKeyBytes(&priv.PublicKey)).Short()).
		Info("keystore: generated new signing key")
	return ks, mnemonic, priv, nil
}

// sealKeystore encrypts the DER-encoded RSA private key under AES-256-GCM
// with a scrypt-derived key.
func sealKeystore(priv *rsa.PrivateKey, passphrase string, salt []byte, n, r, p int) (*Keystore, error) {
	der := x509.MarshalPKCS1PrivateKey(priv)

	key, err := scrypt.Key([]byte(passphrase), salt, n, r, p, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("keystore: derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("keystore: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: new gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("keystore: read nonce: %w", err)
	}

	ct := gcm.Seal(nil, nonce, der, nil)
	return &Keystore{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ct,
		ScryptN:    n,
		ScryptR:    r,
		ScryptP:    p,
	}, nil
}

// OpenKeystore decrypts an RSA private key from its encrypted form using the
// given passphrase.
func OpenKeystore(ks *Keystore, passphrase string) (*rsa.PrivateKey, error) {
	if ks == nil {
		return nil, errors.New("keystore: nil keystore")
	}
	key, err := scrypt.Key([]byte(passphrase), ks.Salt, ks.ScryptN, ks.ScryptR, ks.ScryptP, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("keystore: derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("keystore: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("keystore: new gcm: %w", err)
	}
	der, err := gcm.Open(nil, ks.Nonce, ks.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("keystore: wrong passphrase or corrupt keystore: %w", err)
	}
	return x509.ParsePKCS1PrivateKey(der)
}

// MarshalJSON-friendly helpers for persisting a keystore to disk.

// Encode serializes the keystore to JSON for storage.
func (ks *Keystore) Encode() ([]byte, error) {
	return json.Marshal(ks)
}

// DecodeKeystore parses a keystore previously produced by Encode.
func DecodeKeystore(data []byte) (*Keystore, error) {
	var ks Keystore
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("keystore: decode: %w", err)
	}
	return &ks, nil
}
