package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeystoreRoundTrip(t *testing.T) {
	ks, mnemonic, priv, err := GenerateKeystore("correct horse battery staple", nil)
	require.NoError(t, err)
	require.NotEmpty(t, mnemonic)

	opened, err := OpenKeystore(ks, "correct horse battery staple")
	require.NoError(t, err)
	require.Equal(t, priv.N, opened.N)
}

func TestKeystoreWrongPassphraseFails(t *testing.T) {
	ks, _, _, err := GenerateKeystore("correct horse battery staple", nil)
	require.NoError(t, err)

	_, err = OpenKeystore(ks, "wrong passphrase")
	require.Error(t, err)
}

func TestKeystoreEncodeDecode(t *testing.T) {
	ks, _, _, err := GenerateKeystore("pw", nil)
	require.NoError(t, err)

	data, err := ks.Encode()
	require.NoError(t, err)

	decoded, err := DecodeKeystore(data)
	require.NoError(t, err)
	require.Equal(t, ks.Salt, decoded.Salt)
	require.Equal(t, ks.Nonce, decoded.Nonce)
	require.Equal(t, ks.Ciphertext, decoded.Ciphertext)
}
