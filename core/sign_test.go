package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)

	tx, err := NewTxWithReward([]byte("hello weave"), big.NewInt(1000))
	require.NoError(t, err)
	tx.Quantity = big.NewInt(5)
	require.NoError(t, Sign(tx, priv))

	require.NotEmpty(t, tx.Owner)
	require.NotEmpty(t, tx.Signature)
	require.True(t, VerifySignature(tx.Owner, Canonical(tx), tx.Signature))
	require.Equal(t, idFromSignature(tx.Signature), tx.ID)
}

func TestSignVerifyDetectsTamper(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)

	tx, err := NewTxWithReward([]byte("x"), big.NewInt(1))
	require.NoError(t, err)
	tx.Quantity = big.NewInt(1)
	require.NoError(t, Sign(tx, priv))

	canonical := Canonical(tx)
	canonical[0] ^= 0xFF
	require.False(t, VerifySignature(tx.Owner, canonical, tx.Signature))
}

func TestSignVerifyWrongKeyFails(t *testing.T) {
	priv1, err := GenerateKey()
	require.NoError(t, err)
	priv2, err := GenerateKey()
	require.NoError(t, err)

	tx, err := NewTx()
	require.NoError(t, err)
	tx.Quantity = big.NewInt(1)
	tx.Reward = big.NewInt(1)
	require.NoError(t, Sign(tx, priv1))

	wrongOwner := PublicKeyBytes(&priv2.PublicKey)
	require.False(t, VerifySignature(wrongOwner, Canonical(tx), tx.Signature))
}

func TestToAddressIsDeterministic(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)
	pub := PublicKeyBytes(&priv.PublicKey)
	require.Equal(t, ToAddress(pub), ToAddress(pub))
}

func TestNewTxFamilyDrawsDistinctRandomIDs(t *testing.T) {
	a, err := NewTx()
	require.NoError(t, err)
	b, err := NewTx()
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)
	require.False(t, a.ID.IsZero())
}

func TestNewTxToDestinationAcceptsPublicKeyOrAddress(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)
	pub := PublicKeyBytes(&priv.PublicKey)

	byKey, err := NewTxToDestination(pub, big.NewInt(1), big.NewInt(10), ID{}, nil)
	require.NoError(t, err)
	require.Equal(t, ToAddress(pub), byKey.Target)

	addr := ToAddress(pub)
	byAddr, err := NewTxToDestination(addr[:], big.NewInt(1), big.NewInt(10), ID{}, nil)
	require.NoError(t, err)
	require.Equal(t, addr, byAddr.Target)
}
