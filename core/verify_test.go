package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func signedTx(t *testing.T, data []byte, diff uint64) (*Tx, WalletLedger) {
	t.Helper()
	priv, err := GenerateKey()
	require.NoError(t, err)

	tx, err := NewTxWithReward(data, MinCost(uint64(len(data)), diff))
	require.NoError(t, err)
	require.NoError(t, Sign(tx, priv))
	return tx, WalletLedger{}
}

func TestVerifyAcceptsWellFormedGenesisTx(t *testing.T) {
	tx, ledger := signedTx(t, []byte("hello"), DiffCenter)
	cfg := VerifierConfig{GenesisBootstrap: true}
	require.True(t, Verify(tx, DiffCenter, ledger, cfg))
}

func TestVerifyRejectsEmptyLedgerWithoutBootstrapUnlessGenesisTx(t *testing.T) {
	tx, ledger := signedTx(t, []byte("hello"), DiffCenter)
	cfg := VerifierConfig{GenesisBootstrap: false}
	// tx.LastTx is the zero ID, i.e. a genesis transaction, so it still passes.
	require.True(t, Verify(tx, DiffCenter, ledger, cfg))

	tx.LastTx = ID{1, 2, 3}
	tx.Signature = nil // force re-derivation to avoid stale signature mismatch
	priv, err := GenerateKey()
	require.NoError(t, err)
	require.NoError(t, Sign(tx, priv))
	require.False(t, Verify(tx, DiffCenter, ledger, cfg))
}

func TestVerifyRejectsUnderfundedReward(t *testing.T) {
	tx, ledger := signedTx(t, []byte("hello"), DiffCenter)
	tx.Reward = big.NewInt(0)
	priv, err := GenerateKey()
	require.NoError(t, err)
	require.NoError(t, Sign(tx, priv))

	cfg := VerifierConfig{GenesisBootstrap: true}
	require.False(t, Verify(tx, DiffCenter, ledger, cfg))
}

func TestVerifyRejectsTamperedData(t *testing.T) {
	tx, ledger := signedTx(t, []byte("hello"), DiffCenter)
	tx.Data = []byte("tampered")
	cfg := VerifierConfig{GenesisBootstrap: true}
	require.False(t, Verify(tx, DiffCenter, ledger, cfg))
}

func TestVerifyRejectsOversizedOwner(t *testing.T) {
	tx, ledger := signedTx(t, []byte("hello"), DiffCenter)
	tx.Owner = make([]byte, MaxOwnerBytes+1)
	cfg := VerifierConfig{GenesisBootstrap: true}
	require.False(t, Verify(tx, DiffCenter, ledger, cfg))
}

func TestVerifyAllowUnsignedBypassesSignatureCheck(t *testing.T) {
	tx, err := NewTxWithReward(nil, MinCost(0, DiffCenter))
	require.NoError(t, err)
	cfg := VerifierConfig{AllowUnsigned: true, GenesisBootstrap: true}
	require.True(t, Verify(tx, DiffCenter, WalletLedger{}, cfg))
}

func TestVerifyChecksLastTxChaining(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)
	addr := ToAddress(PublicKeyBytes(&priv.PublicKey))

	first, err := NewTxWithReward(nil, MinCost(0, DiffCenter))
	require.NoError(t, err)
	require.NoError(t, Sign(first, priv))

	ledger := WalletLedger{addr: {Address: addr, Balance: big.NewInt(1_000_000_000), LastTx: first.ID}}

	second, err := NewTxWithLastTx(nil, MinCost(0, DiffCenter), first.ID)
	require.NoError(t, err)
	require.NoError(t, Sign(second, priv))
	cfg := VerifierConfig{}
	require.True(t, Verify(second, DiffCenter, ledger, cfg))

	wrongPrev, err := NewTxWithLastTx(nil, MinCost(0, DiffCenter), ID{9, 9, 9})
	require.NoError(t, err)
	require.NoError(t, Sign(wrongPrev, priv))
	require.False(t, Verify(wrongPrev, DiffCenter, ledger, cfg))
}

func TestApplyTxUpdatesBalancesAndLastTx(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)
	senderAddr := ToAddress(PublicKeyBytes(&priv.PublicKey))

	var targetAddr Address
	targetAddr[0] = 0xAB

	tx, err := NewTxToDestination(targetAddr[:], big.NewInt(10), big.NewInt(100), ID{}, nil)
	require.NoError(t, err)
	require.NoError(t, Sign(tx, priv))

	ledger := WalletLedger{senderAddr: {Address: senderAddr, Balance: big.NewInt(1000)}}
	out := ApplyTx(ledger, tx)

	require.Equal(t, big.NewInt(890), out[senderAddr].Balance)
	require.Equal(t, tx.ID, out[senderAddr].LastTx)
	require.Equal(t, big.NewInt(100), out[targetAddr].Balance)
}

func TestVerifyTxsThreadsLedgerAcrossSequence(t *testing.T) {
	priv, err := GenerateKey()
	require.NoError(t, err)

	first, err := NewTxWithReward(nil, MinCost(0, DiffCenter))
	require.NoError(t, err)
	require.NoError(t, Sign(first, priv))
	second, err := NewTxWithLastTx(nil, MinCost(0, DiffCenter), first.ID)
	require.NoError(t, err)
	require.NoError(t, Sign(second, priv))

	cfg := VerifierConfig{GenesisBootstrap: true}
	require.True(t, VerifyTxs([]*Tx{first, second}, DiffCenter, WalletLedger{}, cfg))

	// Reordering breaks the last-tx chain.
	require.False(t, VerifyTxs([]*Tx{second, first}, DiffCenter, WalletLedger{}, cfg))
}
