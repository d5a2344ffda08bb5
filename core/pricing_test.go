package core

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinCostMonotonicInSize(t *testing.T) {
	small := MinCost(100, DiffCenter)
	large := MinCost(20*1024*1024, DiffCenter)
	require.Equal(t, -1, small.Cmp(large))
}

func TestMinCostZeroDifficultyTreatedAsOne(t *testing.T) {
	require.Equal(t, MinCost(1000, 1), MinCost(1000, 0))
}

func TestMinCostContinuousAcrossBranchBoundary(t *testing.T) {
	below := MinCost(TenMiB-1, DiffCenter)
	above := MinCost(TenMiB, DiffCenter)
	// The two branches need not agree exactly at the boundary, but they must
	// not diverge by orders of magnitude (a sign the formula was transcribed
	// incorrectly).
	diff := new(big.Int).Sub(above, below)
	diff.Abs(diff)
	require.Less(t, diff.Cmp(new(big.Int).Mul(above, big.NewInt(2))), 1)
}

func TestTxCostAboveMin(t *testing.T) {
	tx := &Tx{Data: make([]byte, 100)}
	tx.Reward = MinCost(100, DiffCenter)
	require.True(t, TxCostAboveMin(tx, DiffCenter))

	tx.Reward = new(big.Int).Sub(tx.Reward, big.NewInt(1))
	require.False(t, TxCostAboveMin(tx, DiffCenter))
}

func TestMinCostHigherDifficultyCostsLess(t *testing.T) {
	low := MinCost(1000, 10)
	high := MinCost(1000, 50)
	require.Equal(t, 1, low.Cmp(high))
}
