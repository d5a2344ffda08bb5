package core

// pricing.go — the per-byte pricing curve from spec §4.2, using math/big
// throughout per §9's overflow note: the super-linear branch multiplies
// size by (size + 3208), which for very large payloads exceeds 64-bit
// capacity before the division brings the result back down, and the spec's
// 21-digit decimal field bound for reward/quantity already implies values
// beyond uint64's ~20-digit range.

import "math/big"

const (
	// WinstonPerAR is the smallest-denomination count per AR token.
	WinstonPerAR = 1_000_000_000_000
	// BaseBytesPerAR is the byte-price anchor used to derive CostPerByte.
	BaseBytesPerAR = 1_000_000
	// CostPerByte = WinstonPerAR / BaseBytesPerAR.
	CostPerByte = WinstonPerAR / BaseBytesPerAR
	// DiffCenter is the difficulty normalization constant.
	DiffCenter = 25
	// NonDataFieldsOverhead accounts for the maximum combined size of a
	// transaction's non-data fields.
	NonDataFieldsOverhead = 3208
	// TenMiB is the threshold at which the super-linear pricing branch engages.
	TenMiB = 10 * 1024 * 1024
)

var (
	bigCostPerByte = big.NewInt(CostPerByte)
	bigDiffCenter  = big.NewInt(DiffCenter)
	bigOverhead    = big.NewInt(NonDataFieldsOverhead)
	bigTenMiB      = big.NewInt(TenMiB)
)

// MinCost returns the minimum reward, in Winstons, required for a
// transaction whose data is size bytes long, mined at the given network
// difficulty. Division is integer (floor) division, matching the reference
// formula bit-for-bit. diff must be positive; zero is treated as 1.
func MinCost(size uint64, diff uint64) *big.Int {
	if diff == 0 {
		diff = 1
	}
	bsize := new(big.Int).SetUint64(size)
	bdiff := new(big.Int).SetUint64(diff)

	if size < TenMiB {
		// (size + 3208) * COST_PER_BYTE * DIFF_CENTER / diff
		num := new(big.Int).Add(bsize, bigOverhead)
		num.Mul(num, bigCostPerByte)
		num.Mul(num, bigDiffCenter)
		return num.Div(num, bdiff)
	}

	// size * (size + 3208) * COST_PER_BYTE * DIFF_CENTER / (diff * 10 MiB)
	sizePlus := new(big.Int).Add(bsize, bigOverhead)
	num := new(big.Int).Mul(bsize, sizePlus)
	num.Mul(num, bigCostPerByte)
	num.Mul(num, bigDiffCenter)

	denom := new(big.Int).Mul(bdiff, bigTenMiB)
	return num.Div(num, denom)
}

// AR converts a whole number of AR tokens to Winstons, the unit Tx.Reward is
// denominated in (spec §8 scenario notation: AR(n)).
func AR(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(WinstonPerAR))
}

// TxCostAboveMin reports whether tx's reward meets or exceeds the minimum
// cost for its data size at the given difficulty (spec §8 scenario 3).
func TxCostAboveMin(tx *Tx, diff uint64) bool {
	min := MinCost(uint64(len(tx.Data)), diff)
	return quantityOrZero(tx.Reward).Cmp(min) >= 0
}
