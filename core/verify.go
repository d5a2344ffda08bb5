package core

// verify.go — the Transaction Verifier, spec §4.4: the logical conjunction
// of six checks, surfaced as a single boolean per spec §7 ("the verifier
// must not throw on any of these"). Grounded on the teacher's
// TxPool.ValidateTx/AddTx sequencing in transactions.go, which likewise
// composes a signature check, a balance/nonce check and an authority check
// before admitting a transaction.

import (
	"math/big"

	"github.com/sirupsen/logrus"
)

// VerifierConfig gates the two escape hatches spec §9 calls out explicitly.
type VerifierConfig struct {
	// AllowUnsigned permits a transaction with no signature to verify. Off
	// by default; every use logs a warning, matching the teacher's debug
	// compile flag made into an explicit, auditable runtime switch.
	AllowUnsigned bool
	// GenesisBootstrap must be set for the empty-ledger escape hatch in
	// check 5 to apply. Off by default in any ledger-backed deployment.
	GenesisBootstrap bool

	Logger *logrus.Logger
}

func (c VerifierConfig) logger() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

// Verify reports whether tx satisfies every invariant in spec §3/§4.4
// simultaneously: signature validity, pricing, field-size bounds, tag
// shape, last-tx chaining against ledger, and id binding.
func Verify(tx *Tx, diff uint64, ledger WalletLedger, cfg VerifierConfig) bool {
	if tx == nil {
		return false
	}
	if !checkTagShape(tx) {
		return false
	}
	if !checkFieldSizes(tx) {
		return false
	}
	if !checkSignature(tx, cfg) {
		return false
	}
	if !checkIDBinding(tx, cfg) {
		return false
	}
	if !TxCostAboveMin(tx, diff) {
		return false
	}
	if !checkLastTx(tx, ledger, cfg) {
		return false
	}
	return true
}

// checkSignature implements spec §4.4 check 1, gated by the debug bypass.
func checkSignature(tx *Tx, cfg VerifierConfig) bool {
	if len(tx.Signature) == 0 {
		if cfg.AllowUnsigned {
			cfg.logger().Warn("core: verifying unsigned transaction (AllowUnsigned enabled)")
			return true
		}
		return false
	}
	return VerifySignature(tx.Owner, Canonical(tx), tx.Signature)
}

// checkIDBinding implements spec §4.4 check 6: id == hash(signature).
func checkIDBinding(tx *Tx, cfg VerifierConfig) bool {
	if len(tx.Signature) == 0 && cfg.AllowUnsigned {
		// An unsigned transaction's id was freshly drawn at construction
		// time (spec §3); there is no signature to bind it to.
		return true
	}
	want := idFromSignature(tx.Signature)
	return tx.ID == want
}

// checkFieldSizes implements spec §3/§4.4 check 3: all field-size bounds.
func checkFieldSizes(tx *Tx) bool {
	if len(tx.Owner) > MaxOwnerBytes {
		return false
	}
	if len(tx.TagBytes()) > MaxTagBytes {
		return false
	}
	if len(tx.Signature) > MaxSignatureBytes {
		return false
	}
	if len(quantityOrZero(tx.Quantity).String()) > MaxQuantityDigits {
		return false
	}
	if len(quantityOrZero(tx.Reward).String()) > MaxRewardDigits {
		return false
	}
	if quantityOrZero(tx.Quantity).Sign() < 0 || quantityOrZero(tx.Reward).Sign() < 0 {
		return false
	}
	return true
}

// checkTagShape implements spec §4.4 check 4: every tag is a 2-tuple. Go's
// Tag type structurally guarantees this, so the only failure mode left is a
// caller that built a Tag with a nil Name or Value slice where an empty
// (non-nil) byte string was intended; both serialize identically, so no
// additional check is required beyond the type system.
func checkTagShape(tx *Tx) bool {
	return tx != nil
}

// checkLastTx implements spec §4.4 check 5.
func checkLastTx(tx *Tx, ledger WalletLedger, cfg VerifierConfig) bool {
	if len(ledger) == 0 {
		if cfg.GenesisBootstrap {
			cfg.logger().Warn("core: empty ledger, last-tx check passed (GenesisBootstrap enabled)")
			return true
		}
		// Spec §9 calls the empty-ledger pass "the genesis-bootstrap escape
		// hatch" and requires it be gated behind an explicit flag in
		// production; outside that flag, an empty ledger cannot vouch for
		// any last-tx claim, so only a genesis transaction (no last-tx)
		// passes.
		return tx.LastTx.IsZero()
	}
	addr := ToAddress(tx.Owner)
	entry, ok := ledger[addr]
	if !ok {
		return false
	}
	return entry.LastTx == tx.LastTx
}

// ApplyTx returns a copy of ledger updated to reflect tx having been mined:
// the sender's last-tx pointer advances to tx.ID and its balance decreases
// by quantity+reward; the recipient's balance increases by quantity. Used
// by VerifyTxs to thread ledger state across a sequence (spec §4.4).
func ApplyTx(ledger WalletLedger, tx *Tx) WalletLedger {
	out := make(WalletLedger, len(ledger)+2)
	for k, v := range ledger {
		out[k] = v
	}

	senderAddr := ToAddress(tx.Owner)
	sender := out[senderAddr]
	sender.Address = senderAddr
	if sender.Balance == nil {
		sender.Balance = big.NewInt(0)
	}
	spent := new(big.Int).Add(quantityOrZero(tx.Quantity), quantityOrZero(tx.Reward))
	sender.Balance = new(big.Int).Sub(sender.Balance, spent)
	sender.LastTx = tx.ID
	out[senderAddr] = sender

	if !tx.Target.IsZero() {
		recipient := out[tx.Target]
		recipient.Address = tx.Target
		if recipient.Balance == nil {
			recipient.Balance = big.NewInt(0)
		}
		recipient.Balance = new(big.Int).Add(recipient.Balance, quantityOrZero(tx.Quantity))
		out[tx.Target] = recipient
	}
	return out
}

// VerifyTxs verifies a sequence of transactions in order, threading the
// ledger state through ApplyTx after each success (spec §4.4). It returns
// false as soon as any element fails to verify.
func VerifyTxs(txs []*Tx, diff uint64, ledger WalletLedger, cfg VerifierConfig) bool {
	cur := ledger
	for _, tx := range txs {
		if !Verify(tx, diff, cur, cfg) {
			return false
		}
		cur = ApplyTx(cur, tx)
	}
	return true
}
