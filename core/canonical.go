package core

// canonical.go — the bit-exact signing/id input described in spec §4.1:
//
//	owner || target || data || ascii_decimal(quantity) || ascii_decimal(reward) || last_tx
//
// Every implementation of this subsystem must produce the same bytes for the
// same Tx, since this encoding is both the signing input and (via the
// signature) the id input.

// Canonical returns the deterministic signing/hashing input for tx.
func Canonical(tx *Tx) []byte {
	qty := quantityOrZero(tx.Quantity).String()
	reward := quantityOrZero(tx.Reward).String()

	n := len(tx.Owner) + len(tx.Target) + len(tx.Data) + len(qty) + len(reward) + len(tx.LastTx)
	out := make([]byte, 0, n)
	out = append(out, tx.Owner...)
	if !tx.Target.IsZero() {
		out = append(out, tx.Target[:]...)
	}
	out = append(out, tx.Data...)
	out = append(out, qty...)
	out = append(out, reward...)
	if !tx.LastTx.IsZero() {
		out = append(out, tx.LastTx[:]...)
	}
	return out
}
