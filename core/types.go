// Package core implements the weave transaction and gossip-bridge subsystem:
// canonical transaction encoding, RSA/SHA-256 signing and verification,
// per-byte pricing, a content firewall, and the Bridge actor that admits
// transactions and blocks from external peers and fans them out to the
// internal gossip mesh and remote HTTP peers.
package core

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/weavenet/bridge/pkg/utils"
)

// Field-size bounds from spec §3.
const (
	MaxOwnerBytes     = 512
	MaxTagBytes       = 2048
	MaxSignatureBytes = 512
	MaxQuantityDigits = 21
	MaxRewardDigits   = 21

	// IDSize is the length in bytes of a transaction id and an address.
	IDSize = 32
)

// Address is a 32-byte wallet address: SHA-256 of the owning public key.
type Address [IDSize]byte

// Hex returns the 0x-prefixed hex encoding of the address.
func (a Address) Hex() string { return hexutil.Encode(a[:]) }

// Short returns a shortened hex form suitable for log lines.
func (a Address) Short() string {
	full := hex.EncodeToString(a[:])
	if len(full) <= 8 {
		return full
	}
	return fmt.Sprintf("%s..%s", full[:4], full[len(full)-4:])
}

// IsZero reports whether the address is the all-zero value (pure-data tx target).
func (a Address) IsZero() bool { return a == Address{} }

// ID is a 32-byte transaction or block identifier.
type ID [IDSize]byte

// Hex returns the 0x-prefixed hex encoding of the id.
func (i ID) Hex() string { return hexutil.Encode(i[:]) }

// Short returns a shortened hex form suitable for log lines.
func (i ID) Short() string {
	full := hex.EncodeToString(i[:])
	if len(full) <= 8 {
		return full
	}
	return fmt.Sprintf("%s..%s", full[:4], full[len(full)-4:])
}

// IsZero reports whether the id is unset.
func (i ID) IsZero() bool { return i == ID{} }

// Tag is an ordered (name, value) byte-string pair attached to a Tx.
type Tag struct {
	Name  []byte
	Value []byte
}

// Tx is a weave transaction as described in spec §3.
type Tx struct {
	ID        ID
	LastTx    ID
	Owner     []byte // public key bytes
	Tags      []Tag
	Target    Address
	Quantity  *big.Int // non-negative; decimal representation must be <= MaxQuantityDigits
	Data      []byte
	Signature []byte
	Reward    *big.Int // non-negative; decimal representation must be <= MaxRewardDigits
}

// quantityOrZero lets callers construct a Tx with a nil Quantity or Reward
// field (meaning zero) without every call site needing to remember to
// allocate a big.Int.
func quantityOrZero(q *big.Int) *big.Int {
	if q == nil {
		return big.NewInt(0)
	}
	return q
}

// TagBytes returns the flattened concatenation of all tag names and values,
// used only for the size-limit check (spec §9: not a semantic key — two
// different tag lists may flatten to the same byte length).
func (tx *Tx) TagBytes() []byte {
	var n int
	for _, t := range tx.Tags {
		n += len(t.Name) + len(t.Value)
	}
	out := make([]byte, 0, n)
	for _, t := range tx.Tags {
		out = append(out, t.Name...)
		out = append(out, t.Value...)
	}
	return out
}

// newUnsignedTx allocates a Tx carrying a freshly drawn 32-byte id (spec §3:
// "For unsigned transactions, freshly drawn 32 random bytes"). The id is
// later overwritten by Sign, which rebinds it to the signature hash.
func newUnsignedTx() (*Tx, error) {
	id, err := utils.RandomID()
	if err != nil {
		return nil, fmt.Errorf("core: new tx: %w", err)
	}
	return &Tx{
		ID:       ID(id),
		Quantity: big.NewInt(0),
		Reward:   big.NewInt(0),
	}, nil
}

// NewTx builds an empty, unsigned transaction carrying only a fresh random
// id (spec §4.3 construction variant: no-arg).
func NewTx() (*Tx, error) {
	return newUnsignedTx()
}

// NewTxWithData builds an unsigned, data-only transaction (spec §4.3
// construction variant: with data).
func NewTxWithData(data []byte) (*Tx, error) {
	tx, err := newUnsignedTx()
	if err != nil {
		return nil, err
	}
	tx.Data = data
	return tx, nil
}

// NewTxWithReward builds an unsigned transaction carrying data and a reward
// (spec §4.3 construction variant: with data, reward).
func NewTxWithReward(data []byte, reward *big.Int) (*Tx, error) {
	tx, err := NewTxWithData(data)
	if err != nil {
		return nil, err
	}
	tx.Reward = quantityOrZero(reward)
	return tx, nil
}

// NewTxWithLastTx builds an unsigned transaction carrying data, a reward, and
// a reference to the sender's previous transaction (spec §4.3 construction
// variant: with data, reward, last_tx).
func NewTxWithLastTx(data []byte, reward *big.Int, lastTx ID) (*Tx, error) {
	tx, err := NewTxWithReward(data, reward)
	if err != nil {
		return nil, err
	}
	tx.LastTx = lastTx
	return tx, nil
}

// NewTxToDestination builds an unsigned value transfer: data, a reward, a
// quantity, a reference to the sender's previous transaction, and a target
// address (spec §4.3 construction variant: with destination, reward,
// quantity, last_tx). destination may be either a full RSA public key or an
// already-derived 32-byte address; it is normalized via normalizeDestination.
func NewTxToDestination(destination []byte, reward, quantity *big.Int, lastTx ID, data []byte) (*Tx, error) {
	tx, err := NewTxWithLastTx(data, reward, lastTx)
	if err != nil {
		return nil, err
	}
	tx.Target = normalizeDestination(destination)
	tx.Quantity = quantityOrZero(quantity)
	return tx, nil
}

// normalizeDestination implements spec §4.3's destination normalization: a
// caller-supplied destination may already be a 32-byte address, or may be a
// full public key that must be hashed down to one via ToAddress.
func normalizeDestination(destination []byte) Address {
	if len(destination) == IDSize {
		var addr Address
		copy(addr[:], destination)
		return addr
	}
	return ToAddress(destination)
}

// WalletLedgerEntry is a single ledger record: an address, its balance, and
// the id of its most recent transaction.
type WalletLedgerEntry struct {
	Address Address
	Balance *big.Int
	LastTx  ID
}

// WalletLedger is the set of ledger entries, indexed by address.
type WalletLedger map[Address]WalletLedgerEntry

// PeerEndpoint is an IPv4 quad plus port, per spec §6.
type PeerEndpoint struct {
	A, B, C, D uint8
	Port       uint16
}

// String renders the endpoint as "a.b.c.d:port".
func (p PeerEndpoint) String() string {
	return fmt.Sprintf("%d.%d.%d.%d:%d", p.A, p.B, p.C, p.D, p.Port)
}

// ParsePeerEndpoint parses a "a.b.c.d:port" string as produced by String.
func ParsePeerEndpoint(s string) (PeerEndpoint, error) {
	var p PeerEndpoint
	var port uint16
	n, err := fmt.Sscanf(s, "%d.%d.%d.%d:%d", &p.A, &p.B, &p.C, &p.D, &port)
	if err != nil || n != 5 {
		return PeerEndpoint{}, fmt.Errorf("core: invalid peer endpoint %q", s)
	}
	p.Port = port
	return p, nil
}

// RecallBlock is an opaque, previously mined block referenced alongside a
// new block for storage-proof purposes. The bridge carries it without
// interpreting its contents (spec §4.9, Glossary).
type RecallBlock struct {
	IndepHash ID
	Payload   []byte
}

// BlockPayload tags the two sentinel values the bridge must treat as
// already-processed (spec §4.6 step 2).
type BlockPayload int

const (
	BlockPayloadNormal BlockPayload = iota
	BlockPayloadNotFound
	BlockPayloadUnavailable
)

// Block is the subset of block data the bridge needs to deduplicate and
// forward; full block validation is out of scope (spec §1).
type Block struct {
	IndepHash ID
	Payload   BlockPayload
	Data      []byte
}
