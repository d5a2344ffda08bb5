package core

// interfaces.go — the external collaborator contracts from spec §6, kept as
// Go interfaces so the Bridge actor never depends on a concrete transport.

import "context"

// GossipItem is whatever the bridge hands to the gossip mesh: a *Tx or
// *Block. The mesh treats it opaquely except for deduplication purposes,
// which the bridge itself handles via DedupID.
type GossipItem interface {
	DedupID() ID
}

// DedupID implements GossipItem for *Tx: the id is tx.ID (spec §4.6).
func (tx *Tx) DedupID() ID { return tx.ID }

// DedupID implements GossipItem for *Block: the id is block.IndepHash (spec §4.6).
func (b *Block) DedupID() ID { return b.IndepHash }

// IsSentinel reports whether a block carries a not_found/unavailable
// sentinel payload, which the bridge treats as already-processed (spec
// §4.6 step 2).
func (b *Block) IsSentinel() bool {
	return b.Payload == BlockPayloadNotFound || b.Payload == BlockPayloadUnavailable
}

// GossipMesh is the internal gossip-mesh adapter contract (spec §6:
// gossip.init/add_peers/send/recv). Implementations own their own state;
// the Bridge only ever calls through this interface.
type GossipMesh interface {
	// AddPeer registers a local (internal) gossip peer.
	AddPeer(ctx context.Context, peerID string) error
	// Send distributes an item internally. It reports only an error; the
	// outbound message it broadcast is not returned.
	Send(ctx context.Context, item GossipItem) error
	// Recv decodes a raw inbound gossip payload into an item (spec §6's
	// gossip.recv contract). ok=false means the mesh ignores the message.
	// The Bridge calls it for every payload delivered via InboundGossip.
	Recv(ctx context.Context, raw []byte) (GossipItem, bool, error)
}

// WireClient is the Wire Adapters contract (spec §4.9/§6): outbound HTTP
// operations toward a single external peer.
type WireClient interface {
	SendNewTx(ctx context.Context, peer PeerEndpoint, tx *Tx) error
	SendNewBlock(ctx context.Context, peer PeerEndpoint, localPort uint16, block *Block, recall *RecallBlock) error
	AddPeer(ctx context.Context, peer PeerEndpoint) error
}

// PeerManagerSource is the peer_manager.update collaborator (spec §4.7/§6):
// given the existing peer set, it returns a refreshed one.
type PeerManagerSource interface {
	Update(ctx context.Context, existing []PeerEndpoint) ([]PeerEndpoint, error)
}

// Wallet is the wallet.* collaborator contract (spec §6), letting callers
// depend on a signing interface rather than a concrete RSA keystore.
// Signature verification is not part of it; see VerifySignature.
type Wallet interface {
	Address() Address
	Sign(tx *Tx) error
}
