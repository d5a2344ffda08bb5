package core

// bridge.go — the Bridge Actor, spec §4.6/§5/§9: a single-threaded
// message loop holding peer sets, a bounded seen-id set, and a reference to
// the gossip mesh, routing admitted items to the mesh and to external wire
// peers. Grounded on the teacher's single-owner-state discipline (Node's
// peerLock-guarded peers map, PeerManagement wrapping it) but translated
// into an explicit mailbox, per spec §5's "single-threaded cooperative per
// actor" model and §9's "no cycles in the ownership graph" note — the
// teacher instead guards shared fields with mutexes accessed from multiple
// goroutines, which this component deliberately departs from.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// Bridge timing constants (spec §6).
const (
	IgnorePeersTime  = 5 * time.Minute
	GetMorePeersTime = 2 * time.Minute
)

// DefaultProcessedCapacity bounds the seen-id LRU (spec §9 open question).
const DefaultProcessedCapacity = 1_000_000

// messages the Bridge mailbox accepts (spec §4.6).
type (
	msgIgnorePeer struct{ peer PeerEndpoint }
	msgUnignorePeer struct{ peer PeerEndpoint }
	msgIgnoreID     struct{ id ID }
	msgAddTx        struct{ tx *Tx }
	msgAddBlock     struct {
		origin PeerEndpoint
		block  *Block
		recall *RecallBlock
	}
	msgAddPeerRemote struct{ peer PeerEndpoint }
	msgAddPeerLocal  struct{ peerID string }
	msgGetPeersRemote struct{ reply chan []PeerEndpoint }
	msgUpdatePeersRemote struct{ peers []PeerEndpoint }
	msgInboundGossip     struct{ raw []byte }
	msgGetMorePeers      struct{}
)

// BridgeConfig wires the Bridge's external collaborators (spec §6).
type BridgeConfig struct {
	Mesh         GossipMesh
	Wire         WireClient
	Firewall     *FirewallScanner
	PeerSource   PeerManagerSource
	LocalPort    uint16
	ProcessedCap int
	Clock        clock.Clock
	Logger       *logrus.Logger
	// MailboxDepth is the buffered channel depth; 0 selects a sane default.
	MailboxDepth int
}

// Bridge implements the actor described in spec §4.6. All of its state
// (external_peers, processed, ignored_peers, the gossip reference) is
// mutated only by the single goroutine running Run; every other method
// merely enqueues a message.
type Bridge struct {
	cfg BridgeConfig

	mailbox chan any
	logger  *logrus.Logger
	clk     clock.Clock

	// actor-owned state; touched only inside dispatch().
	externalPeers []PeerEndpoint
	ignoredPeers  map[PeerEndpoint]struct{}
	processed     *lru.Cache[string, struct{}]
	processedPeer *lru.Cache[string, struct{}]

	wg sync.WaitGroup
}

// NewBridge constructs a Bridge actor. Call Run to start its mailbox loop.
func NewBridge(cfg BridgeConfig) (*Bridge, error) {
	if cfg.ProcessedCap <= 0 {
		cfg.ProcessedCap = DefaultProcessedCapacity
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	depth := cfg.MailboxDepth
	if depth <= 0 {
		depth = 1024
	}

	logger := cfg.Logger
	onEvict := func(_ string, _ struct{}) {
		logger.Debug("bridge: evicted oldest entry from dedup set")
	}
	processed, err := lru.NewWithEvict[string, struct{}](cfg.ProcessedCap, onEvict)
	if err != nil {
		return nil, fmt.Errorf("bridge: new processed lru: %w", err)
	}
	processedPeer, err := lru.NewWithEvict[string, struct{}](cfg.ProcessedCap, onEvict)
	if err != nil {
		return nil, fmt.Errorf("bridge: new processed-peer lru: %w", err)
	}

	return &Bridge{
		cfg:           cfg,
		mailbox:       make(chan any, depth),
		logger:        cfg.Logger,
		clk:           cfg.Clock,
		ignoredPeers:  make(map[PeerEndpoint]struct{}),
		processed:     processed,
		processedPeer: processedPeer,
	}, nil
}

// Run starts the mailbox loop. It blocks until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-b.mailbox:
			b.dispatch(ctx, m)
		}
	}
}

// dispatch handles one message with panic isolation (spec §4.6 "Failure
// isolation": any exception must be caught, logged, and must not terminate
// the actor).
func (b *Bridge) dispatch(ctx context.Context, m any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithField("panic", r).Error("bridge: recovered from panic handling message")
		}
	}()

	switch msg := m.(type) {
	case msgIgnorePeer:
		b.ignoredPeers[msg.peer] = struct{}{}
		b.scheduleUnignore(ctx, msg.peer)
	case msgUnignorePeer:
		delete(b.ignoredPeers, msg.peer)
	case msgIgnoreID:
		b.processed.Add(idKey(msg.id), struct{}{})
	case msgAddTx:
		b.maybeAdmit(ctx, msg.tx, nil)
	case msgAddBlock:
		if _, ignored := b.ignoredPeers[msg.origin]; ignored {
			return
		}
		b.maybeAdmit(ctx, msg.block, msg.recall)
	case msgAddPeerRemote:
		b.externalPeers = append([]PeerEndpoint{msg.peer}, b.externalPeers...)
	case msgAddPeerLocal:
		if err := b.cfg.Mesh.AddPeer(ctx, msg.peerID); err != nil {
			b.logger.WithError(err).Warn("bridge: add local peer failed")
		}
	case msgGetPeersRemote:
		cp := make([]PeerEndpoint, len(b.externalPeers))
		copy(cp, b.externalPeers)
		msg.reply <- cp
	case msgUpdatePeersRemote:
		b.externalPeers = msg.peers
	case msgInboundGossip:
		b.handleInboundGossip(ctx, msg.raw)
	case msgGetMorePeers:
		b.spawnPeerRefresh(ctx)
	default:
		b.logger.Warnf("bridge: unknown message type %T", m)
	}
}

// idKey turns an ID into the LRU's string key.
func idKey(id ID) string { return string(id[:]) }

// idPeerKey turns an (id, peer) pair into the per-peer dedup LRU's key.
func idPeerKey(id ID, peer PeerEndpoint) string {
	return string(id[:]) + "|" + peer.String()
}

// alreadyProcessed implements spec §4.6's dedup semantics: membership by
// bare id, or by (id, peer) when a peer is supplied.
func (b *Bridge) alreadyProcessed(id ID, peer *PeerEndpoint) bool {
	if _, ok := b.processed.Get(idKey(id)); ok {
		return true
	}
	if peer != nil {
		if _, ok := b.processedPeer.Get(idPeerKey(id, *peer)); ok {
			return true
		}
	}
	return false
}

// maybeAdmit implements the admission procedure of spec §4.6. recall is the
// recall block accompanying a block admission (spec §4.6 step 5); it is nil
// for transactions and for items arriving over internal gossip.
func (b *Bridge) maybeAdmit(ctx context.Context, item GossipItem, recall *RecallBlock) {
	id := item.DedupID()

	// 1. Already processed?
	if b.alreadyProcessed(id, nil) {
		return
	}

	// 2. Sentinel block payloads are treated as already processed.
	if blk, ok := item.(*Block); ok && blk.IsSentinel() {
		b.processed.Add(idKey(id), struct{}{})
		return
	}

	// 3. Firewall.
	kind, data := scanTarget(item)
	pass, err := b.cfg.Firewall.Scan(ctx, kind, data)
	if err != nil {
		b.logger.WithError(err).Warn("bridge: firewall scan failed, dropping")
		return
	}
	if !pass {
		b.logger.Debug("bridge: firewall rejected item")
		return
	}

	// 4. Hand to the gossip mesh for internal distribution.
	if err := b.cfg.Mesh.Send(ctx, item); err != nil {
		b.logger.WithError(err).Warn("bridge: gossip send failed")
		return
	}

	// 5. Fan out externally to every peer not already credited with this id.
	b.fanOut(ctx, id, item, recall)

	// 6. Mark seen.
	b.processed.Add(idKey(id), struct{}{})
}

func scanTarget(item GossipItem) (ItemKind, []byte) {
	switch v := item.(type) {
	case *Tx:
		return KindTx, v.Data
	case *Block:
		return KindBlock, v.Data
	default:
		return ItemKind(-1), nil
	}
}

// fanOut sends item to every external peer not yet credited with id,
// spawning a short-lived task per spec §5 so the mailbox stays responsive,
// and records each send in processedPeer for at-most-once delivery. recall
// accompanies block items per spec §4.6 step 5 and is nil for transactions.
func (b *Bridge) fanOut(ctx context.Context, id ID, item GossipItem, recall *RecallBlock) {
	peers := make([]PeerEndpoint, 0, len(b.externalPeers))
	for _, p := range b.externalPeers {
		if !b.alreadyProcessed(id, &p) {
			peers = append(peers, p)
			b.processedPeer.Add(idPeerKey(id, p), struct{}{})
		}
	}
	if len(peers) == 0 {
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for _, p := range peers {
			if err := b.sendTo(ctx, p, item, recall); err != nil {
				// Peer-unreachable / wire I/O errors are swallowed here
				// (spec §7): they must not affect the Bridge actor.
				b.logger.WithError(err).WithField("peer", p.String()).Debug("bridge: wire send failed")
			}
		}
	}()
}

func (b *Bridge) sendTo(ctx context.Context, peer PeerEndpoint, item GossipItem, recall *RecallBlock) error {
	switch v := item.(type) {
	case *Tx:
		return b.cfg.Wire.SendNewTx(ctx, peer, v)
	case *Block:
		return b.cfg.Wire.SendNewBlock(ctx, peer, b.cfg.LocalPort, v, recall)
	default:
		return fmt.Errorf("bridge: unsupported fan-out item %T", item)
	}
}

// handleInboundGossip implements the bridge's forwarding of internal-peer
// gossip messages (spec §4.6: "forward through gossip-recv; if not ignored
// by the mesh, fan out externally and update processed").
func (b *Bridge) handleInboundGossip(ctx context.Context, raw []byte) {
	item, ok, err := b.cfg.Mesh.Recv(ctx, raw)
	if err != nil {
		b.logger.WithError(err).Warn("bridge: malformed gossip message, dropping")
		return
	}
	if !ok {
		return
	}
	id := item.DedupID()
	if b.alreadyProcessed(id, nil) {
		return
	}
	// Internal gossip envelopes carry no recall block; only the direct
	// add_block wire path does (spec §4.6 step 5).
	b.fanOut(ctx, id, item, nil)
	b.processed.Add(idKey(id), struct{}{})
}

// scheduleUnignore arms the 5-minute ignore-peer expiry timer (spec §4.6/§6:
// IGNORE_PEERS_TIME). It uses the actor's clock so tests can fast-forward.
func (b *Bridge) scheduleUnignore(ctx context.Context, peer PeerEndpoint) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		t := b.clk.Timer(IgnorePeersTime)
		defer t.Stop()
		select {
		case <-t.C:
			b.UnignorePeer(peer)
		case <-ctx.Done():
		}
	}()
}

// spawnPeerRefresh runs a background peer-universe scan so the mailbox
// remains responsive (spec §5), then reschedules itself after
// GetMorePeersTime (spec §4.6 "get_more_peers"). Newly discovered peers are
// announced via WireClient.AddPeer (spec §4.7).
func (b *Bridge) spawnPeerRefresh(ctx context.Context) {
	if b.cfg.PeerSource == nil {
		return
	}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		existing, _ := b.GetExternalPeers(ctx)
		refreshed, err := b.cfg.PeerSource.Update(ctx, existing)
		if err != nil {
			b.logger.WithError(err).Warn("bridge: peer refresh failed")
		} else {
			b.UpdateExternalPeers(refreshed)
			b.announceNewPeers(ctx, existing, refreshed)
		}

		t := b.clk.Timer(GetMorePeersTime)
		defer t.Stop()
		select {
		case <-t.C:
			b.enqueue(msgGetMorePeers{})
		case <-ctx.Done():
		}
	}()
}

// announceNewPeers calls WireClient.AddPeer (core/wire.go, spec §4.7) for
// every peer present in refreshed but absent from existing; the HTTP wire
// client posts to that peer's own /peers endpoint, not to the LocalAPI. Errors are logged and swallowed (spec §7): a
// notification failure must not affect the Bridge actor.
func (b *Bridge) announceNewPeers(ctx context.Context, existing, refreshed []PeerEndpoint) {
	if b.cfg.Wire == nil {
		return
	}
	known := make(map[PeerEndpoint]struct{}, len(existing))
	for _, p := range existing {
		known[p] = struct{}{}
	}
	for _, p := range refreshed {
		if _, ok := known[p]; ok {
			continue
		}
		if err := b.cfg.Wire.AddPeer(ctx, p); err != nil {
			b.logger.WithError(err).WithField("peer", p.String()).Debug("bridge: add_peer notification failed")
		}
	}
}

func (b *Bridge) enqueue(m any) {
	b.mailbox <- m
}

// --- public API: every call below only enqueues a message. ---

func (b *Bridge) IgnorePeer(peer PeerEndpoint)   { b.enqueue(msgIgnorePeer{peer}) }
func (b *Bridge) UnignorePeer(peer PeerEndpoint) { b.enqueue(msgUnignorePeer{peer}) }
func (b *Bridge) IgnoreID(id ID)                 { b.enqueue(msgIgnoreID{id}) }
func (b *Bridge) AddTx(tx *Tx)                   { b.enqueue(msgAddTx{tx}) }
func (b *Bridge) AddBlock(origin PeerEndpoint, block *Block, recall *RecallBlock) {
	b.enqueue(msgAddBlock{origin, block, recall})
}
func (b *Bridge) AddRemotePeer(peer PeerEndpoint) { b.enqueue(msgAddPeerRemote{peer}) }
func (b *Bridge) AddLocalPeer(peerID string)      { b.enqueue(msgAddPeerLocal{peerID}) }
func (b *Bridge) UpdateExternalPeers(peers []PeerEndpoint) {
	b.enqueue(msgUpdatePeersRemote{peers})
}
func (b *Bridge) InboundGossip(raw []byte) { b.enqueue(msgInboundGossip{raw}) }
func (b *Bridge) KickPeerRefresh()         { b.enqueue(msgGetMorePeers{}) }

// GetExternalPeers implements the request/reply form of {get_peers, remote,
// Reply} (spec §4.6): it blocks until the actor answers.
func (b *Bridge) GetExternalPeers(ctx context.Context) ([]PeerEndpoint, error) {
	reply := make(chan []PeerEndpoint, 1)
	select {
	case b.mailbox <- msgGetPeersRemote{reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case peers := <-reply:
		return peers, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Wait blocks until all spawned background fan-out/refresh tasks finish.
// Intended for tests and graceful shutdown.
func (b *Bridge) Wait() { b.wg.Wait() }
