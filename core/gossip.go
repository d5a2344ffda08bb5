package core

// gossip.go — the Gossip Mesh Adapter, spec §4.6/§6 gossip.init/add_peers/
// send/recv. Grounded on the teacher's NewNode/Broadcast/Subscribe in
// network.go and PeerManagement.Subscribe in peer_management.go: a libp2p
// host joined to a single pubsub topic, with an internal-peer set guarded by
// its own lock exactly as the teacher's Node.peerLock guards Node.peers.

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	libp2pPeer "github.com/libp2p/go-libp2p/core/peer"
	"github.com/sirupsen/logrus"
)

// GossipTopic is the single pubsub topic the weave's internal mesh uses to
// distribute admitted transactions and blocks.
const GossipTopic = "weave/admitted"

// wireEnvelope is the JSON form an item takes on the gossip wire.
type wireEnvelope struct {
	Kind ItemKind `json:"kind"`
	Tx   *Tx      `json:"tx,omitempty"`
	Blk  *Block   `json:"block,omitempty"`
}

// LibP2PMesh implements GossipMesh over a libp2p pubsub topic.
type LibP2PMesh struct {
	host   host.Host
	pubsub *pubsub.PubSub
	topic  *pubsub.Topic
	sub    *pubsub.Subscription

	mu    sync.RWMutex
	peers map[string]struct{}

	logger *logrus.Logger
}

// NewLibP2PMesh bootstraps a libp2p host, joins GossipTopic, and returns a
// mesh adapter ready for use by the Bridge actor (spec §6: gossip.init).
func NewLibP2PMesh(ctx context.Context, listenAddr string, logger *logrus.Logger) (*LibP2PMesh, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	h, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		return nil, fmt.Errorf("gossip: create host: %w", err)
	}
	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("gossip: create pubsub: %w", err)
	}
	topic, err := ps.Join(GossipTopic)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("gossip: join topic: %w", err)
	}
	sub, err := topic.Subscribe()
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("gossip: subscribe: %w", err)
	}
	return &LibP2PMesh{
		host:   h,
		pubsub: ps,
		topic:  topic,
		sub:    sub,
		peers:  make(map[string]struct{}),
		logger: logger,
	}, nil
}

// AddPeer implements GossipMesh.AddPeer (spec §6: gossip.add_peers).
func (m *LibP2PMesh) AddPeer(ctx context.Context, peerID string) error {
	pi, err := libp2pPeer.AddrInfoFromString(peerID)
	if err != nil {
		return fmt.Errorf("gossip: invalid peer address: %w", err)
	}
	if err := m.host.Connect(ctx, *pi); err != nil {
		return fmt.Errorf("gossip: connect: %w", err)
	}
	m.mu.Lock()
	m.peers[pi.ID.String()] = struct{}{}
	m.mu.Unlock()
	return nil
}

// Send implements GossipMesh.Send (spec §6: gossip.send). It publishes item
// to the mesh topic as a JSON envelope and reports any error.
func (m *LibP2PMesh) Send(ctx context.Context, item GossipItem) error {
	env, err := encodeEnvelope(item)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("gossip: marshal: %w", err)
	}
	if err := m.topic.Publish(ctx, data); err != nil {
		return fmt.Errorf("gossip: publish: %w", err)
	}
	return nil
}

// Recv implements GossipMesh.Recv (spec §6: gossip.recv). It decodes a raw
// pubsub payload into a GossipItem, or reports ok=false for an envelope of
// unknown kind. Messages this node published itself are not filtered here.
func (m *LibP2PMesh) Recv(ctx context.Context, raw []byte) (GossipItem, bool, error) {
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, fmt.Errorf("gossip: decode: %w", err)
	}
	switch env.Kind {
	case KindTx:
		if env.Tx == nil {
			return nil, false, fmt.Errorf("gossip: tx envelope missing payload")
		}
		return env.Tx, true, nil
	case KindBlock:
		if env.Blk == nil {
			return nil, false, fmt.Errorf("gossip: block envelope missing payload")
		}
		return env.Blk, true, nil
	default:
		return nil, false, nil
	}
}

// Messages returns a channel of raw pubsub payloads for the Bridge to pump
// through Recv, mirroring the teacher's Node.Subscribe output channel.
func (m *LibP2PMesh) Messages(ctx context.Context) <-chan []byte {
	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			msg, err := m.sub.Next(ctx)
			if err != nil {
				m.logger.WithError(err).Debug("gossip: subscription closed")
				return
			}
			select {
			case out <- msg.Data:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Close tears down the host and its subscription.
func (m *LibP2PMesh) Close() error {
	m.sub.Cancel()
	return m.host.Close()
}

func encodeEnvelope(item GossipItem) (wireEnvelope, error) {
	switch v := item.(type) {
	case *Tx:
		return wireEnvelope{Kind: KindTx, Tx: v}, nil
	case *Block:
		return wireEnvelope{Kind: KindBlock, Blk: v}, nil
	default:
		return wireEnvelope{}, fmt.Errorf("gossip: unsupported item type %T", item)
	}
}
