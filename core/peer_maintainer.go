package core

// peer_maintainer.go — the periodic remote peer-list refresh task, spec
// §4.7/§6 (get_more_peers / PeerManagerSource.update, ticking every
// GET_MORE_PEERS_TIME). Grounded on the teacher's PeerManagement.Subscribe
// polling loop in peer_management.go. The 2-minute interval is timed by the
// Bridge's own clock (BridgeConfig.Clock), which tests can replace with a
// mock rather than sleeping real wall time.

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// PeerMaintainer periodically asks a Bridge to refresh its remote peer list.
// It is a thin driver around Bridge.KickPeerRefresh: the actual refresh
// work (and the self-reschedule) happens inside the Bridge actor itself, so
// this component only needs to deliver the very first kick and then get out
// of the way — the Bridge's spawnPeerRefresh reschedules itself from then
// on. Kept as a separate type (rather than starting the timer inside
// NewBridge) so callers can control when peer discovery begins, e.g. after
// the local HTTP interface and wallet are both ready.
type PeerMaintainer struct {
	bridge *Bridge
	clk    clock.Clock
	logger *logrus.Logger
}

// NewPeerMaintainer constructs a maintainer bound to bridge. If clk is nil,
// the real wall clock is stored; the maintainer does not consult it, since
// refresh scheduling uses the Bridge's clock.
func NewPeerMaintainer(bridge *Bridge, clk clock.Clock, logger *logrus.Logger) *PeerMaintainer {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PeerMaintainer{bridge: bridge, clk: clk, logger: logger}
}

// Start triggers the first peer-list refresh and returns immediately; the
// Bridge actor reschedules subsequent refreshes every GetMorePeersTime on
// its own. Start is idempotent-ish in the sense that calling it twice just
// enqueues two initial kicks; callers should call it once per Bridge
// lifetime.
func (m *PeerMaintainer) Start(ctx context.Context) {
	m.logger.Debug("peer maintainer: starting periodic remote peer refresh")
	m.bridge.KickPeerRefresh()
}
