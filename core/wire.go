package core

// wire.go — Wire Adapters, spec §4.9/§6: outbound send_new_tx/send_new_block/
// add_peer operations toward a single external HTTP peer. Grounded on the
// teacher's Storage struct (common_structs.go), which likewise wraps a
// *http.Client with a fixed timeout for outbound calls, and its Dialer in
// network.go.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// NetTimeout is the fixed network timeout for outbound peer calls (spec §6: NET_TIMEOUT = 10_000 ms).
const NetTimeout = 10 * time.Second

// HTTPWireClient implements WireClient over plain JSON-over-HTTP calls to a
// peer's weave HTTP API. Framing of the external HTTP protocol itself is out
// of scope (spec §1); this client assumes simple POST endpoints.
type HTTPWireClient struct {
	client *http.Client
	logger *logrus.Logger
}

// NewHTTPWireClient builds a wire client with the spec-mandated 10s timeout.
func NewHTTPWireClient(logger *logrus.Logger) *HTTPWireClient {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &HTTPWireClient{
		client: &http.Client{Timeout: NetTimeout},
		logger: logger,
	}
}

type sendBlockBody struct {
	Port   uint16       `json:"port"`
	Block  *Block       `json:"block"`
	Recall *RecallBlock `json:"recall,omitempty"`
}

// SendNewTx implements WireClient.SendNewTx.
func (c *HTTPWireClient) SendNewTx(ctx context.Context, peer PeerEndpoint, tx *Tx) error {
	return c.postJSON(ctx, peer, "/tx", tx)
}

// SendNewBlock implements WireClient.SendNewBlock, conveying the local
// listening port and recall block alongside the block itself (spec §4.6
// step 5).
func (c *HTTPWireClient) SendNewBlock(ctx context.Context, peer PeerEndpoint, localPort uint16, block *Block, recall *RecallBlock) error {
	body := sendBlockBody{Port: localPort, Block: block, Recall: recall}
	return c.postJSON(ctx, peer, "/block", body)
}

// AddPeer implements WireClient.AddPeer.
func (c *HTTPWireClient) AddPeer(ctx context.Context, peer PeerEndpoint) error {
	return c.postJSON(ctx, peer, "/peers", nil)
}

func (c *HTTPWireClient) postJSON(ctx context.Context, peer PeerEndpoint, path string, payload any) error {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return fmt.Errorf("wire: encode: %w", err)
		}
	}
	url := fmt.Sprintf("http://%s%s", peer.String(), path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("wire: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// Peer-unreachable / I/O errors are swallowed by the caller's
		// spawned fan-out task (spec §7); the wire adapter itself just
		// reports the error so the caller can log and move on.
		return fmt.Errorf("wire: request to %s: %w", peer, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("wire: %s responded %d", peer, resp.StatusCode)
	}
	return nil
}
