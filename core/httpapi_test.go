package core

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T) (*LocalAPI, *Bridge) {
	t.Helper()
	mesh := &fakeMesh{}
	wire := &fakeWire{}
	b := newTestBridge(t, mesh, wire, nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go b.Run(ctx)

	fw := NewFirewallScanner(ctx, []FirewallSignature{{Name: "rule-a", Pattern: []byte("bad")}}, nil)
	return NewLocalAPI(b, fw, nil), b
}

func TestLocalAPIGetPeersEmpty(t *testing.T) {
	api, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/peers", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp peerListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Peers)
}

func TestLocalAPIPostPeerRegistersWithBridge(t *testing.T) {
	api, b := newTestAPI(t)

	body, err := json.Marshal(addPeerRequest{A: 10, B: 0, C: 0, D: 2, Port: 1984})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/peers", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		peers, err := b.GetExternalPeers(context.Background())
		return err == nil && len(peers) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestLocalAPIFirewallRules(t *testing.T) {
	api, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/firewall/rules", nil)
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp firewallRulesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []string{"rule-a"}, resp.Rules)
}
