package core

// httpapi.go — the local HTTP interface (SPEC_FULL §4.7.1, a [NEW]
// supplement to spec.md's undefined "local interface" mention in §4.7).
// Grounded on the teacher's REST layer conventions (chi router, JSON
// responses, context-scoped handlers) wherever the pack exposes HTTP
// endpoints, adapted here to expose the Bridge's peer set and the
// firewall's loaded rule names for operator inspection and local
// peer-registration.

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// LocalAPI exposes the Bridge's peer set and the Firewall's rule names over
// a small local HTTP surface (SPEC_FULL §4.7.1).
type LocalAPI struct {
	bridge   *Bridge
	firewall *FirewallScanner
	logger   *logrus.Logger
	router   chi.Router
}

// NewLocalAPI builds the router. Call Handler to obtain an http.Handler, or
// ListenAndServe to run it directly.
func NewLocalAPI(bridge *Bridge, firewall *FirewallScanner, logger *logrus.Logger) *LocalAPI {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	api := &LocalAPI{bridge: bridge, firewall: firewall, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(NetTimeout))
	r.Get("/peers", api.handleGetPeers)
	r.Post("/peers", api.handlePostPeer)
	r.Get("/firewall/rules", api.handleFirewallRules)
	api.router = r

	return api
}

// Handler returns the underlying http.Handler for embedding in a server.
func (a *LocalAPI) Handler() http.Handler { return a.router }

// ListenAndServe runs the local interface on addr until ctx is cancelled.
func (a *LocalAPI) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: a.router}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

type peerListResponse struct {
	Peers []string `json:"peers"`
}

func (a *LocalAPI) handleGetPeers(w http.ResponseWriter, r *http.Request) {
	peers, err := a.bridge.GetExternalPeers(r.Context())
	if err != nil {
		a.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	out := make([]string, len(peers))
	for i, p := range peers {
		out[i] = p.String()
	}
	a.writeJSON(w, http.StatusOK, peerListResponse{Peers: out})
}

type addPeerRequest struct {
	A    uint8  `json:"a"`
	B    uint8  `json:"b"`
	C    uint8  `json:"c"`
	D    uint8  `json:"d"`
	Port uint16 `json:"port"`
}

func (a *LocalAPI) handlePostPeer(w http.ResponseWriter, r *http.Request) {
	var req addPeerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	peer := PeerEndpoint{A: req.A, B: req.B, C: req.C, D: req.D, Port: req.Port}
	a.bridge.AddRemotePeer(peer)
	w.WriteHeader(http.StatusAccepted)
}

type firewallRulesResponse struct {
	Rules []string `json:"rules"`
}

func (a *LocalAPI) handleFirewallRules(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, firewallRulesResponse{Rules: a.firewall.Rules()})
}

func (a *LocalAPI) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.WithError(err).Warn("httpapi: failed to encode response")
	}
}

func (a *LocalAPI) writeError(w http.ResponseWriter, status int, err error) {
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}
