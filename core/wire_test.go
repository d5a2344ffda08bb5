package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPWireClientSendNewTx(t *testing.T) {
	var received Tx
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	peer := parseTestPeer(t, srv)
	client := NewHTTPWireClient(nil)

	tx := &Tx{ID: ID{1, 2, 3}}
	require.NoError(t, client.SendNewTx(context.Background(), peer, tx))
	require.Equal(t, "/tx", gotPath)
	require.Equal(t, tx.ID, received.ID)
}

func TestHTTPWireClientSendNewBlockIncludesPort(t *testing.T) {
	var body sendBlockBody
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	peer := parseTestPeer(t, srv)
	client := NewHTTPWireClient(nil)

	blk := &Block{IndepHash: ID{9}}
	require.NoError(t, client.SendNewBlock(context.Background(), peer, 1984, blk, nil))
	require.EqualValues(t, 1984, body.Port)
	require.Equal(t, blk.IndepHash, body.Block.IndepHash)
}

func TestHTTPWireClientPropagatesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	peer := parseTestPeer(t, srv)
	client := NewHTTPWireClient(nil)
	err := client.SendNewTx(context.Background(), peer, &Tx{})
	require.Error(t, err)
}

// parseTestPeer extracts the loopback port from an httptest server URL into
// a PeerEndpoint, since httptest always binds 127.0.0.1.
func parseTestPeer(t *testing.T, srv *httptest.Server) PeerEndpoint {
	t.Helper()
	parsed, err := url.Parse(srv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)
	return PeerEndpoint{A: 127, B: 0, C: 0, D: 1, Port: uint16(port)}
}
