package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeEnvelopeTx(t *testing.T) {
	tx := &Tx{ID: ID{1, 2, 3}}
	env, err := encodeEnvelope(tx)
	require.NoError(t, err)
	require.Equal(t, KindTx, env.Kind)
	require.Same(t, tx, env.Tx)
}

func TestEncodeEnvelopeBlock(t *testing.T) {
	blk := &Block{IndepHash: ID{4, 5, 6}}
	env, err := encodeEnvelope(blk)
	require.NoError(t, err)
	require.Equal(t, KindBlock, env.Kind)
	require.Same(t, blk, env.Blk)
}

func TestEncodeEnvelopeRejectsUnknownType(t *testing.T) {
	_, err := encodeEnvelope(&unknownGossipItem{})
	require.Error(t, err)
}

type unknownGossipItem struct{}

func (u *unknownGossipItem) DedupID() ID { return ID{} }

func TestWireEnvelopeJSONRoundTrip(t *testing.T) {
	tx := &Tx{ID: ID{7, 8, 9}, Data: []byte("payload")}
	env := wireEnvelope{Kind: KindTx, Tx: tx}

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded wireEnvelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, KindTx, decoded.Kind)
	require.Equal(t, tx.ID, decoded.Tx.ID)
	require.Equal(t, tx.Data, decoded.Tx.Data)
}
