package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPeerEndpointStringAndParseRoundTrip(t *testing.T) {
	p := PeerEndpoint{A: 192, B: 168, C: 1, D: 42, Port: 1984}
	require.Equal(t, "192.168.1.42:1984", p.String())

	parsed, err := ParsePeerEndpoint(p.String())
	require.NoError(t, err)
	require.Equal(t, p, parsed)
}

func TestParsePeerEndpointRejectsMalformedInput(t *testing.T) {
	_, err := ParsePeerEndpoint("not-a-peer")
	require.Error(t, err)
}

func TestAddressIsZero(t *testing.T) {
	var a Address
	require.True(t, a.IsZero())
	a[0] = 1
	require.False(t, a.IsZero())
}

func TestIDShortAndHex(t *testing.T) {
	id := ID{0xde, 0xad, 0xbe, 0xef}
	require.Equal(t, "0xdeadbeef00000000000000000000000000000000000000000000000000000000", id.Hex())
	require.Contains(t, id.Short(), "..")
}
