package protocol

import (
	"encoding/hex"
	"testing"

	"github.com/encodeous/ripsim/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	own  = state.MustParseIP("192.168.0.1")
	dstB = state.MustParseIP("192.168.0.2")
	dstC = state.MustParseIP("192.168.0.3")
)

func TestEncodeRequestLayout(t *testing.T) {
	buf := EncodeRequest(own)
	assert.Equal(t,
		"01010000"+"00000000"+"c0a80001"+"00000000"+"00000000"+"00000010",
		hex.EncodeToString(buf))
}

func TestEncodeResponseLayout(t *testing.T) {
	buf := EncodeResponse(own, []state.RouteEntry{
		{Destination: dstB, Gateway: own, Cost: 0},
		{Destination: dstC, Gateway: dstB, Cost: 1},
	})
	require.Len(t, buf, HeaderSize+2*EntrySize)
	assert.Equal(t,
		"02010000"+"00020000"+"c0a80001"+"00000000"+"00000000"+"00000000"+
			"00020000"+"c0a80002"+"00000000"+"00000000"+"00000000"+
			"00020000"+"c0a80003"+"00000000"+"00000000"+"00000001",
		hex.EncodeToString(buf))
}

func TestEncodeResponseEmpty(t *testing.T) {
	buf := EncodeResponse(own, nil)
	require.Len(t, buf, HeaderSize)
	pkt, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, CommandResponse, pkt.Command)
	assert.Empty(t, pkt.Entries)
}

func TestEncodeResponseClampsCost(t *testing.T) {
	buf := EncodeResponse(own, []state.RouteEntry{{Destination: dstB, Cost: 40}})
	pkt, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, state.INF, pkt.Entries[0].Cost)
}

func TestDecodeRequest(t *testing.T) {
	pkt, err := Decode(EncodeRequest(own))
	require.NoError(t, err)
	assert.Equal(t, Packet{Command: CommandRequest, Version: Version, Sender: own}, pkt)
}

func TestDecodeResponse(t *testing.T) {
	entries := []state.RouteEntry{
		{Destination: dstB, Gateway: own, Cost: 0},
		{Destination: dstC, Gateway: dstB, Cost: 15},
		{Destination: state.MustParseIP("10.1.2.3"), Gateway: dstB, Cost: state.INF},
	}
	pkt, err := Decode(EncodeResponse(own, entries))
	require.NoError(t, err)

	// gateways are not on the wire; decoded entries point at the sender
	want := Packet{
		Command: CommandResponse,
		Version: Version,
		Sender:  own,
		Entries: []state.RouteEntry{
			{Destination: dstB, Gateway: own, Cost: 0},
			{Destination: dstC, Gateway: own, Cost: 15},
			{Destination: state.MustParseIP("10.1.2.3"), Gateway: own, Cost: state.INF},
		},
	}
	if diff := cmp.Diff(want, pkt); diff != "" {
		t.Errorf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeTableResponse(t *testing.T) {
	tbl := state.NewRouteTable(0, 0)
	defer tbl.Close()
	tbl.Add(state.RouteEntry{Destination: dstB, Gateway: own, Cost: 0})
	tbl.Add(state.RouteEntry{Destination: dstC, Gateway: dstB, Cost: 1})

	assert.Equal(t, EncodeResponse(own, tbl.Snapshot()), EncodeTableResponse(own, tbl))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrShortPacket)
	_, err = Decode(make([]byte, HeaderSize-1))
	assert.ErrorIs(t, err, ErrShortPacket)

	buf := EncodeResponse(own, []state.RouteEntry{{Destination: dstB, Cost: 1}})
	_, err = Decode(buf[:len(buf)-1])
	assert.ErrorIs(t, err, ErrTruncated)

	buf = EncodeRequest(own)
	buf[0] = 7
	_, err = Decode(buf)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "REQUEST", CommandRequest.String())
	assert.Equal(t, "RESPONSE", CommandResponse.String())
	assert.Equal(t, "Command(9)", Command(9).String())
}
