// Package protocol implements the RIPv1-style datagrams exchanged between routers.
//
// Every packet starts with a 24 byte header:
//
//	0      command (1 = request, 2 = response)
//	1      version (1)
//	2..3   reserved
//	4..5   address family (2 = IPv4, zero on requests)
//	6..7   reserved
//	8..11  sender IP
//	12..19 reserved
//	20..23 metric (16 on requests, zero on responses)
//
// A response is followed by one 20 byte block per route:
//
//	0..1   address family (2)
//	2..3   reserved
//	4..7   destination IP
//	8..15  reserved
//	16..19 metric
//
// All integers are big-endian.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/encodeous/ripsim/state"
)

type Command uint8

const (
	CommandRequest  Command = 1
	CommandResponse Command = 2
)

func (c Command) String() string {
	switch c {
	case CommandRequest:
		return "REQUEST"
	case CommandResponse:
		return "RESPONSE"
	default:
		return fmt.Sprintf("Command(%d)", uint8(c))
	}
}

const (
	Version    = 1
	AfInet     = 2
	HeaderSize = 24
	EntrySize  = 20

	offCommand  = 0
	offVersion  = 1
	offFamily   = 4
	offSender   = 8
	offMetric   = 20
	offEntryAf  = 0
	offEntryDst = 4
	offEntryMet = 16
)

var (
	ErrShortPacket    = errors.New("packet shorter than header")
	ErrTruncated      = errors.New("packet ends inside a route entry")
	ErrUnknownCommand = errors.New("unknown command")
)

// Packet is a decoded datagram. Entries carry the advertised cost as received,
// with Gateway set to Sender.
type Packet struct {
	Command Command
	Version uint8
	Sender  state.IP
	Entries []state.RouteEntry
}

func putHeader(buf []byte, cmd Command, own state.IP) {
	buf[offCommand] = byte(cmd)
	buf[offVersion] = Version
	binary.BigEndian.PutUint32(buf[offSender:], uint32(own))
}

// EncodeRequest builds a header-only request asking for the whole table.
func EncodeRequest(own state.IP) []byte {
	buf := make([]byte, HeaderSize)
	putHeader(buf, CommandRequest, own)
	binary.BigEndian.PutUint32(buf[offMetric:], state.INF)
	return buf
}

// EncodeResponse builds a response carrying one block per entry.
// Costs above the maximum hop count are sent as INF.
func EncodeResponse(own state.IP, entries []state.RouteEntry) []byte {
	buf := make([]byte, HeaderSize+len(entries)*EntrySize)
	putHeader(buf, CommandResponse, own)
	binary.BigEndian.PutUint16(buf[offFamily:], AfInet)
	for i, e := range entries {
		blk := buf[HeaderSize+i*EntrySize:]
		binary.BigEndian.PutUint16(blk[offEntryAf:], AfInet)
		binary.BigEndian.PutUint32(blk[offEntryDst:], uint32(e.Destination))
		binary.BigEndian.PutUint32(blk[offEntryMet:], state.NormalizeCost(e.Cost))
	}
	return buf
}

// EncodeTableResponse snapshots the table under its lock and encodes it.
func EncodeTableResponse(own state.IP, table *state.RouteTable) []byte {
	var buf []byte
	table.Update(func(tx *state.RouteTx) {
		buf = EncodeResponse(own, tx.Entries())
	})
	return buf
}

func Decode(buf []byte) (Packet, error) {
	if len(buf) < HeaderSize {
		return Packet{}, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(buf))
	}
	pkt := Packet{
		Command: Command(buf[offCommand]),
		Version: buf[offVersion],
		Sender:  state.IP(binary.BigEndian.Uint32(buf[offSender:])),
	}
	switch pkt.Command {
	case CommandRequest:
		return pkt, nil
	case CommandResponse:
	default:
		return Packet{}, fmt.Errorf("%w %d from %s", ErrUnknownCommand, buf[offCommand], pkt.Sender)
	}

	body := buf[HeaderSize:]
	if len(body)%EntrySize != 0 {
		return Packet{}, fmt.Errorf("%w: %d trailing bytes from %s", ErrTruncated, len(body)%EntrySize, pkt.Sender)
	}
	pkt.Entries = make([]state.RouteEntry, 0, len(body)/EntrySize)
	for off := 0; off < len(body); off += EntrySize {
		blk := body[off : off+EntrySize]
		pkt.Entries = append(pkt.Entries, state.RouteEntry{
			Destination: state.IP(binary.BigEndian.Uint32(blk[offEntryDst:])),
			Gateway:     pkt.Sender,
			Cost:        binary.BigEndian.Uint32(blk[offEntryMet:]),
		})
	}
	return pkt, nil
}
