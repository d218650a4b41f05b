package core

import (
	"errors"
	"net"
	"os"
	"time"

	"github.com/encodeous/ripsim/perf"
	"github.com/encodeous/ripsim/protocol"
	"github.com/encodeous/ripsim/state"
	"github.com/jellydator/ttlcache/v3"
)

var loopback = net.IPv4(127, 0, 0, 1)

// advertise sends a REQUEST to every neighbour.
func (r *Router) advertise(s *state.State) error {
	req := protocol.EncodeRequest(s.Id)
	for _, n := range s.Neighbours {
		r.send(s, n, req)
	}
	return nil
}

func (r *Router) invalidate(s *state.State) error {
	InvalidateRoutes(s, r)
	r.seen.DeleteExpired()
	return nil
}

// handleRequest answers a neighbour's REQUEST with our whole table.
func (r *Router) handleRequest(s *state.State, sender state.IP) error {
	n, ok := s.GetNeighbour(sender)
	if !ok {
		r.Log(UnknownNeighbour, "dropped request", "from", sender)
		return nil
	}
	r.send(s, n, protocol.EncodeTableResponse(s.Id, s.Table))
	return nil
}

func (r *Router) handleResponse(s *state.State, sender state.IP, entries []state.RouteEntry) error {
	if _, ok := s.GetNeighbour(sender); !ok {
		r.log.Debug("response from a router that is not a neighbour", "from", sender)
	}
	r.seen.Set(sender, time.Now(), ttlcache.DefaultTTL)
	perf.ResponseEntries.Add(float64(len(entries)))
	HandleResponse(s, r, sender, entries)
	return nil
}

func (r *Router) send(s *state.State, n state.Neighbour, pkt []byte) {
	err := r.conn.SetWriteDeadline(time.Now().Add(s.SendTimeout()))
	if err == nil {
		_, err = r.conn.WriteToUDP(pkt, &net.UDPAddr{IP: loopback, Port: int(n.Port)})
	}
	if err != nil {
		if isRefused(err) {
			// the neighbour is not running
			r.log.Debug("neighbour refused packet", "to", n)
			return
		}
		r.Log(SendFailed, n.String(), "error", err)
		return
	}
	perf.SentPacketPerSecond.Add(1)
	perf.SentBytesPerSecond.Add(float64(len(pkt)))
}

// receiveLoop reads packets until the router is stopped and hands them to the dispatch goroutine.
func (r *Router) receiveLoop(e *state.Env, conn *net.UDPConn) {
	buf := make([]byte, state.MaxPacketSize)
	for r.active.Load() {
		if err := conn.SetReadDeadline(time.Now().Add(e.ReceiveTimeout())); err != nil {
			r.log.Error("failed to set read deadline", "error", err)
			return
		}
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded), isRefused(err):
			case errors.Is(err, net.ErrClosed):
				return
			default:
				r.log.Warn("receive failed", "error", err)
			}
			continue
		}
		perf.RecvPacketPerSecond.Add(1)
		perf.RecvBytesPerSecond.Add(float64(n))

		pkt, err := protocol.Decode(buf[:n])
		if err != nil {
			perf.DroppedPacketPerSecond.Add(1)
			r.Log(MalformedPacket, "dropped packet", "len", n, "error", err)
			continue
		}
		switch pkt.Command {
		case protocol.CommandRequest:
			e.Dispatch(func(s *state.State) error {
				return r.handleRequest(s, pkt.Sender)
			})
		case protocol.CommandResponse:
			e.Dispatch(func(s *state.State) error {
				return r.handleResponse(s, pkt.Sender, pkt.Entries)
			})
		}
	}
}
