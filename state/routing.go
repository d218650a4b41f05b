package state

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// IP is an IPv4 address in host order. The table and codec key on it directly.
type IP uint32

func IPFromAddr(addr netip.Addr) IP {
	b := addr.Unmap().As4()
	return IP(binary.BigEndian.Uint32(b[:]))
}

func ParseIP(s string) (IP, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return 0, err
	}
	if !addr.Unmap().Is4() {
		return 0, fmt.Errorf("%s is not an IPv4 address", s)
	}
	return IPFromAddr(addr), nil
}

func MustParseIP(s string) IP {
	ip, err := ParseIP(s)
	if err != nil {
		panic(err)
	}
	return ip
}

func (ip IP) Addr() netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(ip))
	return netip.AddrFrom4(b)
}

func (ip IP) String() string {
	return ip.Addr().String()
}

// RouteEntry describes how to reach Destination. Two entries are the same route
// when their destinations match; Gateway and Cost are payload.
type RouteEntry struct {
	Destination IP
	Gateway     IP
	Cost        uint32
}

func (e RouteEntry) SameRoute(o RouteEntry) bool {
	return e.Destination == o.Destination
}

func (e RouteEntry) Reachable() bool {
	return e.Cost <= MaxHopCount
}

func (e RouteEntry) String() string {
	return fmt.Sprintf("Ip: %s Gateway: %s Cost: %d", e.Destination, e.Gateway, e.Cost)
}

// NormalizeCost clamps anything above the maximum hop count to INF.
func NormalizeCost(cost uint32) uint32 {
	if cost > MaxHopCount {
		return INF
	}
	return cost
}

// Neighbour is a directly linked router reachable on loopback at Port.
type Neighbour struct {
	Ip   IP
	Port uint16
}

func (n Neighbour) String() string {
	return fmt.Sprintf("%s (port %d)", n.Ip, n.Port)
}
