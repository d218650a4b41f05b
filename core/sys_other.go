//go:build !unix

package core

import (
	"errors"
	"net"
	"syscall"
)

func listenUDP(port uint16) (*net.UDPConn, error) {
	return net.ListenUDP("udp4", &net.UDPAddr{IP: loopback, Port: int(port)})
}

func isRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
