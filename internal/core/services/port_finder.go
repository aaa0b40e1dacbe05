package services

import (
	"fmt"
	"net"
	"strconv"
)

// FindAvailablePort returns the first port in [startPort, endPort] that can
// be bound on host.
func FindAvailablePort(host string, startPort, endPort int) (int, error) {
	if startPort <= 0 || endPort < startPort {
		return 0, fmt.Errorf("invalid port range %d-%d", startPort, endPort)
	}
	for port := startPort; port <= endPort; port++ {
		listener, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
		if err == nil {
			_ = listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port on %s in range %d-%d", host, startPort, endPort)
}
