//go:build windows

package sevent

import (
	"errors"
	"net/netip"

	"golang.org/x/sys/windows"
)

// rawRecv and rawSend wrap winsock recv(2)/send(2). Grounded on the
// teacher's fd_windows.go stub (which had no real wake-fd equivalent on
// Windows); generalized here to the actual non-blocking socket primitives
// via golang.org/x/sys/windows, mirroring socketio_unix.go's shape.
func rawRecv(fd int, buf []byte) (int, error) {
	return windows.Recv(windows.Handle(fd), buf, 0)
}

func rawSend(fd int, buf []byte) (int, error) {
	return windows.Send(windows.Handle(fd), buf, 0)
}

func rawRecvFrom(fd int, buf []byte) (int, windows.Sockaddr, error) {
	return windows.Recvfrom(windows.Handle(fd), buf, 0)
}

func rawSendTo(fd int, buf []byte, sa windows.Sockaddr) error {
	return windows.Sendto(windows.Handle(fd), buf, 0, sa)
}

// isWouldBlock reports whether err is the winsock equivalent of
// EAGAIN/EWOULDBLOCK. Any other winsock error maps to the same OSError
// category as its POSIX counterpart.
func isWouldBlock(err error) bool {
	return errors.Is(err, windows.WSAEWOULDBLOCK)
}

func addrFromSockaddr(sa windows.Sockaddr) (Addr, error) {
	switch sa := sa.(type) {
	case *windows.SockaddrInet4:
		return Addr{Host: netip.AddrFrom4(sa.Addr).String(), Port: sa.Port}, nil
	case *windows.SockaddrInet6:
		return Addr{Host: netip.AddrFrom16(sa.Addr).String(), Port: sa.Port, ScopeID: sa.ZoneId}, nil
	default:
		return Addr{}, &AddressFormatError{Message: "sevent: unsupported sockaddr type from recvfrom"}
	}
}

func sockaddrFromAddr(family Family, a Addr) (windows.Sockaddr, error) {
	ip, err := netip.ParseAddr(a.Host)
	if err != nil {
		return nil, &AddressFormatError{Cause: err, Message: "sevent: invalid host address"}
	}

	switch family {
	case FamilyINet:
		if !ip.Is4() {
			return nil, &AddressFormatError{Message: "sevent: expected an IPv4 address for AF_INET"}
		}
		return &windows.SockaddrInet4{Port: a.Port, Addr: ip.As4()}, nil
	case FamilyINet6:
		return &windows.SockaddrInet6{Port: a.Port, ZoneId: a.ScopeID, Addr: ip.As16()}, nil
	default:
		return nil, &AddressFormatError{Message: "sevent: unsupported address family"}
	}
}
