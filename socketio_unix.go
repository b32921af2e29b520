//go:build linux || darwin

package sevent

import (
	"errors"
	"net/netip"

	"golang.org/x/sys/unix"
)

// rawRecv and rawSend wrap the bare read(2)/write(2) syscalls used for
// connected (stream) sockets. Grounded on the teacher's fd_unix.go, which
// wrapped the same two calls via golang.org/x/sys/unix for its wake pipe;
// generalized here to arbitrary non-blocking socket descriptors.
func rawRecv(fd int, buf []byte) (int, error) {
	return unix.Read(fd, buf)
}

func rawSend(fd int, buf []byte) (int, error) {
	return unix.Write(fd, buf)
}

func rawRecvFrom(fd int, buf []byte) (int, unix.Sockaddr, error) {
	return unix.Recvfrom(fd, buf, 0)
}

func rawSendTo(fd int, buf []byte, sa unix.Sockaddr) error {
	return unix.Sendto(fd, buf, 0, sa)
}

func isWouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// addrFromSockaddr formats a peer sockaddr the way inet_ntop would: a
// 2-field Addr for IPv4, a 4-field Addr (host, port, flowinfo, scope_id)
// for IPv6. flowinfo is always reported as 0, since x/sys/unix's
// SockaddrInet6 does not surface sin6_flowinfo, and incoming datagrams
// carry no equivalent value to recover it from.
func addrFromSockaddr(sa unix.Sockaddr) (Addr, error) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return Addr{Host: netip.AddrFrom4(sa.Addr).String(), Port: sa.Port}, nil
	case *unix.SockaddrInet6:
		return Addr{Host: netip.AddrFrom16(sa.Addr).String(), Port: sa.Port, ScopeID: sa.ZoneId}, nil
	default:
		return Addr{}, &AddressFormatError{Message: "sevent: unsupported sockaddr type from recvfrom"}
	}
}

// sockaddrFromAddr parses and validates an Addr the way inet_pton would,
// producing the family-specific sockaddr sendto needs.
func sockaddrFromAddr(family Family, a Addr) (unix.Sockaddr, error) {
	ip, err := netip.ParseAddr(a.Host)
	if err != nil {
		return nil, &AddressFormatError{Cause: err, Message: "sevent: invalid host address"}
	}

	switch family {
	case FamilyINet:
		if !ip.Is4() {
			return nil, &AddressFormatError{Message: "sevent: expected an IPv4 address for AF_INET"}
		}
		return &unix.SockaddrInet4{Port: a.Port, Addr: ip.As4()}, nil
	case FamilyINet6:
		return &unix.SockaddrInet6{Port: a.Port, ZoneId: a.ScopeID, Addr: ip.As16()}, nil
	default:
		return nil, &AddressFormatError{Message: "sevent: unsupported address family"}
	}
}
