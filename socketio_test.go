//go:build linux || darwin

package sevent

import (
	"errors"
	"runtime"
	"testing"

	"golang.org/x/sys/unix"
)

func newNonblockingStreamSocketpair(t *testing.T) (a, b int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	for _, fd := range fds {
		if err := unix.SetNonblock(fd, true); err != nil {
			t.Fatalf("SetNonblock: %v", err)
		}
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func newLoopbackUDP(t *testing.T) (fd int, addr Addr) {
	t.Helper()
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		t.Fatalf("Socket: %v", err)
	}
	t.Cleanup(func() { unix.Close(fd) })

	if err := unix.Bind(fd, &unix.SockaddrInet4{Addr: [4]byte{127, 0, 0, 1}}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}

	sa, err := unix.Getsockname(fd)
	if err != nil {
		t.Fatalf("Getsockname: %v", err)
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		t.Fatalf("Getsockname returned %T, want *unix.SockaddrInet4", sa)
	}
	return fd, Addr{Host: "127.0.0.1", Port: in4.Port}
}

func TestSocketSendRecvStreamLoopback(t *testing.T) {
	a, b := newNonblockingStreamSocketpair(t)

	out := NewBuffer()
	out.Write([]byte("hello world"), nil)

	sent, err := SocketSend(out, b)
	if err != nil {
		t.Fatalf("SocketSend: %v", err)
	}
	if sent != len("hello world") {
		t.Fatalf("SocketSend returned %d, want %d", sent, len("hello world"))
	}
	if !out.Empty() {
		t.Fatal("SocketSend must fully drain a buffer the kernel accepted whole")
	}

	in := NewBuffer()
	received, err := SocketRecv(in, a, 4096)
	if err != nil {
		t.Fatalf("SocketRecv: %v", err)
	}
	if received != len("hello world") {
		t.Fatalf("SocketRecv returned %d, want %d", received, len("hello world"))
	}

	c, err := in.Read(-1)
	if err != nil || string(c.Bytes()) != "hello world" {
		t.Fatalf("received content = %q, err=%v", c.Bytes(), err)
	}
}

func TestSocketRecvEAGAINIsNotAnError(t *testing.T) {
	a, _ := newNonblockingStreamSocketpair(t)

	in := NewBuffer()
	received, err := SocketRecv(in, a, 4096)
	if err != nil {
		t.Fatalf("SocketRecv on an idle socket must not error: %v", err)
	}
	if received != 0 {
		t.Fatalf("SocketRecv = %d, want 0", received)
	}
}

func TestSocketSendToValidatesPort(t *testing.T) {
	buf := NewBuffer()
	buf.Write([]byte("x"), Addr{Host: "1.2.3.4", Port: 70000})

	_, err := SocketSendTo(buf, -1, FamilyINet)
	var overflow *OverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("err = %v, want *OverflowError", err)
	}
}

func TestSocketSendToRejectsUnparseableHost(t *testing.T) {
	buf := NewBuffer()
	buf.Write([]byte("x"), Addr{Host: "not-an-ip-address", Port: 80})

	_, err := SocketSendTo(buf, -1, FamilyINet)
	var format *AddressFormatError
	if !errors.As(err, &format) {
		t.Fatalf("err = %v, want *AddressFormatError", err)
	}
}

func TestSocketSendToRejectsNonAddrAttachment(t *testing.T) {
	buf := NewBuffer()
	buf.Write([]byte("x"), "not-an-addr")

	_, err := SocketSendTo(buf, -1, FamilyINet)
	var format *AddressFormatError
	if !errors.As(err, &format) {
		t.Fatalf("err = %v, want *AddressFormatError", err)
	}
}

func TestSocketSendToRecvFromLoopback(t *testing.T) {
	fdA, _ := newLoopbackUDP(t)
	fdB, addrB := newLoopbackUDP(t)

	out := NewBuffer()
	out.Write([]byte("ping"), addrB)

	if _, err := SocketSendTo(out, fdA, FamilyINet); err != nil {
		t.Fatalf("SocketSendTo: %v", err)
	}
	if !out.Empty() {
		t.Fatal("SocketSendTo must consume the datagram whole on success")
	}

	in := NewBuffer()
	var received int
	var err error
	for i := 0; i < 100 && received == 0; i++ {
		received, err = SocketRecvFrom(in, fdB, FamilyINet, 0)
		if err != nil {
			t.Fatalf("SocketRecvFrom: %v", err)
		}
		if received == 0 {
			runtime.Gosched()
		}
	}
	if received != len("ping") {
		t.Fatalf("SocketRecvFrom returned %d, want %d", received, len("ping"))
	}

	c, ok := in.Head()
	if !ok || string(c.Bytes()) != "ping" {
		t.Fatalf("received payload = %q", c.Bytes())
	}
	peer, ok := c.Attachment().(Addr)
	if !ok || peer.Host != "127.0.0.1" {
		t.Fatalf("received attachment = %+v, ok=%v", peer, ok)
	}
}

func TestSocketRecvTailReuse(t *testing.T) {
	a, b := newNonblockingStreamSocketpair(t)

	in := NewBuffer()
	// First write primes a pool-born tail chunk well under slab capacity.
	if _, err := SocketSend(bufferWith(t, "first "), b); err != nil {
		t.Fatalf("SocketSend: %v", err)
	}
	if _, err := SocketRecv(in, a, 4096); err != nil {
		t.Fatalf("SocketRecv: %v", err)
	}

	if _, err := SocketSend(bufferWith(t, "second"), b); err != nil {
		t.Fatalf("SocketSend: %v", err)
	}
	if _, err := SocketRecv(in, a, 4096); err != nil {
		t.Fatalf("SocketRecv: %v", err)
	}

	c, err := in.Read(-1)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(c.Bytes()) != "first second" {
		t.Fatalf("combined recv = %q, want %q", c.Bytes(), "first second")
	}
}

func bufferWith(t *testing.T, s string) *Buffer {
	t.Helper()
	b := NewBuffer()
	b.Write([]byte(s), nil)
	return b
}
