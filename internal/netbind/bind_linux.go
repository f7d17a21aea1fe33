//go:build linux

package netbind

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// bindControl returns a dialer control that pins the socket to iface
// via SO_BINDTODEVICE. Needs CAP_NET_RAW or root.
func bindControl(iface string) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var bindErr error
		if err := c.Control(func(fd uintptr) {
			bindErr = unix.BindToDevice(int(fd), iface)
		}); err != nil {
			return err
		}
		if bindErr != nil {
			return fmt.Errorf("bind to device %s: %w", iface, bindErr)
		}
		return nil
	}
}

// InterfaceState reports the link-layer state of the named interface.
func InterfaceState(name string) LinkState {
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return LinkMissing
		}
		return LinkUnknown
	}
	attrs := link.Attrs()
	if attrs.OperState == netlink.OperUp {
		return LinkUp
	}
	// Some drivers (ppp, wireguard) report OperUnknown while passing
	// traffic; fall back to the admin flag for those.
	if attrs.OperState == netlink.OperUnknown && attrs.Flags&net.FlagUp != 0 {
		return LinkUp
	}
	return LinkDown
}
