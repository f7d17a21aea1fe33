//go:build !linux

package netbind

import (
	"fmt"
	"syscall"
)

// bindControl on non-Linux platforms refuses to bind: SO_BINDTODEVICE
// has no portable equivalent, and silently probing over the default
// route would report the wrong interface as up.
func bindControl(iface string) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		return fmt.Errorf("binding to interface %s is only supported on linux", iface)
	}
}

// InterfaceState is unavailable without netlink.
func InterfaceState(name string) LinkState {
	return LinkUnknown
}
