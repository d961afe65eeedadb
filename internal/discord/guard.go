package discord

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/hookstudio/internal/utils"
)

// ErrBlockedAddress is returned when a URL resolves to an address inside the
// server's own network.
var ErrBlockedAddress = errors.New("URL points to a private or local network address")

type clientOptions struct {
	allowPrivate bool
}

// ClientOption configures NewClient.
type ClientOption func(*clientOptions)

// AllowPrivateNetworks lets the client reach loopback, private and
// link-local addresses. Off by default: message documents are loaded from
// user-supplied URLs.
func AllowPrivateNetworks(allow bool) ClientOption {
	return func(o *clientOptions) { o.allowPrivate = allow }
}

// newTransport returns the client's transport. Unless private networks are
// allowed, every dial is checked after DNS resolution, redirects included.
func newTransport(o clientOptions) *http.Transport {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if o.allowPrivate {
		return tr
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   blockInternal,
	}
	tr.DialContext = dialer.DialContext
	// A proxy would resolve the target itself, past the check.
	tr.Proxy = nil
	return tr
}

// blockInternal is a net.Dialer Control hook. address is the resolved ip:port.
func blockInternal(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if utils.IsInternalAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
	}
	return nil
}
