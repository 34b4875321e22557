// Package urlguard refuses analysis targets that resolve to loopback,
// link-local or private addresses, so a public deployment cannot be used to
// screenshot its own network.
package urlguard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
)

// ErrPrivateTarget is returned when a host resolves to a non-public address.
var ErrPrivateTarget = errors.New("urlguard: URL targets a private or loopback address")

var privateRanges = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("fc00::/7"),
}

// Guard checks target hosts. The zero value resolves with net.DefaultResolver.
type Guard struct {
	Lookup func(ctx context.Context, host string) ([]netip.Addr, error)
}

// Check parses rawURL and rejects it when its host is, or resolves to, a
// private address. A resolution failure passes: navigation reports it.
func (g Guard) Check(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("urlguard: %w", err)
	}
	host := u.Hostname()

	if ip, err := netip.ParseAddr(host); err == nil {
		if IsPrivate(ip) {
			return ErrPrivateTarget
		}
		return nil
	}

	lookup := g.Lookup
	if lookup == nil {
		lookup = func(ctx context.Context, host string) ([]netip.Addr, error) {
			return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		}
	}
	addrs, err := lookup(ctx, host)
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		if IsPrivate(a) {
			return ErrPrivateTarget
		}
	}
	return nil
}

// IsPrivate reports whether ip is loopback, link-local, unspecified or in
// a private range.
func IsPrivate(ip netip.Addr) bool {
	ip = ip.Unmap()
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, p := range privateRanges {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
