package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// CallerAddressFunc extracts the network address used to geolocate a request.
type CallerAddressFunc func(r *http.Request) string

// NewCallerAddressFunc returns a function that always yields override when it
// is set. Otherwise it yields the socket peer, or the forwarded client address
// when the peer is one of trustedProxies.
func NewCallerAddressFunc(override string, trustedProxies []netip.Prefix) CallerAddressFunc {
	if override != "" {
		return func(*http.Request) string { return override }
	}
	if len(trustedProxies) == 0 {
		return RemoteIP
	}
	return func(r *http.Request) string {
		return forwardedClientIP(r, trustedProxies)
	}
}

// RemoteIP is the host part of RemoteAddr.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// forwardedClientIP walks X-Forwarded-For from the nearest hop and returns the
// first address that is not a trusted proxy. Headers are ignored unless the
// peer itself is trusted.
func forwardedClientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := RemoteIP(r)
	if !isTrusted(peer, trusted) {
		return peer
	}

	var hops []string
	for _, value := range r.Header.Values("X-Forwarded-For") {
		for _, hop := range strings.Split(value, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	for i := len(hops) - 1; i >= 0; i-- {
		if !isTrusted(hops[i], trusted) {
			return hops[i]
		}
	}
	if len(hops) > 0 {
		return hops[0]
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func isTrusted(address string, trusted []netip.Prefix) bool {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
