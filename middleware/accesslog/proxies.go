// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package accesslog

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Forwarding headers understood out of the box. Any other header name given
// to [WithProxyHeaders] is read as a single IP (e.g. "Fastly-Client-IP").
const (
	HeaderXFF          = "X-Forwarded-For"
	HeaderXRealIP      = "X-Real-IP"
	HeaderCFConnecting = "CF-Connecting-IP"
)

// realIP resolves the client address of trusted proxied requests.
type realIP struct {
	prefixes []netip.Prefix
	headers  []string
	maxHops  int
}

// compileProxies parses the trusted ranges once at construction.
func compileProxies(cidrs, headers []string, maxHops int) (*realIP, error) {
	if len(cidrs) == 0 {
		return nil, nil
	}

	cfg := &realIP{
		headers: headers,
		maxHops: maxHops,
	}
	if len(cfg.headers) == 0 {
		cfg.headers = []string{HeaderXFF, HeaderXRealIP}
	}
	if cfg.maxHops <= 0 {
		cfg.maxHops = 1
	}

	cfg.prefixes = make([]netip.Prefix, 0, len(cidrs))
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if !strings.Contains(cidr, "/") {
			addr, err := netip.ParseAddr(cidr)
			if err != nil {
				return nil, fmt.Errorf("%w %q: %w", ErrInvalidProxy, cidr, err)
			}
			cfg.prefixes = append(cfg.prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidProxy, cidr, err)
		}
		cfg.prefixes = append(cfg.prefixes, p.Masked())
	}

	return cfg, nil
}

func (cfg *realIP) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range cfg.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// clientAddr returns the client address for r. Headers are consulted only
// when the peer itself is trusted.
func (cfg *realIP) clientAddr(r *http.Request) string {
	remote := hostFromRemoteAddr(r.RemoteAddr)
	if cfg == nil {
		return remote
	}

	peer, err := netip.ParseAddr(remote)
	if err != nil || !cfg.isTrusted(peer) {
		return remote
	}

	for _, h := range cfg.headers {
		if strings.EqualFold(h, HeaderXFF) {
			if ip := cfg.fromXFF(r.Header.Values(HeaderXFF)); ip != "" {
				return ip
			}
			continue
		}
		if ip := parseOneIP(r.Header.Get(h)); ip != "" {
			return ip
		}
	}

	return remote
}

// fromXFF walks X-Forwarded-For from right to left, skipping up to maxHops
// trusted proxies, and returns the first untrusted address. When every
// address is trusted the leftmost one is returned.
func (cfg *realIP) fromXFF(values []string) string {
	var chain []string
	for _, v := range values {
		for part := range strings.SplitSeq(v, ",") {
			if ip := parseOneIP(part); ip != "" {
				chain = append(chain, ip)
			}
		}
	}
	if len(chain) == 0 {
		return ""
	}

	hops := 0
	for i := len(chain) - 1; i >= 0; i-- {
		addr := netip.MustParseAddr(chain[i])
		if !cfg.isTrusted(addr) {
			return chain[i]
		}
		hops++
		if hops > cfg.maxHops {
			return chain[i]
		}
	}

	return chain[0]
}

// hostFromRemoteAddr strips the port from a RemoteAddr ("ip:port").
func hostFromRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}

	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		// No port, return as-is
		return remoteAddr
	}
	return host
}

// parseOneIP parses a single IP address, trimming whitespace.
// It returns "" for anything that is not an IP.
func parseOneIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	addr, err := netip.ParseAddr(s)
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}
