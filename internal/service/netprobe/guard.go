// Package netprobe holds the pieces shared by the tools that open network
// connections: target validation, resolution, error classification and the
// settle-once timeout wrapper.
package netprobe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrHostnameRequired  = errors.New("hostname is required")
	ErrInvalidCharacters = errors.New("hostname contains invalid characters")
	ErrInvalidIPv4       = errors.New("invalid IPv4 address")
	ErrPrivateNetwork    = errors.New("access to private/internal networks is not allowed")
	ErrHostnameTooLong   = errors.New("hostname too long")
	ErrInvalidHostname   = errors.New("invalid hostname format")
	ErrLocalhost         = errors.New("access to localhost is not allowed")
	ErrUnresolvable      = errors.New("unable to resolve hostname")
	ErrInvalidPort       = errors.New("invalid port number")
	ErrInvalidURL        = errors.New("invalid URL format")
)

const MaxHostnameLength = 253

var (
	hostChars   = regexp.MustCompile(`^[a-zA-Z0-9.:-]+$`)
	ipv4Shape   = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	domainShape = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?$`)
	cgnat       = netip.MustParsePrefix("100.64.0.0/10")
)

// IsPublicIP reports whether addr may be probed. Loopback, RFC 1918,
// link-local, CGNAT, multicast, reserved and unspecified addresses and the
// IPv6 unique-local range are refused.
func IsPublicIP(addr netip.Addr) bool {
	addr = addr.Unmap()
	if !addr.IsValid() ||
		addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() {
		return false
	}
	if addr.Is4() {
		b := addr.As4()
		if b[0] == 0 || b[0] == 169 || b[0] >= 224 || cgnat.Contains(addr) {
			return false
		}
	}
	return true
}

// Guard validates probe targets and resolves them to a single address.
type Guard struct {
	Resolver *net.Resolver
	// AllowPrivate disables the address-range and localhost checks. Format
	// checks still apply.
	AllowPrivate bool
}

func NewGuard(allowPrivate bool) *Guard {
	return &Guard{Resolver: net.DefaultResolver, AllowPrivate: allowPrivate}
}

// Validate checks host before any network call is made.
func (g *Guard) Validate(host string) error {
	if host == "" {
		return ErrHostnameRequired
	}
	if !hostChars.MatchString(host) {
		return ErrInvalidCharacters
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if !g.AllowPrivate && !IsPublicIP(addr) {
			return ErrPrivateNetwork
		}
		return nil
	}
	if ipv4Shape.MatchString(host) {
		return ErrInvalidIPv4
	}
	if strings.Contains(host, ":") {
		return ErrInvalidCharacters
	}

	if len(host) > MaxHostnameLength {
		return ErrHostnameTooLong
	}
	if !domainShape.MatchString(host) {
		return ErrInvalidHostname
	}
	if !g.AllowPrivate && strings.Contains(strings.ToLower(host), "localhost") {
		return ErrLocalhost
	}
	return nil
}

// Resolve validates host and returns the address to connect to: the
// literal itself, else the first A record, else the first AAAA record.
// Resolved addresses are range-checked as well.
func (g *Guard) Resolve(ctx context.Context, host string) (netip.Addr, error) {
	if err := g.Validate(host); err != nil {
		return netip.Addr{}, err
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr, nil
	}

	addr, err := g.lookup(ctx, host)
	if err != nil {
		return netip.Addr{}, err
	}
	if !g.AllowPrivate && !IsPublicIP(addr) {
		return netip.Addr{}, ErrPrivateNetwork
	}
	return addr, nil
}

func (g *Guard) lookup(ctx context.Context, host string) (netip.Addr, error) {
	r := g.Resolver
	if r == nil {
		r = net.DefaultResolver
	}

	addrs, err4 := r.LookupNetIP(ctx, "ip4", host)
	if err4 == nil && len(addrs) > 0 {
		return addrs[0], nil
	}
	addrs, err6 := r.LookupNetIP(ctx, "ip6", host)
	if err6 == nil && len(addrs) > 0 {
		return addrs[0], nil
	}

	cause := err4
	if cause == nil {
		cause = err6
	}
	if cause == nil {
		return netip.Addr{}, fmt.Errorf("%w: no addresses for %s", ErrUnresolvable, host)
	}
	return netip.Addr{}, fmt.Errorf("%w: %v", ErrUnresolvable, cause)
}

// ValidatePort checks that port is within 1-65535.
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return ErrInvalidPort
	}
	return nil
}

// HostFromURL extracts the hostname of a URL, adding an https scheme when
// none is present. Bracketed IPv6 literals are returned without brackets.
func HostFromURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if !schemePrefix.MatchString(raw) {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "", ErrInvalidURL
	}
	return u.Hostname(), nil
}

var schemePrefix = regexp.MustCompile(`^[a-zA-Z]+://`)
