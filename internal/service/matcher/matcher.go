package matcher

import (
	"fmt"
	"strings"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
)

const reasonNoCN = "Certificate has no Common Name (CN)"

// Match checks whether hostname is covered by a certificate's Common Name
// or Subject Alternative Names. The CN is tried first, then each SAN in
// order; the first entry that matches wins. Comparison is exact.
func Match(commonName string, sans []string, hostname string) model.DomainMatchResult {
	if commonName == "" {
		return model.DomainMatchResult{Reason: reasonNoCN}
	}

	if Covers(commonName, hostname) {
		return model.DomainMatchResult{Matches: true, MatchedWith: commonName}
	}

	for _, san := range sans {
		if Covers(san, hostname) {
			return model.DomainMatchResult{Matches: true, MatchedWith: san}
		}
	}

	return model.DomainMatchResult{
		Reason: fmt.Sprintf("Domain '%s' does not match certificate CN '%s' or any Subject Alternative Names", hostname, commonName),
	}
}

// Covers reports whether a single certificate name covers hostname.
// A "*." pattern covers exactly one additional leftmost label.
func Covers(pattern, hostname string) bool {
	if pattern == hostname {
		return true
	}

	base, ok := strings.CutPrefix(pattern, "*.")
	if !ok {
		return false
	}

	label, rest, found := strings.Cut(hostname, ".")
	if !found || label == "" {
		return false
	}
	return rest == base
}
