package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch_NoCommonName(t *testing.T) {
	res := Match("", []string{"example.com"}, "example.com")
	assert.False(t, res.Matches)
	assert.Equal(t, "Certificate has no Common Name (CN)", res.Reason)
	assert.Empty(t, res.MatchedWith)
}

func TestMatch_CNExact(t *testing.T) {
	res := Match("example.com", nil, "example.com")
	assert.True(t, res.Matches)
	assert.Equal(t, "example.com", res.MatchedWith)
	assert.Empty(t, res.Reason)
}

func TestMatch_CNWildcard(t *testing.T) {
	res := Match("*.example.com", nil, "api.example.com")
	assert.True(t, res.Matches)
	assert.Equal(t, "*.example.com", res.MatchedWith)
}

func TestMatch_WildcardDoesNotCoverApex(t *testing.T) {
	res := Match("*.example.com", nil, "example.com")
	assert.False(t, res.Matches)
}

func TestMatch_WildcardSingleLabelOnly(t *testing.T) {
	res := Match("*.example.com", nil, "a.b.example.com")
	assert.False(t, res.Matches)
	assert.Equal(t, "Domain 'a.b.example.com' does not match certificate CN '*.example.com' or any Subject Alternative Names", res.Reason)
}

func TestMatch_SANMatch(t *testing.T) {
	res := Match("other.com", []string{"foo.org", "www.example.com"}, "www.example.com")
	assert.True(t, res.Matches)
	assert.Equal(t, "www.example.com", res.MatchedWith)
}

func TestMatch_SANWildcard(t *testing.T) {
	res := Match("example.com", []string{"example.com", "*.example.com"}, "mail.example.com")
	assert.True(t, res.Matches)
	assert.Equal(t, "*.example.com", res.MatchedWith)
}

func TestMatch_CNPriorityOverSAN(t *testing.T) {
	res := Match("*.example.com", []string{"www.example.com"}, "www.example.com")
	assert.True(t, res.Matches)
	assert.Equal(t, "*.example.com", res.MatchedWith)
}

func TestMatch_FirstSANWins(t *testing.T) {
	res := Match("other.com", []string{"*.example.com", "www.example.com"}, "www.example.com")
	assert.True(t, res.Matches)
	assert.Equal(t, "*.example.com", res.MatchedWith)
}

func TestMatch_CaseSensitive(t *testing.T) {
	res := Match("Example.com", nil, "example.com")
	assert.False(t, res.Matches)
}

func TestCovers_EmptyLeftLabel(t *testing.T) {
	assert.False(t, Covers("*.example.com", ".example.com"))
}
