package cli

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/epoch"
	"github.com/andres10976/ssl-toolbox/backend/internal/testutil"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("TOOLBOX_CONFIG", "")
	cmd := NewRootCommand("1.0.0-test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.0.0-test")
}

func TestEpoch_Timestamp(t *testing.T) {
	out, err := run(t, "", "epoch", "1700000000")
	require.NoError(t, err)
	assert.Contains(t, out, "Unix Timestamp (seconds)")
	assert.Contains(t, out, "1700000000000")
	assert.Contains(t, out, "Tue, 14 Nov 2023 22:13:20 GMT")
}

func TestEpoch_JSON(t *testing.T) {
	out, err := run(t, "", "epoch", "1700000000123", "--json")
	require.NoError(t, err)

	var res model.EpochConversion
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, epoch.FormatMilliseconds, res.Detected.Format)
	assert.Equal(t, int64(1700000000), res.Unix)
	assert.Equal(t, int64(1700000000123), res.JS)
}

func TestEpoch_Now(t *testing.T) {
	out, err := run(t, "", "epoch", "--json")
	require.NoError(t, err)

	var now model.CurrentTime
	require.NoError(t, json.Unmarshal([]byte(out), &now))
	assert.Positive(t, now.Unix)
	assert.Equal(t, now.Unix, now.JS/1000)
}

func TestEpoch_Invalid(t *testing.T) {
	_, err := run(t, "", "epoch", "12ab")
	assert.ErrorIs(t, err, epoch.ErrNotNumeric)
}

func TestDecode_BundleFile(t *testing.T) {
	leaf, inter, _ := testutil.Chain(t, "example.com")
	path := filepath.Join(t.TempDir(), "chain.pem")
	require.NoError(t, os.WriteFile(path, []byte(leaf.PEM+inter.PEM), 0o600))

	out, err := run(t, "", "decode", path)
	require.NoError(t, err)
	assert.Contains(t, out, "example.com")
	assert.Contains(t, out, "Test Intermediate CA")
	assert.Contains(t, out, "Issuer links valid")
}

func TestDecode_CSRFromStdin(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.CreateCertificateRequest(rand.Reader, &x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: "csr.example.com"},
		DNSNames: []string{"csr.example.com"},
	}, key)
	require.NoError(t, err)
	p := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: der}))

	out, err := run(t, p, "decode", "-", "--json")
	require.NoError(t, err)

	var res model.CSRDecodeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.CSR)
	assert.Equal(t, "csr.example.com", res.CSR.CommonName)
	assert.True(t, res.CSR.SignatureValid)
}

func TestDecode_Errors(t *testing.T) {
	_, err := run(t, "", "decode", filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)

	_, err = run(t, "not pem", "decode", "-")
	assert.Error(t, err)

	_, err = run(t, "", "decode")
	assert.Error(t, err)
}

func TestSplitTarget(t *testing.T) {
	tests := []struct {
		arg      string
		wantHost string
		wantPort int
	}{
		{"example.com", "example.com", 443},
		{"example.com:8443", "example.com", 8443},
		{"[::1]:9443", "::1", 9443},
		{"https://example.com:8443/path", "https://example.com:8443/path", 443},
		{"example.com:https", "example.com:https", 443},
	}
	for _, tt := range tests {
		host, port := splitTarget(tt.arg, 443)
		assert.Equal(t, tt.wantHost, host, tt.arg)
		assert.Equal(t, tt.wantPort, port, tt.arg)
	}
}

func TestCheck_LoopbackServer(t *testing.T) {
	t.Setenv("TOOLBOX_ALLOW_PRIVATE_TARGETS", "true")

	root := testutil.Issue(t, testutil.Options{CommonName: "Test Root CA", IsCA: true}, nil)
	leaf := testutil.Issue(t, testutil.Options{
		CommonName:  "127.0.0.1",
		IPAddresses: []net.IP{net.ParseIP("127.0.0.1")},
	}, root)

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{{
		Certificate: [][]byte{leaf.Cert.Raw, root.Cert.Raw},
		PrivateKey:  leaf.Key,
	}}}
	srv.StartTLS()
	defer srv.Close()
	port := srv.Listener.Addr().(*net.TCPAddr).Port

	out, err := run(t, "", "check", "127.0.0.1:"+strconv.Itoa(port), "--json")
	require.NoError(t, err)

	var res model.SSLCheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, port, res.Port)
	assert.Equal(t, "127.0.0.1", res.Certificate.Subject.CN)
	assert.Equal(t, 2, res.ChainLength)

	out, err = run(t, "", "check", "127.0.0.1", "--port", strconv.Itoa(port))
	require.NoError(t, err)
	assert.Contains(t, out, "Test Root CA")
}

func TestCheck_PrivateTargetRejected(t *testing.T) {
	t.Setenv("TOOLBOX_ALLOW_PRIVATE_TARGETS", "false")

	_, err := run(t, "", "check", "10.0.0.1:443")
	assert.Error(t, err)
}
