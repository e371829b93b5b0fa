package dnslookup

import (
	"context"
	"io"
	"net"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zone struct {
	records map[string][]string
	rcodes  map[string]int
}

func (z *zone) ServeDNS(w dns.ResponseWriter, r *dns.Msg) {
	q := r.Question[0]
	if rcode, ok := z.rcodes[q.Name]; ok {
		m := new(dns.Msg)
		m.SetRcode(r, rcode)
		_ = w.WriteMsg(m)
		return
	}

	msg := new(dns.Msg)
	msg.SetReply(r)
	msg.Authoritative = true
	for _, s := range z.records[q.Name] {
		rr, err := dns.NewRR(s)
		if err != nil {
			panic(err)
		}
		if rr.Header().Rrtype == q.Qtype {
			msg.Answer = append(msg.Answer, rr)
		}
	}
	_ = w.WriteMsg(msg)
}

func startServer(t *testing.T, z *zone) string {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: conn, Handler: z, NotifyStartedFunc: func() { close(started) }}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return conn.LocalAddr().String()
}

func newResolver(addr string, timeout time.Duration) *Resolver {
	l := logrus.New()
	l.SetOutput(io.Discard)
	r := NewResolver(addr, timeout, l)
	r.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r
}

var exampleZone = &zone{
	records: map[string][]string{
		"example.com.": {
			"example.com. 300 IN A 93.184.216.34",
			"example.com. 300 IN A 93.184.216.35",
			"example.com. 300 IN AAAA 2606:2800:220:1:248:1893:25c8:1946",
			"example.com. 300 IN MX 10 mail.example.com.",
			`example.com. 300 IN TXT "v=spf1 " "-all"`,
			"example.com. 300 IN NS a.iana-servers.net.",
			"example.com. 300 IN NS b.iana-servers.net.",
			"example.com. 300 IN SOA ns.icann.org. noc.dns.icann.org. 2024081457 7200 3600 1209600 3600",
		},
		"www.example.org.": {
			"www.example.org. 300 IN CNAME example.org.",
		},
	},
	rcodes: map[string]int{
		"missing.example.": dns.RcodeNameError,
		"broken.example.":  dns.RcodeServerFailure,
		"denied.example.":  dns.RcodeRefused,
	},
}

func TestLookup_AllTypes(t *testing.T) {
	r := newResolver(startServer(t, exampleZone), time.Second)

	res, err := r.Lookup(context.Background(), "  Example.COM ")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "example.com", res.Domain)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), res.QueriedAt)

	recs := res.Results
	assert.Equal(t, []string{"93.184.216.34", "93.184.216.35"}, recs.A.Records)
	assert.Equal(t, []string{"2606:2800:220:1:248:1893:25c8:1946"}, recs.AAAA.Records)
	require.Len(t, recs.MX.Records, 1)
	assert.Equal(t, uint16(10), recs.MX.Records[0].Priority)
	assert.Equal(t, "mail.example.com", recs.MX.Records[0].Exchange)
	assert.Equal(t, []string{"v=spf1 -all"}, recs.TXT.Records)
	assert.Equal(t, []string{"a.iana-servers.net", "b.iana-servers.net"}, recs.NS.Records)
	require.True(t, recs.SOA.OK())
	assert.Equal(t, "ns.icann.org", recs.SOA.Records.NSName)
	assert.Equal(t, "noc.dns.icann.org", recs.SOA.Records.Hostmaster)
	assert.Equal(t, uint32(2024081457), recs.SOA.Records.Serial)
	assert.Equal(t, uint32(3600), recs.SOA.Records.MinTTL)

	require.False(t, recs.CNAME.OK())
	assert.Equal(t, CodeNoData, recs.CNAME.Err.Code)
	assert.Equal(t, "queryCname ENODATA example.com", recs.CNAME.Err.Message)

	assert.Equal(t, 7, res.Summary.TotalRecords)
	assert.Equal(t, []string{"A", "AAAA", "MX", "TXT", "NS"}, res.Summary.RecordTypes)
	assert.True(t, res.Summary.HasIPv4)
	assert.True(t, res.Summary.HasIPv6)
	assert.True(t, res.Summary.HasMail)
	assert.Equal(t, "93.184.216.34", res.Summary.IPAddress)
}

func TestLookup_PartialResults(t *testing.T) {
	r := newResolver(startServer(t, exampleZone), time.Second)

	res, err := r.Lookup(context.Background(), "www.example.org")
	require.NoError(t, err)

	assert.Equal(t, []string{"example.org"}, res.Results.CNAME.Records)
	require.NotNil(t, res.Results.MX.Err)
	assert.Equal(t, CodeNoData, res.Results.MX.Err.Code)
	assert.Equal(t, CodeNoData, res.Results.A.Err.Code)
	assert.Equal(t, 0, res.Summary.TotalRecords)
	assert.Empty(t, res.Summary.RecordTypes)
	assert.False(t, res.Summary.HasMail)
	assert.Empty(t, res.Summary.IPAddress)
}

func TestLookup_RcodeMapping(t *testing.T) {
	r := newResolver(startServer(t, exampleZone), time.Second)

	tests := map[string]string{
		"missing.example": CodeNotFound,
		"broken.example":  CodeServFail,
		"denied.example":  CodeRefused,
	}
	for domain, code := range tests {
		t.Run(domain, func(t *testing.T) {
			res, err := r.Lookup(context.Background(), domain)
			require.NoError(t, err)
			for _, slot := range []string{
				res.Results.A.Err.Code, res.Results.AAAA.Err.Code, res.Results.MX.Err.Code,
				res.Results.TXT.Err.Code, res.Results.CNAME.Err.Code, res.Results.NS.Err.Code,
				res.Results.SOA.Err.Code,
			} {
				assert.Equal(t, code, slot)
			}
		})
	}
}

func TestLookup_Timeout(t *testing.T) {
	// A socket that never answers.
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	r := newResolver(conn.LocalAddr().String(), 200*time.Millisecond)
	res, err := r.Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	require.NotNil(t, res.Results.A.Err)
	assert.Equal(t, CodeTimeout, res.Results.A.Err.Code)
	assert.Equal(t, CodeTimeout, res.Results.SOA.Err.Code)
	assert.Equal(t, "querySoa ETIMEOUT example.com", res.Results.SOA.Err.Message)
}

// truncating answers every UDP query with an empty, truncated reply and
// serves the full zone over TCP.
type truncating struct{ *zone }

func (z truncating) ServeDNS(w dns.ResponseWriter, r *dns.Msg) {
	if w.LocalAddr().Network() == "udp" {
		m := new(dns.Msg)
		m.SetReply(r)
		m.Truncated = true
		_ = w.WriteMsg(m)
		return
	}
	z.zone.ServeDNS(w, r)
}

func TestLookup_TruncatedRetriesOverTCP(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	ln, err := net.Listen("tcp", conn.LocalAddr().String())
	require.NoError(t, err)

	h := truncating{exampleZone}
	for _, srv := range []*dns.Server{{PacketConn: conn, Handler: h}, {Listener: ln, Handler: h}} {
		started := make(chan struct{})
		srv.NotifyStartedFunc = func() { close(started) }
		go func() { _ = srv.ActivateAndServe() }()
		<-started
		t.Cleanup(func() { _ = srv.Shutdown() })
	}

	r := newResolver(conn.LocalAddr().String(), time.Second)
	res, err := r.Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"v=spf1 -all"}, res.Results.TXT.Records)
	assert.Equal(t, []string{"93.184.216.34", "93.184.216.35"}, res.Results.A.Records)
}

func TestLookup_MalformedReply(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	go func() {
		buf := make([]byte, 512)
		for {
			_, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			_, _ = conn.WriteTo([]byte{0xde, 0xad, 0xbe}, addr)
		}
	}()

	r := newResolver(conn.LocalAddr().String(), time.Second)
	res, err := r.Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	require.NotNil(t, res.Results.A.Err)
	assert.Equal(t, CodeBadResp, res.Results.A.Err.Code)
	assert.Equal(t, "queryA EBADRESP example.com", res.Results.A.Err.Message)
}

func TestLookup_ConnectionRefused(t *testing.T) {
	// Grab a free port, then close it so nothing listens there.
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := conn.LocalAddr().String()
	require.NoError(t, conn.Close())

	r := newResolver(addr, time.Second)
	res, err := r.Lookup(context.Background(), "example.com")
	require.NoError(t, err)
	require.NotNil(t, res.Results.MX.Err)
	assert.Equal(t, CodeConnRefused, res.Results.MX.Err.Code)
}

func TestExchangeCode(t *testing.T) {
	assert.Equal(t, CodeTimeout, exchangeCode(context.DeadlineExceeded))
	assert.Equal(t, CodeConnRefused, exchangeCode(&net.OpError{Op: "read", Net: "udp", Err: syscall.ECONNREFUSED}))
	assert.Equal(t, CodeBadResp, exchangeCode(dns.ErrShortRead))
	assert.Equal(t, CodeBadResp, exchangeCode(dns.ErrId))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  error
	}{
		{" Example.com ", "example.com", nil},
		{"", "", ErrDomainRequired},
		{"   ", "", ErrDomainRequired},
		{strings.Repeat("a", 256), "", ErrDomainLength},
		{"localhost", "", ErrPrivateDomain},
		{"printer.local", "", ErrPrivateDomain},
		{"db.internal", "", ErrPrivateDomain},
		{"192.168.1.1", "", ErrPrivateDomain},
		{"10.0.0.5", "", ErrPrivateDomain},
		{"172.16.0.1", "", ErrPrivateDomain},
		{"172.31.255.1", "", ErrPrivateDomain},
		{"127.0.0.1", "", ErrPrivateDomain},
		{"172.32.0.1", "172.32.0.1", nil},
		{"bad..name", "", ErrInvalidDomain},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewResolver_AddsDefaultPort(t *testing.T) {
	r := newResolver("9.9.9.9", 0)
	assert.Equal(t, "9.9.9.9:53", r.nameserver)
	assert.Equal(t, DefaultTimeout, r.client.Timeout)
	assert.Equal(t, "tcp", r.tcp.Net)
}
