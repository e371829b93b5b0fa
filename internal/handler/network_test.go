package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/andres10976/ssl-toolbox/backend/internal/model"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/dnslookup"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/netprobe"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/sslcheck"
)

type mockSSLChecker struct {
	checkFn func(ctx context.Context, target string, port int) (*model.SSLCheckResult, error)
}

func (m *mockSSLChecker) Check(ctx context.Context, target string, port int) (*model.SSLCheckResult, error) {
	return m.checkFn(ctx, target, port)
}

type mockPortScanner struct {
	scanFn func(ctx context.Context, host string, port int) (*model.PortScanResult, error)
}

func (m *mockPortScanner) Scan(ctx context.Context, host string, port int) (*model.PortScanResult, error) {
	return m.scanFn(ctx, host, port)
}

type mockDNSResolver struct {
	lookupFn func(ctx context.Context, domain string) (*model.DNSLookupResult, error)
}

func (m *mockDNSResolver) Lookup(ctx context.Context, domain string) (*model.DNSLookupResult, error) {
	return m.lookupFn(ctx, domain)
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestSSLCheck_DefaultPort(t *testing.T) {
	h := NewSSLHandler(&mockSSLChecker{
		checkFn: func(ctx context.Context, target string, port int) (*model.SSLCheckResult, error) {
			if target != "https://example.com/path" {
				t.Errorf("target = %q", target)
			}
			if port != sslcheck.DefaultPort {
				t.Errorf("port = %d, want %d", port, sslcheck.DefaultPort)
			}
			return &model.SSLCheckResult{Hostname: "example.com", Port: port, Authorized: true, Valid: true}, nil
		},
	})

	rec := post(h.Check, `{"url":"https://example.com/path"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var res model.SSLCheckResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if res.Hostname != "example.com" || !res.Authorized {
		t.Errorf("result = %+v", res)
	}
}

func TestSSLCheck_ExplicitPort(t *testing.T) {
	h := NewSSLHandler(&mockSSLChecker{
		checkFn: func(ctx context.Context, target string, port int) (*model.SSLCheckResult, error) {
			if port != 8443 {
				t.Errorf("port = %d, want 8443", port)
			}
			return &model.SSLCheckResult{}, nil
		},
	})

	if rec := post(h.Check, `{"url":"example.com","port":8443}`); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestSSLCheck_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"blocked", netprobe.ErrPrivateNetwork, http.StatusBadRequest, "Access to private/internal networks is not allowed"},
		{"url required", sslcheck.ErrURLRequired, http.StatusBadRequest, "URL is required"},
		{"timeout", &netprobe.Error{Code: netprobe.CodeTimeout, Message: "Connection timeout"}, http.StatusInternalServerError, "Connection timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSSLHandler(&mockSSLChecker{
				checkFn: func(ctx context.Context, target string, port int) (*model.SSLCheckResult, error) {
					return nil, tt.err
				},
			})

			rec := post(h.Check, `{"url":"x"}`)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decodeError(t, rec).Error; got != tt.msg {
				t.Errorf("error = %q, want %q", got, tt.msg)
			}
		})
	}
}

func TestScanPort_Success(t *testing.T) {
	h := NewPortHandler(&mockPortScanner{
		scanFn: func(ctx context.Context, host string, port int) (*model.PortScanResult, error) {
			return &model.PortScanResult{Host: host, Port: port, IsOpen: false, ServiceName: "HTTPS", ErrorType: "ECONNREFUSED"}, nil
		},
	})

	rec := post(h.Scan, `{"host":"example.com","port":443}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var res model.PortScanResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if res.IsOpen || res.ErrorType != "ECONNREFUSED" || res.ServiceName != "HTTPS" {
		t.Errorf("result = %+v", res)
	}
}

func TestScanPort_MissingFields(t *testing.T) {
	h := NewPortHandler(&mockPortScanner{
		scanFn: func(ctx context.Context, host string, port int) (*model.PortScanResult, error) {
			t.Error("scanner should not be called")
			return nil, nil
		},
	})

	for _, body := range []string{`{"host":"example.com"}`, `{"port":22}`, `{"host":"  ","port":22}`} {
		rec := post(h.Scan, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
		if got := decodeError(t, rec).Error; got != "Host and port are required" {
			t.Errorf("%s: error = %q", body, got)
		}
	}
}

func TestScanPort_InvalidPort(t *testing.T) {
	h := NewPortHandler(&mockPortScanner{
		scanFn: func(ctx context.Context, host string, port int) (*model.PortScanResult, error) {
			return nil, netprobe.ErrInvalidPort
		},
	})

	rec := post(h.Scan, `{"host":"example.com","port":70000}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDNSLookup(t *testing.T) {
	h := NewDNSHandler(&mockDNSResolver{
		lookupFn: func(ctx context.Context, domain string) (*model.DNSLookupResult, error) {
			if domain == "localhost" {
				return nil, dnslookup.ErrPrivateDomain
			}
			return &model.DNSLookupResult{
				Success: true,
				Domain:  domain,
				Results: model.DNSRecords{
					A:  model.RecordSlot[[]string]{Records: []string{"93.184.216.34"}},
					MX: model.RecordSlot[[]model.MXRecord]{Err: &model.RecordError{Code: "ENODATA", Message: "queryMx ENODATA " + domain}},
				},
			}, nil
		},
	})

	rec := post(h.Lookup, `{"domain":"example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body struct {
		Results map[string]json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if got := string(body.Results["A"]); got != `["93.184.216.34"]` {
		t.Errorf("A = %s", got)
	}
	if got := string(body.Results["MX"]); got != `{"error":"ENODATA","message":"queryMx ENODATA example.com"}` {
		t.Errorf("MX = %s", got)
	}

	rec = post(h.Lookup, `{"domain":"localhost"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRegisterRoutes_Network(t *testing.T) {
	r := chi.NewRouter()
	NewSSLHandler(&mockSSLChecker{checkFn: func(ctx context.Context, target string, port int) (*model.SSLCheckResult, error) {
		return &model.SSLCheckResult{}, nil
	}}).RegisterRoutes(r)
	NewPortHandler(&mockPortScanner{scanFn: func(ctx context.Context, host string, port int) (*model.PortScanResult, error) {
		return &model.PortScanResult{}, nil
	}}).RegisterRoutes(r)
	NewDNSHandler(&mockDNSResolver{lookupFn: func(ctx context.Context, domain string) (*model.DNSLookupResult, error) {
		return &model.DNSLookupResult{}, nil
	}}).RegisterRoutes(r)

	for path, body := range map[string]string{
		"/check-ssl":  `{"url":"example.com"}`,
		"/scan-port":  `{"host":"example.com","port":443}`,
		"/dns-lookup": `{"domain":"example.com"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("POST %s status = %d, want %d", path, rec.Code, http.StatusOK)
		}
	}
}
