// Package server assembles the HTTP API and runs it until its context ends.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/andres10976/ssl-toolbox/backend/internal/config"
	"github.com/andres10976/ssl-toolbox/backend/internal/handler"
	"github.com/andres10976/ssl-toolbox/backend/internal/middleware"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/dnslookup"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/netprobe"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/portscan"
	"github.com/andres10976/ssl-toolbox/backend/internal/service/sslcheck"
)

const (
	compressLevel   = 6
	rateCleanup     = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	cfg     *config.Config
	log     logrus.FieldLogger
	limiter *middleware.RateLimiter
	handler http.Handler
}

// New wires the services, handlers and middleware described by cfg.
func New(cfg *config.Config, log logrus.FieldLogger, version string) *Server {
	guard := netprobe.NewGuard(cfg.AllowPrivateTargets)
	s := &Server{
		cfg:     cfg,
		log:     log,
		limiter: middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, rateCleanup),
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	s.handler = s.routes(routeDeps{
		ssl:       handler.NewSSLHandler(sslcheck.NewChecker(guard, cfg.TLSTimeout, log)),
		port:      handler.NewPortHandler(portscan.NewScanner(guard, cfg.PortTimeout, log)),
		dns:       handler.NewDNSHandler(dnslookup.NewResolver(cfg.DNSNameserver, cfg.DNSTimeout, log)),
		cert:      handler.NewCertificateHandler(time.Now),
		converter: handler.NewConverterHandler(time.Now, cfg.Location()),
		health:    handler.NewHealthHandler(version, time.Now),
		reg:       reg,
	})
	return s
}

type routeDeps struct {
	ssl       *handler.SSLHandler
	port      *handler.PortHandler
	dns       *handler.DNSHandler
	cert      *handler.CertificateHandler
	converter *handler.ConverterHandler
	health    *handler.HealthHandler
	reg       *prometheus.Registry
}

func (s *Server) routes(d routeDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.cfg.TrustProxyHeaders {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(middleware.Logger(s.log))
	r.Use(middleware.Recovery(s.log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chiMiddleware.Compress(compressLevel))
	r.Use(middleware.CORS(s.cfg.CORSOrigins...))
	r.Use(middleware.NewMetrics(d.reg).Handler)

	d.health.RegisterRoutes(r)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.reg, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Use(s.limiter.Handler)

		d.ssl.RegisterRoutes(r)
		d.port.RegisterRoutes(r)
		d.dns.RegisterRoutes(r)
		d.cert.RegisterRoutes(r)
		d.converter.RegisterRoutes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})
	return r
}

func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then gives in-flight requests time to
// complete.
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
