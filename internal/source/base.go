package source

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/beesafe/broodwatch/internal/config"
	"github.com/beesafe/broodwatch/internal/corridor"
)

// Source is implemented by every brood temperature sample provider.
type Source interface {
	// Samples returns the series in the order the provider holds it.
	Samples(ctx context.Context) ([]corridor.Sample, error)
}

// SeriesSource is implemented by providers that also carry the multi-sensor
// columns needed by corridor.ValidateSeries.
type SeriesSource interface {
	ThermalSamples(ctx context.Context) ([]corridor.ThermalSample, error)
}

// New returns the Source for the given configuration.
// The HTTP client for endpoint sources is built once and reused.
func New(src config.Source) (Source, error) {
	switch src.Type {
	case "demo", "":
		return &demoSource{now: time.Now}, nil
	case "csv":
		return &csvSource{path: src.Path}, nil
	case "prometheus":
		var client *http.Client
		if src.Endpoint != "" {
			client = buildHTTPClient(src)
		}
		return &promSource{src: src, client: client, now: time.Now}, nil
	default:
		return nil, fmt.Errorf("source: unsupported type %q", src.Type)
	}
}

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	auth config.AuthConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.auth.Header, t.auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.auth.Token())
	case "basic":
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.auth.Username, t.auth.Password())
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs an http.Client for the source's auth and TLS settings.
func buildHTTPClient(src config.Source) *http.Client {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: src.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return &http.Client{
		Transport: &authRoundTripper{
			base: &http.Transport{TLSClientConfig: tlsCfg},
			auth: src.Auth,
		},
		Timeout: timeout,
	}
}
