package util

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/reliefboard/internal/model"
)

// NewProxyFunc creates a proxy function from configuration. Without explicit
// proxy URLs it falls back to the environment.
func NewProxyFunc(cfg model.ProxyConfig) func(*http.Request) (*url.URL, error) {
	if cfg.HTTP == "" && cfg.HTTPS == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && cfg.HTTPS != "" {
			return url.Parse(cfg.HTTPS)
		}
		if cfg.HTTP != "" {
			return url.Parse(cfg.HTTP)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// NewHTTPClient builds the client shared by the upstream and board APIs
func NewHTTPClient(timeout time.Duration, proxy model.ProxyConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(proxy)

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}
}
