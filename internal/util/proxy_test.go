package util

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/reliefboard/internal/model"
)

func TestNewProxyFunc_SchemeSelection(t *testing.T) {
	fn := NewProxyFunc(model.ProxyConfig{HTTP: "http://plain:8080", HTTPS: "http://secure:8443"})

	req := &http.Request{URL: &url.URL{Scheme: "https", Host: "api.trello.com"}}
	u, err := fn(req)
	require.NoError(t, err)
	assert.Equal(t, "secure:8443", u.Host)

	req = &http.Request{URL: &url.URL{Scheme: "http", Host: "reliefweb.int"}}
	u, err = fn(req)
	require.NoError(t, err)
	assert.Equal(t, "plain:8080", u.Host)
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(5*time.Second, model.ProxyConfig{})
	assert.Equal(t, 5*time.Second, c.Timeout)
	require.NotNil(t, c.CheckRedirect)
	assert.Error(t, c.CheckRedirect(nil, make([]*http.Request, 3)))
}
