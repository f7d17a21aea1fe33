package netbind

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialerUnbound(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	d := &Dialer{Timeout: time.Second}
	conn, err := d.DialContext(context.Background(), "tcp", ln.Addr().String())
	require.NoError(t, err)
	conn.Close()
}

func TestDialerBoundToMissingInterface(t *testing.T) {
	// Fails everywhere: on Linux the setsockopt needs privileges and
	// the device does not exist, elsewhere binding is unsupported.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	d := &Dialer{Iface: "lwtest-missing0", Timeout: time.Second}
	_, err = d.DialContext(context.Background(), "tcp", ln.Addr().String())
	assert.Error(t, err)
}

func TestHTTPClientUnbound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "203.0.113.7")
	}))
	defer srv.Close()

	client := HTTPClient("", 2*time.Second)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.7", string(body))
}

func TestLinkStateString(t *testing.T) {
	assert.Equal(t, "missing", LinkMissing.String())
	assert.Equal(t, "down", LinkDown.String())
	assert.Equal(t, "up", LinkUp.String())
	assert.Equal(t, "unknown", LinkUnknown.String())
}
