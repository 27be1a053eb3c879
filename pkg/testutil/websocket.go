package testutil

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// DialWS connects to path on srv, passing token in the query string.
// The connection is closed when the test ends.
func DialWS(t testing.TB, srv *httptest.Server, path, token string, query url.Values) *websocket.Conn {
	t.Helper()
	conn, _, err := DialWSResponse(srv, path, token, query)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// DialWSResponse is DialWS without the fatal, for asserting rejections
func DialWSResponse(srv *httptest.Server, path, token string, query url.Values) (*websocket.Conn, int, error) {
	if query == nil {
		query = url.Values{}
	}
	if token != "" {
		query.Set(TokenQueryParam, token)
	}
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	return conn, status, err
}

// ReadJSON reads one message into v or fails after timeout
func ReadJSON(t testing.TB, conn *websocket.Conn, v any, timeout time.Duration) {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	if err := conn.ReadJSON(v); err != nil {
		t.Fatalf("read message: %v", err)
	}
}
