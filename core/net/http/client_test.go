package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", ContentTypeJSON)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"method":        r.Method,
			"contentType":   r.Header.Get("Content-Type"),
			"contentLength": r.ContentLength,
			"body":          string(body),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

type echo struct {
	Method        string `json:"method"`
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
	Body          string `json:"body"`
}

func TestRequestBodies(t *testing.T) {
	srv := echoServer(t)
	cli := New()

	tests := []struct {
		name        string
		body        any
		header      map[string]string
		contentType string
		want        string
	}{
		{"json", map[string]string{"a": "b"}, nil, ContentTypeJSON, "{\"a\":\"b\"}\n"},
		{"bytes", []byte{0x01, 0x02}, map[string]string{"Content-Type": ContentTypeOctetStream}, ContentTypeOctetStream, "\x01\x02"},
		{"reader", strings.NewReader("plain"), map[string]string{"Content-Type": ContentTypeText}, ContentTypeText, "plain"},
		{"nil", nil, nil, ContentTypeJSON, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got echo
			_, err := cli.Request(MethodPost, srv.URL, tt.body, WithHeader(tt.header), WithResponse(&got))
			require.NoError(t, err)
			assert.Equal(t, MethodPost, got.Method)
			assert.Equal(t, tt.contentType, got.ContentType)
			assert.Equal(t, tt.want, got.Body)
			assert.Equal(t, int64(len(tt.want)), got.ContentLength)
		})
	}
}

func TestPooledOptionsReset(t *testing.T) {
	srv := echoServer(t)
	cli := New()

	var first, second echo
	_, err := cli.Post(srv.URL, []byte("x"), WithHeader(map[string]string{"Content-Type": ContentTypeOctetStream}), WithResponse(&first))
	require.NoError(t, err)
	_, err = cli.Post(srv.URL, map[string]int{"n": 1}, WithResponse(&second))
	require.NoError(t, err)

	assert.Equal(t, ContentTypeOctetStream, first.ContentType)
	assert.Equal(t, ContentTypeJSON, second.ContentType)
}

func TestConvenienceMethods(t *testing.T) {
	srv := echoServer(t)
	cli := New()

	var got echo
	_, err := cli.Get(srv.URL, WithResponse(&got))
	require.NoError(t, err)
	assert.Equal(t, MethodGet, got.Method)

	_, err = cli.Delete(srv.URL, WithResponse(&got))
	require.NoError(t, err)
	assert.Equal(t, MethodDelete, got.Method)
}

func TestRawResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	t.Cleanup(srv.Close)

	resp, err := New().Post(srv.URL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}

func TestContextAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := New().Get(srv.URL, WithContext(ctx))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = New(WithTimeout(20 * time.Millisecond)).Get(srv.URL)
	assert.Error(t, err)
}

func TestWithClient(t *testing.T) {
	srv := echoServer(t)
	cli := New(WithClient(srv.Client()), WithTransport(srv.Client().Transport))

	var got echo
	_, err := cli.Get(srv.URL, WithResponse(&got))
	require.NoError(t, err)
	assert.Equal(t, MethodGet, got.Method)
}
