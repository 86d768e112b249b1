// Package pushtest provides a user agent and a push service for tests.
package pushtest

import (
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kochabx/webpush/core/crypto/ecc"
	"github.com/kochabx/webpush/core/crypto/ece"
	"github.com/kochabx/webpush/core/crypto/vapid"
	"github.com/kochabx/webpush/core/push"
)

// Subscriber is the user agent end of a subscription.
type Subscriber struct {
	Key  *ecc.PrivateKey
	Auth []byte
}

// NewSubscriber generates a subscriber key and a random auth secret.
func NewSubscriber(t testing.TB) *Subscriber {
	t.Helper()
	key, err := ecc.GenerateKey()
	if err != nil {
		t.Fatalf("generate subscriber key: %v", err)
	}
	auth := make([]byte, ece.AuthSecretSize)
	if _, err := rand.Read(auth); err != nil {
		t.Fatalf("generate auth secret: %v", err)
	}
	return &Subscriber{Key: key, Auth: auth}
}

// Keys returns p256dh and auth as a browser would send them.
func (s *Subscriber) Keys() (p256dh, auth string) {
	return base64.RawURLEncoding.EncodeToString(s.Key.Public().Bytes()),
		base64.RawURLEncoding.EncodeToString(s.Auth)
}

// Subscription builds an aes128gcm subscription for endpoint.
func (s *Subscriber) Subscription(t testing.TB, endpoint string) *push.Subscription {
	t.Helper()
	p256dh, auth := s.Keys()
	sub, err := push.NewSubscription(endpoint, push.WithKeys(p256dh, auth))
	if err != nil {
		t.Fatalf("new subscription: %v", err)
	}
	return sub
}

// Decrypt opens an aes128gcm request body.
func (s *Subscriber) Decrypt(t testing.TB, body []byte) []byte {
	t.Helper()
	plaintext, err := ece.Decrypt(s.Key, s.Auth, &ece.Message{Encoding: ece.AES128GCM, Body: body})
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	return plaintext
}

// NewAuth returns VAPID auth with a fresh identity.
func NewAuth(t testing.TB) *vapid.Auth {
	t.Helper()
	kp, err := vapid.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate vapid keys: %v", err)
	}
	return &vapid.Auth{Subject: "mailto:ops@example.com", Identity: vapid.NewIdentity("test", kp)}
}

// Received is one request seen by a Service.
type Received struct {
	Path   string
	Header http.Header
	Body   []byte
}

// Responder picks the status for the attempt-th request (1-based) on path.
type Responder func(path string, attempt int) int

// Service is a recording push service. Requests are answered 201 unless a
// Responder says otherwise.
type Service struct {
	*httptest.Server

	mu        sync.Mutex
	received  []Received
	attempts  map[string]int
	responder Responder
}

// NewService starts a service that is closed with the test.
func NewService(t testing.TB, responder Responder) *Service {
	t.Helper()
	s := &Service{attempts: make(map[string]int), responder: responder}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *Service) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.received = append(s.received, Received{Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
	s.attempts[r.URL.Path]++
	attempt := s.attempts[r.URL.Path]
	s.mu.Unlock()

	status := http.StatusCreated
	if s.responder != nil {
		status = s.responder(r.URL.Path, attempt)
	}
	w.WriteHeader(status)
}

// Endpoint returns a subscription endpoint on the service.
func (s *Service) Endpoint(id string) string {
	return s.URL + "/push/" + id
}

// Requests returns a copy of everything received so far.
func (s *Service) Requests() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Received(nil), s.received...)
}

// Attempts returns how many requests reached path.
func (s *Service) Attempts(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[path]
}
