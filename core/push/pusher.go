package push

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kochabx/webpush/core/crypto/ece"
	"github.com/kochabx/webpush/core/crypto/vapid"
	httpx "github.com/kochabx/webpush/core/net/http"
	"github.com/kochabx/webpush/core/util/desensitize"
	"github.com/kochabx/webpush/log"
)

// maxReasonBody bounds how much of an error response is kept as the reason.
const maxReasonBody = 512

// Sender performs one delivery attempt.
type Sender interface {
	Send(ctx context.Context, n *Notification) (*Report, error)
}

// Pusher encrypts, signs and sends notifications. It is safe for concurrent use.
type Pusher struct {
	client   httpx.Clienter
	auth     *vapid.Auth
	defaults Options
	padding  int
	timeout  time.Duration
	logger   *log.Logger
}

// Option configures a Pusher.
type Option func(*Pusher)

// WithClient sets the transport.
func WithClient(client httpx.Clienter) Option {
	return func(p *Pusher) {
		p.client = client
	}
}

// WithDefaultAuth sets the VAPID auth used when a notification carries none.
func WithDefaultAuth(auth *vapid.Auth) Option {
	return func(p *Pusher) {
		p.auth = auth
	}
}

// WithDefaults sets the options unset notification fields fall back to.
func WithDefaults(o Options) Option {
	return func(p *Pusher) {
		p.defaults = o
	}
}

// WithPadding adds n zero bytes of padding to every payload, within the record limit.
func WithPadding(n int) Option {
	return func(p *Pusher) {
		p.padding = n
	}
}

// WithTimeout bounds each attempt. Zero leaves the caller's context alone.
func WithTimeout(d time.Duration) Option {
	return func(p *Pusher) {
		p.timeout = d
	}
}

// WithLogger sets the logger, log.G by default.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pusher) {
		p.logger = logger
	}
}

// New creates a Pusher.
func New(opts ...Option) (*Pusher, error) {
	p := &Pusher{
		defaults: DefaultOptions(),
		logger:   log.G,
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.defaults.Validate(); err != nil {
		return nil, err
	}
	if p.padding < 0 {
		return nil, invalidArgument(fmt.Errorf("padding %d is negative", p.padding))
	}
	if p.client == nil {
		p.client = httpx.New()
	}
	return p, nil
}

// Prepare encrypts the payload and signs the request. Every call draws a new
// salt and ephemeral key, so a prepared request must not be reused across attempts.
func (p *Pusher) Prepare(n *Notification) (*Request, error) {
	if n == nil {
		return nil, invalidArgument(fmt.Errorf("notification is nil"))
	}
	sub := n.Subscription()

	authz, err := n.Auth(p.auth).Authorize(sub.Endpoint())
	if err != nil {
		return nil, classify(err)
	}

	var msg *ece.Message
	if n.HasPayload() {
		msg, err = ece.Encrypt(sub.PublicKey(), sub.Auth(), n.payload, sub.Encoding(), ece.WithPadding(p.padding))
		if err != nil {
			return nil, classify(err)
		}
	}

	return buildRequest(n, n.Resolve(p.defaults), authz, msg), nil
}

// Send performs one attempt. Errors building the request are returned without a
// report; every transport outcome, including no response at all, yields a report.
func (p *Pusher) Send(ctx context.Context, n *Notification) (*Report, error) {
	req, err := p.Prepare(n)
	if err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	logger := p.logger.With().Str("endpoint", desensitize.Endpoint(req.Endpoint, 6)).Logger()

	resp, err := p.client.Request(req.Method, req.Endpoint, req.Body,
		httpx.WithContext(ctx),
		httpx.WithHeader(req.Header),
	)
	if err != nil {
		report := NewFailureReport(req.Endpoint, err)
		report.Payload = req.Body
		logger.Warn().Err(err).Msg("push request failed")
		return report, nil
	}
	defer resp.Body.Close()

	report := NewReport(req.Endpoint, resp.StatusCode, "")
	report.Payload = req.Body
	report.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	if !report.Success {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxReasonBody))
		if s := strings.TrimSpace(string(text)); s != "" {
			report.Reason += ": " + s
		}
	}

	switch {
	case report.Success:
		logger.Debug().Int("status", report.StatusCode).Msg("push delivered")
	case report.Expired:
		logger.Info().Int("status", report.StatusCode).Msg("push subscription expired")
	default:
		logger.Warn().Int("status", report.StatusCode).Str("reason", report.Reason).Msg("push rejected")
	}

	return report, nil
}

// parseRetryAfter accepts delay seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}
