package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kochabx/webpush/core/crypto/vapid"
	"github.com/kochabx/webpush/core/push"
	"github.com/kochabx/webpush/core/rate"
	"github.com/kochabx/webpush/core/validator"
	"github.com/kochabx/webpush/errors"
	"github.com/kochabx/webpush/log"
	httpx "github.com/kochabx/webpush/transport/http"
	"github.com/kochabx/webpush/transport/http/middleware"
)

const BasePath = "/webpush"

// Queuer accepts notifications for asynchronous delivery.
type Queuer interface {
	Queue(ns ...*push.Notification) error
}

// WebPush serves the application server side of the subscribe flow: it hands
// out the VAPID public key, keeps subscriptions per owner and queues
// notifications to them.
type WebPush struct {
	identity *vapid.Identity
	store    push.SubscriptionStore
	queue    Queuer
	limiter  rate.Limiter
	logger   *log.Logger
}

type Option func(*WebPush)

// WithLimiter caps how often one owner may send notifications.
func WithLimiter(limiter rate.Limiter) Option {
	return func(h *WebPush) {
		h.limiter = limiter
	}
}

// WithLogger sets the logger, log.G by default.
func WithLogger(logger *log.Logger) Option {
	return func(h *WebPush) {
		h.logger = logger
	}
}

func NewWebPush(identity *vapid.Identity, store push.SubscriptionStore, queue Queuer, opts ...Option) *WebPush {
	h := &WebPush{
		identity: identity,
		store:    store,
		queue:    queue,
		logger:   log.G,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the routes. The public key route is served without
// authentication; the others need the middleware.Auth owner.
func (h *WebPush) Register(public, private gin.IRoutes) {
	public.GET(BasePath+"/vapid", h.PublicKey)

	private.POST(BasePath+"/subscriptions", h.Subscribe)
	private.GET(BasePath+"/subscriptions", h.Subscriptions)
	private.DELETE(BasePath+"/subscriptions", h.Unsubscribe)
	private.POST(BasePath+"/notifications", h.Notify)
}

type publicKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

// PublicKey returns the applicationServerKey for pushManager.subscribe.
func (h *WebPush) PublicKey(c *gin.Context) {
	kp := h.identity.Keys()
	if kp == nil {
		httpx.GinError(c, errors.ServiceUnavailable("vapid identity %q has no keys", h.identity.Name()))
		return
	}
	httpx.GinJSON(c, &publicKeyResponse{PublicKey: kp.PublicKeyString()})
}

// Subscribe stores the browser's PushSubscription for the caller.
func (h *WebPush) Subscribe(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req push.SubscriptionJSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.GinError(c, errors.BadRequest("invalid subscription").WithCause(err))
		return
	}
	sub, err := req.Subscription()
	if err != nil {
		httpx.GinError(c, errors.BadRequest("%s", message(err)).WithCause(err))
		return
	}
	// 浏览器订阅必须携带密钥, 否则后续无法加密推送内容
	if !sub.HasKeys() {
		httpx.GinError(c, errors.BadRequest("subscription keys are required"))
		return
	}

	if err := h.store.Save(c.Request.Context(), owner, sub); err != nil {
		httpx.GinError(c, err)
		return
	}
	httpx.GinStatus(c, 201, sub.JSON())
}

// Subscriptions lists the caller's subscriptions.
func (h *WebPush) Subscriptions(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	subs, err := h.store.List(c.Request.Context(), owner)
	if err != nil {
		httpx.GinError(c, err)
		return
	}
	items := make([]*push.SubscriptionJSON, 0, len(subs))
	for _, sub := range subs {
		items = append(items, sub.JSON())
	}
	httpx.GinJSON(c, items)
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint" validate:"required,http_url"`
}

// Unsubscribe deletes one of the caller's subscriptions by endpoint.
func (h *WebPush) Unsubscribe(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	var req unsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.GinError(c, errors.BadRequest("invalid request").WithCause(err))
		return
	}
	if err := validator.Validate.Struct(&req); err != nil {
		httpx.GinError(c, errors.BadRequest("%s", err.Error()).WithCause(err))
		return
	}

	ctx := c.Request.Context()
	subs, err := h.store.List(ctx, owner)
	if err != nil {
		httpx.GinError(c, err)
		return
	}
	if !owns(subs, req.Endpoint) {
		httpx.GinError(c, errors.NotFound("subscription not found"))
		return
	}
	if err := h.store.Delete(ctx, req.Endpoint); err != nil {
		httpx.GinError(c, err)
		return
	}
	httpx.GinJSON(c, nil)
}

type notifyRequest struct {
	Title   string              `json:"title" validate:"required,max=256"`
	Options push.MessageOptions `json:"options"`
	// TTL in seconds, the sender default when omitted
	TTL     *int64 `json:"ttl,omitempty" validate:"omitempty,gte=0"`
	Urgency string `json:"urgency,omitempty" validate:"omitempty,oneof=very-low low normal high"`
	Topic   string `json:"topic,omitempty" validate:"omitempty,max=32"`
}

type notifyResponse struct {
	Queued  int `json:"queued"`
	Skipped int `json:"skipped"`
}

// Notify queues a notification to every subscription of the caller.
// Subscriptions that cannot carry the payload are skipped.
func (h *WebPush) Notify(c *gin.Context) {
	owner, ok := h.owner(c)
	if !ok {
		return
	}

	if h.limiter != nil {
		ok, err := h.limiter.Allow(c.Request.Context(), owner)
		if err != nil {
			// 限流存储不可用时放行, 只记录日志
			h.logger.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !ok {
			httpx.GinError(c, errors.TooManyRequests("too many notifications"))
			return
		}
	}

	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.GinError(c, errors.BadRequest("invalid request").WithCause(err))
		return
	}
	if err := validator.Validate.Struct(&req); err != nil {
		httpx.GinError(c, errors.BadRequest("%s", err.Error()).WithCause(err))
		return
	}

	payload, err := (&push.Message{Title: req.Title, Options: req.Options}).Bytes()
	if err != nil {
		httpx.GinError(c, errors.BadRequest("invalid notification options").WithCause(err))
		return
	}
	var opts []push.NotificationOption
	if req.TTL != nil {
		opts = append(opts, push.WithTTL(time.Duration(*req.TTL)*time.Second))
	}
	if req.Urgency != "" {
		opts = append(opts, push.WithUrgency(push.Urgency(req.Urgency)))
	}
	if req.Topic != "" {
		opts = append(opts, push.WithTopic(req.Topic))
	}

	subs, err := h.store.List(c.Request.Context(), owner)
	if err != nil {
		httpx.GinError(c, err)
		return
	}

	resp := &notifyResponse{}
	ns := make([]*push.Notification, 0, len(subs))
	for _, sub := range subs {
		n, err := push.NewNotification(sub, payload, opts...)
		if err != nil {
			if errors.Is(err, push.ErrMissingCredential) {
				resp.Skipped++
				continue
			}
			httpx.GinError(c, err)
			return
		}
		ns = append(ns, n)
	}
	if err := h.queue.Queue(ns...); err != nil {
		httpx.GinError(c, errors.ServiceUnavailable("dispatcher unavailable").WithCause(err))
		return
	}
	resp.Queued = len(ns)

	h.logger.Info().
		Str("request_id", middleware.RequestID(c.Request.Context())).
		Int("queued", resp.Queued).
		Int("skipped", resp.Skipped).
		Msg("notifications queued")
	httpx.GinStatus(c, 202, resp)
}

func (h *WebPush) owner(c *gin.Context) (string, bool) {
	owner, err := middleware.Owner(c.Request.Context())
	if err != nil || owner == "" {
		httpx.GinError(c, middleware.ErrorUnauthorized)
		return "", false
	}
	return owner, true
}

func owns(subs []*push.Subscription, endpoint string) bool {
	for _, sub := range subs {
		if sub.Endpoint() == endpoint {
			return true
		}
	}
	return false
}

// message returns the cause text of an invalid argument, which names the
// offending field without echoing key material.
func message(err error) string {
	if cause := errors.FromError(err).GetCause(); cause != nil {
		return cause.Error()
	}
	return "invalid subscription"
}
