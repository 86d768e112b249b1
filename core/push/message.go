package push

import "encoding/json"

// Message is the payload the service worker passes to showNotification:
// {"title": ..., "options": {...}}.
type Message struct {
	Title   string         `json:"title"`
	Options MessageOptions `json:"options"`
}

// MessageOptions mirrors the NotificationOptions dictionary.
type MessageOptions struct {
	Body               string         `json:"body,omitempty"`
	Icon               string         `json:"icon,omitempty"`
	Badge              string         `json:"badge,omitempty"`
	Image              string         `json:"image,omitempty"`
	Tag                string         `json:"tag,omitempty"`
	Lang               string         `json:"lang,omitempty"`
	Dir                string         `json:"dir,omitempty"`
	Renotify           bool           `json:"renotify,omitempty"`
	RequireInteraction bool           `json:"requireInteraction,omitempty"`
	Silent             bool           `json:"silent,omitempty"`
	Timestamp          int64          `json:"timestamp,omitempty"`
	Vibrate            []int          `json:"vibrate,omitempty"`
	Actions            []Action       `json:"actions,omitempty"`
	Data               map[string]any `json:"data,omitempty"`
}

// Action is a notification button.
type Action struct {
	Action string `json:"action"`
	Title  string `json:"title"`
	Icon   string `json:"icon,omitempty"`
}

// MessageOption configures NewMessage.
type MessageOption func(*MessageOptions)

func WithBody(body string) MessageOption {
	return func(o *MessageOptions) { o.Body = body }
}

func WithIcon(icon string) MessageOption {
	return func(o *MessageOptions) { o.Icon = icon }
}

func WithBadge(badge string) MessageOption {
	return func(o *MessageOptions) { o.Badge = badge }
}

func WithImage(image string) MessageOption {
	return func(o *MessageOptions) { o.Image = image }
}

// WithTag groups notifications so a newer one replaces an older one.
func WithTag(tag string, renotify bool) MessageOption {
	return func(o *MessageOptions) {
		o.Tag = tag
		o.Renotify = renotify
	}
}

func WithRequireInteraction() MessageOption {
	return func(o *MessageOptions) { o.RequireInteraction = true }
}

func WithSilent() MessageOption {
	return func(o *MessageOptions) { o.Silent = true }
}

func WithActions(actions ...Action) MessageOption {
	return func(o *MessageOptions) { o.Actions = append(o.Actions, actions...) }
}

// WithData attaches a value the service worker can read on click.
func WithData(key string, value any) MessageOption {
	return func(o *MessageOptions) {
		if o.Data == nil {
			o.Data = make(map[string]any)
		}
		o.Data[key] = value
	}
}

// WithURL stores the page to open on click under data.url.
func WithURL(url string) MessageOption {
	return WithData("url", url)
}

// NewMessage builds a service worker payload.
func NewMessage(title string, opts ...MessageOption) *Message {
	m := &Message{Title: title}
	for _, opt := range opts {
		opt(&m.Options)
	}
	return m
}

// Bytes encodes the message as JSON.
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}
