package push

import (
	"maps"
	"strconv"
	"strings"

	"github.com/kochabx/webpush/core/crypto/ece"
	"github.com/kochabx/webpush/core/crypto/vapid"
	httpx "github.com/kochabx/webpush/core/net/http"
)

// Request is the HTTP request a push service receives for one notification.
type Request struct {
	Method   string
	Endpoint string
	Header   map[string]string
	Body     []byte
}

// buildRequest assembles headers and body. msg is nil for a push without payload.
func buildRequest(n *Notification, opts Options, authz *vapid.Authorization, msg *ece.Message) *Request {
	enc := n.subscription.Encoding()
	header := map[string]string{
		"TTL":          strconv.FormatInt(opts.TTLSeconds(), 10),
		"Content-Type": httpx.ContentTypeOctetStream,
	}
	if opts.Urgency != "" {
		header["Urgency"] = string(opts.Urgency)
	}
	if opts.Topic != "" {
		header["Topic"] = opts.Topic
	}

	var body []byte
	if msg != nil {
		maps.Copy(header, msg.Headers())
		body = msg.Body
	}
	header["Content-Length"] = strconv.Itoa(len(body))

	for k, v := range authz.Headers(enc) {
		// aesgcm carries dh and p256ecdsa in one Crypto-Key header
		if prev, ok := header[k]; ok && k == "Crypto-Key" {
			v = strings.Join([]string{prev, v}, ";")
		}
		header[k] = v
	}

	return &Request{
		Method:   httpx.MethodPost,
		Endpoint: n.subscription.Endpoint(),
		Header:   header,
		Body:     body,
	}
}
