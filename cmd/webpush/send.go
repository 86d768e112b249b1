package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/kochabx/webpush/core/crypto/vapid"
	"github.com/kochabx/webpush/core/push"
)

// runSend delivers one notification through the dispatcher, so the retry and
// breaker settings apply, and prints the report.
func runSend(ctx context.Context, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("send", pflag.ContinueOnError)
	cfgPath := fs.StringP("config", "c", "", "config file, defaults apply when empty")
	keysPath := fs.StringP("keys", "k", "", "VAPID key pair file written by keygen")
	subject := fs.String("subject", "", "VAPID subject, mailto: or https:")
	subPath := fs.StringP("subscription", "s", "", "subscription JSON file")
	title := fs.StringP("title", "t", "", "notification title, empty sends a push without payload")
	body := fs.StringP("body", "b", "", "notification body")
	icon := fs.String("icon", "", "notification icon URL")
	url := fs.String("url", "", "page to open on click")
	ttl := fs.Duration("ttl", 0, "how long the push service keeps the message")
	urgency := fs.String("urgency", "", "very-low, low, normal or high")
	topic := fs.String("topic", "", "replaces pending messages with the same topic")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *subPath == "" {
		return errors.New("--subscription is required")
	}

	settings, _, err := loadSettings(*cfgPath)
	if err != nil {
		return err
	}
	if *subject != "" {
		settings.VAPID.Subject = *subject
	}
	if err := validateSettings(settings); err != nil {
		return err
	}

	logger, err := newLogger(settings.Log)
	if err != nil {
		return err
	}
	st := newStack(settings, logger)
	defer st.close()

	sub, err := readSubscription(*subPath, settings.Push.Encoding)
	if err != nil {
		return err
	}

	var id *vapid.Identity
	switch {
	case *keysPath != "":
		kp, err := readKeyPair(*keysPath)
		if err != nil {
			return fmt.Errorf("read keys: %w", err)
		}
		id = vapid.NewIdentity(settings.VAPID.Identity, kp)
	case settings.VAPID.KeyStore == "memory":
		return errors.New("no VAPID keys: pass --keys or configure vapid.key_store")
	default:
		if id, err = st.identity(ctx); err != nil {
			return err
		}
	}

	var payload []byte
	if *title != "" {
		var opts []push.MessageOption
		if *body != "" {
			opts = append(opts, push.WithBody(*body))
		}
		if *icon != "" {
			opts = append(opts, push.WithIcon(*icon))
		}
		if *url != "" {
			opts = append(opts, push.WithURL(*url))
		}
		if payload, err = push.NewMessage(*title, opts...).Bytes(); err != nil {
			return err
		}
	}

	var nopts []push.NotificationOption
	if fs.Changed("ttl") {
		nopts = append(nopts, push.WithTTL(*ttl))
	}
	if *urgency != "" {
		nopts = append(nopts, push.WithUrgency(push.Urgency(*urgency)))
	}
	if *topic != "" {
		nopts = append(nopts, push.WithTopic(*topic))
	}
	n, err := push.NewNotification(sub, payload, nopts...)
	if err != nil {
		return err
	}

	pusher, err := st.pusher(id)
	if err != nil {
		return err
	}
	d, err := st.dispatcher(pusher, nil, nil)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Queue(n); err != nil {
		return err
	}
	reports, err := d.Flush(ctx)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return errors.New("no report")
	}

	report := reports[0]
	if err := json.NewEncoder(stdout).Encode(report); err != nil {
		return err
	}
	return report.Err()
}

// readSubscription loads the browser JSON. A missing contentEncoding takes
// the configured default.
func readSubscription(path, encoding string) (*push.Subscription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var w push.SubscriptionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("subscription json: %w", err)
	}
	if w.ContentEncoding == "" {
		w.ContentEncoding = encoding
	}
	return w.Subscription()
}
