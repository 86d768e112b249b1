// Package push turns subscriptions and payloads into push service requests.
//
// A Subscription is the browser's PushSubscription, validated at construction.
// A Notification pairs it with an optional payload and delivery options.
// Pusher encrypts the payload (package ece), signs a VAPID token (package vapid),
// performs one HTTP attempt and summarizes the outcome in a Report. Retries and
// batching live in package dispatch.
package push
