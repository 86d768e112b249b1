package push

import (
	"github.com/kochabx/webpush/core/crypto/ecc"
	"github.com/kochabx/webpush/core/crypto/ece"
	"github.com/kochabx/webpush/core/crypto/vapid"
	"github.com/kochabx/webpush/errors"
)

var (
	// ErrInvalidArgument indicates malformed input: bad key encoding, unsupported
	// content encoding, oversized payload, bad options
	ErrInvalidArgument = errors.BadRequest("invalid argument")

	// ErrMissingCredential indicates a payload without subscriber keys, or a
	// request without a VAPID identity
	ErrMissingCredential = errors.UnprocessableEntity("missing credential")

	// ErrSubscriptionExpired indicates that the push service reported 404 or 410
	ErrSubscriptionExpired = errors.Gone("subscription expired")

	// ErrTransportFailure indicates any other unsuccessful delivery attempt
	ErrTransportFailure = errors.BadGateway("transport failure")
)

// Arithmetic failures surface unchanged from package ecc.
var (
	ErrInvalidOperand = ecc.ErrInvalidOperand
	ErrInvalidPoint   = ecc.ErrInvalidPoint
)

func invalidArgument(cause error) error {
	return ErrInvalidArgument.WithCause(cause)
}

// classify maps crypto failures onto the package taxonomy. The cause chain is
// kept so errors.Is still matches the ecc, ece and vapid sentinels.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrMissingCredential):
		return err
	case errors.Is(err, ece.ErrMissingKey), errors.Is(err, vapid.ErrIdentityEmpty):
		return ErrMissingCredential.WithCause(err)
	case errors.Is(err, ecc.ErrInvalidOperand), errors.Is(err, ecc.ErrInvalidPoint):
		return err
	case errors.Is(err, ece.ErrPayloadTooLarge),
		errors.Is(err, ece.ErrUnsupportedEncoding),
		errors.Is(err, ecc.ErrInvalidEncoding),
		errors.Is(err, vapid.ErrInvalidClaims),
		errors.Is(err, vapid.ErrInvalidEndpoint):
		return ErrInvalidArgument.WithCause(err)
	default:
		return errors.Wrap(err, errors.UnknownCode, "push failure")
	}
}
