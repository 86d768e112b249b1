package jwt

import "errors"

var (
	ErrInvalidToken = errors.New("jwt: invalid token")
	ErrExpiredToken = errors.New("jwt: token expired")
	ErrMissingOwner = errors.New("jwt: token has no subject")

	ErrConfigInvalid = errors.New("jwt: invalid configuration")
	ErrEmptySecret   = errors.New("jwt: secret cannot be empty")
)
