package jwt

import "github.com/golang-jwt/jwt/v5"

// Claims identify the owner of push subscriptions. The owner is the token subject.
type Claims struct {
	jwt.RegisteredClaims
}

// Owner returns the subject.
func (c *Claims) Owner() string {
	return c.Subject
}
