package transport

import (
	"context"
	"net"

	"github.com/kochabx/webpush/core/validator"
)

// Server is a long running listener owned by the application.
type Server interface {
	// Run blocks until the server stops.
	Run() error
	Shutdown(context.Context) error
}

// ValidateAddress reports whether addr is a listen address of the form
// host:port with a port in 1-65535. The host may be empty, a hostname or an IP.
func ValidateAddress(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	if net.ParseIP(host) != nil {
		// hostname_port rejects IPv6 literals
		addr = net.JoinHostPort("", port)
	}
	return validator.Validate.GetValidator().Var(addr, "hostname_port") == nil
}
