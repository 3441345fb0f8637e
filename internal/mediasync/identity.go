package mediasync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var ErrUnknownIdentity = errors.New("unknown identity")

// Identity is the role of a participant within a session. The zero value
// means the identity is not known yet.
type Identity string

const (
	IdentityHost  Identity = "host"
	IdentityGuest Identity = "guest"
	// IdentityListener behaves exactly like IdentityGuest.
	IdentityListener Identity = "listener"
)

func ParseIdentity(s string) (Identity, error) {
	switch id := Identity(s); id {
	case IdentityHost, IdentityGuest, IdentityListener:
		return id, nil
	}

	return "", fmt.Errorf("%w %q", ErrUnknownIdentity, s)
}

// IdentityResolver supplies the local participant's identity. An empty
// Identity is treated as not authoritative.
type IdentityResolver interface {
	Identity() Identity
}

type IdentityResolverFunc func() Identity

func (f IdentityResolverFunc) Identity() Identity { return f() }

// StaticIdentity resolves to a fixed identity.
type StaticIdentity Identity

func (s StaticIdentity) Identity() Identity { return Identity(s) }

// IsAuthority reports whether id may write the shared attributes.
func IsAuthority(id Identity) bool {
	return id == IdentityHost
}

func isAuthority(r IdentityResolver) bool {
	if r == nil {
		return false
	}

	return IsAuthority(r.Identity())
}

// gatedWriter is the only path through which the engine writes attributes.
type gatedWriter struct {
	store    AttributeStore
	identity IdentityResolver
	logger   *slog.Logger
}

// write sends p to the store when the local participant is the authority.
// Store failures are left to the store's own consistency mechanism.
func (w gatedWriter) write(ctx context.Context, p Partial) bool {
	if !isAuthority(w.identity) || p.IsEmpty() {
		return false
	}

	if err := w.store.WriteAttributes(ctx, p); err != nil {
		w.logger.WarnContext(ctx, "failed to write attributes", "error", err, "attributes", p.Fields())
	}

	return true
}
