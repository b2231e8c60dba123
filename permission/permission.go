package permission

/*
Package permission knows who you are and what you're allowed to do.

Authentication happens in front of shortlistd; by the time a request gets
here the identity is a user id and an admin bit.
*/

import (
	"context"
	"errors"

	"github.com/ts4z/shortlist/model"
)

var (
	ErrNoUser           = errors.New("no user in context")
	ErrPermissionDenied = errors.New("permission denied")
)

type Identity struct {
	User  model.UserID
	Admin bool
}

type contextKeyType struct{}

var contextKeyTypeValue = contextKeyType{}

func IdentityInContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKeyTypeValue, id)
}

func IdentityFromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(contextKeyTypeValue).(*Identity); ok {
		return id
	}
	return nil
}

func IsAdmin(ctx context.Context) bool {
	id := IdentityFromContext(ctx)
	return id != nil && id.Admin
}

func requireAdminOrUserID(ctx context.Context, uid model.UserID, fn func() error) error {
	if id := IdentityFromContext(ctx); id == nil {
		return ErrNoUser
	} else if !id.Admin && id.User != uid {
		return ErrPermissionDenied
	}
	return fn()
}

func requireAdmin(ctx context.Context, fn func() error) error {
	if id := IdentityFromContext(ctx); id == nil {
		return ErrNoUser
	} else if !id.Admin {
		return ErrPermissionDenied
	}
	return fn()
}
