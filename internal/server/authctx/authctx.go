package authctx

import (
	"context"

	"github.com/farisali522/birojasaapp/internal/domain"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// CurrentUser carries the validated token claims. Kind is "customer" or
// "employee"; Role is empty for customers.
type CurrentUser struct {
	ID    int64
	Email string
	Kind  string
	Role  domain.EmployeeRole
}

func (u CurrentUser) IsCustomer() bool { return u.Kind == "customer" }
func (u CurrentUser) IsEmployee() bool { return u.Kind == "employee" }

func WithCurrentUser(ctx context.Context, user CurrentUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) *CurrentUser {
	val, ok := ctx.Value(userContextKey).(CurrentUser)
	if !ok {
		return nil
	}
	return &val
}
