package handler

import (
	"errors"
	"net/http"

	"github.com/farisali522/birojasaapp/internal/server/authctx"
	"github.com/farisali522/birojasaapp/internal/service"
)

// currentActor rebuilds the acting identity from the token claims set by the
// auth middleware.
func currentActor(r *http.Request, identity *service.IdentityService) (service.Actor, error) {
	u := authctx.FromContext(r.Context())
	if u == nil {
		return service.Actor{}, errors.New("unauthorized")
	}
	return identity.ActorByID(r.Context(), u.Kind, u.ID)
}
