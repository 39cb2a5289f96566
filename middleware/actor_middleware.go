package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ActorHeader carries the acting user's id on write requests. The dashboard
// frontend sets it from the signed-in profile.
const ActorHeader = "X-Actor-ID"

// ActorMiddleware attaches the acting user's id to the request context so
// change-log rows record who performed each mutation
type ActorMiddleware struct {
	logger *zap.Logger
}

// NewActorMiddleware creates a new ActorMiddleware
func NewActorMiddleware(logger *zap.Logger) *ActorMiddleware {
	return &ActorMiddleware{logger: logger}
}

// ExtractActor pulls the actor id from the request header into the context.
// Missing headers are not an error; reads have no actor and system jobs
// write without one.
func (m *ActorMiddleware) ExtractActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actorID := strings.TrimSpace(r.Header.Get(ActorHeader))
		if actorID != "" {
			r = r.WithContext(WithActorID(r.Context(), actorID))
		}
		next.ServeHTTP(w, r)
	})
}
