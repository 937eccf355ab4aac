package middleware

import (
	"context"
	"net/http"

	"guidecal/pkg/model"
)

// Identity comes from the session layer upstream of this service, which
// forwards the authenticated principal in headers. These services never see
// credentials, only the resolved actor.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

const ActorKey contextKey = "actor"

type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsProvider() bool {
	return model.IsProviderRole(a.Role)
}

func (a Actor) IsRequester() bool {
	return model.IsRequesterRole(a.Role)
}

// ActorContext extracts the forwarded actor identity into the request
// context. Requests without an identity still pass through; handlers that
// require one reject them with Unauthorized.
func ActorContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := Actor{
				ID:   r.Header.Get(HeaderActorID),
				Role: r.Header.Get(HeaderActorRole),
			}

			if actor.ID != "" {
				ctx := context.WithValue(r.Context(), ActorKey, actor)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ActorFromContext returns the acting identity, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(Actor)
	return actor, ok && actor.ID != ""
}
