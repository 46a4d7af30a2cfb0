package auditlog

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor - автор запроса: пользователь из токена и сведения о клиенте.
type Actor struct {
	UserID    *primitive.ObjectID
	Username  string
	IPAddress string
	UserAgent string
}

type actorKey struct{}

// WithActor кладёт автора запроса в контекст.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext достаёт автора запроса из контекста.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}
