package entity

import "context"

type actorContextKey struct{}

// Actor identifies who is calling. Set by the auth middleware from JWT claims.
type Actor struct {
	Subject string
	RoleID  int
	Token   string
}

// SystemActor is used when no authenticated caller is present, e.g. CLI jobs.
var SystemActor = Actor{Subject: "system"}

func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the caller, falling back to SystemActor.
func ActorFromContext(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorContextKey{}).(Actor); ok {
		return actor
	}
	return SystemActor
}
