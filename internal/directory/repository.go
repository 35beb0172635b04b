package directory

import (
	"context"
	"time"
)

// Repo stores room codes and player bindings.
type Repo interface {
	// Reserve claims code for e. It reports false if the code is taken.
	Reserve(ctx context.Context, e Entry, ttl time.Duration) (bool, error)
	// Get returns the entry for code, or nil if none.
	Get(ctx context.Context, code string) (*Entry, error)
	// Release frees code and drops every binding to it.
	Release(ctx context.Context, code string) error
	// Bind records that player sits in room code.
	Bind(ctx context.Context, playerID, code string, ttl time.Duration) error
	// Unbind removes the binding, but only if it still points at code.
	Unbind(ctx context.Context, playerID, code string) error
	// PlayerRoom returns the code a player is bound to, or "".
	PlayerRoom(ctx context.Context, playerID string) (string, error)
	// Members lists players bound to code.
	Members(ctx context.Context, code string) ([]string, error)
	// Codes lists every reserved code.
	Codes(ctx context.Context) ([]string, error)
}
