// ABOUTME: Session registry mapping live MCP sessions to user identities
// ABOUTME: Sessions register on connect and are removed on disconnect
package mcp

import (
	"context"
	"net/http"
	"sync"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

type contextKey string

// userIDKey carries the user identity resolved for a connection.
const userIDKey contextKey = "promptvault.userID"

// UserHeader names the HTTP header the trusted auth gate in front of the SSE
// endpoint sets to the authenticated user identity.
const UserHeader = "X-User-Id"

// SessionRegistry tracks which user each live session belongs to. It is
// passed explicitly to the handlers; there is no ambient session state.
type SessionRegistry struct {
	mu    sync.RWMutex
	users map[string]string
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{users: make(map[string]string)}
}

// Register records the user identity for a session.
func (r *SessionRegistry) Register(sessionID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[sessionID] = userID
}

// Unregister removes a session.
func (r *SessionRegistry) Unregister(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, sessionID)
}

// UserFor returns the user identity for a session, if registered.
func (r *SessionRegistry) UserFor(sessionID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.users[sessionID]
	return userID, ok
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// WithUserID stores a user identity on the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user identity stored on the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// SSEUserContextFunc resolves the connecting user from the request and puts
// it on the connection context for the session hooks to pick up. Request
// authentication itself is the job of the gateway in front of this server.
func SSEUserContextFunc(ctx context.Context, r *http.Request) context.Context {
	if userID := r.Header.Get(UserHeader); userID != "" {
		return WithUserID(ctx, userID)
	}
	return ctx
}

// SessionHooks wires registry insertion and removal to the server's session
// lifecycle.
func SessionHooks(registry *SessionRegistry, defaultUserID string) *mcpserver.Hooks {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		userID, ok := UserIDFromContext(ctx)
		if !ok {
			userID = defaultUserID
		}
		registry.Register(session.SessionID(), userID)
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		registry.Unregister(session.SessionID())
	})
	return hooks
}
