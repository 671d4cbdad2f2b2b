package auth

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ahmedabdul/staff-portal/internal/domain"
	apperrors "github.com/ahmedabdul/staff-portal/pkg/util/errorutil"
)

const (
	storeKey     = "portal_session_store"
	clientIDKey  = "portal_client_id"
	sessionIDKey = "portal_browser_session_id"
)

// SessionStore is the per-client state the guards inspect.
type SessionStore interface {
	Session() domain.Session
}

// StoreResolver returns the Store bound to a browser context, creating it on
// first use. clientID outlives browser restarts; sessionID does not.
type StoreResolver interface {
	Resolve(ctx context.Context, clientID, sessionID string) (SessionStore, error)
}

// ResolverFunc adapts a function to StoreResolver.
type ResolverFunc func(ctx context.Context, clientID, sessionID string) (SessionStore, error)

func (f ResolverFunc) Resolve(ctx context.Context, clientID, sessionID string) (SessionStore, error) {
	return f(ctx, clientID, sessionID)
}

// CookieOptions controls the identification cookies. Name is the persistent
// client cookie and lives for MaxAge. SessionName is a browser-session cookie
// without an expiry.
type CookieOptions struct {
	Name        string
	SessionName string
	MaxAge      time.Duration
	Secure      bool
}

// SessionMiddleware binds every request to the Store of its browser context.
// The context is identified by two random cookies issued on first contact.
type SessionMiddleware struct {
	resolver StoreResolver
	cookie   CookieOptions
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(resolver StoreResolver, cookie CookieOptions) *SessionMiddleware {
	if cookie.Name == "" {
		cookie.Name = "portal_client"
	}
	if cookie.SessionName == "" {
		cookie.SessionName = "portal_session"
	}
	return &SessionMiddleware{resolver: resolver, cookie: cookie}
}

// Handle resolves the client's Store and stores it in the request locals.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	clientID := m.identify(c, m.cookie.Name, m.cookie.MaxAge)
	sessionID := m.identify(c, m.cookie.SessionName, 0)

	store, err := m.resolver.Resolve(c.UserContext(), clientID, sessionID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Locals(clientIDKey, clientID)
	c.Locals(sessionIDKey, sessionID)
	c.Locals(storeKey, store)
	return c.Next()
}

// identify reads the id cookie called name, issuing a fresh one when it is
// missing or malformed. A zero maxAge issues a browser-session cookie.
func (m *SessionMiddleware) identify(c *fiber.Ctx, name string, maxAge time.Duration) string {
	id := c.Cookies(name)
	if _, err := uuid.Parse(id); err == nil {
		return id
	}
	id = uuid.NewString()
	cookie := &fiber.Cookie{
		Name:        name,
		Value:       id,
		Path:        "/",
		HTTPOnly:    true,
		Secure:      m.cookie.Secure,
		SameSite:    fiber.CookieSameSiteLaxMode,
		SessionOnly: maxAge <= 0,
	}
	if maxAge > 0 {
		cookie.Expires = time.Now().Add(maxAge)
	}
	c.Cookie(cookie)
	return id
}

// StoreFromContext retrieves the client's Store.
func StoreFromContext(c *fiber.Ctx) (SessionStore, bool) {
	val := c.Locals(storeKey)
	if val == nil {
		return nil, false
	}
	store, ok := val.(SessionStore)
	return store, ok
}

// ClientIDFromContext returns the identifier of the browser context.
func ClientIDFromContext(c *fiber.Ctx) string {
	id, _ := c.Locals(clientIDKey).(string)
	return id
}

// SessionIDFromContext returns the identifier of the browser session.
func SessionIDFromContext(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionIDKey).(string)
	return id
}

// SessionFromContext returns the current session, anonymous when no Store is bound.
func SessionFromContext(c *fiber.Ctx) domain.Session {
	store, ok := StoreFromContext(c)
	if !ok {
		return domain.Anonymous()
	}
	return store.Session()
}
