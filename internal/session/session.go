package session

import (
	"context"
	"encoding/gob"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/pix-checkout/internal"
	"github.com/frahmantamala/pix-checkout/internal/core/datamodel/identity"
	"github.com/frahmantamala/pix-checkout/pkg/logger"
)

const identityKey = "customer_data"

func init() {
	gob.Register(identity.Identity{})
}

type Config struct {
	CookieName   string
	Lifetime     time.Duration
	SecureCookie bool
}

// Store keeps the visitor identity in a server-side session.
type Store struct {
	manager *scs.SessionManager
	logger  *slog.Logger
}

func NewStore(config Config, logger *slog.Logger) *Store {
	manager := scs.New()
	manager.Store = memstore.New()
	manager.Cookie.HttpOnly = true
	manager.Cookie.SameSite = http.SameSiteLaxMode
	manager.Cookie.Secure = config.SecureCookie
	if config.CookieName != "" {
		manager.Cookie.Name = config.CookieName
	}
	if config.Lifetime > 0 {
		manager.Lifetime = config.Lifetime
	}
	return &Store{manager: manager, logger: logger}
}

// LoadAndSave must wrap every handler that reads or writes the session.
func (s *Store) LoadAndSave(next http.Handler) http.Handler {
	return s.manager.LoadAndSave(next)
}

func (s *Store) Identity(ctx context.Context) (identity.Identity, bool) {
	id, ok := s.manager.Get(ctx, identityKey).(identity.Identity)
	return id, ok
}

func (s *Store) SaveIdentity(ctx context.Context, id identity.Identity) {
	s.manager.Put(ctx, identityKey, id)
}

// VisitorMiddleware builds the per-request Visitor from the session and the
// request headers. It must run inside LoadAndSave.
func (s *Store) VisitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		visitor := &internal.Visitor{
			Referer:   r.Referer(),
			RequestID: chiMiddleware.GetReqID(ctx),
		}
		if id, ok := s.Identity(ctx); ok && !id.IsPlaceholder() {
			visitor.Identity = id
			visitor.Known = true
		} else {
			visitor.Identity = identity.Placeholder()
		}

		ctx = logger.With(ctx, "visitor_known", visitor.Known)
		next.ServeHTTP(w, r.WithContext(internal.ContextWithVisitor(ctx, visitor)))
	})
}
