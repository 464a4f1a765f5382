package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"taskpad/internal/kvstore"
	"taskpad/internal/metrics"
	"taskpad/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

const storeKey = "auth"

type credential struct {
	username string
	password string
	role     model.Role
}

// Fixed demo credential table. This is deliberately disjoint from the
// admin-managed roster: adding a roster entry does not grant login capability.
var credentials = []credential{
	{username: "admin", password: "admin123", role: model.RoleAdmin},
	{username: "user", password: "user123", role: model.RoleUser},
}

// Session is the single auth state, persisted under the "auth" key.
// Username and Role are set if and only if IsAuthenticated is true.
type Session struct {
	IsAuthenticated bool       `json:"isAuthenticated"`
	Username        string     `json:"username,omitempty"`
	Role            model.Role `json:"role,omitempty"`
	TokenHash       string     `json:"tokenHash,omitempty"`
}

// Service owns the session state machine: Unauthenticated or Authenticated.
// A new login replaces the session wholesale; there is exactly one session at
// a time.
type Service struct {
	mu     sync.Mutex
	store  *kvstore.Store
	logger *log.Logger
	rec    *metrics.Recorder

	session    Session
	cookieName string
}

func NewService(store *kvstore.Store, logger *log.Logger) (*Service, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Service{
		store:      store,
		logger:     logger,
		cookieName: "taskpad_session",
	}
	if _, err := store.Get(storeKey, &s.session); err != nil {
		return nil, err
	}
	if !s.session.IsAuthenticated {
		s.session = Session{}
	}
	return s, nil
}

func (s *Service) SetMetrics(rec *metrics.Recorder) {
	s.rec = rec
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *Service) persistLocked() error {
	return s.store.Put(storeKey, s.session)
}

// Login validates against the credential table. On a match the session is
// replaced and persisted and a fresh bearer token is returned for the cookie.
// On a mismatch the state is left exactly as it was.
func (s *Service) Login(username, password string) (Session, string, error) {
	var found *credential
	for i := range credentials {
		if credentials[i].username == username && credentials[i].password == password {
			found = &credentials[i]
			break
		}
	}
	if found == nil {
		s.rec.IncLogin(false)
		return Session{}, "", ErrInvalidCredentials
	}

	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.session
	s.session = Session{
		IsAuthenticated: true,
		Username:        found.username,
		Role:            found.role,
		TokenHash:       hashToken(token),
	}
	if err := s.persistLocked(); err != nil {
		// Keep memory and disk in agreement: a login that could not be
		// persisted did not happen.
		s.session = prev
		return Session{}, "", err
	}
	s.rec.IncLogin(true)
	s.logger.Printf("session opened for %q (role %s)", found.username, found.role)
	return s.session, token, nil
}

// Logout clears the session unconditionally and removes the persisted state.
func (s *Service) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = Session{}
	return s.store.Delete(storeKey)
}

// UpdateProfile replaces the username only; role and authentication state
// stay untouched.
func (s *Service) UpdateProfile(newUsername string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.IsAuthenticated {
		return Session{}, ErrNotAuthenticated
	}
	s.session.Username = newUsername
	if err := s.persistLocked(); err != nil {
		return Session{}, err
	}
	return s.session, nil
}

func (s *Service) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// AuthenticateRequest ties an HTTP request to the session via the bearer
// cookie.
func (s *Service) AuthenticateRequest(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return Session{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.IsAuthenticated || s.session.TokenHash == "" {
		return Session{}, false
	}
	if hashToken(cookie.Value) != s.session.TokenHash {
		return Session{}, false
	}
	return s.session, true
}

func shouldUseSecureCookie(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKPAD_COOKIE_SECURE"))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

func (s *Service) SetSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   shouldUseSecureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   shouldUseSecureCookie(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// RequirePage guards a page route: unauthenticated requests are redirected to
// the login page.
func (s *Service) RequirePage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.AuthenticateRequest(r); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRolePage additionally requires the session role to equal role;
// authenticated requests with the wrong role are sent to the default
// location.
func (s *Service) RequireRolePage(role model.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.AuthenticateRequest(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if sess.Role != role {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPI guards an API route with a 401 instead of a redirect.
func (s *Service) RequireAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.AuthenticateRequest(r); !ok {
			writeAuthErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoleAPI guards an API route: 401 when unauthenticated, 403 when the
// role does not match.
func (s *Service) RequireRoleAPI(role model.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.AuthenticateRequest(r)
		if !ok {
			writeAuthErr(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if sess.Role != role {
			writeAuthErr(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthErr(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": msg})
}
