package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/craftfolio/craftfolio/internal/apperror"
	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/validation"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

type SessionEventKind string

const (
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedUp  SessionEventKind = "signed_up"
	SessionSignedOut SessionEventKind = "signed_out"
	SessionExpired   SessionEventKind = "expired"
)

type SessionEvent struct {
	Kind   SessionEventKind
	UserID string
}

// SessionService keeps the backend session in two http-only cookies and
// resolves it once per request.
type SessionService struct {
	auth          backend.Auth
	secureCookies bool
	cookieTTL     time.Duration
	now           func() time.Time

	mu        sync.RWMutex
	listeners map[int]func(SessionEvent)
	nextID    int
}

func NewSessionService(auth backend.Auth, secureCookies bool, cookieTTL time.Duration) *SessionService {
	return &SessionService{
		auth:          auth,
		secureCookies: secureCookies,
		cookieTTL:     cookieTTL,
		now:           time.Now,
		listeners:     make(map[int]func(SessionEvent)),
	}
}

// Session returns the current session or nil. Every failure, including
// an unreachable backend, counts as logged out. An expired access token
// gets exactly one refresh attempt.
func (s *SessionService) Session(w http.ResponseWriter, r *http.Request) *model.Session {
	ctx := r.Context()
	accessToken := cookieValue(r, accessTokenCookie)
	refreshToken := cookieValue(r, refreshTokenCookie)

	if accessToken == "" && refreshToken == "" {
		return nil
	}

	if accessToken != "" {
		user, err := s.auth.User(ctx, accessToken)
		if err == nil {
			return &model.Session{AccessToken: accessToken, RefreshToken: refreshToken, User: user}
		}
		if !errors.Is(err, backend.ErrUnauthorized) {
			slog.Warn("session check failed", "error", err)
			return nil
		}
	}

	if refreshToken == "" {
		s.clearCookies(w)
		return nil
	}

	sess, err := s.auth.Refresh(ctx, refreshToken)
	if err != nil {
		slog.Info("session refresh failed", "error", err)
		s.clearCookies(w)
		s.emit(SessionEvent{Kind: SessionExpired})
		return nil
	}

	s.setCookies(w, sess)
	slog.Debug("session refreshed", "user_id", sess.UserID())
	return sess
}

func (s *SessionService) SignIn(ctx context.Context, w http.ResponseWriter, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, apperror.ValidationFailed("email", err.Error())
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	sess, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, signInError(err)
	}

	s.setCookies(w, sess)
	s.emit(SessionEvent{Kind: SessionSignedIn, UserID: sess.UserID()})
	return sess, nil
}

// SignUp validates locally before any network call. The returned
// session has no access token when the backend wants the address
// confirmed first.
func (s *SessionService) SignUp(ctx context.Context, w http.ResponseWriter, email, password, confirm, fullName string) (*model.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, apperror.ValidationFailed("email", err.Error())
	}
	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}
	err = validation.ValidatePasswordConfirm(password, confirm)
	if err != nil {
		return nil, apperror.ValidationFailed("confirm_password", err.Error())
	}
	fullName = strings.TrimSpace(fullName)
	err = validation.ValidateName(fullName)
	if err != nil {
		return nil, apperror.ValidationFailed("full_name", err.Error())
	}

	sess, err := s.auth.SignUp(ctx, email, password, fullName)
	if err != nil {
		if msg, ok := backend.RejectedMessage(err); ok {
			return nil, &apperror.AppError{Err: apperror.ErrValidation, Message: msg, Field: "email", Cause: err}
		}
		slog.Error("sign up failed", "error", err)
		return nil, apperror.Transport("Could not create your account. Please try again.", err)
	}

	if sess.AccessToken != "" {
		s.setCookies(w, sess)
	}
	s.emit(SessionEvent{Kind: SessionSignedUp, UserID: sess.UserID()})
	return sess, nil
}

// SignOut always clears the cookies; a failed remote sign-out is only
// logged.
func (s *SessionService) SignOut(ctx context.Context, w http.ResponseWriter, sess *model.Session) {
	if sess != nil && sess.AccessToken != "" {
		err := s.auth.SignOut(ctx, sess.AccessToken)
		if err != nil {
			slog.Warn("remote sign out failed", "error", err, "user_id", sess.UserID())
		}
	}

	s.clearCookies(w)
	s.emit(SessionEvent{Kind: SessionSignedOut, UserID: sess.UserID()})
}

// Subscribe registers fn for session changes and returns a function
// that removes it.
func (s *SessionService) Subscribe(fn func(SessionEvent)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *SessionService) emit(event SessionEvent) {
	s.mu.RLock()
	listeners := make([]func(SessionEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func signInError(err error) error {
	switch {
	case errors.Is(err, backend.ErrRejected), errors.Is(err, backend.ErrUnauthorized):
		msg, ok := backend.RejectedMessage(err)
		if !ok {
			msg = "Invalid email or password"
		}
		return apperror.Auth(msg, err)
	default:
		slog.Error("sign in failed", "error", err)
		return apperror.Transport("Could not sign you in. Please try again.", err)
	}
}

func (s *SessionService) setCookies(w http.ResponseWriter, sess *model.Session) {
	now := s.now()

	// The access cookie dies with the token, so an expired token goes
	// straight to the refresh path.
	accessExpiry := sess.ExpiresAt
	if accessExpiry.IsZero() || accessExpiry.After(now.Add(s.cookieTTL)) {
		accessExpiry = now.Add(s.cookieTTL)
	}

	s.setCookie(w, accessTokenCookie, sess.AccessToken, accessExpiry)
	if sess.RefreshToken != "" {
		s.setCookie(w, refreshTokenCookie, sess.RefreshToken, now.Add(s.cookieTTL))
	}
}

func (s *SessionService) clearCookies(w http.ResponseWriter) {
	s.setCookie(w, accessTokenCookie, "", time.Unix(0, 0))
	s.setCookie(w, refreshTokenCookie, "", time.Unix(0, 0))
}

func (s *SessionService) setCookie(w http.ResponseWriter, name, value string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expiry,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
