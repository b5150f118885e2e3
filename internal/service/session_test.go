package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/craftfolio/internal/apperror"
	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/backend/backendtest"
	"github.com/craftfolio/craftfolio/internal/model"
)

func newTestSessionService(fake *backendtest.Fake) *SessionService {
	return NewSessionService(fake, false, 24*time.Hour)
}

// requestWithCookies replays the cookies a previous response set.
func requestWithCookies(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	for _, c := range rec.Result().Cookies() {
		if c.Value != "" {
			r.AddCookie(c)
		}
	}
	return r
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignUp_PasswordMismatchMakesNoCall(t *testing.T) {
	fake := backendtest.NewFake()
	svc := newTestSessionService(fake)

	_, err := svc.SignUp(t.Context(), httptest.NewRecorder(), "a@example.com", "secret1", "secret2", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Passwords do not match", apperror.UserMessage(err))
	assert.Zero(t, fake.CallCount("SignUp"))
}

func TestSignUp_LocalValidation(t *testing.T) {
	fake := backendtest.NewFake()
	svc := newTestSessionService(fake)

	tests := []struct {
		name      string
		email     string
		password  string
		wantField string
	}{
		{"bad email", "not-an-email", "secret1", "email"},
		{"short password", "a@example.com", "12345", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(t.Context(), httptest.NewRecorder(), tt.email, tt.password, tt.password, "")
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}
	assert.Zero(t, fake.CallCount("SignUp"))
}

func TestSignUp_SetsCookiesAndNotifies(t *testing.T) {
	fake := backendtest.NewFake()
	svc := newTestSessionService(fake)

	var events []SessionEvent
	svc.Subscribe(func(e SessionEvent) { events = append(events, e) })

	rec := httptest.NewRecorder()
	sess, err := svc.SignUp(t.Context(), rec, "a@example.com", "secret1", "secret1", "Ada")
	require.NoError(t, err)

	access := cookieNamed(rec, accessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, sess.AccessToken, access.Value)
	assert.True(t, access.HttpOnly)
	assert.NotNil(t, cookieNamed(rec, refreshTokenCookie))

	require.Len(t, events, 1)
	assert.Equal(t, SessionEvent{Kind: SessionSignedUp, UserID: sess.UserID()}, events[0])
}

func TestSignUp_PendingConfirmationSetsNoCookies(t *testing.T) {
	fake := backendtest.NewFake()
	fake.ConfirmEmail = true
	svc := newTestSessionService(fake)

	rec := httptest.NewRecorder()
	sess, err := svc.SignUp(t.Context(), rec, "a@example.com", "secret1", "secret1", "")
	require.NoError(t, err)
	assert.Empty(t, sess.AccessToken)
	assert.Nil(t, cookieNamed(rec, accessTokenCookie))
}

func TestSignUp_DuplicateIsValidationError(t *testing.T) {
	fake := backendtest.NewFake()
	fake.AddUser("a@example.com", "secret1")
	svc := newTestSessionService(fake)

	_, err := svc.SignUp(t.Context(), httptest.NewRecorder(), "a@example.com", "secret1", "secret1", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "User already registered", apperror.UserMessage(err))
}

func TestSignIn(t *testing.T) {
	fake := backendtest.NewFake()
	fake.AddUser("a@example.com", "secret1")
	svc := newTestSessionService(fake)

	_, err := svc.SignIn(t.Context(), httptest.NewRecorder(), "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperror.ErrAuth)
	assert.Equal(t, "Invalid login credentials", apperror.UserMessage(err))

	_, err = svc.SignIn(t.Context(), httptest.NewRecorder(), "a@example.com", "abc")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, 1, fake.CallCount("SignIn"))

	rec := httptest.NewRecorder()
	sess, err := svc.SignIn(t.Context(), rec, " A@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, sess.AccessToken, cookieNamed(rec, accessTokenCookie).Value)
}

func TestSignIn_TransportError(t *testing.T) {
	fake := backendtest.NewFake()
	fake.Errs["SignIn"] = backend.ErrUnavailable
	svc := newTestSessionService(fake)

	_, err := svc.SignIn(t.Context(), httptest.NewRecorder(), "a@example.com", "secret1")
	assert.ErrorIs(t, err, apperror.ErrTransport)
}

func TestSession_ResolvesFromCookie(t *testing.T) {
	fake := backendtest.NewFake()
	fake.AddUser("a@example.com", "secret1")
	svc := newTestSessionService(fake)

	rec := httptest.NewRecorder()
	signedIn, err := svc.SignIn(t.Context(), rec, "a@example.com", "secret1")
	require.NoError(t, err)

	sess := svc.Session(httptest.NewRecorder(), requestWithCookies(rec))
	require.NotNil(t, sess)
	assert.Equal(t, signedIn.UserID(), sess.UserID())
}

func TestSession_NoCookiesMakesNoCall(t *testing.T) {
	fake := backendtest.NewFake()
	svc := newTestSessionService(fake)

	assert.Nil(t, svc.Session(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Zero(t, fake.CallCount("User"))
}

func TestSession_TransportFailureIsLoggedOut(t *testing.T) {
	fake := backendtest.NewFake()
	fake.AddUser("a@example.com", "secret1")
	svc := newTestSessionService(fake)

	rec := httptest.NewRecorder()
	_, err := svc.SignIn(t.Context(), rec, "a@example.com", "secret1")
	require.NoError(t, err)

	fake.Errs["User"] = backend.ErrUnavailable
	assert.Nil(t, svc.Session(httptest.NewRecorder(), requestWithCookies(rec)))
	assert.Zero(t, fake.CallCount("Refresh"))
}

func TestSession_RefreshesOnceWhenExpired(t *testing.T) {
	fake := backendtest.NewFake()
	fake.AddUser("a@example.com", "secret1")
	svc := newTestSessionService(fake)

	rec := httptest.NewRecorder()
	signedIn, err := svc.SignIn(t.Context(), rec, "a@example.com", "secret1")
	require.NoError(t, err)
	fake.ExpireAccess(signedIn.AccessToken)

	out := httptest.NewRecorder()
	sess := svc.Session(out, requestWithCookies(rec))
	require.NotNil(t, sess)
	assert.NotEqual(t, signedIn.AccessToken, sess.AccessToken)
	assert.Equal(t, sess.AccessToken, cookieNamed(out, accessTokenCookie).Value)
	assert.Equal(t, 1, fake.CallCount("Refresh"))
}

func TestSession_FailedRefreshClearsCookies(t *testing.T) {
	fake := backendtest.NewFake()
	svc := newTestSessionService(fake)

	var events []SessionEvent
	svc.Subscribe(func(e SessionEvent) { events = append(events, e) })

	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: "stale"})
	r.AddCookie(&http.Cookie{Name: refreshTokenCookie, Value: "stale"})

	out := httptest.NewRecorder()
	assert.Nil(t, svc.Session(out, r))
	assert.Equal(t, "", cookieNamed(out, accessTokenCookie).Value)
	assert.Equal(t, 1, fake.CallCount("Refresh"))
	require.Len(t, events, 1)
	assert.Equal(t, SessionExpired, events[0].Kind)
}

func TestSignOut_AlwaysClearsCookies(t *testing.T) {
	fake := backendtest.NewFake()
	sess := fake.AddUser("a@example.com", "secret1")
	fake.Errs["SignOut"] = backend.ErrUnavailable
	svc := newTestSessionService(fake)

	var events []SessionEvent
	unsubscribe := svc.Subscribe(func(e SessionEvent) { events = append(events, e) })

	rec := httptest.NewRecorder()
	svc.SignOut(t.Context(), rec, sess)
	assert.Equal(t, "", cookieNamed(rec, accessTokenCookie).Value)
	assert.Equal(t, "", cookieNamed(rec, refreshTokenCookie).Value)
	require.Len(t, events, 1)
	assert.Equal(t, SessionSignedOut, events[0].Kind)

	unsubscribe()
	svc.SignOut(t.Context(), httptest.NewRecorder(), (*model.Session)(nil))
	assert.Len(t, events, 1)
}
