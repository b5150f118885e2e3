package local

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/db"
	"github.com/craftfolio/craftfolio/internal/model"
)

type mockMailer struct {
	sent []string
	err  error
}

func (m *mockMailer) SendWelcome(_ context.Context, email, _ string) error {
	m.sent = append(m.sent, email)
	return m.err
}

func newTestLocal(t *testing.T, mailer Mailer) *Local {
	t.Helper()
	path := filepath.Join(t.TempDir(), "local.db")
	database, err := db.Init("sqlite", path+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, db.RunMigrations(database.DB, "sqlite"))

	return New(database, nil, mailer, Config{JWTSecret: "test-secret", JWTExpiry: time.Hour})
}

func TestSignUpAndSignIn(t *testing.T) {
	mailer := &mockMailer{}
	l := newTestLocal(t, mailer)
	ctx := t.Context()

	sess, err := l.SignUp(ctx, " Ada@Example.com ", "secret1", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.Equal(t, "ada@example.com", sess.User.Email)
	assert.Equal(t, []string{"ada@example.com"}, mailer.sent)

	user, err := l.User(ctx, sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID(), user.ID)

	again, err := l.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, sess.UserID(), again.UserID())
}

func TestSignUp_MailerFailureDoesNotBlock(t *testing.T) {
	l := newTestLocal(t, &mockMailer{err: errors.New("smtp down")})

	sess, err := l.SignUp(t.Context(), "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)
}

func TestSignUp_Rejections(t *testing.T) {
	l := newTestLocal(t, nil)
	ctx := t.Context()

	_, err := l.SignUp(ctx, "ada@example.com", "short", "")
	msg, ok := backend.RejectedMessage(err)
	require.True(t, ok)
	assert.Contains(t, msg, "at least 6")

	_, err = l.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)
	_, err = l.SignUp(ctx, "ada@example.com", "secret2", "")
	msg, ok = backend.RejectedMessage(err)
	require.True(t, ok)
	assert.Equal(t, "User already registered", msg)
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	l := newTestLocal(t, nil)
	ctx := t.Context()
	_, err := l.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)

	for _, tt := range []struct{ email, password string }{
		{"ada@example.com", "wrong-pass"},
		{"nobody@example.com", "secret1"},
	} {
		_, err := l.SignIn(ctx, tt.email, tt.password)
		assert.ErrorIs(t, err, backend.ErrRejected, tt.email)
		msg, _ := backend.RejectedMessage(err)
		assert.Equal(t, "Invalid login credentials", msg)
	}
}

func TestUser_RejectsBadTokens(t *testing.T) {
	l := newTestLocal(t, nil)
	ctx := t.Context()

	_, err := l.User(ctx, "")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	_, err = l.User(ctx, "garbage")
	assert.ErrorIs(t, err, backend.ErrUnauthorized)

	sess, err := l.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)

	other := &Local{jwtSecret: []byte("different")}
	_, err = other.verify(sess.AccessToken)
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestRefresh_RotatesToken(t *testing.T) {
	l := newTestLocal(t, nil)
	ctx := t.Context()
	sess, err := l.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)

	next, err := l.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.RefreshToken, next.RefreshToken)
	assert.Equal(t, sess.UserID(), next.UserID())

	// A consumed refresh token cannot be replayed.
	_, err = l.Refresh(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestSignOut_RevokesRefreshTokens(t *testing.T) {
	l := newTestLocal(t, nil)
	ctx := t.Context()
	sess, err := l.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)

	require.NoError(t, l.SignOut(ctx, sess.AccessToken))

	_, err = l.Refresh(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestRows_OwnerScoped(t *testing.T) {
	l := newTestLocal(t, nil)
	ctx := t.Context()
	ada, err := l.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)
	bob, err := l.SignUp(ctx, "bob@example.com", "secret1", "")
	require.NoError(t, err)

	_, err = l.Profile(ctx, ada.AccessToken, ada.UserID())
	assert.ErrorIs(t, err, backend.ErrNotFound)

	username := "ada"
	require.NoError(t, l.UpsertProfile(ctx, ada.AccessToken, &model.Profile{UserID: ada.UserID(), Username: &username, Name: "Ada"}))

	// Bob cannot read or write Ada's rows.
	_, err = l.Profile(ctx, bob.AccessToken, ada.UserID())
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
	err = l.UpsertProfile(ctx, bob.AccessToken, &model.Profile{UserID: ada.UserID(), Name: "Mallory"})
	assert.ErrorIs(t, err, backend.ErrUnauthorized)

	err = l.UpsertProfile(ctx, bob.AccessToken, &model.Profile{UserID: bob.UserID(), Username: &username})
	assert.ErrorIs(t, err, backend.ErrConflict)

	public, err := l.ProfileByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", public.Name)

	_, err = l.ProfileByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestItems_CreateListDelete(t *testing.T) {
	l := newTestLocal(t, nil)
	ctx := t.Context()
	ada, err := l.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)
	bob, err := l.SignUp(ctx, "bob@example.com", "secret1", "")
	require.NoError(t, err)

	item := &model.PortfolioItem{ID: "client-id", UserID: ada.UserID(), Title: "Resume", ExternalLink: "https://x"}
	require.NoError(t, l.CreateItem(ctx, ada.AccessToken, item))
	assert.NotEqual(t, "client-id", item.ID)
	assert.False(t, item.CreatedAt.IsZero())

	err = l.CreateItem(ctx, bob.AccessToken, &model.PortfolioItem{UserID: ada.UserID(), Title: "x"})
	assert.ErrorIs(t, err, backend.ErrUnauthorized)

	items, err := l.Items(ctx, ada.AccessToken, ada.UserID())
	require.NoError(t, err)
	require.Len(t, items, 1)

	public, err := l.PublicItems(ctx, ada.UserID())
	require.NoError(t, err)
	assert.Len(t, public, 1)

	err = l.DeleteItem(ctx, bob.AccessToken, item.ID, ada.UserID())
	assert.ErrorIs(t, err, backend.ErrUnauthorized)

	require.NoError(t, l.DeleteItem(ctx, ada.AccessToken, item.ID, ada.UserID()))
	require.NoError(t, l.DeleteItem(ctx, ada.AccessToken, item.ID, ada.UserID()))

	items, err = l.Items(ctx, ada.AccessToken, ada.UserID())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpload_WithoutStorage(t *testing.T) {
	l := newTestLocal(t, nil)
	ctx := t.Context()
	ada, err := l.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)

	_, err = l.Upload(ctx, ada.AccessToken, "avatars/profile-x.png", "image/png", strings.NewReader("png"))
	assert.ErrorIs(t, err, backend.ErrRejected)

	_, err = l.Upload(ctx, "", "avatars/profile-x.png", "image/png", strings.NewReader("png"))
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

type memStore struct {
	objects map[string][]byte
}

func (m *memStore) Save(_ context.Context, path, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[path] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, path string) error {
	delete(m.objects, path)
	return nil
}

func (m *memStore) PublicURL(path string) string {
	return "https://cdn.example.com/" + path
}

func TestUploadAndRemove(t *testing.T) {
	store := &memStore{objects: make(map[string][]byte)}
	l := newTestLocal(t, nil)
	l.storage = store
	ctx := t.Context()
	ada, err := l.SignUp(ctx, "ada@example.com", "secret1", "")
	require.NoError(t, err)

	url, err := l.Upload(ctx, ada.AccessToken, "avatars/profile-x.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/profile-x.png", url)
	assert.Contains(t, store.objects, "avatars/profile-x.png")

	assert.ErrorIs(t, l.Remove(ctx, "", "avatars/profile-x.png"), backend.ErrUnauthorized)
	require.NoError(t, l.Remove(ctx, ada.AccessToken, "avatars/profile-x.png"))
	assert.Empty(t, store.objects)
}
