package editor_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftfolio/craftfolio/internal/apperror"
	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/backend/backendtest"
	"github.com/craftfolio/craftfolio/internal/editor"
	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/service"
)

type fixture struct {
	fake      *backendtest.Fake
	portfolio *service.PortfolioService
	profiles  *service.ProfileService
	sess      *model.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fake := backendtest.NewFake()
	inflight := service.NewInFlight()
	return &fixture{
		fake:      fake,
		portfolio: service.NewPortfolioService(fake, inflight),
		profiles:  service.NewProfileService(fake, fake, inflight),
		sess:      fake.AddUser("a@example.com", "secret1"),
	}
}

func (fx *fixture) newFlow(t *testing.T) *editor.Flow {
	t.Helper()
	flow, err := editor.New(fx.sess, fx.portfolio, fx.profiles)
	require.NoError(t, err)
	require.NoError(t, flow.Load(t.Context()))
	return flow
}

func TestNew_RequiresUser(t *testing.T) {
	fx := newFixture(t)

	_, err := editor.New(nil, fx.portfolio, fx.profiles)
	assert.ErrorIs(t, err, editor.ErrNoSession)
	_, err = editor.New(&model.Session{}, fx.portfolio, fx.profiles)
	assert.ErrorIs(t, err, editor.ErrNoSession)
}

func TestLoad_FetchesOnce(t *testing.T) {
	fx := newFixture(t)
	flow := fx.newFlow(t)

	require.NoError(t, flow.Load(t.Context()))
	assert.Equal(t, 1, fx.fake.CallCount("Items"))
	assert.Equal(t, 1, fx.fake.CallCount("Profile"))
}

func TestLoad_FailureShowsMessage(t *testing.T) {
	fx := newFixture(t)
	fx.fake.Errs["Items"] = backend.ErrUnavailable

	flow, err := editor.New(fx.sess, fx.portfolio, fx.profiles)
	require.NoError(t, err)
	err = flow.Load(t.Context())
	assert.ErrorIs(t, err, apperror.ErrTransport)

	view := flow.View()
	assert.Empty(t, view.Items)
	assert.Equal(t, editor.MessageError, view.Kind)
	assert.NotEmpty(t, view.Message)
}

func TestAddItem_PrependsAndClearsForm(t *testing.T) {
	fx := newFixture(t)
	flow := fx.newFlow(t)
	ctx := t.Context()

	first, err := flow.AddItem(ctx, "Slides", "https://example.com/slides", "")
	require.NoError(t, err)
	second, err := flow.AddItem(ctx, "Resume", "https://drive.google.com/file/d/XYZ/view", "CV")
	require.NoError(t, err)

	view := flow.View()
	require.Len(t, view.Items, 2)
	assert.Equal(t, second.ID, view.Items[0].ID)
	assert.Equal(t, first.ID, view.Items[1].ID)
	assert.Equal(t, "https://drive.google.com/file/d/XYZ/preview", view.Items[0].PreviewURL)
	assert.Empty(t, view.Items[1].PreviewURL)
	assert.Equal(t, editor.Form{}, view.Form)
	assert.Equal(t, editor.MessageSuccess, view.Kind)

	// A reload sees the same item with the same id at the top.
	reloaded := fx.newFlow(t)
	items := reloaded.Items()
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
}

func TestAddItem_EmptyFieldsMakeNoCall(t *testing.T) {
	fx := newFixture(t)
	flow := fx.newFlow(t)

	_, err := flow.AddItem(t.Context(), "Resume", "  ", "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Zero(t, fx.fake.CallCount("CreateItem"))

	view := flow.View()
	assert.Equal(t, "link", view.Field)
	assert.Equal(t, "Resume", view.Form.Title)
}

func TestAddItem_FailureKeepsListAndForm(t *testing.T) {
	fx := newFixture(t)
	flow := fx.newFlow(t)
	ctx := t.Context()

	existing, err := flow.AddItem(ctx, "Slides", "https://example.com/slides", "")
	require.NoError(t, err)

	fx.fake.Errs["CreateItem"] = backend.ErrUnavailable
	_, err = flow.AddItem(ctx, "Resume", "https://example.com/cv", "mine")
	assert.ErrorIs(t, err, apperror.ErrTransport)

	view := flow.View()
	require.Len(t, view.Items, 1)
	assert.Equal(t, existing.ID, view.Items[0].ID)
	assert.Equal(t, editor.Form{Title: "Resume", Link: "https://example.com/cv", Description: "mine"}, view.Form)
	assert.Equal(t, editor.MessageError, view.Kind)
}

func TestDeleteItem_RemovesOnlyAfterSuccess(t *testing.T) {
	fx := newFixture(t)
	flow := fx.newFlow(t)
	ctx := t.Context()

	item, err := flow.AddItem(ctx, "Resume", "https://example.com/cv", "")
	require.NoError(t, err)

	fx.fake.Errs["DeleteItem"] = backend.ErrUnavailable
	err = flow.DeleteItem(ctx, item.ID)
	assert.Error(t, err)
	assert.Len(t, flow.Items(), 1)

	delete(fx.fake.Errs, "DeleteItem")
	require.NoError(t, flow.DeleteItem(ctx, item.ID))
	assert.Empty(t, flow.Items())
}

func TestDeleteItem_NotRemovedWhileInFlight(t *testing.T) {
	fx := newFixture(t)
	flow := fx.newFlow(t)
	ctx := t.Context()

	item, err := flow.AddItem(ctx, "Resume", "https://example.com/cv", "")
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	fx.fake.Block["DeleteItem"] = release
	fx.fake.OnCall = func(name string) {
		if name == "DeleteItem" {
			close(entered)
		}
	}

	done := make(chan error)
	go func() { done <- flow.DeleteItem(ctx, item.ID) }()

	<-entered
	assert.Len(t, flow.Items(), 1)
	close(release)
	require.NoError(t, <-done)
	assert.Empty(t, flow.Items())
}

func TestSaveProfile_SavingFlag(t *testing.T) {
	fx := newFixture(t)
	flow := fx.newFlow(t)
	ctx := t.Context()

	entered := make(chan struct{})
	var once sync.Once
	release := make(chan struct{})
	fx.fake.Block["UpsertProfile"] = release
	fx.fake.OnCall = func(name string) {
		if name == "UpsertProfile" {
			once.Do(func() { close(entered) })
		}
	}

	done := make(chan error)
	go func() {
		_, err := flow.SaveProfile(ctx, "Ada", "bio", "ada")
		done <- err
	}()

	<-entered
	assert.True(t, flow.Saving())
	assert.True(t, flow.View().Saving)

	_, err := flow.SaveProfile(ctx, "Ada", "bio", "ada")
	assert.ErrorIs(t, err, apperror.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, flow.Saving())
	assert.Equal(t, 1, fx.fake.CallCount("UpsertProfile"))
	assert.Equal(t, "ada", flow.View().Profile.UsernameOrEmpty())
}

func TestSaveProfile_CrossFlowBusy(t *testing.T) {
	fx := newFixture(t)
	a := fx.newFlow(t)
	b := fx.newFlow(t)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	fx.fake.Block["UpsertProfile"] = release
	fx.fake.OnCall = func(name string) {
		if name == "UpsertProfile" {
			close(entered)
		}
	}

	done := make(chan error)
	go func() {
		_, err := a.SaveProfile(ctx, "Ada", "", "")
		done <- err
	}()

	<-entered
	// A second tab of the same user is rejected by the shared guard.
	_, err := b.SaveProfile(ctx, "Ada B", "", "")
	assert.ErrorIs(t, err, apperror.ErrBusy)
	assert.Equal(t, "This change is already in progress", b.View().Message)

	close(release)
	require.NoError(t, <-done)
}

func TestUploadAvatar_UpdatesProfile(t *testing.T) {
	fx := newFixture(t)
	flow := fx.newFlow(t)

	profile, err := flow.UploadAvatar(t.Context(), avatarUpload(t))
	require.NoError(t, err)

	view := flow.View()
	assert.Equal(t, profile.AvatarURL, view.Profile.AvatarURL)
	assert.Equal(t, editor.MessageSuccess, view.Kind)
	assert.False(t, view.Saving)
	assert.Contains(t, fx.fake.Objects, "avatars/profile-"+fx.sess.UserID()+".png")
}

func TestNotice(t *testing.T) {
	fx := newFixture(t)
	flow := fx.newFlow(t)

	flow.Notice("Item added")
	view := flow.View()
	assert.Equal(t, "Item added", view.Message)
	assert.Equal(t, editor.MessageSuccess, view.Kind)

	fx.fake.Errs["Items"] = backend.ErrUnavailable
	failed, err := editor.New(fx.sess, fx.portfolio, fx.profiles)
	require.NoError(t, err)
	require.Error(t, failed.Load(t.Context()))
	failed.Notice("Item added")
	assert.Equal(t, editor.MessageError, failed.View().Kind)
}

func TestItemViews_DrivePreview(t *testing.T) {
	views := editor.ItemViews([]*model.PortfolioItem{
		{ID: "1", ExternalLink: "https://drive.google.com/file/d/abc123/view"},
		{ID: "2", ExternalLink: "https://example.com/deck"},
	})

	require.Len(t, views, 2)
	assert.Equal(t, "https://drive.google.com/file/d/abc123/preview", views[0].PreviewURL)
	assert.Empty(t, views[1].PreviewURL)
}

func avatarUpload(t *testing.T) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	_, header, err := req.FormFile("avatar")
	require.NoError(t, err)
	return header
}
