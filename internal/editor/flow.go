// Package editor holds the dashboard's form state and keeps a local copy
// of the owner's items in step with the backend.
//
// Creating an item prepends it only after the backend confirmed it.
// Deleting removes it only after the backend confirmed it. A profile save
// marks the flow as saving for its whole duration and rejects a second
// save meanwhile.
package editor

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"sync"

	"github.com/craftfolio/craftfolio/internal/apperror"
	"github.com/craftfolio/craftfolio/internal/drive"
	"github.com/craftfolio/craftfolio/internal/model"
)

type Portfolio interface {
	Items(ctx context.Context, sess *model.Session) ([]*model.PortfolioItem, error)
	CreateItem(ctx context.Context, sess *model.Session, title, link, description string) (*model.PortfolioItem, error)
	DeleteItem(ctx context.Context, sess *model.Session, id string) error
}

type Profiles interface {
	Profile(ctx context.Context, sess *model.Session) (*model.Profile, error)
	UpsertProfile(ctx context.Context, sess *model.Session, name, bio, username string) (*model.Profile, error)
	UploadAvatar(ctx context.Context, sess *model.Session, header *multipart.FileHeader) (*model.Profile, error)
}

var ErrNoSession = errors.New("editor: session has no user")

type MessageKind string

const (
	MessageNone    MessageKind = ""
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

type Flow struct {
	portfolio Portfolio
	profiles  Profiles
	sess      *model.Session

	mu       sync.Mutex
	loaded   bool
	items    []*model.PortfolioItem
	profile  *model.Profile
	form     Form
	message  string
	kind     MessageKind
	field    string
	saving   bool
	adding   bool
	deleting map[string]bool
}

// Form is what the two dashboard forms show.
type Form struct {
	Title       string
	Link        string
	Description string
	Name        string
	Bio         string
	Username    string
}

// New binds a flow to one session. Nothing is fetched until Load.
func New(sess *model.Session, portfolio Portfolio, profiles Profiles) (*Flow, error) {
	if sess.UserID() == "" {
		return nil, ErrNoSession
	}
	return &Flow{
		portfolio: portfolio,
		profiles:  profiles,
		sess:      sess,
		deleting:  make(map[string]bool),
	}, nil
}

// Load fetches the profile and the item list once. Later calls are
// no-ops. A failed fetch leaves an empty section and sets the message.
func (f *Flow) Load(ctx context.Context) error {
	f.mu.Lock()
	if f.loaded {
		f.mu.Unlock()
		return nil
	}
	f.loaded = true
	f.mu.Unlock()

	profile, profileErr := f.profiles.Profile(ctx, f.sess)
	items, itemsErr := f.portfolio.Items(ctx, f.sess)

	f.mu.Lock()
	defer f.mu.Unlock()

	if profileErr == nil {
		f.profile = profile
		f.form.Name = profile.Name
		f.form.Bio = profile.Bio
		f.form.Username = profile.UsernameOrEmpty()
	}
	if itemsErr == nil {
		f.items = items
	}

	err := errors.Join(profileErr, itemsErr)
	if err != nil {
		f.setError(firstOf(profileErr, itemsErr))
	}
	return err
}

// AddItem creates an item. On success it goes to the head of the list and
// the item fields are cleared; on failure list and fields stay as they were.
func (f *Flow) AddItem(ctx context.Context, title, link, description string) (*model.PortfolioItem, error) {
	f.mu.Lock()
	f.form.Title, f.form.Link, f.form.Description = title, link, description
	if strings.TrimSpace(title) == "" || strings.TrimSpace(link) == "" {
		field := "title"
		if strings.TrimSpace(title) != "" {
			field = "link"
		}
		err := apperror.ValidationFailed(field, "Title and link are required")
		f.setError(err)
		f.mu.Unlock()
		return nil, err
	}
	if f.adding {
		err := apperror.Busy("Already adding an item")
		f.setError(err)
		f.mu.Unlock()
		return nil, err
	}
	f.adding = true
	f.mu.Unlock()

	item, err := f.portfolio.CreateItem(ctx, f.sess, title, link, description)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.adding = false

	if err != nil {
		f.setError(err)
		return nil, err
	}

	f.items = append([]*model.PortfolioItem{item}, f.items...)
	f.form.Title, f.form.Link, f.form.Description = "", "", ""
	f.setSuccess("Item added")
	return item, nil
}

// DeleteItem removes the item locally only once the backend confirmed.
func (f *Flow) DeleteItem(ctx context.Context, id string) error {
	f.mu.Lock()
	if f.deleting[id] {
		err := apperror.Busy("Already deleting this item")
		f.setError(err)
		f.mu.Unlock()
		return err
	}
	f.deleting[id] = true
	f.mu.Unlock()

	err := f.portfolio.DeleteItem(ctx, f.sess, id)

	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.deleting, id)

	if err != nil {
		f.setError(err)
		return err
	}

	kept := f.items[:0]
	for _, item := range f.items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	f.items = kept
	f.setSuccess("Item deleted")
	return nil
}

// SaveProfile upserts the profile. Saving reports true while it runs.
func (f *Flow) SaveProfile(ctx context.Context, name, bio, username string) (*model.Profile, error) {
	f.mu.Lock()
	f.form.Name, f.form.Bio, f.form.Username = name, bio, username
	if f.saving {
		err := apperror.Busy("Already saving")
		f.setError(err)
		f.mu.Unlock()
		return nil, err
	}
	f.saving = true
	f.mu.Unlock()

	profile, err := f.profiles.UpsertProfile(ctx, f.sess, name, bio, username)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.saving = false

	if err != nil {
		f.setError(err)
		return nil, err
	}

	f.profile = profile
	f.form.Username = profile.UsernameOrEmpty()
	f.setSuccess("Profile saved")
	return profile, nil
}

// UploadAvatar replaces the profile picture. It shares the saving flag
// with SaveProfile.
func (f *Flow) UploadAvatar(ctx context.Context, header *multipart.FileHeader) (*model.Profile, error) {
	f.mu.Lock()
	if f.saving {
		err := apperror.Busy("Already saving")
		f.setError(err)
		f.mu.Unlock()
		return nil, err
	}
	f.saving = true
	f.mu.Unlock()

	profile, err := f.profiles.UploadAvatar(ctx, f.sess, header)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.saving = false

	if err != nil {
		f.setError(err)
		return nil, err
	}

	f.profile = profile
	f.setSuccess("Avatar updated")
	return profile, nil
}

// Notice shows a success message carried over from a previous request,
// unless loading already set an error.
func (f *Flow) Notice(message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.kind == MessageError || message == "" {
		return
	}
	f.setSuccess(message)
}

// Fail shows err as the flow's message and returns it.
func (f *Flow) Fail(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setError(err)
	return err
}

func (f *Flow) Saving() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saving
}

func (f *Flow) Adding() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.adding
}

// Items returns a copy of the local list.
func (f *Flow) Items() []*model.PortfolioItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.PortfolioItem(nil), f.items...)
}

// View is a snapshot of the flow for rendering.
type View struct {
	User    *model.User
	Profile *model.Profile
	Items   []ItemView
	Form    Form
	Message string
	Kind    MessageKind
	Field   string
	Saving  bool
	Adding  bool
}

type ItemView struct {
	*model.PortfolioItem
	// PreviewURL is empty for links without a Drive file id.
	PreviewURL string
}

// ItemViews pairs each item with its Drive preview.
func ItemViews(items []*model.PortfolioItem) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, ItemView{PortfolioItem: item, PreviewURL: drive.PreviewURL(item.ExternalLink)})
	}
	return views
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	profile := f.profile
	if profile == nil {
		profile = &model.Profile{UserID: f.sess.UserID()}
	}

	return View{
		User:    f.sess.User,
		Profile: profile,
		Items:   ItemViews(f.items),
		Form:    f.form,
		Message: f.message,
		Kind:    f.kind,
		Field:   f.field,
		Saving:  f.saving,
		Adding:  f.adding,
	}
}

// setError and setSuccess must be called with f.mu held.
func (f *Flow) setError(err error) {
	f.message = apperror.UserMessage(err)
	f.kind = MessageError
	f.field = ""
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		f.field = appErr.Field
	}
}

func (f *Flow) setSuccess(message string) {
	f.message = message
	f.kind = MessageSuccess
	f.field = ""
}

func firstOf(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
