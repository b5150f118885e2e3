// Package backendtest provides an in-memory backend for tests of the
// layers above the drivers.
package backendtest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/model"
)

var _ backend.Backend = (*Fake)(nil)

// Fake keeps users, rows and objects in maps. Errs and Block let a test
// fail or park a call by method name ("CreateItem", "User", ...).
type Fake struct {
	mu       sync.Mutex
	accounts map[string]fakeAccount // by email
	access   map[string]string      // access token -> user id
	refresh  map[string]string      // refresh token -> user id
	profiles map[string]*model.Profile
	items    []*model.PortfolioItem
	Objects  map[string][]byte
	seq      int
	clock    time.Time

	Calls map[string]int
	Errs  map[string]error
	Block map[string]chan struct{}
	// OnCall runs at the start of every call, before Block.
	OnCall func(name string)
	// ConfirmEmail makes SignUp return a session without tokens.
	ConfirmEmail bool
}

type fakeAccount struct {
	user     *model.User
	password string
}

func NewFake() *Fake {
	return &Fake{
		accounts: make(map[string]fakeAccount),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		profiles: make(map[string]*model.Profile),
		Objects:  make(map[string][]byte),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Calls:    make(map[string]int),
		Errs:     make(map[string]error),
		Block:    make(map[string]chan struct{}),
	}
}

// AddUser creates an account and returns a signed-in session for it.
func (f *Fake) AddUser(email, password string) *model.Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	user := &model.User{ID: fmt.Sprintf("user-%d", f.seq), Email: email}
	f.accounts[email] = fakeAccount{user: user, password: password}
	return f.issue(user)
}

// ExpireAccess invalidates an access token, as if it timed out.
func (f *Fake) ExpireAccess(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.access, token)
}

func (f *Fake) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

// ProfileCount returns how many profile rows exist for userID.
func (f *Fake) ProfileCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[userID]; ok {
		return 1
	}
	return 0
}

func (f *Fake) call(ctx context.Context, name string) error {
	f.mu.Lock()
	f.Calls[name]++
	block := f.Block[name]
	err := f.Errs[name]
	onCall := f.OnCall
	f.mu.Unlock()

	if onCall != nil {
		onCall(name)
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *Fake) issue(user *model.User) *model.Session {
	f.seq++
	sess := &model.Session{
		AccessToken:  fmt.Sprintf("access-%d", f.seq),
		RefreshToken: fmt.Sprintf("refresh-%d", f.seq),
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         user,
	}
	f.access[sess.AccessToken] = user.ID
	f.refresh[sess.RefreshToken] = user.ID
	return sess
}

// owner must be called with f.mu held.
func (f *Fake) owner(accessToken, userID string) error {
	sub, ok := f.access[accessToken]
	if !ok {
		return backend.ErrUnauthorized
	}
	if sub != userID {
		return &backend.APIError{Status: http.StatusForbidden, Message: "row belongs to another user"}
	}
	return nil
}

func (f *Fake) SignUp(ctx context.Context, email, password, fullName string) (*model.Session, error) {
	err := f.call(ctx, "SignUp")
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.accounts[email]; exists {
		return nil, backend.Rejected("User already registered")
	}
	f.seq++
	user := &model.User{ID: fmt.Sprintf("user-%d", f.seq), Email: email}
	f.accounts[email] = fakeAccount{user: user, password: password}

	if f.ConfirmEmail {
		return &model.Session{User: user}, nil
	}
	return f.issue(user), nil
}

func (f *Fake) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	err := f.call(ctx, "SignIn")
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	account, ok := f.accounts[email]
	if !ok || account.password != password {
		return nil, &backend.APIError{Status: http.StatusBadRequest, Code: "invalid_credentials", Message: "Invalid login credentials"}
	}
	return f.issue(account.user), nil
}

func (f *Fake) User(ctx context.Context, accessToken string) (*model.User, error) {
	err := f.call(ctx, "User")
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	userID, ok := f.access[accessToken]
	if !ok {
		return nil, backend.ErrUnauthorized
	}
	for _, account := range f.accounts {
		if account.user.ID == userID {
			return account.user, nil
		}
	}
	return nil, backend.ErrUnauthorized
}

func (f *Fake) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	err := f.call(ctx, "Refresh")
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	userID, ok := f.refresh[refreshToken]
	if !ok {
		return nil, backend.ErrUnauthorized
	}
	delete(f.refresh, refreshToken)
	for _, account := range f.accounts {
		if account.user.ID == userID {
			return f.issue(account.user), nil
		}
	}
	return nil, backend.ErrUnauthorized
}

func (f *Fake) SignOut(ctx context.Context, accessToken string) error {
	err := f.call(ctx, "SignOut")
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	userID := f.access[accessToken]
	for token, owner := range f.refresh {
		if owner == userID {
			delete(f.refresh, token)
		}
	}
	return nil
}

func (f *Fake) Profile(ctx context.Context, accessToken, userID string) (*model.Profile, error) {
	err := f.call(ctx, "Profile")
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err = f.owner(accessToken, userID)
	if err != nil {
		return nil, err
	}
	profile, ok := f.profiles[userID]
	if !ok {
		return nil, backend.ErrNotFound
	}
	cp := *profile
	return &cp, nil
}

func (f *Fake) ProfileByUsername(ctx context.Context, username string) (*model.Profile, error) {
	err := f.call(ctx, "ProfileByUsername")
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, profile := range f.profiles {
		if profile.UsernameOrEmpty() == username {
			cp := *profile
			return &cp, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (f *Fake) UpsertProfile(ctx context.Context, accessToken string, profile *model.Profile) error {
	err := f.call(ctx, "UpsertProfile")
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err = f.owner(accessToken, profile.UserID)
	if err != nil {
		return err
	}
	if profile.Username != nil {
		for userID, other := range f.profiles {
			if userID != profile.UserID && other.UsernameOrEmpty() == *profile.Username {
				return &backend.APIError{Status: http.StatusConflict, Code: "23505", Message: "duplicate key"}
			}
		}
	}
	cp := *profile
	f.profiles[profile.UserID] = &cp
	return nil
}

func (f *Fake) Items(ctx context.Context, accessToken, userID string) ([]*model.PortfolioItem, error) {
	err := f.call(ctx, "Items")
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err = f.owner(accessToken, userID)
	if err != nil {
		return nil, err
	}

	// Newest first: items are appended in creation order.
	items := []*model.PortfolioItem{}
	for i := len(f.items) - 1; i >= 0; i-- {
		if f.items[i].UserID == userID {
			cp := *f.items[i]
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (f *Fake) PublicItems(ctx context.Context, userID string) ([]*model.PortfolioItem, error) {
	err := f.call(ctx, "PublicItems")
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	items := []*model.PortfolioItem{}
	for _, item := range f.items {
		if item.UserID == userID {
			cp := *item
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (f *Fake) CreateItem(ctx context.Context, accessToken string, item *model.PortfolioItem) error {
	err := f.call(ctx, "CreateItem")
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err = f.owner(accessToken, item.UserID)
	if err != nil {
		return err
	}

	f.seq++
	f.clock = f.clock.Add(time.Minute)
	item.ID = fmt.Sprintf("item-%d", f.seq)
	item.CreatedAt = f.clock

	cp := *item
	f.items = append(f.items, &cp)
	return nil
}

func (f *Fake) DeleteItem(ctx context.Context, accessToken, id, userID string) error {
	err := f.call(ctx, "DeleteItem")
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	err = f.owner(accessToken, userID)
	if err != nil {
		return err
	}

	kept := f.items[:0]
	for _, item := range f.items {
		if item.ID == id && item.UserID == userID {
			continue
		}
		kept = append(kept, item)
	}
	f.items = kept
	return nil
}

func (f *Fake) Upload(ctx context.Context, accessToken, path, contentType string, body io.Reader) (string, error) {
	err := f.call(ctx, "Upload")
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.access[accessToken]; !ok {
		return "", backend.ErrUnauthorized
	}
	f.Objects[path] = data
	return "https://objects.test/" + path, nil
}

func (f *Fake) Remove(ctx context.Context, accessToken, path string) error {
	err := f.call(ctx, "Remove")
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.access[accessToken]; !ok {
		return backend.ErrUnauthorized
	}
	delete(f.Objects, path)
	return nil
}
