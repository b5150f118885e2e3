package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/craftfolio/craftfolio/internal/apperror"
	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/validation"
)

type ProfileService struct {
	rows     backend.Rows
	objects  backend.Objects
	inflight *InFlight
}

func NewProfileService(rows backend.Rows, objects backend.Objects, inflight *InFlight) *ProfileService {
	return &ProfileService{
		rows:     rows,
		objects:  objects,
		inflight: inflight,
	}
}

// Profile returns the session owner's profile. A user without a row
// gets an empty profile instead of an error.
func (s *ProfileService) Profile(ctx context.Context, sess *model.Session) (*model.Profile, error) {
	userID, err := requireUser(sess)
	if err != nil {
		return nil, err
	}

	profile, err := s.rows.Profile(ctx, sess.AccessToken, userID)
	if errors.Is(err, backend.ErrNotFound) {
		return &model.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fromBackend(err, "Could not load profile", "user_id", userID)
	}
	return profile, nil
}

// UpsertProfile writes name, bio and username. Calling it twice with the
// same input leaves the same single row. An empty username clears it.
func (s *ProfileService) UpsertProfile(ctx context.Context, sess *model.Session, name, bio, username string) (*model.Profile, error) {
	userID, err := requireUser(sess)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	bio = strings.TrimSpace(bio)

	err = validation.ValidateName(name)
	if err != nil {
		return nil, apperror.ValidationFailed("name", err.Error())
	}
	err = validation.ValidateBio(bio)
	if err != nil {
		return nil, apperror.ValidationFailed("bio", err.Error())
	}

	var usernamePtr *string
	if strings.TrimSpace(username) != "" {
		normalized := validation.NormalizeUsername(username)
		err = validation.ValidateUsername(normalized)
		if err != nil {
			return nil, apperror.ValidationFailed("username", err.Error())
		}
		usernamePtr = &normalized
	}

	release, err := s.inflight.Acquire(userID, "profile")
	if err != nil {
		return nil, err
	}
	defer release()

	// The row is replaced as a whole; carry the avatar over.
	profile, err := s.Profile(ctx, sess)
	if err != nil {
		return nil, err
	}

	profile.Name = name
	profile.Bio = bio
	profile.Username = usernamePtr
	profile.UpdatedAt = time.Now().UTC()

	err = s.rows.UpsertProfile(ctx, sess.AccessToken, profile)
	if errors.Is(err, backend.ErrConflict) {
		return nil, apperror.ValidationFailed("username", "This username is already taken")
	}
	if err != nil {
		return nil, fromBackend(err, "Could not save profile", "user_id", userID)
	}

	slog.Info("profile saved", "user_id", userID, "username", profile.UsernameOrEmpty())
	return profile, nil
}

// UploadAvatar stores the image at avatars/profile-{userID}.{ext},
// replacing any previous one, and points the profile at it. An old
// avatar stored under another extension is removed afterwards.
func (s *ProfileService) UploadAvatar(ctx context.Context, sess *model.Session, header *multipart.FileHeader) (*model.Profile, error) {
	userID, err := requireUser(sess)
	if err != nil {
		return nil, err
	}

	contentType, ext, err := validation.DetectImage(header)
	if err != nil {
		return nil, apperror.ValidationFailed("avatar", err.Error())
	}

	release, err := s.inflight.Acquire(userID, "avatar")
	if err != nil {
		return nil, err
	}
	defer release()

	file, err := header.Open()
	if err != nil {
		return nil, apperror.Transport("Could not read the uploaded file", err)
	}
	defer func() { _ = file.Close() }()

	key := fmt.Sprintf("avatars/profile-%s.%s", userID, ext)
	publicURL, err := s.objects.Upload(ctx, sess.AccessToken, key, contentType, file)
	if err != nil {
		return nil, fromBackend(err, "Could not upload image", "user_id", userID)
	}

	profile, err := s.Profile(ctx, sess)
	if err != nil {
		return nil, err
	}
	previous := avatarPath(profile.AvatarURL, userID)
	profile.AvatarURL = publicURL
	profile.UpdatedAt = time.Now().UTC()

	err = s.rows.UpsertProfile(ctx, sess.AccessToken, profile)
	if err != nil {
		return nil, fromBackend(err, "Could not save profile", "user_id", userID)
	}

	if previous != "" && previous != key {
		err = s.objects.Remove(ctx, sess.AccessToken, previous)
		if err != nil {
			slog.Warn("failed to remove old avatar", "error", err, "user_id", userID, "path", previous)
		}
	}

	slog.Info("avatar uploaded", "user_id", userID, "path", key)
	return profile, nil
}

// avatarPath recovers the object path of one of userID's own avatars
// from its public URL, or "" for anything else.
func avatarPath(avatarURL, userID string) string {
	if avatarURL == "" {
		return ""
	}
	u, err := url.Parse(avatarURL)
	if err != nil {
		return ""
	}
	name := path.Base(u.Path)
	if !strings.HasPrefix(name, "profile-"+userID+".") {
		return ""
	}
	return "avatars/" + name
}
