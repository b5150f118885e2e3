package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/craftfolio/craftfolio/internal/backend"
	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/repository"
)

const minPasswordLength = 6

var errInvalidCredentials = &backend.APIError{
	Status:  http.StatusBadRequest,
	Code:    "invalid_credentials",
	Message: "Invalid login credentials",
}

func (l *Local) SignUp(ctx context.Context, email, password, fullName string) (*model.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	if len(password) < minPasswordLength {
		return nil, backend.Rejected(fmt.Sprintf("Password should be at least %d characters", minPasswordLength))
	}
	// bcrypt silently truncates past 72 bytes
	if len(password) > 72 {
		return nil, backend.Rejected("Password should be at most 72 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
	}
	err = l.users.Create(ctx, account)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, backend.Rejected("User already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if l.mailer != nil {
		err = l.mailer.SendWelcome(ctx, account.Email, account.FullName)
		if err != nil {
			slog.Warn("failed to send welcome email", "error", err, "user_id", account.ID)
		}
	}

	return l.issueSession(ctx, account.User())
}

func (l *Local) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	account, err := l.users.ByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password))
	if err != nil {
		return nil, errInvalidCredentials
	}

	return l.issueSession(ctx, account.User())
}

func (l *Local) User(ctx context.Context, accessToken string) (*model.User, error) {
	userID, err := l.verify(accessToken)
	if err != nil {
		return nil, err
	}

	account, err := l.users.ByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, backend.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return account.User(), nil
}

func (l *Local) Refresh(ctx context.Context, refreshToken string) (*model.Session, error) {
	tok, err := l.tokens.Consume(ctx, refreshToken)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, backend.ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	account, err := l.users.ByID(ctx, tok.UserID)
	if err != nil {
		return nil, backend.ErrUnauthorized
	}

	return l.issueSession(ctx, account.User())
}

// SignOut revokes every refresh token of the user. Access tokens stay
// valid until they expire, as with the hosted service.
func (l *Local) SignOut(ctx context.Context, accessToken string) error {
	userID, err := l.verify(accessToken)
	if err != nil {
		return err
	}
	return l.tokens.RevokeAll(ctx, userID)
}

func (l *Local) issueSession(ctx context.Context, user *model.User) (*model.Session, error) {
	now := time.Now()
	expiresAt := now.Add(l.jwtExpiry)

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  "authenticated",
		"exp":   expiresAt.Unix(),
		"iat":   now.Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(l.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := generateToken()
	if err != nil {
		return nil, err
	}
	err = l.tokens.Create(ctx, &repository.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(l.refreshExpiry).UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &model.Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Unix(expiresAt.Unix(), 0),
		User:         user,
	}, nil
}

// verify checks signature and expiry and returns the subject.
func (l *Local) verify(accessToken string) (string, error) {
	if accessToken == "" {
		return "", backend.ErrUnauthorized
	}

	token, err := jwt.Parse(accessToken, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return l.jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", backend.ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", backend.ErrUnauthorized
	}
	return sub, nil
}

// authorize enforces that the token belongs to ownerID.
func (l *Local) authorize(accessToken, ownerID string) error {
	sub, err := l.verify(accessToken)
	if err != nil {
		return err
	}
	if sub != ownerID {
		return &backend.APIError{Status: http.StatusForbidden, Message: "row belongs to another user"}
	}
	return nil
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
