package handler

import (
	"net/http"
	"strings"

	"github.com/craftfolio/craftfolio/internal/apperror"
	"github.com/craftfolio/craftfolio/internal/ctxkeys"
	"github.com/craftfolio/craftfolio/internal/middleware"
	"github.com/craftfolio/craftfolio/internal/service"
	"github.com/craftfolio/craftfolio/internal/ui"
	"github.com/craftfolio/craftfolio/internal/ui/pages"
)

type AuthHandler struct {
	sessions *service.SessionService
}

func NewAuthHandler(sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Login(pages.AuthForm{}))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	_, err := h.sessions.SignIn(r.Context(), w, email, password)
	if err != nil {
		ui.RenderStatus(w, r, statusFor(err), pages.Login(pages.AuthForm{
			Email:   email,
			Message: apperror.UserMessage(err),
			Kind:    messageKind(err),
			Field:   fieldOf(err),
		}))
		return
	}

	middleware.Redirect(w, r, middleware.DashboardPath)
}

func (h *AuthHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Signup(pages.AuthForm{}))
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	fullName := strings.TrimSpace(r.FormValue("full_name"))

	sess, err := h.sessions.SignUp(r.Context(), w, email, r.FormValue("password"), r.FormValue("confirm_password"), fullName)
	if err != nil {
		ui.RenderStatus(w, r, statusFor(err), pages.Signup(pages.AuthForm{
			Email:    email,
			FullName: fullName,
			Message:  apperror.UserMessage(err),
			Kind:     messageKind(err),
			Field:    fieldOf(err),
		}))
		return
	}

	// Email confirmation pending: the account exists but has no session yet.
	if sess.AccessToken == "" {
		ui.Render(w, r, pages.CheckEmail(email))
		return
	}

	middleware.Redirect(w, r, middleware.DashboardPath)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(r.Context(), w, ctxkeys.Session(r.Context()))
	middleware.Redirect(w, r, middleware.LoginPath)
}
