package handler

import (
	"net/http"

	"github.com/craftfolio/craftfolio/internal/ctxkeys"
	"github.com/craftfolio/craftfolio/internal/middleware"
)

const noticeCookie = "notice"

const (
	noticeItemAdded     = "item-added"
	noticeItemDeleted   = "item-deleted"
	noticeProfileSaved  = "profile-saved"
	noticeAvatarUpdated = "avatar-updated"
)

// notices maps the cookie value to the message shown after the redirect.
// Only known codes are rendered.
var notices = map[string]string{
	noticeItemAdded:     "Item added",
	noticeItemDeleted:   "Item deleted",
	noticeProfileSaved:  "Profile saved",
	noticeAvatarUpdated: "Avatar updated",
}

func setNotice(w http.ResponseWriter, r *http.Request, code string) {
	cfg := ctxkeys.Config(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     noticeCookie,
		Value:    code,
		Path:     middleware.DashboardPath,
		MaxAge:   60,
		HttpOnly: true,
		Secure:   cfg != nil && cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// takeNotice returns the pending message once and clears the cookie.
func takeNotice(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(noticeCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:   noticeCookie,
		Path:   middleware.DashboardPath,
		MaxAge: -1,
	})
	return notices[cookie.Value]
}
