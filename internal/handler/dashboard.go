package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/craftfolio/craftfolio/internal/apperror"
	"github.com/craftfolio/craftfolio/internal/ctxkeys"
	"github.com/craftfolio/craftfolio/internal/editor"
	"github.com/craftfolio/craftfolio/internal/middleware"
	"github.com/craftfolio/craftfolio/internal/ui"
	"github.com/craftfolio/craftfolio/internal/ui/pages"
)

type DashboardHandler struct {
	portfolio editor.Portfolio
	profiles  editor.Profiles
}

func NewDashboardHandler(portfolio editor.Portfolio, profiles editor.Profiles) *DashboardHandler {
	return &DashboardHandler{
		portfolio: portfolio,
		profiles:  profiles,
	}
}

// flow builds and loads the editor for the request's session. It writes
// the response itself and returns nil when the page cannot be built.
func (h *DashboardHandler) flow(w http.ResponseWriter, r *http.Request) *editor.Flow {
	flow, err := editor.New(ctxkeys.Session(r.Context()), h.portfolio, h.profiles)
	if err != nil {
		middleware.Redirect(w, r, middleware.LoginPath)
		return nil
	}

	err = flow.Load(r.Context())
	if errors.Is(err, apperror.ErrAuth) {
		middleware.Redirect(w, r, middleware.LoginPath)
		return nil
	}
	// Other load failures are shown on the page.
	return flow
}

// render shows the dashboard after an action, or sends the user to the
// login page when the action found the session expired.
func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, flow *editor.Flow, err error) {
	if errors.Is(err, apperror.ErrAuth) {
		middleware.Redirect(w, r, middleware.LoginPath)
		return
	}
	ui.RenderStatus(w, r, statusFor(err), pages.Dashboard(flow.View()))
}

// done answers a successful action with a redirect back to the
// dashboard so a reload does not post the form again. Failures
// re-render the page with the form as submitted.
func (h *DashboardHandler) done(w http.ResponseWriter, r *http.Request, flow *editor.Flow, err error, notice string) {
	if err != nil {
		h.render(w, r, flow, err)
		return
	}
	setNotice(w, r, notice)
	middleware.Redirect(w, r, middleware.DashboardPath)
}

func (h *DashboardHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	flow := h.flow(w, r)
	if flow == nil {
		return
	}
	flow.Notice(takeNotice(w, r))
	ui.Render(w, r, pages.Dashboard(flow.View()))
}

func (h *DashboardHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	flow := h.flow(w, r)
	if flow == nil {
		return
	}

	_, err := flow.AddItem(r.Context(), r.FormValue("title"), r.FormValue("link"), r.FormValue("description"))
	h.done(w, r, flow, err, noticeItemAdded)
}

func (h *DashboardHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	flow := h.flow(w, r)
	if flow == nil {
		return
	}

	err := flow.DeleteItem(r.Context(), r.PathValue("id"))
	h.done(w, r, flow, err, noticeItemDeleted)
}

func (h *DashboardHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	flow := h.flow(w, r)
	if flow == nil {
		return
	}

	_, err := flow.SaveProfile(r.Context(), r.FormValue("name"), r.FormValue("bio"), r.FormValue("username"))
	h.done(w, r, flow, err, noticeProfileSaved)
}

func (h *DashboardHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	flow := h.flow(w, r)
	if flow == nil {
		return
	}

	// Size and type are checked by the profile service.
	_, header, err := r.FormFile("avatar")
	if err != nil {
		slog.Debug("avatar form without file", "error", err)
		h.render(w, r, flow, flow.Fail(apperror.ValidationFailed("avatar", "Please choose an image to upload")))
		return
	}

	_, err = flow.UploadAvatar(r.Context(), header)
	h.done(w, r, flow, err, noticeAvatarUpdated)
}
