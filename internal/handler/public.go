package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/craftfolio/craftfolio/internal/editor"
	"github.com/craftfolio/craftfolio/internal/markdown"
	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/ui"
	"github.com/craftfolio/craftfolio/internal/ui/pages"
	"github.com/craftfolio/craftfolio/internal/validation"
)

// PublicPortfolios reads a portfolio without a session.
type PublicPortfolios interface {
	PublicPortfolio(ctx context.Context, username string) (*model.Profile, []*model.PortfolioItem, error)
}

type PublicHandler struct {
	portfolios PublicPortfolios
	markdown   *markdown.Parser
}

func NewPublicHandler(portfolios PublicPortfolios, parser *markdown.Parser) *PublicHandler {
	return &PublicHandler{
		portfolios: portfolios,
		markdown:   parser,
	}
}

// ProfilePage renders /{username}. A failed fetch and an unknown user
// both show the empty state; only a name that can never be a username
// is a 404.
func (h *PublicHandler) ProfilePage(w http.ResponseWriter, r *http.Request) {
	username := validation.NormalizeUsername(r.PathValue("username"))
	if validation.ValidateUsername(username) != nil {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}

	profile, items, err := h.portfolios.PublicPortfolio(r.Context(), username)
	if err != nil {
		slog.Warn("public portfolio unavailable", "error", err, "username", username)
		items = nil
	}

	data := pages.PublicProfileData{
		Username: username,
		Profile:  profile,
		Items:    editor.ItemViews(items),
	}
	if profile != nil && profile.Bio != "" {
		bio, err := h.markdown.ParseString(profile.Bio)
		if err != nil {
			slog.Error("failed to render bio", "error", err, "username", username)
		}
		data.BioHTML = bio
	}

	ui.Render(w, r, pages.PublicProfile(data))
}
