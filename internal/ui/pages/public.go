package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/craftfolio/craftfolio/internal/editor"
	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/ui"
)

// PublicProfileData is everything the public page shows. Profile is nil
// for an unknown username; BioHTML is already sanitized markdown output.
type PublicProfileData struct {
	Username string
	Profile  *model.Profile
	BioHTML  string
	Items    []editor.ItemView
}

func PublicProfile(d PublicProfileData) templ.Component {
	title := d.Username
	if d.Profile != nil && d.Profile.Name != "" {
		title = d.Profile.Name
	}

	return ui.Layout(title, ui.Component(func(ctx context.Context, hw *ui.Writer) {
		hw.Raw(`<div class="space-y-8"><header class="flex items-center gap-4">`)
		if d.Profile != nil {
			hw.Render(ctx, ui.Avatar(d.Profile.AvatarURL, title, ""))
		}
		hw.Printf(`<div><h1 class="text-2xl font-semibold">%s</h1><p class="text-sm text-neutral-500">@%s</p></div></header>`, title, d.Username)

		if d.BioHTML != "" {
			hw.Raw(`<div class="prose text-neutral-700">`)
			hw.Render(ctx, templ.Raw(d.BioHTML))
			hw.Raw(`</div>`)
		}

		if len(d.Items) == 0 {
			hw.Raw(`<p class="rounded-lg border border-dashed p-8 text-center text-neutral-500">No items to show yet.</p>`)
		} else {
			hw.Raw(`<ul class="space-y-4">`)
			for _, item := range d.Items {
				hw.Raw(`<li class="rounded-lg border bg-white p-4">`)
				hw.Render(ctx, ItemCard(item))
				hw.Raw(`</li>`)
			}
			hw.Raw(`</ul>`)
		}
		hw.Raw(`</div>`)
	}))
}
