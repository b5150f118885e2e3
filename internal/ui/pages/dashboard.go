package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/craftfolio/craftfolio/internal/editor"
	"github.com/craftfolio/craftfolio/internal/ui"
)

// inlineFields are shown under their input instead of in the alert.
var inlineFields = map[string]bool{
	"name":     true,
	"username": true,
	"bio":      true,
	"title":    true,
	"link":     true,
}

func Dashboard(v editor.View) templ.Component {
	return ui.Layout("Dashboard", ui.Component(func(ctx context.Context, hw *ui.Writer) {
		fieldError := func(name string) string {
			if v.Field == name {
				return v.Message
			}
			return ""
		}

		hw.Raw(`<div class="space-y-10">`)
		if !inlineFields[v.Field] {
			hw.Render(ctx, ui.Alert(string(v.Kind), v.Message))
		}

		// Profile
		hw.Raw(`<section class="space-y-4"><div class="flex items-center gap-4">`)
		hw.Render(ctx, ui.Avatar(v.Profile.AvatarURL, v.Profile.Name, ""))
		hw.Raw(`<div><h1 class="text-2xl font-semibold">Your profile</h1>`)
		if username := v.Profile.UsernameOrEmpty(); username != "" {
			hw.Printf(`<a class="text-sm underline" href="/%s">Public page: /%s</a>`, username, username)
		} else if v.User != nil {
			hw.Printf(`<p class="text-sm text-neutral-600">Signed in as %s. Pick a username to publish your page.</p>`, v.User.Email)
		}
		hw.Raw(`</div></div>`)

		hw.Raw(`<form method="post" action="/dashboard/avatar" enctype="multipart/form-data" class="flex items-end gap-3">`)
		hw.Render(ctx, ui.CSRFField())
		hw.Raw(`<label class="block text-sm font-medium">Avatar<input name="avatar" type="file" accept="image/jpeg,image/png,image/webp" class="mt-1 block text-sm"></label>`)
		hw.Render(ctx, ui.Button(ui.ButtonProps{Label: "Upload", Variant: ui.ButtonSecondary}))
		hw.Raw(`</form>`)

		hw.Raw(`<form method="post" action="/dashboard/profile" class="space-y-4">`)
		hw.Render(ctx, ui.CSRFField())
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "name", Label: "Name", Value: v.Form.Name, Error: fieldError("name")}))
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "username", Label: "Username", Value: v.Form.Username, Placeholder: "zoe-smith", Error: fieldError("username")}))
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "bio", Label: "Bio (markdown)", Type: "textarea", Value: v.Form.Bio, Error: fieldError("bio")}))
		label := "Save profile"
		if v.Saving {
			label = "Saving..."
		}
		hw.Render(ctx, ui.Button(ui.ButtonProps{Label: label, Disabled: v.Saving}))
		hw.Raw(`</form></section>`)

		// New item
		hw.Raw(`<section class="space-y-4"><h2 class="text-xl font-semibold">Add an item</h2>`)
		hw.Raw(`<form method="post" action="/dashboard/items" class="space-y-4">`)
		hw.Render(ctx, ui.CSRFField())
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "title", Label: "Title", Value: v.Form.Title, Required: true, Error: fieldError("title")}))
		hw.Render(ctx, ui.Input(ui.InputProps{
			Name:        "link",
			Label:       "Link",
			Type:        "url",
			Value:       v.Form.Link,
			Placeholder: "https://drive.google.com/file/d/1ABC123xyz/view?usp=sharing",
			Required:    true,
			Error:       fieldError("link"),
		}))
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "description", Label: "Description", Type: "textarea", Value: v.Form.Description}))
		hw.Render(ctx, ui.Button(ui.ButtonProps{Label: "Add item", Disabled: v.Adding}))
		hw.Raw(`</form></section>`)

		// Items
		hw.Raw(`<section class="space-y-4"><h2 class="text-xl font-semibold">Your items</h2>`)
		if len(v.Items) == 0 {
			hw.Raw(`<p class="text-sm text-neutral-600">Nothing here yet.</p>`)
		}
		hw.Raw(`<ul id="items" class="space-y-4">`)
		for _, item := range v.Items {
			hw.Printf(`<li id="item-%s" class="rounded-lg border bg-white p-4">`, item.ID)
			hw.Render(ctx, ItemCard(item))
			hw.Printf(`<form method="post" action="/dashboard/items/%s/delete" class="mt-3">`, item.ID)
			hw.Render(ctx, ui.CSRFField())
			hw.Render(ctx, ui.Button(ui.ButtonProps{
				Label:   "Delete",
				Variant: ui.ButtonDestructive,
				Class:   "px-3 py-1",
				Confirm: "Delete " + item.Title + "?",
			}))
			hw.Raw(`</form></li>`)
		}
		hw.Raw(`</ul></section></div>`)
	}))
}

// ItemCard renders title, link, description and the Drive preview if
// the link has one.
func ItemCard(item editor.ItemView) templ.Component {
	return ui.Component(func(ctx context.Context, hw *ui.Writer) {
		hw.Printf(`<h3 class="font-medium">%s</h3>`, item.Title)
		hw.Printf(`<a class="break-all text-sm underline" href="%s" target="_blank" rel="noopener noreferrer">%s</a>`,
			item.ExternalLink, item.ExternalLink)
		if item.Description != "" {
			hw.Printf(`<p class="mt-2 text-sm text-neutral-700">%s</p>`, item.Description)
		}
		if item.PreviewURL != "" {
			hw.Printf(`<iframe src="%s" class="mt-3 h-64 w-full rounded border" loading="lazy" allow="autoplay"></iframe>`, item.PreviewURL)
		}
	})
}
