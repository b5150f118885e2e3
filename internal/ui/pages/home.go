package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/craftfolio/craftfolio/internal/ui"
)

func Home() templ.Component {
	return ui.Layout("", ui.Component(func(ctx context.Context, hw *ui.Writer) {
		hw.Raw(`<section class="py-16 text-center">`)
		hw.Raw(`<h1 class="text-4xl font-bold">Your work, one link away</h1>`)
		hw.Raw(`<p class="mt-4 text-neutral-600">Collect your projects, slides and documents from Google Drive on a single public page.</p>`)
		hw.Raw(`<div class="mt-8 flex justify-center gap-3">`)
		hw.Raw(`<a href="/signup" class="rounded-md bg-neutral-900 px-4 py-2 text-sm font-medium text-white">Create your portfolio</a>`)
		hw.Raw(`<a href="/login" class="rounded-md border border-neutral-300 px-4 py-2 text-sm font-medium">Log in</a>`)
		hw.Raw(`</div></section>`)
	}))
}

func NotFound() templ.Component {
	return ui.Layout("Not found", ui.Component(func(ctx context.Context, hw *ui.Writer) {
		hw.Raw(`<section class="py-16 text-center"><h1 class="text-2xl font-semibold">Page not found</h1>`)
		hw.Raw(`<p class="mt-2 text-neutral-600"><a class="underline" href="/">Back home</a></p></section>`)
	}))
}
