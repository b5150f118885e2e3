package ui

import (
	"context"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/craftfolio/craftfolio/internal/ctxkeys"
)

// Layout wraps page content in the document shell and top navigation.
func Layout(title string, content templ.Component) templ.Component {
	return Component(func(ctx context.Context, hw *Writer) {
		appName := "Craftfolio"
		if cfg := ctxkeys.Config(ctx); cfg != nil && cfg.AppName != "" {
			appName = cfg.AppName
		}
		if title == "" {
			title = appName
		} else {
			title = title + " · " + appName
		}

		hw.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.Printf(`<title>%s</title>`, title)
		hw.Printf(`<meta name="csrf-token" content="%s">`, ctxkeys.CSRFToken(ctx))
		hw.Raw(`<link rel="stylesheet" href="/assets/css/app.css">`)
		hw.Printf(`<script nonce="%s" src="/assets/js/app.js" defer></script>`, templ.GetNonce(ctx))
		hw.Raw(`</head><body class="min-h-screen bg-neutral-50 text-neutral-900">`)

		hw.Render(ctx, nav(appName))

		hw.Raw(`<main class="mx-auto max-w-3xl px-4 py-10">`)
		hw.Render(ctx, content)
		hw.Raw(`</main></body></html>`)
	})
}

func nav(appName string) templ.Component {
	return Component(func(ctx context.Context, hw *Writer) {
		hw.Raw(`<nav class="border-b bg-white"><div class="mx-auto flex max-w-3xl items-center justify-between px-4 py-3">`)
		hw.Printf(`<a href="/" class="font-semibold">%s</a><div class="flex items-center gap-4 text-sm">`, appName)

		if user := ctxkeys.User(ctx); user != nil {
			hw.Render(ctx, navLink("/dashboard", "Dashboard"))
			hw.Raw(`<form method="post" action="/logout">`)
			hw.Render(ctx, CSRFField())
			hw.Render(ctx, Button(ButtonProps{Label: "Log out", Variant: ButtonSecondary, Class: "px-3 py-1"}))
			hw.Raw(`</form>`)
		} else {
			hw.Render(ctx, navLink("/login", "Log in"))
			hw.Render(ctx, navLink("/signup", "Sign up"))
		}

		hw.Raw(`</div></div></nav>`)
	})
}

// navLink underlines the link of the current page.
func navLink(href, label string) templ.Component {
	return Component(func(ctx context.Context, hw *Writer) {
		class := "hover:underline"
		current := ctxkeys.URLPath(ctx) == href
		if current {
			class = twmerge.Merge(class, "font-semibold underline")
		}
		hw.Printf(`<a href="%s" class="%s"`, href, class)
		if current {
			hw.Raw(` aria-current="page"`)
		}
		hw.Printf(`>%s</a>`, label)
	})
}
