package ui

import (
	"context"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/craftfolio/craftfolio/internal/ctxkeys"
)

type ButtonVariant string

const (
	ButtonPrimary     ButtonVariant = "primary"
	ButtonSecondary   ButtonVariant = "secondary"
	ButtonDestructive ButtonVariant = "destructive"
)

var buttonBase = "inline-flex items-center justify-center rounded-md px-4 py-2 text-sm font-medium disabled:opacity-50 disabled:pointer-events-none"

var buttonVariants = map[ButtonVariant]string{
	ButtonPrimary:     "bg-neutral-900 text-white hover:bg-neutral-700",
	ButtonSecondary:   "border border-neutral-300 bg-white text-neutral-900 hover:bg-neutral-100",
	ButtonDestructive: "bg-red-600 text-white hover:bg-red-500",
}

type ButtonProps struct {
	Label    string
	Variant  ButtonVariant
	Class    string
	Disabled bool
	// Confirm asks the browser for confirmation before submitting.
	Confirm string
}

func Button(p ButtonProps) templ.Component {
	if p.Variant == "" {
		p.Variant = ButtonPrimary
	}
	class := twmerge.Merge(buttonBase, buttonVariants[p.Variant], p.Class)

	return Component(func(ctx context.Context, hw *Writer) {
		hw.Printf(`<button type="submit" class="%s"`, class)
		if p.Disabled {
			hw.Raw(` disabled`)
		}
		if p.Confirm != "" {
			hw.Printf(` data-confirm="%s"`, p.Confirm)
		}
		hw.Printf(`>%s</button>`, p.Label)
	})
}

type InputProps struct {
	Name        string
	Label       string
	Type        string
	Value       string
	Placeholder string
	Required    bool
	Class       string
	// Error is shown under the field and marks it invalid.
	Error string
}

var inputBase = "mt-1 block w-full rounded-md border border-neutral-300 px-3 py-2 text-sm focus:border-neutral-900 focus:outline-none"

func Input(p InputProps) templ.Component {
	if p.Type == "" {
		p.Type = "text"
	}
	class := inputBase
	if p.Error != "" {
		class = twmerge.Merge(class, "border-red-500")
	}
	class = twmerge.Merge(class, p.Class)

	return Component(func(ctx context.Context, hw *Writer) {
		hw.Printf(`<label class="block text-sm font-medium" for="%s">%s`, p.Name, p.Label)
		if p.Type == "textarea" {
			hw.Printf(`<textarea id="%s" name="%s" rows="4" class="%s" placeholder="%s">%s</textarea>`,
				p.Name, p.Name, class, p.Placeholder, p.Value)
		} else {
			hw.Printf(`<input id="%s" name="%s" type="%s" value="%s" class="%s" placeholder="%s"`,
				p.Name, p.Name, p.Type, p.Value, class, p.Placeholder)
			if p.Required {
				hw.Raw(` required`)
			}
			if p.Error != "" {
				hw.Raw(` aria-invalid="true"`)
			}
			hw.Raw(`>`)
		}
		if p.Error != "" {
			hw.Printf(`<p class="mt-1 text-xs text-red-600">%s</p>`, p.Error)
		}
		hw.Raw(`</label>`)
	})
}

// Alert shows a flash message. kind is "error" or "success".
func Alert(kind, message string) templ.Component {
	return Component(func(ctx context.Context, hw *Writer) {
		if message == "" {
			return
		}
		class := "rounded-md border px-4 py-3 text-sm"
		switch kind {
		case "error":
			class = twmerge.Merge(class, "border-red-200 bg-red-50 text-red-800")
		case "success":
			class = twmerge.Merge(class, "border-green-200 bg-green-50 text-green-800")
		}
		hw.Printf(`<div role="alert" class="%s">%s</div>`, class, message)
	})
}

// CSRFField is the hidden token input every POST form carries.
func CSRFField() templ.Component {
	return Component(func(ctx context.Context, hw *Writer) {
		hw.Printf(`<input type="hidden" name="csrf_token" value="%s">`, ctxkeys.CSRFToken(ctx))
	})
}

// Avatar renders the profile picture or the initial of name.
func Avatar(url, name, class string) templ.Component {
	class = twmerge.Merge("h-16 w-16 rounded-full object-cover", class)
	return Component(func(ctx context.Context, hw *Writer) {
		if url != "" {
			hw.Printf(`<img src="%s" alt="%s" class="%s">`, url, name, class)
			return
		}
		initial := "?"
		if name != "" {
			initial = string([]rune(name)[0:1])
		}
		hw.Printf(`<div class="%s flex items-center justify-center bg-neutral-200 text-xl font-semibold">%s</div>`, class, initial)
	})
}
