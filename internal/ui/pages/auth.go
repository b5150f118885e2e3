package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/craftfolio/craftfolio/internal/ui"
)

// AuthForm carries what a login or signup form shows after a failed
// submit. Passwords are never echoed back.
type AuthForm struct {
	Email    string
	FullName string
	Message  string
	Kind     string
	Field    string
}

func (f AuthForm) fieldError(name string) string {
	if f.Field == name {
		return f.Message
	}
	return ""
}

// alert shows the message unless it already sits under its field.
func (f AuthForm) alert() templ.Component {
	if f.Field != "" && f.Kind == "error" {
		return nil
	}
	return ui.Alert(f.Kind, f.Message)
}

func Login(form AuthForm) templ.Component {
	return ui.Layout("Log in", ui.Component(func(ctx context.Context, hw *ui.Writer) {
		hw.Raw(`<div class="mx-auto max-w-sm space-y-6"><h1 class="text-2xl font-semibold">Log in</h1>`)
		hw.Render(ctx, form.alert())
		hw.Raw(`<form method="post" action="/login" class="space-y-4">`)
		hw.Render(ctx, ui.CSRFField())
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "email", Label: "Email", Type: "email", Value: form.Email, Required: true, Error: form.fieldError("email")}))
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "password", Label: "Password", Type: "password", Required: true, Error: form.fieldError("password")}))
		hw.Render(ctx, ui.Button(ui.ButtonProps{Label: "Log in", Class: "w-full"}))
		hw.Raw(`</form><p class="text-sm text-neutral-600">No account yet? <a class="underline" href="/signup">Sign up</a></p></div>`)
	}))
}

func Signup(form AuthForm) templ.Component {
	return ui.Layout("Sign up", ui.Component(func(ctx context.Context, hw *ui.Writer) {
		hw.Raw(`<div class="mx-auto max-w-sm space-y-6"><h1 class="text-2xl font-semibold">Create your account</h1>`)
		hw.Render(ctx, form.alert())
		hw.Raw(`<form method="post" action="/signup" class="space-y-4">`)
		hw.Render(ctx, ui.CSRFField())
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "full_name", Label: "Full name", Value: form.FullName, Error: form.fieldError("full_name")}))
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "email", Label: "Email", Type: "email", Value: form.Email, Required: true, Error: form.fieldError("email")}))
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "password", Label: "Password", Type: "password", Required: true, Error: form.fieldError("password")}))
		hw.Render(ctx, ui.Input(ui.InputProps{Name: "confirm_password", Label: "Confirm password", Type: "password", Required: true, Error: form.fieldError("confirm_password")}))
		hw.Render(ctx, ui.Button(ui.ButtonProps{Label: "Sign up", Class: "w-full"}))
		hw.Raw(`</form><p class="text-sm text-neutral-600">Already registered? <a class="underline" href="/login">Log in</a></p></div>`)
	}))
}

// CheckEmail is shown after a signup that still needs email confirmation.
func CheckEmail(email string) templ.Component {
	return ui.Layout("Check your email", ui.Component(func(ctx context.Context, hw *ui.Writer) {
		hw.Raw(`<div class="mx-auto max-w-sm space-y-4 text-center"><h1 class="text-2xl font-semibold">Check your email</h1>`)
		hw.Printf(`<p class="text-neutral-600">We sent a confirmation link to <strong>%s</strong>. Open it, then log in.</p>`, email)
		hw.Raw(`<a class="underline" href="/login">Go to login</a></div>`)
	}))
}
