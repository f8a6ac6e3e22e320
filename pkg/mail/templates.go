package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
)

const (
	TemplateVerifyEmail   = "verify_email"
	TemplateResetPassword = "reset_password"
)

type templatePair struct {
	subject string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// Renderer turns a template name plus data into a Message.
type Renderer struct {
	appName   string
	templates map[string]templatePair
}

var builtin = map[string]struct{ subject, text, html string }{
	TemplateVerifyEmail: {
		subject: "Verify Email Address",
		text: `Hello {{ .Name | default "there" }},

Please click the link below to verify your email address:
{{ .URL }}

This link expires in {{ .ExpiresIn }}.
If you did not create an account, no further action is required.

{{ .AppName }}`,
		html: `<p>Hello {{ .Name | default "there" }},</p>
<p>Please click the button below to verify your email address.</p>
<p><a href="{{ .URL }}">Verify Email Address</a></p>
<p>This link expires in {{ .ExpiresIn }}.</p>
<p>{{ .AppName }}</p>`,
	},
	TemplateResetPassword: {
		subject: "Reset Password Notification",
		text: `You are receiving this email because we received a password reset request for {{ .Email | lower }}.

Reset your password: {{ .URL }}

This password reset link will expire in {{ .ExpiresIn }}.
If you did not request a password reset, no further action is required.

{{ .AppName }}`,
		html: `<p>You are receiving this email because we received a password reset request for your account.</p>
<p><a href="{{ .URL }}">Reset Password</a></p>
<p>This password reset link will expire in {{ .ExpiresIn }}.</p>
<p>{{ .AppName }}</p>`,
	},
}

func NewRenderer(appName string) (*Renderer, error) {
	r := &Renderer{appName: appName, templates: make(map[string]templatePair, len(builtin))}
	for name, src := range builtin {
		txt, err := texttemplate.New(name).Funcs(sprig.TxtFuncMap()).Parse(src.text)
		if err != nil {
			return nil, fmt.Errorf("parse %s text: %w", name, err)
		}
		html, err := htmltemplate.New(name).Funcs(sprig.FuncMap()).Parse(src.html)
		if err != nil {
			return nil, fmt.Errorf("parse %s html: %w", name, err)
		}
		r.templates[name] = templatePair{subject: src.subject, text: txt, html: html}
	}
	return r, nil
}

// Render fills the template. data is merged with AppName.
func (r *Renderer) Render(name, to string, data map[string]any) (Message, error) {
	tpl, ok := r.templates[name]
	if !ok {
		return Message{}, fmt.Errorf("unknown mail template %q", name)
	}

	vars := make(map[string]any, len(data)+1)
	for k, v := range data {
		vars[k] = v
	}
	vars["AppName"] = r.appName

	var text, html bytes.Buffer
	if err := tpl.text.Execute(&text, vars); err != nil {
		return Message{}, fmt.Errorf("render %s text: %w", name, err)
	}
	if err := tpl.html.Execute(&html, vars); err != nil {
		return Message{}, fmt.Errorf("render %s html: %w", name, err)
	}

	return Message{To: to, Subject: tpl.subject, Text: text.String(), HTML: html.String()}, nil
}
