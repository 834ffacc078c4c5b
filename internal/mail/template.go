package mail

import (
	"html"
	"strings"
)

// Vars holds the substitution values for template placeholders.
type Vars struct {
	Name     string // Recipient name - body only, never subjects
	Role     string
	Company  string
	JobLink  string
	UserName string
}

// Render replaces every occurrence of the recognized placeholders
// ({Name}, {Role}, {Company}, {JobLink}, {UserName}) with the HTML-escaped
// value from vars. Unrecognized placeholders pass through verbatim - this
// permissive policy is intentional and lets users keep literal braces in
// their templates. Rendering is idempotent once no recognized placeholders
// remain.
func Render(template string, vars Vars) string {
	r := strings.NewReplacer(
		"{Name}", html.EscapeString(vars.Name),
		"{Role}", html.EscapeString(vars.Role),
		"{Company}", html.EscapeString(vars.Company),
		"{JobLink}", html.EscapeString(vars.JobLink),
		"{UserName}", html.EscapeString(vars.UserName),
	)
	return r.Replace(template)
}

// RenderSubject substitutes only {Role}, {Company} and {UserName}.
// {Name} is not substitutable in subjects: a batch shares one subject line
// across all recipients.
func RenderSubject(subject string, vars Vars) string {
	r := strings.NewReplacer(
		"{Role}", html.EscapeString(vars.Role),
		"{Company}", html.EscapeString(vars.Company),
		"{UserName}", html.EscapeString(vars.UserName),
	)
	return r.Replace(subject)
}

// NewlinesToBreaks converts newline characters to <br> tags so a plain-text
// template renders with its line structure intact as an HTML body.
func NewlinesToBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
