package web

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/orgvault/internal/adapter/driving/web/templates/pages"
	"github.com/ericfisherdev/orgvault/internal/domain/model"
)

func renderLaunch(t *testing.T, form model.LaunchForm, nonce string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, pages.Launch(toLaunchPage(form, nonce)).Render(context.Background(), &buf))
	return buf.String()
}

func TestLaunchPage_RendersFields(t *testing.T) {
	out := renderLaunch(t, model.LaunchForm{
		OrgName: "Acme",
		Action:  "https://login.salesforce.com",
		Fields: []model.LaunchField{
			{Name: "username", Value: "u1"},
			{Name: "password", Value: "p1"},
		},
	}, "abc123")

	assert.Contains(t, out, `<form method="post" action="https://login.salesforce.com">`)
	assert.Contains(t, out, `<input type="hidden" name="username" value="u1">`)
	assert.Contains(t, out, `<input type="hidden" name="password" value="p1">`)
	assert.Contains(t, out, `<script nonce="abc123">document.forms[0].submit();</script>`)
	assert.Contains(t, out, `<title>Launching Acme</title>`)
}

func TestLaunchPage_EscapesValues(t *testing.T) {
	out := renderLaunch(t, model.LaunchForm{
		OrgName: `<b>Acme</b> & "Co"`,
		Action:  `https://login.example.com/?a=1&b="x"`,
		Fields: []model.LaunchField{
			{Name: "username", Value: `"><script>alert(1)</script>`},
			{Name: "password", Value: `p'w"d<&>`},
		},
	}, "n")

	assert.NotContains(t, out, "<script>alert(1)</script>")
	assert.Contains(t, out, `value="&#34;&gt;&lt;script&gt;alert(1)&lt;/script&gt;"`)
	assert.Contains(t, out, `value="p&#39;w&#34;d&lt;&amp;&gt;"`)
	assert.Contains(t, out, `action="https://login.example.com/?a=1&amp;b=&#34;x&#34;"`)
	assert.Contains(t, out, `<title>Launching Acme &amp; &#34;Co&#34;</title>`)
	assert.NotContains(t, out, "<b>")
}

func TestLaunchPage_SanitizesUnsafeAction(t *testing.T) {
	out := renderLaunch(t, model.LaunchForm{
		OrgName: "Acme",
		Action:  "javascript:alert(document.cookie)",
	}, "n")

	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "about:invalid")
}

func TestPlainLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme", "Acme"},
		{"<i>Acme</i>", "Acme"},
		{"<script>x</script>Acme", "Acme"},
		{"Tom & Jerry", "Tom & Jerry"},
		{"  padded  ", "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, plainLabel(tt.in))
		})
	}
}

func TestToLaunchPage(t *testing.T) {
	page := toLaunchPage(model.LaunchForm{
		OrgName: "<i>Acme</i>",
		Action:  "https://login.salesforce.com",
		Fields:  []model.LaunchField{{Name: "username", Value: "u1"}},
	}, "n")

	assert.Equal(t, "Acme", page.Title)
	assert.Equal(t, "https://login.salesforce.com", page.Action)
	assert.Equal(t, "n", page.Nonce)
	require.Len(t, page.Fields, 1)
	assert.Equal(t, "u1", page.Fields[0].Value)
}

func TestLaunchCSP(t *testing.T) {
	tests := []struct {
		name       string
		action     string
		formAction string
	}{
		{name: "https endpoint", action: "https://login.salesforce.com/some/path?x=1", formAction: "form-action https:;"},
		{name: "http endpoint", action: "http://localhost:8080/login", formAction: "form-action http: https:;"},
		{name: "javascript", action: "javascript:alert(1)", formAction: "form-action 'none';"},
		{name: "relative", action: "/login", formAction: "form-action 'none';"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csp := launchCSP(tt.action, "NONCE")
			assert.Contains(t, csp, "default-src 'none'")
			assert.Contains(t, csp, "script-src 'nonce-NONCE'")
			assert.Contains(t, csp, tt.formAction)
		})
	}
}

func TestLaunchCSP_AllowsRedirectToOrgHost(t *testing.T) {
	csp := launchCSP("https://login.salesforce.com", "N")

	// The post-login redirect lands on a different host of the same scheme.
	assert.NotContains(t, csp, "form-action https://login.salesforce.com")
	assert.Contains(t, csp, "form-action https:")
}
