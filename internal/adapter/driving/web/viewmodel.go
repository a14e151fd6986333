package web

import (
	"github.com/a-h/templ"

	"github.com/ericfisherdev/orgvault/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/orgvault/internal/domain/model"
)

// toLaunchPage converts a domain LaunchForm into its view model. The title is
// reduced to plain text and the action goes through templ's URL sanitizer,
// which replaces unsafe schemes with about:invalid.
func toLaunchPage(form model.LaunchForm, nonce string) viewmodel.LaunchPage {
	fields := make([]viewmodel.LaunchField, 0, len(form.Fields))
	for _, f := range form.Fields {
		fields = append(fields, viewmodel.LaunchField{Name: f.Name, Value: f.Value})
	}
	return viewmodel.LaunchPage{
		Title:  plainLabel(form.OrgName),
		Action: string(templ.URL(form.Action)),
		Nonce:  nonce,
		Fields: fields,
	}
}
