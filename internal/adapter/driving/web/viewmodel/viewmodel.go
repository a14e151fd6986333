// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// LaunchPage is the data for the auto-submitting launch page. Title is plain
// text and Action has already passed URL sanitization.
type LaunchPage struct {
	Title  string
	Action string
	Nonce  string
	Fields []LaunchField
}

// LaunchField is one hidden input posted to the org endpoint.
type LaunchField struct {
	Name  string
	Value string
}
