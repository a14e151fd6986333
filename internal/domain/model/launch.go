package model

// LaunchForm describes a browser form that posts an org's decrypted
// credentials to its endpoint. Fields are rendered in order as hidden inputs.
type LaunchForm struct {
	OrgName string
	Action  string
	Fields  []LaunchField
}

// LaunchField is a single hidden form input.
type LaunchField struct {
	Name  string
	Value string
}
