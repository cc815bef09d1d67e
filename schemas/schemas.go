// Package schemas embeds the JSON Schemas for payloads accepted by the API.
package schemas

import "embed"

// ProfileUpdate is the file name of the profile update schema.
const ProfileUpdate = "profile_update.schema.json"

//go:embed *.schema.json
var files embed.FS

// Load returns the raw contents of an embedded schema.
func Load(name string) ([]byte, error) {
	return files.ReadFile(name)
}
