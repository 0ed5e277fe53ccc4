// Package vault owns the encrypted vault file: a JSON array of credential
// entries sealed with AES-256-GCM under the session key. Every mutation is
// a whole-document read-modify-write.
package vault

import "strings"

// Entry is a single stored credential.
type Entry struct {
	ID        string `json:"id"`
	Site      string `json:"site"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`
	UpdatedAt int64  `json:"updatedAt,omitempty"`
}

// Matches reports whether the site, username or notes contain filter,
// ignoring case. An empty filter matches everything.
func (e Entry) Matches(filter string) bool {
	if filter == "" {
		return true
	}
	f := strings.ToLower(filter)
	return strings.Contains(strings.ToLower(e.Site), f) ||
		strings.Contains(strings.ToLower(e.Username), f) ||
		strings.Contains(strings.ToLower(e.Notes), f)
}

// Find returns the index of the entry with id, or -1.
func Find(entries []Entry, id string) int {
	for i := range entries {
		if entries[i].ID == id {
			return i
		}
	}
	return -1
}
