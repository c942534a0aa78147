package models

// Person represents a Webex identity referenced by the room history.
// Resolved reports whether the record came from the directory service;
// when the lookup returned not-found the person is a synthesized
// placeholder and Resolved is false.
type Person struct {
	ID          string   `json:"id"`
	Emails      []string `json:"emails"`
	DisplayName string   `json:"displayName"`
	NickName    string   `json:"nickName,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	Type        string   `json:"type,omitempty"`

	Resolved bool `json:"-"`
}

// UnresolvedDisplayName is the display name of placeholder records for
// identities the directory service no longer knows about.
const UnresolvedDisplayName = "Person Not Found"

// UnresolvedPerson builds the placeholder record used when an identity
// lookup returns not-found
func UnresolvedPerson(id string, emails ...string) *Person {
	return &Person{
		ID:          id,
		Emails:      emails,
		DisplayName: UnresolvedDisplayName,
	}
}
