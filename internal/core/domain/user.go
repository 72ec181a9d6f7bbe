package domain

// UserProfile is the session identity the core operates on behalf of.
// Absence of an ID means no session; every file operation is blocked then.
type UserProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	PhotoRef    string `json:"photo_ref,omitempty"`
}

// ProfilePatch mutates profile fields explicitly; nil leaves a field
// untouched, a pointer to the empty string clears it.
type ProfilePatch struct {
	DisplayName *string `json:"display_name,omitempty"`
	PhotoRef    *string `json:"photo_ref,omitempty"`
}
