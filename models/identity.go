package models

// Identity is the caller identity resolved by the auth middleware from the
// inbound token. The engine never fabricates identity; every field comes from
// the external identity provider's claims.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
}
