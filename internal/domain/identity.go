package domain

// Identity is the user record carried in the session token claims.
type Identity struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Avatar      string `json:"avatar"`
}

// Name returns the best label for display.
func (i *Identity) Name() string {
	switch {
	case i == nil:
		return ""
	case i.DisplayName != "":
		return i.DisplayName
	case i.Email != "":
		return i.Email
	default:
		return i.ID
	}
}
