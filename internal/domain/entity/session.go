package entity

// SessionKey is the key-value store key holding the logged-in identity
const SessionKey = "user"

// Session is the read-only projection of the logged-in identity
type Session struct {
	Type  string `json:"type"`
	Email string `json:"email"`
}

// IsAdmin returns true for admin sessions
func (s *Session) IsAdmin() bool {
	return s != nil && s.Type == UserTypeAdmin
}

// Owns returns true if the session may see the bill on its own list
func (s *Session) Owns(b *Bill) bool {
	if s == nil {
		return false
	}
	if s.IsAdmin() || s.Email == "" {
		return true
	}
	return b.Email == s.Email
}
