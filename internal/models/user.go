package models

type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// Identity is a registered account as kept in the credential directory.
type Identity struct {
	ID         int      `json:"id"`
	Email      string   `json:"email"`
	SecretHash string   `json:"passwordHash"`
	Role       UserRole `json:"role"`
}

// Session is the signed-in identity without its secret.
type Session struct {
	ID             int      `json:"id"`
	Email          string   `json:"email"`
	Role           UserRole `json:"role"`
	IsTempPassword bool     `json:"isTempPassword,omitempty"`
	Token          string   `json:"token,omitempty"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}
