package auth

// Role names used by the API key configuration.
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
	RoleViewer  = "viewer"
)

// ValidRole reports whether role is one of the recognized role names.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleAnalyst, RoleViewer:
		return true
	}
	return false
}

// APIKeyInfo represents an API key with metadata.
type APIKeyInfo struct {
	Key     string
	UserID  string
	Role    string
	Enabled bool
}

// APIKeyStore stores and validates API keys.
type APIKeyStore interface {
	Validate(key string) (*APIKeyInfo, error)
	List() []*APIKeyInfo
}
