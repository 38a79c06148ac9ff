package auth

// User is the account snapshot embedded into a session at creation time.
// It is carried by value so the session record never changes if the
// underlying account row is edited later.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}
