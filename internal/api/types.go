package api

// User is the authenticated account as the server reports it.
type User struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// Character is a roster entry. The ID is server-assigned and stable; a
// character never exists locally before the server has confirmed it.
type Character struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Personality string `json:"personality"`
	Backstory   string `json:"backstory"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Message roles
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is a single conversation entry.
type Message struct {
	Content   string `json:"content"`
	Role      string `json:"role"`
	Timestamp int64  `json:"timestamp"`
}

// Session is the payload returned by login and register: a token plus the
// user it authenticates.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ChatReply is the server's response to a sent message.
type ChatReply struct {
	Response  string `json:"response"`
	Timestamp int64  `json:"timestamp"`
}

// ImageAttachment is an optional binary image sent alongside multipart
// requests (register, profile update, character create).
type ImageAttachment struct {
	Filename string
	Data     []byte
}

// RegisterRequest carries the fields for account creation.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	Image    *ImageAttachment
}

// CharacterDraft carries the fields for character creation.
type CharacterDraft struct {
	Name        string
	Personality string
	Backstory   string
	Image       *ImageAttachment
}
