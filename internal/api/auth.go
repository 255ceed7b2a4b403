package api

import "context"

// Fallback descriptions when the server omits an error message.
const (
	loginFallback    = "Login failed"
	registerFallback = "Registration failed"
	meFallback       = "Failed to resolve session"
	profileFallback  = "Failed to update profile"
)

// Me resolves the current session token into its user. Used once at startup
// to validate a persisted token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.get(ctx, "/auth/me", &user, meFallback); err != nil {
		return User{}, err
	}
	return user, nil
}

// loginRequest is the JSON body for the login endpoint.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session token and user.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var sess Session
	body := loginRequest{Email: email, Password: password}
	if err := c.postJSON(ctx, "/auth/login", body, &sess, loginFallback); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Register creates an account. The optional avatar image travels in the same
// multipart request as the profile fields.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	fields := map[string]string{
		"username": req.Username,
		"email":    req.Email,
		"password": req.Password,
	}
	var sess Session
	if err := c.submitMultipart(ctx, "POST", "/auth/register", fields, req.Image, &sess, registerFallback); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// UpdateProfile updates the account and returns the server's canonical copy
// of the user. Callers replace their local user record wholesale with the
// result; partial local edits are never merged.
func (c *Client) UpdateProfile(ctx context.Context, username string, image *ImageAttachment) (User, error) {
	fields := map[string]string{"username": username}
	var user User
	if err := c.submitMultipart(ctx, "PUT", "/auth/me", fields, image, &user, profileFallback); err != nil {
		return User{}, err
	}
	return user, nil
}
