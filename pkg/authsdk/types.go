package authsdk

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int    `json:"expires_in"` // access token lifetime in seconds
}

// VerifyTokenRequest is the body for POST /auth/verify-token.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// RefreshRequest is the body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is the body for POST /auth/logout. The refresh token is
// optional; pass both to invalidate the whole session.
type LogoutRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// PrincipalResponse is the decoded identity returned by verify-token and /auth/me.
type PrincipalResponse struct {
	Subject   string   `json:"sub"`
	Username  string   `json:"username,omitempty"`
	Roles     []string `json:"roles,omitempty"`
	JTI       string   `json:"jti"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
}

// BootstrapRequest seeds the default roles and first admin account.
type BootstrapRequest struct {
	Token         string `json:"token"`
	AdminUsername string `json:"admin_username"`
	AdminPassword string `json:"admin_password"`
}

// BootstrapResponse reports what bootstrap created.
type BootstrapResponse struct {
	AdminUserID string   `json:"admin_user_id"`
	Roles       []string `json:"roles"`
}

// RoleResponse is one entry in the admin-only role listing.
type RoleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ErrorResponse is the error body every endpoint uses.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// HealthResponse is returned by the livez/readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database    string `json:"database"`
	Revocations string `json:"revocations"`
	Signer      string `json:"signer"`
}
