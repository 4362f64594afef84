package credentials

// Credential is the durable token pair issued by the gateway's /auth/exchange.
// Either field may be empty; a credential with no access token and no refresh
// token means the session is unauthenticated.
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Present reports whether the credential carries any token at all.
func (c Credential) Present() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}
