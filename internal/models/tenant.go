package models

import "time"

// TenantConfig holds one company's credentials: the Whapi gateway token
// plus the OAuth client pair and rotating token pair used against the
// conversation provider. The refresh token is replaced on every exchange.
type TenantConfig struct {
	TenantID     string    `json:"tenant_id"`
	GHLClientID  string    `json:"ghl_id"`
	GHLSecret    string    `json:"ghl_secret"`
	RefreshToken string    `json:"refresh_token"`
	AccessToken  string    `json:"access_token,omitempty"`
	WhapiToken   string    `json:"whapiToken"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenPair is the portion of a tenant config rewritten after a
// successful OAuth exchange. Other fields keep their stored values.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
