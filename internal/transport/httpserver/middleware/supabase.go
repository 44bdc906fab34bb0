package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"family-drive-go/internal/config"
	"family-drive-go/internal/domain/identity"
)

// supabaseVerifier asks the Supabase auth API who owns the token.
type supabaseVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type userResponse struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Sub          string                 `json:"sub"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	User         struct {
		ID  string `json:"id"`
		Sub string `json:"sub"`
	} `json:"user"`
}

func newSupabaseVerifier(cfg config.SupabaseConfig) *supabaseVerifier {
	timeout := cfg.AuthTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &supabaseVerifier{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.PublishableKey,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (v *supabaseVerifier) Verify(ctx context.Context, token string) (identity.Actor, error) {
	if v.baseURL == "" || v.apiKey == "" {
		return identity.Actor{}, errAuthNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return identity.Actor{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return identity.Actor{}, fmt.Errorf("supabase user lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return identity.Actor{}, fmt.Errorf("supabase user lookup: status %d: %w", resp.StatusCode, errInvalidToken)
	}

	var payload userResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return identity.Actor{}, fmt.Errorf("supabase user lookup: decode: %w", err)
	}

	userID := firstNonEmpty(payload.ID, payload.Sub, payload.User.ID, payload.User.Sub)
	if userID == "" {
		return identity.Actor{}, errInvalidToken
	}

	return identity.Actor{
		ID:        userID,
		Email:     payload.Email,
		Name:      firstNonEmpty(stringFromMap(payload.UserMetadata, "name"), stringFromMap(payload.UserMetadata, "full_name")),
		AvatarURL: stringFromMap(payload.UserMetadata, "avatar_url"),
	}, nil
}
