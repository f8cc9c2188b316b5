package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleProvider runs the authorization-code flow and fetches the user's profile.
type GoogleProvider struct {
	OAuth       *oauth2.Config
	UserInfoURL string
	logger      *zap.Logger
}

func NewGoogleProvider(clientID, clientSecret, callbackURL string, logger *zap.Logger) *GoogleProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoogleProvider{
		OAuth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "profile", "email"},
		},
		UserInfoURL: GoogleUserInfoURL,
		logger:      logger,
	}
}

// NewState returns a random value for the OAuth state parameter.
func NewState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// AuthCodeURL is where the browser is sent to consent.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades the callback code for a token and returns the asserted identity.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	tok, err := g.OAuth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange code: %w", err)
	}

	client := resty.NewWithClient(g.OAuth.Client(ctx, tok)).
		SetTimeout(10*time.Second).
		SetHeader("Accept", "application/json")

	var info googleUserInfo
	resp, err := client.R().SetContext(ctx).SetResult(&info).Get(g.UserInfoURL)
	if err != nil {
		return Identity{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	if resp.IsError() {
		g.logger.Warn("google userinfo rejected", zap.Int("status_code", resp.StatusCode()))
		return Identity{}, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode())
	}
	if !info.EmailVerified {
		return Identity{}, fmt.Errorf("google account e-mail %q is not verified", info.Email)
	}
	return Identity{Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}
