package auth

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const (
	// ProviderAzure is the registration name of the Azure AD provider.
	ProviderAzure = "azure"

	defaultGraphMeURL = "https://graph.microsoft.com/v1.0/me"
)

// AzureProvider completes the Azure AD OAuth2 code flow and reads the signed-in
// user's profile from Microsoft Graph. Client id, secret, and tenant come from
// environment configuration.
type AzureProvider struct {
	oauth      *oauth2.Config
	http       *resty.Client
	graphMeURL string
}

func NewAzureProvider(clientID, clientSecret, tenantID, redirectURL string) *AzureProvider {
	return &AzureProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     microsoft.AzureADEndpoint(tenantID),
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "profile", "email", "User.Read"},
		},
		http:       resty.New(),
		graphMeURL: defaultGraphMeURL,
	}
}

func (p *AzureProvider) Name() string {
	return ProviderAzure
}

// AuthCodeURL returns the provider consent URL for the given anti-forgery state.
func (p *AzureProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// graphProfile is the subset of the Graph /me response the gateway reads.
type graphProfile struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	PreferredLanguage string `json:"preferredLanguage"`
}

// Exchange trades the authorization code for a token and maps the Graph
// profile to the gateway's minimal identity shape. Provider identities are
// never admins and never touch the user store.
func (p *AzureProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	var profile graphProfile
	resp, err := p.http.R().
		SetContext(ctx).
		SetAuthToken(token.AccessToken).
		SetResult(&profile).
		Get(p.graphMeURL)
	if err != nil {
		return nil, fmt.Errorf("graph profile request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("graph profile request: status %d", resp.StatusCode())
	}

	email := profile.Mail
	if email == "" {
		email = profile.UserPrincipalName
	}
	if email == "" {
		return nil, fmt.Errorf("graph profile has no email")
	}

	language := "en"
	if profile.PreferredLanguage != "" {
		language = profile.PreferredLanguage
	}

	return &Identity{
		ID:       azureObjectID(profile.ID),
		Email:    email,
		Name:     profile.DisplayName,
		IsAdmin:  false,
		Language: language,
	}, nil
}

// azureObjectID converts the directory object id into a UUID. Graph ids are
// GUIDs already; anything else is hashed into a stable name-based UUID.
func azureObjectID(id string) uuid.UUID {
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("azure:"+id))
}
