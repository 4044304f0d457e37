package sheets

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	// Scope grants read/write access to spreadsheets.
	Scope = "https://www.googleapis.com/auth/spreadsheets"

	defaultTokenURI = "https://oauth2.googleapis.com/token"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

var ErrMissingCredentials = errors.New("missing service account credentials")

// ServiceAccount is the subset of a Google service account key file we use.
type ServiceAccount struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`

	key *rsa.PrivateKey
}

// ParseCredentials parses a service account JSON key.
func ParseCredentials(data []byte) (*ServiceAccount, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, ErrMissingCredentials
	}

	sa := &ServiceAccount{}
	if err := json.Unmarshal(data, sa); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, fmt.Errorf("%w: client_email and private_key are required", ErrMissingCredentials)
	}
	if sa.TokenURI == "" {
		sa.TokenURI = defaultTokenURI
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	sa.key = key
	return sa, nil
}

// LoadCredentials reads credentials from raw JSON when given, otherwise
// from the file at path.
func LoadCredentials(rawJSON, path string) (*ServiceAccount, error) {
	if strings.TrimSpace(rawJSON) != "" {
		return ParseCredentials([]byte(rawJSON))
	}
	if path == "" {
		return nil, ErrMissingCredentials
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return ParseCredentials(data)
}

// assertion signs the JWT exchanged for an access token.
func (sa *ServiceAccount) assertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   sa.ClientEmail,
		"scope": Scope,
		"aud":   sa.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(sa.key)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// tokenSource caches the access token until shortly before it expires.
type tokenSource struct {
	sa   *ServiceAccount
	http *resty.Client
	now  func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// expiryMargin renews tokens this long before they expire.
const expiryMargin = time.Minute

func (ts *tokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := ts.now()
	if ts.token != "" && now.Add(expiryMargin).Before(ts.expires) {
		return ts.token, nil
	}

	signed, err := ts.sa.assertion(now)
	if err != nil {
		return "", fmt.Errorf("sign assertion: %w", err)
	}

	var tr tokenResponse
	resp, err := ts.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type": jwtBearerGrant,
			"assertion":  signed,
		}).
		SetResult(&tr).
		Post(ts.sa.TokenURI)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}
	if resp.IsError() {
		return "", apiError(resp)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response without access_token")
	}

	ts.token = tr.AccessToken
	ts.expires = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	return ts.token, nil
}
