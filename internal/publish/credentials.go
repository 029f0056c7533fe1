package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrCredentialsUnavailable marks a credentials file that is missing,
// unreadable, or incomplete. It is fatal before any posting API call.
var ErrCredentialsUnavailable = errors.New("credentials unavailable")

// Credentials is the client id/secret/access-token triple used to
// authenticate against the destination account.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AccessToken  string `json:"access_token"`
}

// ReadCredentials loads and validates the credentials JSON file.
func ReadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCredentialsUnavailable, path, err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCredentialsUnavailable, path, err)
	}

	if creds.ClientID == "" || creds.ClientSecret == "" || creds.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s: client_id, client_secret and access_token are all required", ErrCredentialsUnavailable, path)
	}

	return &creds, nil
}
