package authentication

// keystring.go keeps the CLI's access token in the OS keychain.
import (
	"encoding/json"
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "yamdb-cli"
	tokenKey    = "auth_token"
)

type StoredCredentials struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	APIURL      string `json:"api_url"`
}

func StoreTokens(creds *StoredCredentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, tokenKey, string(data))
}

// GetTokens returns nil, nil when nothing is stored yet.
func GetTokens() (*StoredCredentials, error) {
	value, err := keyring.Get(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var creds StoredCredentials
	if err := json.Unmarshal([]byte(value), &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func DeleteTokens() error {
	err := keyring.Delete(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
