package authentication

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestTokenRoundTrip(t *testing.T) {
	keyring.MockInit()

	creds, err := GetTokens()
	require.NoError(t, err)
	assert.Nil(t, creds)

	require.NoError(t, StoreTokens(&StoredCredentials{AccessToken: "jwt", Username: "alice", APIURL: "http://localhost:8080"}))
	creds, err = GetTokens()
	require.NoError(t, err)
	assert.Equal(t, "alice", creds.Username)
	assert.Equal(t, "jwt", creds.AccessToken)

	require.NoError(t, DeleteTokens())
	require.NoError(t, DeleteTokens())
	creds, err = GetTokens()
	require.NoError(t, err)
	assert.Nil(t, creds)
}
