package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestAPIKey_Precedence(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, SetAPIKey("  from-keyring "))

	t.Setenv(APIKeyEnv, "from-env")
	key, src, err := APIKey("from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
	assert.Equal(t, SourceEnv, src)

	t.Setenv(APIKeyEnv, "")
	key, src, err = APIKey("from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)
	assert.Equal(t, SourceConfig, src)

	key, src, err = APIKey("")
	require.NoError(t, err)
	assert.Equal(t, "from-keyring", key)
	assert.Equal(t, SourceKeyring, src)
}

func TestAPIKey_Missing(t *testing.T) {
	keyring.MockInit()
	t.Setenv(APIKeyEnv, "")

	_, _, err := APIKey("")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestSetAndDeleteAPIKey(t *testing.T) {
	keyring.MockInit()
	t.Setenv(APIKeyEnv, "")

	assert.Error(t, SetAPIKey("   "))

	require.NoError(t, SetAPIKey("k"))
	require.NoError(t, DeleteAPIKey())
	_, _, err := APIKey("")
	assert.ErrorIs(t, err, ErrNoAPIKey)

	// already gone
	assert.NoError(t, DeleteAPIKey())
}
