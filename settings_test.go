package docql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsYAML(t *testing.T) {
	s, err := LoadSettingsYAML(strings.NewReader("key: uuid\n"))
	require.NoError(t, err)
	assert.Equal(t, "uuid", s.Key)
}

func TestLoadSettingsYAMLEmptyDefaultsToID(t *testing.T) {
	s, err := LoadSettingsYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "_id", s.Key)
}

func TestSetupAndIdentityField(t *testing.T) {
	defer Setup(DefaultSettings())

	Setup(Settings{Key: "uuid"})
	assert.Equal(t, "uuid", IdentityField())

	Setup(Settings{})
	assert.Equal(t, "_id", IdentityField())
}
