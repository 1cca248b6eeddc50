package core

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSetting(t *testing.T) {
	s, err := NewSetting(" max_guild_votes ", 3, SettingTypeNumber)
	require.NoError(t, err)
	assert.Equal(t, "max_guild_votes", s.String())

	s, err = NewSetting("motd", "hi", "")
	require.NoError(t, err)
	assert.Equal(t, SettingTypeText, s.Type)

	_, err = NewSetting("", 1, SettingTypeNumber)
	assert.Error(t, err)
	_, err = NewSetting("k", 1, SettingType("yaml"))
	assert.Error(t, err)
}

func TestNewPushSubscription(t *testing.T) {
	_, err := NewPushSubscription(uuid.New(), "https://push.example/abc", "", "auth")
	require.Error(t, err)
	assert.Equal(t, "Missing required fields", err.Error())

	endpoint := "https://push.example/" + strings.Repeat("x", 60)
	p, err := NewPushSubscription(uuid.New(), endpoint, "key", "auth")
	require.NoError(t, err)
	p.User = &identity.User{Email: "a@b.c"}
	assert.Equal(t, "a@b.c - "+endpoint[:50]+"...", p.String())
}
