package interactions_test

import (
	"testing"

	discord "github.com/WelcomerTeam/Discord/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valinor-ai/supportdesk/internal/discordapi"
	"github.com/valinor-ai/supportdesk/internal/interactions"
)

func TestBuildOverwrites_Base(t *testing.T) {
	got := interactions.BuildOverwrites(111, 222, 333)

	require.Len(t, got, 3)
	assert.Equal(t, discordapi.PermissionOverwrite{ID: 111, Type: discordapi.OverwriteTypeRole, Deny: "1024"}, got[0])
	assert.Equal(t, discordapi.PermissionOverwrite{ID: 222, Type: discordapi.OverwriteTypeMember, Allow: "412317240384"}, got[1])
	assert.Equal(t, discordapi.PermissionOverwrite{ID: 333, Type: discordapi.OverwriteTypeRole, Allow: "292057902144"}, got[2])
}

func TestBuildOverwrites_LimitedRoles(t *testing.T) {
	got := interactions.BuildOverwrites(111, 222, 333, 8, 0, 9)

	require.Len(t, got, 5)
	for i, id := range []discord.Snowflake{8, 9} {
		assert.Equal(t, discordapi.PermissionOverwrite{
			ID:    id,
			Type:  discordapi.OverwriteTypeRole,
			Allow: "274877942784",
			Deny:  "65536",
		}, got[3+i])
	}
}
