package interactions

import (
	discord "github.com/WelcomerTeam/Discord/discord"

	"github.com/valinor-ai/supportdesk/internal/discordapi"
)

// BuildOverwrites returns the access list for a support channel: @everyone
// (whose role id equals the guild id) is denied view, the member and the staff
// role get full access, and each limited role may post without reading
// history. Order is fixed: everyone, member, staff, then limitedRoles as given.
func BuildOverwrites(guildID, memberID, staffRoleID discord.Snowflake, limitedRoles ...discord.Snowflake) []discordapi.PermissionOverwrite {
	overwrites := make([]discordapi.PermissionOverwrite, 0, 3+len(limitedRoles))
	overwrites = append(overwrites,
		discordapi.PermissionOverwrite{
			ID:   guildID,
			Type: discordapi.OverwriteTypeRole,
			Deny: PermissionString(EveryoneDeny...),
		},
		discordapi.PermissionOverwrite{
			ID:    memberID,
			Type:  discordapi.OverwriteTypeMember,
			Allow: PermissionString(MemberAllow...),
		},
		discordapi.PermissionOverwrite{
			ID:    staffRoleID,
			Type:  discordapi.OverwriteTypeRole,
			Allow: PermissionString(StaffAllow...),
		},
	)

	limitedAllow := PermissionString(LimitedAllow...)
	limitedDeny := PermissionString(LimitedDeny...)
	for _, roleID := range limitedRoles {
		if roleID == 0 {
			continue
		}
		overwrites = append(overwrites, discordapi.PermissionOverwrite{
			ID:    roleID,
			Type:  discordapi.OverwriteTypeRole,
			Allow: limitedAllow,
			Deny:  limitedDeny,
		})
	}
	return overwrites
}
