package interactions

import "strconv"

// Permission is a Discord permission bitset. Some bits sit above position 31,
// so masks are kept as uint64 and rendered as decimal strings on the wire.
type Permission uint64

const (
	PermissionAddReactions          Permission = 1 << 6
	PermissionViewChannel           Permission = 1 << 10
	PermissionSendMessages          Permission = 1 << 11
	PermissionManageMessages        Permission = 1 << 13
	PermissionEmbedLinks            Permission = 1 << 14
	PermissionAttachFiles           Permission = 1 << 15
	PermissionReadMessageHistory    Permission = 1 << 16
	PermissionUseExternalEmojis     Permission = 1 << 18
	PermissionManageThreads         Permission = 1 << 34
	PermissionUseExternalStickers   Permission = 1 << 37
	PermissionSendMessagesInThreads Permission = 1 << 38
)

// Permission tiers for a support channel.
var (
	EveryoneDeny = []Permission{PermissionViewChannel}

	MemberAllow = []Permission{
		PermissionViewChannel,
		PermissionSendMessages,
		PermissionReadMessageHistory,
		PermissionAddReactions,
		PermissionAttachFiles,
		PermissionEmbedLinks,
		PermissionSendMessagesInThreads,
		PermissionUseExternalEmojis,
		PermissionUseExternalStickers,
	}

	StaffAllow = []Permission{
		PermissionViewChannel,
		PermissionSendMessages,
		PermissionReadMessageHistory,
		PermissionAddReactions,
		PermissionAttachFiles,
		PermissionEmbedLinks,
		PermissionManageMessages,
		PermissionManageThreads,
		PermissionSendMessagesInThreads,
	}

	// Limited roles may drop files into the channel but not read it back.
	LimitedAllow = []Permission{
		PermissionViewChannel,
		PermissionSendMessages,
		PermissionAttachFiles,
		PermissionSendMessagesInThreads,
	}
	LimitedDeny = []Permission{PermissionReadMessageHistory}
)

// Combine returns the union of perms.
func Combine(perms ...Permission) Permission {
	var mask Permission
	for _, p := range perms {
		mask |= p
	}
	return mask
}

// PermissionString renders the union of perms in base 10; no perms is "0".
func PermissionString(perms ...Permission) string {
	return Combine(perms...).String()
}

func (p Permission) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

// Has reports whether every bit of other is set in p.
func (p Permission) Has(other Permission) bool {
	return p&other == other
}
