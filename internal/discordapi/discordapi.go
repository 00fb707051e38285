// Package discordapi is a thin authenticated client for the handful of Discord
// REST endpoints the support bot calls.
package discordapi

import (
	discord "github.com/WelcomerTeam/Discord/discord"
)

// DefaultBaseURL is the versioned Discord REST root.
const DefaultBaseURL = "https://discord.com/api/v10"

// MessageFlags is the message flags bitfield.
type MessageFlags uint32

// MessageFlagEphemeral hides a message from everyone but the invoking user.
const MessageFlagEphemeral MessageFlags = 1 << 6

// OverwriteType selects what a permission overwrite targets.
type OverwriteType uint8

const (
	OverwriteTypeRole   OverwriteType = 0
	OverwriteTypeMember OverwriteType = 1
)

// PermissionOverwrite is the wire form of a channel overwrite. Allow and Deny
// are decimal bitsets; an empty value is omitted and read by Discord as "0".
type PermissionOverwrite struct {
	ID    discord.Snowflake `json:"id"`
	Type  OverwriteType     `json:"type"`
	Allow string            `json:"allow,omitempty"`
	Deny  string            `json:"deny,omitempty"`
}

// CreateChannelParams is the body of POST /guilds/{guild}/channels.
type CreateChannelParams struct {
	Name                 string                `json:"name"`
	Type                 discord.ChannelType   `json:"type"`
	ParentID             discord.Snowflake     `json:"parent_id,omitempty"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites"`
}

// Embed is the subset of the embed object the bot sends.
type Embed struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Color       int    `json:"color,omitempty"`
}

// MessageParams is the body of channel messages and webhook follow-ups.
type MessageParams struct {
	Content string       `json:"content,omitempty"`
	Embeds  []Embed      `json:"embeds,omitempty"`
	Flags   MessageFlags `json:"flags,omitempty"`
}
