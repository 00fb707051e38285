package interactions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	discord "github.com/WelcomerTeam/Discord/discord"

	"github.com/valinor-ai/supportdesk/internal/discordapi"
)

const (
	defaultTargetOption = "usuario"
	defaultDisplayName  = "usuario"
)

var (
	// ErrMissingTarget is shown to the invoking user verbatim.
	ErrMissingTarget     = errors.New("Faltan datos del guild o del usuario mencionado.")
	ErrChannelNotCreated = errors.New("discord returned no channel")
)

// API is the Discord REST surface the support command uses.
type API interface {
	GetGuildMember(ctx context.Context, guildID, userID discord.Snowflake) (*discord.GuildMember, error)
	CreateGuildChannel(ctx context.Context, guildID discord.Snowflake, params discordapi.CreateChannelParams) (*discord.Channel, error)
	CreateMessage(ctx context.Context, channelID discord.Snowflake, params discordapi.MessageParams) error
	CreateFollowupMessage(ctx context.Context, applicationID discord.Snowflake, token string, params discordapi.MessageParams) error
}

type ProvisionConfig struct {
	CategoryID     discord.Snowflake
	StaffRoleID    discord.Snowflake
	LimitedRoleIDs []discord.Snowflake
	// MentionRoleID is the role named in the welcome text.
	MentionRoleID discord.Snowflake
	// TargetOption is the command option holding the member; defaults to "usuario".
	TargetOption string
}

// Provisioner creates a private support channel for a member and welcomes
// them in it. A channel whose welcome post fails is left in place.
type Provisioner struct {
	api    API
	cfg    ProvisionConfig
	logger *slog.Logger
}

func NewProvisioner(api API, cfg ProvisionConfig, logger *slog.Logger) *Provisioner {
	if cfg.TargetOption == "" {
		cfg.TargetOption = defaultTargetOption
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provisioner{api: api, cfg: cfg, logger: logger}
}

// Handle runs the support command for interaction and returns the follow-up
// to show the invoking user.
func (p *Provisioner) Handle(ctx context.Context, interaction *Interaction) (discordapi.MessageParams, error) {
	guildID := interaction.GuildID
	targetID, ok := interaction.Data.TargetUserID(p.cfg.TargetOption)
	if guildID == 0 || !ok {
		return discordapi.MessageParams{}, ErrMissingTarget
	}

	channel, err := p.CreateSupportChannel(ctx, guildID, targetID)
	if err != nil {
		return discordapi.MessageParams{}, err
	}
	channelID := discord.Snowflake(channel.ID)

	if err := p.api.CreateMessage(ctx, channelID, welcomeMessage(targetID, p.cfg.MentionRoleID)); err != nil {
		p.logger.WarnContext(ctx, "support channel left without welcome message",
			"guild_id", guildID.String(),
			"channel_id", channelID.String(),
			"error", err,
		)
		return discordapi.MessageParams{}, fmt.Errorf("sending welcome message: %w", err)
	}

	p.logger.InfoContext(ctx, "support channel created",
		"guild_id", guildID.String(),
		"channel_id", channelID.String(),
		"member_id", targetID.String(),
	)
	return discordapi.MessageParams{
		Content: fmt.Sprintf("Canal creado: <#%s>", channelID),
		Flags:   discordapi.MessageFlagEphemeral,
	}, nil
}

// CreateSupportChannel names the channel after the member and creates it
// under the configured category with the support overwrites.
func (p *Provisioner) CreateSupportChannel(ctx context.Context, guildID, memberID discord.Snowflake) (*discord.Channel, error) {
	member, err := p.api.GetGuildMember(ctx, guildID, memberID)
	if err != nil {
		return nil, fmt.Errorf("fetching guild member: %w", err)
	}

	params := discordapi.CreateChannelParams{
		Name:                 SlugifyChannelName(DisplayName(member)),
		Type:                 discord.ChannelTypeGuildText,
		ParentID:             p.cfg.CategoryID,
		PermissionOverwrites: BuildOverwrites(guildID, memberID, p.cfg.StaffRoleID, p.cfg.LimitedRoleIDs...),
	}
	channel, err := p.api.CreateGuildChannel(ctx, guildID, params)
	if err != nil {
		return nil, fmt.Errorf("creating support channel: %w", err)
	}
	if channel == nil || channel.ID == 0 {
		return nil, ErrChannelNotCreated
	}
	return channel, nil
}

// DisplayName picks the member's nickname, then username, then a generic name.
func DisplayName(member *discord.GuildMember) string {
	if member == nil {
		return defaultDisplayName
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil && member.User.Username != "" {
		return member.User.Username
	}
	return defaultDisplayName
}
