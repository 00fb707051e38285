package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	discord "github.com/WelcomerTeam/Discord/discord"

	"github.com/valinor-ai/supportdesk/internal/discordapi"
	"github.com/valinor-ai/supportdesk/internal/interactions"
	"github.com/valinor-ai/supportdesk/internal/platform/config"
	"github.com/valinor-ai/supportdesk/internal/platform/metrics"
)

// newInteractionHandler assembles the dispatcher from validated config.
func newInteractionHandler(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*interactions.Handler, error) {
	dc := cfg.Discord

	verifier, err := interactions.NewEd25519Verifier(dc.PublicKey, time.Duration(dc.MaxSkewSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("DISCORD_PUBLIC_KEY: %w", err)
	}

	ids, err := parseSnowflakes(map[string]string{
		"CLIENT_ID":       dc.ClientID,
		"CATEGORY_ID":     dc.CategoryID,
		"STAFF_ROLE_ID":   dc.StaffRoleID,
		"mention role id": dc.MentionRoleID,
	})
	if err != nil {
		return nil, err
	}

	var limited []discord.Snowflake
	for _, raw := range dc.LimitedRoleIDs() {
		id, err := parseSnowflake(raw)
		if err != nil {
			return nil, fmt.Errorf("limited role id %q: %w", raw, err)
		}
		limited = append(limited, id)
	}

	client := discordapi.New(dc.Token,
		discordapi.WithBaseURL(dc.APIBaseURL),
		discordapi.WithTimeout(time.Duration(dc.HTTPTimeoutSecs)*time.Second),
		discordapi.WithMetrics(m),
		discordapi.WithLogger(logger),
	)

	provisioner := interactions.NewProvisioner(client, interactions.ProvisionConfig{
		CategoryID:     ids["CATEGORY_ID"],
		StaffRoleID:    ids["STAFF_ROLE_ID"],
		LimitedRoleIDs: limited,
		MentionRoleID:  ids["mention role id"],
	}, logger)

	tasks := interactions.NewTaskGroup(time.Duration(dc.FollowupTimeoutSec)*time.Second, logger, m)

	return interactions.NewHandler(interactions.HandlerConfig{
		Verifier:      verifier,
		Runner:        provisioner,
		Followups:     client,
		Tasks:         tasks,
		ApplicationID: ids["CLIENT_ID"],
		CommandName:   dc.CommandName,
		Logger:        logger,
		Metrics:       m,
	}), nil
}

func parseSnowflakes(named map[string]string) (map[string]discord.Snowflake, error) {
	out := make(map[string]discord.Snowflake, len(named))
	for name, raw := range named {
		id, err := parseSnowflake(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = id
	}
	return out, nil
}

func parseSnowflake(raw string) (discord.Snowflake, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing snowflake: %w", err)
	}
	return discord.Snowflake(id), nil
}
