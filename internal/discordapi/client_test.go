package discordapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	discord "github.com/WelcomerTeam/Discord/discord"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valinor-ai/supportdesk/internal/discordapi"
	"github.com/valinor-ai/supportdesk/internal/platform/metrics"
)

func TestClient_GetGuildMember(t *testing.T) {
	var gotAuth, gotPath, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"nick":"Ali","user":{"id":"222","username":"alice"}}`)
	}))
	defer srv.Close()

	client := discordapi.New("secret-token", discordapi.WithBaseURL(srv.URL))
	member, err := client.GetGuildMember(context.Background(), discord.Snowflake(111), discord.Snowflake(222))
	require.NoError(t, err)
	require.NotNil(t, member)

	assert.Equal(t, "Bot secret-token", gotAuth)
	assert.Equal(t, "/guilds/111/members/222", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Ali", member.Nick)
	require.NotNil(t, member.User)
	assert.Equal(t, "alice", member.User.Username)
}

func TestClient_CreateGuildChannel_SendsOverwrites(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/guilds/111/channels", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":"333","name":"alice","type":0}`)
	}))
	defer srv.Close()

	client := discordapi.New("t", discordapi.WithBaseURL(srv.URL))
	channel, err := client.CreateGuildChannel(context.Background(), discord.Snowflake(111), discordapi.CreateChannelParams{
		Name:     "alice",
		Type:     discord.ChannelTypeGuildText,
		ParentID: discord.Snowflake(444),
		PermissionOverwrites: []discordapi.PermissionOverwrite{
			{ID: discord.Snowflake(111), Type: discordapi.OverwriteTypeRole, Deny: "1024"},
			{ID: discord.Snowflake(222), Type: discordapi.OverwriteTypeMember, Allow: "3072"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, channel)
	assert.Equal(t, "333", discord.Snowflake(channel.ID).String())

	assert.Equal(t, "alice", body["name"])
	assert.Equal(t, float64(0), body["type"])
	assert.Equal(t, "444", body["parent_id"])
	overwrites, ok := body["permission_overwrites"].([]any)
	require.True(t, ok)
	require.Len(t, overwrites, 2)
	assert.Equal(t, map[string]any{"id": "111", "type": float64(0), "deny": "1024"}, overwrites[0])
	assert.Equal(t, map[string]any{"id": "222", "type": float64(1), "allow": "3072"}, overwrites[1])
}

func TestClient_NonSuccessReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"Missing Permissions","code":50013}`)
	}))
	defer srv.Close()

	client := discordapi.New("t", discordapi.WithBaseURL(srv.URL))
	err := client.CreateMessage(context.Background(), discord.Snowflake(333), discordapi.MessageParams{Content: "hi"})
	require.Error(t, err)

	var apiErr *discordapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, `Discord API error 403: {"message":"Missing Permissions","code":50013}`, err.Error())
	assert.Equal(t, http.StatusForbidden, discordapi.StatusCode(err))
}

func TestClient_NoContentReturnsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := discordapi.New("t", discordapi.WithBaseURL(srv.URL))
	member, err := client.GetGuildMember(context.Background(), discord.Snowflake(1), discord.Snowflake(2))
	require.NoError(t, err)
	assert.Nil(t, member)
}

func TestClient_FollowupEscapesToken(t *testing.T) {
	var gotPath string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = io.WriteString(w, `{"id":"9"}`)
	}))
	defer srv.Close()

	client := discordapi.New("t", discordapi.WithBaseURL(srv.URL+"/"))
	err := client.CreateFollowupMessage(context.Background(), discord.Snowflake(555), "tok/en", discordapi.MessageParams{
		Content: "Canal creado: <#333>",
		Flags:   discordapi.MessageFlagEphemeral,
	})
	require.NoError(t, err)

	assert.Equal(t, "/webhooks/555/tok%2Fen", gotPath)
	assert.Equal(t, "Canal creado: <#333>", body["content"])
	assert.Equal(t, float64(64), body["flags"])
}

func TestClient_RecordsMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	m := metrics.New()
	client := discordapi.New("t", discordapi.WithBaseURL(srv.URL), discordapi.WithMetrics(m), discordapi.WithTimeout(time.Second))
	_, err := client.GetGuildMember(context.Background(), discord.Snowflake(1), discord.Snowflake(2))
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.DiscordRequests.WithLabelValues("get_guild_member", "404")))
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := discordapi.New("t", discordapi.WithBaseURL(srv.URL))
	err := client.CreateMessage(context.Background(), discord.Snowflake(1), discordapi.MessageParams{Content: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending create_message request")
	assert.Zero(t, discordapi.StatusCode(err))
}
