package discordapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	discord "github.com/WelcomerTeam/Discord/discord"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/oauth2"

	"github.com/valinor-ai/supportdesk/internal/platform/metrics"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultUserAgent   = "DiscordBot (https://github.com/valinor-ai/supportdesk, 1.0)"
	maxErrorBodyBytes  = 64 << 10
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client issues Bot-authenticated JSON requests against the Discord REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if v := strings.TrimSpace(baseURL); v != "" {
			c.baseURL = strings.TrimRight(v, "/")
		}
	}
}

// WithHTTPClient sets the underlying client. Its transport is wrapped with
// the bot authorization.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client authenticating every request as "Bot <token>".
func New(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    DefaultBaseURL,
		userAgent:  defaultUserAgent,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	authed := *c.httpClient
	if c.timeout > 0 {
		authed.Timeout = c.timeout
	}
	authed.Transport = &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: strings.TrimSpace(token),
			TokenType:   "Bot",
		}),
		Base: c.httpClient.Transport,
	}
	c.httpClient = &authed
	return c
}

// GetGuildMember fetches GET /guilds/{guild}/members/{user}.
func (c *Client) GetGuildMember(ctx context.Context, guildID, userID discord.Snowflake) (*discord.GuildMember, error) {
	var member discord.GuildMember
	path := fmt.Sprintf("/guilds/%s/members/%s", guildID, userID)
	found, err := c.do(ctx, http.MethodGet, "get_guild_member", path, nil, &member)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &member, nil
}

// CreateGuildChannel creates a channel under POST /guilds/{guild}/channels.
func (c *Client) CreateGuildChannel(ctx context.Context, guildID discord.Snowflake, params CreateChannelParams) (*discord.Channel, error) {
	var channel discord.Channel
	path := fmt.Sprintf("/guilds/%s/channels", guildID)
	found, err := c.do(ctx, http.MethodPost, "create_guild_channel", path, params, &channel)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &channel, nil
}

// CreateMessage posts to POST /channels/{channel}/messages.
func (c *Client) CreateMessage(ctx context.Context, channelID discord.Snowflake, params MessageParams) error {
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	_, err := c.do(ctx, http.MethodPost, "create_message", path, params, nil)
	return err
}

// CreateFollowupMessage posts to POST /webhooks/{application}/{token}.
func (c *Client) CreateFollowupMessage(ctx context.Context, applicationID discord.Snowflake, token string, params MessageParams) error {
	path := fmt.Sprintf("/webhooks/%s/%s", applicationID, url.PathEscape(token))
	_, err := c.do(ctx, http.MethodPost, "create_followup_message", path, params, nil)
	return err
}

// do sends one request. It reports false without decoding when Discord
// answers 204 No Content.
func (c *Client) do(ctx context.Context, method, route, path string, body, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("marshaling %s body: %w", route, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return false, fmt.Errorf("building %s request: %w", route, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveDiscordRequest(route, "error", time.Since(start))
		return false, fmt.Errorf("sending %s request: %w", route, err)
	}
	defer resp.Body.Close()

	elapsed := time.Since(start)
	c.metrics.ObserveDiscordRequest(route, strconv.Itoa(resp.StatusCode), elapsed)
	c.logger.DebugContext(ctx, "discord request",
		"route", route,
		"method", method,
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return false, &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	if resp.StatusCode == http.StatusNoContent {
		return false, nil
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decoding %s response: %w", route, err)
	}
	return true, nil
}
