package interactions

import (
	"bytes"
	"strconv"

	discord "github.com/WelcomerTeam/Discord/discord"

	"github.com/valinor-ai/supportdesk/internal/discordapi"
)

// InteractionType discriminates inbound interactions.
type InteractionType uint8

const (
	InteractionTypePing               InteractionType = 1
	InteractionTypeApplicationCommand InteractionType = 2
)

func (t InteractionType) String() string {
	switch t {
	case InteractionTypePing:
		return "ping"
	case InteractionTypeApplicationCommand:
		return "command"
	default:
		return "other"
	}
}

// CallbackType is the type of a synchronous interaction response.
type CallbackType uint8

const (
	CallbackTypePong                             CallbackType = 1
	CallbackTypeChannelMessageWithSource         CallbackType = 4
	CallbackTypeDeferredChannelMessageWithSource CallbackType = 5
)

// Interaction is the subset of the inbound interaction object the bot reads.
type Interaction struct {
	ID            discord.Snowflake `json:"id"`
	ApplicationID discord.Snowflake `json:"application_id"`
	Type          InteractionType   `json:"type"`
	GuildID       discord.Snowflake `json:"guild_id"`
	Data          *CommandData      `json:"data,omitempty"`
	Token         string            `json:"token"`
}

// CommandName returns the invoked command name, or "" for data-less interactions.
func (i *Interaction) CommandName() string {
	if i.Data == nil {
		return ""
	}
	return i.Data.Name
}

type CommandData struct {
	Name    string          `json:"name"`
	Options []CommandOption `json:"options,omitempty"`
}

type CommandOption struct {
	Name  string      `json:"name"`
	Type  int         `json:"type"`
	Value OptionValue `json:"value,omitempty"`
}

// OptionValue keeps an option value as raw JSON since its shape depends on
// the option type.
type OptionValue []byte

func (v *OptionValue) UnmarshalJSON(b []byte) error {
	*v = append((*v)[:0], b...)
	return nil
}

func (v OptionValue) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

// Snowflake interprets the value as an id, accepting both the quoted form
// Discord sends for user options and a bare integer.
func (v OptionValue) Snowflake() (discord.Snowflake, bool) {
	raw := bytes.TrimSpace(v)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	id, err := strconv.ParseUint(string(raw), 10, 63)
	if err != nil || id == 0 {
		return 0, false
	}
	return discord.Snowflake(id), true
}

// TargetUserID resolves the member the command acts on: the option named
// name if it holds an id, otherwise the first option's value.
func (d *CommandData) TargetUserID(name string) (discord.Snowflake, bool) {
	if d == nil || len(d.Options) == 0 {
		return 0, false
	}
	for _, opt := range d.Options {
		if opt.Name == name {
			if id, ok := opt.Value.Snowflake(); ok {
				return id, true
			}
			break
		}
	}
	return d.Options[0].Value.Snowflake()
}

// Response is the synchronous interaction response body.
type Response struct {
	Type CallbackType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

type ResponseData struct {
	Content string                  `json:"content,omitempty"`
	Flags   discordapi.MessageFlags `json:"flags,omitempty"`
}

func pongResponse() Response {
	return Response{Type: CallbackTypePong}
}

func deferredEphemeralResponse() Response {
	return Response{
		Type: CallbackTypeDeferredChannelMessageWithSource,
		Data: &ResponseData{Flags: discordapi.MessageFlagEphemeral},
	}
}

func ephemeralMessageResponse(content string) Response {
	return Response{
		Type: CallbackTypeChannelMessageWithSource,
		Data: &ResponseData{Content: content, Flags: discordapi.MessageFlagEphemeral},
	}
}
