package interactions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	discord "github.com/WelcomerTeam/Discord/discord"
	jsoniter "github.com/json-iterator/go"

	"github.com/valinor-ai/supportdesk/internal/discordapi"
	"github.com/valinor-ai/supportdesk/internal/platform/metrics"
	"github.com/valinor-ai/supportdesk/internal/platform/middleware"
)

const (
	maxBodyBytes = 1 << 20

	unknownCommandMessage = "Comando no reconocido."
	supportTaskName       = "support_channel"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CommandRunner executes a deferred command and returns its follow-up.
type CommandRunner interface {
	Handle(ctx context.Context, interaction *Interaction) (discordapi.MessageParams, error)
}

// FollowupSender delivers the follow-up message of a deferred interaction.
type FollowupSender interface {
	CreateFollowupMessage(ctx context.Context, applicationID discord.Snowflake, token string, params discordapi.MessageParams) error
}

type HandlerConfig struct {
	Verifier      Verifier
	Runner        CommandRunner
	Followups     FollowupSender
	Tasks         *TaskGroup
	ApplicationID discord.Snowflake
	CommandName   string
	Logger        *slog.Logger
	Metrics       *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

// Handler serves the Discord interactions endpoint.
type Handler struct {
	verifier      Verifier
	runner        CommandRunner
	followups     FollowupSender
	tasks         *TaskGroup
	applicationID discord.Snowflake
	commandName   string
	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		verifier:      cfg.Verifier,
		runner:        cfg.Runner,
		followups:     cfg.Followups,
		tasks:         cfg.Tasks,
		applicationID: cfg.ApplicationID,
		commandName:   cfg.CommandName,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		now:           cfg.Now,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.tasks == nil {
		h.tasks = NewTaskGroup(InteractionTokenLifetime, h.logger, h.metrics)
	}
	return h
}

// Tasks returns the group deferred commands run on.
func (h *Handler) Tasks() *TaskGroup {
	return h.tasks
}

// HandleInteraction handles POST /interactions.
func (h *Handler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.metrics.ObserveInteraction("unknown", "method_not_allowed")
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		h.metrics.ObserveInteraction("unknown", "bad_request")
		writeJSON(w, status, map[string]string{"error": "invalid request body"})
		return
	}

	logger := h.logger.With("request_id", middleware.GetRequestID(r.Context()))

	if h.verifier == nil {
		h.metrics.ObserveInteraction("unknown", "unauthorized")
		logger.ErrorContext(r.Context(), "interaction rejected", "reason", "no verifier configured")
		http.Error(w, "Invalid request signature", http.StatusUnauthorized)
		return
	}
	if err := h.verifier.Verify(r.Header, body, h.now()); err != nil {
		h.metrics.ObserveInteraction("unknown", "unauthorized")
		logger.WarnContext(r.Context(), "interaction rejected", "reason", err)
		http.Error(w, "Invalid request signature", http.StatusUnauthorized)
		return
	}

	var interaction Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		h.metrics.ObserveInteraction("unknown", "bad_request")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid interaction payload"})
		return
	}

	kind := interaction.Type.String()
	logger = logger.With(
		"interaction_id", interaction.ID.String(),
		"interaction_type", kind,
	)

	switch {
	case interaction.Type == InteractionTypePing:
		h.metrics.ObserveInteraction(kind, "pong")
		writeJSON(w, http.StatusOK, pongResponse())

	case interaction.Type == InteractionTypeApplicationCommand && interaction.CommandName() == h.commandName:
		h.metrics.ObserveInteraction(kind, "deferred")
		logger.InfoContext(r.Context(), "command deferred",
			"command", interaction.CommandName(),
			"guild_id", interaction.GuildID.String(),
		)
		writeJSON(w, http.StatusOK, deferredEphemeralResponse())
		// The acknowledgement must reach Discord before any follow-up.
		_ = http.NewResponseController(w).Flush()
		h.tasks.Go(r.Context(), supportTaskName, h.deferredCommand(interaction, logger))

	default:
		h.metrics.ObserveInteraction(kind, "unrecognized")
		logger.InfoContext(r.Context(), "unrecognized interaction", "command", interaction.CommandName())
		writeJSON(w, http.StatusOK, ephemeralMessageResponse(unknownCommandMessage))
	}
}

// deferredCommand runs the command and always attempts a follow-up, turning
// a command failure into an ephemeral "Error: <message>" reply.
func (h *Handler) deferredCommand(interaction Interaction, logger *slog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var (
			msg    discordapi.MessageParams
			runErr error
		)
		if h.runner == nil {
			runErr = errors.New("command runner not configured")
		} else {
			msg, runErr = h.runner.Handle(ctx, &interaction)
		}
		if runErr != nil {
			logger.WarnContext(ctx, "command failed", "error", runErr)
			msg = discordapi.MessageParams{
				Content: "Error: " + runErr.Error(),
				Flags:   discordapi.MessageFlagEphemeral,
			}
		}

		if h.followups == nil {
			return errors.Join(runErr, errors.New("follow-up sender not configured"))
		}
		if err := h.followups.CreateFollowupMessage(ctx, h.applicationID, interaction.Token, msg); err != nil {
			return errors.Join(runErr, fmt.Errorf("sending follow-up: %w", err))
		}
		return runErr
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
