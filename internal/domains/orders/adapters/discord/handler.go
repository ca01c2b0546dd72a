package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/application"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
)

// Handler turns interactions into order use cases and replies to the actor.
type Handler struct {
	service         ports.Service
	logger          *slog.Logger
	responseTimeout time.Duration
	relayTimeout    time.Duration
}

const (
	// Discord drops the interaction token 3s after delivery.
	defaultResponseTimeout = 2500 * time.Millisecond
	// Deferred replies stay valid for 15 minutes; relays get far less.
	defaultRelayTimeout = 45 * time.Second
)

type HandlerOption func(*Handler)

func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithResponseTimeout bounds the work done before the first reply.
func WithResponseTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.responseTimeout = d
	}
}

// WithRelayTimeout bounds feedback delivery, which runs after a deferred reply.
func WithRelayTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) {
		h.relayTimeout = d
	}
}

func NewHandler(service ports.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		service:         service,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		responseTimeout: defaultResponseTimeout,
		relayTimeout:    defaultRelayTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Handle runs one interaction to completion. Unexpected failures get a generic
// reply if the actor has not been answered yet; otherwise they are only logged.
func (h *Handler) Handle(ctx context.Context, session Session, i *discordgo.Interaction) {
	replies := &replyTracker{Session: session}
	defer func() {
		if r := recover(); r != nil {
			h.fail(ctx, replies, i, fmt.Errorf("panic: %v", r))
		}
	}()

	event, err := ParseEvent(i)
	if err != nil {
		if errors.Is(err, ErrUnsupportedEvent) {
			h.logger.LogAttrs(ctx, slog.LevelDebug, "ignoring interaction", slog.String("reason", err.Error()))
			return
		}
		h.fail(ctx, replies, i, err)
		return
	}
	if err := h.dispatch(ctx, replies, i, event); err != nil {
		h.fail(ctx, replies, i, err)
	}
}

func (h *Handler) dispatch(ctx context.Context, replies *replyTracker, i *discordgo.Interaction, event Event) error {
	actor := ActorID(i)
	switch ev := event.(type) {
	case CreateEvent:
		return h.create(ctx, replies, i, actor, ev)
	case ClaimEvent:
		return h.claim(ctx, replies, i, actor, ev)
	case FeedbackEvent:
		return h.feedback(ctx, replies, i, actor, ev)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedEvent, event)
	}
}

func (h *Handler) create(ctx context.Context, replies *replyTracker, i *discordgo.Interaction, actor string, ev CreateEvent) error {
	ctx, cancel := context.WithTimeout(ctx, h.responseTimeout)
	defer cancel()
	order, err := h.service.CreateOrder(ctx, ports.CreateOrderInput{
		Actor:     actor,
		ChannelID: ev.ChannelID,
		Name:      ev.Name,
		Amount:    ev.Amount,
	})
	switch {
	case errors.Is(err, application.ErrForbidden):
		return replies.ephemeral(i, msgForbidden)
	case errors.Is(err, application.ErrInvalidInput):
		return replies.ephemeral(i, fmt.Sprintf(msgInvalid, invalidDetail(err)))
	case err != nil:
		return err
	}
	return replies.ephemeral(i, fmt.Sprintf(msgCreated, order.Message.ChannelID))
}

func (h *Handler) claim(ctx context.Context, replies *replyTracker, i *discordgo.Interaction, actor string, ev ClaimEvent) error {
	ctx, cancel := context.WithTimeout(ctx, h.responseTimeout)
	defer cancel()
	order, err := h.service.ClaimOrder(ctx, ev.OrderID, actor)
	var conflict *domain.AlreadyClaimedError
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return replies.ephemeral(i, msgNotFound)
	case errors.As(err, &conflict):
		return replies.ephemeral(i, fmt.Sprintf(msgAlreadyClaimed, conflict.ClaimedBy))
	case errors.Is(err, application.ErrInvalidInput):
		return replies.ephemeral(i, fmt.Sprintf(msgInvalid, invalidDetail(err)))
	case err != nil:
		return err
	}
	return replies.respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: FeedbackModal(order.ID),
	})
}

// feedback acknowledges the modal first; the outcome arrives as a follow-up.
func (h *Handler) feedback(ctx context.Context, replies *replyTracker, i *discordgo.Interaction, actor string, ev FeedbackEvent) error {
	if err := replies.deferEphemeral(i); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, h.relayTimeout)
	defer cancel()
	err := h.service.SubmitFeedback(ctx, ports.SubmitFeedbackInput{
		InteractionID: i.ID,
		OrderID:       ev.OrderID,
		Actor:         actor,
		Text:          ev.Text,
	})
	switch {
	case errors.Is(err, application.ErrInvalidInput):
		return replies.ephemeral(i, fmt.Sprintf(msgInvalid, invalidDetail(err)))
	case err != nil:
		return err
	}
	return replies.ephemeral(i, msgFeedbackSent)
}

func (h *Handler) fail(ctx context.Context, replies *replyTracker, i *discordgo.Interaction, err error) {
	attrs := []slog.Attr{slog.String("error", err.Error())}
	if i != nil {
		attrs = append(attrs, slog.String("interaction.id", i.ID))
	}
	h.logger.LogAttrs(ctx, slog.LevelError, "interaction failed", attrs...)
	if i == nil || replies.answered() {
		return
	}
	if replyErr := replies.ephemeral(i, msgFailure); replyErr != nil {
		h.logger.LogAttrs(ctx, slog.LevelError, "failed to send error reply", slog.String("error", replyErr.Error()))
	}
}

// ActorID returns the user behind an interaction, in a guild or a DM.
func ActorID(i *discordgo.Interaction) string {
	if i == nil {
		return ""
	}
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func invalidDetail(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, application.ErrInvalidInput.Error()+": "); ok {
		msg = rest
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

// replyTracker remembers whether the interaction already got its response.
// After a deferral the actor is only answered once the follow-up is sent.
type replyTracker struct {
	Session
	responded  bool
	deferred   bool
	followedUp bool
}

func (r *replyTracker) answered() bool {
	return r.responded && (!r.deferred || r.followedUp)
}

func (r *replyTracker) respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	if err := r.InteractionRespond(i, resp); err != nil {
		return err
	}
	r.responded = true
	return nil
}

func (r *replyTracker) deferEphemeral(i *discordgo.Interaction) error {
	err := r.respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		return err
	}
	r.deferred = true
	return nil
}

func (r *replyTracker) ephemeral(i *discordgo.Interaction, content string) error {
	if r.deferred {
		if _, err := r.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		}); err != nil {
			return err
		}
		r.followedUp = true
		return nil
	}
	return r.respond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
