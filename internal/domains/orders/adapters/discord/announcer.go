package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
	"github.com/Apurer/discord-order-bot/internal/platform/clock"
)

var (
	_ ports.Announcer     = (*Announcer)(nil)
	_ ports.OwnerNotifier = (*OwnerNotifier)(nil)
)

// Announcer posts and edits order announcements.
type Announcer struct {
	session Session
}

func NewAnnouncer(session Session) *Announcer {
	return &Announcer{session: session}
}

func (a *Announcer) Announce(ctx context.Context, channelID string, order *domain.Order) (domain.MessageRef, error) {
	msg, err := a.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{AnnouncementEmbed(order)},
		Components: ClaimControls(order),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return domain.MessageRef{}, err
	}
	if msg == nil {
		return domain.MessageRef{}, errors.New("discord returned no message")
	}
	ref := domain.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}
	if ref.ChannelID == "" {
		ref.ChannelID = channelID
	}
	return ref, nil
}

// Refresh re-renders the announcement in place from the current record.
func (a *Announcer) Refresh(ctx context.Context, order *domain.Order) error {
	if order.Message.ChannelID == "" || order.Message.MessageID == "" {
		return errors.New("order has no announcement message")
	}
	embeds := []*discordgo.MessageEmbed{AnnouncementEmbed(order)}
	components := ClaimControls(order)
	edit := discordgo.NewMessageEdit(order.Message.ChannelID, order.Message.MessageID)
	edit.Embeds = &embeds
	edit.Components = &components
	_, err := a.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return err
}

// OwnerNotifier sends private messages to the configured owner.
type OwnerNotifier struct {
	session Session
	ownerID string
	clock   clock.Clock
}

func NewOwnerNotifier(session Session, ownerID string, c clock.Clock) *OwnerNotifier {
	if c == nil {
		c = clock.NewSystem()
	}
	return &OwnerNotifier{session: session, ownerID: ownerID, clock: c}
}

func (n *OwnerNotifier) NotifyOwner(ctx context.Context, feedback domain.Feedback) error {
	if n.ownerID == "" {
		return errors.New("owner id not configured")
	}
	channel, err := n.session.UserChannelCreate(n.ownerID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = n.session.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{FeedbackNotification(feedback, n.clock.Now())},
	}, discordgo.WithContext(ctx))
	return err
}
