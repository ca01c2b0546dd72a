package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
)

// CommandName is the slash command that creates orders.
const CommandName = "ordernew"

var (
	ErrUnsupportedEvent = errors.New("unsupported interaction")
	ErrMalformedEvent   = errors.New("malformed interaction")
)

// Event is one decoded interaction. The concrete type says which transition it drives.
type Event interface {
	isEvent()
}

// CreateEvent asks for a new order announcement.
type CreateEvent struct {
	ChannelID string
	Name      string
	Amount    int64
}

// ClaimEvent is a press on the claim button of an order.
type ClaimEvent struct {
	OrderID domain.ID
}

// FeedbackEvent is a submitted feedback form.
type FeedbackEvent struct {
	OrderID domain.ID
	Text    string
}

func (CreateEvent) isEvent()   {}
func (ClaimEvent) isEvent()    {}
func (FeedbackEvent) isEvent() {}

// ParseEvent decodes an interaction into an Event.
func ParseEvent(i *discordgo.Interaction) (Event, error) {
	if i == nil {
		return nil, ErrMalformedEvent
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return parseCommand(i.ApplicationCommandData())
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData()
		id, ok := cutOrderID(data.CustomID, claimPrefix)
		if !ok {
			return nil, fmt.Errorf("%w: component %q", ErrUnsupportedEvent, data.CustomID)
		}
		return ClaimEvent{OrderID: id}, nil
	case discordgo.InteractionModalSubmit:
		data := i.ModalSubmitData()
		id, ok := cutOrderID(data.CustomID, feedbackPrefix)
		if !ok {
			return nil, fmt.Errorf("%w: modal %q", ErrUnsupportedEvent, data.CustomID)
		}
		return FeedbackEvent{OrderID: id, Text: textInputValue(data.Components, FeedbackFieldID)}, nil
	default:
		return nil, fmt.Errorf("%w: type %v", ErrUnsupportedEvent, i.Type)
	}
}

func parseCommand(data discordgo.ApplicationCommandInteractionData) (Event, error) {
	if data.Name != CommandName {
		return nil, fmt.Errorf("%w: command %q", ErrUnsupportedEvent, data.Name)
	}
	var (
		event                       CreateEvent
		hasChannel, hasName, hasAmt bool
	)
	for _, opt := range data.Options {
		if opt == nil {
			continue
		}
		switch {
		case opt.Name == "channel" && opt.Type == discordgo.ApplicationCommandOptionChannel:
			event.ChannelID, hasChannel = opt.Value.(string)
		case opt.Name == "name" && opt.Type == discordgo.ApplicationCommandOptionString:
			event.Name, hasName = opt.Value.(string)
		case opt.Name == "amount" && opt.Type == discordgo.ApplicationCommandOptionInteger:
			event.Amount, hasAmt = opt.IntValue(), true
		}
	}
	if !hasChannel || !hasName || !hasAmt {
		return nil, fmt.Errorf("%w: /%s needs channel, name and amount", ErrMalformedEvent, CommandName)
	}
	return event, nil
}

// cutOrderID strips the action prefix; only the first separator counts, so
// ids that contain underscores survive intact.
func cutOrderID(customID, prefix string) (domain.ID, bool) {
	id, ok := strings.CutPrefix(customID, prefix)
	if !ok || id == "" {
		return "", false
	}
	return domain.ID(id), true
}

func textInputValue(components []discordgo.MessageComponent, fieldID string) string {
	for _, component := range components {
		var inner []discordgo.MessageComponent
		switch row := component.(type) {
		case *discordgo.ActionsRow:
			inner = row.Components
		case discordgo.ActionsRow:
			inner = row.Components
		}
		for _, c := range inner {
			switch input := c.(type) {
			case *discordgo.TextInput:
				if input.CustomID == fieldID {
					return input.Value
				}
			case discordgo.TextInput:
				if input.CustomID == fieldID {
					return input.Value
				}
			}
		}
	}
	return ""
}
