package discord

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type sentMessage struct {
	ChannelID string
	Data      *discordgo.MessageSend
}

type fakeSession struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	sent      []sentMessage
	edits     []*discordgo.MessageEdit
	dmOpened  []string
	followups []*discordgo.WebhookParams
	nextMsgID int

	failSend    error
	failEdit    error
	failRespond error
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRespond != nil {
		return f.failRespond
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		return nil, f.failSend
	}
	f.nextMsgID++
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Data: data})
	return &discordgo.Message{ID: fmt.Sprintf("msg-%d", f.nextMsgID), ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEdit != nil {
		return nil, f.failEdit
	}
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if recipientID == "" {
		return nil, errors.New("no recipient")
	}
	f.dmOpened = append(f.dmOpened, recipientID)
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	f.nextMsgID++
	return &discordgo.Message{ID: fmt.Sprintf("msg-%d", f.nextMsgID)}, nil
}

func (f *fakeSession) lastFollowup() *discordgo.WebhookParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.followups) == 0 {
		return nil
	}
	return f.followups[len(f.followups)-1]
}

func (f *fakeSession) lastResponse() *discordgo.InteractionResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1]
}

func commandInteraction(actor, channelID, name string, amount int64) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:     "cmd-" + actor,
		Type:   discordgo.InteractionApplicationCommand,
		Member: &discordgo.Member{User: &discordgo.User{ID: actor}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: CommandName,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "channel", Type: discordgo.ApplicationCommandOptionChannel, Value: channelID},
				{Name: "name", Type: discordgo.ApplicationCommandOptionString, Value: name},
				{Name: "amount", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(amount)},
			},
		},
	}
}

func buttonInteraction(actor, customID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:     "btn-" + actor,
		Type:   discordgo.InteractionMessageComponent,
		Member: &discordgo.Member{User: &discordgo.User{ID: actor}},
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.ButtonComponent,
		},
	}
}

func modalInteraction(actor, customID, text string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:     "modal-" + actor,
		Type:   discordgo.InteractionModalSubmit,
		Member: &discordgo.Member{User: &discordgo.User{ID: actor}},
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: customID,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: FeedbackFieldID, Value: text},
				}},
			},
		},
	}
}
