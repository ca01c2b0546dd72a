package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
)

const (
	claimPrefix    = "claim_"
	feedbackPrefix = "feedback_"

	// FeedbackFieldID names the text input inside the feedback form.
	FeedbackFieldID = "feedback_text"

	announcementColor = 0x0099ff
	feedbackColor     = 0x00ff00
)

// Reply texts shown to actors.
const (
	msgForbidden      = "❌ Only the owner can use this command!"
	msgCreated        = "✅ Order created in <#%s>!"
	msgNotFound       = "❌ Order not found!"
	msgAlreadyClaimed = "❌ This order was already claimed by <@%s>!"
	msgFeedbackSent   = "✅ Feedback submitted! Thank you!"
	msgFailure        = "❌ An error occurred!"
	msgInvalid        = "❌ %s"
)

// ClaimCustomID is the component id of the claim button for an order.
func ClaimCustomID(id domain.ID) string { return claimPrefix + string(id) }

// FeedbackCustomID is the modal id of the feedback form for an order.
func FeedbackCustomID(id domain.ID) string { return feedbackPrefix + string(id) }

func mention(userID string) string { return fmt.Sprintf("<@%s>", userID) }

// StatusText renders the status field of an announcement.
func StatusText(order *domain.Order) string {
	if order.Claimed {
		return "✅ Claimed by " + mention(order.ClaimedBy)
	}
	return "🔓 Unclaimed"
}

// AnnouncementEmbed renders the public announcement of an order.
func AnnouncementEmbed(order *domain.Order) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "📦 New Order: " + order.Name,
		Color: announcementColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Order ID", Value: string(order.ID), Inline: true},
			{Name: "Amount", Value: fmt.Sprintf("%d", order.Amount), Inline: true},
			{Name: "Status", Value: StatusText(order), Inline: true},
		},
	}
}

// ClaimControls renders the claim button, enabled only while the order is unclaimed.
func ClaimControls(order *domain.Order) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Claim Order",
					Style:    discordgo.SuccessButton,
					CustomID: ClaimCustomID(order.ID),
					Disabled: order.Claimed,
				},
			},
		},
	}
}

// FeedbackModal renders the form shown to a fresh claimant.
func FeedbackModal(id domain.ID) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: FeedbackCustomID(id),
		Title:    "Order Feedback",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID: FeedbackFieldID,
						Label:    "Provide your feedback",
						Style:    discordgo.TextInputParagraph,
						Required: true,
					},
				},
			},
		},
	}
}

// FeedbackNotification renders the private message the owner receives.
func FeedbackNotification(feedback domain.Feedback, at time.Time) *discordgo.MessageEmbed {
	orderSummary := "unknown order"
	if feedback.Order != nil {
		orderSummary = fmt.Sprintf("%s × %d", feedback.Order.Name, feedback.Order.Amount)
	}
	return &discordgo.MessageEmbed{
		Title: "📝 Order Feedback Received",
		Color: feedbackColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Order ID", Value: string(feedback.OrderID)},
			{Name: "Order", Value: orderSummary},
			{Name: "Claimed by", Value: mention(feedback.Author)},
			{Name: "Feedback", Value: feedback.Text},
		},
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}
