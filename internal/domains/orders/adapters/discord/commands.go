package discord

import "github.com/bwmarrin/discordgo"

// Commands returns the application commands the bot registers in its guild.
func Commands() []*discordgo.ApplicationCommand {
	minAmount := 0.0
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandName,
			Description: "Create a new order",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel to post order",
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
						discordgo.ChannelTypeGuildNews,
					},
					Required: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Order name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Order amount",
					MinValue:    &minAmount,
					Required:    true,
				},
			},
		},
	}
}
