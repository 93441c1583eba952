// Package handler turns Discord interactions into service calls and renders the
// results back to the channel.
package handler

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Session is the subset of the discordgo session the handlers respond through.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
}

var _ Session = (*discordgo.Session)(nil)

// Func handles one interaction. Returned errors are transport failures; domain
// errors are rendered to the user and never returned.
type Func func(ctx context.Context, s Session, i *discordgo.InteractionCreate) error

// MessageFunc handles one guild message.
type MessageFunc func(ctx context.Context, s Session, m *discordgo.MessageCreate) error
