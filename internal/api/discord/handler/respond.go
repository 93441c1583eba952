package handler

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func respond(s Session, i *discordgo.Interaction, typ discordgo.InteractionResponseType, data *discordgo.InteractionResponseData) error {
	if err := s.InteractionRespond(i, &discordgo.InteractionResponse{Type: typ, Data: data}); err != nil {
		return fmt.Errorf("respond to interaction: %w", err)
	}
	return nil
}

func reply(s Session, i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	return respond(s, i, discordgo.InteractionResponseChannelMessageWithSource, data)
}

func replyEphemeral(s Session, i *discordgo.Interaction, content string) error {
	return reply(s, i, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func deferReply(s Session, i *discordgo.Interaction, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return respond(s, i, discordgo.InteractionResponseDeferredChannelMessageWithSource, data)
}

func deferUpdate(s Session, i *discordgo.Interaction) error {
	return respond(s, i, discordgo.InteractionResponseDeferredMessageUpdate, nil)
}

func update(s Session, i *discordgo.Interaction, data *discordgo.InteractionResponseData) error {
	return respond(s, i, discordgo.InteractionResponseUpdateMessage, data)
}

func editReply(s Session, i *discordgo.Interaction, edit *discordgo.WebhookEdit) error {
	if _, err := s.InteractionResponseEdit(i, edit); err != nil {
		return fmt.Errorf("edit interaction response: %w", err)
	}
	return nil
}

// editContent replaces the deferred or original response with plain text.
func editContent(s Session, i *discordgo.Interaction, content string) error {
	return editReply(s, i, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &[]*discordgo.MessageEmbed{},
		Components: &[]discordgo.MessageComponent{},
	})
}

func editEmbeds(s Session, i *discordgo.Interaction, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	content := ""
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return editReply(s, i, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	})
}

func followup(s Session, i *discordgo.Interaction, params *discordgo.WebhookParams) error {
	if _, err := s.FollowupMessageCreate(i, true, params); err != nil {
		return fmt.Errorf("send followup: %w", err)
	}
	return nil
}

func followupEphemeral(s Session, i *discordgo.Interaction, content string) error {
	return followup(s, i, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func send(s Session, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	m, err := s.ChannelMessageSendComplex(channelID, msg)
	if err != nil {
		return nil, fmt.Errorf("send to channel %s: %w", channelID, err)
	}
	return m, nil
}

func sendDM(s Session, userID string, msg *discordgo.MessageSend) error {
	ch, err := s.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open DM channel: %w", err)
	}
	_, err = send(s, ch.ID, msg)
	return err
}
