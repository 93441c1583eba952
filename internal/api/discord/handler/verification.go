package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/config"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
	"github.com/argrp/rpbot/internal/pending"
)

// VerificationService defines the verification workflow.
type VerificationService interface {
	Start(ctx context.Context, params model.StartVerificationParams) (string, model.VerificationSession, error)
	Confirm(ctx context.Context, key, actorID string) (model.VerificationSession, error)
	Cancel(ctx context.Context, key, actorID string) error
	Greet(targetID, greeterID string) error
}

// Verification handles the verify command and its confirmation buttons.
type Verification struct {
	service VerificationService
	guild   *config.Guild
	logger  *logger.Logger
}

// NewVerification creates a new Verification handler.
func NewVerification(service VerificationService, guild *config.Guild, logger *logger.Logger) *Verification {
	return &Verification{
		service: service,
		guild:   guild,
		logger:  logger,
	}
}

// Start resolves the external account and asks the moderator to confirm the match.
func (h *Verification) Start(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	opts := optionsOf(i)
	actor := actorOf(i)
	name := opts.string(OptionRobloxUser)

	if err := deferReply(s, i.Interaction, true); err != nil {
		return err
	}

	key, session, err := h.service.Start(ctx, model.StartVerificationParams{
		Moderator:    actor,
		ChannelID:    i.ChannelID,
		TargetID:     opts.id(OptionUser),
		ExternalName: name,
	})
	if errors.Is(err, model.ErrNotFound) {
		return editContent(s, i.Interaction, fmt.Sprintf("%s | No se encontró el usuario de Roblox: **%s**.", emojiDeny, name))
	}
	if err != nil {
		h.logger.Debug("Verification handler: start refused", "actor", actor.ID, "error", err.Error())
		return editContent(s, i.Interaction, handleError(err))
	}

	embed := newEmbed(colorBlurple, emojiWarn+" | ¿Este es el usuario correcto?")
	embed.Description = emojiNerd + " | Para asegurarnos que sea el usuario de Roblox correcto, verifica si la imagen de la derecha coincide con el avatar del usuario."
	embed.Thumbnail = thumbnail(session.ImageURL)
	embed.Fields = []*discordgo.MessageEmbedField{
		field("Usuario de Discord", mention(session.TargetID), true),
		field("Usuario de Roblox", session.ExternalName, true),
	}

	return editEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{embed}, []discordgo.MessageComponent{
		row(
			button("Si", PrefixVerifyConfirm+key, discordgo.SuccessButton),
			button("No", PrefixVerifyCancel+key, discordgo.DangerButton),
		),
	})
}

// Confirm applies the verification, announces the new citizen and sends the rules by DM.
func (h *Verification) Confirm(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	key := strings.TrimPrefix(i.MessageComponentData().CustomID, PrefixVerifyConfirm)
	actor := actorOf(i)

	if err := deferUpdate(s, i.Interaction); err != nil {
		return err
	}

	session, err := h.service.Confirm(ctx, key, actor.ID)
	switch {
	case errors.Is(err, pending.ErrSessionNotFound):
		return editContent(s, i.Interaction, "La sesión de verificación expiró. Ejecutá el comando nuevamente.")
	case errors.Is(err, model.ErrUnauthorized):
		return followupEphemeral(s, i.Interaction, emojiNerd+" | Solo el moderador que ejecutó el comando puede confirmar la verificación.")
	case err != nil:
		h.logger.Error("Verification handler: confirm failed", "key", key, "error", err.Error())
		return editContent(s, i.Interaction, handleError(err))
	}

	confirmed := newEmbed(colorGreen, "")
	confirmed.Description = fmt.Sprintf("%s | El usuario %s ha sido verificado exitosamente.\nSe le agregó el rol %s y se eliminó el rol %s.",
		emojiApproved, mention(session.TargetID), roleMention(h.guild.Roles.Citizen), roleMention(h.guild.Roles.Unverified))
	confirmed.Footer = footer("Verificado por " + actor.DisplayTag())
	if err := editEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{confirmed}, nil); err != nil {
		return err
	}

	welcome := h.welcomeEmbed(session)
	if _, err := send(s, h.guild.Channels.Welcome, &discordgo.MessageSend{
		Content: mention(session.TargetID),
		Embeds:  []*discordgo.MessageEmbed{welcome},
		Components: []discordgo.MessageComponent{
			row(button("Saludar", PrefixGreet+session.TargetID, discordgo.SuccessButton)),
		},
	}); err != nil {
		h.logger.Error("Verification handler: failed to post welcome", "target", session.TargetID, "error", err.Error())
	}

	dm := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{welcome}}
	if h.guild.RulesURL != "" {
		dm.Components = []discordgo.MessageComponent{
			row(discordgo.Button{Label: "Reglas Roleplay", Style: discordgo.LinkButton, URL: h.guild.RulesURL}),
		}
	}
	if err := sendDM(s, session.TargetID, dm); err != nil {
		h.logger.Info("Verification handler: welcome DM not delivered", "target", session.TargetID, "error", err.Error())
	}

	return nil
}

func (h *Verification) welcomeEmbed(session model.VerificationSession) *discordgo.MessageEmbed {
	embed := newEmbed(colorGreen, emojiApproved+" | ¡Bienvenido a "+h.guild.Name+"!")
	embed.Description = h.guild.WelcomeMessage
	embed.Thumbnail = thumbnail(session.ImageURL)
	embed.Footer = footer(h.guild.Footer)
	return embed
}

// Cancel discards the session without touching the member.
func (h *Verification) Cancel(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	key := strings.TrimPrefix(i.MessageComponentData().CustomID, PrefixVerifyCancel)

	err := h.service.Cancel(ctx, key, actorOf(i).ID)
	switch {
	case errors.Is(err, pending.ErrSessionNotFound):
		return update(s, i.Interaction, clearedMessage("La sesión de verificación expiró."))
	case errors.Is(err, model.ErrUnauthorized):
		return replyEphemeral(s, i.Interaction, "Solo el moderador que ejecutó el comando puede cancelar la verificación.")
	case err != nil:
		return replyEphemeral(s, i.Interaction, handleError(err))
	}

	return update(s, i.Interaction, clearedMessage("Verificación cancelada. Revisá el usuario de Roblox e intentá nuevamente."))
}

// Greet welcomes the new citizen once per greeter.
func (h *Verification) Greet(_ context.Context, s Session, i *discordgo.InteractionCreate) error {
	targetID := strings.TrimPrefix(i.MessageComponentData().CustomID, PrefixGreet)
	greeter := actorOf(i)

	if err := h.service.Greet(targetID, greeter.ID); err != nil {
		return replyEphemeral(s, i.Interaction, handleError(err))
	}

	return reply(s, i.Interaction, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("👋🏻 | El usuario %s te da la Bienvenida, disfruta de tu estadía.", mention(greeter.ID)),
	})
}

func clearedMessage(content string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Content:    content,
		Embeds:     []*discordgo.MessageEmbed{},
		Components: []discordgo.MessageComponent{},
	}
}
