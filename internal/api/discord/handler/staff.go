package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/config"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

// RatingService defines staff rating operations.
type RatingService interface {
	Rate(ctx context.Context, params model.RateStaffParams) (model.Rating, model.RatingStats, error)
}

// ModerationService defines staff actions on members.
type ModerationService interface {
	Mute(ctx context.Context, params model.MuteParams) (model.MuteResult, error)
	AddRole(ctx context.Context, params model.RoleChangeParams) error
	RemoveRole(ctx context.Context, params model.RoleChangeParams) error
	StaffList(ctx context.Context, group model.StaffGroup) ([]model.Member, error)
}

// Staff handles rating, role, mute and staff list commands.
type Staff struct {
	ratings    RatingService
	moderation ModerationService
	guild      *config.Guild
	logger     *logger.Logger
}

// NewStaff creates a new Staff handler.
func NewStaff(ratings RatingService, moderation ModerationService, guild *config.Guild, logger *logger.Logger) *Staff {
	return &Staff{
		ratings:    ratings,
		moderation: moderation,
		guild:      guild,
		logger:     logger,
	}
}

// Rate stores a rating and posts it with the staff member's stats.
func (h *Staff) Rate(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	opts := optionsOf(i)
	rater := actorOf(i)
	staffID := opts.id(OptionStaff)

	if err := deferReply(s, i.Interaction, true); err != nil {
		return err
	}

	rating, stats, err := h.ratings.Rate(ctx, model.RateStaffParams{
		ChannelID: i.ChannelID,
		Rater:     rater,
		StaffID:   staffID,
		Stars:     int(opts.int(OptionStars)),
		Note:      opts.string(OptionNote),
	})
	if err != nil {
		return editContent(s, i.Interaction, handleError(err))
	}

	embed := newEmbed(colorGold, emojiChik+" | Calificación Staff — Registrada")
	embed.Description = "Gracias por tu calificación."
	embed.Fields = []*discordgo.MessageEmbedField{
		field(emojiMember+" | Usuario", mention(rater.ID), true),
		field(emojiModerators+" | Staff calificado", mention(staffID), true),
		field(emojiNerd+" | Estrellas", strings.Repeat("⭐", rating.Stars), true),
		field(emojiDance+" | Opinión personal", rating.Note, false),
		field(emojiApproved+" | Estadísticas", fmt.Sprintf("%d calificaciones · Promedio: %s/5",
			stats.Count, strconv.FormatFloat(stats.Average, 'f', -1, 64)), false),
	}
	embed.Footer = footer(h.guild.Footer)

	if _, err := send(s, h.guild.Channels.RatingsDestination, &discordgo.MessageSend{
		Content: mention(staffID),
		Embeds:  []*discordgo.MessageEmbed{embed},
	}); err != nil {
		h.logger.Error("Staff handler: failed to post rating", "rating", rating.ID, "error", err.Error())
	}

	return editContent(s, i.Interaction, emojiApproved+" | Tu calificación ha sido enviada correctamente.")
}

// AddRole grants a role to a member.
func (h *Staff) AddRole(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	opts := optionsOf(i)
	moderator := actorOf(i)
	params := model.RoleChangeParams{
		Moderator: moderator,
		TargetID:  opts.id(OptionUser),
		RoleID:    opts.id(OptionRole),
	}

	if err := h.moderation.AddRole(ctx, params); err != nil {
		return replyEphemeral(s, i.Interaction, roleChangeError(err))
	}

	embed := newEmbed(colorGreen, "Rol Añadido")
	embed.Description = fmt.Sprintf("%s | El rol %s ha sido añadido a %s exitosamente.",
		emojiApproved, roleMention(params.RoleID), mention(params.TargetID))
	embed.Footer = footer("Ejecutado por " + moderator.DisplayTag())

	return reply(s, i.Interaction, &discordgo.InteractionResponseData{
		Embeds:          []*discordgo.MessageEmbed{embed},
		AllowedMentions: noPings(),
	})
}

// RemoveRole revokes a role from a member.
func (h *Staff) RemoveRole(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	opts := optionsOf(i)
	moderator := actorOf(i)
	params := model.RoleChangeParams{
		Moderator: moderator,
		TargetID:  opts.id(OptionUser),
		RoleID:    opts.id(OptionRole),
	}

	if err := h.moderation.RemoveRole(ctx, params); err != nil {
		return replyEphemeral(s, i.Interaction, roleChangeError(err))
	}

	embed := newEmbed(colorOrange, "Rol Eliminado")
	embed.Description = fmt.Sprintf("%s | El rol %s ha sido eliminado del perfil de %s exitosamente.",
		emojiApproved, roleMention(params.RoleID), mention(params.TargetID))
	embed.Footer = footer("Ejecutado por " + moderator.DisplayTag())

	return reply(s, i.Interaction, &discordgo.InteractionResponseData{
		Embeds:          []*discordgo.MessageEmbed{embed},
		AllowedMentions: noPings(),
	})
}

func roleChangeError(err error) string {
	if errors.Is(err, model.ErrUnauthorized) {
		return emojiNerd + " | No tenés los permisos necesarios para este comando."
	}
	return handleError(err)
}

// Mute times a member out and tells them why by DM.
func (h *Staff) Mute(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	opts := optionsOf(i)
	moderator := actorOf(i)
	targetID := opts.id(OptionUser)
	duration := opts.string(OptionDuration)
	reason := strings.TrimSpace(opts.string(OptionReason))

	result, err := h.moderation.Mute(ctx, model.MuteParams{
		Moderator: moderator,
		TargetID:  targetID,
		Duration:  duration,
		Reason:    reason,
	})
	if errors.Is(err, model.ErrUnauthorized) {
		return replyEphemeral(s, i.Interaction, emojiDeny+" | No sos Moderador. No podés usar este comando.")
	}
	if err != nil {
		return replyEphemeral(s, i.Interaction, handleError(err))
	}

	embed := newEmbed(colorOrange, "Usuario Silenciado")
	embed.Description = fmt.Sprintf("%s silenció a %s por **%s**.\n**Motivo:** %s",
		mention(moderator.ID), mention(targetID), duration, reason)
	embed.Footer = footer("Sistema de Moderación")
	if err := reply(s, i.Interaction, &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}); err != nil {
		return err
	}

	dm := newEmbed(colorOrange, "Has sido silenciado")
	dm.Description = fmt.Sprintf("Fuiste silenciado en **%s** por **%s**.\n\n**Motivo:** %s", h.guild.Name, duration, reason)
	dm.Footer = footer("Si creés que es un error, contactá al staff.")
	if err := sendDM(s, targetID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{dm}}); err != nil {
		h.logger.Info("Staff handler: mute DM not delivered", "target", targetID, "until", result.Until, "error", err.Error())
	}

	return nil
}

// StaffList shows the moderators with a button to switch to the applicants.
func (h *Staff) StaffList(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	if err := deferReply(s, i.Interaction, false); err != nil {
		return err
	}

	members, err := h.moderation.StaffList(ctx, model.StaffGroupModerators)
	if err != nil {
		h.logger.Error("Staff handler: staff list failed", "error", err.Error())
		return editContent(s, i.Interaction, "Error al cargar la lista.")
	}

	embed, components := staffListPage(model.StaffGroupModerators, members)
	return editEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{embed}, components)
}

// StaffListPage switches the staff list to the group named by the button.
func (h *Staff) StaffListPage(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	group := model.StaffGroup(strings.TrimPrefix(i.MessageComponentData().CustomID, PrefixStaffList))
	if group != model.StaffGroupApplicants {
		group = model.StaffGroupModerators
	}

	if err := deferUpdate(s, i.Interaction); err != nil {
		return err
	}

	members, err := h.moderation.StaffList(ctx, group)
	if err != nil {
		h.logger.Error("Staff handler: staff list failed", "group", group, "error", err.Error())
		return followupEphemeral(s, i.Interaction, handleError(err))
	}

	embed, components := staffListPage(group, members)
	return editEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{embed}, components)
}

func staffListPage(group model.StaffGroup, members []model.Member) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}

	if group == model.StaffGroupApplicants {
		list := emojiRejected + " | No hay postulantes registrados."
		if len(ids) > 0 {
			list = numberedMentions(ids)
		}
		embed := newEmbed(colorRed, emojiSupport+" | Lista de Staff")
		embed.Fields = []*discordgo.MessageEmbedField{field("⛑️ | Postulantes Staff", list, false)}
		embed.Footer = footer(fmt.Sprintf("Total: %d postulantes", len(ids)))

		return embed, []discordgo.MessageComponent{
			row(button("Moderadores", staffListID(model.StaffGroupModerators), discordgo.PrimaryButton)),
		}
	}

	list := emojiLoading + " | No hay moderadores registrados."
	if len(ids) > 0 {
		list = numberedMentions(ids)
	}
	embed := newEmbed(colorBlurple, emojiSupport+" | Lista de Staff")
	embed.Fields = []*discordgo.MessageEmbedField{field(emojiModerators+" | Moderadores", list, false)}
	embed.Footer = footer(fmt.Sprintf("Total: %d moderadores", len(ids)))

	return embed, []discordgo.MessageComponent{
		row(button("⛑️ | Postulantes", staffListID(model.StaffGroupApplicants), discordgo.DangerButton)),
	}
}
