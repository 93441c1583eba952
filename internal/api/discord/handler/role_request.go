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

// RoleRequestService defines the role request workflow.
type RoleRequestService interface {
	Submit(ctx context.Context, params model.SubmitRoleRequestParams) (model.RoleRequestReceipt, error)
	AttachPrompt(key string, ref model.MessageRef) bool
	Accept(ctx context.Context, key string, actor model.Member) (model.RoleRequestDecision, error)
	BeginReject(ctx context.Context, key string, actor model.Member) (model.RoleRequestSession, error)
	CompleteReject(ctx context.Context, key string, actor model.Member, reason string) (model.RoleRequestDecision, error)
}

// RoleRequest handles role requests and the staff decision controls.
type RoleRequest struct {
	service RoleRequestService
	guild   *config.Guild
	logger  *logger.Logger
}

// NewRoleRequest creates a new RoleRequest handler.
func NewRoleRequest(service RoleRequestService, guild *config.Guild, logger *logger.Logger) *RoleRequest {
	return &RoleRequest{
		service: service,
		guild:   guild,
		logger:  logger,
	}
}

// Submit opens the request and posts the decision prompt for the staff.
func (h *RoleRequest) Submit(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	opts := optionsOf(i)
	requester := actorOf(i)

	if err := deferReply(s, i.Interaction, true); err != nil {
		return err
	}

	receipt, err := h.service.Submit(ctx, model.SubmitRoleRequestParams{
		Requester:     requester,
		RoleValue:     opts.string(OptionRequestRole),
		Justification: opts.string(OptionReason),
		Evidence:      opts.attachment(OptionEvidence),
	})
	if err != nil {
		return editContent(s, i.Interaction, handleError(err))
	}

	staffRole := h.guild.Roles.RoleRequestStaff
	embed := newEmbed(colorBlurple, emojiLoading+" | Nueva Solicitud de Rol")
	embed.Image = image(receipt.Session.EvidenceURL)
	embed.Fields = []*discordgo.MessageEmbedField{
		field(emojiMember+" | Solicitante", mention(requester.ID), true),
		field(emojiConfig+" | Rol solicitado", receipt.Session.RoleLabel, true),
		spacer(),
		field(emojiDance+" | Motivo", receipt.Session.Justification, false),
		field(emojiWarn+" | Roles de facción que ya posee", strconv.Itoa(receipt.LimitedHeld), false),
	}
	embed.Footer = footer(h.guild.Footer)

	msg, err := send(s, h.guild.Channels.RoleRequests, &discordgo.MessageSend{
		Content:         roleMention(staffRole),
		Embeds:          []*discordgo.MessageEmbed{embed},
		AllowedMentions: &discordgo.MessageAllowedMentions{Roles: []string{staffRole}},
		Components: []discordgo.MessageComponent{
			row(
				button("Aceptar", PrefixRequestAccept+receipt.Key, discordgo.SuccessButton),
				button("Rechazar", PrefixRequestReject+receipt.Key, discordgo.DangerButton),
			),
		},
	})
	if err != nil {
		h.logger.Error("Role request handler: failed to post prompt", "key", receipt.Key, "error", err.Error())
		return editContent(s, i.Interaction, handleError(model.NewExternalError("enviar la solicitud al staff", err)))
	}
	h.service.AttachPrompt(receipt.Key, model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID})

	return editContent(s, i.Interaction, fmt.Sprintf(
		"%s | Tu solicitud para el rol **%s** ha sido enviada correctamente. El staff revisará tu solicitud próximamente.",
		emojiApproved, receipt.Session.RoleLabel))
}

// Accept grants the role, closes the prompt and notifies the requester.
func (h *RoleRequest) Accept(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	key := strings.TrimPrefix(i.MessageComponentData().CustomID, PrefixRequestAccept)
	actor := actorOf(i)

	if err := deferUpdate(s, i.Interaction); err != nil {
		return err
	}

	decision, err := h.service.Accept(ctx, key, actor)
	if decision.Session.RequesterID == "" {
		if errors.Is(err, model.ErrUnauthorized) {
			return followupEphemeral(s, i.Interaction, emojiDeny+" | No tenés los permisos para aceptar solicitudes.")
		}
		return followupEphemeral(s, i.Interaction, handleError(err))
	}

	if err != nil {
		return h.acceptFailed(s, i, key, actor, decision.Session, err)
	}

	content := fmt.Sprintf("%s | Aceptada por %s", emojiApproved, mention(actor.ID))
	h.closePrompt(s, i, key, content)

	embed := newEmbed(colorGreen, emojiApproved+" | La solicitud ha sido aprobada.")
	embed.Description = fmt.Sprintf("%s | La solicitud de %s ha sido aceptada por el Moderador **%s** exitosamente, el rol **%s** ha sido agregado a su perfil.",
		emojiMember, mention(decision.Session.RequesterID), actor.DisplayTag(), decision.Session.RoleLabel)
	embed.Footer = footer(h.guild.Footer)

	return followup(s, i.Interaction, &discordgo.WebhookParams{
		Content: mention(decision.Session.RequesterID),
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
}

// acceptFailed reports a request that was consumed but whose role could not be
// granted. The prompt is closed with a failure note and the requester is told
// to ask again, since the session no longer exists.
func (h *RoleRequest) acceptFailed(s Session, i *discordgo.InteractionCreate, key string, actor model.Member, session model.RoleRequestSession, err error) error {
	h.logger.Error("Role request handler: role not granted after accept",
		"key", key, "actor", actor.ID, "requester", session.RequesterID, "error", err.Error())

	op := "asignar el rol"
	var externalErr *model.ExternalError
	if errors.As(err, &externalErr) {
		op = externalErr.Op
	}

	h.closePrompt(s, i, key, fmt.Sprintf("%s | No se pudo asignar el rol (revisada por %s), el solicitante debe volver a solicitarlo.",
		emojiDeny, mention(actor.ID)))

	embed := newEmbed(colorRed, emojiDeny+" | No se pudo completar la solicitud.")
	embed.Description = fmt.Sprintf("%s | La solicitud de %s para el rol **%s** fue aceptada, pero no se pudo %s. Volvé a enviar la solicitud con `/solicitar-rol`.",
		emojiWarn, mention(session.RequesterID), session.RoleLabel, op)
	embed.Footer = footer(h.guild.Footer)

	if err := followup(s, i.Interaction, &discordgo.WebhookParams{
		Content: mention(session.RequesterID),
		Embeds:  []*discordgo.MessageEmbed{embed},
	}); err != nil {
		return err
	}

	return followupEphemeral(s, i.Interaction, fmt.Sprintf("%s | No se pudo %s. La solicitud quedó cerrada y se avisó al solicitante que vuelva a solicitarlo.", emojiDeny, op))
}

// closePrompt replaces the decision buttons of the prompt with content.
func (h *RoleRequest) closePrompt(s Session, i *discordgo.InteractionCreate, key, content string) {
	components := decidedControls()
	if err := editReply(s, i.Interaction, &discordgo.WebhookEdit{Content: &content, Components: &components}); err != nil {
		h.logger.Error("Role request handler: failed to close prompt", "key", key, "error", err.Error())
	}
}

// Reject holds the request and opens the rejection reason form.
func (h *RoleRequest) Reject(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	key := strings.TrimPrefix(i.MessageComponentData().CustomID, PrefixRequestReject)

	if _, err := h.service.BeginReject(ctx, key, actorOf(i)); err != nil {
		if errors.Is(err, model.ErrUnauthorized) {
			return replyEphemeral(s, i.Interaction, emojiDeny+" | No tenés los permisos para rechazar solicitudes.")
		}
		return replyEphemeral(s, i.Interaction, handleError(err))
	}

	return respond(s, i.Interaction, discordgo.InteractionResponseModal, &discordgo.InteractionResponseData{
		CustomID: PrefixRejectModal + key,
		Title:    "Motivo de Rechazo",
		Components: []discordgo.MessageComponent{
			row(discordgo.TextInput{
				CustomID:  FieldRejectReason,
				Label:     "Motivo del rechazo",
				Style:     discordgo.TextInputParagraph,
				Required:  true,
				MaxLength: 500,
			}),
		},
	})
}

// RejectModal resolves the request with the submitted reason.
func (h *RoleRequest) RejectModal(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	key := strings.TrimPrefix(i.ModalSubmitData().CustomID, PrefixRejectModal)
	actor := actorOf(i)

	decision, err := h.service.CompleteReject(ctx, key, actor, modalValue(i, FieldRejectReason))
	if err != nil {
		if errors.Is(err, model.ErrUnauthorized) {
			return replyEphemeral(s, i.Interaction, emojiDeny+" | No tenés los permisos para rechazar solicitudes.")
		}
		return replyEphemeral(s, i.Interaction, handleError(err))
	}

	embed := newEmbed(colorRed, emojiRejected+" | La solicitud ha sido denegada.")
	embed.Description = fmt.Sprintf("%s | Su solicitud de solicitar el rol **%s** ha sido rechazada por el Moderador **%s** por el siguiente motivo: %s",
		emojiEhh, decision.Session.RoleLabel, actor.DisplayTag(), decision.Reason)
	embed.Footer = footer(h.guild.Footer)

	if err := reply(s, i.Interaction, &discordgo.InteractionResponseData{
		Content: mention(decision.Session.RequesterID),
		Embeds:  []*discordgo.MessageEmbed{embed},
	}); err != nil {
		return err
	}

	if p := decision.Session.Prompt; p != nil {
		content := fmt.Sprintf("%s | Rechazada por %s", emojiRejected, mention(actor.ID))
		components := decidedControls()
		if _, err := s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         p.MessageID,
			Channel:    p.ChannelID,
			Content:    &content,
			Components: &components,
		}); err != nil {
			h.logger.Error("Role request handler: failed to close prompt", "key", key, "error", err.Error())
		}
	}

	return nil
}

// decidedControls replaces the decision buttons of a resolved prompt.
func decidedControls() []discordgo.MessageComponent {
	accept := button("Aceptar", PrefixRequestAccept+"resuelta", discordgo.SuccessButton)
	accept.Disabled = true
	reject := button("Rechazar", PrefixRequestReject+"resuelta", discordgo.DangerButton)
	reject.Disabled = true

	return []discordgo.MessageComponent{row(accept, reject)}
}
