package handler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/config"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
	"github.com/argrp/rpbot/internal/service"
)

// RecordService defines arrest and fine record keeping.
type RecordService interface {
	Record(ctx context.Context, params model.CreateRecordParams) (model.Record, *model.Identity, error)
	History(ctx context.Context, kind model.RecordKind, target model.Member) (model.RecordHistory, error)
	Purge(ctx context.Context, params model.PurgeRecordsParams) (model.PurgeResult, error)
}

const recordsLogFooter = "Sistema de Registros — Argentina RP"

// recordTexts holds what differs between arrests and fines.
type recordTexts struct {
	photoOption  string
	color        int
	title        string
	targetLabel  string
	chargesLabel string
	logTitle     string
	logTarget    string
	stored       string
	purgeTitle   string
	purgeCount   string
	purged       string
}

var recordKinds = map[model.RecordKind]recordTexts{
	model.RecordKindArrest: {
		photoOption:  OptionArrestPhoto,
		color:        colorRed,
		title:        emojiBan + " | Registro de Arresto",
		targetLabel:  emojiMember + " | Detenido (Discord)",
		chargesLabel: emojiWarn + " | Cargos",
		logTitle:     emojiBan + " | LOG — Arresto Registrado",
		logTarget:    "Detenido",
		stored:       "Arresto registrado correctamente en",
		purgeTitle:   emojiRejected + " | LOG — Arrestos Eliminados",
		purgeCount:   "Arrestos borrados",
		purged:       "arresto(s)",
	},
	model.RecordKindFine: {
		photoOption:  OptionFinePhoto,
		color:        colorOrange,
		title:        emojiWarn + " | Registro de Multa",
		targetLabel:  emojiMember + " | Multado (Discord)",
		chargesLabel: emojiWarn + " | Cargos / Infracción",
		logTitle:     emojiWarn + " | LOG — Multa Registrada",
		logTarget:    "Multado",
		stored:       "Multa registrada correctamente en",
		purgeTitle:   emojiRejected + " | LOG — Multas Eliminadas",
		purgeCount:   "Multas borradas",
		purged:       "multa(s)",
	},
}

// Records handles the arrest and fine commands.
type Records struct {
	service RecordService
	guild   *config.Guild
	logger  *logger.Logger
}

// NewRecords creates a new Records handler.
func NewRecords(service RecordService, guild *config.Guild, logger *logger.Logger) *Records {
	return &Records{
		service: service,
		guild:   guild,
		logger:  logger,
	}
}

// Arrest records an arrest.
func (h *Records) Arrest(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	return h.create(ctx, s, i, model.RecordKindArrest, h.guild.Channels.Arrests)
}

// Fine records a fine.
func (h *Records) Fine(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	return h.create(ctx, s, i, model.RecordKindFine, h.guild.Channels.Fines)
}

func (h *Records) create(ctx context.Context, s Session, i *discordgo.InteractionCreate, kind model.RecordKind, channelID string) error {
	texts := recordKinds[kind]
	opts := optionsOf(i)
	officer := actorOf(i)
	target := opts.member(OptionUser)

	if err := deferReply(s, i.Interaction, true); err != nil {
		return err
	}

	record, identity, err := h.service.Record(ctx, model.CreateRecordParams{
		Kind:     kind,
		Officer:  officer,
		Target:   target,
		Charges:  opts.string(OptionCharges),
		Evidence: opts.attachment(texts.photoOption),
	})
	if err != nil {
		return editContent(s, i.Interaction, handleError(err))
	}

	embed := newEmbed(texts.color, texts.title)
	embed.Image = image(record.PhotoURL)
	if identity != nil {
		embed.Thumbnail = thumbnail(identity.AvatarURL)
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		field(texts.targetLabel, mention(target.ID), true),
		field(emojiRoblox+" | Usuario Roblox", link(record.RobloxName, record.RobloxURL), true),
		spacer(),
		field(texts.chargesLabel, record.Charges, false),
		field(emojiModerators+" | Oficial", mention(officer.ID), true),
		field(emojiLoading+" | Fecha", record.Date, true),
	}
	embed.Footer = footer(h.guild.Footer)
	h.post(s, channelID, embed, kind)

	logEmbed := newEmbed(texts.color, texts.logTitle)
	logEmbed.Fields = []*discordgo.MessageEmbedField{
		field(texts.logTarget, fmt.Sprintf("%s (%s)", mention(target.ID), target.ID), true),
		field("Roblox", record.RobloxName, true),
		field("Cargos", record.Charges, false),
		field("Oficial", mention(officer.ID), true),
		field("Fecha", service.LogTimestamp(time.Now()), true),
	}
	logEmbed.Footer = footer(recordsLogFooter)
	h.post(s, h.guild.Channels.RecordsLog, logEmbed, kind)

	return editContent(s, i.Interaction, fmt.Sprintf("%s | %s %s.", emojiApproved, texts.stored, channelMention(channelID)))
}

// ArrestHistory shows the arrest count and the latest arrests of a member.
func (h *Records) ArrestHistory(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	opts := optionsOf(i)
	target := actorOf(i)
	if opts.has(OptionUser) {
		target = opts.member(OptionUser)
	}

	if err := deferReply(s, i.Interaction, false); err != nil {
		return err
	}

	history, err := h.service.History(ctx, model.RecordKindArrest, target)
	if err != nil {
		h.logger.Error("Records handler: history failed", "user", target.ID, "error", err.Error())
		return editContent(s, i.Interaction, handleError(err))
	}

	name, url := target.Username, ""
	embed := newEmbed(colorBlurple, emojiBan+" | Historial de Arrestos")
	if history.Identity != nil {
		name, url = history.Identity.Name, history.Identity.ProfileURL()
		embed.Thumbnail = thumbnail(history.Identity.AvatarURL)
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		field(emojiMember+" | Usuario Discord", mention(target.ID), true),
		field(emojiRoblox+" | Usuario Roblox", link(name, url), true),
		field(emojiNerd+" | Total de arrestos", strconv.Itoa(history.Total), false),
	}
	embed.Footer = footer(h.guild.Footer)

	var components []discordgo.MessageComponent
	if len(history.Records) > 0 {
		options := make([]discordgo.SelectMenuOption, 0, len(history.Records))
		for _, r := range history.Records {
			options = append(options, discordgo.SelectMenuOption{
				Label:       truncate(fmt.Sprintf("Arresto #%d — %s", r.ID, r.Date), 100),
				Value:       fmt.Sprintf("cargo_%d", r.ID),
				Description: truncate(r.Charges, 100),
			})
		}
		components = append(components, row(discordgo.SelectMenu{
			CustomID:    PrefixArrestCharges + target.ID,
			Placeholder: "Cargos Mayores — Ver historial",
			Options:     options,
		}))
	}

	return editEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{embed}, components)
}

// ChargesSelect answers a pick in the history menu, whose options already show the charges.
func (h *Records) ChargesSelect(_ context.Context, s Session, i *discordgo.InteractionCreate) error {
	return replyEphemeral(s, i.Interaction, "Podés ver los cargos en la descripción de cada opción del menú.")
}

// PurgeArrests deletes every arrest of a member.
func (h *Records) PurgeArrests(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	return h.purge(ctx, s, i, model.RecordKindArrest)
}

// PurgeFines deletes every fine of a member.
func (h *Records) PurgeFines(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	return h.purge(ctx, s, i, model.RecordKindFine)
}

func (h *Records) purge(ctx context.Context, s Session, i *discordgo.InteractionCreate, kind model.RecordKind) error {
	texts := recordKinds[kind]
	opts := optionsOf(i)
	executor := actorOf(i)
	target := opts.member(OptionUser)

	if err := deferReply(s, i.Interaction, true); err != nil {
		return err
	}

	result, err := h.service.Purge(ctx, model.PurgeRecordsParams{
		Kind:     kind,
		Executor: executor,
		Target:   target,
		Reason:   opts.string(OptionReason),
	})
	if result.Entry.UserID == "" {
		return editContent(s, i.Interaction, handleError(err))
	}

	logEmbed := newEmbed(colorOrange, texts.purgeTitle)
	logEmbed.Fields = []*discordgo.MessageEmbedField{
		field("Usuario", fmt.Sprintf("%s (%s)", mention(target.ID), target.ID), true),
		field(texts.purgeCount, strconv.FormatInt(result.Deleted, 10), true),
		field("Motivo", result.Entry.Reason, false),
		field("Ejecutado por", mention(executor.ID), true),
		field("Fecha", result.Entry.Date, true),
	}
	logEmbed.Footer = footer(recordsLogFooter)
	h.post(s, h.guild.Channels.RecordsLog, logEmbed, kind)

	content := fmt.Sprintf("%s | Se eliminaron **%d** %s de %s de la base de datos.\n**Motivo:** %s",
		emojiApproved, result.Deleted, texts.purged, mention(target.ID), result.Entry.Reason)
	if err != nil {
		content += "\n" + handleError(err)
	}

	return editContent(s, i.Interaction, content)
}

// post sends an embed to a records channel. Failures are logged only.
func (h *Records) post(s Session, channelID string, embed *discordgo.MessageEmbed, kind model.RecordKind) {
	if channelID == "" {
		return
	}
	if _, err := send(s, channelID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}); err != nil {
		h.logger.Error("Records handler: failed to post embed", "kind", kind, "channel", channelID, "error", err.Error())
	}
}
