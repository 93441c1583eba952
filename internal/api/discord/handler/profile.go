package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/config"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

// ProfileService defines external identity lookups.
type ProfileService interface {
	Details(ctx context.Context, caller model.Member, name string) (model.IdentityDetails, error)
	Environment(ctx context.Context, params model.EnvironmentParams) (model.Identity, error)
	Suggest(ctx context.Context, query string) []model.IdentityMatch
}

const (
	maxChoices          = 10
	minAutocompleteLen  = 2
	maxDescriptionRunes = 300
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Profile handles the profile, environment and autocomplete interactions.
type Profile struct {
	service ProfileService
	guild   *config.Guild
	logger  *logger.Logger
}

// NewProfile creates a new Profile handler.
func NewProfile(service ProfileService, guild *config.Guild, logger *logger.Logger) *Profile {
	return &Profile{
		service: service,
		guild:   guild,
		logger:  logger,
	}
}

// Info shows the extended profile of an account, defaulting to the caller's.
func (h *Profile) Info(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	name := strings.TrimSpace(optionsOf(i).string(OptionRobloxUser))
	caller := actorOf(i)

	if err := deferReply(s, i.Interaction, false); err != nil {
		return err
	}

	details, err := h.service.Details(ctx, caller, name)
	switch {
	case errors.Is(err, model.ErrNotFound) && name != "":
		return editContent(s, i.Interaction, fmt.Sprintf("No se encontró el usuario de Roblox: **%s**.", name))
	case errors.Is(err, model.ErrNotFound):
		return editContent(s, i.Interaction, emojiDeny+" | No se pudo detectar tu cuenta de Roblox automáticamente. Por favor indicá tu nombre de usuario en el campo `usuario_roblox`.")
	case err != nil:
		return editContent(s, i.Interaction, handleError(err))
	}

	description := strings.TrimSpace(details.Description)
	if description == "" {
		description = "Sin descripción."
	}
	banned := "No"
	if details.IsBanned {
		banned = "Sí"
	}

	embed := newEmbed(colorProfile, fmt.Sprintf("%s | %s (@%s)", emojiConfig, details.DisplayName, details.Name))
	embed.URL = details.ProfileURL
	embed.Thumbnail = thumbnail(details.FullBodyURL)
	embed.Description = truncate(description, maxDescriptionRunes)
	embed.Fields = []*discordgo.MessageEmbedField{
		field(emojiChik+" | ID", strconv.FormatInt(details.ID, 10), true),
		field(emojiConfig+" | Creado el", spanishDate(details.Created), true),
		field(emojiBan+" | Baneado", banned, true),
		spacer(),
		field(emojiMember+" | Amigos", strconv.Itoa(details.FriendCount), true),
		field(emojiCheck+" | Seguidores", strconv.Itoa(details.FollowerCount), true),
		field(emojiLoading+" | Siguiendo", strconv.Itoa(details.FollowingCount), true),
		field(emojiLinks+" | Perfil", link("Ver en Roblox", details.ProfileURL), false),
	}
	embed.Footer = footer("Consultado por " + caller.DisplayTag())

	return editEmbeds(s, i.Interaction, []*discordgo.MessageEmbed{embed}, nil)
}

// Environment posts the caller's environment report to the environment channel.
func (h *Profile) Environment(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	opts := optionsOf(i)
	reporter := actorOf(i)
	params := model.EnvironmentParams{
		Reporter:     reporter,
		Place:        strings.TrimSpace(opts.string(OptionPlace)),
		Description:  strings.TrimSpace(opts.string(OptionEnvironment)),
		ExternalName: opts.string(OptionRobloxUser),
	}

	if err := deferReply(s, i.Interaction, true); err != nil {
		return err
	}

	identity, err := h.service.Environment(ctx, params)
	if errors.Is(err, model.ErrNotFound) {
		return editContent(s, i.Interaction, fmt.Sprintf("No se encontró el usuario de Roblox: **%s**.", params.ExternalName))
	}
	if err != nil {
		return editContent(s, i.Interaction, handleError(err))
	}

	embed := newEmbed(colorDark, emojiDance+" | Registro de Entorno")
	embed.Thumbnail = thumbnail(identity.FullBodyURL)
	embed.Fields = []*discordgo.MessageEmbedField{
		field(emojiDiscord+" | Usuario de Discord", mention(reporter.ID), true),
		field(emojiRoblox+" | Usuario de Roblox", link(identity.Name, identity.ProfileURL()), true),
		spacer(),
		field(emojiPinned+" | Lugar", params.Place, true),
		field(emojiLoading+" | Entorno", params.Description, false),
	}
	embed.Footer = footer(fmt.Sprintf("Registrado por %s · %s", reporter.DisplayTag(), h.guild.Name))

	channelID := h.guild.Channels.Environment
	if _, err := send(s, channelID, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}); err != nil {
		h.logger.Error("Profile handler: failed to post environment", "reporter", reporter.ID, "error", err.Error())
		return editContent(s, i.Interaction, "No se pudo acceder al canal de entorno. Contactá a un administrador.")
	}

	return editContent(s, i.Interaction, fmt.Sprintf("%s | Tu entorno ha sido registrado exitosamente en %s.", emojiCheck, channelMention(channelID)))
}

// Autocomplete suggests external accounts for the focused account option.
func (h *Profile) Autocomplete(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	choices := []*discordgo.ApplicationCommandOptionChoice{}

	if query, ok := focusedQuery(i, OptionRobloxUser); ok && utf8.RuneCountInString(query) >= minAutocompleteLen {
		for _, m := range h.service.Suggest(ctx, query) {
			if len(choices) == maxChoices {
				break
			}
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  fmt.Sprintf("%s (%d)", m.Name, m.ID),
				Value: m.Name,
			})
		}
	}

	return respond(s, i.Interaction, discordgo.InteractionApplicationCommandAutocompleteResult, &discordgo.InteractionResponseData{
		Choices: choices,
	})
}

func focusedQuery(i *discordgo.InteractionCreate, name string) (string, bool) {
	for _, opt := range i.ApplicationCommandData().Options {
		if !opt.Focused {
			continue
		}
		if opt.Name != name {
			return "", false
		}
		v, _ := opt.Value.(string)
		return strings.TrimSpace(v), true
	}
	return "", false
}

func spanishDate(t time.Time) string {
	if t.IsZero() {
		return "Desconocido"
	}
	return fmt.Sprintf("%02d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}
