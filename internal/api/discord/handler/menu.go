package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/config"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

// TechnicalRoleService defines the self-service technical roles.
type TechnicalRoleService interface {
	CanPublishTechnicalMenu(actor model.Member) bool
	AssignTechnicalRoles(ctx context.Context, member model.Member, values []string) ([]string, error)
}

const menuFooter = "Todos los derechos reservados 2026, Argentina Roleplay."

const infoDescription = "**Comandos disponibles:**\n" +
	"`/calificar-staff` — Califica al staff\n" +
	"`/verificar` — Verifica a un usuario\n" +
	"`/entorno` — Registra el entorno de tu personaje\n" +
	"`/roblox-info` — Info detallada de una cuenta de Roblox\n" +
	"`/arrestar` — Registra un arresto\n" +
	"`/registros-arrestos` — Consulta el historial de arrestos\n" +
	"`/eliminar-arrestos` — Elimina arrestos de un usuario\n" +
	"`/multar` — Registra una multa\n" +
	"`/eliminar-multa` — Elimina multas de un usuario\n" +
	"`/solicitar-rol` — Solicita un rol al staff\n" +
	"`%[1]sinfo` — Información del bot\n\n" +
	"**Desarrollador:**\n" +
	"`@vladimirfernan.` — Reportar errores\n\n" +
	"**Stack:**\n" +
	"`Go` `discordgo` `PostgreSQL`"

const helpDescription = "**Información**\n" +
	"Esto es una guía básica del servidor. Usá `%[1]sinfo` para ver todos los comandos disponibles.\n\n" +
	"**Comandos principales**\n\n" +
	"`/verificar` — Verifica a un usuario en el servidor.\n\n" +
	"`/entorno` — Registra el entorno de tu personaje en el roleplay."

const faqDescription = "Por este medio te dejamos las respuestas a las preguntas más frecuentes de nuestra comunidad.\n\n" +
	"Presioná en la barra **\"Preguntas Frecuentes\"** que aparece debajo de este mensaje. " +
	"Una vez que la presiones se desplegarán las preguntas disponibles; al hacer clic en una de ellas verás su respuesta.\n\n" +
	"Recordá siempre seguir los procedimientos indicados."

const technicalDescription = "A continuación, encontrarán distintos roles que les permitirán acceder a diferentes **Equipos Técnicos**.\n\n" +
	"Los roles de **Encargado de DNI**, **Control Faccionario** y **Encargado de Verificaciones** requieren una **postulación previa**, " +
	"la cual deberá ser aprobada por los **Altos Mandos del STAFF** o, en su defecto, por los **Holders**."

// Menu handles the prefix commands and the menus they publish.
type Menu struct {
	technical TechnicalRoleService
	guild     *config.Guild
	prefix    string
	logger    *logger.Logger
}

// NewMenu creates a new Menu handler.
func NewMenu(technical TechnicalRoleService, guild *config.Guild, prefix string, logger *logger.Logger) *Menu {
	return &Menu{
		technical: technical,
		guild:     guild,
		prefix:    prefix,
		logger:    logger,
	}
}

// Message answers prefix commands. Other messages are ignored.
func (h *Menu) Message(_ context.Context, s Session, m *discordgo.MessageCreate) error {
	if m.Author == nil || m.Author.Bot || !strings.HasPrefix(m.Content, h.prefix) {
		return nil
	}
	args := strings.Fields(strings.TrimPrefix(m.Content, h.prefix))
	if len(args) == 0 {
		return nil
	}

	var msg *discordgo.MessageSend
	switch strings.ToLower(args[0]) {
	case "info":
		embed := newEmbed(colorBlurple, "Información General — Bot "+h.guild.Name)
		embed.Description = fmt.Sprintf(infoDescription, h.prefix)
		embed.Footer = footer(menuFooter)
		msg = &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	case "help", "ayuda":
		embed := newEmbed(colorGreen, h.guild.Name+" — Información General")
		embed.Description = fmt.Sprintf(helpDescription, h.prefix)
		embed.Footer = footer(menuFooter)
		msg = &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	case "faq":
		msg = h.faqMenu()
	case "tecnicatura":
		if !h.technical.CanPublishTechnicalMenu(messageAuthor(m)) {
			msg = &discordgo.MessageSend{Content: "No tenés los permisos necesarios para usar este comando."}
			break
		}
		msg = h.technicalMenu()
	default:
		return nil
	}

	_, err := send(s, m.ChannelID, msg)
	return err
}

func (h *Menu) faqMenu() *discordgo.MessageSend {
	embed := newEmbed(colorBlurple, "PREGUNTAS FRECUENTES | FAQ")
	embed.Description = faqDescription
	embed.Footer = footer(menuFooter)

	options := make([]discordgo.SelectMenuOption, 0, len(h.guild.FAQ))
	for _, e := range h.guild.FAQ {
		options = append(options, discordgo.SelectMenuOption{Label: e.Label, Value: e.Value, Description: e.Description})
	}

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			row(discordgo.SelectMenu{CustomID: CustomIDFAQ, Placeholder: "Preguntas Frecuentes", Options: options}),
		},
	}
}

func (h *Menu) technicalMenu() *discordgo.MessageSend {
	embed := newEmbed(colorBlurple, "Tecnicaturas | "+h.guild.Name)
	embed.Description = technicalDescription
	embed.Footer = footer(h.guild.Footer)

	options := make([]discordgo.SelectMenuOption, 0, len(h.guild.TechnicalRoles))
	selectable := 0
	for _, r := range h.guild.TechnicalRoles {
		options = append(options, discordgo.SelectMenuOption{Label: r.Label, Value: r.Value, Description: r.Description})
		if r.DisabledReason == "" {
			selectable++
		}
	}
	minValues := 1

	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			row(discordgo.SelectMenu{
				CustomID:    CustomIDTechnical,
				Placeholder: "Seleccionar Tecnicatura",
				MinValues:   &minValues,
				MaxValues:   max(selectable, 1),
				Options:     options,
			}),
		},
	}
}

// FAQSelect answers the picked question privately.
func (h *Menu) FAQSelect(_ context.Context, s Session, i *discordgo.InteractionCreate) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return replyEphemeral(s, i.Interaction, "No se encontró la respuesta.")
	}
	entry, ok := h.guild.FAQEntry(values[0])
	if !ok {
		return replyEphemeral(s, i.Interaction, "No se encontró la respuesta.")
	}

	embed := newEmbed(colorBlurple, "")
	embed.Description = entry.Response
	embed.Footer = footer(menuFooter)

	return reply(s, i.Interaction, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

// TechnicalSelect grants the picked technical roles to the caller.
func (h *Menu) TechnicalSelect(ctx context.Context, s Session, i *discordgo.InteractionCreate) error {
	added, err := h.technical.AssignTechnicalRoles(ctx, actorOf(i), i.MessageComponentData().Values)
	if err != nil {
		return replyEphemeral(s, i.Interaction, handleError(err))
	}

	if len(added) == 0 {
		return replyEphemeral(s, i.Interaction, "Ya tenés todos los roles seleccionados en tu perfil.")
	}

	labels := make([]string, 0, len(added))
	for _, l := range added {
		labels = append(labels, "**"+l+"**")
	}
	list := strings.Join(labels, ", ")

	if len(added) == 1 {
		return replyEphemeral(s, i.Interaction, fmt.Sprintf("✅ | El rol de tecnicatura %s ha sido añadido a tu perfil exitosamente.", list))
	}
	return replyEphemeral(s, i.Interaction, fmt.Sprintf("✅ | Los roles de tecnicatura %s han sido añadidos a tu perfil exitosamente.", list))
}

func messageAuthor(m *discordgo.MessageCreate) model.Member {
	member := model.Member{
		ID:       m.Author.ID,
		Username: m.Author.Username,
		Tag:      m.Author.String(),
	}
	if m.Member != nil {
		member.Nickname = m.Member.Nick
		member.Roles = m.Member.Roles
	}
	return member
}
