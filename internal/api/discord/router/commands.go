package router

import (
	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/api/discord/handler"
	"github.com/argrp/rpbot/internal/config"
)

// Slash command names.
const (
	CommandRateStaff     = "calificar-staff"
	CommandAddRole       = "añadir-rol"
	CommandRemoveRole    = "eliminar-rol"
	CommandStaffList     = "lista-staff"
	CommandMute          = "muted"
	CommandVerify        = "verificar"
	CommandEnvironment   = "entorno"
	CommandRobloxInfo    = "roblox-info"
	CommandArrest        = "arrestar"
	CommandArrestHistory = "registros-arrestos"
	CommandPurgeArrests  = "eliminar-arrestos"
	CommandFine          = "multar"
	CommandPurgeFines    = "eliminar-multa"
	CommandRequestRole   = "solicitar-rol"
)

const maxTextLength = 500

func userOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func textOption(name, description string, maxLength int) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
		MaxLength:   maxLength,
	}
}

func robloxOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         handler.OptionRobloxUser,
		Description:  description,
		Required:     required,
		Autocomplete: true,
	}
}

func attachmentOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionAttachment,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func roleOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        handler.OptionRole,
		Description: description,
		Required:    true,
	}
}

func starChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 5)
	stars := ""
	for n := 1; n <= 5; n++ {
		stars += "⭐"
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: stars, Value: n})
	}
	return choices
}

// Commands returns the slash commands registered in the guild.
func Commands(guild *config.Guild) []*discordgo.ApplicationCommand {
	roleChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(guild.RequestableRoles))
	for _, r := range guild.RequestableRoles {
		roleChoices = append(roleChoices, &discordgo.ApplicationCommandOptionChoice{Name: r.Label, Value: r.Value})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandRateStaff,
			Description: "Califica el desempeño de un miembro del staff.",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(handler.OptionStaff, "Miembro del staff a calificar.", true),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        handler.OptionStars,
					Description: "Calificación de 1 a 5 estrellas.",
					Required:    true,
					Choices:     starChoices(),
				},
				textOption(handler.OptionNote, "Explica por qué das esta calificación.", maxTextLength),
			},
		},
		{
			Name:        CommandAddRole,
			Description: "Añade un rol a un usuario.",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(handler.OptionUser, "Usuario al que se le añadirá el rol.", true),
				roleOption("Rol que se añadirá al usuario."),
			},
		},
		{
			Name:        CommandRemoveRole,
			Description: "Elimina un rol de un usuario.",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(handler.OptionUser, "Usuario al que se le eliminará el rol.", true),
				roleOption("Rol que se eliminará del usuario."),
			},
		},
		{
			Name:        CommandStaffList,
			Description: "Muestra la lista de moderadores y postulantes del staff.",
		},
		{
			Name:        CommandMute,
			Description: "Silencia a un usuario por un tiempo determinado.",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(handler.OptionUser, "Usuario a silenciar.", true),
				textOption(handler.OptionDuration, "Tiempo de silencio (ej: 1 hora, 30 minutos, 2 días).", 0),
				textOption(handler.OptionReason, "Motivo del silencio.", maxTextLength),
			},
		},
		{
			Name:        CommandVerify,
			Description: "Verifica a un usuario de la comunidad.",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(handler.OptionUser, "Usuario a verificar.", true),
				robloxOption("Nombre de usuario de Roblox.", true),
			},
		},
		{
			Name:        CommandEnvironment,
			Description: "Registra el entorno actual de tu personaje en el roleplay.",
			Options: []*discordgo.ApplicationCommandOption{
				textOption(handler.OptionPlace, "Lugar donde se encuentra tu personaje.", 0),
				textOption(handler.OptionEnvironment, "Descripción del entorno o situación actual.", maxTextLength),
				robloxOption("Tu nombre de usuario de Roblox.", true),
			},
		},
		{
			Name:        CommandRobloxInfo,
			Description: "Muestra información detallada de una cuenta de Roblox.",
			Options: []*discordgo.ApplicationCommandOption{
				robloxOption("Nombre de usuario de Roblox. Si no ponés nada, se usa tu apodo.", false),
			},
		},
		{
			Name:        CommandArrest,
			Description: "Registra el arresto de un usuario.",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(handler.OptionUser, "Usuario arrestado.", true),
				textOption(handler.OptionCharges, "Cargos del arresto.", maxTextLength),
				attachmentOption(handler.OptionArrestPhoto, "Foto del arresto como prueba."),
			},
		},
		{
			Name:        CommandArrestHistory,
			Description: "Muestra los registros de arrestos de un usuario.",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(handler.OptionUser, "Usuario a consultar (opcional).", false),
			},
		},
		{
			Name:        CommandPurgeArrests,
			Description: "Elimina los arrestos de un usuario de la base de datos.",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(handler.OptionUser, "Usuario al que se le eliminarán los arrestos.", true),
				textOption(handler.OptionReason, "Motivo de la eliminación.", maxTextLength),
			},
		},
		{
			Name:        CommandFine,
			Description: "Registra una multa a un usuario.",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(handler.OptionUser, "Usuario multado.", true),
				textOption(handler.OptionCharges, "Cargos de la multa.", maxTextLength),
				attachmentOption(handler.OptionFinePhoto, "Foto de la multa como prueba."),
			},
		},
		{
			Name:        CommandPurgeFines,
			Description: "Elimina las multas de un usuario de la base de datos.",
			Options: []*discordgo.ApplicationCommandOption{
				userOption(handler.OptionUser, "Usuario al que se le eliminarán las multas.", true),
				textOption(handler.OptionReason, "Motivo de la eliminación.", maxTextLength),
			},
		},
		{
			Name:        CommandRequestRole,
			Description: "Solicita un rol al staff.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        handler.OptionRequestRole,
					Description: "Rol que deseas solicitar.",
					Required:    true,
					Choices:     roleChoices,
				},
				textOption(handler.OptionReason, "Motivo de tu solicitud.", maxTextLength),
				attachmentOption(handler.OptionEvidence, "Foto con las pruebas de tu solicitud."),
			},
		},
	}
}
