// Package router dispatches gateway events to the interaction handlers.
package router

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/api/discord/handler"
	"github.com/argrp/rpbot/internal/api/discord/middleware"
	"github.com/argrp/rpbot/internal/logger"
)

const handlerTimeout = 30 * time.Second

// Handlers groups the interaction handlers the router dispatches to.
type Handlers struct {
	Verification *handler.Verification
	RoleRequest  *handler.RoleRequest
	Records      *handler.Records
	Staff        *handler.Staff
	Profile      *handler.Profile
	Menu         *handler.Menu
}

type prefixRoute struct {
	prefix string
	fn     handler.Func
}

// Router resolves interactions by command name, custom id or custom id prefix.
type Router struct {
	commands     map[string]handler.Func
	components   map[string]handler.Func
	prefixes     []prefixRoute
	modals       []prefixRoute
	autocomplete handler.Func
	message      handler.MessageFunc
	logger       *logger.Logger
}

// New creates a Router wired to h. Every route is wrapped with request logging.
func New(h Handlers, logger *logger.Logger) *Router {
	logging := middleware.NewLogging(logger)
	wrap := logging.Wrap

	return &Router{
		commands: map[string]handler.Func{
			CommandRateStaff:     wrap(CommandRateStaff, h.Staff.Rate),
			CommandAddRole:       wrap(CommandAddRole, h.Staff.AddRole),
			CommandRemoveRole:    wrap(CommandRemoveRole, h.Staff.RemoveRole),
			CommandStaffList:     wrap(CommandStaffList, h.Staff.StaffList),
			CommandMute:          wrap(CommandMute, h.Staff.Mute),
			CommandVerify:        wrap(CommandVerify, h.Verification.Start),
			CommandEnvironment:   wrap(CommandEnvironment, h.Profile.Environment),
			CommandRobloxInfo:    wrap(CommandRobloxInfo, h.Profile.Info),
			CommandArrest:        wrap(CommandArrest, h.Records.Arrest),
			CommandArrestHistory: wrap(CommandArrestHistory, h.Records.ArrestHistory),
			CommandPurgeArrests:  wrap(CommandPurgeArrests, h.Records.PurgeArrests),
			CommandFine:          wrap(CommandFine, h.Records.Fine),
			CommandPurgeFines:    wrap(CommandPurgeFines, h.Records.PurgeFines),
			CommandRequestRole:   wrap(CommandRequestRole, h.RoleRequest.Submit),
		},
		components: map[string]handler.Func{
			handler.CustomIDFAQ:       wrap(handler.CustomIDFAQ, h.Menu.FAQSelect),
			handler.CustomIDTechnical: wrap(handler.CustomIDTechnical, h.Menu.TechnicalSelect),
		},
		prefixes: []prefixRoute{
			{handler.PrefixVerifyConfirm, wrap("verificar_si", h.Verification.Confirm)},
			{handler.PrefixVerifyCancel, wrap("verificar_no", h.Verification.Cancel)},
			{handler.PrefixGreet, wrap("saludar", h.Verification.Greet)},
			{handler.PrefixRequestAccept, wrap("solicitud_aceptar", h.RoleRequest.Accept)},
			{handler.PrefixRequestReject, wrap("solicitud_rechazar", h.RoleRequest.Reject)},
			{handler.PrefixStaffList, wrap("lista_staff", h.Staff.StaffListPage)},
			{handler.PrefixArrestCharges, wrap("arrestos_cargos", h.Records.ChargesSelect)},
		},
		modals: []prefixRoute{
			{handler.PrefixRejectModal, wrap("rechazar_modal", h.RoleRequest.RejectModal)},
		},
		autocomplete: wrap("autocomplete", h.Profile.Autocomplete),
		message:      logging.WrapMessage(h.Menu.Message),
		logger:       logger,
	}
}

// Dispatch routes one interaction. Unknown interactions are ignored.
func (r *Router) Dispatch(ctx context.Context, s handler.Session, i *discordgo.InteractionCreate) error {
	fn := r.resolve(i)
	if fn == nil {
		r.logger.Debug("Router: no route for interaction", "type", i.Type.String(), "id", i.ID)
		return nil
	}
	return fn(ctx, s, i)
}

func (r *Router) resolve(i *discordgo.InteractionCreate) handler.Func {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		return r.commands[i.ApplicationCommandData().Name]
	case discordgo.InteractionApplicationCommandAutocomplete:
		return r.autocomplete
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if fn, ok := r.components[customID]; ok {
			return fn
		}
		return matchPrefix(r.prefixes, customID)
	case discordgo.InteractionModalSubmit:
		return matchPrefix(r.modals, i.ModalSubmitData().CustomID)
	}
	return nil
}

func matchPrefix(routes []prefixRoute, customID string) handler.Func {
	for _, route := range routes {
		if strings.HasPrefix(customID, route.prefix) {
			return route.fn
		}
	}
	return nil
}

// Interaction is the gateway handler for interaction events.
func (r *Router) Interaction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	// Failures are logged by the middleware.
	_ = r.Dispatch(ctx, s, i)
}

// Message is the gateway handler for message events.
func (r *Router) Message(s *discordgo.Session, m *discordgo.MessageCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	_ = r.message(ctx, s, m)
}
