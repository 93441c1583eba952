package handler

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/config"
)

type sentMessage struct {
	channelID string
	msg       *discordgo.MessageSend
}

// fakeSession records everything the handlers send to Discord.
type fakeSession struct {
	mu           sync.Mutex
	responses    []*discordgo.InteractionResponse
	edits        []*discordgo.WebhookEdit
	followups    []*discordgo.WebhookParams
	sent         []sentMessage
	messageEdits []*discordgo.MessageEdit

	sendErr map[string]error
	dmErr   error
}

func newFakeSession() *fakeSession {
	return &fakeSession{sendErr: make(map[string]error)}
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) InteractionResponseEdit(_ *discordgo.Interaction, edit *discordgo.WebhookEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, edit)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, params *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, params)
	return &discordgo.Message{}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, msg *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErr[channelID]; err != nil {
		return nil, err
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, msg: msg})
	return &discordgo.Message{ID: fmt.Sprintf("msg-%d", len(f.sent)), ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageEditComplex(edit *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messageEdits = append(f.messageEdits, edit)
	return &discordgo.Message{ID: edit.ID, ChannelID: edit.Channel}, nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	return &discordgo.Channel{ID: "DM-" + recipientID}, nil
}

func (f *fakeSession) lastResponse() *discordgo.InteractionResponse {
	if len(f.responses) == 0 {
		return nil
	}
	return f.responses[len(f.responses)-1]
}

func (f *fakeSession) lastEdit() *discordgo.WebhookEdit {
	if len(f.edits) == 0 {
		return nil
	}
	return f.edits[len(f.edits)-1]
}

func (f *fakeSession) lastEditContent() string {
	e := f.lastEdit()
	if e == nil || e.Content == nil {
		return ""
	}
	return *e.Content
}

func (f *fakeSession) sentTo(channelID string) []*discordgo.MessageSend {
	var out []*discordgo.MessageSend
	for _, m := range f.sent {
		if m.channelID == channelID {
			out = append(out, m.msg)
		}
	}
	return out
}

func testGuild() *config.Guild {
	return &config.Guild{
		Name: "Argentina RP",
		Channels: config.Channels{
			RateStaff:          "C-rate",
			RatingsDestination: "C-ratings",
			Verify:             "C-verify",
			Welcome:            "C-welcome",
			Environment:        "C-env",
			Arrests:            "C-arrests",
			Fines:              "C-fines",
			RoleRequests:       "C-requests",
			RecordsLog:         "C-log",
		},
		Roles: config.Roles{
			Moderator:        "R-mod",
			StaffApplicant:   "R-applicant",
			MuteModerator:    "R-mute",
			Citizen:          "R-citizen",
			Unverified:       "R-unverified",
			RoleRequestStaff: "R-staff",
			Police:           []string{"R-police"},
		},
		TechnicalRoles: []config.TechnicalRole{
			{Value: "enc_dni", Label: "Encargado DNI", RoleID: "R-dni"},
			{Value: "disabled_cf", Label: "Control Faccionario", DisabledReason: "requires a prior test"},
		},
		FAQ: []config.FAQEntry{
			{Value: "faq_erlc", Label: "ER:LC", Description: "Unirse", Response: "Necesitás ser Tier 1."},
		},
		WelcomeMessage: "Bienvenido",
		RulesURL:       "https://rules.example",
		Footer:         "footer",
	}
}

func memberOf(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{
		User:  &discordgo.User{ID: id, Username: "user" + id, Discriminator: "0"},
		Roles: roles,
	}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func intOpt(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionInteger, Value: float64(value)}
}

func userOpt(name, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionUser, Value: id}
}

func roleOpt(name, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionRole, Value: id}
}

func attachmentOpt(name, id string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionAttachment, Value: id}
}

func commandInteraction(name, channelID string, member *discordgo.Member, resolved *discordgo.ApplicationCommandInteractionDataResolved, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "I1",
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: channelID,
		Member:    member,
		Data: discordgo.ApplicationCommandInteractionData{
			Name:     name,
			Options:  opts,
			Resolved: resolved,
		},
	}}
}

func autocompleteInteraction(member *discordgo.Member, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	i := commandInteraction("verificar", "C-verify", member, nil, opts...)
	i.Type = discordgo.InteractionApplicationCommandAutocomplete
	return i
}

func componentInteraction(customID string, member *discordgo.Member, values ...string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "I2",
		Type:    discordgo.InteractionMessageComponent,
		Member:  member,
		Message: &discordgo.Message{ID: "M-prompt", ChannelID: "C-requests"},
		Data: discordgo.MessageComponentInteractionData{
			CustomID: customID,
			Values:   values,
		},
	}}
}

func modalInteraction(customID string, member *discordgo.Member, fields map[string]string) *discordgo.InteractionCreate {
	var rows []discordgo.MessageComponent
	for id, v := range fields {
		rows = append(rows, &discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.TextInput{CustomID: id, Value: v},
		}})
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:     "I3",
		Type:   discordgo.InteractionModalSubmit,
		Member: member,
		Data: discordgo.ModalSubmitInteractionData{
			CustomID:   customID,
			Components: rows,
		},
	}}
}
