package handler

import (
	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/api/discord/guild"
	"github.com/argrp/rpbot/internal/model"
)

// commandOptions indexes the options of a slash command by name.
type commandOptions struct {
	resolved *discordgo.ApplicationCommandInteractionDataResolved
	byName   map[string]*discordgo.ApplicationCommandInteractionDataOption
}

func optionsOf(i *discordgo.InteractionCreate) commandOptions {
	data := i.ApplicationCommandData()
	o := commandOptions{
		resolved: data.Resolved,
		byName:   make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options)),
	}
	for _, opt := range data.Options {
		o.byName[opt.Name] = opt
	}
	return o
}

func (o commandOptions) has(name string) bool {
	_, ok := o.byName[name]
	return ok
}

func (o commandOptions) string(name string) string {
	opt, ok := o.byName[name]
	if !ok {
		return ""
	}
	v, _ := opt.Value.(string)
	return v
}

func (o commandOptions) int(name string) int64 {
	opt, ok := o.byName[name]
	if !ok {
		return 0
	}
	switch v := opt.Value.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// id returns the snowflake of a user, role or attachment option.
func (o commandOptions) id(name string) string {
	return o.string(name)
}

// member builds the target member of a user option from the resolved data.
func (o commandOptions) member(name string) model.Member {
	id := o.id(name)
	m := model.Member{ID: id}
	if o.resolved == nil || id == "" {
		return m
	}
	if u, ok := o.resolved.Users[id]; ok && u != nil {
		m.Username = u.Username
		m.Tag = u.String()
	}
	if rm, ok := o.resolved.Members[id]; ok && rm != nil {
		m.Nickname = rm.Nick
		m.Roles = rm.Roles
	}
	return m
}

func (o commandOptions) attachment(name string) model.Attachment {
	id := o.id(name)
	if o.resolved == nil || id == "" {
		return model.Attachment{}
	}
	a, ok := o.resolved.Attachments[id]
	if !ok || a == nil {
		return model.Attachment{}
	}
	return model.Attachment{
		URL:         a.URL,
		Filename:    a.Filename,
		ContentType: a.ContentType,
		Size:        int64(a.Size),
	}
}

// actorOf returns the member that triggered the interaction.
func actorOf(i *discordgo.InteractionCreate) model.Member {
	if i.Member != nil {
		return guild.ToMember(i.Member)
	}
	if i.User != nil {
		return model.Member{ID: i.User.ID, Username: i.User.Username, Tag: i.User.String()}
	}
	return model.Member{}
}

func modalValue(i *discordgo.InteractionCreate, customID string) string {
	for _, c := range i.ModalSubmitData().Components {
		r, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range r.Components {
			if input, ok := inner.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
