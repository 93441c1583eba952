// Package bot owns the gateway session: it registers the slash commands, wires the
// event handlers and rotates the presence while connected.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

// Intents requested on the gateway.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildMembers

// Gateway is the subset of the discordgo session the bot drives.
type Gateway interface {
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
	UpdateWatchStatus(idle int, name string) error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

var _ Gateway = (*discordgo.Session)(nil)

// EventRouter receives the gateway events.
type EventRouter interface {
	Interaction(s *discordgo.Session, i *discordgo.InteractionCreate)
	Message(s *discordgo.Session, m *discordgo.MessageCreate)
}

// Options configures the bot.
type Options struct {
	GuildID          string
	Commands         []*discordgo.ApplicationCommand
	Presence         []string
	PresenceInterval time.Duration
}

// Bot is a connected guild bot.
type Bot struct {
	gateway Gateway
	router  EventRouter
	opts    Options
	health  model.HealthReporter
	logger  *logger.Logger

	presenceOnce sync.Once
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewSession creates an unopened gateway session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = Intents

	return s, nil
}

// New creates a Bot over gateway.
func New(gateway Gateway, router EventRouter, opts Options, health model.HealthReporter, logger *logger.Logger) *Bot {
	return &Bot{
		gateway: gateway,
		router:  router,
		opts:    opts,
		health:  health,
		logger:  logger,
	}
}

// Start registers the event handlers and opens the gateway connection.
// Background work is bound to ctx.
func (b *Bot) Start(ctx context.Context) error {
	ctx, b.cancel = context.WithCancel(ctx)

	b.gateway.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		b.ready(ctx, r)
	})
	b.gateway.AddHandler(b.router.Interaction)
	b.gateway.AddHandler(b.router.Message)

	if err := b.gateway.Open(); err != nil {
		b.cancel()
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	return nil
}

func (b *Bot) ready(ctx context.Context, r *discordgo.Ready) {
	if r.User == nil {
		b.logger.Error("Bot: ready event without user")
		return
	}
	b.logger.Info("Bot: logged in", "user", r.User.String(), "guilds", len(r.Guilds))

	// Ready fires again after a resumed-failed reconnect; overwriting is idempotent.
	if _, err := b.gateway.ApplicationCommandBulkOverwrite(r.User.ID, b.opts.GuildID, b.opts.Commands); err != nil {
		b.logger.Error("Bot: failed to register slash commands", "error", err.Error())
	} else {
		b.logger.Info("Bot: slash commands registered", "count", len(b.opts.Commands))
	}

	b.health.SetServing(true)

	b.presenceOnce.Do(func() {
		if len(b.opts.Presence) == 0 || b.opts.PresenceInterval <= 0 {
			return
		}
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.rotatePresence(ctx)
		}()
	})
}

// rotatePresence cycles through the watching statuses until ctx is done.
func (b *Bot) rotatePresence(ctx context.Context) {
	ticker := time.NewTicker(b.opts.PresenceInterval)
	defer ticker.Stop()

	for n := 0; ; n++ {
		status := b.opts.Presence[n%len(b.opts.Presence)]
		if err := b.gateway.UpdateWatchStatus(0, status); err != nil {
			b.logger.Debug("Bot: presence update failed", "error", err.Error())
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop reports not serving, stops the background work and closes the gateway.
func (b *Bot) Stop(_ context.Context) error {
	b.health.SetServing(false)
	if b.cancel != nil {
		b.cancel()
	}
	b.wg.Wait()

	if err := b.gateway.Close(); err != nil {
		return fmt.Errorf("failed to close gateway: %w", err)
	}
	return nil
}
