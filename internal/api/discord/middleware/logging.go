package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/argrp/rpbot/internal/api/discord/handler"
	"github.com/argrp/rpbot/internal/logger"
)

// Logging wraps interaction handlers with request logging and panic recovery.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// Wrap logs the name, actor, duration and outcome of every call to next.
// A panic in next is logged and reported as an error.
func (l *Logging) Wrap(name string, next handler.Func) handler.Func {
	return func(ctx context.Context, s handler.Session, i *discordgo.InteractionCreate) (err error) {
		start := time.Now()
		actor := actorID(i)

		l.logger.Debug("Interaction started",
			"name", name,
			"actor", actor,
			"start_time", start.Format(time.RFC3339))

		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("interaction %s panicked: %v", name, r)
			}

			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			l.logger.Info("Interaction completed",
				"name", name,
				"actor", actor,
				"duration_ms", time.Since(start).Milliseconds(),
				"outcome", outcome)

			if err != nil {
				l.logger.Error("Interaction failed",
					"name", name,
					"actor", actor,
					"error", err.Error())
			}
		}()

		return next(ctx, s, i)
	}
}

// WrapMessage is Wrap for prefix-command handlers.
func (l *Logging) WrapMessage(next handler.MessageFunc) handler.MessageFunc {
	return func(ctx context.Context, s handler.Session, m *discordgo.MessageCreate) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("message handler panicked: %v", r)
			}
			if err != nil {
				l.logger.Error("Message handling failed",
					"channel", m.ChannelID,
					"error", err.Error())
			}
		}()

		return next(ctx, s, m)
	}
}

func actorID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
