package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/argrp/rpbot/internal/api/discord/bot"
	"github.com/argrp/rpbot/internal/api/discord/guild"
	"github.com/argrp/rpbot/internal/api/discord/handler"
	discordRouter "github.com/argrp/rpbot/internal/api/discord/router"
	grpcctx "github.com/argrp/rpbot/internal/api/grpc/context"
	grpcRouter "github.com/argrp/rpbot/internal/api/grpc/router"
	grpcServer "github.com/argrp/rpbot/internal/api/grpc/server"
	"github.com/argrp/rpbot/internal/config"
	"github.com/argrp/rpbot/internal/greeting"
	"github.com/argrp/rpbot/internal/identity/roblox"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
	"github.com/argrp/rpbot/internal/pending"
	"github.com/argrp/rpbot/internal/repository/postgres"
	"github.com/argrp/rpbot/internal/server"
	"github.com/argrp/rpbot/internal/service"
	storage "github.com/argrp/rpbot/internal/storage/minio"
	"github.com/argrp/rpbot/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	guildCfg, err := config.LoadGuild(cfg.GuildConfigPath)
	if err != nil {
		logger.Fatal("failed to load guild layout", "error", err)
	}

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer db.Close()

	var archive model.Storage
	if cfg.Storage.Enabled {
		client, err := storage.New(ctx, storage.Options{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to initialize evidence storage", "error", err)
		}
		archive = client
	} else {
		logger.Warn("evidence archive disabled, attachments keep their CDN links")
	}

	health := grpcServer.NewHealth()
	ctxMgr := grpcctx.NewManager()
	operators := service.NewOperators(token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL), logger.Component("operators"))
	ops := grpcServer.NewGRPCServer(
		grpcRouter.New(operators, ctxMgr, health.Server(), logger.Component("grpc")).Register(),
		fmt.Sprintf(":%s", cfg.GRPC.Port),
	)

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting ops server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start ops server", "error", err)
		}
	}(ops)

	logAppVersion()

	verifications := pending.NewRegistry[model.VerificationSession]()
	roleRequests := pending.NewRegistry[model.RoleRequestSession]()

	var b *bot.Bot
	if cfg.Discord.Token == "" {
		logger.Warn("DISCORD_TOKEN is empty, running the ops endpoint only")
	} else {
		b, err = newBot(ctx, cfg, guildCfg, db, archive, verifications, roleRequests, health, logger)
		if err != nil {
			logger.Fatal("failed to start bot", "error", err)
		}
	}

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if b != nil {
		if err := b.Stop(shutdownCtx); err != nil {
			logger.Error("error during gateway shutdown", "error", err)
		}
	}
	verifications.Close()
	roleRequests.Close()

	if err := ops.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", ops.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func newBot(
	ctx context.Context,
	cfg *config.Config,
	guildCfg *config.Guild,
	db *postgres.Connection,
	archive model.Storage,
	verifications *pending.Registry[model.VerificationSession],
	roleRequestSessions *pending.Registry[model.RoleRequestSession],
	health model.HealthReporter,
	logger *logger.Logger,
) (*bot.Bot, error) {
	session, err := bot.NewSession(cfg.Discord.Token)
	if err != nil {
		return nil, err
	}

	members := guild.New(session, cfg.Discord.GuildID, logger.Component("guild"))
	capabilities := service.NewRoleCapabilities(guildCfg.Capabilities())
	identity := roblox.NewClient(roblox.Options{
		UsersURL:          cfg.Roblox.UsersURL,
		ThumbnailsURL:     cfg.Roblox.ThumbnailsURL,
		FriendsURL:        cfg.Roblox.FriendsURL,
		RequestsPerSecond: cfg.Roblox.RequestsPerSecond,
		Burst:             cfg.Roblox.Burst,
		Timeout:           cfg.Roblox.Timeout,
	}, logger.Component("roblox"))
	evidence := service.NewEvidence(archive, &http.Client{Timeout: cfg.Roblox.Timeout}, logger.Component("evidence"))

	verification := service.NewVerification(
		verifications,
		greeting.NewSet(cfg.Session.GreetingTargets),
		identity,
		members,
		capabilities,
		service.VerificationOptions{
			ChannelID:        guildCfg.Channels.Verify,
			CitizenRoleID:    guildCfg.Roles.Citizen,
			UnverifiedRoleID: guildCfg.Roles.Unverified,
			TTL:              cfg.Session.VerificationTTL,
		},
		logger.Component("verification"),
	)
	roleRequests := service.NewRoleRequests(
		roleRequestSessions,
		members,
		capabilities,
		evidence,
		service.RoleRequestOptions{
			Roles:       guildCfg.RequestableRoles,
			TTL:         cfg.Session.RoleRequestTTL,
			RejectLease: cfg.Session.RejectLease,
		},
		logger.Component("role_requests"),
	)
	records := service.NewRecords(
		postgres.NewRecordRepository(db.DB),
		postgres.NewAuditRepository(db.DB),
		identity,
		capabilities,
		evidence,
		logger.Component("records"),
	)
	ratings := service.NewRatings(
		postgres.NewRatingRepository(db.DB),
		members,
		capabilities,
		guildCfg.Channels.RateStaff,
		logger.Component("ratings"),
	)
	moderation := service.NewModeration(
		members,
		capabilities,
		service.ModerationOptions{
			ModeratorRoleID: guildCfg.Roles.Moderator,
			ApplicantRoleID: guildCfg.Roles.StaffApplicant,
			TechnicalRoles:  guildCfg.TechnicalRoles,
		},
		logger.Component("moderation"),
	)
	profiles := service.NewProfiles(identity, logger.Component("profiles"))

	hl := logger.Component("discord")
	r := discordRouter.New(discordRouter.Handlers{
		Verification: handler.NewVerification(verification, guildCfg, hl),
		RoleRequest:  handler.NewRoleRequest(roleRequests, guildCfg, hl),
		Records:      handler.NewRecords(records, guildCfg, hl),
		Staff:        handler.NewStaff(ratings, moderation, guildCfg, hl),
		Profile:      handler.NewProfile(profiles, guildCfg, hl),
		Menu:         handler.NewMenu(moderation, guildCfg, cfg.Discord.CommandPrefix, hl),
	}, hl)

	b := bot.New(session, r, bot.Options{
		GuildID:          cfg.Discord.GuildID,
		Commands:         discordRouter.Commands(guildCfg),
		Presence:         guildCfg.Presence,
		PresenceInterval: cfg.Discord.PresenceInterval,
	}, health, logger.Component("bot"))

	if err := b.Start(ctx); err != nil {
		return nil, err
	}

	return b, nil
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
