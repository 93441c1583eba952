// Command botctl runs one-off operator tasks against the bot's database and
// ops endpoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/argrp/rpbot/internal/config"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/repository/postgres"
	"github.com/argrp/rpbot/internal/service"
	"github.com/argrp/rpbot/internal/token"
)

// Options are the global flags shared by every command.
type Options struct {
	Verbose bool `short:"v" long:"verbose" description:"log at debug level"`
}

var opts Options

type importRatingsCommand struct {
	File string `short:"f" long:"file" required:"true" description:"YAML file with the ratings to import"`
}

func (c *importRatingsCommand) Execute(_ []string) error {
	ratings, err := readRatings(c.File)
	if err != nil {
		return err
	}

	cfg, lg, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := service.NewRatings(postgres.NewRatingRepository(db.DB), nil, nil, "", lg)
	result, err := svc.Import(ctx, ratings)
	if err != nil {
		return fmt.Errorf("import stopped after %d rows: %w", result.Imported, err)
	}

	fmt.Printf("imported %d, skipped %d already present\n", result.Imported, result.Skipped)
	return nil
}

type issueTokenCommand struct {
	Operator string `short:"o" long:"operator" required:"true" description:"operator name embedded in the token"`
}

func (c *issueTokenCommand) Execute(_ []string) error {
	cfg, lg, err := setup()
	if err != nil {
		return err
	}

	operators := service.NewOperators(token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL), lg)
	tok, err := operators.Issue(c.Operator)
	if err != nil {
		return err
	}

	fmt.Println(tok)
	return nil
}

func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, nil, err
	}
	if opts.Verbose {
		cfg.LogLevel = -4
	}
	return cfg, logger.New(cfg.LogLevel), nil
}

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.Default)
	_, _ = parser.AddCommand("import-ratings",
		"Import staff ratings",
		"Stores every rating of the file that is not already present and resynchronises the id sequence.",
		&importRatingsCommand{})
	_, _ = parser.AddCommand("issue-token",
		"Issue an ops endpoint token",
		"Prints a signed operator token for the gRPC ops endpoint.",
		&issueTokenCommand{})
	return parser
}

func main() {
	if _, err := newParser().Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
