package router

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/argrp/rpbot/internal/api/grpc/middleware"
	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

const healthPrefix = "/grpc.health.v1.Health/"

// Router builds the ops gRPC server.
// Health checks are public; everything else needs an operator token.
type Router struct {
	tokenService   middleware.TokenService
	contextManager model.ContextManager
	health         healthpb.HealthServer
	logger         *logger.Logger
}

// New creates a new ops Router.
//
// Parameters:
//   - tokenService: resolves operators from bearer tokens
//   - contextManager: carries the operator through request context
//   - health: the health service reporting gateway state
//   - logger: the logger for request logging
func New(
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	health healthpb.HealthServer,
	logger *logger.Logger,
) *Router {
	return &Router{
		tokenService:   tokenService,
		contextManager: contextManager,
		health:         health,
		logger:         logger,
	}
}

func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	return !strings.HasPrefix(c.FullMethod(), healthPrefix)
}

// Register creates the gRPC server with logging and authentication interceptors
// and registers the health and reflection services.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger, r.contextManager)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
			logging.HandleGRPC,
		),
		grpc.ChainStreamInterceptor(
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
			logging.HandleStream,
		),
	)
	healthpb.RegisterHealthServer(s, r.health)
	reflection.Register(s)

	return s
}
