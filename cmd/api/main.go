package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-pos/internal/api"
	common_api "go-pos/internal/common/api"
	"go-pos/internal/config"
	"go-pos/internal/database"
	"go-pos/internal/features/audit"
	"go-pos/internal/features/auth"
	"go-pos/internal/features/role"
	"go-pos/internal/features/user"
	"go-pos/internal/logger"
	"go-pos/internal/metrics"
	"go-pos/internal/middleware"
	"go-pos/internal/session"
	"go-pos/pkg/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// NewTokenService builds the token service from app config, picking the
// blacklist store the config asked for.
func NewTokenService(cfg *config.Config, rdb *database.RedisDB) *token.Service {
	var blacklist token.Blacklist
	if cfg.BlacklistStore == "redis" {
		blacklist = token.NewRedisBlacklist(rdb.Client)
	} else {
		blacklist = token.NewMemoryBlacklist()
	}

	return token.NewService(token.Config{
		AccessSecret:  []byte(cfg.AccessSecret),
		RefreshSecret: []byte(cfg.RefreshSecret),
		SecureCookies: cfg.IsProduction(),
	}, blacklist)
}

// NewAuthMiddleware wires the request gate from its collaborators. The
// skip-auth escape hatch only ever comes from config.
func NewAuthMiddleware(
	cfg *config.Config,
	tokens *token.Service,
	sessions session.Validator,
	users middleware.UserFinder,
	roles middleware.RoleService,
	auditSink middleware.AuditSink,
	m *metrics.Metrics,
	zapLog *zap.Logger,
) *middleware.Auth {
	return middleware.NewAuth(tokens, sessions, users, roles, auditSink, m, zapLog, cfg.SkipAuth)
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(lc fx.Lifecycle, roleRepo role.RoleRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := roleRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure role indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// SeedSystemRoles inserts the built-in role set on startup. Idempotent;
// already-present roles are left alone.
func SeedSystemRoles(lc fx.Lifecycle, roleService role.RoleService) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := roleService.SeedDefaults(ctx); err != nil {
					log.Printf("Failed to seed system roles: %v", err)
				}
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Databases
			database.NewDatabase,
			database.NewRedis,

			// Token + session plumbing
			NewTokenService,
			session.NewStore,
			metrics.NewMetrics,

			// Initialize Repository
			audit.NewAuditRepository,
			role.NewRoleRepository,
			user.NewUserRepository,

			// Initialize Services
			audit.NewAuditService,
			auth.NewAuthService,
			role.NewRoleService,

			// Interface Adapters to break circular dependencies and satisfy Fx
			func(s role.RoleService) middleware.RoleService { return s },
			func(r user.UserRepository) middleware.UserFinder { return r },
			func(r user.UserRepository) audit.UserFinder { return r },
			func(s audit.AuditService) middleware.AuditSink { return s },
			func(s *session.Store) session.Validator { return s },

			// Request gate
			NewAuthMiddleware,

			// Initialize Controller
			auth.NewAuthController,
			role.NewRoleController,
			user.NewUserController,
			audit.NewAuditController,

			// Initialize API Routes
			AsRoute(auth.NewAuthApi),
			AsRoute(role.NewRoleApi),
			AsRoute(user.NewUserApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(api.NewHealthApi),
			AsRoute(api.NewMetricsApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			InitializeIndexes,
			SeedSystemRoles,
		),
	)

	app.Run()
}
