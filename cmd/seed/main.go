package main

import (
	"context"
	"log"
	"time"

	common_models "go-pos/internal/common/models"
	"go-pos/internal/config"
	"go-pos/internal/database"
	"go-pos/internal/features/audit"
	"go-pos/internal/features/permission"
	"go-pos/internal/features/role"
	"go-pos/internal/features/user"
	"go-pos/internal/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Seed runs the database seeding
func Seed(
	lc fx.Lifecycle,
	roleService role.RoleService,
	roleRepo role.RoleRepository,
	userRepo user.UserRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				logger.Info("🌱 Starting Database Seeding...")

				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				defer cancel()

				if err := roleRepo.EnsureIndexes(ctx); err != nil {
					logger.Error("Failed to ensure role indexes", zap.Error(err))
					return
				}

				// 1. Seed system roles
				if err := roleService.SeedDefaults(ctx); err != nil {
					logger.Error("Failed to seed system roles", zap.Error(err))
					return
				}
				logger.Info("System roles seeded", zap.Strings("roles", permission.TemplateNames))

				// 2. Seed admin user
				adminUsername := "admin"
				if _, err := userRepo.FindByUsername(ctx, adminUsername); err == nil {
					logger.Info("Admin user exists, skipping", zap.String("username", adminUsername))
					return
				}

				adminRole, err := roleRepo.FindByName(ctx, permission.TemplateAdministrator)
				if err != nil {
					logger.Error("Administrator role not found", zap.Error(err))
					return
				}

				hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
				if err != nil {
					logger.Error("Failed to hash admin password", zap.Error(err))
					return
				}

				now := time.Now()
				adminUser := common_models.User{
					ID:        primitive.NewObjectID(),
					Username:  adminUsername,
					Password:  string(hashed),
					Email:     "admin@example.com",
					Roles:     []primitive.ObjectID{adminRole.ID},
					IsActive:  true,
					CreatedAt: now,
					UpdatedAt: now,
				}
				if err := userRepo.Create(ctx, &adminUser); err != nil {
					logger.Error("Failed to create admin user", zap.Error(err))
					return
				}
				logger.Info("Admin user created", zap.String("username", adminUsername))

				logger.Info("✅ Seeding complete")
			}()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			role.NewRoleRepository,
			role.NewRoleService,
			user.NewUserRepository,
			fx.Annotate(
				user.NewUserRepository,
				fx.As(new(audit.UserFinder)),
			),
			audit.NewAuditRepository,
			audit.NewAuditService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal(err)
	}

	<-app.Done()
}
