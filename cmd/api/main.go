package main

import (
	"context"
	"fmt"
	"log"
	"time"

	common_api "go-docmap/internal/common/api"
	"go-docmap/internal/config"
	"go-docmap/internal/database"
	"go-docmap/internal/features/document"
	"go-docmap/internal/features/export"
	"go-docmap/internal/features/instance"
	"go-docmap/internal/features/lookupsync"
	"go-docmap/internal/features/mapping"
	"go-docmap/internal/features/matching"
	"go-docmap/internal/features/system"
	"go-docmap/internal/features/template"
	"go-docmap/internal/logger"
	"go-docmap/internal/middleware"
	"go-docmap/pkg/utils"

	_ "go-docmap/docs" // Import swagger docs

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

// AsRoute tags a constructor so Fx adds its result to the "routes" group
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the "routes" group and calls Setup() on each one
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	log.Printf("Registering %d routes...\n", len(routes))
	for _, route := range routes {
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer starts Fiber in a goroutine and shuts it down on app exit
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
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

// InitializeIndexes ensures the row store's unique key index exists
func InitializeIndexes(lc fx.Lifecycle, rowRepo instance.RowRepository) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := rowRepo.EnsureIndexes(ctx); err != nil {
					log.Printf("Failed to ensure row indexes: %v", err)
				}
			}()
			return nil
		},
	})
}

// @title           Document Mapping API
// @version         1.0
// @description     Field mapping resolution and matching engine for freight document data.

// @host            localhost:8000
// @BasePath        /
func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database
			database.NewDatabase,

			// Initialize Repository
			template.NewTemplateRepository,
			mapping.NewMappingConfigRepository,
			document.NewDocumentRepository,
			instance.NewInstanceRepository,
			instance.NewRowRepository,
			lookupsync.NewLookupTableRepository,

			mapping.NewResolver,
			matching.NewProgressHub,

			template.NewTemplateService,
			mapping.NewMappingService,
			instance.NewInstanceService,
			lookupsync.NewLookupService,
			matching.NewMatchService,
			export.NewExportService,

			// Interface adapters to satisfy Fx
			func(s lookupsync.LookupService) matching.LookupTableSource { return s },
			func(repo instance.InstanceRepository, cfg *config.Config, log *zap.Logger) *instance.Watchdog {
				timeout := time.Duration(cfg.ProcessingTimeoutMin) * time.Minute
				return instance.NewWatchdog(repo, timeout, log)
			},

			// Initialize Controller
			template.NewTemplateController,
			mapping.NewMappingController,
			document.NewDocumentController,
			instance.NewInstanceController,
			matching.NewMatchController,
			export.NewExportController,
			lookupsync.NewLookupController,

			// Initialize API Routes
			AsRoute(template.NewTemplateApi),
			AsRoute(mapping.NewMappingApi),
			AsRoute(document.NewDocumentApi),
			AsRoute(instance.NewInstanceApi),
			AsRoute(matching.NewMatchApi),
			AsRoute(export.NewExportApi),
			AsRoute(lookupsync.NewLookupApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewSwaggerApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(lc fx.Lifecycle, lookupService lookupsync.LookupService) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return lookupService.StartScheduler()
					},
					OnStop: func(ctx context.Context) error {
						lookupService.StopScheduler()
						return nil
					},
				})
			},
			func(lc fx.Lifecycle, watchdog *instance.Watchdog) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						return watchdog.Start()
					},
					OnStop: func(ctx context.Context) error {
						watchdog.Stop()
						return nil
					},
				})
			},
			InitializeIndexes,
		),
	)

	app.Run()
}
