package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-crm-assistant/internal/common/api"
	"go-crm-assistant/internal/config"
	"go-crm-assistant/internal/features/activity"
	"go-crm-assistant/internal/features/assistant"
	"go-crm-assistant/internal/features/automation"
	"go-crm-assistant/internal/features/snapshot"
	"go-crm-assistant/internal/features/system"
	"go-crm-assistant/internal/logger"
	"go-crm-assistant/internal/metrics"
	"go-crm-assistant/internal/middleware"
	"go-crm-assistant/internal/store"
	"go-crm-assistant/pkg/utils"

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

// AsRoute tags the constructor so Fx adds it to the "routes" group
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes calls Setup() on every route in the "routes" group
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route, logger *zap.Logger) {
	logger.Info("Registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		logger.Debug("Setting up route", zap.String("route", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`, ``),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits
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

// NewRuleRegistry seeds the registry from AUTOMATION_RULES_FILE or the built-in rules
func NewRuleRegistry(cfg *config.Config) (automation.RuleRegistry, error) {
	rules, err := automation.LoadRules(cfg.AutomationRules)
	if err != nil {
		return nil, err
	}
	return automation.NewRuleRegistry(rules)
}

func NewScheduler(engine *automation.Engine, cfg *config.Config, logger *zap.Logger) *automation.Scheduler {
	return automation.NewScheduler(engine, cfg.AutomationInterval, logger)
}

// StartAutomation runs the scheduler for the app's lifetime when enabled
func StartAutomation(lc fx.Lifecycle, scheduler *automation.Scheduler, cfg *config.Config, logger *zap.Logger) {
	if !cfg.AutomationEnabled {
		logger.Info("Automation scheduler disabled")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return scheduler.Start()
		},
		OnStop: func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		},
	})
}

// FlushActivity drains queued activity entries on shutdown
func FlushActivity(lc fx.Lifecycle, writer *logger.ActivityWriter) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			writer.Close()
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

			// Initialize Store & Metrics
			store.New,
			metrics.New,
			logger.NewActivityWriter,
			snapshot.NewFetcher,

			// Interface Adapters
			func(w *logger.ActivityWriter) activity.Appender { return w },
			func(f *snapshot.Fetcher) automation.SnapshotSource { return f },
			func(e *automation.ActionExecutorImpl) automation.ActionExecutor { return e },
			func() []assistant.IntentDefinition { return assistant.DefaultIntents() },

			// Initialize Services
			activity.NewActivityService,
			assistant.NewClassifier,
			assistant.NewExecutor,
			assistant.NewFallback,
			assistant.NewAssistantService,
			NewRuleRegistry,
			automation.NewActionExecutor,
			automation.NewEngine,
			NewScheduler,
			automation.NewAutomationService,

			// Initialize Controller
			activity.NewActivityController,
			assistant.NewAssistantController,
			assistant.NewSocketController,
			automation.NewAutomationController,
			system.NewDebugController,

			// Initialize API Routes
			AsRoute(activity.NewActivityApi),
			AsRoute(assistant.NewAssistantApi),
			AsRoute(automation.NewAutomationApi),
			AsRoute(system.NewDebugApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			// Stop hooks run in reverse, so the writer drains after the server and scheduler
			FlushActivity,
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			StartAutomation,
		),
	)

	app.Run()
}
