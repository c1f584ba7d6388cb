package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go-crm-assistant/internal/config"
	"go-crm-assistant/internal/features/activity"
	"go-crm-assistant/internal/features/assistant"
	"go-crm-assistant/internal/features/automation"
	"go-crm-assistant/internal/features/snapshot"
	"go-crm-assistant/internal/logger"
	"go-crm-assistant/internal/metrics"
	"go-crm-assistant/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var storeDriver string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assistantctl",
	Short: "Talk to the CRM assistant and its automation rules from a terminal",
	Long: `assistantctl runs the assistant's command interpreter and automation
engine against the configured store, using the same environment as the API server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeDriver, "store", "", "override STORE_DRIVER (mongo or memory)")

	rootCmd.AddCommand(interpretCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(rulesCmd)
}

// services holds what the subcommands need from the object graph
type services struct {
	Assistant  assistant.AssistantService
	Automation automation.AutomationService
}

// withServices builds the object graph, runs fn and shuts everything down
func withServices(ctx context.Context, fn func(services) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if storeDriver != "" {
		cfg.StoreDriver = storeDriver
	}

	var svc services
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(
			logger.NewLogger,
			store.New,
			metrics.New,
			logger.NewActivityWriter,
			snapshot.NewFetcher,

			func(w *logger.ActivityWriter) activity.Appender { return w },
			func(f *snapshot.Fetcher) automation.SnapshotSource { return f },
			func(e *automation.ActionExecutorImpl) automation.ActionExecutor { return e },
			func() []assistant.IntentDefinition { return assistant.DefaultIntents() },
			func(cfg *config.Config) (automation.RuleRegistry, error) {
				rules, err := automation.LoadRules(cfg.AutomationRules)
				if err != nil {
					return nil, err
				}
				return automation.NewRuleRegistry(rules)
			},

			activity.NewActivityService,
			assistant.NewClassifier,
			assistant.NewExecutor,
			assistant.NewFallback,
			assistant.NewAssistantService,
			automation.NewActionExecutor,
			automation.NewEngine,
			automation.NewAutomationService,
		),
		fx.Invoke(func(lc fx.Lifecycle, w *logger.ActivityWriter) {
			lc.Append(fx.Hook{OnStop: func(context.Context) error {
				w.Close()
				return nil
			}})
		}),
		fx.Populate(&svc.Assistant, &svc.Automation),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(svc)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
