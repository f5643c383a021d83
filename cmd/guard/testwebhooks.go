package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/slavayosome/seriously-ai-sub000/adapters/clock"
	"github.com/slavayosome/seriously-ai-sub000/adapters/idgen"
	adapterwebhook "github.com/slavayosome/seriously-ai-sub000/adapters/webhook"
	"github.com/slavayosome/seriously-ai-sub000/bootstrap"
	"github.com/slavayosome/seriously-ai-sub000/config"
	"github.com/slavayosome/seriously-ai-sub000/domain/webhook"
)

var testWebhooksCmd = &cobra.Command{
	Use:   "test-webhooks",
	Short: "Send a test event to configured alert webhooks",
	Long: `Send a signed test event to every alert webhook in the configuration.

Use this to verify endpoint URLs, secrets, and network reachability
before relying on alert delivery in production.

Examples:
  guard test-webhooks
  guard test-webhooks --config /etc/guard/config.yaml`,
	RunE: runTestWebhooks,
}

func init() {
	rootCmd.AddCommand(testWebhooksCmd)
}

func runTestWebhooks(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if len(cfg.Alerting.Webhooks) == 0 {
		fmt.Println("No alert webhooks configured")
		return nil
	}

	// Test deliveries go to every endpoint regardless of its event filter.
	endpoints := bootstrap.AlertEndpoints(cfg)
	for i := range endpoints {
		endpoints[i].Events = append(endpoints[i].Events, webhook.EventTest)
	}

	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	sender := adapterwebhook.NewSender(endpoints, clock.Real{}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	fmt.Printf("Sending test event to %d endpoint(s)...\n", len(endpoints))
	sender.Dispatch(ctx, webhook.Event{
		ID:        idgen.UUID{}.New(),
		Type:      webhook.EventTest,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": "test delivery from guard",
		},
	})
	fmt.Println("Done. Check the log output above for per-endpoint results.")
	return nil
}
