// Command report estimates and delivers telemetry for a single AI
// interaction from the command line. It exercises the same estimator
// and reporter the chat application embeds, which makes it useful for
// smoke-testing a monitoring deployment.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/apptly/aimetrics/config"
	"github.com/apptly/aimetrics/estimate"
	"github.com/apptly/aimetrics/logging"
	"github.com/apptly/aimetrics/models"
	"github.com/apptly/aimetrics/reporter"
	"go.uber.org/zap"
)

func main() {
	var (
		businessID     = flag.String("business-id", "", "business identifier (required)")
		sessionID      = flag.String("session-id", "", "session identifier (required)")
		conversationID = flag.String("conversation-id", "", "conversation identifier")
		systemPrompt   = flag.String("system-prompt", "", "system prompt text for token estimation")
		userMessage    = flag.String("user-message", "", "user message text")
		aiResponse     = flag.String("ai-response", "", "AI response text")
		responseTimeMs = flag.Int("response-time-ms", 0, "response latency in milliseconds")
		intent         = flag.String("intent", "", "detected intent")
		model          = flag.String("model", "", "model name (default "+models.DefaultModelName+")")
		responseType   = flag.String("response-type", "text", "response type label")
		appointment    = flag.Bool("appointment-requested", false, "the user asked for an appointment")
		handoff        = flag.Bool("human-handoff", false, "the user asked for a human")
	)
	flag.Parse()

	if *businessID == "" || *sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: report -business-id <id> -session-id <id> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx := context.Background()

	cfg, err := config.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	usage := estimate.TokenUsageFor(*systemPrompt, *userMessage, *aiResponse)
	cost := estimate.APICostAt(usage.Total, cfg.Pricing.PricePerMillionTokens)

	metric := &models.AIMetric{
		BusinessID:            *businessID,
		SessionID:             *sessionID,
		ConversationID:        *conversationID,
		ResponseTimeMs:        *responseTimeMs,
		TokensUsed:            usage.Total,
		APICostUSD:            cost,
		ModelName:             *model,
		IntentDetected:        *intent,
		AppointmentRequested:  *appointment,
		HumanHandoffRequested: *handoff,
		UserMessageLength:     len(*userMessage),
		AIResponseLength:      len(*aiResponse),
		ResponseType:          *responseType,
	}

	logger.Info("delivering metrics record",
		zap.String("business_id", metric.BusinessID),
		zap.Int("tokens_used", metric.TokensUsed),
		zap.Float64("api_cost_usd", metric.APICostUSD),
		zap.String("target", cfg.Reporter.BaseURL),
	)

	// The CLI has no database of its own; delivery goes straight to
	// the monitoring service. Failures are logged, never fatal.
	r := reporter.New(nil, cfg.Reporter, logger)
	r.Report(ctx, metric)

	fmt.Printf("tokens=%d (system=%d user=%d response=%d) cost_usd=%.6f\n",
		usage.Total, usage.System, usage.User, usage.Response, cost)
}
