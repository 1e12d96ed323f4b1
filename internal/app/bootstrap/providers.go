package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/wolfman30/equilibra/internal/calendar"
	appconfig "github.com/wolfman30/equilibra/internal/config"
	"github.com/wolfman30/equilibra/internal/llm"
	"github.com/wolfman30/equilibra/internal/notify"
	"github.com/wolfman30/equilibra/internal/observability/metrics"
	"github.com/wolfman30/equilibra/internal/responses"
	"github.com/wolfman30/equilibra/pkg/logging"
)

var defaultModels = map[string][]string{
	"openai":  {"gpt-4o-mini", "gpt-4o", "gpt-3.5-turbo"},
	"gemini":  {"gemini-1.5-flash", "gemini-1.5-pro"},
	"bedrock": {"anthropic.claude-3-haiku-20240307-v1:0", "anthropic.claude-3-5-sonnet-20240620-v1:0"},
}

// NeedsAWS reports whether any configured provider talks to AWS.
func NeedsAWS(cfg *appconfig.Config) bool {
	return cfg.EmailProvider == "ses" || cfg.LLMProvider == "bedrock"
}

// BuildCalendar returns the appointment calendar.
func BuildCalendar(ctx context.Context, cfg *appconfig.Config, loc *time.Location, logger *logging.Logger) (calendar.Calendar, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.CalendarProvider {
	case "google":
		cal, err := calendar.NewGoogleCalendar(ctx, cfg.GoogleCredentials, cfg.GoogleCalendarID, loc)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: %w", err)
		}
		return cal, nil
	case "", "memory":
		logger.Warn("using in-memory calendar; bookings are lost on restart")
		return calendar.NewMemoryCalendar(), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown calendar provider %q", cfg.CalendarProvider)
	}
}

// BuildEmailSender returns the outbound mail transport. The stub sender only logs.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) (notify.EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.EmailProvider {
	case "sendgrid":
		sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: sendgrid requires SENDGRID_API_KEY")
		}
		return sender, nil
	case "ses":
		return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger), nil
	case "smtp":
		sender := notify.NewSMTPSender(notify.SMTPConfig{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			Username:  cfg.SMTPUser,
			Password:  cfg.SMTPPassword,
			FromEmail: cfg.EmailFromAddress,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sender == nil {
			return nil, fmt.Errorf("bootstrap: smtp requires SMTP_HOST, SMTP_USER and SMTP_PASSWORD")
		}
		return sender, nil
	case "", "stub":
		return notify.NewStubEmailSender(logger), nil
	default:
		return nil, fmt.Errorf("bootstrap: unknown email provider %q", cfg.EmailProvider)
	}
}

// BuildTextChain wires the text-generation fallback chain. It returns a nil
// chain when generation is disabled, and a close func that is always safe to call.
func BuildTextChain(ctx context.Context, cfg *appconfig.Config, awsCfg aws.Config, m *metrics.ChatMetrics, logger *logging.Logger) (responses.TextChain, func() error, error) {
	noop := func() error { return nil }
	if logger == nil {
		logger = logging.Default()
	}

	var (
		gen     llm.Generator
		closeFn = noop
	)
	switch cfg.LLMProvider {
	case "":
		logger.Info("text generation disabled; replies come from the catalog")
		return nil, noop, nil
	case "openai":
		g, err := llm.NewOpenAIGenerator(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: %w", err)
		}
		gen = g
	case "gemini":
		g, err := llm.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap: %w", err)
		}
		gen, closeFn = g, g.Close
	case "bedrock":
		gen = llm.NewBedrockGenerator(bedrockruntime.NewFromConfig(awsCfg))
	default:
		return nil, noop, fmt.Errorf("bootstrap: unknown llm provider %q", cfg.LLMProvider)
	}

	models := cfg.LLMModels
	if len(models) == 0 {
		models = defaultModels[cfg.LLMProvider]
	}
	chain := llm.NewModelChain(gen, models, cfg.LLMTimeout, logger.Component("llm")).WithMetrics(m)
	logger.Info("text generation enabled", "provider", cfg.LLMProvider, "models", chain.Models())
	return chain, closeFn, nil
}
