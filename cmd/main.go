package main

import (
	"context"
	"log/slog"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"innovators-bot/handler"
	"innovators-bot/internal/company"
	"innovators-bot/internal/integrations/openai"
	"innovators-bot/internal/integrations/paramstore"
	"innovators-bot/internal/integrations/slackapi"
	"innovators-bot/internal/repository"
	"innovators-bot/internal/usecase"
)

func main() {
	ctx := context.Background()

	// Local development convenience; the deployed function gets its
	// environment from the function configuration.
	_ = godotenv.Load()

	// ---- Configuration (read only here) ----
	stateTable := mustEnv("STATE_TABLE")
	dataTable := mustEnv("DATA_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	adminUserID := mustEnv("ADMIN_USER_ID")
	channelID := os.Getenv("SLACK_CHANNEL_ID")
	backend := envDefault("SESSION_BACKEND", "dynamodb")
	model := envDefault("OPENAI_MODEL", "gpt-4o-mini")
	privateMode := envBool("PRIVATE_MODE", false)
	allowedUsers := splitCSV(os.Getenv("ALLOWED_USERS"))
	cronSecret := os.Getenv("CRON_SECRET")
	adminSecret := os.Getenv("ADMIN_SECRET")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	params, err := paramstore.NewCached(ssmClient)
	if err != nil {
		slog.Error("failed to create parameter cache", "err", err)
		os.Exit(1)
	}

	dynamoClient := awsdynamodb.NewFromConfig(cfg)

	var sessions usecase.SessionStore
	var dedup handler.EventDedup
	switch backend {
	case "memory":
		sessions = repository.NewMemorySessions()
		dedup = repository.NewMemoryDedup()
	default:
		s, err := repository.NewSessions(dynamoClient, stateTable)
		if err != nil {
			slog.Error("failed to create session store", "err", err)
			os.Exit(1)
		}
		d, err := repository.NewDedup(dynamoClient, stateTable)
		if err != nil {
			slog.Error("failed to create dedup store", "err", err)
			os.Exit(1)
		}
		sessions, dedup = s, d
	}

	records, err := repository.NewRecords(dynamoClient, dataTable)
	if err != nil {
		slog.Error("failed to create records client", "err", err)
		os.Exit(1)
	}

	companyCtx := company.Default()

	gen, err := openai.NewClient(params, paramPrefix, companyCtx, records, openai.WithModel(model))
	if err != nil {
		slog.Error("failed to create generation client", "err", err)
		os.Exit(1)
	}

	msgr, err := slackapi.NewClient(params, paramPrefix, channelID)
	if err != nil {
		slog.Error("failed to create Slack client", "err", err)
		os.Exit(1)
	}

	signingSecret, err := params.GetParameter(ctx, strings.TrimRight(paramPrefix, "/")+"/slack-signing-secret")
	if err != nil {
		slog.Error("failed to fetch signing secret", "err", err)
		os.Exit(1)
	}
	verifier := slackapi.NewVerifier(signingSecret)

	// ---- Use cases ----
	ucCfg := usecase.Config{
		AdminUserID:  adminUserID,
		PrivateMode:  privateMode,
		AllowedUsers: allowedUsers,
	}
	router, err := usecase.NewRouter(sessions, msgr, gen, records, companyCtx, ucCfg, slog.Default())
	if err != nil {
		slog.Error("failed to create router", "err", err)
		os.Exit(1)
	}
	dispatcher, err := usecase.NewDispatcher(router, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		slog.Error("failed to create dispatcher", "err", err)
		os.Exit(1)
	}
	reminder, err := usecase.NewReminderService(records, msgr, adminUserID, slog.Default())
	if err != nil {
		slog.Error("failed to create reminder service", "err", err)
		os.Exit(1)
	}
	tips, err := usecase.NewTipService(gen, msgr)
	if err != nil {
		slog.Error("failed to create tip service", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(router, dispatcher, verifier, dedup, msgr, reminder, tips, handler.Config{
		CronSecret:  cronSecret,
		AdminSecret: adminSecret,
	})
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitCSV(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
