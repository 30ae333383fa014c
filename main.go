package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	turnx "github.com/wearly/concierge/agent/agents/turn"
	contractx "github.com/wearly/concierge/agent/contract"
	replyx "github.com/wearly/concierge/agent/reply"
	routerx "github.com/wearly/concierge/agent/router"
	sessionx "github.com/wearly/concierge/agent/session"
	taskx "github.com/wearly/concierge/agent/task"
	cartx "github.com/wearly/concierge/commerce/cart"
	catalogx "github.com/wearly/concierge/commerce/catalog"
	loyaltyx "github.com/wearly/concierge/commerce/loyalty"
	orderx "github.com/wearly/concierge/commerce/order"
	recommendx "github.com/wearly/concierge/commerce/recommend"
	configx "github.com/wearly/concierge/pkg/config"
	llmx "github.com/wearly/concierge/pkg/llm"
	_ "github.com/wearly/concierge/pkg/logger/autoload"
	paypalx "github.com/wearly/concierge/pkg/paypal"
)

type AppConfig struct {
	CustomerID string `envconfig:"CUSTOMER_ID" default:"guest"`
	Channel    string `envconfig:"CHANNEL" default:"chat"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	llmClient := llmx.MustNew(*llmCfg)

	redisCfg := configx.MustNew[sessionx.RedisConfig]("REDIS")
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	store := sessionx.NewRedisStore(redisClient, sessionx.WithTTL(redisCfg.TTL))

	repo := newCatalogRepository()

	carts := cartx.NewService(repo)
	orders := orderx.NewService(orderOptions()...)
	loyalty := loyaltyx.NewService(nil)
	recs := recommendx.NewService(repo)

	processor, err := taskx.NewProcessor(recs, carts, orders, loyalty)
	if err != nil {
		log.Fatal().Err(err).Msg("task processor init failed")
	}

	orchestrator, err := turnx.New(store, routerx.New(llmClient), processor, replyx.NewComposer(llmClient), turnx.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("turn orchestrator init failed")
	}

	runREPL(orchestrator, appCfg.CustomerID, appCfg.Channel)
}

// newCatalogRepository prefers Postgres when CATALOG_DSN is set, otherwise
// the seeded in-memory assortment.
func newCatalogRepository() catalogx.Repository {
	catalogCfg, err := configx.New[catalogx.Config]("CATALOG")
	if err != nil || strings.TrimSpace(catalogCfg.DSN) == "" {
		log.Info().Msg("catalog dsn not configured, using in-memory catalog")
		return catalogx.NewMemoryRepository(catalogx.DefaultCatalog())
	}
	log.Info().Msg("catalog backed by postgres")
	return catalogx.NewPostgresRepository(catalogx.NewDB(*catalogCfg))
}

// orderOptions wires the external payment gateway when PAYPAL_* is set;
// without it ProcessPayment runs the offline simulation.
func orderOptions() []orderx.Option {
	paypalCfg, err := configx.New[paypalx.Config]("PAYPAL")
	if err != nil {
		log.Info().Msg("paypal gateway not configured, simulating captures")
		return nil
	}
	gateway, err := paypalx.NewClient(*paypalCfg)
	if err != nil {
		log.Warn().Err(err).Msg("paypal config rejected, simulating captures")
		return nil
	}
	return []orderx.Option{orderx.WithGateway(gateway)}
}

func runREPL(orchestrator *turnx.Orchestrator, customerID, channel string) {
	sessionID := uuid.NewString()
	log.Info().Str("session_id", sessionID).Str("customer_id", customerID).Msg("concierge ready")

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			fmt.Print("> ")
			continue
		}
		if message == "exit" || message == "quit" {
			return
		}

		result, err := orchestrator.HandleTurn(context.Background(), contractx.TurnRequest{
			SessionID:  sessionID,
			CustomerID: customerID,
			Channel:    channel,
			Message:    message,
		})
		if err != nil {
			log.Error().Err(err).Msg("turn failed")
			fmt.Print("> ")
			continue
		}

		fmt.Println(result.Reply)
		fmt.Print("> ")
	}
}
