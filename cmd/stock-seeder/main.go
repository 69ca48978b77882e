package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	orderspostgres "github.com/figurestore/go-order-api/internal/domains/orders/adapters/persistence/postgres"
	"github.com/figurestore/go-order-api/internal/domains/orders/domain"
	platformpostgres "github.com/figurestore/go-order-api/internal/platform/postgres"
)

// Seeds the stock counters from STOCK_SEED, e.g. "triangle=10,square=5,circle=7".
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	seed, err := parseSeed(os.Getenv("STOCK_SEED"))
	if err != nil {
		log.Fatalf("invalid STOCK_SEED: %v", err)
	}
	if len(seed) == 0 {
		log.Fatal("STOCK_SEED not set; nothing to seed")
	}

	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot seed stock")
	}

	store := orderspostgres.NewInventoryStore(db)
	for kind, count := range seed {
		if err := store.SetCount(ctx, kind, count); err != nil {
			log.Fatalf("failed to seed %s: %v", kind, err)
		}
		log.Printf("seeded %s=%d", kind, count)
	}
	log.Printf("stock seed completed")
}

func parseSeed(raw string) (map[domain.Kind]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	seed := make(map[domain.Kind]int)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("entry %q must be kind=count", pair)
		}
		kind, err := domain.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		count, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("entry %q must carry a non-negative count", pair)
		}
		seed[kind] = count
	}
	return seed, nil
}
