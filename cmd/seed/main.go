package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"valentine-storefront/internal/config"
	"valentine-storefront/internal/db"
	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/logger"
	productrepo "valentine-storefront/internal/repository/product"
	"valentine-storefront/internal/seed"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("seed", cfg.Development)

	ctx := context.Background()
	var pool *pgxpool.Pool
	if cfg.DocstoreBackend == docstore.BackendPostgres {
		pool, err = db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			log.Fatal().Err(err).Msg("connect db")
		}
		defer pool.Close()
	}

	store, err := docstore.Open(ctx, cfg.DocstoreBackend, pool, cfg.FirebaseProjectID, cfg.FirebaseCredentials, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open document store")
	}
	defer store.Close()

	if err := seed.Apply(ctx, productrepo.NewDocstore(store, log), log); err != nil {
		log.Fatal().Err(err).Msg("seed apply")
	}

	log.Info().Msg("seed applied")
}
