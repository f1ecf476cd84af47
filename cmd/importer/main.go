package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"valentine-storefront/internal/config"
	"valentine-storefront/internal/db"
	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/importer"
	"valentine-storefront/internal/logger"
	productrepo "valentine-storefront/internal/repository/product"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to the product CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("importer", cfg.Development)
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

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("open file")
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, productrepo.NewDocstore(store, log), log)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	fmt.Printf("Imported %d products in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
