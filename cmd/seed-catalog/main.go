// Command seed-catalog loads catalog export files into PostgreSQL.
//
//	seed-catalog -database-url postgres://... db/seed/catalog.json more.json.gz
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-sku/internal/catalogfile"
	"github.com/xenking/kart-sku/internal/storage/postgres"
)

func main() {
	var databaseURL string

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	files := flag.Args()
	if len(files) == 0 {
		files = []string{"db/seed/catalog.json"}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, files); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string, files []string) error {
	slog.Info("reading catalog files", slog.Int("files", len(files)))

	catalog, err := catalogfile.Load(ctx, files)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}
	for id, n := range catalog.Duplicates {
		slog.Warn("duplicate product id, keeping first occurrence",
			slog.String("id", id),
			slog.Int("occurrences", n),
		)
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	writer := postgres.NewCatalogWriter(pool)
	for i := range catalog.Products {
		p := &catalog.Products[i]
		if err := writer.Upsert(ctx, p); err != nil {
			return err
		}
		slog.Info("upserted product",
			slog.String("id", p.ID),
			slog.String("name", p.Name),
			slog.Int("dimensions", len(p.Dimensions)),
			slog.Int("variants", len(p.Variants)),
			slog.Int("specs", len(p.Specs)),
		)
	}

	return nil
}
