// Command seed-db loads the product catalog into PostgreSQL and optionally
// provisions a demo session so the storefront can be exercised right away.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/endulzarte/patisserie-api/internal/domain/session"
	"github.com/endulzarte/patisserie-api/internal/handler"
	"github.com/endulzarte/patisserie-api/internal/repository"
)

const upsertConcurrency = 4

const upsertProductSQL = `INSERT INTO products (name, description, price, stock, category, image_url)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (name) DO UPDATE
	SET description = EXCLUDED.description,
	    price       = EXCLUDED.price,
	    stock       = EXCLUDED.stock,
	    category    = EXCLUDED.category,
	    image_url   = EXCLUDED.image_url`

type productJSON struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		sessionToken  string
		sessionUser   string
		sessionPepper string
		sessionTTL    time.Duration
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file (.gz supported)")
	flag.StringVar(&sessionToken, "session-token", "", "demo session token to seed (or PASTRY_SEED_SESSION_TOKEN env)")
	flag.StringVar(&sessionUser, "session-user", "demo-user", "user id for the demo session")
	flag.StringVar(&sessionPepper, "session-pepper", "", "HMAC pepper for session token hashing (or PASTRY_SESSION_PEPPER env)")
	flag.DurationVar(&sessionTTL, "session-ttl", 30*24*time.Hour, "demo session lifetime")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if sessionToken == "" {
		sessionToken = os.Getenv("PASTRY_SEED_SESSION_TOKEN")
	}
	if sessionPepper == "" {
		sessionPepper = os.Getenv("PASTRY_SESSION_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, sessionToken, sessionUser, sessionPepper, sessionTTL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, token, user, pepper string, ttl time.Duration) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedProducts(ctx, pool, productsFile); err != nil {
		return errors.Wrap(err, "seed products")
	}

	if token != "" {
		if err := seedSession(ctx, pool, token, user, pepper, ttl); err != nil {
			return errors.Wrap(err, "seed session")
		}
	}

	return nil
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	products, err := readProducts(productsFile)
	if err != nil {
		return err
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(upsertConcurrency)
	for _, p := range products {
		g.Go(func() error {
			_, err := pool.Exec(ctx, upsertProductSQL,
				p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL,
			)
			if err != nil {
				return errors.Wrapf(err, "upsert product %q", p.Name)
			}
			slog.Info("upserted product", slog.String("name", p.Name), slog.String("price", p.Price.StringFixed(2)))
			return nil
		})
	}
	return g.Wait()
}

func readProducts(path string) ([]productJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open products file")
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip stream")
		}
		defer gz.Close()
		r = gz
	}

	var products []productJSON
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}
	return products, nil
}

func seedSession(ctx context.Context, pool *pgxpool.Pool, token, user, pepper string, ttl time.Duration) error {
	slog.Info("seeding demo session", slog.String("user", user))

	sessions := repository.NewSessionRepository(pool)
	now := time.Now()

	return sessions.Create(ctx, &session.Session{
		TokenHash: handler.HashToken([]byte(pepper), token),
		UserID:    user,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
}
