package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"reelgen/internal/infra"
	"reelgen/migrations"
)

func main() {
	var (
		down  bool
		steps int
		show  bool
	)
	flag.BoolVar(&down, "down", false, "roll back instead of applying migrations")
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply or roll back (0 = all)")
	flag.BoolVar(&show, "version", false, "print the current schema version and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "migrate").Logger()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		exitWithError(fmt.Errorf("open database: %w", err))
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		exitWithError(fmt.Errorf("create postgres driver: %w", err))
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		exitWithError(fmt.Errorf("open embedded migrations: %w", err))
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		exitWithError(fmt.Errorf("create migrator: %w", err))
	}
	defer m.Close()

	if show {
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			exitWithError(err)
		}
		fmt.Printf("version %d (dirty=%t)\n", version, dirty)
		return
	}

	switch {
	case steps != 0 && down:
		err = m.Steps(-steps)
	case steps != 0:
		err = m.Steps(steps)
	case down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info().Msg("schema already up to date")
		return
	}
	if err != nil {
		exitWithError(err)
	}
	version, _, _ := m.Version()
	logger.Info().Uint("version", version).Bool("down", down).Msg("migrations applied")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
