package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Only the settings the migrator needs, so it can run before the rest of the
// environment is provisioned.
type config struct {
	PostgresqlURL  string `env:"POSTGRESQL_URL,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
}

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	cfg := config{}
	if err := env.Parse(&cfg); err != nil {
		exit(err)
	}

	m, err := migrate.New(cfg.MigrationsPath, cfg.PostgresqlURL)
	if err != nil {
		exit(fmt.Errorf("cannot create migrate: %w", err))
	}
	defer m.Close()

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Println("No migrations to apply.")
		return
	}
	if err != nil {
		exit(fmt.Errorf("cannot migrate: %w", err))
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		exit(err)
	}
	fmt.Printf("Schema is at version %d (dirty: %t).\n", version, dirty)
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
