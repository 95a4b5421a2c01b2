package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"property-listings-api/internal/observability"
)

func main() {
	var databaseURL string
	var migrationsPath string
	var command string

	flag.StringVar(&databaseURL, "database", "", "Database URL (defaults to DATABASE_URL)")
	flag.StringVar(&migrationsPath, "path", "migrations", "Path to migrations directory")
	flag.StringVar(&command, "command", "up", "Migration command: up, down, version, force")
	flag.Parse()

	if err := observability.InitLogger(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer observability.SyncLogger()
	log := observability.Logger

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		log.Fatal("database URL is required: use -database or DATABASE_URL")
	}

	m, err := migrate.New("file://"+migrationsPath, databaseURL)
	if err != nil {
		log.Fatal("create migration instance", zap.Error(err))
	}
	defer m.Close()

	log = log.With(zap.String("command", command), zap.String("path", migrationsPath))

	switch command {
	case "up":
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("database is up to date")
			return
		}
		if err != nil {
			log.Fatal("run migrations", zap.Error(err))
		}
		log.Info("migrations applied")

	case "down":
		err = m.Down()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal("roll back migrations", zap.Error(err))
		}
		log.Info("migrations rolled back")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("read version", zap.Error(err))
		}
		log.Info("current version", zap.Uint("version", version), zap.Bool("dirty", dirty))

	case "force":
		if flag.NArg() < 1 {
			log.Fatal("force requires a version number: -command force <version>")
		}
		version, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			log.Fatal("invalid version number", zap.String("arg", flag.Arg(0)), zap.Error(err))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("force version", zap.Error(err))
		}
		log.Info("forced version", zap.Int("version", version))

	default:
		log.Fatal("unknown command (use: up, down, version, force)")
	}
}
