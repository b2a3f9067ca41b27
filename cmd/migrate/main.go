package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/AdamBeresnev/league-engine/internal/config"
	"github.com/AdamBeresnev/league-engine/internal/db"
	"github.com/golang-migrate/migrate/v4"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "migrate",
		Usage: "manage the league engine schema",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					return withMigrate(c, func(m *migrate.Migrate) error {
						if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
							return err
						}
						return printVersion(m)
					})
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
					&cli.BoolFlag{Name: "all", Usage: "roll back every migration"},
				},
				Action: func(c *cli.Context) error {
					return withMigrate(c, func(m *migrate.Migrate) error {
						var err error
						if c.Bool("all") {
							err = m.Down()
						} else {
							if c.Int("steps") < 1 {
								return fmt.Errorf("steps must be positive, got %d", c.Int("steps"))
							}
							err = m.Steps(-c.Int("steps"))
						}
						if err != nil && !errors.Is(err, migrate.ErrNoChange) {
							return err
						}
						return printVersion(m)
					})
				},
			},
			{
				Name:  "version",
				Usage: "print the current schema version",
				Action: func(c *cli.Context) error {
					return withMigrate(c, printVersion)
				},
			},
		},
	}
}

func withMigrate(c *cli.Context, fn func(*migrate.Migrate) error) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	config.NewLogger(cfg.Log, os.Stderr)

	database, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	m, err := db.NewMigrate(database)
	if err != nil {
		return err
	}
	return fn(m)
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("no migrations applied")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("version %d (dirty: %t)\n", version, dirty)
	return nil
}
