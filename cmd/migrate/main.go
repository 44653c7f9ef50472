package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"walletv5/internal/datastore"
	"walletv5/internal/models"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/urfave/cli/v2"
)

func init() {
	// for development
	//nolint:errcheck
	godotenv.Load("../../.env")

	// for production
	//nolint:errcheck
	godotenv.Load("./.env")
}

func main() {
	app := &cli.App{
		Name: "migrate",
		Commands: []*cli.Command{
			commandMigration(),
			commandConfig(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commandMigration() *cli.Command {
	return &cli.Command{
		Name: "migrate",
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			db, err := getDb()
			if err != nil {
				return err
			}

			steps := []struct {
				name string
				run  func(context.Context, *bun.DB) error
			}{
				{"config", datastore.CreateTableConfig},
				{"wallet_account", datastore.CreateTableWalletAccount},
				{"out_message", datastore.CreateTableOutMessage},
			}
			for _, step := range steps {
				if err := step.run(ctx, db); err != nil {
					log.Println("migrate", step.name, err)
					return err
				}
				log.Println("migrated", step.name)
			}
			return nil
		},
	}
}

func commandConfig() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "set a runtime config value, e.g. WALLET_RATE_LIMIT_PER_MINUTE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "key", Required: true},
			&cli.StringFlag{Name: "value", Required: true},
		},
		Action: func(c *cli.Context) error {
			db, err := getDb()
			if err != nil {
				return err
			}
			err = datastore.UpsertConfig(c.Context, db, &models.Config{
				Key:   c.String("key"),
				Value: c.String("value"),
			})
			if err != nil {
				return err
			}
			log.Println("config", c.String("key"), "=", c.String("value"))
			return nil
		},
	}
}

func getDb() (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(os.Getenv("DB_DSN")),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
