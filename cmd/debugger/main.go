package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"walletv5/internal/datastore"
	"walletv5/internal/datastore/redis_store"
	"walletv5/internal/pkg/ton_utils"

	"github.com/hiendaovinh/toolkit/pkg/db"
	"github.com/hiendaovinh/toolkit/pkg/env"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
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
		Name: "debugger",
		Commands: []*cli.Command{
			commandInspectWallet(),
			commandDropSnapshot(),
			commandOutboxDepth(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var addressFlag = &cli.StringFlag{
	Name:     "address",
	Required: true,
}

func commandInspectWallet() *cli.Command {
	return &cli.Command{
		Name:  "inspect-wallet",
		Usage: "compare the stored wallet row with its redis snapshot",
		Flags: []cli.Flag{addressFlag},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			address, err := ton_utils.ParseAccountID(c.String("address"))
			if err != nil {
				return err
			}

			dbPostgres, err := getDb()
			if err != nil {
				return err
			}
			dbRedis, err := getRedis()
			if err != nil {
				return err
			}

			account, err := datastore.FindWalletAccount(ctx, dbPostgres, address.ToRaw())
			if err != nil {
				return err
			}
			b, _ := json.MarshalIndent(account, "", "    ")
			fmt.Println(string(b))

			snapshot, err := redis_store.GetWalletSnapshot(ctx, dbRedis, address.ToRaw())
			switch {
			case errors.Is(err, redis.Nil):
				fmt.Println("snapshot: none")
			case err != nil:
				return err
			case snapshot.StateHash != account.StateHash:
				fmt.Println("snapshot: STALE", snapshot.StateHash)
			default:
				fmt.Println("snapshot: in sync")
			}
			return nil
		},
	}
}

func commandDropSnapshot() *cli.Command {
	return &cli.Command{
		Name:  "drop-snapshot",
		Usage: "force the next request to reload the wallet from postgres",
		Flags: []cli.Flag{addressFlag},
		Action: func(c *cli.Context) error {
			address, err := ton_utils.ParseAccountID(c.String("address"))
			if err != nil {
				return err
			}
			dbRedis, err := getRedis()
			if err != nil {
				return err
			}
			if err := redis_store.DeleteWalletSnapshot(context.Background(), dbRedis, address.ToRaw()); err != nil {
				return err
			}
			log.Println("Dropped snapshot", address.ToRaw())
			return nil
		},
	}
}

func commandOutboxDepth() *cli.Command {
	return &cli.Command{
		Name: "outbox-depth",
		Action: func(c *cli.Context) error {
			dbRedis, err := getRedis()
			if err != nil {
				return err
			}
			n, err := redis_store.CountPendingOutMessages(context.Background(), dbRedis)
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
}

func getRedis() (redis.UniversalClient, error) {
	clusterRedisWallet := os.Getenv("CLUSTER_REDIS_WALLET")
	if clusterRedisWallet != "" {
		clusterOpts, err := redis.ParseClusterURL(clusterRedisWallet)
		if err != nil {
			return nil, err
		}
		return redis.NewClusterClient(clusterOpts), nil
	}

	vs, err := env.EnvsRequired("REDIS_WALLET")
	if err != nil {
		return nil, err
	}
	return db.InitRedis(&db.RedisConfig{
		URL: vs["REDIS_WALLET"],
	})
}

func getDb() (*bun.DB, error) {
	vs, err := env.EnvsRequired("DB_DSN")
	if err != nil {
		return nil, err
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(vs["DB_DSN"]),
		pgdriver.WithPassword(os.Getenv("DB_PASSWORD")),
	))

	db := bun.NewDB(sqldb, pgdialect.New())
	return db, nil
}
