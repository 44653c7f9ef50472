package main

import (
	"context"
	"fmt"
	"time"

	"walletv5/internal/pkg/ton_utils"

	"github.com/tonkeeper/tongo/liteapi"
	"github.com/urfave/cli/v2"
)

var chainFlags = []cli.Flag{
	&cli.StringFlag{Name: "address", Required: true},
	&cli.BoolFlag{Name: "testnet"},
}

func liteClient(c *cli.Context) (*liteapi.Client, error) {
	if c.Bool("testnet") {
		return liteapi.NewClientWithDefaultTestnet()
	}
	return liteapi.NewClientWithDefaultMainnet()
}

func commandBroadcast() *cli.Command {
	return &cli.Command{
		Name:  "broadcast",
		Usage: "wrap a signed request into an external message and send it to the chain",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "boc", Required: true, Usage: "base64 body from `walletctl sign`"},
		}, chainFlags...),
		Action: func(c *cli.Context) error {
			address, err := ton_utils.ParseAccountID(c.String("address"))
			if err != nil {
				return err
			}
			body, err := ton_utils.DecodeBocBase64(c.String("boc"))
			if err != nil {
				return err
			}
			msg, err := ton_utils.BuildExternalMessage(address, body)
			if err != nil {
				return err
			}
			payload, err := msg.ToBoc()
			if err != nil {
				return err
			}

			client, err := liteClient(c)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(c.Context, 15*time.Second)
			defer cancel()

			if _, err := client.SendMessage(ctx, payload); err != nil {
				return err
			}
			fmt.Printf("sent external message to %s\n", address.ToRaw())
			return nil
		},
	}
}

func commandChainSeqno() *cli.Command {
	return &cli.Command{
		Name:  "chain-seqno",
		Usage: "read the seqno of a deployed wallet from the chain",
		Flags: chainFlags,
		Action: func(c *cli.Context) error {
			address, err := ton_utils.ParseAccountID(c.String("address"))
			if err != nil {
				return err
			}
			client, err := liteClient(c)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(c.Context, 15*time.Second)
			defer cancel()

			seqno, err := client.GetSeqno(ctx, address)
			if err != nil {
				return err
			}
			fmt.Println(seqno)
			return nil
		},
	}
}
