package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"walletv5/internal/contract"
	"walletv5/internal/pkg/ton_utils"

	"github.com/joho/godotenv"
	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/wallet"
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
		Name:  "walletctl",
		Usage: "offline tooling for v5 wallets",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:    "network",
				Value:   int64(ton_utils.MainnetGlobalID),
				Usage:   "network global id (-239 mainnet, -3 testnet)",
				EnvVars: []string{"NETWORK_GLOBAL_ID"},
			},
		},
		Commands: []*cli.Command{
			commandWalletID(),
			commandState(),
			commandSign(),
			commandExtensionRequest(),
			commandBroadcast(),
			commandChainSeqno(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

var identityFlags = []cli.Flag{
	&cli.IntFlag{Name: "workchain", Value: 0},
	&cli.UintFlag{Name: "subwallet", Value: 0},
	&cli.Int64Flag{Name: "custom", Value: -1, Usage: "custom 31-bit context, overrides workchain and subwallet"},
}

var actionFlags = []cli.Flag{
	&cli.StringSliceFlag{Name: "send", Usage: "destination/nanotons/mode"},
	&cli.StringSliceFlag{Name: "add-extension"},
	&cli.StringSliceFlag{Name: "remove-extension"},
	&cli.StringFlag{Name: "signature-allowed", Usage: "true or false"},
}

func identityFromFlags(c *cli.Context) ton_utils.WalletID {
	id := ton_utils.DefaultWalletID(int32(c.Int64("network")))
	if custom := c.Int64("custom"); custom >= 0 {
		id.Context = ton_utils.WalletIDContext{IsCustom: true, Custom: uint32(custom)}
		return id
	}
	id.Context.Workchain = int8(c.Int("workchain"))
	id.Context.SubwalletNumber = uint32(c.Uint("subwallet"))
	return id
}

// splitSend cuts "destination/nanotons/mode" from the right; base64 destinations may
// contain '/' themselves.
func splitSend(s string) ([3]string, error) {
	var parts [3]string
	i := strings.LastIndex(s, "/")
	if i <= 0 {
		return parts, fmt.Errorf("send %q: want destination/nanotons/mode", s)
	}
	j := strings.LastIndex(s[:i], "/")
	if j <= 0 {
		return parts, fmt.Errorf("send %q: want destination/nanotons/mode", s)
	}
	parts[0], parts[1], parts[2] = s[:j], s[j+1:i], s[i+1:]
	return parts, nil
}

func actionsFromFlags(c *cli.Context) ([]contract.Action, error) {
	var actions []contract.Action
	for _, s := range c.StringSlice("send") {
		parts, err := splitSend(s)
		if err != nil {
			return nil, err
		}
		dest, err := ton_utils.ParseAccountID(parts[0])
		if err != nil {
			return nil, err
		}
		amount, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, err
		}
		mode, err := strconv.ParseUint(parts[2], 10, 8)
		if err != nil {
			return nil, err
		}
		msg, err := ton_utils.BuildInternalMessage(dest, tlb.Grams(amount), true, nil)
		if err != nil {
			return nil, err
		}
		actions = append(actions, contract.SendMessage{Mode: uint8(mode), Message: msg})
	}
	for _, s := range c.StringSlice("add-extension") {
		addr, err := ton_utils.ParseAccountID(s)
		if err != nil {
			return nil, err
		}
		actions = append(actions, contract.AddExtension{Address: addr})
	}
	for _, s := range c.StringSlice("remove-extension") {
		addr, err := ton_utils.ParseAccountID(s)
		if err != nil {
			return nil, err
		}
		actions = append(actions, contract.RemoveExtension{Address: addr})
	}
	if v := c.String("signature-allowed"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		actions = append(actions, contract.SetSignatureAuthEnabled{Enabled: enabled})
	}
	return actions, nil
}

func privateKeyFromSeed(seed string) (ed25519.PrivateKey, error) {
	if seed == "" {
		return nil, errors.New("missing seed, pass --seed or set WALLET_SEED")
	}
	return wallet.SeedToPrivateKey(seed)
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func commandWalletID() *cli.Command {
	return &cli.Command{
		Name:  "wallet-id",
		Usage: "pack or unpack a wallet id",
		Subcommands: []*cli.Command{
			{
				Name:  "pack",
				Flags: identityFlags,
				Action: func(c *cli.Context) error {
					word, err := ton_utils.PackWalletID(identityFromFlags(c))
					if err != nil {
						return err
					}
					fmt.Println(word)
					return nil
				},
			},
			{
				Name:      "unpack",
				ArgsUsage: "<wallet id>",
				Action: func(c *cli.Context) error {
					word, err := strconv.ParseInt(c.Args().First(), 10, 32)
					if err != nil {
						return err
					}
					id, err := ton_utils.UnpackWalletID(int32(word), int32(c.Int64("network")))
					if err != nil {
						return err
					}
					return printJSON(id)
				},
			},
		},
	}
}

func commandState() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "print the deployment address and state boc",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "public-key", Usage: "hex ed25519 public key"},
			&cli.StringFlag{Name: "seed", EnvVars: []string{"WALLET_SEED"}},
			&cli.UintFlag{Name: "seqno"},
			&cli.BoolFlag{Name: "signature-disabled"},
			&cli.StringSliceFlag{Name: "extension"},
		}, identityFlags...),
		Action: func(c *cli.Context) error {
			var publicKey ed25519.PublicKey
			if s := c.String("public-key"); s != "" {
				b, err := hex.DecodeString(s)
				if err != nil {
					return err
				}
				publicKey = b
			} else {
				key, err := privateKeyFromSeed(c.String("seed"))
				if err != nil {
					return err
				}
				publicKey = key.Public().(ed25519.PublicKey)
			}

			cfg := contract.DefaultConfig(publicKey, int32(c.Int64("network")))
			cfg.Identity = identityFromFlags(c)
			cfg.Seqno = uint32(c.Uint("seqno"))
			cfg.SignatureAllowed = !c.Bool("signature-disabled")
			for _, s := range c.StringSlice("extension") {
				addr, err := ton_utils.ParseAccountID(s)
				if err != nil {
					return err
				}
				cfg.Extensions = append(cfg.Extensions, addr)
			}

			w, err := contract.Deploy(cfg)
			if err != nil {
				return err
			}
			stateCell, err := w.State().ToCell()
			if err != nil {
				return err
			}
			stateBoc, err := ton_utils.EncodeBocBase64(stateCell)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"address":   w.Address().ToRaw(),
				"wallet_id": w.GetWalletID(),
				"state_boc": stateBoc,
			})
		},
	}
}

func commandSign() *cli.Command {
	return &cli.Command{
		Name:  "sign",
		Usage: "build a signed owner request",
		Flags: append(append([]cli.Flag{
			&cli.StringFlag{Name: "seed", EnvVars: []string{"WALLET_SEED"}},
			&cli.UintFlag{Name: "seqno", Required: true},
			&cli.DurationFlag{Name: "valid-for", Value: time.Minute},
			&cli.BoolFlag{Name: "internal", Usage: "build a sint body for delivery inside an internal message"},
		}, identityFlags...), actionFlags...),
		Action: func(c *cli.Context) error {
			key, err := privateKeyFromSeed(c.String("seed"))
			if err != nil {
				return err
			}
			walletID, err := ton_utils.PackWalletID(identityFromFlags(c))
			if err != nil {
				return err
			}
			actions, err := actionsFromFlags(c)
			if err != nil {
				return err
			}

			op := contract.OpSignedExternal
			if c.Bool("internal") {
				op = contract.OpSignedInternal
			}
			validUntil := uint32(time.Now().Add(c.Duration("valid-for")).Unix())

			body, err := contract.BuildSignedRequest(op, walletID, validUntil, uint32(c.Uint("seqno")), actions, key)
			if err != nil {
				return err
			}
			encoded, err := ton_utils.EncodeBocBase64(body)
			if err != nil {
				return err
			}
			fmt.Println(encoded)
			return nil
		},
	}
}

func commandExtensionRequest() *cli.Command {
	return &cli.Command{
		Name:  "extension-request",
		Usage: "build an unsigned extension request body",
		Flags: append([]cli.Flag{
			&cli.Uint64Flag{Name: "query-id"},
		}, actionFlags...),
		Action: func(c *cli.Context) error {
			actions, err := actionsFromFlags(c)
			if err != nil {
				return err
			}
			body, err := contract.BuildExtensionRequest(c.Uint64("query-id"), actions)
			if err != nil {
				return err
			}
			encoded, err := ton_utils.EncodeBocBase64(body)
			if err != nil {
				return err
			}
			fmt.Println(encoded)
			return nil
		},
	}
}
