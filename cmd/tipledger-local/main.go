// Command tipledger-local runs the tipping ledger against a local goleveldb
// database. The operator is trusted: signers are named by address and no
// signatures are checked.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "tipledger-local"
	app.Usage = "operate a local tipping ledger"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "db, d",
			Value:  "tipledger.db",
			Usage:  " ledger database `DIR`",
			EnvVar: "TIPLEDGER_DB",
		},
		cli.StringFlag{
			Name:   "config, c",
			Value:  "",
			Usage:  "*deployment configuration `FILE` (JSON)",
			EnvVar: "TIPLEDGER_CONFIG",
		},
	}

	authorityFlag := cli.StringFlag{
		Name:  "authority, a",
		Usage: "*registry authority `ADDRESS`",
	}
	handleFlag := cli.StringFlag{
		Name:  "handle, n",
		Usage: "*user `HANDLE`",
	}
	amountFlag := cli.StringFlag{
		Name:  "amount, m",
		Usage: "*amount in asset units `DECIMAL`",
	}

	app.Commands = []cli.Command{
		{
			Name:      "derive",
			Usage:     "print the canonical accounts of a handle",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{authorityFlag, handleFlag},
			Action:    runDerive,
		},
		{
			Name:      "init",
			Usage:     "create the master registry of an authority",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{authorityFlag},
			Action:    runInit,
		},
		{
			Name:      "register",
			Usage:     "register a handle and claim its escrow",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				authorityFlag,
				handleFlag,
				cli.StringFlag{
					Name:  "owner, o",
					Usage: "*owner `ADDRESS` of the new user",
				},
			},
			Action: runRegister,
		},
		{
			Name:      "holding",
			Usage:     "open the holding account of an owner",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "owner, o",
					Usage: "*owner `ADDRESS`",
				},
			},
			Action: runCreateHolding,
		},
		{
			Name:      "mint",
			Usage:     "credit a holding account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				amountFlag,
				cli.StringFlag{
					Name:  "signer, s",
					Usage: "*issuer `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "to, t",
					Usage: "*holding account `ADDRESS`",
				},
			},
			Action: runMint,
		},
		{
			Name:      "deposit",
			Usage:     "move funds from a holding account into a user pool",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				authorityFlag,
				handleFlag,
				amountFlag,
				cli.StringFlag{
					Name:  "depositor, s",
					Usage: "*depositor `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "from, f",
					Usage: "*holding account `ADDRESS` of the depositor",
				},
			},
			Action: runDeposit,
		},
		{
			Name:      "tip",
			Usage:     "tip a handle, into escrow when it is not registered",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				authorityFlag,
				amountFlag,
				cli.StringFlag{
					Name:  "signer, s",
					Usage: "*sender owner or registry authority `ADDRESS`",
				},
				cli.StringFlag{
					Name:  "from, f",
					Usage: "*sender `HANDLE`",
				},
				cli.StringFlag{
					Name:  "to, t",
					Usage: "*recipient `HANDLE`",
				},
			},
			Action: runTip,
		},
		{
			Name:      "withdraw",
			Usage:     "move funds from a user pool to a holding account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				authorityFlag,
				handleFlag,
				amountFlag,
				cli.StringFlag{
					Name:  "owner, o",
					Usage: "*owner `ADDRESS` of the user",
				},
				cli.StringFlag{
					Name:  "to, t",
					Usage: "*destination holding account `ADDRESS`",
				},
			},
			Action: runWithdraw,
		},
		{
			Name:      "show",
			Usage:     "print the registry, user and escrow of a handle",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{authorityFlag, handleFlag},
			Action:    runShow,
		},
		{
			Name:      "balance",
			Usage:     "print a holding account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "holding, l",
					Usage: "*holding account `ADDRESS`",
				},
			},
			Action: runBalance,
		},
		{
			Name:  "version",
			Usage: "display tipledger-local version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	app.Before = setup
	app.After = teardown

	return app
}
