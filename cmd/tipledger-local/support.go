package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/anoideaopen/tipledger/core/config"
	"github.com/anoideaopen/tipledger/store/leveldb"
	"github.com/anoideaopen/tipledger/tipbot"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli"
)

var (
	ErrNoConfig      = errors.New("configuration file is required")
	ErrInvalidAmount = errors.New("invalid amount")
)

type metadata struct {
	db      *leveldb.DB
	cfg     *config.Config
	program *tipbot.Program
	verbose bool
	e       io.Writer
	w       io.Writer
}

// setup opens the database and loads the configuration.
func setup(c *cli.Context) error {
	command := c.Args().Get(0)
	if command == "" || command == "version" || command == "help" || command == "h" {
		return nil
	}

	file := c.GlobalString("config")
	if file == "" {
		return ErrNoConfig
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	cfg, err := config.FromBytes(data)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	program, err := tipbot.New(cfg)
	if err != nil {
		return err
	}

	m := &metadata{
		cfg:     cfg,
		program: program,
		verbose: c.GlobalBool("verbose"),
		e:       c.App.ErrWriter,
		w:       c.App.Writer,
	}
	if m.verbose {
		fmt.Fprintf(m.e, "config: %s\n", file)
		fmt.Fprintf(m.e, "db: %s\n", c.GlobalString("db"))
	}

	if m.db, err = leveldb.Open(c.GlobalString("db"), false); err != nil {
		return err
	}

	c.App.Metadata["config"] = m
	return nil
}

func teardown(c *cli.Context) error {
	m, ok := c.App.Metadata["config"].(*metadata)
	if !ok || m.db == nil {
		return nil
	}
	return m.db.Close()
}

func meta(c *cli.Context) *metadata {
	return c.App.Metadata["config"].(*metadata)
}

// update runs fn in one transaction and prints its result once committed.
func (m *metadata) update(fn func(tx *leveldb.Tx) (any, error)) error {
	var out any
	err := m.db.Update(func(tx *leveldb.Tx) (err error) {
		out, err = fn(tx)
		return err
	})
	if err != nil {
		return err
	}
	return printJSON(m.w, out)
}

func (m *metadata) view(fn func(tx *leveldb.Tx) (any, error)) error {
	var out any
	err := m.db.View(func(tx *leveldb.Tx) (err error) {
		out, err = fn(tx)
		return err
	})
	if err != nil {
		return err
	}
	return printJSON(m.w, out)
}

func (m *metadata) accounts(c *cli.Context, handle string) (*tipbot.Accounts, error) {
	authority, err := addressArg(c, "authority")
	if err != nil {
		return nil, err
	}
	return m.program.DeriveAccounts(authority, handle)
}

func addressArg(c *cli.Context, name string) (address.Address, error) {
	s := c.String(name)
	if s == "" {
		return address.Zero, fmt.Errorf("--%s is required", name)
	}
	addr, err := address.FromBase58Check(s)
	if err != nil {
		return address.Zero, fmt.Errorf("--%s: %w", name, err)
	}
	return addr, nil
}

func handleArg(c *cli.Context, name string) (string, error) {
	handle := tipbot.NormalizeHandle(c.String(name))
	if handle == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return handle, nil
}

func (m *metadata) amountArg(c *cli.Context) (uint64, error) {
	return parseUnits(c.String("amount"), m.cfg.Asset.Decimals)
}

// parseUnits converts an amount in asset units to base units. Amounts with
// more fractional digits than the asset has are rejected.
func parseUnits(s string, decimals uint32) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	units := d.Shift(int32(decimals))
	if units.IsNegative() || !units.IsInteger() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	n := units.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidAmount, s)
	}
	return n.Uint64(), nil
}

func printJSON(handle io.Writer, message any) error {
	b, err := json.MarshalIndent(message, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
