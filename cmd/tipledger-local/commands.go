package main

import (
	"errors"
	"fmt"

	"github.com/anoideaopen/tipledger/core/address"
	"github.com/anoideaopen/tipledger/store/leveldb"
	"github.com/anoideaopen/tipledger/tipbot"
	"github.com/urfave/cli"
)

func runDerive(c *cli.Context) error {
	m := meta(c)

	handle, err := handleArg(c, "handle")
	if err != nil {
		return err
	}
	acc, err := m.accounts(c, handle)
	if err != nil {
		return err
	}
	return printJSON(m.w, acc)
}

func runInit(c *cli.Context) error {
	m := meta(c)

	authority, err := addressArg(c, "authority")
	if err != nil {
		return err
	}
	master, _, err := m.program.Deriver().Derive(address.TagMaster, authority.Bytes())
	if err != nil {
		return err
	}

	return m.update(func(tx *leveldb.Tx) (any, error) {
		registry, err := m.program.Initialize(tx, authority, master)
		if err != nil {
			return nil, err
		}
		return tipbot.NewMasterView(master, registry), nil
	})
}

func runRegister(c *cli.Context) error {
	m := meta(c)

	handle, err := handleArg(c, "handle")
	if err != nil {
		return err
	}
	owner, err := addressArg(c, "owner")
	if err != nil {
		return err
	}
	acc, err := m.accounts(c, handle)
	if err != nil {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "user: %s\n", acc.User.Address)
		fmt.Fprintf(m.e, "escrow: %s\n", acc.Escrow.Address)
	}

	return m.update(func(tx *leveldb.Tx) (any, error) {
		user, err := m.program.RegisterUser(tx, owner, handle, tipbot.RegisterAccounts{
			Master:        acc.Master.Address,
			User:          acc.User.Address,
			Escrow:        acc.Escrow.Address,
			UserHolding:   acc.UserHolding,
			EscrowHolding: acc.EscrowHolding,
		})
		if err != nil {
			return nil, err
		}
		return tipbot.NewUserView(acc.User.Address, user, m.cfg.Asset.Decimals), nil
	})
}

func runCreateHolding(c *cli.Context) error {
	m := meta(c)

	owner, err := addressArg(c, "owner")
	if err != nil {
		return err
	}

	return m.update(func(tx *leveldb.Tx) (any, error) {
		addr, err := m.program.CreateHoldingAccount(tx, owner)
		if err != nil {
			return nil, err
		}
		return m.program.HoldingAccount(tx, addr, m.cfg.Asset.Decimals)
	})
}

func runMint(c *cli.Context) error {
	m := meta(c)

	signer, err := addressArg(c, "signer")
	if err != nil {
		return err
	}
	to, err := addressArg(c, "to")
	if err != nil {
		return err
	}
	amount, err := m.amountArg(c)
	if err != nil {
		return err
	}

	return m.update(func(tx *leveldb.Tx) (any, error) {
		if err := m.program.Mint(tx, signer, to, amount); err != nil {
			return nil, err
		}
		return m.program.HoldingAccount(tx, to, m.cfg.Asset.Decimals)
	})
}

func runDeposit(c *cli.Context) error {
	m := meta(c)

	handle, err := handleArg(c, "handle")
	if err != nil {
		return err
	}
	depositor, err := addressArg(c, "depositor")
	if err != nil {
		return err
	}
	from, err := addressArg(c, "from")
	if err != nil {
		return err
	}
	amount, err := m.amountArg(c)
	if err != nil {
		return err
	}
	acc, err := m.accounts(c, handle)
	if err != nil {
		return err
	}

	return m.update(func(tx *leveldb.Tx) (any, error) {
		user, err := m.program.Deposit(tx, depositor, amount, tipbot.DepositAccounts{
			Master:           acc.Master.Address,
			User:             acc.User.Address,
			DepositorHolding: from,
			UserHolding:      acc.UserHolding,
		})
		if err != nil {
			return nil, err
		}
		return tipbot.NewUserView(acc.User.Address, user, m.cfg.Asset.Decimals), nil
	})
}

// runTip tips a registered recipient directly and parks the tip in escrow
// otherwise.
func runTip(c *cli.Context) error {
	m := meta(c)

	signer, err := addressArg(c, "signer")
	if err != nil {
		return err
	}
	from, err := handleArg(c, "from")
	if err != nil {
		return err
	}
	to, err := handleArg(c, "to")
	if err != nil {
		return err
	}
	amount, err := m.amountArg(c)
	if err != nil {
		return err
	}
	sender, err := m.accounts(c, from)
	if err != nil {
		return err
	}
	recipient, err := m.accounts(c, to)
	if err != nil {
		return err
	}

	decimals := m.cfg.Asset.Decimals
	return m.update(func(tx *leveldb.Tx) (any, error) {
		_, err := m.program.UserAccount(tx, recipient.Master.Address, recipient.User.Address, decimals)
		switch {
		case errors.Is(err, tipbot.ErrAccountNotFound):
			res, err := m.program.TipToEscrow(tx, signer, amount, to, tipbot.EscrowAccounts{
				Master:        sender.Master.Address,
				Sender:        sender.User.Address,
				SenderHolding: sender.UserHolding,
				Escrow:        recipient.Escrow.Address,
				EscrowHolding: recipient.EscrowHolding,
			})
			if err != nil {
				return nil, err
			}
			return struct {
				Sender *tipbot.UserView   `json:"sender"`
				Escrow *tipbot.EscrowView `json:"escrow"`
			}{
				Sender: tipbot.NewUserView(sender.User.Address, res.Sender, decimals),
				Escrow: tipbot.NewEscrowView(recipient.Escrow.Address, res.Escrow, decimals),
			}, nil
		case err != nil:
			return nil, err
		}

		res, err := m.program.Tip(tx, signer, amount, to, tipbot.TipAccounts{
			Master:           sender.Master.Address,
			Sender:           sender.User.Address,
			Recipient:        recipient.User.Address,
			SenderHolding:    sender.UserHolding,
			RecipientHolding: recipient.UserHolding,
		})
		if err != nil {
			return nil, err
		}
		return struct {
			Sender    *tipbot.UserView `json:"sender"`
			Recipient *tipbot.UserView `json:"recipient"`
		}{
			Sender:    tipbot.NewUserView(sender.User.Address, res.Sender, decimals),
			Recipient: tipbot.NewUserView(recipient.User.Address, res.Recipient, decimals),
		}, nil
	})
}

func runWithdraw(c *cli.Context) error {
	m := meta(c)

	handle, err := handleArg(c, "handle")
	if err != nil {
		return err
	}
	owner, err := addressArg(c, "owner")
	if err != nil {
		return err
	}
	to, err := addressArg(c, "to")
	if err != nil {
		return err
	}
	amount, err := m.amountArg(c)
	if err != nil {
		return err
	}
	acc, err := m.accounts(c, handle)
	if err != nil {
		return err
	}

	return m.update(func(tx *leveldb.Tx) (any, error) {
		user, err := m.program.Withdraw(tx, owner, amount, tipbot.WithdrawAccounts{
			Master:      acc.Master.Address,
			User:        acc.User.Address,
			UserHolding: acc.UserHolding,
			Destination: to,
		})
		if err != nil {
			return nil, err
		}
		return tipbot.NewUserView(acc.User.Address, user, m.cfg.Asset.Decimals), nil
	})
}

func runShow(c *cli.Context) error {
	m := meta(c)

	handle, err := handleArg(c, "handle")
	if err != nil {
		return err
	}
	acc, err := m.accounts(c, handle)
	if err != nil {
		return err
	}

	type result struct {
		Registry *tipbot.MasterView `json:"registry"`
		User     *tipbot.UserView   `json:"user,omitempty"`
		Escrow   *tipbot.EscrowView `json:"escrow,omitempty"`
	}

	decimals := m.cfg.Asset.Decimals
	return m.view(func(tx *leveldb.Tx) (any, error) {
		var (
			out result
			err error
		)
		if out.Registry, err = m.program.MasterRegistry(tx, acc.Master.Address); err != nil {
			return nil, err
		}
		if out.User, err = m.program.UserAccount(tx, acc.Master.Address, acc.User.Address, decimals); err != nil && !errors.Is(err, tipbot.ErrAccountNotFound) {
			return nil, err
		}
		if out.Escrow, err = m.program.EscrowAccount(tx, acc.Master.Address, acc.Escrow.Address, decimals); err != nil && !errors.Is(err, tipbot.ErrAccountNotFound) {
			return nil, err
		}
		return out, nil
	})
}

func runBalance(c *cli.Context) error {
	m := meta(c)

	holding, err := addressArg(c, "holding")
	if err != nil {
		return err
	}

	return m.view(func(tx *leveldb.Tx) (any, error) {
		return m.program.HoldingAccount(tx, holding, m.cfg.Asset.Decimals)
	})
}
