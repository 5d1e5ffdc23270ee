package tipbot

import (
	"errors"

	"github.com/anoideaopen/tipledger/core/ledger"
	"github.com/anoideaopen/tipledger/core/safemath"
)

var (
	ErrHandleTooLong             = ledger.ErrHandleTooLong
	ErrInvalidAmount             = errors.New("invalid amount")
	ErrInsufficientBalance       = errors.New("insufficient balance")
	ErrEscrowHandleMismatch      = errors.New("escrow handle mismatch")
	ErrInvalidEscrowTokenAccount = errors.New("invalid escrow token account")
	ErrMathOverflow              = safemath.ErrOverflow
)

var (
	ErrHandleEmpty         = errors.New("twitter handle is empty")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrSelfTip             = errors.New("sender and recipient are the same account")
	ErrRecipientRegistered = errors.New("recipient is already registered")
	ErrAccountNotFound     = ledger.ErrAccountNotFound
	ErrAccountExists       = ledger.ErrAccountExists
)
