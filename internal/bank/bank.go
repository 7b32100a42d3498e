// Package bank applies validated transfers, loans and closures to the
// accounts behind a Session.
package bank

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/clock"
	"github.com/bankist-dev/bankist/internal/config"
	"github.com/bankist-dev/bankist/internal/directory"
	"github.com/bankist-dev/bankist/internal/ledger"
	"github.com/bankist-dev/bankist/internal/logging"
	"github.com/bankist-dev/bankist/internal/model"
	"github.com/bankist-dev/bankist/internal/session"
)

// Failure categories. Every rejection wraps one of these together with a
// reason below.
var (
	ErrTransferRejected = errors.New("transfer rejected")
	ErrLoanRejected     = errors.New("loan rejected")
)

// Rejection reasons.
var (
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrUnknownReceiver     = errors.New("unknown receiver")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoQualifyingDeposit = errors.New("no movement large enough to back the loan")
	ErrLoanPending         = errors.New("a loan is already pending")
)

const (
	DefaultLoanDelay        = 2500 * time.Millisecond
	DefaultMinMovementRatio = 0.1
)

// Receipt records a completed transfer.
type Receipt struct {
	Ref    uuid.UUID
	From   string
	To     string
	Amount decimal.Decimal
	At     time.Time
}

// LoanTicket records an accepted loan whose credit lands at DueAt.
type LoanTicket struct {
	Ref         uuid.UUID
	Username    string
	Amount      decimal.Decimal
	RequestedAt time.Time
	DueAt       time.Time
}

// Options tune an Engine.
type Options struct {
	LoanDelay        time.Duration
	MinMovementRatio float64
	// OnLoanCredited runs after a deferred credit is posted, without the
	// engine lock held.
	OnLoanCredited func(LoanTicket)
	Logger         *log.Logger
}

// OptionsFromConfig copies the loan settings out of cfg.
func OptionsFromConfig(cfg config.LoanConfig) Options {
	return Options{
		LoanDelay:        cfg.Delay,
		MinMovementRatio: cfg.MinMovementRatio,
	}
}

// Engine performs the mutating operations. Deferred loan credits belong to
// the engine, so they post even after the borrower logs out.
type Engine struct {
	mu      sync.Mutex
	dir     *directory.Directory
	clock   clock.Clock
	delay   time.Duration
	ratio   decimal.Decimal
	onLoan  func(LoanTicket)
	logger  *log.Logger
	pending map[string]clock.Timer
}

// New returns an Engine over dir.
func New(dir *directory.Directory, clk clock.Clock, opts Options) *Engine {
	if opts.LoanDelay <= 0 {
		opts.LoanDelay = DefaultLoanDelay
	}
	if opts.MinMovementRatio <= 0 {
		opts.MinMovementRatio = DefaultMinMovementRatio
	}
	return &Engine{
		dir:     dir,
		clock:   clk,
		delay:   opts.LoanDelay,
		ratio:   decimal.NewFromFloat(opts.MinMovementRatio),
		onLoan:  opts.OnLoanCredited,
		logger:  logging.OrDiscard(opts.Logger).WithPrefix("bank"),
		pending: make(map[string]clock.Timer),
	}
}

// Transfer moves amount from the logged-in account to the account named to.
// Both legs carry the same timestamp. A rejected transfer changes nothing.
func (e *Engine) Transfer(sess *session.Session, to string, amount decimal.Decimal) (Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	from, err := sess.Account()
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrTransferRejected, err)
	}
	if err := e.checkTransfer(from, to, amount); err != nil {
		e.logger.Warn("transfer rejected", "from", from.Username, "to", to, "amount", amount, "reason", err)
		return Receipt{}, fmt.Errorf("%w: %w", ErrTransferRejected, err)
	}

	now := e.clock.Now()
	if err := e.dir.Append(from.Username, amount.Neg(), now); err != nil {
		return Receipt{}, fmt.Errorf("%w: debiting %s: %w", ErrTransferRejected, from.Username, err)
	}
	if err := e.dir.Append(to, amount, now); err != nil {
		return Receipt{}, fmt.Errorf("crediting %s: %w", to, err)
	}
	if err := sess.Touch(); err != nil {
		e.logger.Debug("countdown not restarted", "err", err)
	}

	r := Receipt{Ref: uuid.New(), From: from.Username, To: to, Amount: amount, At: now}
	e.logger.Info("transfer", "ref", r.Ref, "from", r.From, "to", r.To, "amount", r.Amount)
	return r, nil
}

func (e *Engine) checkTransfer(from model.Account, to string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !e.dir.Exists(to) {
		return fmt.Errorf("%w %q", ErrUnknownReceiver, to)
	}
	if to == from.Username {
		return ErrSelfTransfer
	}
	if ledger.Balance(from).LessThan(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// RequestLoan accepts or rejects a loan for the logged-in account. The
// amount is floored to a whole number first. An accepted loan is credited
// after the configured delay.
func (e *Engine) RequestLoan(sess *session.Session, amount decimal.Decimal) (LoanTicket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	acct, err := sess.Account()
	if err != nil {
		return LoanTicket{}, fmt.Errorf("%w: %w", ErrLoanRejected, err)
	}
	amount = amount.Floor()
	if err := e.checkLoan(acct, amount); err != nil {
		e.logger.Warn("loan rejected", "username", acct.Username, "amount", amount, "reason", err)
		return LoanTicket{}, fmt.Errorf("%w: %w", ErrLoanRejected, err)
	}

	now := e.clock.Now()
	t := LoanTicket{
		Ref:         uuid.New(),
		Username:    acct.Username,
		Amount:      amount,
		RequestedAt: now,
		DueAt:       now.Add(e.delay),
	}
	e.pending[t.Username] = e.clock.AfterFunc(e.delay, func() { e.credit(t) })
	if err := sess.Touch(); err != nil {
		e.logger.Debug("countdown not restarted", "err", err)
	}

	e.logger.Info("loan accepted", "ref", t.Ref, "username", t.Username, "amount", t.Amount, "due", t.DueAt)
	return t, nil
}

func (e *Engine) checkLoan(acct model.Account, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if _, ok := e.pending[acct.Username]; ok {
		return ErrLoanPending
	}
	threshold := amount.Mul(e.ratio)
	for _, m := range acct.Movements {
		if m.Amount.GreaterThanOrEqual(threshold) {
			return nil
		}
	}
	return ErrNoQualifyingDeposit
}

func (e *Engine) credit(t LoanTicket) {
	e.mu.Lock()
	delete(e.pending, t.Username)
	err := e.dir.Append(t.Username, t.Amount, e.clock.Now())
	e.mu.Unlock()

	if err != nil {
		e.logger.Warn("loan credit dropped", "ref", t.Ref, "username", t.Username, "amount", t.Amount, "err", err)
		return
	}
	e.logger.Info("loan credited", "ref", t.Ref, "username", t.Username, "amount", t.Amount)
	if e.onLoan != nil {
		e.onLoan(t)
	}
}

// PendingLoan reports whether username has a loan waiting to be credited.
func (e *Engine) PendingLoan(username string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.pending[username]
	return ok
}

// CloseAccount removes the logged-in account after confirming its username
// and pin. A pending loan for it is left to lapse.
func (e *Engine) CloseAccount(sess *session.Session, username string, pin int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return sess.Close(username, pin)
}

// Stop cancels every pending loan credit. Used on shutdown.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for username, t := range e.pending {
		t.Stop()
		delete(e.pending, username)
		e.logger.Debug("pending loan cancelled", "username", username)
	}
}
