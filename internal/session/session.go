// Package session tracks the single logged-in account and its inactivity
// countdown.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bankist-dev/bankist/internal/clock"
	"github.com/bankist-dev/bankist/internal/config"
	"github.com/bankist-dev/bankist/internal/directory"
	"github.com/bankist-dev/bankist/internal/logging"
	"github.com/bankist-dev/bankist/internal/model"
)

var (
	ErrAuthentication = errors.New("authentication failed")
	ErrCloseRejected  = errors.New("close rejected")
	ErrNotLoggedIn    = errors.New("not logged in")
)

// DefaultTimeoutTicks is the countdown length used when none is configured.
const DefaultTimeoutTicks = 300

// State is the login state of a Session.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	switch s {
	case LoggedIn:
		return "logged in"
	default:
		return "logged out"
	}
}

// Options tune a Session.
type Options struct {
	TimeoutTicks int
	TickInterval time.Duration
	// OnExpire runs after the countdown logs username out. It is called
	// without the session lock held.
	OnExpire func(username string)
	Logger   *log.Logger
}

// OptionsFromConfig copies the countdown settings out of cfg.
func OptionsFromConfig(cfg config.SessionConfig) Options {
	return Options{
		TimeoutTicks: cfg.TimeoutTicks,
		TickInterval: cfg.TickInterval,
	}
}

// Session is the one active login. Logging in again replaces whatever
// session came before, countdown included.
type Session struct {
	mu     sync.Mutex
	dir    *directory.Directory
	clock  clock.Clock
	opts   Options
	logger *log.Logger

	username  string
	remaining int
	timer     clock.Timer
	gen       uint64
	sorted    bool
}

// New returns a logged-out Session over dir.
func New(dir *directory.Directory, clk clock.Clock, opts Options) *Session {
	if opts.TimeoutTicks <= 0 {
		opts.TimeoutTicks = DefaultTimeoutTicks
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	return &Session{
		dir:    dir,
		clock:  clk,
		opts:   opts,
		logger: logging.OrDiscard(opts.Logger).WithPrefix("session"),
	}
}

// Login authenticates username and pin. On success any previous session is
// replaced and a fresh countdown starts. On failure the current state is
// left as it was.
func (s *Session) Login(username string, pin int) (model.Account, error) {
	acct, ok := s.dir.Verify(username, pin)
	if !ok {
		s.logger.Warn("login failed", "username", username)
		return model.Account{}, fmt.Errorf("%w: unknown username or wrong pin", ErrAuthentication)
	}

	s.mu.Lock()
	prev := s.username
	s.username = acct.Username
	s.sorted = false
	s.restartLocked()
	s.mu.Unlock()

	if prev != "" {
		s.logger.Info("session replaced", "previous", prev, "username", acct.Username)
	} else {
		s.logger.Info("logged in", "username", acct.Username)
	}
	return acct, nil
}

// Logout ends the session and cancels its countdown.
func (s *Session) Logout() error {
	s.mu.Lock()
	username := s.username
	if username == "" {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	s.endLocked()
	s.mu.Unlock()

	s.logger.Info("logged out", "username", username)
	return nil
}

// Close removes the logged-in account from the directory and logs out. Both
// username and pin must match the logged-in account.
func (s *Session) Close(username string, pin int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.username == "" {
		return fmt.Errorf("%w: %w", ErrCloseRejected, ErrNotLoggedIn)
	}
	acct, ok := s.dir.Find(s.username)
	if !ok || username != acct.Username || pin != acct.PIN {
		s.logger.Warn("close rejected", "username", s.username, "confirm", username)
		return fmt.Errorf("%w: confirmation does not match the logged-in account", ErrCloseRejected)
	}

	s.dir.Remove(acct.Username)
	s.endLocked()
	s.logger.Info("account closed", "username", acct.Username)
	return nil
}

// Touch restarts the countdown from the top.
func (s *Session) Touch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.username == "" {
		return ErrNotLoggedIn
	}
	s.restartLocked()
	return nil
}

// Account returns a copy of the logged-in account as currently stored.
func (s *Session) Account() (model.Account, error) {
	s.mu.Lock()
	username := s.username
	s.mu.Unlock()

	if username == "" {
		return model.Account{}, ErrNotLoggedIn
	}
	acct, ok := s.dir.Find(username)
	if !ok {
		return model.Account{}, fmt.Errorf("%w: %w", ErrNotLoggedIn, directory.ErrNotFound)
	}
	return acct, nil
}

// Username returns the logged-in username, or "" when logged out.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// State reports whether someone is logged in.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.username == "" {
		return LoggedOut
	}
	return LoggedIn
}

// Remaining returns the ticks left before automatic logout.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// ToggleSort flips between insertion order and ascending amount order and
// returns the new setting.
func (s *Session) ToggleSort() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sorted = !s.sorted
	return s.sorted
}

// Sorted reports whether movements are displayed in ascending order.
func (s *Session) Sorted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted
}

func (s *Session) restartLocked() {
	s.stopLocked()
	gen := s.gen
	s.remaining = s.opts.TimeoutTicks
	s.timer = s.clock.Every(s.opts.TickInterval, func() { s.tick(gen) })
}

func (s *Session) endLocked() {
	s.stopLocked()
	s.username = ""
	s.remaining = 0
	s.sorted = false
}

// stopLocked cancels the countdown. Bumping gen makes a tick that already
// fired but has not yet taken the lock a no-op.
func (s *Session) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.username == "" {
		s.mu.Unlock()
		return
	}
	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}
	username := s.username
	s.endLocked()
	s.mu.Unlock()

	s.logger.Info("session expired", "username", username)
	if s.opts.OnExpire != nil {
		s.opts.OnExpire(username)
	}
}
