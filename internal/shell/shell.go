// Package shell is a line-oriented front end over a session and the bank
// engine.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bankist-dev/bankist/internal/activity"
	"github.com/bankist-dev/bankist/internal/bank"
	"github.com/bankist-dev/bankist/internal/clock"
	"github.com/bankist-dev/bankist/internal/config"
	"github.com/bankist-dev/bankist/internal/directory"
	"github.com/bankist-dev/bankist/internal/format"
	"github.com/bankist-dev/bankist/internal/logging"
	"github.com/bankist-dev/bankist/internal/session"
	"github.com/bankist-dev/bankist/internal/view"
)

const (
	msgLoggedOut      = "Log in to get started"
	msgBadLogin       = "INCORRECT USERNAME/PIN!"
	msgBadTransfer    = "INCORRECT RECEIVER INFO/WRONG AMOUNT!"
	msgBadLoan        = "Amount too large"
	msgLoanPending    = "A loan is already on its way"
	msgBadClose       = "Confirmation does not match your account"
	msgAccountClosed  = "Account closed"
	msgUnknownCommand = "Unknown command %q, type help"
)

const helpText = `Commands:
  login <user> <pin>       log in
  logout                   log out
  transfer <to> <amount>   send money to another user
  loan <amount>            request a loan
  close <user> <pin>       close your account
  sort                     toggle sorting movements by amount
  show                     show your account
  timer                    show time left before automatic logout
  help                     show this help
  quit                     leave
`

// Shell reads commands and writes results. Output is serialized because the
// countdown and loan credits write from their own goroutines.
type Shell struct {
	out      *syncWriter
	dir      *directory.Directory
	sess     *session.Session
	engine   *bank.Engine
	clock    clock.Clock
	fmt      *format.Formatter
	activity *activity.Recorder
	logger   *log.Logger
}

// New wires a session and an engine over dir and returns a Shell writing to
// out.
func New(dir *directory.Directory, clk clock.Clock, cfg *config.Config, out io.Writer, logger *log.Logger) *Shell {
	logger = logging.OrDiscard(logger)
	s := &Shell{
		out:    &syncWriter{w: out},
		dir:    dir,
		clock:  clk,
		fmt:    format.New(),
		logger: logger.WithPrefix("shell"),
	}

	sessOpts := session.OptionsFromConfig(cfg.Session)
	sessOpts.Logger = logger
	sessOpts.OnExpire = s.expired
	s.sess = session.New(dir, clk, sessOpts)

	bankOpts := bank.OptionsFromConfig(cfg.Loan)
	bankOpts.Logger = logger
	bankOpts.OnLoanCredited = s.loanCredited
	s.engine = bank.New(dir, clk, bankOpts)

	return s
}

// RecordActivity sends every login, logout and money movement to r.
func (s *Shell) RecordActivity(r *activity.Recorder) { s.activity = r }

// Session exposes the shell's session.
func (s *Shell) Session() *session.Session { return s.sess }

// Run reads commands from in until quit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	s.out.println(msgLoggedOut)

	sc := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			s.shutdown()
			return err
		}
		s.out.print("> ")
		if !sc.Scan() {
			break
		}
		if quit := s.Exec(sc.Text()); quit {
			break
		}
	}
	s.shutdown()
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

// Exec runs one command line and reports whether the shell should stop.
func (s *Shell) Exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		s.out.print(helpText)
	case "login":
		s.login(args)
	case "logout":
		username := s.sess.Username()
		if err := s.sess.Logout(); err != nil {
			s.logger.Debug("logout ignored", "err", err)
		} else {
			s.record(username, activity.ActionLogout, "", "")
		}
		s.out.println(msgLoggedOut)
	case "transfer":
		s.transfer(args)
	case "loan":
		s.loan(args)
	case "close":
		s.close(args)
	case "sort":
		if s.requireLogin() {
			s.sess.ToggleSort()
			s.render()
		}
	case "show":
		if s.requireLogin() {
			s.render()
		}
	case "timer":
		if s.requireLogin() {
			s.out.printf("You will be logged out in %s\n", format.Countdown(s.sess.Remaining()))
		}
	default:
		s.out.printf(msgUnknownCommand+"\n", cmd)
	}
	return false
}

func (s *Shell) login(args []string) {
	if len(args) != 2 {
		s.out.println("usage: login <user> <pin>")
		return
	}
	pin, err := bank.ParsePIN(args[1])
	if err != nil {
		s.out.println(msgBadLogin)
		return
	}
	acct, err := s.sess.Login(args[0], pin)
	if err != nil {
		s.record(args[0], activity.ActionLoginFailed, "", "")
		s.out.println(msgBadLogin)
		return
	}
	s.record(acct.Username, activity.ActionLogin, "", "")
	s.out.printf("Welcome, %s\n", view.FirstName(acct.Owner))
	s.render()
}

func (s *Shell) transfer(args []string) {
	if !s.requireLogin() {
		return
	}
	if len(args) != 2 {
		s.out.println("usage: transfer <to> <amount>")
		return
	}
	amount, err := bank.ParseAmount(args[1])
	if err != nil {
		s.out.println(msgBadTransfer)
		return
	}
	r, err := s.engine.Transfer(s.sess, args[0], amount)
	if err != nil {
		s.out.println(msgBadTransfer)
		return
	}
	s.record(r.From, activity.ActionTransfer, "to "+r.To+" "+r.Amount.StringFixed(2), r.Ref.String())
	s.render()
}

func (s *Shell) loan(args []string) {
	if !s.requireLogin() {
		return
	}
	if len(args) != 1 {
		s.out.println("usage: loan <amount>")
		return
	}
	amount, err := bank.ParseAmount(args[0])
	if err != nil {
		s.out.println(msgBadLoan)
		return
	}
	ticket, err := s.engine.RequestLoan(s.sess, amount)
	switch {
	case errors.Is(err, bank.ErrLoanPending):
		s.out.println(msgLoanPending)
	case err != nil:
		s.out.println(msgBadLoan)
	default:
		s.record(ticket.Username, activity.ActionLoanAccepted, ticket.Amount.StringFixed(2), ticket.Ref.String())
		s.loanApproved(ticket)
	}
}

// loanApproved reports an accepted loan in the borrower's currency. The
// borrower is looked up by ticket, since the session may already have ended.
func (s *Shell) loanApproved(t bank.LoanTicket) {
	acct, ok := s.dir.Find(t.Username)
	if !ok {
		s.out.printf("Loan of %s approved\n", t.Amount.StringFixed(2))
		return
	}
	s.out.printf("Loan of %s approved, arriving at %s\n",
		s.fmt.Currency(t.Amount, acct.Locale, acct.Currency),
		s.fmt.DateTime(t.DueAt, acct.Locale))
}

func (s *Shell) close(args []string) {
	if !s.requireLogin() {
		return
	}
	if len(args) != 2 {
		s.out.println("usage: close <user> <pin>")
		return
	}
	pin, err := bank.ParsePIN(args[1])
	if err != nil {
		s.out.println(msgBadClose)
		return
	}
	if err := s.engine.CloseAccount(s.sess, args[0], pin); err != nil {
		s.out.println(msgBadClose)
		return
	}
	s.record(args[0], activity.ActionClose, "", "")
	s.out.println(msgAccountClosed)
	s.out.println(msgLoggedOut)
}

func (s *Shell) requireLogin() bool {
	if s.sess.State() == session.LoggedIn {
		return true
	}
	s.out.println(msgLoggedOut)
	return false
}

func (s *Shell) render() {
	acct, err := s.sess.Account()
	if err != nil {
		s.logger.Debug("nothing to render", "err", err)
		return
	}
	ov := view.Build(acct, s.sess.Sorted(), s.clock.Now())
	s.out.print(Render(s.fmt, ov))
}

func (s *Shell) expired(username string) {
	s.logger.Debug("countdown reached zero", "username", username)
	s.record(username, activity.ActionExpired, "", "")
	s.out.println("")
	s.out.println(msgLoggedOut)
}

func (s *Shell) loanCredited(t bank.LoanTicket) {
	s.record(t.Username, activity.ActionLoanCredited, t.Amount.StringFixed(2), t.Ref.String())
	if s.sess.Username() != t.Username {
		return
	}
	s.out.println("")
	s.render()
}

func (s *Shell) record(username string, action activity.Action, details, ref string) {
	s.activity.Record(activity.Entry{
		Timestamp: s.clock.Now(),
		Username:  username,
		Action:    action,
		Details:   details,
		Ref:       ref,
	})
}

func (s *Shell) shutdown() {
	s.engine.Stop()
	if s.sess.State() == session.LoggedIn {
		_ = s.sess.Logout()
	}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) print(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = io.WriteString(w.w, s)
}

func (w *syncWriter) println(s string) { w.print(s + "\n") }

func (w *syncWriter) printf(format string, args ...any) { w.print(fmt.Sprintf(format, args...)) }
