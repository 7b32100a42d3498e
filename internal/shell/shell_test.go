package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankist-dev/bankist/internal/activity"
	"github.com/bankist-dev/bankist/internal/clock"
	"github.com/bankist-dev/bankist/internal/config"
	"github.com/bankist-dev/bankist/internal/directory"
	"github.com/bankist-dev/bankist/internal/session"
)

var epoch = time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)

type fixture struct {
	sh  *Shell
	out *bytes.Buffer
	clk *clock.Manual
	dir *directory.Directory
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dir, err := directory.New(directory.DefaultAccounts())
	require.NoError(t, err)
	clk := clock.NewManual(epoch)
	out := &bytes.Buffer{}
	return &fixture{
		sh:  New(dir, clk, config.Default(), out, nil),
		out: out,
		clk: clk,
		dir: dir,
	}
}

// take returns and clears everything written so far.
func (f *fixture) take() string {
	s := f.out.String()
	f.out.Reset()
	return s
}

func TestLogin(t *testing.T) {
	f := setup(t)
	f.sh.Exec("login jd 2222")
	out := f.take()

	assert.Contains(t, out, "Welcome, Jessica")
	assert.Contains(t, out, "Current balance (as of 06/20/2024, 12:00): 11,920.00 USD")
	assert.Contains(t, out, "In 17,500.00 USD  Out 5,580.00 USD  Interest 262.50 USD")
	assert.Contains(t, out, "WITHDRAWAL")
	assert.Less(t, strings.Index(out, "YESTERDAY"), strings.Index(out, "TODAY"), "newest first")
	assert.Equal(t, session.LoggedIn, f.sh.Session().State())
}

func TestLoginFailures(t *testing.T) {
	for _, line := range []string{"login jd 1111", "login zz 2222", "login jd abc", "login jd"} {
		f := setup(t)
		f.sh.Exec(line)
		out := f.take()
		if line == "login jd" {
			assert.Contains(t, out, "usage")
		} else {
			assert.Contains(t, out, msgBadLogin, line)
		}
		assert.Equal(t, session.LoggedOut, f.sh.Session().State(), line)
	}
}

func TestRequiresLogin(t *testing.T) {
	for _, line := range []string{"transfer js 10", "loan 100", "close jd 2222", "sort", "show", "timer"} {
		f := setup(t)
		f.sh.Exec(line)
		assert.Equal(t, msgLoggedOut+"\n", f.take(), line)
	}
}

func TestTransfer(t *testing.T) {
	f := setup(t)
	f.sh.Exec("login jd 2222")
	f.take()

	f.sh.Exec("transfer js 100")
	assert.Contains(t, f.take(), "11,820.00 USD")

	for _, line := range []string{"transfer js abc", "transfer js 1e400000000", "transfer js 0", "transfer jd 5", "transfer zz 5", "transfer js 999999"} {
		f.sh.Exec(line)
		assert.Equal(t, msgBadTransfer+"\n", f.take(), line)
	}
}

func TestLoan(t *testing.T) {
	f := setup(t)
	f.sh.Exec("login jd 2222")
	f.take()

	f.sh.Exec("loan 100")
	assert.Contains(t, f.take(), "Loan of 100.00 USD approved, arriving at 06/20/2024, 12:00")

	f.sh.Exec("loan 100")
	assert.Equal(t, msgLoanPending+"\n", f.take())

	f.clk.Advance(2500 * time.Millisecond)
	assert.Contains(t, f.take(), "12,020.00 USD", "credit re-renders the account")

	f.sh.Exec("loan 1000000")
	assert.Equal(t, msgBadLoan+"\n", f.take())
	f.sh.Exec("loan lots")
	assert.Equal(t, msgBadLoan+"\n", f.take())
	f.sh.Exec("loan 1e-400000000")
	assert.Equal(t, msgBadLoan+"\n", f.take())
}

func TestLoanApprovedAfterSessionEnds(t *testing.T) {
	f := setup(t)
	f.sh.Exec("login jd 2222")
	f.take()
	ticket, err := f.sh.engine.RequestLoan(f.sh.Session(), decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, f.sh.Session().Logout())

	f.sh.loanApproved(ticket)
	assert.Equal(t, "Loan of 100.00 USD approved, arriving at 06/20/2024, 12:00\n", f.take())
}

func TestLoanApprovedForClosedAccount(t *testing.T) {
	f := setup(t)
	f.sh.Exec("login jd 2222")
	ticket, err := f.sh.engine.RequestLoan(f.sh.Session(), decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, f.sh.engine.CloseAccount(f.sh.Session(), "jd", 2222))
	f.take()

	f.sh.loanApproved(ticket)
	assert.Equal(t, "Loan of 100.00 approved\n", f.take())
}

func TestLoanCreditAfterLogoutIsQuiet(t *testing.T) {
	f := setup(t)
	f.sh.Exec("login jd 2222")
	f.sh.Exec("loan 100")
	f.sh.Exec("logout")
	f.take()

	f.clk.Advance(2500 * time.Millisecond)
	assert.Empty(t, f.take())

	acct, ok := f.dir.Find("jd")
	require.True(t, ok)
	assert.Len(t, acct.Movements, 11)
}

func TestTimerAndExpiry(t *testing.T) {
	f := setup(t)
	f.sh.Exec("login js 1111")
	f.take()

	f.sh.Exec("timer")
	assert.Equal(t, "You will be logged out in 05:00\n", f.take())

	f.clk.Advance(61 * time.Second)
	f.sh.Exec("timer")
	assert.Equal(t, "You will be logged out in 03:59\n", f.take())

	f.clk.Advance(239 * time.Second)
	assert.Contains(t, f.take(), msgLoggedOut)
	assert.Equal(t, session.LoggedOut, f.sh.Session().State())
}

func TestSort(t *testing.T) {
	f := setup(t)
	f.sh.Exec("login jd 2222")
	f.take()

	f.sh.Exec("sort")
	out := f.take()
	assert.Contains(t, out, "Sorted by amount")
	assert.Less(t, strings.Index(out, "8,500.00 USD"), strings.Index(out, "-3,210.00 USD"), "largest printed first")

	f.sh.Exec("sort")
	assert.NotContains(t, f.take(), "Sorted by amount")
}

func TestClose(t *testing.T) {
	f := setup(t)
	f.sh.Exec("login jd 2222")
	f.take()

	f.sh.Exec("close js 1111")
	assert.Equal(t, msgBadClose+"\n", f.take())

	f.sh.Exec("close jd 2222")
	assert.Equal(t, msgAccountClosed+"\n"+msgLoggedOut+"\n", f.take())
	assert.Equal(t, -1, f.dir.Index("jd"))
}

func TestUnknownCommand(t *testing.T) {
	f := setup(t)
	assert.False(t, f.sh.Exec("dance"))
	assert.Contains(t, f.take(), `Unknown command "dance"`)
	assert.False(t, f.sh.Exec("   "))
	assert.True(t, f.sh.Exec("QUIT"))
}

func TestRun(t *testing.T) {
	f := setup(t)
	in := strings.NewReader("help\nlogin jd 2222\nshow\nquit\nlogin js 1111\n")

	require.NoError(t, f.sh.Run(context.Background(), in))
	out := f.take()
	assert.True(t, strings.HasPrefix(out, msgLoggedOut+"\n"))
	assert.Contains(t, out, "transfer <to> <amount>")
	assert.Contains(t, out, "Welcome, Jessica")
	assert.NotContains(t, out, "Welcome, Jonas", "input after quit is ignored")
	assert.Equal(t, session.LoggedOut, f.sh.Session().State())
	assert.Equal(t, 0, f.clk.Pending())
}

func TestRunCancelled(t *testing.T) {
	f := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.sh.Run(ctx, strings.NewReader("login jd 2222\n"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, f.take(), "Welcome")
}

func TestRecordActivity(t *testing.T) {
	f := setup(t)
	path := filepath.Join(t.TempDir(), "activity.csv")
	f.sh.RecordActivity(activity.NewRecorder(path, nil))

	f.sh.Exec("login jd 1234")
	f.sh.Exec("login jd 2222")
	f.sh.Exec("transfer js 25")
	f.sh.Exec("loan 100")
	f.clk.Advance(2500 * time.Millisecond)
	f.sh.Exec("close jd 2222")

	entries, err := activity.Read(path)
	require.NoError(t, err)
	actions := make([]activity.Action, len(entries))
	for i, e := range entries {
		actions[i] = e.Action
	}
	assert.Equal(t, []activity.Action{
		activity.ActionLoginFailed,
		activity.ActionLogin,
		activity.ActionTransfer,
		activity.ActionLoanAccepted,
		activity.ActionLoanCredited,
		activity.ActionClose,
	}, actions)
	assert.Equal(t, "to js 25.00", entries[2].Details)
	assert.NotEmpty(t, entries[2].Ref)
	assert.Equal(t, entries[3].Ref, entries[4].Ref)
	assert.Equal(t, epoch.Add(2500*time.Millisecond), entries[4].Timestamp)
}
