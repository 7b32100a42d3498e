package bank

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankist-dev/bankist/internal/clock"
	"github.com/bankist-dev/bankist/internal/directory"
	"github.com/bankist-dev/bankist/internal/ledger"
	"github.com/bankist-dev/bankist/internal/session"
)

var epoch = time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)

type fixture struct {
	dir    *directory.Directory
	clk    *clock.Manual
	sess   *session.Session
	engine *Engine
}

func setup(t *testing.T, opts Options) *fixture {
	t.Helper()
	dir, err := directory.New(directory.DefaultAccounts())
	require.NoError(t, err)
	clk := clock.NewManual(epoch)
	return &fixture{
		dir:    dir,
		clk:    clk,
		sess:   session.New(dir, clk, session.Options{}),
		engine: New(dir, clk, opts),
	}
}

func (f *fixture) login(t *testing.T, username string, pin int) {
	t.Helper()
	_, err := f.sess.Login(username, pin)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, username string) string {
	t.Helper()
	acct, ok := f.dir.Find(username)
	require.True(t, ok)
	return ledger.Balance(acct).String()
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTransfer(t *testing.T) {
	f := setup(t, Options{})
	f.login(t, "js", 1111)

	r, err := f.engine.Transfer(f.sess, "jd", d("100"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, r.Ref)
	assert.Equal(t, "js", r.From)
	assert.Equal(t, "jd", r.To)
	assert.Equal(t, epoch, r.At)

	assert.Equal(t, "26452.59", f.balance(t, "js"))
	assert.Equal(t, "12020", f.balance(t, "jd"))

	js, _ := f.dir.Find("js")
	jd, _ := f.dir.Find("jd")
	last := func(n int) int { return n - 1 }
	assert.True(t, js.Movements[last(len(js.Movements))].Amount.Equal(d("-100")))
	assert.True(t, jd.Movements[last(len(jd.Movements))].Amount.Equal(d("100")))
	assert.Equal(t, js.Movements[last(len(js.Movements))].Date, jd.Movements[last(len(jd.Movements))].Date)
}

func TestTransferWholeBalance(t *testing.T) {
	f := setup(t, Options{})
	f.login(t, "jd", 2222)

	_, err := f.engine.Transfer(f.sess, "js", d("11920"))
	require.NoError(t, err)
	assert.Equal(t, "0", f.balance(t, "jd"))
}

func TestTransferRejected(t *testing.T) {
	tests := []struct {
		name   string
		to     string
		amount string
		reason error
	}{
		{"zero", "jd", "0", ErrInvalidAmount},
		{"negative", "jd", "-50", ErrInvalidAmount},
		{"unknown receiver", "zz", "10", ErrUnknownReceiver},
		{"empty receiver", "", "10", ErrUnknownReceiver},
		{"self", "js", "10", ErrSelfTransfer},
		{"more than balance", "jd", "30000", ErrInsufficientBalance},
		{"just over balance", "jd", "26552.60", ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, Options{})
			f.login(t, "js", 1111)
			before := f.dir.All()

			_, err := f.engine.Transfer(f.sess, tt.to, d(tt.amount))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrTransferRejected)
			assert.ErrorIs(t, err, tt.reason)
			assert.Equal(t, before, f.dir.All(), "rejected transfer must not mutate")
		})
	}
}

func TestTransferLoggedOut(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.Transfer(f.sess, "jd", d("10"))
	assert.ErrorIs(t, err, ErrTransferRejected)
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestTransferRestartsCountdown(t *testing.T) {
	f := setup(t, Options{})
	f.login(t, "js", 1111)
	f.clk.Advance(120 * time.Second)
	require.Equal(t, 180, f.sess.Remaining())

	_, err := f.engine.Transfer(f.sess, "jd", d("1"))
	require.NoError(t, err)
	assert.Equal(t, session.DefaultTimeoutTicks, f.sess.Remaining())

	_, err = f.engine.Transfer(f.sess, "jd", d("0"))
	require.Error(t, err)
	f.clk.Advance(time.Second)
	assert.Equal(t, session.DefaultTimeoutTicks-1, f.sess.Remaining(), "rejection does not restart")
}

func TestRequestLoan(t *testing.T) {
	var credited []LoanTicket
	f := setup(t, Options{OnLoanCredited: func(lt LoanTicket) { credited = append(credited, lt) }})
	f.login(t, "js", 1111)

	lt, err := f.engine.RequestLoan(f.sess, d("100"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, lt.Ref)
	assert.Equal(t, epoch.Add(DefaultLoanDelay), lt.DueAt)
	assert.True(t, f.engine.PendingLoan("js"))
	assert.Equal(t, "26552.59", f.balance(t, "js"), "credit is deferred")

	f.clk.Advance(2 * time.Second)
	assert.Equal(t, "26552.59", f.balance(t, "js"))

	f.clk.Advance(500 * time.Millisecond)
	assert.Equal(t, "26652.59", f.balance(t, "js"))
	assert.False(t, f.engine.PendingLoan("js"))
	require.Len(t, credited, 1)
	assert.Equal(t, lt.Ref, credited[0].Ref)

	acct, _ := f.dir.Find("js")
	lastMov := acct.Movements[len(acct.Movements)-1]
	assert.True(t, lastMov.Amount.Equal(d("100")))
	assert.Equal(t, epoch.Add(DefaultLoanDelay), lastMov.Date)
}

func TestRequestLoanFloorsAmount(t *testing.T) {
	f := setup(t, Options{})
	f.login(t, "js", 1111)

	lt, err := f.engine.RequestLoan(f.sess, d("250.99"))
	require.NoError(t, err)
	assert.Equal(t, "250", lt.Amount.String())
}

func TestRequestLoanThreshold(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		reason error
	}{
		{"exactly ten percent", "85000", nil},
		{"just over", "85001", ErrNoQualifyingDeposit},
		{"zero", "0", ErrInvalidAmount},
		{"floors to zero", "0.75", ErrInvalidAmount},
		{"negative", "-100", ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, Options{})
			f.login(t, "jd", 2222)

			_, err := f.engine.RequestLoan(f.sess, d(tt.amount))
			if tt.reason == nil {
				require.NoError(t, err)
				assert.Equal(t, 1+1, f.clk.Pending(), "countdown plus credit")
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLoanRejected)
			assert.ErrorIs(t, err, tt.reason)
			assert.False(t, f.engine.PendingLoan("jd"))
			assert.Equal(t, 1, f.clk.Pending(), "no deferred credit scheduled")
		})
	}
}

func TestRequestLoanCustomRatio(t *testing.T) {
	f := setup(t, Options{MinMovementRatio: 0.5, LoanDelay: time.Second})
	f.login(t, "jd", 2222)

	_, err := f.engine.RequestLoan(f.sess, d("17001"))
	assert.ErrorIs(t, err, ErrNoQualifyingDeposit)

	lt, err := f.engine.RequestLoan(f.sess, d("17000"))
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(time.Second), lt.DueAt)
}

func TestRequestLoanPending(t *testing.T) {
	f := setup(t, Options{})
	f.login(t, "js", 1111)

	_, err := f.engine.RequestLoan(f.sess, d("100"))
	require.NoError(t, err)
	_, err = f.engine.RequestLoan(f.sess, d("100"))
	assert.ErrorIs(t, err, ErrLoanPending)

	f.clk.Advance(DefaultLoanDelay)
	_, err = f.engine.RequestLoan(f.sess, d("100"))
	assert.NoError(t, err)
}

func TestLoanSurvivesLogout(t *testing.T) {
	f := setup(t, Options{})
	f.login(t, "js", 1111)

	_, err := f.engine.RequestLoan(f.sess, d("1000"))
	require.NoError(t, err)
	require.NoError(t, f.sess.Logout())

	f.clk.Advance(DefaultLoanDelay)
	assert.Equal(t, "27552.59", f.balance(t, "js"))
}

func TestLoanDroppedAfterClose(t *testing.T) {
	credited := 0
	f := setup(t, Options{OnLoanCredited: func(LoanTicket) { credited++ }})
	f.login(t, "jd", 2222)

	_, err := f.engine.RequestLoan(f.sess, d("1000"))
	require.NoError(t, err)
	require.NoError(t, f.engine.CloseAccount(f.sess, "jd", 2222))

	f.clk.Advance(DefaultLoanDelay)
	assert.Equal(t, 0, credited)
	assert.False(t, f.engine.PendingLoan("jd"))
	assert.Equal(t, 1, f.dir.Len())
}

func TestRequestLoanRestartsCountdown(t *testing.T) {
	f := setup(t, Options{})
	f.login(t, "js", 1111)
	f.clk.Advance(200 * time.Second)

	_, err := f.engine.RequestLoan(f.sess, d("100"))
	require.NoError(t, err)
	assert.Equal(t, session.DefaultTimeoutTicks, f.sess.Remaining())
}

func TestRequestLoanLoggedOut(t *testing.T) {
	f := setup(t, Options{})
	_, err := f.engine.RequestLoan(f.sess, d("100"))
	assert.ErrorIs(t, err, ErrLoanRejected)
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
	assert.Equal(t, 0, f.clk.Pending())
}

func TestCloseAccount(t *testing.T) {
	f := setup(t, Options{})
	f.login(t, "js", 1111)

	err := f.engine.CloseAccount(f.sess, "jd", 2222)
	assert.ErrorIs(t, err, session.ErrCloseRejected)
	assert.Equal(t, 2, f.dir.Len())

	require.NoError(t, f.engine.CloseAccount(f.sess, "js", 1111))
	_, ok := f.dir.Find("js")
	assert.False(t, ok)
	assert.Equal(t, session.LoggedOut, f.sess.State())

	f.login(t, "jd", 2222)
	_, err = f.engine.Transfer(f.sess, "js", d("10"))
	assert.ErrorIs(t, err, ErrUnknownReceiver)
}

func TestStopCancelsPendingLoans(t *testing.T) {
	f := setup(t, Options{})
	f.login(t, "js", 1111)
	_, err := f.engine.RequestLoan(f.sess, d("100"))
	require.NoError(t, err)

	f.engine.Stop()
	f.clk.Advance(time.Minute)
	assert.Equal(t, "26552.59", f.balance(t, "js"))
	assert.False(t, f.engine.PendingLoan("js"))
}

func TestBalanceMatchesMovementsAfterOperations(t *testing.T) {
	f := setup(t, Options{})
	f.login(t, "js", 1111)

	_, err := f.engine.Transfer(f.sess, "jd", d("500.5"))
	require.NoError(t, err)
	_, err = f.engine.RequestLoan(f.sess, d("2000"))
	require.NoError(t, err)
	_, err = f.engine.Transfer(f.sess, "jd", d("99999"))
	require.Error(t, err)
	f.clk.Advance(DefaultLoanDelay)

	for _, acct := range f.dir.All() {
		assert.Len(t, acct.Dates(), len(acct.Amounts()))
		sum := decimal.Zero
		for _, a := range acct.Amounts() {
			sum = sum.Add(a)
		}
		assert.True(t, sum.Equal(ledger.Balance(acct)), acct.Username)
	}
	assert.Equal(t, "28052.09", f.balance(t, "js"))
	assert.Equal(t, "12420.5", f.balance(t, "jd"))
}
