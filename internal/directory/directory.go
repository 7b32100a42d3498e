// Package directory is the registry of accounts, keyed by the username
// derived from each owner's name.
package directory

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/ledger"
	"github.com/bankist-dev/bankist/internal/model"
)

var (
	ErrNotFound          = errors.New("account not found")
	ErrDuplicateUsername = errors.New("duplicate username")
)

// Username returns the lowercase initials of every word in owner.
// "Jonas Schmedtmann" -> "js"
func Username(owner string) string {
	var b strings.Builder
	for _, word := range strings.Fields(strings.ToLower(owner)) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
	}
	return b.String()
}

// BuildUsernames sets Username on every account from its Owner.
func BuildUsernames(accounts []model.Account) {
	for i := range accounts {
		accounts[i].Username = Username(accounts[i].Owner)
	}
}

// Directory holds the accounts in registration order. All methods are safe
// for concurrent use; callers only ever see copies.
type Directory struct {
	mu       sync.Mutex
	accounts []model.Account
}

// New builds a Directory from raw accounts, deriving usernames once.
// Two owners with the same initials are rejected.
func New(accounts []model.Account) (*Directory, error) {
	accts := make([]model.Account, len(accounts))
	for i, a := range accounts {
		accts[i] = a.Clone()
	}
	BuildUsernames(accts)

	seen := make(map[string]string, len(accts))
	for _, a := range accts {
		if other, ok := seen[a.Username]; ok {
			return nil, fmt.Errorf("%w %q: %q and %q", ErrDuplicateUsername, a.Username, other, a.Owner)
		}
		seen[a.Username] = a.Owner
	}
	return &Directory{accounts: accts}, nil
}

// All returns a copy of every account.
func (d *Directory) All() []model.Account {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.Account, len(d.accounts))
	for i, a := range d.accounts {
		out[i] = a.Clone()
	}
	return out
}

// Len returns the number of registered accounts.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.accounts)
}

// Find returns the account with the given username.
func (d *Directory) Find(username string) (model.Account, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.index(username)
	if i < 0 {
		return model.Account{}, false
	}
	return d.accounts[i].Clone(), true
}

// Index returns the position of username, or -1.
func (d *Directory) Index(username string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.index(username)
}

// Exists reports whether username is registered.
func (d *Directory) Exists(username string) bool {
	return d.Index(username) >= 0
}

// Verify returns the account when both username and pin match.
func (d *Directory) Verify(username string, pin int) (model.Account, bool) {
	acct, ok := d.Find(username)
	if !ok || acct.PIN != pin {
		return model.Account{}, false
	}
	return acct, true
}

// Remove deletes username. It reports false and changes nothing when the
// username is unknown.
func (d *Directory) Remove(username string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.index(username)
	if i < 0 {
		return false
	}
	d.accounts = append(d.accounts[:i], d.accounts[i+1:]...)
	return true
}

// Append records a movement on username's account.
func (d *Directory) Append(username string, amount decimal.Decimal, at time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.index(username)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, username)
	}
	ledger.Append(&d.accounts[i], amount, at)
	return nil
}

func (d *Directory) index(username string) int {
	for i, a := range d.accounts {
		if a.Username == username {
			return i
		}
	}
	return -1
}
