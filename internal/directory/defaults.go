package directory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bankist-dev/bankist/internal/model"
)

// DefaultAccounts returns the demo accounts the bank starts with.
func DefaultAccounts() []model.Account {
	return []model.Account{
		{
			Owner:        "Jonas Schmedtmann",
			PIN:          1111,
			InterestRate: decimal.RequireFromString("1.2"),
			Currency:     "EUR",
			Locale:       "pt-PT",
			Movements: movements(
				"200", "2019-11-18T21:31:17.178Z",
				"455.23", "2019-12-23T07:42:02.383Z",
				"-306.5", "2020-01-28T09:15:04.904Z",
				"25000", "2024-04-01T10:17:24.185Z",
				"-642.21", "2024-05-08T14:11:59.604Z",
				"-133.9", "2024-05-27T17:01:17.194Z",
				"79.97", "2024-06-17T23:36:17.929Z",
				"1300", "2024-06-18T10:51:36.790Z",
				"100", "2024-06-19T14:34:28.181Z",
				"500", "2024-06-20T11:34:28.181Z",
			),
		},
		{
			Owner:        "Jessica Davis",
			PIN:          2222,
			InterestRate: decimal.RequireFromString("1.5"),
			Currency:     "USD",
			Locale:       "en-US",
			Movements: movements(
				"5000", "2019-11-01T13:15:33.035Z",
				"3400", "2019-11-30T09:48:16.867Z",
				"-150", "2019-12-25T06:04:23.907Z",
				"-790", "2020-01-25T14:18:46.235Z",
				"-3210", "2022-02-05T16:33:06.386Z",
				"-1000", "2022-04-10T14:43:26.374Z",
				"8500", "2024-06-17T18:49:59.371Z",
				"-30", "2024-06-18T12:01:20.894Z",
				"600", "2024-06-19T14:34:28.181Z",
				"-400", "2024-06-20T12:34:28.181Z",
			),
		},
	}
}

// movements builds a movement list from amount/date pairs.
func movements(pairs ...string) []model.Movement {
	out := make([]model.Movement, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		date, err := time.Parse(time.RFC3339Nano, pairs[i+1])
		if err != nil {
			panic(err)
		}
		out = append(out, model.Movement{
			Amount: decimal.RequireFromString(pairs[i]),
			Date:   date,
		})
	}
	return out
}
