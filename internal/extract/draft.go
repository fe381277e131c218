package extract

import (
	"time"

	"github.com/deciofranchini-oss/objetivo/internal/core"
)

// lateDayThreshold is the day of the month after which a pensao
// payment counts as late.
const lateDayThreshold = 5

// DraftTransaction turns a guess into a pre-filled transaction for the
// user to review. Missing fields get defaults: today's date and a zero
// amount. A pensao document is a reimbursement from the father, so it
// becomes RECEIVED with the late flag set when the payment day is past
// the due threshold; everything else is something the user paid.
func DraftTransaction(g Guess, now time.Time) core.Transaction {
	date := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if g.Date != nil {
		date = *g.Date
	}

	var amount core.Money
	if g.Amount != nil {
		amount = *g.Amount
	}

	tx := core.Transaction{
		Type:        core.TxPaid,
		CategoryKey: g.CategoryKey,
		Party:       "me",
		Date:        date,
		Amount:      amount,
		Notes:       g.Summary,
		Tags:        g.CategoryKey,
	}

	if g.CategoryKey == core.CategoryPensao {
		tx.Type = core.TxReceived
		tx.Party = "father"
		tx.IsLate = date.Day() > lateDayThreshold
	}

	tx.Normalize()
	return tx
}
