package financing

import "time"

// Installment is one due payment of a schedule.
type Installment struct {
	Number  int
	DueDate time.Time
	Amount  int64
}

// Schedule lays the quote's balance out over its periods starting one period
// after start. Each installment is the per-period payment capped at what is
// still owed; the last one absorbs any remainder so the amounts always sum
// to the balance. The schedule ends early rather than list an installment of
// zero.
func Schedule(start time.Time, q Quote) []Installment {
	if q.Periods <= 0 || q.BalanceToFinance <= 0 {
		return nil
	}

	out := make([]Installment, 0, q.Periods)
	remaining := q.BalanceToFinance
	due := start
	for i := 1; i <= q.Periods && remaining > 0; i++ {
		due = NextDue(due, q.Frequency)
		amount := q.PerPeriodPayment
		if amount > remaining || i == q.Periods {
			amount = remaining
		}
		remaining -= amount
		out = append(out, Installment{Number: i, DueDate: due, Amount: amount})
	}
	return out
}
