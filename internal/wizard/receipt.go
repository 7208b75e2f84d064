package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
	"github.com/credisur/credisur/internal/financing"
)

// Receipt is the outcome of a confirmed credit. Nothing is persisted; the
// receipt is handed to the caller, which redirects to RedirectTo.
type Receipt struct {
	ID         string                  `json:"id"`
	SessionID  string                  `json:"sessionId"`
	CreatedAt  time.Time               `json:"createdAt"`
	Client     catalog.Client          `json:"client"`
	Items      []LineItem              `json:"items"`
	Quote      financing.Quote         `json:"quote"`
	Schedule   []financing.Installment `json:"schedule"`
	StartDate  time.Time               `json:"startDate"`
	Notes      string                  `json:"notes,omitempty"`
	RedirectTo string                  `json:"redirectTo"`
}

// Confirm closes the session and returns its receipt. It is only valid once,
// at the last step, with no transition in flight.
func (s *Session) Confirm() (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmed {
		return Receipt{}, ErrAlreadyConfirmed
	}
	if s.busy {
		return Receipt{}, ErrTransitionInFlight
	}
	if s.step != StepConfirm {
		return Receipt{}, ErrNotAtConfirm
	}
	client, ok := catalog.FindClient(s.clients, s.clientID)
	if !ok {
		return Receipt{}, ErrClientRequired
	}
	if len(s.lines) == 0 {
		return Receipt{}, ErrArticlesRequired
	}

	q := s.quote()
	r := Receipt{
		ID:         uuid.NewString(),
		SessionID:  s.id,
		CreatedAt:  s.now(),
		Client:     client,
		Items:      s.items(),
		Quote:      q,
		Schedule:   financing.Schedule(s.startDate, q),
		StartDate:  s.startDate,
		Notes:      s.notes,
		RedirectTo: s.redirect,
	}
	s.confirmed = true

	s.logger.Info("credit confirmed",
		zap.String("receipt_id", r.ID),
		zap.String("client_id", client.ID),
		zap.Int("items", len(r.Items)),
		zap.Int64("financed", q.TotalFinancedGross),
		zap.Int64("balance", q.BalanceToFinance),
		zap.Int("periods", q.Periods),
		zap.String("redirect", r.RedirectTo),
	)
	return r, nil
}

// FormatAmount renders whole currency units with dot thousands separators,
// e.g. "$ 1.210.000".
func FormatAmount(v int64) string {
	neg := v < 0
	mag := uint64(v)
	if neg {
		// -(v+1) stays in range for math.MinInt64.
		mag = uint64(-(v + 1)) + 1
	}
	digits := strconv.FormatUint(mag, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$ " + b.String()
	}
	return "$ " + b.String()
}

// ParseAmount reads an amount typed the way FormatAmount prints it. The
// currency sign, spaces and dot separators are ignored.
func ParseAmount(s string) (int64, error) {
	clean := strings.NewReplacer("$", "", ".", "", " ", "", "_", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// Markdown renders the receipt for display or notification.
func (r Receipt) Markdown() string {
	var b strings.Builder
	q := r.Quote

	fmt.Fprintf(&b, "# Credit confirmed\n\n")
	fmt.Fprintf(&b, "**Receipt:** `%s`  \n", r.ID)
	fmt.Fprintf(&b, "**Client:** %s (%s, DNI %s)  \n", r.Client.FullName(), r.Client.RiskTier, r.Client.NationalID)
	fmt.Fprintf(&b, "**Start date:** %s\n\n", r.StartDate.Format("2006-01-02"))

	b.WriteString("## Articles\n\n")
	b.WriteString("| Article | Qty | Cash | Financed |\n|---|---:|---:|---:|\n")
	for _, it := range r.Items {
		fmt.Fprintf(&b, "| %s | %d | %s | %s |\n",
			it.Article.Name, it.Quantity,
			FormatAmount(it.Article.CashPrice*int64(it.Quantity)),
			FormatAmount(it.UnitFinanced*int64(it.Quantity)))
	}

	b.WriteString("\n## Financing\n\n")
	fmt.Fprintf(&b, "- Plan: %d %s payments\n", q.Periods, strings.ToLower(string(q.Frequency)))
	fmt.Fprintf(&b, "- Cash total: %s\n", FormatAmount(q.TotalBase))
	fmt.Fprintf(&b, "- Financed total: %s\n", FormatAmount(q.TotalFinancedGross))
	fmt.Fprintf(&b, "- Down payment: %s\n", FormatAmount(q.DownPayment))
	fmt.Fprintf(&b, "- Balance: %s\n", FormatAmount(q.BalanceToFinance))
	fmt.Fprintf(&b, "- Per period: **%s**\n", FormatAmount(q.PerPeriodPayment))

	if len(r.Schedule) > 0 {
		b.WriteString("\n## Schedule\n\n| # | Due | Amount |\n|---:|---|---:|\n")
		for _, inst := range r.Schedule {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", inst.Number, inst.DueDate.Format("2006-01-02"), FormatAmount(inst.Amount))
		}
	}

	if r.Notes != "" {
		fmt.Fprintf(&b, "\n## Notes\n\n%s\n", r.Notes)
	}
	return b.String()
}
