package insight

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrJamesThe3rd/getrich/internal/summary"
)

type promptWriter struct {
	b        strings.Builder
	p        *message.Printer
	currency string
}

func (w *promptWriter) line(format string, args ...any) {
	w.p.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *promptWriter) money(d decimal.Decimal) string {
	return w.p.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2))) + " " + w.currency
}

func percent(rate decimal.Decimal) string {
	return rate.Shift(2).String() + "%"
}

// BuildPrompt renders the instruction sent to the model for s.
func BuildPrompt(s summary.Summary, opts Options) string {
	w := &promptWriter{
		p:        message.NewPrinter(opts.Locale),
		currency: opts.Currency,
	}

	w.line("Act as a high-level financial architect and business strategist for %s.", opts.BusinessName)
	w.line("Analyze the following business snapshot (all values are in %s):", opts.Currency)
	w.line("- Revenue (paid invoices): %s", w.money(s.PaidTotal))
	w.line("- Personal earnings (%s of paid invoices): %s", percent(opts.EarningRate), w.money(s.EarningsTotal))
	w.line("- Unpaid invoices: %d (total pending: %s)", s.UnpaidCount, w.money(s.UnpaidTotal))
	w.line("- VAT collected: %s", w.money(s.VATCollected))
	w.line("- Expenses: %s", w.money(s.ExpenseTotal))
	w.line("- Other income: %s", w.money(s.IncomeTotal))
	w.line("- Projects: %d (%d active)", s.ProjectCount, s.ActiveProjects)

	if len(s.Renewals) > 0 {
		w.line("Upcoming renewals:")

		for _, r := range s.Renewals {
			w.line("- %s renewal for project %q due %s", r.Kind, r.Project.Name, r.Due.Format(time.DateOnly))
		}
	}

	w.line("")
	w.line("Provide 3-5 strategic insights including:")
	w.line("1. Cash flow warnings or healthy trends.")
	w.line("2. Profitability analysis.")
	w.line("3. Renewal reminders for projects close to expiry.")
	w.line("4. Tax preparation advice (VAT, %s standard).", percent(opts.VATRate))
	w.line("")
	w.line("Respond in JSON as an array of objects with fields: title, content, type (suggestion|warning|tip).")

	return w.b.String()
}
