package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/budgetbuddy/backend/internal/calculator"
	"github.com/budgetbuddy/backend/internal/ledger"
	"github.com/budgetbuddy/backend/internal/models"
	"github.com/budgetbuddy/backend/internal/money"
)

const timeLayout = "2006-01-02 15:04"

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func stamp(unix int64) string {
	return time.Unix(unix, 0).Format(timeLayout)
}

// entryStatus describes an entry from self's point of view.
func entryStatus(e models.LedgerEntry) string {
	switch {
	case e.NetAmount > 0:
		return "owes you"
	case e.NetAmount < 0:
		return "you owe"
	default:
		return "settled"
	}
}

func renderEntries(w *strings.Builder, entries []models.LedgerEntry, code string) {
	if len(entries) == 0 {
		w.WriteString("_No balances._\n")
		return
	}
	w.WriteString("| Counterparty | Status | Amount | Updated |\n")
	w.WriteString("|:---|:---|---:|:---|\n")
	for _, e := range entries {
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			cell(e.Counterparty), entryStatus(e), money.Format(abs(e.NetAmount), code), stamp(e.LastUpdatedAt))
	}
}

func renderSummary(w *strings.Builder, s calculator.Summary, code string) {
	w.WriteString("| | Amount |\n")
	w.WriteString("|:---|---:|\n")
	fmt.Fprintf(w, "| You owe | %s |\n", money.Format(s.TotalOwedBySelf, code))
	fmt.Fprintf(w, "| You are owed | %s |\n", money.Format(s.TotalOwedToSelf, code))
	fmt.Fprintf(w, "| **Net** | **%s** |\n", money.Format(s.Net, code))
	fmt.Fprintf(w, "\n%d outstanding balance(s).\n", s.Outstanding)
}

func renderExpense(w *strings.Builder, e models.SharedExpense, code string) {
	fmt.Fprintf(w, "**%s**: %s paid by %s, split %d way(s) at %s each.\n",
		cell(e.Title), money.Format(e.TotalAmount, code), e.Payer, len(e.Participants),
		money.Format(calculator.Share(e), code))
}

func renderSettlement(w *strings.Builder, e models.SettlementEvent, code string) {
	switch e.Direction {
	case models.DirectionPaid:
		fmt.Fprintf(w, "You paid %s %s.\n", e.Counterparty, money.Format(e.Amount, code))
	default:
		fmt.Fprintf(w, "%s paid you %s.\n", e.Counterparty, money.Format(e.Amount, code))
	}
}

func renderHistory(w *strings.Builder, h *ledger.History, code string) {
	w.WriteString("## Shared expenses\n\n")
	if len(h.Expenses) == 0 {
		w.WriteString("_None._\n")
	} else {
		w.WriteString("| Date | Title | Paid by | Participants | Total | Share |\n")
		w.WriteString("|:---|:---|:---|:---|---:|---:|\n")
		for _, e := range h.Expenses {
			fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
				stamp(e.CreatedAt), cell(e.Title), cell(e.Payer), cell(strings.Join(e.Participants, ", ")),
				money.Format(e.TotalAmount, code), money.Format(calculator.Share(e), code))
		}
	}

	w.WriteString("\n## Settlements\n\n")
	if len(h.Settlements) == 0 {
		w.WriteString("_None._\n")
		return
	}
	w.WriteString("| Date | Counterparty | Direction | Amount |\n")
	w.WriteString("|:---|:---|:---|---:|\n")
	for _, e := range h.Settlements {
		fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
			stamp(e.Timestamp), cell(e.Counterparty), e.Direction, money.Format(e.Amount, code))
	}
}

func renderAudit(w *strings.Builder, found []ledger.Discrepancy, code string) {
	if len(found) == 0 {
		w.WriteString("Ledger is consistent with its history.\n")
		return
	}
	fmt.Fprintf(w, "**%d discrepancy(ies) found.**\n\n", len(found))
	w.WriteString("| Counterparty | Live | Replayed |\n")
	w.WriteString("|:---|---:|---:|\n")
	for _, d := range found {
		fmt.Fprintf(w, "| %s | %s | %s |\n", cell(d.Counterparty), money.Format(d.Live, code), money.Format(d.Replayed, code))
	}
}

func renderFriends(w *strings.Builder, participants []models.Participant) {
	if len(participants) == 0 {
		w.WriteString("_No friends yet._\n")
		return
	}
	w.WriteString("| ID | Name | Since |\n")
	w.WriteString("|:---|:---|:---|\n")
	for _, p := range participants {
		fmt.Fprintf(w, "| %s | %s | %s |\n", cell(p.ID), cell(p.DisplayName), stamp(p.CreatedAt))
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
