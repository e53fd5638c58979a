package ledger

import (
	"fmt"

	"github.com/courtside/platform/internal/domain"
)

// ReplayResult is the outcome of replaying a booking's status history.
type ReplayResult struct {
	Steps       int                  `json:"steps"`
	FinalStatus domain.BookingStatus `json:"final_status"`
	Invariants  []InvariantCheck     `json:"invariants"`
	AllPassed   bool                 `json:"all_passed"`
}

// InvariantCheck records a single invariant validation.
type InvariantCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// ReplayHistory walks a status history (oldest first) through the status
// machine and checks it against the booking's current row.
//
// Invariants:
//  1. origin: the first entry is nil -> pending
//  2. legal edges: every later entry follows CanTransition from the previous status
//  3. chain: each entry's from_status equals the previous entry's to_status
//  4. parity: the replayed status equals the booking's stored status
func ReplayHistory(b *domain.Booking, history []domain.StatusChange) ReplayResult {
	res := ReplayResult{Steps: len(history)}

	origin := InvariantCheck{Name: "origin", Passed: true}
	legal := InvariantCheck{Name: "legal_edges", Passed: true}
	chain := InvariantCheck{Name: "chain", Passed: true}

	var status domain.BookingStatus
	for i, c := range history {
		if i == 0 {
			if c.FromStatus != nil || c.ToStatus != domain.StatusPending {
				origin.Passed = false
				origin.Detail = fmt.Sprintf("history starts with %s", describe(c))
			}
			status = c.ToStatus
			continue
		}

		if c.FromStatus == nil || *c.FromStatus != status {
			if chain.Passed {
				chain.Passed = false
				chain.Detail = fmt.Sprintf("step %d: %s does not continue from %s", i, describe(c), status)
			}
		}
		if !domain.CanTransition(status, c.ToStatus) {
			if legal.Passed {
				legal.Passed = false
				legal.Detail = fmt.Sprintf("step %d: %s -> %s is not a legal transition", i, status, c.ToStatus)
			}
		}
		status = c.ToStatus
	}

	if len(history) == 0 {
		origin.Passed = false
		origin.Detail = "no history recorded"
	}

	parity := InvariantCheck{Name: "parity", Passed: status == b.Status}
	if !parity.Passed {
		parity.Detail = fmt.Sprintf("replayed %q, stored %q", status, b.Status)
	}

	res.FinalStatus = status
	res.Invariants = []InvariantCheck{origin, legal, chain, parity}
	res.AllPassed = origin.Passed && legal.Passed && chain.Passed && parity.Passed
	return res
}

func describe(c domain.StatusChange) string {
	from := "nil"
	if c.FromStatus != nil {
		from = string(*c.FromStatus)
	}
	return from + " -> " + string(c.ToStatus)
}
