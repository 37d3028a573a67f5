package agentmarket

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/hupe1980/agentmarket/auction"
	"github.com/hupe1980/agentmarket/bank"
	"github.com/hupe1980/agentmarket/bidder"
	"github.com/hupe1980/agentmarket/coalition"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/logistics"
	"github.com/hupe1980/agentmarket/monitor"
	"github.com/hupe1980/agentmarket/regulator"
)

// BidderReport is the end-of-run figures of one bidder.
type BidderReport struct {
	bidder.Stats

	Balance   float64
	Available float64
	Points    int
	Fines     float64
}

// Report summarizes a finished run.
type Report struct {
	Auctions   auction.Summary
	Bidders    []BidderReport
	Deliveries int
	Violations int
	Flagged    []core.Address
	Coalitions int
}

// Report collects the figures of every spawned actor. Actor state is owned
// by the runners, so Report must only be called after Shutdown.
func (m *Market) Report() Report {
	var (
		r      Report
		ledger *bank.Ledger
		reg    *regulator.Regulator
	)

	m.each(func(a core.Actor) {
		switch a := a.(type) {
		case *auction.Auctioneer:
			s := a.Summary()
			r.Auctions.Created += s.Created
			r.Auctions.Won += s.Won
			r.Auctions.Failed += s.Failed
			r.Auctions.Accepted += s.Accepted
			r.Auctions.Rejected += s.Rejected
			r.Auctions.Settled += s.Settled
			r.Auctions.Unpaid += s.Unpaid
			r.Auctions.TotalVolume += s.TotalVolume
		case *bidder.Bidder:
			r.Bidders = append(r.Bidders, BidderReport{Stats: a.Stats()})
		case *bank.Bank:
			ledger = a.Ledger()
		case *regulator.Regulator:
			reg = a
			r.Violations += a.Journal().Len(regulator.StreamViolations)
		case *logistics.Logistics:
			r.Deliveries += len(a.Deliveries())
		case *monitor.Monitor:
			r.Flagged = append(r.Flagged, a.Flagged()...)
		case *coalition.Coordinator:
			r.Coalitions += len(a.Coalitions())
		}
	})

	for i := range r.Bidders {
		b := &r.Bidders[i]
		owner := core.Address(b.Name)

		if ledger != nil {
			b.Balance, b.Available, _ = ledger.Balance(owner)
		}

		if reg != nil {
			b.Points = reg.Points(owner)
			b.Fines = reg.Fines(owner)
		}
	}

	return r
}

// Render writes the report as tables.
func (r Report) Render(w io.Writer) {
	money := func(v float64) string { return fmt.Sprintf("%.2f", v) }

	auctions := tablewriter.NewWriter(w)
	auctions.SetHeader([]string{"Created", "Won", "Failed", "Bids accepted", "Bids rejected", "Settled", "Unpaid", "Volume"})
	auctions.Append([]string{
		strconv.Itoa(r.Auctions.Created),
		strconv.Itoa(r.Auctions.Won),
		strconv.Itoa(r.Auctions.Failed),
		strconv.Itoa(r.Auctions.Accepted),
		strconv.Itoa(r.Auctions.Rejected),
		strconv.Itoa(r.Auctions.Settled),
		strconv.Itoa(r.Auctions.Unpaid),
		money(r.Auctions.TotalVolume),
	})
	auctions.Render()

	bidders := tablewriter.NewWriter(w)
	bidders.SetHeader([]string{"Bidder", "Strategy", "Bids", "Won", "Spent", "Budget", "Balance", "Points", "Fines"})

	for _, b := range r.Bidders {
		bidders.Append([]string{
			b.Name,
			b.Kind,
			strconv.Itoa(b.Bids),
			strconv.Itoa(b.Won),
			money(b.Spent),
			money(b.Budget),
			money(b.Balance),
			strconv.Itoa(b.Points),
			money(b.Fines),
		})
	}

	bidders.Render()

	fmt.Fprintf(w, "deliveries: %d  violations: %d  flagged: %d  coalitions: %d\n",
		r.Deliveries, r.Violations, len(r.Flagged), r.Coalitions)
}
