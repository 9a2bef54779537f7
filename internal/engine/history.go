package engine

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/pi22by7/sap-analytics-platform/internal/config"
	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

const (
	recordReceipt = "E"
	recordInvoice = "Q"
)

// Invoice amounts drift from the receipt amount by tax/fee variance, capped
// just under two percent.
const invoiceNoiseCap = 0.019

// Goods receipt / invoice history (EKBE). Every receipt carries a pairing
// id; its invoice, when generated, shares it.
type historySet struct {
	lineIdx    []int
	poID       []string
	lineNo     []int64
	recordType []string
	docNo      []string
	pairingID  []string
	posting    []time.Time
	qty        []int64
	amount     []float64
	actual     []time.Time
	actualOK   []bool
	issue      []bool
	respDays   []int64
}

// receiptParts draws how many partial deliveries a line gets, capped by the
// line quantity so every receipt moves at least one unit.
func receiptParts(r *rand.Rand, qty int64) int {
	parts := 1
	roll := r.Float64()
	switch {
	case roll < 0.05:
		parts = 3
	case roll < 0.20:
		parts = 2
	}
	if int64(parts) > qty {
		parts = int(qty)
	}
	return parts
}

// splitQuantity partitions qty into parts positive chunks, first chunks
// drawn around an even share of the remainder.
func splitQuantity(r *rand.Rand, qty int64, parts int) []int64 {
	out := make([]int64, 0, parts)
	remaining := qty
	for p := parts; p > 1; p-- {
		share := remaining / int64(p)
		chunk := int64(math.Round(float64(share) * (0.8 + r.Float64()*0.4)))
		if chunk < 1 {
			chunk = 1
		}
		if max := remaining - int64(p-1); chunk > max {
			chunk = max
		}
		out = append(out, chunk)
		remaining -= chunk
	}
	out = append(out, remaining)
	return out
}

// lateProbability is the per-receipt chance of a late delivery: the base
// rate shifted by the vendor's persistent bias and by lead time (shorter
// lead, more late). The lead-time term is centered so the dataset-wide
// rate converges to the configured value.
func lateProbability(cfg *config.Config, perfBias float64, leadDays int) float64 {
	span := float64(cfg.LeadTimeMaxDays - cfg.LeadTimeMinDays)
	shortness := 0.5
	if span > 0 {
		shortness = 1 - float64(leadDays-cfg.LeadTimeMinDays)/span
	}
	p := cfg.DeliveryLateRate + perfBias*0.05 + (shortness-0.5)*cfg.EarlyDeliveryBias
	return clampFloat(p, 0.05, 0.95)
}

func delayDays(r *rand.Rand, bandCum []float64) int {
	switch weightedIndex(r, bandCum) {
	case 0:
		return randIntBetween(r, 1, 7)
	case 1:
		return randIntBetween(r, 8, 14)
	default:
		return randIntBetween(r, 15, 30)
	}
}

func generateHistory(cfg *config.Config, r *rand.Rand, lines *lineSet, headers *headerSet, vendors *vendorSet) *historySet {
	h := &historySet{}
	bandCum := cumsum(cfg.DelayBandProbs[:])
	pairSeq := 0

	for li := range lines.poID {
		hi := lines.headerIdx[li]
		docDate := headers.docDate[hi]
		expected := lines.expected[li]
		bias := vendors.perfBias[headers.vendorIdx[hi]]
		lead := daysBetween(docDate, expected)

		parts := receiptParts(r, lines.qty[li])
		qtys := splitQuantity(r, lines.qty[li], parts)

		for _, qty := range qtys {
			lateProb := lateProbability(cfg, bias, lead)
			var offset int
			if r.Float64() < lateProb {
				offset = delayDays(r, bandCum)
			} else {
				offset = randIntBetween(r, -5, 0)
			}
			actual := expected.AddDate(0, 0, offset)
			if actual.Before(docDate) {
				actual = docDate
			}

			pairSeq++
			pairing := fmt.Sprintf("GRP%09d", pairSeq)
			amount := float64(qty) * lines.unitPrice[li]

			h.lineIdx = append(h.lineIdx, li)
			h.poID = append(h.poID, lines.poID[li])
			h.lineNo = append(h.lineNo, lines.lineNo[li])
			h.recordType = append(h.recordType, recordReceipt)
			h.pairingID = append(h.pairingID, pairing)
			h.posting = append(h.posting, actual)
			h.qty = append(h.qty, qty)
			h.amount = append(h.amount, amount)
			h.actual = append(h.actual, actual)
			h.actualOK = append(h.actualOK, true)
			h.issue = append(h.issue, r.Float64() < cfg.IssueRate)
			h.respDays = append(h.respDays, responseDays(r, bias))

			if r.Float64() < cfg.InvoiceRate {
				lag := randIntBetween(r, cfg.InvoiceLagMinDays, cfg.InvoiceLagMaxDays)
				noise := clampFloat(r.NormFloat64()*0.01, -invoiceNoiseCap, invoiceNoiseCap)

				h.lineIdx = append(h.lineIdx, li)
				h.poID = append(h.poID, lines.poID[li])
				h.lineNo = append(h.lineNo, lines.lineNo[li])
				h.recordType = append(h.recordType, recordInvoice)
				h.pairingID = append(h.pairingID, pairing)
				h.posting = append(h.posting, actual.AddDate(0, 0, lag))
				h.qty = append(h.qty, qty)
				h.amount = append(h.amount, math.Round(amount*(1+noise)*100)/100)
				h.actual = append(h.actual, time.Time{})
				h.actualOK = append(h.actualOK, false)
				h.issue = append(h.issue, false)
				h.respDays = append(h.respDays, responseDays(r, bias))
			}
		}
	}

	h.sortAndNumber()
	return h
}

func responseDays(r *rand.Rand, bias float64) int64 {
	d := int64(randIntBetween(r, 1, 7)) + int64(bias*2)
	if d < 1 {
		d = 1
	}
	if d > 10 {
		d = 10
	}
	return d
}

// sortAndNumber orders records by document, line and posting date, then
// assigns sequential accounting document numbers.
func (h *historySet) sortAndNumber() {
	n := len(h.poID)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := order[a], order[b]
		if h.poID[ia] != h.poID[ib] {
			return h.poID[ia] < h.poID[ib]
		}
		if h.lineNo[ia] != h.lineNo[ib] {
			return h.lineNo[ia] < h.lineNo[ib]
		}
		return h.posting[ia].Before(h.posting[ib])
	})

	out := &historySet{
		lineIdx:    make([]int, n),
		poID:       make([]string, n),
		lineNo:     make([]int64, n),
		recordType: make([]string, n),
		docNo:      make([]string, n),
		pairingID:  make([]string, n),
		posting:    make([]time.Time, n),
		qty:        make([]int64, n),
		amount:     make([]float64, n),
		actual:     make([]time.Time, n),
		actualOK:   make([]bool, n),
		issue:      make([]bool, n),
		respDays:   make([]int64, n),
	}
	for i, src := range order {
		out.lineIdx[i] = h.lineIdx[src]
		out.poID[i] = h.poID[src]
		out.lineNo[i] = h.lineNo[src]
		out.recordType[i] = h.recordType[src]
		out.docNo[i] = fmt.Sprintf("5%09d", i+1)
		out.pairingID[i] = h.pairingID[src]
		out.posting[i] = h.posting[src]
		out.qty[i] = h.qty[src]
		out.amount[i] = h.amount[src]
		out.actual[i] = h.actual[src]
		out.actualOK[i] = h.actualOK[src]
		out.issue[i] = h.issue[src]
		out.respDays[i] = h.respDays[src]
	}
	*h = *out
}

func (h *historySet) toTable() (*table.Table, error) {
	return table.New("EKBE",
		table.Column{Name: "EBELN", Type: table.String, Strings: h.poID},
		table.Column{Name: "EBELP", Type: table.Int64, Int64s: h.lineNo},
		table.Column{Name: "BEWTP", Type: table.String, Strings: h.recordType},
		table.Column{Name: "BUDAT", Type: table.Date, Dates: h.posting},
		table.Column{Name: "MENGE", Type: table.Int64, Int64s: h.qty},
		table.Column{Name: "DMBTR", Type: table.Float64, Float64s: h.amount},
		table.Column{Name: "BELNR", Type: table.String, Strings: h.docNo},
		table.Column{Name: "PAIRING_ID", Type: table.String, Strings: h.pairingID},
		table.Column{Name: "ACTUAL_DELIVERY_DATE", Type: table.Date, Dates: h.actual, Valid: h.actualOK},
		table.Column{Name: "HAS_ISSUE", Type: table.Bool, Bools: h.issue},
		table.Column{Name: "RESPONSE_DAYS", Type: table.Int64, Int64s: h.respDays},
	)
}
