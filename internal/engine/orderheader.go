package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pi22by7/sap-analytics-platform/internal/config"
	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

const (
	docTypeStandard  = "NB"
	docTypeFramework = "FO"
)

// Purchase order headers (EKKO). docType starts as drawn here and may be
// forced to the standard code by the line stage's large-order rule before
// the table is emitted.
type headerSet struct {
	id          []string
	vendorIdx   []int
	vendorID    []string
	docType     []string
	companyCode []string
	currency    []string
	porg        []string
	pgroup      []string
	docDate     []time.Time
}

// seasonalDateCum builds the cumulative weight over every day of the
// horizon, with October-December boosted by the configured factor.
func seasonalDateCum(cfg *config.Config) ([]time.Time, []float64) {
	start, end := day(cfg.Start()), day(cfg.End())
	n := daysBetween(start, end) + 1
	days := make([]time.Time, n)
	weights := make([]float64, n)
	for i := 0; i < n; i++ {
		d := start.AddDate(0, 0, i)
		days[i] = d
		if d.Month() >= time.October {
			weights[i] = cfg.SeasonalityQ4Factor
		} else {
			weights[i] = 1.0
		}
	}
	return days, cumsum(weights)
}

func generateHeaders(cfg *config.Config, r *rand.Rand, vendors *vendorSet) (*headerSet, error) {
	n := cfg.NumPOs

	// Blocked vendors are excluded from the draw pool entirely.
	pool := make([]int, 0, len(vendors.id))
	poolWeights := make([]float64, 0, len(vendors.id))
	for i := range vendors.id {
		if !vendors.blocked[i] {
			pool = append(pool, i)
			poolWeights = append(poolWeights, vendors.spendWeight[i])
		}
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("no orderable vendors: all %d vendors are blocked", len(vendors.id))
	}
	poolCum := cumsum(poolWeights)

	days, dateCum := seasonalDateCum(cfg)
	currencyCum := cumsum(cfg.CurrencyWeights)

	h := &headerSet{
		id:          make([]string, n),
		vendorIdx:   make([]int, n),
		vendorID:    make([]string, n),
		docType:     make([]string, n),
		companyCode: make([]string, n),
		currency:    make([]string, n),
		porg:        make([]string, n),
		pgroup:      make([]string, n),
		docDate:     make([]time.Time, n),
	}

	for i := 0; i < n; i++ {
		h.id[i] = fmt.Sprintf("PO%08d", i+1)
		vi := pool[weightedIndex(r, poolCum)]
		h.vendorIdx[i] = vi
		h.vendorID[i] = vendors.id[vi]
		h.docDate[i] = days[weightedIndex(r, dateCum)]

		if r.Float64() < 0.7 {
			h.docType[i] = docTypeStandard
		} else {
			h.docType[i] = docTypeFramework
		}

		h.companyCode[i] = cfg.CompanyCodes[r.Intn(len(cfg.CompanyCodes))]
		h.currency[i] = cfg.Currencies[weightedIndex(r, currencyCum)]
		h.porg[i] = cfg.PurchasingOrgs[r.Intn(len(cfg.PurchasingOrgs))]
		h.pgroup[i] = cfg.PurchasingGroups[r.Intn(len(cfg.PurchasingGroups))]
	}

	return h, nil
}

func (h *headerSet) toTable() (*table.Table, error) {
	return table.New("EKKO",
		table.Column{Name: "EBELN", Type: table.String, Strings: h.id},
		table.Column{Name: "BUKRS", Type: table.String, Strings: h.companyCode},
		table.Column{Name: "BSART", Type: table.String, Strings: h.docType},
		table.Column{Name: "AEDAT", Type: table.Date, Dates: h.docDate},
		table.Column{Name: "LIFNR", Type: table.String, Strings: h.vendorID},
		table.Column{Name: "WAERS", Type: table.String, Strings: h.currency},
		table.Column{Name: "EKORG", Type: table.String, Strings: h.porg},
		table.Column{Name: "EKGRP", Type: table.String, Strings: h.pgroup},
		// Document date equals the creation date for generated orders.
		table.Column{Name: "BEDAT", Type: table.Date, Dates: h.docDate},
	)
}
