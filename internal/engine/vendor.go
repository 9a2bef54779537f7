package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pi22by7/sap-analytics-platform/internal/config"
	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

// Vendor master (LFA1). spendWeight and perfBias are engine-internal
// columns: they drive every downstream draw for a vendor but are never
// written to the output dataset.
type vendorSet struct {
	id           []string
	name         []string
	country      []string
	city         []string
	street       []string
	phone        []string
	email        []string
	accountGroup []string
	blocked      []bool
	created      []time.Time

	spendWeight []float64
	perfBias    []float64
}

// tierWeight is the fixed weight assigned to every top-tier vendor so that
// a `split` fraction of vendors carries a `share` fraction of total weight
// when the rest get weight 1.
func tierWeight(split, share float64) float64 {
	if split <= 0 || share >= 1 {
		return 1.0
	}
	return (share * (1 - split)) / (split * (1 - share))
}

func generateVendors(cfg *config.Config, r *rand.Rand) *vendorSet {
	n := cfg.NumVendors
	numTop := int(float64(n) * cfg.ParetoTierSplit)
	topWeight := tierWeight(cfg.ParetoTierSplit, cfg.ParetoSpendShare)

	v := &vendorSet{
		id:           make([]string, n),
		name:         make([]string, n),
		country:      make([]string, n),
		city:         make([]string, n),
		street:       make([]string, n),
		phone:        make([]string, n),
		email:        make([]string, n),
		accountGroup: make([]string, n),
		blocked:      make([]bool, n),
		created:      make([]time.Time, n),
		spendWeight:  make([]float64, n),
		perfBias:     make([]float64, n),
	}

	createdMin := cfg.Start().AddDate(-5, 0, 0)
	for i := 0; i < n; i++ {
		v.id[i] = fmt.Sprintf("V%07d", i+1)
		v.name[i] = companyName(r)
		v.country[i] = countryCode(r)
		v.city[i] = cityName(r)
		v.street[i] = streetAddress(r)
		v.phone[i] = phoneNumber(r)
		v.email[i] = companyEmail(r, v.name[i])
		v.created[i] = randDate(r, createdMin, cfg.Start())

		if i < numTop {
			v.spendWeight[i] = topWeight
		} else {
			v.spendWeight[i] = 1
		}
		if r.Float64() < cfg.PreferredVendorRatio {
			v.accountGroup[i] = "PREF"
		} else {
			v.accountGroup[i] = "STD"
		}
		v.blocked[i] = r.Float64() < cfg.VendorBlockRate
		v.perfBias[i] = r.NormFloat64() * cfg.PerfBiasSigma
	}

	// Shuffle row order so tier membership is not positional in the output.
	order := shuffleOrder(r, n)
	v.permute(order)
	return v
}

func (v *vendorSet) permute(order []int) {
	n := len(order)
	out := &vendorSet{
		id:           make([]string, n),
		name:         make([]string, n),
		country:      make([]string, n),
		city:         make([]string, n),
		street:       make([]string, n),
		phone:        make([]string, n),
		email:        make([]string, n),
		accountGroup: make([]string, n),
		blocked:      make([]bool, n),
		created:      make([]time.Time, n),
		spendWeight:  make([]float64, n),
		perfBias:     make([]float64, n),
	}
	for i, src := range order {
		out.id[i] = v.id[src]
		out.name[i] = v.name[src]
		out.country[i] = v.country[src]
		out.city[i] = v.city[src]
		out.street[i] = v.street[src]
		out.phone[i] = v.phone[src]
		out.email[i] = v.email[src]
		out.accountGroup[i] = v.accountGroup[src]
		out.blocked[i] = v.blocked[src]
		out.created[i] = v.created[src]
		out.spendWeight[i] = v.spendWeight[src]
		out.perfBias[i] = v.perfBias[src]
	}
	*v = *out
}

func (v *vendorSet) toTable() (*table.Table, error) {
	blockFlag := make([]string, len(v.blocked))
	for i, b := range v.blocked {
		if b {
			blockFlag[i] = "X"
		}
	}
	return table.New("LFA1",
		table.Column{Name: "LIFNR", Type: table.String, Strings: v.id},
		table.Column{Name: "NAME1", Type: table.String, Strings: v.name},
		table.Column{Name: "LAND1", Type: table.String, Strings: v.country},
		table.Column{Name: "ORT01", Type: table.String, Strings: v.city},
		table.Column{Name: "STRAS", Type: table.String, Strings: v.street},
		table.Column{Name: "TELF1", Type: table.String, Strings: v.phone},
		table.Column{Name: "SMTP_ADDR", Type: table.String, Strings: v.email},
		table.Column{Name: "KTOKK", Type: table.String, Strings: v.accountGroup},
		table.Column{Name: "SPERR", Type: table.String, Strings: blockFlag},
		table.Column{Name: "ERDAT", Type: table.Date, Dates: v.created},
	)
}
