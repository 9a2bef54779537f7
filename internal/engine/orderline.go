package engine

import (
	"math"
	"math/rand"
	"time"

	"github.com/pi22by7/sap-analytics-platform/internal/config"
	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

// Purchase order lines (EKPO). contractIdx is -1 for lines priced off
// contract (spot or preferred-discount).
type lineSet struct {
	headerIdx   []int
	poID        []string
	lineNo      []int64
	materialIdx []int
	materialID  []string
	contractID  []string
	contractIdx []int
	hasContract []bool
	qty         []int64
	unitPrice   []float64
	netValue    []float64
	expected    []time.Time
	plant       []string
	group       []string
	uom         []string
}

// largeOrderAdjust is the pure large-order rule: a provisional quantity
// above the threshold marks the line as a bulk contract buy and scales it
// by the configured multiplier. Depends only on its inputs, so iteration
// order cannot leak into the result.
func largeOrderAdjust(qty, threshold, multiplier int64) (int64, bool) {
	if qty > threshold {
		return qty * multiplier, true
	}
	return qty, false
}

func generateLines(cfg *config.Config, r *rand.Rand, headers *headerSet, vendors *vendorSet, materials *materialSet, contracts *contractSet) *lineSet {
	l := &lineSet{}
	nm := len(materials.id)

	for hi := range headers.id {
		count := int(lognormal(r, cfg.POItemCountMu, cfg.POItemCountSigma))
		if count < 1 {
			count = 1
		}
		if count > cfg.POMaxItems {
			count = cfg.POMaxItems
		}

		vendor := headers.vendorIdx[hi]
		docDate := headers.docDate[hi]
		forceStandard := false

		for li := 0; li < count; li++ {
			mi := r.Intn(nm)
			base := materials.basePrice[mi]

			// Price cascade: contract price if a valid contract covers the
			// document date and the compliance roll passes; else preferred
			// account discount; else spot price with multiplicative noise.
			// An eligible line whose roll fails is deliberate maverick
			// spend and carries no contract reference.
			price := 0.0
			ci := contracts.lookup(vendor, mi, docDate)
			usedContract := ci != -1 && r.Float64() < cfg.ContractCompliance
			switch {
			case usedContract:
				price = contracts.price[ci] * (1 + r.NormFloat64()*0.01)
			case vendors.accountGroup[vendor] == "PREF":
				discount := cfg.PreferredDiscountMin + r.Float64()*(cfg.PreferredDiscountMax-cfg.PreferredDiscountMin)
				price = base * (1 - discount)
			default:
				price = base * (1 + r.NormFloat64()*cfg.PriceVolatility)
			}
			if price < base*0.01 {
				price = base * 0.01
			}
			price = math.Round(price*100) / 100

			qty := int64(lognormal(r, cfg.QuantityMu, cfg.QuantitySigma))
			if qty < 1 {
				qty = 1
			}
			qty, large := largeOrderAdjust(qty, cfg.LargeOrderQtyThreshold, cfg.LargeOrderMultiplier)
			if large {
				forceStandard = true
			}

			lead := randIntBetween(r, cfg.LeadTimeMinDays, cfg.LeadTimeMaxDays)

			l.headerIdx = append(l.headerIdx, hi)
			l.poID = append(l.poID, headers.id[hi])
			l.lineNo = append(l.lineNo, int64(li+1)*10)
			l.materialIdx = append(l.materialIdx, mi)
			l.materialID = append(l.materialID, materials.id[mi])
			if usedContract {
				l.contractIdx = append(l.contractIdx, ci)
				l.contractID = append(l.contractID, contracts.id[ci])
				l.hasContract = append(l.hasContract, true)
			} else {
				l.contractIdx = append(l.contractIdx, -1)
				l.contractID = append(l.contractID, "")
				l.hasContract = append(l.hasContract, false)
			}
			l.qty = append(l.qty, qty)
			l.unitPrice = append(l.unitPrice, price)
			l.netValue = append(l.netValue, float64(qty)*price)
			l.expected = append(l.expected, docDate.AddDate(0, 0, lead))
			l.plant = append(l.plant, cfg.Plants[r.Intn(len(cfg.Plants))])
			l.group = append(l.group, materials.group[mi])
			l.uom = append(l.uom, materials.uom[mi])
		}

		if forceStandard {
			headers.docType[hi] = docTypeStandard
		}
	}

	return l
}

func (l *lineSet) toTable() (*table.Table, error) {
	return table.New("EKPO",
		table.Column{Name: "EBELN", Type: table.String, Strings: l.poID},
		table.Column{Name: "EBELP", Type: table.Int64, Int64s: l.lineNo},
		table.Column{Name: "MATNR", Type: table.String, Strings: l.materialID},
		table.Column{Name: "MENGE", Type: table.Int64, Int64s: l.qty},
		table.Column{Name: "NETPR", Type: table.Float64, Float64s: l.unitPrice},
		table.Column{Name: "NETWR", Type: table.Float64, Float64s: l.netValue},
		table.Column{Name: "EINDT", Type: table.Date, Dates: l.expected},
		table.Column{Name: "MATKL", Type: table.String, Strings: l.group},
		table.Column{Name: "MEINS", Type: table.String, Strings: l.uom},
		table.Column{Name: "WERKS", Type: table.String, Strings: l.plant},
		table.Column{Name: "KONNR", Type: table.String, Strings: l.contractID, Valid: l.hasContract},
	)
}
