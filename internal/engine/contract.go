package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pi22by7/sap-analytics-platform/internal/config"
	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

// Rounds of oversampled pair draws before the generator gives up and keeps
// whatever unique pairs it found.
const contractSampleRounds = 8

var contractTypes = []string{"BLANKET", "SPOT", "FRAMEWORK"}
var contractTypeWeights = []float64{0.5, 0.4, 0.1}

type pairKey struct {
	vendor, material int
}

// Vendor-material agreements. byPair indexes contracts for the order line
// price cascade.
type contractSet struct {
	id          []string
	vendorIdx   []int
	materialIdx []int
	vendorID    []string
	materialID  []string
	price       []float64
	validFrom   []time.Time
	validTo     []time.Time
	ctype       []string
	volume      []int64

	byPair map[pairKey][]int
}

// contractTarget resolves the requested contract count: an explicit count
// wins, otherwise coverage of the vendor-material pair space, always capped
// at the number of distinct pairs.
func contractTarget(cfg *config.Config, numVendors, numMaterials int) int {
	pairs := numVendors * numMaterials
	target := cfg.NumContracts
	if target == 0 {
		target = int(cfg.ContractCoverage * float64(pairs))
	}
	if target > pairs {
		target = pairs
	}
	return target
}

func generateContracts(cfg *config.Config, r *rand.Rand, vendors *vendorSet, materials *materialSet) (*contractSet, []string) {
	nv, nm := len(vendors.id), len(materials.id)
	target := contractTarget(cfg, nv, nm)

	c := &contractSet{byPair: make(map[pairKey][]int)}
	if target == 0 {
		return c, nil
	}

	vendorCum := cumsum(vendors.spendWeight)
	seen := make(map[pairKey]struct{}, target)
	pairs := make([]pairKey, 0, target)

	// Oversampled draws with dedupe; bounded rounds so a saturated pair
	// space cannot loop forever. Shortfalls are reported, not fatal.
	for round := 0; round < contractSampleRounds && len(pairs) < target; round++ {
		draws := (target - len(pairs)) * 2
		for d := 0; d < draws && len(pairs) < target; d++ {
			k := pairKey{
				vendor:   weightedIndex(r, vendorCum),
				material: r.Intn(nm),
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			pairs = append(pairs, k)
		}
	}

	var warnings []string
	if len(pairs) < target {
		warnings = append(warnings, fmt.Sprintf("contract coverage shortfall: requested %d contracts, generated %d unique vendor-material pairs", target, len(pairs)))
	}

	n := len(pairs)
	c.id = make([]string, n)
	c.vendorIdx = make([]int, n)
	c.materialIdx = make([]int, n)
	c.vendorID = make([]string, n)
	c.materialID = make([]string, n)
	c.price = make([]float64, n)
	c.validFrom = make([]time.Time, n)
	c.validTo = make([]time.Time, n)
	c.ctype = make([]string, n)
	c.volume = make([]int64, n)

	typeCum := cumsum(contractTypeWeights)
	validFromMax := cfg.End().AddDate(0, 0, -90)
	if validFromMax.Before(cfg.Start()) {
		validFromMax = cfg.Start()
	}

	for i, k := range pairs {
		c.id[i] = fmt.Sprintf("C%09d", i+1)
		c.vendorIdx[i] = k.vendor
		c.materialIdx[i] = k.material
		c.vendorID[i] = vendors.id[k.vendor]
		c.materialID[i] = materials.id[k.material]

		// Contract price sits strictly below base price by a discount drawn
		// from the configured band.
		discount := cfg.ContractDiscountMin + r.Float64()*(cfg.ContractDiscountMax-cfg.ContractDiscountMin)
		c.price[i] = materials.basePrice[k.material] * (1 - discount)

		c.validFrom[i] = randDate(r, cfg.Start(), validFromMax)
		duration := randIntBetween(r, cfg.ContractDurationMin, cfg.ContractDurationMax)
		c.validTo[i] = c.validFrom[i].AddDate(0, 0, duration)

		c.ctype[i] = contractTypes[weightedIndex(r, typeCum)]
		c.volume[i] = int64(randIntBetween(r, 100, 10000))

		c.byPair[k] = append(c.byPair[k], i)
	}

	return c, warnings
}

// lookup returns the first contract for (vendor, material) whose validity
// window covers the given document date, or -1.
func (c *contractSet) lookup(vendor, material int, docDate time.Time) int {
	for _, ci := range c.byPair[pairKey{vendor, material}] {
		if !docDate.Before(c.validFrom[ci]) && !docDate.After(c.validTo[ci]) {
			return ci
		}
	}
	return -1
}

func (c *contractSet) toTable() (*table.Table, error) {
	return table.New("VENDOR_CONTRACTS",
		table.Column{Name: "CONTRACT_ID", Type: table.String, Strings: c.id},
		table.Column{Name: "LIFNR", Type: table.String, Strings: c.vendorID},
		table.Column{Name: "MATNR", Type: table.String, Strings: c.materialID},
		table.Column{Name: "CONTRACT_PRICE", Type: table.Float64, Float64s: c.price},
		table.Column{Name: "VALID_FROM", Type: table.Date, Dates: c.validFrom},
		table.Column{Name: "VALID_TO", Type: table.Date, Dates: c.validTo},
		table.Column{Name: "VOLUME_COMMITMENT", Type: table.Int64, Int64s: c.volume},
		table.Column{Name: "CONTRACT_TYPE", Type: table.String, Strings: c.ctype},
	)
}
