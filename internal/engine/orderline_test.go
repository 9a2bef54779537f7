package engine

import (
	"math"
	"testing"

	"github.com/pi22by7/sap-analytics-platform/internal/config"
)

// pipeline builds every stage up to order lines with the same per-stage
// streams the engine uses.
func pipeline(t *testing.T, cfg *config.Config) (*vendorSet, *materialSet, *contractSet, *headerSet, *lineSet) {
	t.Helper()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config should validate: %v", err)
	}
	vendors := generateVendors(cfg, stageRand(cfg.Seed, streamVendors))
	materials := generateMaterials(cfg, stageRand(cfg.Seed, streamMaterials))
	contracts, _ := generateContracts(cfg, stageRand(cfg.Seed, streamContracts), vendors, materials)
	headers, err := generateHeaders(cfg, stageRand(cfg.Seed, streamHeaders), vendors)
	if err != nil {
		t.Fatalf("header generation failed: %v", err)
	}
	lines := generateLines(cfg, stageRand(cfg.Seed, streamLines), headers, vendors, materials, contracts)
	return vendors, materials, contracts, headers, lines
}

func lineConfig() *config.Config {
	cfg := config.Default()
	cfg.Seed = 21
	cfg.NumVendors = 200
	cfg.NumMaterials = 100
	cfg.NumContracts = 500
	cfg.NumPOs = 2000
	return cfg
}

func TestLargeOrderAdjust(t *testing.T) {
	cases := []struct {
		qty, threshold, multiplier int64
		wantQty                    int64
		wantLarge                  bool
	}{
		{qty: 10, threshold: 40, multiplier: 10, wantQty: 10, wantLarge: false},
		{qty: 40, threshold: 40, multiplier: 10, wantQty: 40, wantLarge: false},
		{qty: 41, threshold: 40, multiplier: 10, wantQty: 410, wantLarge: true},
		{qty: 100, threshold: 40, multiplier: 10, wantQty: 1000, wantLarge: true},
		{qty: 41, threshold: 40, multiplier: 1, wantQty: 41, wantLarge: true},
	}
	for _, c := range cases {
		got, large := largeOrderAdjust(c.qty, c.threshold, c.multiplier)
		if got != c.wantQty || large != c.wantLarge {
			t.Errorf("largeOrderAdjust(%d, %d, %d) = (%d, %v), want (%d, %v)",
				c.qty, c.threshold, c.multiplier, got, large, c.wantQty, c.wantLarge)
		}
	}
}

func TestGenerateLines(t *testing.T) {
	cfg := lineConfig()
	_, _, _, headers, lines := pipeline(t, cfg)

	perHeader := make(map[int]int)
	for li := range lines.poID {
		hi := lines.headerIdx[li]
		perHeader[hi]++

		if lines.qty[li] < 1 {
			t.Fatalf("line %s/%d has non-positive quantity %d", lines.poID[li], lines.lineNo[li], lines.qty[li])
		}
		if lines.unitPrice[li] <= 0 {
			t.Fatalf("line %s/%d has non-positive price %v", lines.poID[li], lines.lineNo[li], lines.unitPrice[li])
		}
		if want := float64(lines.qty[li]) * lines.unitPrice[li]; lines.netValue[li] != want {
			t.Fatalf("line %s/%d net value %v != qty*price %v", lines.poID[li], lines.lineNo[li], lines.netValue[li], want)
		}
		if lines.lineNo[li] != int64(perHeader[hi])*10 {
			t.Fatalf("line numbers for %s not sequential tens: got %d at position %d", lines.poID[li], lines.lineNo[li], perHeader[hi])
		}
		if !lines.expected[li].After(headers.docDate[hi]) {
			t.Fatalf("line %s/%d expected delivery not after document date", lines.poID[li], lines.lineNo[li])
		}
		lead := daysBetween(headers.docDate[hi], lines.expected[li])
		if lead < cfg.LeadTimeMinDays || lead > cfg.LeadTimeMaxDays {
			t.Fatalf("line %s/%d lead time %d outside [%d, %d]", lines.poID[li], lines.lineNo[li], lead, cfg.LeadTimeMinDays, cfg.LeadTimeMaxDays)
		}
	}

	for hi := range headers.id {
		if perHeader[hi] < 1 || perHeader[hi] > cfg.POMaxItems {
			t.Fatalf("header %s has %d lines, want 1..%d", headers.id[hi], perHeader[hi], cfg.POMaxItems)
		}
	}
}

func TestContractPricedLines(t *testing.T) {
	cfg := lineConfig()
	_, _, contracts, headers, lines := pipeline(t, cfg)

	contractLines := 0
	for li := range lines.poID {
		if !lines.hasContract[li] {
			continue
		}
		contractLines++
		ci := lines.contractIdx[li]
		if lines.contractID[li] != contracts.id[ci] {
			t.Fatalf("line %s/%d contract reference mismatch", lines.poID[li], lines.lineNo[li])
		}
		doc := headers.docDate[lines.headerIdx[li]]
		if doc.Before(contracts.validFrom[ci]) || doc.After(contracts.validTo[ci]) {
			t.Fatalf("line %s/%d references contract %s outside its validity window", lines.poID[li], lines.lineNo[li], contracts.id[ci])
		}
		// Contract price plus 1% noise, rounded to cents.
		diff := math.Abs(lines.unitPrice[li] - contracts.price[ci])
		if diff > contracts.price[ci]*0.06+0.01 {
			t.Fatalf("line %s/%d price %v strays too far from contract price %v", lines.poID[li], lines.lineNo[li], lines.unitPrice[li], contracts.price[ci])
		}
	}
	if contractLines == 0 {
		t.Fatal("no contract-priced lines generated")
	}
}

func TestLargeOrdersForceStandardHeaders(t *testing.T) {
	cfg := lineConfig()
	_, _, _, headers, lines := pipeline(t, cfg)

	large := 0
	for li := range lines.poID {
		// Unscaled quantities never exceed the threshold, so anything above
		// it went through the bulk multiplier.
		if lines.qty[li] > cfg.LargeOrderQtyThreshold {
			large++
			if dt := headers.docType[lines.headerIdx[li]]; dt != docTypeStandard {
				t.Fatalf("header %s carries a bulk line but has document type %q", lines.poID[li], dt)
			}
		}
	}
	if large == 0 {
		t.Fatal("no bulk lines generated; threshold rule untested")
	}
}

func TestMaverickSpendRate(t *testing.T) {
	cfg := lineConfig()
	cfg.NumPOs = 5000
	_, _, contracts, headers, lines := pipeline(t, cfg)

	eligible, used := 0, 0
	for li := range lines.poID {
		vendor := headers.vendorIdx[lines.headerIdx[li]]
		doc := headers.docDate[lines.headerIdx[li]]
		if contracts.lookup(vendor, lines.materialIdx[li], doc) == -1 {
			continue
		}
		eligible++
		if lines.hasContract[li] {
			used++
		}
	}
	if eligible < 500 {
		t.Fatalf("only %d contract-eligible lines; fixture too small", eligible)
	}
	rate := float64(used) / float64(eligible)
	if math.Abs(rate-cfg.ContractCompliance) > 0.05 {
		t.Errorf("contract compliance rate %.3f, want ~%.2f", rate, cfg.ContractCompliance)
	}
}
