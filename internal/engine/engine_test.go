package engine

import (
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/pi22by7/sap-analytics-platform/internal/config"
	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

// scenarioConfig is the reference scenario: fixed small volumes, seed 1.
func scenarioConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = 1
	cfg.NumVendors = 100
	cfg.NumMaterials = 50
	cfg.NumContracts = 200
	cfg.NumPOs = 1000
	if err := cfg.Validate(); err != nil {
		t.Fatalf("scenario config should validate: %v", err)
	}
	return cfg
}

func mustRun(t *testing.T, cfg *config.Config) *Dataset {
	t.Helper()
	ds, err := New(cfg).Run()
	if err != nil {
		t.Fatalf("pipeline run failed: %v", err)
	}
	return ds
}

func columnsEqual(a, b *table.Column) bool {
	if a.Name != b.Name || a.Type != b.Type || a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) != b.IsNull(i) {
			return false
		}
		if a.IsNull(i) {
			continue
		}
		switch a.Type {
		case table.String:
			if a.Strings[i] != b.Strings[i] {
				return false
			}
		case table.Float64:
			if a.Float64s[i] != b.Float64s[i] {
				return false
			}
		case table.Int64:
			if a.Int64s[i] != b.Int64s[i] {
				return false
			}
		case table.Bool:
			if a.Bools[i] != b.Bools[i] {
				return false
			}
		case table.Date:
			if !a.Dates[i].Equal(b.Dates[i]) {
				return false
			}
		}
	}
	return true
}

func TestRunIsDeterministic(t *testing.T) {
	first := mustRun(t, scenarioConfig(t))
	second := mustRun(t, scenarioConfig(t))

	fa, sa := first.Tables(), second.Tables()
	for ti := range fa {
		if fa[ti].NumRows() != sa[ti].NumRows() {
			t.Fatalf("table %s: run 1 has %d rows, run 2 has %d", fa[ti].Name, fa[ti].NumRows(), sa[ti].NumRows())
		}
		for ci := range fa[ti].Cols {
			if !columnsEqual(&fa[ti].Cols[ci], &sa[ti].Cols[ci]) {
				t.Errorf("table %s: column %s differs between identical runs", fa[ti].Name, fa[ti].Cols[ci].Name)
			}
		}
	}
}

func TestScenarioRowCounts(t *testing.T) {
	ds := mustRun(t, scenarioConfig(t))

	if got := ds.Vendors.NumRows(); got != 100 {
		t.Errorf("expected 100 vendors, got %d", got)
	}
	if got := ds.Materials.NumRows(); got != 50 {
		t.Errorf("expected 50 materials, got %d", got)
	}
	if got := ds.Contracts.NumRows(); got != 200 {
		t.Errorf("expected 200 contracts, got %d", got)
	}
	if got := ds.Headers.NumRows(); got != 1000 {
		t.Errorf("expected 1000 order headers, got %d", got)
	}
	if ds.Lines.NumRows() < 1000 {
		t.Errorf("expected at least one line per header, got %d lines", ds.Lines.NumRows())
	}
	if ds.History.NumRows() < ds.Lines.NumRows() {
		t.Errorf("expected at least one history record per line, got %d for %d lines", ds.History.NumRows(), ds.Lines.NumRows())
	}
}

func TestReferentialIntegrity(t *testing.T) {
	ds := mustRun(t, scenarioConfig(t))

	vendorIDs := stringSet(ds.Vendors.Column("LIFNR").Strings)
	materialIDs := stringSet(ds.Materials.Column("MATNR").Strings)
	contractIDs := stringSet(ds.Contracts.Column("CONTRACT_ID").Strings)
	headerIDs := stringSet(ds.Headers.Column("EBELN").Strings)

	for i, v := range ds.Contracts.Column("LIFNR").Strings {
		if !vendorIDs[v] {
			t.Fatalf("contract row %d references unknown vendor %s", i, v)
		}
	}
	for i, m := range ds.Contracts.Column("MATNR").Strings {
		if !materialIDs[m] {
			t.Fatalf("contract row %d references unknown material %s", i, m)
		}
	}

	blocked := make(map[string]bool)
	for i, v := range ds.Vendors.Column("LIFNR").Strings {
		blocked[v] = ds.Vendors.Column("SPERR").Strings[i] == "X"
	}
	for i, v := range ds.Headers.Column("LIFNR").Strings {
		if !vendorIDs[v] {
			t.Fatalf("header row %d references unknown vendor %s", i, v)
		}
		if blocked[v] {
			t.Fatalf("header row %d references blocked vendor %s", i, v)
		}
	}

	lineKeys := make(map[string]bool)
	lineDoc := ds.Lines.Column("EBELN")
	lineNo := ds.Lines.Column("EBELP")
	lineContract := ds.Lines.Column("KONNR")
	for i := 0; i < lineDoc.Len(); i++ {
		if !headerIDs[lineDoc.Strings[i]] {
			t.Fatalf("line row %d references unknown order %s", i, lineDoc.Strings[i])
		}
		if !materialIDs[ds.Lines.Column("MATNR").Strings[i]] {
			t.Fatalf("line row %d references unknown material", i)
		}
		if !lineContract.IsNull(i) && !contractIDs[lineContract.Strings[i]] {
			t.Fatalf("line row %d references unknown contract %s", i, lineContract.Strings[i])
		}
		lineKeys[lineKey(lineDoc.Strings[i], lineNo.Int64s[i])] = true
	}

	histDoc := ds.History.Column("EBELN")
	histNo := ds.History.Column("EBELP")
	for i := 0; i < histDoc.Len(); i++ {
		if !lineKeys[lineKey(histDoc.Strings[i], histNo.Int64s[i])] {
			t.Fatalf("history row %d references unknown line %s/%d", i, histDoc.Strings[i], histNo.Int64s[i])
		}
	}
}

func TestQ4Seasonality(t *testing.T) {
	ds := mustRun(t, scenarioConfig(t))

	dates := ds.Headers.Column("AEDAT").Dates
	q4 := 0
	for _, d := range dates {
		if d.Month() >= time.October {
			q4++
		}
	}
	share := float64(q4) / float64(len(dates))
	// Uniform baseline is ~25%; the 1.3x Q4 weight pushes expectation to ~30%.
	if share <= 0.26 {
		t.Errorf("expected Q4 order share above the uniform baseline, got %.3f", share)
	}
}

func TestSpendConcentration(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 1
	cfg.NumVendors = 500
	cfg.NumMaterials = 500
	cfg.NumContracts = 1000
	cfg.NumPOs = 10000
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config should validate: %v", err)
	}
	ds := mustRun(t, cfg)

	headerVendor := make(map[string]string)
	for i, id := range ds.Headers.Column("EBELN").Strings {
		headerVendor[id] = ds.Headers.Column("LIFNR").Strings[i]
	}

	spend := make(map[string]float64)
	lineDoc := ds.Lines.Column("EBELN")
	lineNet := ds.Lines.Column("NETWR")
	var total float64
	for i := 0; i < lineDoc.Len(); i++ {
		spend[headerVendor[lineDoc.Strings[i]]] += lineNet.Float64s[i]
		total += lineNet.Float64s[i]
	}

	perVendor := make([]float64, 0, len(spend))
	for _, s := range spend {
		perVendor = append(perVendor, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(perVendor)))

	topN := cfg.NumVendors / 5
	var topSpend float64
	for i := 0; i < topN && i < len(perVendor); i++ {
		topSpend += perVendor[i]
	}
	share := topSpend / total
	if share < 0.72 || share > 0.90 {
		t.Errorf("expected top 20%% of vendors to carry ~80%% of spend, got %.3f", share)
	}
}

func lineKey(doc string, no int64) string {
	return doc + "/" + strconv.FormatInt(no, 10)
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
