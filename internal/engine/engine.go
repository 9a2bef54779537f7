// Package engine generates the six procurement tables: vendor master,
// material master, contracts, purchase order headers, order lines and
// goods-receipt/invoice history. Stages run in strict dependency order and
// each stage fully materializes its output before the next one starts.
package engine

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/pi22by7/sap-analytics-platform/internal/config"
	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

// Fixed per-stage RNG stream offsets. Giving every stage its own seeded
// stream keeps output identical no matter how stages are scheduled.
const (
	streamVendors = iota + 1
	streamMaterials
	streamContracts
	streamHeaders
	streamLines
	streamHistory
)

// Dataset is the complete output of one run: the six tables plus any
// non-fatal diagnostics (currently only contract coverage shortfall).
type Dataset struct {
	Vendors   *table.Table
	Materials *table.Table
	Contracts *table.Table
	Headers   *table.Table
	Lines     *table.Table
	History   *table.Table

	Warnings []string
}

// Tables returns the output tables in dependency order.
func (d *Dataset) Tables() []*table.Table {
	return []*table.Table{d.Vendors, d.Materials, d.Contracts, d.Headers, d.Lines, d.History}
}

type Engine struct {
	cfg *config.Config
}

func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

func stageRand(seed int64, stream int64) *rand.Rand {
	return rand.New(rand.NewSource(seed*6364136223846793005 + stream))
}

// Run executes the full pipeline. The configuration is validated first and
// nothing is generated if it is rejected. Vendors and materials have no
// mutual dependency and are built concurrently; every other stage waits on
// its inputs.
//
// All tables are held in memory for the duration of the run. If volumes
// ever exceed memory, the orchestration can batch over vendor subsets
// (materials stay resident, contracts/orders/history are generated and
// flushed per batch) without touching any per-record rule below.
func (e *Engine) Run() (*Dataset, error) {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var (
		vendors   *vendorSet
		materials *materialSet
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		vendors = generateVendors(cfg, stageRand(cfg.Seed, streamVendors))
	}()
	go func() {
		defer wg.Done()
		materials = generateMaterials(cfg, stageRand(cfg.Seed, streamMaterials))
	}()
	wg.Wait()

	contracts, warnings := generateContracts(cfg, stageRand(cfg.Seed, streamContracts), vendors, materials)
	headers, err := generateHeaders(cfg, stageRand(cfg.Seed, streamHeaders), vendors)
	if err != nil {
		return nil, err
	}
	lines := generateLines(cfg, stageRand(cfg.Seed, streamLines), headers, vendors, materials, contracts)
	history := generateHistory(cfg, stageRand(cfg.Seed, streamHistory), lines, headers, vendors)

	if err := verifyIntegrity(vendors, materials, contracts, headers, lines, history); err != nil {
		return nil, err
	}

	ds := &Dataset{Warnings: warnings}
	if ds.Vendors, err = vendors.toTable(); err != nil {
		return nil, err
	}
	if ds.Materials, err = materials.toTable(); err != nil {
		return nil, err
	}
	if ds.Contracts, err = contracts.toTable(); err != nil {
		return nil, err
	}
	if ds.Headers, err = headers.toTable(); err != nil {
		return nil, err
	}
	if ds.Lines, err = lines.toTable(); err != nil {
		return nil, err
	}
	if ds.History, err = history.toTable(); err != nil {
		return nil, err
	}
	return ds, nil
}

// verifyIntegrity asserts cross-table invariants that only a programming
// defect could break: every reference resolves, no blocked vendor owns a
// header, nothing is negative. Violations are not recoverable at runtime.
func verifyIntegrity(v *vendorSet, m *materialSet, c *contractSet, h *headerSet, l *lineSet, hist *historySet) error {
	nv, nm := len(v.id), len(m.id)
	for i := range c.id {
		if c.vendorIdx[i] < 0 || c.vendorIdx[i] >= nv {
			return fmt.Errorf("internal: contract %s references unknown vendor row %d", c.id[i], c.vendorIdx[i])
		}
		if c.materialIdx[i] < 0 || c.materialIdx[i] >= nm {
			return fmt.Errorf("internal: contract %s references unknown material row %d", c.id[i], c.materialIdx[i])
		}
		if c.price[i] < 0 {
			return fmt.Errorf("internal: contract %s has negative price %g", c.id[i], c.price[i])
		}
	}
	for i := range h.id {
		vi := h.vendorIdx[i]
		if vi < 0 || vi >= nv {
			return fmt.Errorf("internal: header %s references unknown vendor row %d", h.id[i], vi)
		}
		if v.blocked[vi] {
			return fmt.Errorf("internal: header %s references blocked vendor %s", h.id[i], v.id[vi])
		}
	}
	for i := range l.poID {
		if l.headerIdx[i] < 0 || l.headerIdx[i] >= len(h.id) {
			return fmt.Errorf("internal: line %s/%d references unknown header row %d", l.poID[i], l.lineNo[i], l.headerIdx[i])
		}
		if l.materialIdx[i] < 0 || l.materialIdx[i] >= nm {
			return fmt.Errorf("internal: line %s/%d references unknown material row %d", l.poID[i], l.lineNo[i], l.materialIdx[i])
		}
		if ci := l.contractIdx[i]; ci != -1 && (ci < 0 || ci >= len(c.id)) {
			return fmt.Errorf("internal: line %s/%d references unknown contract row %d", l.poID[i], l.lineNo[i], ci)
		}
		if l.qty[i] <= 0 || l.unitPrice[i] < 0 || l.netValue[i] < 0 {
			return fmt.Errorf("internal: line %s/%d has non-positive quantity or negative value", l.poID[i], l.lineNo[i])
		}
	}
	for i := range hist.poID {
		if hist.lineIdx[i] < 0 || hist.lineIdx[i] >= len(l.poID) {
			return fmt.Errorf("internal: history %s references unknown line row %d", hist.docNo[i], hist.lineIdx[i])
		}
		if hist.qty[i] <= 0 || hist.amount[i] < 0 {
			return fmt.Errorf("internal: history %s has non-positive quantity or negative amount", hist.docNo[i])
		}
	}
	return nil
}
