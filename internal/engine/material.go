package engine

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/pi22by7/sap-analytics-platform/internal/config"
	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

// Material master (MARA). basePrice anchors all downstream pricing and is
// engine-internal, never written out.
type materialSet struct {
	id          []string
	description []string
	matType     []string
	group       []string
	uom         []string
	created     []time.Time
	grossWeight []float64
	netWeight   []float64

	basePrice []float64
}

// categoryCounts splits the material total across categories by share; the
// last category absorbs the remainder so the counts always sum exactly.
func categoryCounts(total int, cats []config.MaterialCategory) []int {
	counts := make([]int, len(cats))
	assigned := 0
	for i := 0; i < len(cats)-1; i++ {
		counts[i] = int(float64(total) * cats[i].Share)
		assigned += counts[i]
	}
	counts[len(cats)-1] = total - assigned
	return counts
}

func generateMaterials(cfg *config.Config, r *rand.Rand) *materialSet {
	total := cfg.NumMaterials
	cats := cfg.Categories
	counts := categoryCounts(total, cats)

	m := &materialSet{
		id:          make([]string, 0, total),
		description: make([]string, 0, total),
		matType:     make([]string, 0, total),
		group:       make([]string, 0, total),
		uom:         make([]string, 0, total),
		created:     make([]time.Time, 0, total),
		grossWeight: make([]float64, 0, total),
		netWeight:   make([]float64, 0, total),
		basePrice:   make([]float64, 0, total),
	}

	createdMin := cfg.Start().AddDate(-5, 0, 0)
	for ci, cat := range cats {
		logMin, logMax := math.Log(cat.PriceMin), math.Log(cat.PriceMax)
		for j := 0; j < counts[ci]; j++ {
			// log-uniform within the category band
			m.basePrice = append(m.basePrice, math.Exp(logMin+r.Float64()*(logMax-logMin)))

			var gross float64
			if cat.WeightMax > 0 {
				gross = cat.WeightMin + r.Float64()*(cat.WeightMax-cat.WeightMin)
			}
			m.grossWeight = append(m.grossWeight, gross)
			m.netWeight = append(m.netWeight, gross*(0.8+r.Float64()*0.19))

			m.group = append(m.group, cat.Group)
			m.matType = append(m.matType, cat.MatType)
			m.uom = append(m.uom, cat.UoMs[r.Intn(len(cat.UoMs))])
			m.description = append(m.description, materialDescription(r, cat.Group))
			m.created = append(m.created, randDate(r, createdMin, cfg.Start()))
		}
	}

	for i := range m.group {
		m.id = append(m.id, fmt.Sprintf("M%08d", i+1))
	}

	order := shuffleOrder(r, len(m.id))
	m.permute(order)
	return m
}

func (m *materialSet) permute(order []int) {
	n := len(order)
	out := &materialSet{
		id:          make([]string, n),
		description: make([]string, n),
		matType:     make([]string, n),
		group:       make([]string, n),
		uom:         make([]string, n),
		created:     make([]time.Time, n),
		grossWeight: make([]float64, n),
		netWeight:   make([]float64, n),
		basePrice:   make([]float64, n),
	}
	for i, src := range order {
		out.id[i] = m.id[src]
		out.description[i] = m.description[src]
		out.matType[i] = m.matType[src]
		out.group[i] = m.group[src]
		out.uom[i] = m.uom[src]
		out.created[i] = m.created[src]
		out.grossWeight[i] = m.grossWeight[src]
		out.netWeight[i] = m.netWeight[src]
		out.basePrice[i] = m.basePrice[src]
	}
	*m = *out
}

func (m *materialSet) toTable() (*table.Table, error) {
	return table.New("MARA",
		table.Column{Name: "MATNR", Type: table.String, Strings: m.id},
		table.Column{Name: "MAKTX", Type: table.String, Strings: m.description},
		table.Column{Name: "MTART", Type: table.String, Strings: m.matType},
		table.Column{Name: "MATKL", Type: table.String, Strings: m.group},
		table.Column{Name: "MEINS", Type: table.String, Strings: m.uom},
		table.Column{Name: "ERSDA", Type: table.Date, Dates: m.created},
		table.Column{Name: "BRGEW", Type: table.Float64, Float64s: m.grossWeight},
		table.Column{Name: "NTGEW", Type: table.Float64, Float64s: m.netWeight},
	)
}
