// Package report computes dataset-level summary figures from written
// tables, used by the stats command after a run.
package report

import (
	"fmt"
	"sort"

	"github.com/pi22by7/sap-analytics-platform/internal/table"
)

type VendorSpend struct {
	VendorID string
	Name     string
	Spend    float64
}

type Summary struct {
	TotalSpend   float64
	SpendByType  map[string]float64
	LateRate     float64
	ReceiptCount int
	TopVendors   []VendorSpend
}

// Summarize derives headline figures from the vendor, header, line and
// history tables of one dataset.
func Summarize(vendors, headers, lines, history *table.Table) (*Summary, error) {
	lineDoc := lines.Column("EBELN")
	lineNo := lines.Column("EBELP")
	lineNet := lines.Column("NETWR")
	lineExpected := lines.Column("EINDT")
	if lineDoc == nil || lineNo == nil || lineNet == nil || lineExpected == nil {
		return nil, fmt.Errorf("order line table is missing required columns")
	}

	headerDoc := headers.Column("EBELN")
	headerType := headers.Column("BSART")
	headerVendor := headers.Column("LIFNR")
	if headerDoc == nil || headerType == nil || headerVendor == nil {
		return nil, fmt.Errorf("order header table is missing required columns")
	}

	docType := make(map[string]string, headerDoc.Len())
	docVendor := make(map[string]string, headerDoc.Len())
	for i := 0; i < headerDoc.Len(); i++ {
		docType[headerDoc.Strings[i]] = headerType.Strings[i]
		docVendor[headerDoc.Strings[i]] = headerVendor.Strings[i]
	}

	s := &Summary{SpendByType: make(map[string]float64)}
	vendorSpend := make(map[string]float64)
	expectedByLine := make(map[string]int, lineDoc.Len())

	for i := 0; i < lineDoc.Len(); i++ {
		net := lineNet.Float64s[i]
		s.TotalSpend += net
		s.SpendByType[docType[lineDoc.Strings[i]]] += net
		vendorSpend[docVendor[lineDoc.Strings[i]]] += net
		expectedByLine[fmt.Sprintf("%s/%d", lineDoc.Strings[i], lineNo.Int64s[i])] = i
	}

	histDoc := history.Column("EBELN")
	histNo := history.Column("EBELP")
	histType := history.Column("BEWTP")
	histActual := history.Column("ACTUAL_DELIVERY_DATE")
	if histDoc == nil || histNo == nil || histType == nil || histActual == nil {
		return nil, fmt.Errorf("history table is missing required columns")
	}

	late := 0
	for i := 0; i < histDoc.Len(); i++ {
		if histType.Strings[i] != "E" || histActual.IsNull(i) {
			continue
		}
		li, ok := expectedByLine[fmt.Sprintf("%s/%d", histDoc.Strings[i], histNo.Int64s[i])]
		if !ok {
			continue
		}
		s.ReceiptCount++
		if histActual.Dates[i].After(lineExpected.Dates[li]) {
			late++
		}
	}
	if s.ReceiptCount > 0 {
		s.LateRate = float64(late) / float64(s.ReceiptCount)
	}

	vendorName := make(map[string]string)
	if id, name := vendors.Column("LIFNR"), vendors.Column("NAME1"); id != nil && name != nil {
		for i := 0; i < id.Len(); i++ {
			vendorName[id.Strings[i]] = name.Strings[i]
		}
	}

	for v, spend := range vendorSpend {
		s.TopVendors = append(s.TopVendors, VendorSpend{VendorID: v, Name: vendorName[v], Spend: spend})
	}
	sort.Slice(s.TopVendors, func(i, j int) bool {
		if s.TopVendors[i].Spend != s.TopVendors[j].Spend {
			return s.TopVendors[i].Spend > s.TopVendors[j].Spend
		}
		return s.TopVendors[i].VendorID < s.TopVendors[j].VendorID
	})
	if len(s.TopVendors) > 5 {
		s.TopVendors = s.TopVendors[:5]
	}

	return s, nil
}
