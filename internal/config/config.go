package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const dateLayout = "2006-01-02"

// Config is the complete parameter set for one generation run. It is built
// once by Load, checked by Validate and never mutated afterwards; every
// pipeline stage receives the same instance.
type Config struct {
	Seed      int64  `json:"seed" mapstructure:"seed"`
	StartDate string `json:"start_date" mapstructure:"start_date"`
	EndDate   string `json:"end_date" mapstructure:"end_date"`

	// Volumes
	NumVendors   int `json:"num_vendors" mapstructure:"num_vendors"`
	NumMaterials int `json:"num_materials" mapstructure:"num_materials"`
	NumContracts int `json:"num_contracts" mapstructure:"num_contracts"`
	NumPOs       int `json:"num_pos" mapstructure:"num_pos"`

	// Vendor distribution
	ParetoTierSplit      float64 `json:"pareto_tier_split" mapstructure:"pareto_tier_split"`
	ParetoSpendShare     float64 `json:"pareto_spend_share" mapstructure:"pareto_spend_share"`
	PreferredVendorRatio float64 `json:"preferred_vendor_ratio" mapstructure:"preferred_vendor_ratio"`
	VendorBlockRate      float64 `json:"vendor_block_rate" mapstructure:"vendor_block_rate"`
	PerfBiasSigma        float64 `json:"perf_bias_sigma" mapstructure:"perf_bias_sigma"`

	// Pricing
	PriceVolatility       float64 `json:"price_volatility" mapstructure:"price_volatility"`
	PreferredDiscountMin  float64 `json:"preferred_discount_min" mapstructure:"preferred_discount_min"`
	PreferredDiscountMax  float64 `json:"preferred_discount_max" mapstructure:"preferred_discount_max"`
	ContractDiscountMin   float64 `json:"contract_discount_min" mapstructure:"contract_discount_min"`
	ContractDiscountMax   float64 `json:"contract_discount_max" mapstructure:"contract_discount_max"`
	ContractCoverage      float64 `json:"contract_coverage" mapstructure:"contract_coverage"`
	ContractCompliance    float64 `json:"contract_compliance_rate" mapstructure:"contract_compliance_rate"`
	ContractDurationMin   int     `json:"contract_duration_min_days" mapstructure:"contract_duration_min_days"`
	ContractDurationMax   int     `json:"contract_duration_max_days" mapstructure:"contract_duration_max_days"`

	// Order shape
	POMaxItems             int     `json:"po_max_items" mapstructure:"po_max_items"`
	POItemCountMu          float64 `json:"po_item_count_mu" mapstructure:"po_item_count_mu"`
	POItemCountSigma       float64 `json:"po_item_count_sigma" mapstructure:"po_item_count_sigma"`
	QuantityMu             float64 `json:"quantity_mu" mapstructure:"quantity_mu"`
	QuantitySigma          float64 `json:"quantity_sigma" mapstructure:"quantity_sigma"`
	LargeOrderQtyThreshold int64   `json:"large_order_qty_threshold" mapstructure:"large_order_qty_threshold"`
	LargeOrderMultiplier   int64   `json:"large_order_multiplier" mapstructure:"large_order_multiplier"`
	LeadTimeMinDays        int     `json:"lead_time_min_days" mapstructure:"lead_time_min_days"`
	LeadTimeMaxDays        int     `json:"lead_time_max_days" mapstructure:"lead_time_max_days"`
	SeasonalityQ4Factor    float64 `json:"seasonality_q4_factor" mapstructure:"seasonality_q4_factor"`

	// Delivery and invoicing
	DeliveryLateRate  float64    `json:"delivery_late_rate" mapstructure:"delivery_late_rate"`
	DelayBandProbs    [3]float64 `json:"delay_band_probs" mapstructure:"delay_band_probs"`
	EarlyDeliveryBias float64    `json:"early_delivery_bias" mapstructure:"early_delivery_bias"`
	InvoiceRate       float64    `json:"invoice_rate" mapstructure:"invoice_rate"`
	InvoiceLagMinDays int        `json:"invoice_lag_min_days" mapstructure:"invoice_lag_min_days"`
	InvoiceLagMaxDays int        `json:"invoice_lag_max_days" mapstructure:"invoice_lag_max_days"`
	IssueRate         float64    `json:"issue_rate" mapstructure:"issue_rate"`

	// Organizational structure
	CompanyCodes     []string  `json:"company_codes" mapstructure:"company_codes"`
	Currencies       []string  `json:"currencies" mapstructure:"currencies"`
	CurrencyWeights  []float64 `json:"currency_weights" mapstructure:"currency_weights"`
	PurchasingOrgs   []string  `json:"purchasing_orgs" mapstructure:"purchasing_orgs"`
	PurchasingGroups []string  `json:"purchasing_groups" mapstructure:"purchasing_groups"`
	Plants           []string  `json:"plants" mapstructure:"plants"`

	Categories []MaterialCategory `json:"material_categories" mapstructure:"material_categories"`

	// Output
	OutputDir string `json:"output_dir" mapstructure:"output_dir"`
	Format    string `json:"format" mapstructure:"format"`

	start time.Time
	end   time.Time
}

// MaterialCategory describes one material segment: its price band, unit
// options, weight band and share of the material master.
type MaterialCategory struct {
	Key       string   `json:"key" mapstructure:"key"`
	Group     string   `json:"group" mapstructure:"group"`
	MatType   string   `json:"mat_type" mapstructure:"mat_type"`
	PriceMin  float64  `json:"price_min" mapstructure:"price_min"`
	PriceMax  float64  `json:"price_max" mapstructure:"price_max"`
	UoMs      []string `json:"uoms" mapstructure:"uoms"`
	WeightMin float64  `json:"weight_min" mapstructure:"weight_min"`
	WeightMax float64  `json:"weight_max" mapstructure:"weight_max"`
	Share     float64  `json:"share" mapstructure:"share"`
}

// DefaultCategories mirrors the standard SAP-flavored material segments.
// The last category takes whatever share remains so counts always add up.
func DefaultCategories() []MaterialCategory {
	return []MaterialCategory{
		{Key: "ELECT_F", Group: "ELECT", MatType: "FERT", PriceMin: 1000, PriceMax: 10000, UoMs: []string{"PC", "EA"}, WeightMin: 1.0, WeightMax: 20.0, Share: 0.20},
		{Key: "ELECT_P", Group: "ELECT", MatType: "HALB", PriceMin: 100, PriceMax: 1000, UoMs: []string{"PC", "EA"}, WeightMin: 0.1, WeightMax: 2.0, Share: 0.15},
		{Key: "OFFICE", Group: "OFFICE", MatType: "HAWA", PriceMin: 1, PriceMax: 500, UoMs: []string{"EA", "BOX", "PAK"}, WeightMin: 0.1, WeightMax: 5.0, Share: 0.30},
		{Key: "RAW", Group: "RAW", MatType: "ROH", PriceMin: 50, PriceMax: 5000, UoMs: []string{"KG", "L", "M", "TON"}, WeightMin: 10.0, WeightMax: 1000.0, Share: 0.25},
		{Key: "SERV", Group: "SERV", MatType: "DIEN", PriceMin: 500, PriceMax: 50000, UoMs: []string{"AU", "HR", "DAY"}, WeightMin: 0, WeightMax: 0, Share: 0},
	}
}

// Default returns the configuration with every knob at its documented default.
func Default() *Config {
	return &Config{
		Seed:      4242,
		StartDate: "2020-01-01",
		EndDate:   "2024-12-31",

		NumVendors:   1000,
		NumMaterials: 5000,
		NumContracts: 2000,
		NumPOs:       10000,

		ParetoTierSplit:      0.20,
		ParetoSpendShare:     0.80,
		PreferredVendorRatio: 0.10,
		VendorBlockRate:      0.05,
		PerfBiasSigma:        2.0,

		PriceVolatility:      0.15,
		PreferredDiscountMin: 0.10,
		PreferredDiscountMax: 0.15,
		ContractDiscountMin:  0.05,
		ContractDiscountMax:  0.15,
		ContractCoverage:     0.45,
		ContractCompliance:   0.80,
		ContractDurationMin:  365,
		ContractDurationMax:  1095,

		POMaxItems:             15,
		POItemCountMu:          1.2,
		POItemCountSigma:       0.5,
		QuantityMu:             1.3,
		QuantitySigma:          0.6,
		LargeOrderQtyThreshold: 15,
		LargeOrderMultiplier:   10,
		LeadTimeMinDays:        5,
		LeadTimeMaxDays:        30,
		SeasonalityQ4Factor:    1.3,

		DeliveryLateRate:  0.25,
		DelayBandProbs:    [3]float64{0.70, 0.20, 0.10},
		EarlyDeliveryBias: 0.10,
		InvoiceRate:       0.95,
		InvoiceLagMinDays: 5,
		InvoiceLagMaxDays: 30,
		IssueRate:         0.08,

		CompanyCodes:     []string{"1000", "2000", "3000"},
		Currencies:       []string{"USD", "EUR", "GBP"},
		CurrencyWeights:  []float64{0.6, 0.3, 0.1},
		PurchasingOrgs:   []string{"ORG1", "ORG2", "ORG3"},
		PurchasingGroups: []string{"GRP1", "GRP2", "GRP3", "GRP4"},
		Plants:           []string{"1000", "2000", "3000", "4000"},

		Categories: DefaultCategories(),

		OutputDir: "data",
		Format:    "parquet",
	}
}

// Load builds the configuration from whatever viper has read (config file
// plus environment), falling back to defaults for anything unset.
func Load() (*Config, error) {
	cfg := Default()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}
	return cfg, nil
}

// Validate checks every knob before any generation starts. The first
// violation aborts the run with the offending field and value.
func (c *Config) Validate() error {
	if c.NumVendors <= 0 {
		return fmt.Errorf("num_vendors must be positive, got %d", c.NumVendors)
	}
	if c.NumMaterials <= 0 {
		return fmt.Errorf("num_materials must be positive, got %d", c.NumMaterials)
	}
	if c.NumPOs <= 0 {
		return fmt.Errorf("num_pos must be positive, got %d", c.NumPOs)
	}
	if c.NumContracts < 0 {
		return fmt.Errorf("num_contracts must not be negative, got %d", c.NumContracts)
	}

	probs := []struct {
		name  string
		value float64
	}{
		{"pareto_tier_split", c.ParetoTierSplit},
		{"pareto_spend_share", c.ParetoSpendShare},
		{"preferred_vendor_ratio", c.PreferredVendorRatio},
		{"vendor_block_rate", c.VendorBlockRate},
		{"contract_coverage", c.ContractCoverage},
		{"contract_compliance_rate", c.ContractCompliance},
		{"delivery_late_rate", c.DeliveryLateRate},
		{"early_delivery_bias", c.EarlyDeliveryBias},
		{"invoice_rate", c.InvoiceRate},
		{"issue_rate", c.IssueRate},
		{"preferred_discount_min", c.PreferredDiscountMin},
		{"preferred_discount_max", c.PreferredDiscountMax},
		{"contract_discount_min", c.ContractDiscountMin},
		{"contract_discount_max", c.ContractDiscountMax},
	}
	for _, p := range probs {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", p.name, p.value)
		}
	}

	if c.PreferredDiscountMin > c.PreferredDiscountMax {
		return fmt.Errorf("preferred_discount_min %g exceeds preferred_discount_max %g", c.PreferredDiscountMin, c.PreferredDiscountMax)
	}
	if c.ContractDiscountMin > c.ContractDiscountMax {
		return fmt.Errorf("contract_discount_min %g exceeds contract_discount_max %g", c.ContractDiscountMin, c.ContractDiscountMax)
	}
	if c.ContractDurationMin <= 0 || c.ContractDurationMin > c.ContractDurationMax {
		return fmt.Errorf("contract duration range [%d,%d] days is invalid", c.ContractDurationMin, c.ContractDurationMax)
	}
	if c.PriceVolatility < 0 {
		return fmt.Errorf("price_volatility must not be negative, got %g", c.PriceVolatility)
	}
	if c.PerfBiasSigma < 0 {
		return fmt.Errorf("perf_bias_sigma must not be negative, got %g", c.PerfBiasSigma)
	}
	if c.POMaxItems < 1 {
		return fmt.Errorf("po_max_items must be at least 1, got %d", c.POMaxItems)
	}
	if c.LargeOrderQtyThreshold < 1 {
		return fmt.Errorf("large_order_qty_threshold must be at least 1, got %d", c.LargeOrderQtyThreshold)
	}
	if c.LargeOrderMultiplier < 1 {
		return fmt.Errorf("large_order_multiplier must be at least 1, got %d", c.LargeOrderMultiplier)
	}
	if c.LeadTimeMinDays <= 0 || c.LeadTimeMinDays > c.LeadTimeMaxDays {
		return fmt.Errorf("lead time range [%d,%d] days is invalid", c.LeadTimeMinDays, c.LeadTimeMaxDays)
	}
	if c.InvoiceLagMinDays <= 0 || c.InvoiceLagMinDays > c.InvoiceLagMaxDays {
		return fmt.Errorf("invoice lag range [%d,%d] days is invalid", c.InvoiceLagMinDays, c.InvoiceLagMaxDays)
	}
	if c.SeasonalityQ4Factor <= 0 {
		return fmt.Errorf("seasonality_q4_factor must be positive, got %g", c.SeasonalityQ4Factor)
	}

	bandSum := c.DelayBandProbs[0] + c.DelayBandProbs[1] + c.DelayBandProbs[2]
	if bandSum < 0.999 || bandSum > 1.001 {
		return fmt.Errorf("delay_band_probs must sum to 1, got %g", bandSum)
	}
	for _, p := range c.DelayBandProbs {
		if p < 0 {
			return fmt.Errorf("delay_band_probs entries must not be negative, got %g", p)
		}
	}

	if len(c.Currencies) == 0 || len(c.Currencies) != len(c.CurrencyWeights) {
		return fmt.Errorf("currencies (%d) and currency_weights (%d) must be non-empty and equal length", len(c.Currencies), len(c.CurrencyWeights))
	}
	var wsum float64
	for _, w := range c.CurrencyWeights {
		if w < 0 {
			return fmt.Errorf("currency_weights entries must not be negative, got %g", w)
		}
		wsum += w
	}
	if wsum == 0 {
		return fmt.Errorf("currency_weights must not all be zero")
	}
	for _, s := range [][]string{c.CompanyCodes, c.PurchasingOrgs, c.PurchasingGroups, c.Plants} {
		if len(s) == 0 {
			return fmt.Errorf("company_codes, purchasing_orgs, purchasing_groups and plants must not be empty")
		}
	}

	var shareSum float64
	for _, cat := range c.Categories {
		if cat.PriceMin <= 0 || cat.PriceMin > cat.PriceMax {
			return fmt.Errorf("material category %s price range [%g,%g] is invalid", cat.Key, cat.PriceMin, cat.PriceMax)
		}
		if cat.Share < 0 || cat.Share > 1 {
			return fmt.Errorf("material category %s share must be in [0,1], got %g", cat.Key, cat.Share)
		}
		if len(cat.UoMs) == 0 {
			return fmt.Errorf("material category %s has no units of measure", cat.Key)
		}
		shareSum += cat.Share
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("material_categories must not be empty")
	}
	if shareSum > 1.001 {
		return fmt.Errorf("material category shares must sum to at most 1, got %g", shareSum)
	}

	if c.Format != "parquet" && c.Format != "csv" {
		return fmt.Errorf("format must be parquet or csv, got %q", c.Format)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}

	start, err := time.Parse(dateLayout, c.StartDate)
	if err != nil {
		return fmt.Errorf("start_date %q is not a valid date: %w", c.StartDate, err)
	}
	end, err := time.Parse(dateLayout, c.EndDate)
	if err != nil {
		return fmt.Errorf("end_date %q is not a valid date: %w", c.EndDate, err)
	}
	if !start.Before(end) {
		return fmt.Errorf("start_date %s must be before end_date %s", c.StartDate, c.EndDate)
	}
	c.start = start
	c.end = end

	return nil
}

// Start returns the parsed simulation start date. Valid only after Validate.
func (c *Config) Start() time.Time { return c.start }

// End returns the parsed simulation end date. Valid only after Validate.
func (c *Config) End() time.Time { return c.end }

// HorizonDays is the number of days in the simulation window.
func (c *Config) HorizonDays() int {
	return int(c.end.Sub(c.start).Hours() / 24)
}
