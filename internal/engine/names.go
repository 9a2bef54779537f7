package engine

import (
	"fmt"
	"math/rand"
	"strings"
)

// Word lists for master-data text fields. Drawn with the owning stage's
// RNG so the generated names are reproducible per seed.

var companyStems = []string{
	"Global", "United", "Pacific", "Northern", "Summit", "Apex", "Vertex",
	"Pioneer", "Sterling", "Cascade", "Meridian", "Atlas", "Orion", "Delta",
	"Crown", "Anchor", "Beacon", "Harbor", "Keystone", "Vanguard",
}

var companyTrades = []string{
	"Industrial", "Trading", "Logistics", "Components", "Manufacturing",
	"Materials", "Technologies", "Supplies", "Electronics", "Chemical",
	"Packaging", "Precision", "Machinery", "Fabrication", "Distribution",
}

var companySuffixes = []string{"GmbH", "Ltd", "Inc", "Corp", "AG", "LLC", "KG", "SA"}

var countryCodes = []string{
	"US", "DE", "GB", "FR", "IT", "ES", "NL", "CN", "JP", "IN",
	"BR", "MX", "CA", "PL", "CZ", "SE", "CH", "AT", "KR", "TR",
}

var cityNames = []string{
	"Springfield", "Riverton", "Lakewood", "Fairview", "Georgetown",
	"Madison", "Clinton", "Arlington", "Ashland", "Burlington", "Dover",
	"Florence", "Greenville", "Kingston", "Milton", "Newport", "Oxford",
	"Salem", "Troy", "Winchester",
}

var streetNames = []string{
	"Main Street", "Oak Avenue", "Industrial Parkway", "Harbor Road",
	"Commerce Drive", "Mill Lane", "Station Road", "Park Boulevard",
	"Factory Row", "Market Square",
}

var productAdjectives = []string{
	"heavy-duty", "precision", "standard", "industrial", "compact",
	"modular", "high-grade", "certified", "reinforced", "universal",
}

var productNouns = []string{
	"assembly", "unit", "bracket", "module", "housing", "fitting",
	"connector", "panel", "bearing", "fastener", "coupling", "sensor",
}

func companyName(r *rand.Rand) string {
	return fmt.Sprintf("%s %s %s",
		companyStems[r.Intn(len(companyStems))],
		companyTrades[r.Intn(len(companyTrades))],
		companySuffixes[r.Intn(len(companySuffixes))])
}

func countryCode(r *rand.Rand) string {
	return countryCodes[r.Intn(len(countryCodes))]
}

func cityName(r *rand.Rand) string {
	return cityNames[r.Intn(len(cityNames))]
}

func streetAddress(r *rand.Rand) string {
	return fmt.Sprintf("%d %s", r.Intn(9999)+1, streetNames[r.Intn(len(streetNames))])
}

func phoneNumber(r *rand.Rand) string {
	return fmt.Sprintf("+%d-%03d-%03d-%04d", r.Intn(90)+10, r.Intn(1000), r.Intn(1000), r.Intn(10000))
}

func companyEmail(r *rand.Rand, company string) string {
	slug := strings.ToLower(strings.Fields(company)[0])
	return fmt.Sprintf("purchasing@%s%d.example.com", slug, r.Intn(1000))
}

func materialDescription(r *rand.Rand, group string) string {
	return fmt.Sprintf("%s - %s %s", group,
		productAdjectives[r.Intn(len(productAdjectives))],
		productNouns[r.Intn(len(productNouns))])
}
