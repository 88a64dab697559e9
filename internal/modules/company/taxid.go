package company

import "regexp"

// Tax-identifier formats by country ISO code. Unlisted jurisdictions fall
// back to a permissive pattern.
var taxIDPatterns = map[string]*regexp.Regexp{
	"KZ": regexp.MustCompile(`^\d{12}$`),                               // BIN
	"IN": regexp.MustCompile(`^[0-9]{2}[A-Z0-9]{10}[0-9A-Z]{3}$`),      // GSTIN
	"US": regexp.MustCompile(`^\d{2}-?\d{7}$`),                         // EIN
	"GB": regexp.MustCompile(`^(GB)?\d{9}(\d{3})?$`),                   // VAT
	"DE": regexp.MustCompile(`^(DE)?\d{9}$`),                           // USt-IdNr
}

var genericTaxID = regexp.MustCompile(`^[A-Z0-9-]{4,20}$`)

// ValidTaxID checks a tax identifier against its jurisdiction's format.
func ValidTaxID(isoCode, taxID string) bool {
	if taxID == "" {
		return true
	}
	if re, ok := taxIDPatterns[isoCode]; ok {
		return re.MatchString(taxID)
	}
	return genericTaxID.MatchString(taxID)
}
