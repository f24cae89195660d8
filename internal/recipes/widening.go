package recipes

import "github.com/toyz/numderive/internal/models"

// Widening family names
const (
	Signed   = "Signed"
	Unsigned = "Unsigned"
)

// int, uint and uintptr are left out: their width is platform dependent, so
// they are not strictly narrower than the 64-bit hubs.
var wideningTable = [...]models.WideningRecipe{
	{
		Family:  Signed,
		Hub:     models.KindInt64,
		Sources: []models.Kind{models.KindInt8, models.KindInt16, models.KindInt32},
	},
	{
		Family:  Unsigned,
		Hub:     models.KindUint64,
		Sources: []models.Kind{models.KindUint8, models.KindUint16, models.KindUint32},
	},
}

var textRecipe = models.TextRecipe{
	HubName:    "String",
	HubType:    "string",
	SourceName: "Bytes",
}

// Text returns the recipe deriving []byte construction from string
// construction
func Text() models.TextRecipe {
	return textRecipe
}

// Widenings returns a copy of the widening table
func Widenings() []models.WideningRecipe {
	out := make([]models.WideningRecipe, len(wideningTable))
	for i, r := range wideningTable {
		r.Sources = append([]models.Kind(nil), r.Sources...)
		out[i] = r
	}
	return out
}

// LookupWidening finds the recipe for a widening family
func LookupWidening(family string) (models.WideningRecipe, bool) {
	for _, r := range Widenings() {
		if r.Family == family {
			return r, true
		}
	}
	return models.WideningRecipe{}, false
}

// Validate checks every widening recipe against its invariants
func Validate() error {
	for _, r := range wideningTable {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}
