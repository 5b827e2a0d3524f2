package domain

// Car is a single vehicle record. Records are owned by exactly one tenant;
// the id is assigned by the record store and is unique within that tenant.
type Car struct {
	ID              int     `json:"id"`
	Brand           string  `json:"brand"`
	Model           string  `json:"model"`
	FuelUse         float64 `json:"fuelUse"`
	Owner           string  `json:"owner"`
	DayOfCommission string  `json:"dayOfCommission"`
	Electric        bool    `json:"electric"`
}

// ValidBrands is the closed set of accepted manufacturer names.
// Brand matching is exact and case-sensitive.
var ValidBrands = []string{
	"Toyota", "Honda", "Ford", "Chevrolet", "Nissan", "BMW", "Mercedes-Benz",
	"Volkswagen", "Audi", "Hyundai", "Kia", "Subaru", "Lexus", "Mazda", "Tesla",
	"Jeep", "Porsche", "Volvo", "Jaguar", "Land Rover", "Mitsubishi", "Ferrari",
	"Lamborghini",
}

var validBrandSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(ValidBrands))
	for _, b := range ValidBrands {
		set[b] = struct{}{}
	}
	return set
}()

// IsValidBrand reports whether brand belongs to ValidBrands.
func IsValidBrand(brand string) bool {
	_, ok := validBrandSet[brand]
	return ok
}
