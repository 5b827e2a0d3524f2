package domain

import (
	"fmt"
	"math/rand/v2"
)

var randomModels = []string{
	"Xenon", "Vortex", "Stratos", "Nimbus", "Eclipse", "Solstice", "Titan",
	"Aether", "Quantum", "Nebula", "Synergy", "Omicron", "Astra", "Zenith",
	"Fusion", "Hyperion", "Orion", "Celestia", "Spectra", "Nova", "Pulsar",
	"Eon", "Velocity", "Onyx", "Draco", "Lyra", "Infinity", "Mirage",
	"Raptor", "Horizon",
}

var randomFirstNames = []string{
	"Bálint", "Csaba", "Dániel", "Ferenc", "Gergely", "László", "Miklós",
	"Norbert", "Péter", "Zoltán", "Ágnes", "Blanka", "Csilla", "Eszter",
	"Fruzsina", "Hajnalka", "Katalin", "Melinda", "Réka", "Zsófia",
}

var randomLastNames = []string{
	"Kovács", "Szabó", "Tóth", "Horváth", "Varga", "Kiss", "Nagy", "Farkas",
	"Molnár", "Balogh", "Papp", "Takács", "Juhász", "Mészáros", "Szekeres",
	"Fekete", "Lukács", "Hegedűs", "Oláh", "Csák",
}

// RandomCar returns a synthetic, validation-clean car for seeding demo
// collections. The id is left at zero; the store assigns it on save.
func RandomCar() Car {
	electric := rand.Float64() < 0.33
	fuelUse := 0.0
	if !electric {
		fuelUse = 1 + rand.Float64()*19
	}
	return Car{
		Brand:           ValidBrands[rand.IntN(len(ValidBrands))],
		Model:           randomModels[rand.IntN(len(randomModels))],
		Electric:        electric,
		FuelUse:         fuelUse,
		DayOfCommission: randomDate(2020, 2025),
		Owner: randomLastNames[rand.IntN(len(randomLastNames))] +
			" " + randomFirstNames[rand.IntN(len(randomFirstNames))],
	}
}

func randomDate(startYear, endYear int) string {
	year := startYear + rand.IntN(endYear-startYear+1)
	month := 1 + rand.IntN(12)
	// Capped at 28 so every month/year combination stays a real date.
	day := 1 + rand.IntN(28)
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
