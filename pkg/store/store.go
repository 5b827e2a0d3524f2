package store

import "taxifleet/pkg/domain"

// Store defines tenant-scoped vehicle record operations. Every call takes the
// canonical (upper-case) tenant code; callers are expected to have passed the
// code through the access guard first.
type Store interface {
	// ListCars returns the tenant's collection in insertion order. A tenant
	// without records yields an empty slice, never an error.
	ListCars(tenant string) []domain.Car

	// CarByID looks up a record by id within the tenant's collection.
	CarByID(tenant string, id int) (domain.Car, bool)

	// CountCars returns the number of records the tenant currently holds.
	CountCars(tenant string) int

	// SaveCar assigns the tenant's next id to the car, appends it, and
	// returns the stored record. Assigned ids are strictly increasing per
	// tenant and are never reused, even after deletions.
	SaveCar(tenant string, car domain.Car) domain.Car

	// UpdateCar replaces the record with car's id wholesale and reports
	// whether such a record existed. When it did not, the collection is left
	// untouched.
	UpdateCar(tenant string, car domain.Car) (domain.Car, bool)

	// DeleteCar removes the record with the given id, preserving the order
	// of the remaining records, and reports whether a removal occurred.
	DeleteCar(tenant string, id int) bool
}
