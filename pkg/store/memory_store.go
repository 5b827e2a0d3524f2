package store

import (
	"log/slog"
	"sync"

	"taxifleet/pkg/domain"
)

// MemoryStore keeps every tenant's collection and id counter in-process.
// A single lock guards all tenants; operations are short and never block, so
// contention is not a concern at this scale.
type MemoryStore struct {
	mu       sync.RWMutex
	cars     map[string][]domain.Car
	counters map[string]int
}

// NewMemoryStore creates a collection and an id counter for every given
// tenant code, seeding each collection with seedPerTenant synthetic cars.
// Collections live for the process lifetime and are never reset.
func NewMemoryStore(tenants []string, seedPerTenant int) *MemoryStore {
	m := &MemoryStore{
		cars:     make(map[string][]domain.Car, len(tenants)),
		counters: make(map[string]int, len(tenants)),
	}
	for _, code := range tenants {
		m.cars[code] = []domain.Car{}
		m.counters[code] = 0
		for i := 0; i < seedPerTenant; i++ {
			car := domain.RandomCar()
			car.ID = m.counters[code]
			m.counters[code]++
			m.cars[code] = append(m.cars[code], car)
		}
	}
	slog.Info("record store created", "tenants", len(tenants), "seed_per_tenant", seedPerTenant)
	return m
}

// ListCars returns a copy of the tenant's collection in insertion order.
func (m *MemoryStore) ListCars(tenant string) []domain.Car {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Car, len(m.cars[tenant]))
	copy(res, m.cars[tenant])
	return res
}

// CarByID scans the tenant's collection for a matching id. Ids are unique
// within a tenant, so first match is the only match.
func (m *MemoryStore) CarByID(tenant string, id int) (domain.Car, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, car := range m.cars[tenant] {
		if car.ID == id {
			return car, true
		}
	}
	return domain.Car{}, false
}

// CountCars returns the tenant's current collection size.
func (m *MemoryStore) CountCars(tenant string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cars[tenant])
}

// SaveCar stores the car under the tenant's next id and returns the stored
// record. Any id on the input is overwritten.
func (m *MemoryStore) SaveCar(tenant string, car domain.Car) domain.Car {
	m.mu.Lock()
	defer m.mu.Unlock()
	car.ID = m.counters[tenant]
	m.counters[tenant]++
	m.cars[tenant] = append(m.cars[tenant], car)
	return car
}

// UpdateCar replaces the record carrying car's id with a value copy of car.
func (m *MemoryStore) UpdateCar(tenant string, car domain.Car) (domain.Car, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.cars[tenant] {
		if existing.ID == car.ID {
			m.cars[tenant][i] = car
			return car, true
		}
	}
	return car, false
}

// DeleteCar removes the record with the given id, keeping the remaining
// records in their original order.
func (m *MemoryStore) DeleteCar(tenant string, id int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, car := range m.cars[tenant] {
		if car.ID == id {
			m.cars[tenant] = append(m.cars[tenant][:i], m.cars[tenant][i+1:]...)
			return true
		}
	}
	return false
}
