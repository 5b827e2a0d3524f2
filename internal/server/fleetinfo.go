package server

import (
	"math/rand/v2"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Fleet utility endpoints: fixed demo datasets for frontend exercises. They
// live outside the tenant scope and need no authorization.

var availableModelBrands = map[string]struct{}{
	"Toyota": {}, "Honda": {}, "Ford": {}, "Chevrolet": {},
	"Nissan": {}, "BMW": {}, "Mercedes-Benz": {}, "Volkswagen": {},
}

var availableModelPool = []string{
	"Xenon", "Vortex", "Stratos", "Nimbus", "Eclipse", "Solstice", "Titan",
	"Aether", "Quantum",
}

var licensePlatePattern = regexp.MustCompile(`^[A-Z]{3,4}-?\d{3}$`)

type fuelLogEntry struct {
	Date     string `json:"date"`
	Liters   int    `json:"liters"`
	KmDriven int    `json:"kmDriven"`
}

var fuelLogs = map[string][]fuelLogEntry{
	"ABC-123": {
		{Date: "2025-03-24", Liters: 12, KmDriven: 160},
		{Date: "2025-03-25", Liters: 15, KmDriven: 200},
		{Date: "2025-03-26", Liters: 10, KmDriven: 130},
		{Date: "2025-03-27", Liters: 18, KmDriven: 250},
		{Date: "2025-03-28", Liters: 14, KmDriven: 180},
		{Date: "2025-03-29", Liters: 20, KmDriven: 270},
		{Date: "2025-03-30", Liters: 11, KmDriven: 140},
		{Date: "2025-03-31", Liters: 0, KmDriven: 0},
	},
}

func init() {
	// Every known plate shares the same demo log.
	fuelLogs["TEST-666"] = fuelLogs["ABC-123"]
	fuelLogs["BELA-112"] = fuelLogs["ABC-123"]
}

type driverRating struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

var driverRatings = []driverRating{
	{Name: "Alice Johnson", Rating: 3.5},
	{Name: "Bob Williams", Rating: 4.2},
	{Name: "Charlie Brown", Rating: 4.7},
	{Name: "David Lee", Rating: 3.9},
	{Name: "Eva Green", Rating: 4.8},
	{Name: "Frank Harris", Rating: 2.3},
	{Name: "Grace Wilson", Rating: 4.6},
	{Name: "Henry Clark", Rating: 1.4},
	{Name: "Ivy Adams", Rating: 0.0},
	{Name: "Jack Taylor", Rating: 4.9},
}

type customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

var customers = []customer{
	{Name: "John Smith", Email: "johndoe@example.com", Phone: "1234567890"},
	{Name: "Jane Smith", Email: "janesmith@example.com", Phone: "0987654321"},
	{Name: "Michael Johnson", Email: "michael.johnson@example.com", Phone: "1122334455"},
	{Name: "Emily Taylor", Email: "emily.davis@example.com", Phone: "2233445566"},
	{Name: "David Taylor", Email: "david.brown@example.com", Phone: "3344556677"},
	{Name: "Sarah Wilson", Email: "sarah.wilson@example.com", Phone: "4455667788"},
	{Name: "James Taylor", Email: "james.taylor@example.com", Phone: "5566778899"},
	{Name: "Patricia Moore", Email: "patricia.moore@example.com", Phone: "6677889900"},
	{Name: "Michael Lee", Email: "michael.lee@example.com", Phone: "7788990011"},
	{Name: "Michael Davis", Email: "michael.davis@example.com", Phone: "8899001122"},
}

// GET /api/available-models?brand=
func (s *Server) handleAvailableModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	brand := r.URL.Query().Get("brand")
	if _, ok := availableModelBrands[brand]; !ok {
		writeError(w, http.StatusBadRequest, "The given brand does not exists.")
		return
	}
	shuffled := make([]string, len(availableModelPool))
	copy(shuffled, availableModelPool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	count := 1 + rand.IntN(len(shuffled)-1)
	writeJSON(w, http.StatusOK, shuffled[:count])
}

// GET /api/validate-license-plate?plate=
func (s *Server) handleValidateLicensePlate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	valid := licensePlatePattern.MatchString(r.URL.Query().Get("plate"))
	message := "Invalid license plate number."
	if valid {
		message = "It is a valid license plate number."
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": valid, "message": message})
}

// GET /api/fuel-log?licensePlate=
func (s *Server) handleFuelLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	log, ok := fuelLogs[r.URL.Query().Get("licensePlate")]
	if !ok {
		writeError(w, http.StatusNotFound, "License plate number is not exists.")
		return
	}
	writeJSON(w, http.StatusOK, log)
}

// GET /api/driver-ratings?limit=
func (s *Server) handleDriverRatings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	limit, err := strconv.ParseFloat(r.URL.Query().Get("limit"), 64)
	if err != nil || limit < 0 || limit > 5 {
		writeError(w, http.StatusBadRequest, "Lower limit should be a number between 0 and 5.")
		return
	}
	matched := make([]driverRating, 0, len(driverRatings))
	for _, d := range driverRatings {
		if d.Rating >= limit {
			matched = append(matched, d)
		}
	}
	writeJSON(w, http.StatusOK, matched)
}

// GET /api/customers?search=
func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	query := r.URL.Query().Get("search")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Customer name should be defined for performing the search.")
		return
	}
	matched := make([]customer, 0, len(customers))
	for _, c := range customers {
		if strings.Contains(c.Name, query) {
			matched = append(matched, c)
		}
	}
	writeJSON(w, http.StatusOK, matched)
}
