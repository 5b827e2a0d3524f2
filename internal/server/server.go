package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"taxifleet/internal/ratelimit"
	"taxifleet/internal/tenant"
	"taxifleet/internal/util"
	"taxifleet/pkg/domain"
	"taxifleet/pkg/store"
)

// Request bodies larger than this are cut off mid-decode.
const maxBodyBytes = 2 << 20

// Config wires required dependencies for the HTTP server.
type Config struct {
	Store                   store.Store
	Tenants                 *tenant.Registry
	MaxCarsPerTenant        int
	StaticDir               string
	RedisAddr               string
	RedisPassword           string
	WriteRateLimitPerMinute int
	TrustedProxies          *util.TrustedProxies
}

// Server exposes the tenant-scoped vehicle record API.
type Server struct {
	store        store.Store
	tenants      *tenant.Registry
	maxCars      int
	mux          *http.ServeMux
	writeLimiter *ratelimit.FixedWindowLimiter
	trusted      *util.TrustedProxies
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("server requires a record store")
	}
	if cfg.Tenants == nil {
		return nil, errors.New("server requires a tenant registry")
	}
	maxCars := cfg.MaxCarsPerTenant
	if maxCars <= 0 {
		maxCars = 10
	}
	s := &Server{
		store:   cfg.Store,
		tenants: cfg.Tenants,
		maxCars: maxCars,
		mux:     http.NewServeMux(),
		trusted: cfg.TrustedProxies,
	}
	if cfg.WriteRateLimitPerMinute > 0 {
		limiter, err := ratelimit.NewFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "taxifleet:ratelimit:write",
			cfg.WriteRateLimitPerMinute, time.Minute,
		)
		if err != nil {
			return nil, fmt.Errorf("init write limiter: %w", err)
		}
		s.writeLimiter = limiter
	}
	s.routes(cfg.StaticDir)
	return s, nil
}

// Router returns the configured handler wrapped in the middleware chain.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(
		util.WithCORS(
			util.WithRequestID(
				util.WithRequestLog(
					util.WithRecover(s.mux)))))
}

func (s *Server) routes(staticDir string) {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// Fleet utility endpoints; not tenant-scoped, no guard. Exact patterns
	// take precedence over the /api/ subtree below.
	s.mux.HandleFunc("/api/available-models", s.handleAvailableModels)
	s.mux.HandleFunc("/api/validate-license-plate", s.handleValidateLicensePlate)
	s.mux.HandleFunc("/api/fuel-log", s.handleFuelLog)
	s.mux.HandleFunc("/api/driver-ratings", s.handleDriverRatings)
	s.mux.HandleFunc("/api/customers", s.handleCustomers)

	// Tenant-scoped records: /api/{tenant}/car[/{id}]
	s.mux.Handle("/api/", s.tenantScoped(s.handleCars))

	if staticDir != "" {
		s.mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// tenantHandler receives the canonical tenant code and the path remainder
// after the tenant segment.
type tenantHandler func(w http.ResponseWriter, r *http.Request, tenantCode, rest string)

// tenantScoped is the access guard: it extracts the tenant path segment,
// rejects codes outside the allow-list with 401, and canonicalizes the code
// before any store access.
func (s *Server) tenantScoped(next tenantHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/api/"), "/", 2)
		code := parts[0]
		if code == "" || !s.tenants.Contains(code) {
			util.LoggerFromContext(r.Context()).Warn("unknown tenant code", "code", code)
			writeError(w, http.StatusUnauthorized, fmt.Sprintf("The given tenant code does not exist: %s", code))
			return
		}
		rest := ""
		if len(parts) == 2 {
			rest = parts[1]
		}
		next(w, r, tenant.Canonical(code), rest)
	})
}

// handleCars dispatches /api/{tenant}/car and /api/{tenant}/car/{id}.
func (s *Server) handleCars(w http.ResponseWriter, r *http.Request, tenantCode, rest string) {
	if rest == "car" {
		switch r.Method {
		case http.MethodGet:
			s.handleListCars(w, r, tenantCode)
		case http.MethodPost:
			s.handleCreateCar(w, r, tenantCode)
		case http.MethodPut:
			s.handleUpdateCar(w, r, tenantCode)
		default:
			methodNotAllowed(w)
		}
		return
	}
	if rawID, ok := strings.CutPrefix(rest, "car/"); ok && !strings.Contains(rawID, "/") {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid identifier is given: %s", rawID))
			return
		}
		switch r.Method {
		case http.MethodGet:
			s.handleGetCar(w, r, tenantCode, id)
		case http.MethodDelete:
			s.handleDeleteCar(w, r, tenantCode, id)
		default:
			methodNotAllowed(w)
		}
		return
	}
	http.NotFound(w, r)
}

func (s *Server) handleListCars(w http.ResponseWriter, r *http.Request, tenantCode string) {
	util.LoggerFromContext(r.Context()).Info("listing all cars", "tenant", tenantCode)
	writeJSON(w, http.StatusOK, s.store.ListCars(tenantCode))
}

func (s *Server) handleGetCar(w http.ResponseWriter, r *http.Request, tenantCode string, id int) {
	util.LoggerFromContext(r.Context()).Info("listing car by id", "tenant", tenantCode, "id", id)
	car, found := s.store.CarByID(tenantCode, id)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No car is found with the given id: %d", id))
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *Server) handleCreateCar(w http.ResponseWriter, r *http.Request, tenantCode string) {
	if !s.allowWrite(w, r) {
		return
	}
	util.LoggerFromContext(r.Context()).Info("creating new car", "tenant", tenantCode)
	if s.store.CountCars(tenantCode) >= s.maxCars {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("A maximum of %d cars can be stored per tenant.", s.maxCars))
		return
	}
	car, ok := s.decodeCar(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.store.SaveCar(tenantCode, car))
}

func (s *Server) handleUpdateCar(w http.ResponseWriter, r *http.Request, tenantCode string) {
	if !s.allowWrite(w, r) {
		return
	}
	util.LoggerFromContext(r.Context()).Info("updating car", "tenant", tenantCode)
	car, ok := s.decodeCar(w, r)
	if !ok {
		return
	}
	updated, found := s.store.UpdateCar(tenantCode, car)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No car exists with the given id: %d", car.ID))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCar(w http.ResponseWriter, r *http.Request, tenantCode string, id int) {
	if !s.allowWrite(w, r) {
		return
	}
	util.LoggerFromContext(r.Context()).Info("deleting car", "tenant", tenantCode, "id", id)
	if !s.store.DeleteCar(tenantCode, id) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No car is found with the given id: %d", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// decodeCar reads the request body and runs it through the validator. On
// failure the response has already been written.
func (s *Server) decodeCar(w http.ResponseWriter, r *http.Request) (domain.Car, bool) {
	var payload any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return domain.Car{}, false
	}
	car, err := domain.SanitizeCar(payload)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Reason)
		} else {
			writeError(w, http.StatusBadRequest, "invalid car payload")
		}
		return domain.Car{}, false
	}
	return car, true
}

// allowWrite applies the optional write rate limit. A nil limiter means the
// deployment runs without Redis and every write is allowed.
func (s *Server) allowWrite(w http.ResponseWriter, r *http.Request) bool {
	if s.writeLimiter == nil {
		return true
	}
	if s.writeLimiter.Allow(util.ClientIP(r, s.trusted)) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, "too many write requests")
	return false
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Message: msg})
}
