package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"taxifleet/internal/tenant"
	"taxifleet/pkg/domain"
	"taxifleet/pkg/store"
)

func newTestServer(t *testing.T, seed int) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	registry := tenant.NewRegistry([]string{"TEST01", "ABC123"})
	recordStore := store.NewMemoryStore(registry.Codes(), seed)
	srv, err := New(Config{
		Store:            recordStore,
		Tenants:          registry,
		MaxCarsPerTenant: 10,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, recordStore
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func validCarBody() map[string]any {
	return map[string]any{
		"brand":           "Tesla",
		"model":           "Model 3",
		"electric":        true,
		"fuelUse":         0,
		"owner":           "Jane Doe",
		"dayOfCommission": "2023-05-01",
	}
}

func TestUnknownTenantRejectedRegardlessOfCasing(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	for _, code := range []string{"unknown-code", "UNKNOWN-CODE", "Unknown-Code"} {
		resp, err := http.Get(ts.URL + "/api/" + code + "/car")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("code %q: status = %d, want 401", code, resp.StatusCode)
		}
		body := decodeBody[map[string]any](t, resp)
		if body["success"] != false {
			t.Fatalf("error body should carry success=false, got %v", body)
		}
	}
}

func TestTenantCodeCasingIsNormalized(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/test01/car", validCarBody())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post via lower-case code: status = %d, want 200", resp.StatusCode)
	}
	created := decodeBody[domain.Car](t, resp)

	// The record must be visible through any casing of the same code.
	for _, code := range []string{"TEST01", "test01", "TeSt01"} {
		resp, err := http.Get(fmt.Sprintf("%s/api/%s/car/%d", ts.URL, code, created.ID))
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		got := decodeBody[domain.Car](t, resp)
		if got != created {
			t.Fatalf("code %q sees %+v, want %+v", code, got, created)
		}
	}
}

func TestListCarsReturnsSeededCollection(t *testing.T) {
	ts, _ := newTestServer(t, 5)
	resp, err := http.Get(ts.URL + "/api/TEST01/car")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	cars := decodeBody[[]domain.Car](t, resp)
	if len(cars) != 5 {
		t.Fatalf("seeded list size = %d, want 5", len(cars))
	}
}

func TestListCarsEmptyCollectionIsEmptyArray(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	resp, err := http.Get(ts.URL + "/api/TEST01/car")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	if got := bytes.TrimSpace(buf.Bytes()); string(got) != "[]" {
		t.Fatalf("empty collection body = %q, want []", got)
	}
}

func TestCreateAssignsNextIDAndGetReturnsStoredFields(t *testing.T) {
	ts, recordStore := newTestServer(t, 5)

	highest := -1
	for _, car := range recordStore.ListCars("TEST01") {
		if car.ID > highest {
			highest = car.ID
		}
	}

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/TEST01/car", validCarBody())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("post status = %d, want 200", resp.StatusCode)
	}
	created := decodeBody[domain.Car](t, resp)
	if created.ID != highest+1 {
		t.Fatalf("created id = %d, want %d", created.ID, highest+1)
	}

	resp, err := http.Get(fmt.Sprintf("%s/api/TEST01/car/%d", ts.URL, created.ID))
	if err != nil {
		t.Fatalf("get created: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	got := decodeBody[domain.Car](t, resp)
	if got != created {
		t.Fatalf("stored car %+v, want %+v", got, created)
	}
}

func TestCreateValidationFailureNames(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	body := validCarBody()
	body["fuelUse"] = 0.01
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/TEST01/car", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	got := decodeBody[map[string]any](t, resp)
	if msg, _ := got["message"].(string); msg != "Fuel consumption should be 0 for electric cars." {
		t.Fatalf("message = %q", msg)
	}
}

func TestCreateMalformedJSONBody(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	resp, err := http.Post(ts.URL+"/api/TEST01/car", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	got := decodeBody[map[string]any](t, resp)
	if msg, _ := got["message"].(string); msg != "invalid JSON body" {
		t.Fatalf("message = %q", msg)
	}
}

func TestCreateRejectedAtCapacity(t *testing.T) {
	ts, recordStore := newTestServer(t, 10)
	if recordStore.CountCars("TEST01") != 10 {
		t.Fatalf("precondition: tenant should hold 10 records")
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/TEST01/car", validCarBody())
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	got := decodeBody[map[string]any](t, resp)
	if msg, _ := got["message"].(string); msg != "A maximum of 10 cars can be stored per tenant." {
		t.Fatalf("message = %q", msg)
	}
	if recordStore.CountCars("TEST01") != 10 {
		t.Fatalf("capacity rejection must not grow the collection")
	}
}

func TestUpdateUnknownIDReturns404AndLeavesCollection(t *testing.T) {
	ts, recordStore := newTestServer(t, 3)
	before := recordStore.ListCars("TEST01")

	body := validCarBody()
	body["id"] = 999
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/TEST01/car", body)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	after := recordStore.ListCars("TEST01")
	if len(after) != len(before) {
		t.Fatalf("collection changed on failed update")
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("record %d changed on failed update", i)
		}
	}
}

func TestUpdateWithoutIDReturns404AndLeavesRecordZero(t *testing.T) {
	ts, recordStore := newTestServer(t, 5)
	before, found := recordStore.CarByID("TEST01", 0)
	if !found {
		t.Fatalf("precondition: seeded tenant should hold record 0")
	}

	// No id in the body: the update must not fall back to record 0.
	body := validCarBody()
	body["model"] = "Clobbered"
	body["electric"] = false
	body["fuelUse"] = 9.9
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/TEST01/car", body)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	after, _ := recordStore.CarByID("TEST01", 0)
	if after != before {
		t.Fatalf("record 0 changed by id-less update: %+v -> %+v", before, after)
	}
}

func TestUpdateReplacesRecord(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	created := decodeBody[domain.Car](t, doJSON(t, http.MethodPost, ts.URL+"/api/TEST01/car", validCarBody()))

	body := validCarBody()
	body["id"] = created.ID
	body["model"] = "Model Y"
	body["electric"] = false
	body["fuelUse"] = 8.4
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/TEST01/car", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d, want 200", resp.StatusCode)
	}
	updated := decodeBody[domain.Car](t, resp)
	if updated.Model != "Model Y" || updated.Electric || updated.FuelUse != 8.4 {
		t.Fatalf("updated car = %+v", updated)
	}

	got := decodeBody[domain.Car](t, doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/TEST01/car/%d", ts.URL, created.ID), nil))
	if got != updated {
		t.Fatalf("stored %+v, want %+v", got, updated)
	}
}

func TestUpdateValidationFailure(t *testing.T) {
	ts, _ := newTestServer(t, 1)
	body := validCarBody()
	body["id"] = 0
	body["owner"] = "Smith"
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/TEST01/car", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeleteFlow(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	created := decodeBody[domain.Car](t, doJSON(t, http.MethodPost, ts.URL+"/api/TEST01/car", validCarBody()))

	url := fmt.Sprintf("%s/api/TEST01/car/%d", ts.URL, created.ID)
	resp := doJSON(t, http.MethodDelete, url, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", resp.StatusCode)
	}
	flag := decodeBody[map[string]bool](t, resp)
	if !flag["success"] {
		t.Fatalf("delete response = %v, want success flag", flag)
	}

	resp = doJSON(t, http.MethodGet, url, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, url, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestNonIntegerIDIsBadRequest(t *testing.T) {
	ts, _ := newTestServer(t, 0)
	resp, err := http.Get(ts.URL + "/api/TEST01/car/abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	got := decodeBody[map[string]any](t, resp)
	if msg, _ := got["message"].(string); msg != "Invalid identifier is given: abc" {
		t.Fatalf("message = %q", msg)
	}
}

func TestCORSHeadersOnEveryResponse(t *testing.T) {
	ts, _ := newTestServer(t, 0)

	resp, err := http.Get(ts.URL + "/api/TEST01/car")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header on normal response")
	}

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/TEST01/car", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", resp.StatusCode)
	}
}

func TestStaticDirServesFrontendAssets(t *testing.T) {
	staticDir := t.TempDir()
	page := []byte("<!doctype html><title>taxifleet</title>")
	if err := os.WriteFile(filepath.Join(staticDir, "index.html"), page, 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}

	registry := tenant.NewRegistry([]string{"TEST01"})
	srv, err := New(Config{
		Store:            store.NewMemoryStore(registry.Codes(), 0),
		Tenants:          registry,
		MaxCarsPerTenant: 10,
		StaticDir:        staticDir,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get root: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !bytes.Equal(body, page) {
		t.Fatalf("served body = %q, want asset content", body)
	}

	// The API subtree must stay routed to the handlers, not the file server.
	resp, err = http.Get(ts.URL + "/api/TEST01/car")
	if err != nil {
		t.Fatalf("get api: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("api status with static dir = %d, want 200", resp.StatusCode)
	}
}

func TestWriteRateLimitReturns429(t *testing.T) {
	redis := miniredis.RunT(t)
	registry := tenant.NewRegistry([]string{"TEST01"})
	srv, err := New(Config{
		Store:                   store.NewMemoryStore(registry.Codes(), 0),
		Tenants:                 registry,
		MaxCarsPerTenant:        10,
		RedisAddr:               redis.Addr(),
		WriteRateLimitPerMinute: 1,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/TEST01/car", validCarBody())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first write status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/TEST01/car", validCarBody())
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second write status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("rate-limited response should advertise Retry-After")
	}
	resp.Body.Close()
}
