package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fuel-station/internal/service"
	"fuel-station/internal/storage"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(t *testing.T) (*mux.Router, *service.StationService, *storage.MemoryCustomerStorage) {
	t.Helper()
	customerStorage := storage.NewMemoryCustomerStorage()
	pricing, err := service.NewPricingConfig(20)
	require.NoError(t, err)

	station := service.NewStationService(customerStorage, pricing)
	router := mux.NewRouter()
	NewHTTPHandler(station).RegisterRoutes(router)
	return router, station, customerStorage
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func registerCustomer(t *testing.T, station *service.StationService, money, capacity, remains float64) *storage.Customer {
	t.Helper()
	customer, err := station.RegisterCustomer(context.Background(), "driver", money, capacity, remains)
	require.NoError(t, err)
	return customer
}

func TestHTTPHandler_Health(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	rr := doRequest(router, "GET", "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, 20.0, response["fuel_price"])
}

func TestHTTPHandler_CreateCustomer(t *testing.T) {
	router, _, customerStorage := setupTestRouter(t)

	body := `{"name":"Alex Chen","money":1000,"vehicle":{"max_tank_capacity":50,"fuel_remains":10}}`
	rr := doRequest(router, "POST", "/customers", body)

	require.Equal(t, http.StatusCreated, rr.Code)

	var response storage.Customer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.NotEmpty(t, response.ID)
	assert.Equal(t, "Alex Chen", response.Name)
	assert.Equal(t, 1000.0, response.Money)
	assert.Equal(t, 50.0, response.Vehicle.MaxTankCapacity)

	_, err := customerStorage.GetCustomer(context.Background(), response.ID)
	assert.NoError(t, err)
}

func TestHTTPHandler_CreateCustomer_Validation(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing name", `{"money":10,"vehicle":{"max_tank_capacity":50,"fuel_remains":10}}`, "name"},
		{"negative money", `{"name":"x","money":-1,"vehicle":{"max_tank_capacity":50,"fuel_remains":10}}`, "money"},
		{"zero capacity", `{"name":"x","money":1,"vehicle":{"max_tank_capacity":0,"fuel_remains":0}}`, "max_tank_capacity"},
		{"overfull tank", `{"name":"x","money":1,"vehicle":{"max_tank_capacity":50,"fuel_remains":60}}`, "fuel_remains"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(router, "POST", "/customers", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)

			var response map[string]map[string]string
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
			assert.Contains(t, response["errors"], tt.wantField)
		})
	}

	rr := doRequest(router, "POST", "/customers", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHTTPHandler_GetCustomer(t *testing.T) {
	router, station, _ := setupTestRouter(t)
	customer := registerCustomer(t, station, 100, 50, 10)

	rr := doRequest(router, "GET", "/customers/"+customer.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var response storage.Customer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, customer.ID, response.ID)

	rr = doRequest(router, "GET", "/customers/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHTTPHandler_GetAllCustomers(t *testing.T) {
	router, station, _ := setupTestRouter(t)
	registerCustomer(t, station, 100, 50, 10)
	registerCustomer(t, station, 200, 60, 0)

	rr := doRequest(router, "GET", "/customers", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var response []storage.Customer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Len(t, response, 2)
}

func TestHTTPHandler_FillTank(t *testing.T) {
	router, station, _ := setupTestRouter(t)
	customer := registerCustomer(t, station, 100, 50, 10)

	rr := doRequest(router, "POST", "/customers/"+customer.ID+"/fill", `{"amount":30}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var outcome service.FillOutcome
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&outcome))
	assert.True(t, outcome.Poured)
	assert.Equal(t, 5.0, outcome.Liters)
	assert.Equal(t, 100.0, outcome.Cost)
	assert.Equal(t, 20.0, outcome.FuelPrice)
	assert.Equal(t, 15.0, outcome.Customer.Vehicle.FuelRemains)
	assert.Equal(t, 0.0, outcome.Customer.Money)
}

func TestHTTPHandler_FillTank_EmptyBodyFillsToFull(t *testing.T) {
	router, station, _ := setupTestRouter(t)
	customer := registerCustomer(t, station, 1000, 50, 10)

	rr := doRequest(router, "POST", "/customers/"+customer.ID+"/fill", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var outcome service.FillOutcome
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&outcome))
	assert.Equal(t, 40.0, outcome.Liters)
	assert.Equal(t, 50.0, outcome.Customer.Vehicle.FuelRemains)
	assert.Equal(t, 200.0, outcome.Customer.Money)
}

func TestHTTPHandler_FillTank_PriceOverride(t *testing.T) {
	router, station, _ := setupTestRouter(t)
	customer := registerCustomer(t, station, 200, 50, 40)

	rr := doRequest(router, "POST", "/customers/"+customer.ID+"/fill", `{"fuel_price":1.2345,"amount":5}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var outcome service.FillOutcome
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&outcome))
	assert.Equal(t, 6.17, outcome.Cost)
	assert.Equal(t, 193.83, outcome.Customer.Money)
}

func TestHTTPHandler_FillTank_BelowMinimum(t *testing.T) {
	router, station, _ := setupTestRouter(t)
	customer := registerCustomer(t, station, 30, 50, 48)

	rr := doRequest(router, "POST", "/customers/"+customer.ID+"/fill", `{"amount":5}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var outcome service.FillOutcome
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&outcome))
	assert.False(t, outcome.Poured)
	assert.Equal(t, 48.0, outcome.Customer.Vehicle.FuelRemains)
	assert.Equal(t, 30.0, outcome.Customer.Money)
}

func TestHTTPHandler_FillTank_Errors(t *testing.T) {
	router, station, _ := setupTestRouter(t)
	customer := registerCustomer(t, station, 100, 50, 10)

	rr := doRequest(router, "POST", "/customers/missing/fill", `{}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doRequest(router, "POST", "/customers/"+customer.ID+"/fill", `{"amount":-3}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(router, "POST", "/customers/"+customer.ID+"/fill", `{"fuel_price":-1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(router, "POST", "/customers/"+customer.ID+"/fill", `{"fuel_price":0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(router, "POST", "/customers/"+customer.ID+"/fill", `[`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHTTPHandler_AddFunds(t *testing.T) {
	router, station, _ := setupTestRouter(t)
	customer := registerCustomer(t, station, 30, 50, 10)

	rr := doRequest(router, "POST", "/customers/"+customer.ID+"/funds", `{"amount":70}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var response storage.Customer
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
	assert.Equal(t, 100.0, response.Money)

	rr = doRequest(router, "POST", "/customers/"+customer.ID+"/funds", `{"amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doRequest(router, "POST", "/customers/missing/funds", `{"amount":5}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHTTPHandler_GetSales(t *testing.T) {
	router, station, _ := setupTestRouter(t)
	customer := registerCustomer(t, station, 1000, 50, 10)

	doRequest(router, "POST", "/customers/"+customer.ID+"/fill", "")
	doRequest(router, "POST", "/customers/"+customer.ID+"/fill", "")

	rr := doRequest(router, "GET", "/sales", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var sales service.SalesSummary
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&sales))
	assert.Equal(t, 1, sales.Fills)
	assert.Equal(t, 1, sales.SkippedFills)
	assert.Equal(t, 40.0, sales.LitersSold)
	assert.Equal(t, 800.0, sales.Revenue)
}

func TestDemoHandler(t *testing.T) {
	station := service.NewStationService(storage.NewMemoryCustomerStorage(), nil)
	generator := service.NewDemoTrafficGenerator(station, time.Hour)
	router := mux.NewRouter()
	NewDemoHandler(generator).RegisterRoutes(router)

	rr := doRequest(router, "POST", "/demo/start", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, generator.IsRunning())

	rr = doRequest(router, "GET", "/demo/status", "")
	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
	assert.Equal(t, true, status["running"])

	rr = doRequest(router, "POST", "/demo/stop", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, generator.IsRunning())
}
