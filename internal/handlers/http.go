package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"fuel-station/internal/service"
	"fuel-station/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// HTTPHandler handles HTTP requests for the station service
type HTTPHandler struct {
	station  *service.StationService
	validate *validator.Validate
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(station *service.StationService) *HTTPHandler {
	return &HTTPHandler{
		station:  station,
		validate: newValidator(),
	}
}

// RegisterRoutes sets up HTTP routes
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/customers", h.GetAllCustomers).Methods("GET")
	router.HandleFunc("/customers", h.CreateCustomer).Methods("POST")
	router.HandleFunc("/customers/{id}", h.GetCustomer).Methods("GET")
	router.HandleFunc("/customers/{id}/fill", h.FillTank).Methods("POST")
	router.HandleFunc("/customers/{id}/funds", h.AddFunds).Methods("POST")
	router.HandleFunc("/sales", h.GetSales).Methods("GET")
}

// VehicleRequest describes the vehicle a new customer brings
type VehicleRequest struct {
	MaxTankCapacity float64 `json:"max_tank_capacity" validate:"gt=0"`
	FuelRemains     float64 `json:"fuel_remains" validate:"gte=0,ltefield=MaxTankCapacity"`
}

// CreateCustomerRequest represents a customer registration request
type CreateCustomerRequest struct {
	Name    string         `json:"name" validate:"required,max=100"`
	Money   float64        `json:"money" validate:"gte=0"`
	Vehicle VehicleRequest `json:"vehicle"`
}

// FillRequest asks the pump for fuel. Both fields are optional: no amount
// fills the tank to full, no fuel_price uses the station price.
type FillRequest struct {
	FuelPrice *float64 `json:"fuel_price,omitempty" validate:"omitempty,gt=0"`
	Amount    *float64 `json:"amount,omitempty" validate:"omitempty,gte=0"`
}

// AddFundsRequest tops up a customer's balance
type AddFundsRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

// Health returns service health status
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "healthy",
		"fuel_price": h.station.FuelPrice(),
	})
}

// GetAllCustomers returns all customers
func (h *HTTPHandler) GetAllCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.station.GetAllCustomers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, customers)
}

// CreateCustomer registers a new customer and their vehicle
func (h *HTTPHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.station.RegisterCustomer(
		r.Context(),
		req.Name,
		req.Money,
		req.Vehicle.MaxTankCapacity,
		req.Vehicle.FuelRemains,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, customer)
}

// GetCustomer retrieves a specific customer
func (h *HTTPHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["id"]

	customer, err := h.station.GetCustomer(r.Context(), customerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// FillTank pours fuel for a customer. A fill under the minimum pour still
// returns 200 with poured=false.
func (h *HTTPHandler) FillTank(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["id"]

	// An empty body is a plain fill-to-full at the station price
	var req FillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if !h.validateRequest(w, &req) {
		return
	}

	outcome, err := h.station.FillTank(r.Context(), customerID, req.FuelPrice, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// AddFunds credits a customer's balance
func (h *HTTPHandler) AddFunds(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["id"]

	var req AddFundsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.station.AddFunds(r.Context(), customerID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, customer)
}

// GetSales returns pump totals
func (h *HTTPHandler) GetSales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.station.GetSales())
}

func (h *HTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}

	return h.validateRequest(w, req)
}

func (h *HTTPHandler) validateRequest(w http.ResponseWriter, req interface{}) bool {
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"errors": FormatValidationError(err),
		})
		return false
	}

	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrCustomerNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, storage.ErrCustomerExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, service.ErrInvalidCustomer),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrInvalidAmount):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("Request failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
