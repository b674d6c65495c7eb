package testhelpers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// StationClient provides helper methods for driving the station API in tests
type StationClient struct {
	baseURL string
	client  *http.Client
}

// NewStationClient creates a new HTTP client for a station listening at baseURL
func NewStationClient(baseURL string, client *http.Client) *StationClient {
	if client == nil {
		client = &http.Client{}
	}
	return &StationClient{
		baseURL: baseURL,
		client:  client,
	}
}

// Vehicle represents a customer's vehicle as returned by the station
type Vehicle struct {
	MaxTankCapacity float64 `json:"max_tank_capacity"`
	FuelRemains     float64 `json:"fuel_remains"`
}

// Customer represents a customer from the station service
type Customer struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Money   float64 `json:"money"`
	Vehicle Vehicle `json:"vehicle"`
}

// FillOutcome is the station's answer to a fill request
type FillOutcome struct {
	Poured    bool      `json:"poured"`
	Liters    float64   `json:"liters"`
	Cost      float64   `json:"cost"`
	FuelPrice float64   `json:"fuel_price"`
	Customer  *Customer `json:"customer"`
}

// Sales represents the station's pump totals
type Sales struct {
	Fills        int     `json:"fills"`
	SkippedFills int     `json:"skipped_fills"`
	LitersSold   float64 `json:"liters_sold"`
	Revenue      float64 `json:"revenue"`
}

type createCustomerRequest struct {
	Name    string  `json:"name"`
	Money   float64 `json:"money"`
	Vehicle Vehicle `json:"vehicle"`
}

type fillRequest struct {
	FuelPrice *float64 `json:"fuel_price,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`
}

// RegisterCustomer creates a customer via the station API
func (c *StationClient) RegisterCustomer(name string, money, capacity, remains float64) (*Customer, error) {
	req := createCustomerRequest{
		Name:    name,
		Money:   money,
		Vehicle: Vehicle{MaxTankCapacity: capacity, FuelRemains: remains},
	}

	var customer Customer
	if err := c.post("/customers", req, http.StatusCreated, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetCustomer retrieves a specific customer by ID
func (c *StationClient) GetCustomer(customerID string) (*Customer, error) {
	var customer Customer
	if err := c.get(fmt.Sprintf("/customers/%s", customerID), &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// FillTank asks the pump for fuel. Nil arguments are left out of the request.
func (c *StationClient) FillTank(customerID string, fuelPrice, amount *float64) (*FillOutcome, error) {
	var outcome FillOutcome
	req := fillRequest{FuelPrice: fuelPrice, Amount: amount}
	if err := c.post(fmt.Sprintf("/customers/%s/fill", customerID), req, http.StatusOK, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// AddFunds tops up a customer's balance
func (c *StationClient) AddFunds(customerID string, amount float64) (*Customer, error) {
	var customer Customer
	req := map[string]float64{"amount": amount}
	if err := c.post(fmt.Sprintf("/customers/%s/funds", customerID), req, http.StatusOK, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// GetSales retrieves the pump totals
func (c *StationClient) GetSales() (*Sales, error) {
	var sales Sales
	if err := c.get("/sales", &sales); err != nil {
		return nil, err
	}
	return &sales, nil
}

func (c *StationClient) get(path string, v interface{}) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	return parseJSONResponse(resp, http.StatusOK, v)
}

func (c *StationClient) post(path string, body interface{}, wantStatus int, v interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	return parseJSONResponse(resp, wantStatus, v)
}

// parseJSONResponse checks the status code and decodes the body into v
func parseJSONResponse(resp *http.Response, wantStatus int, v interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("station returned status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
