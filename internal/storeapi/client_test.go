package storeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecomplus/app-google-analytics/internal/auth"
)

func testCreds() *auth.Credentials {
	return &auth.Credentials{
		StoreID:          "51",
		AuthenticationID: "auth-abc",
		APIKey:           "key-xyz",
		ApplicationID:    "app-123",
	}
}

func TestFindOrderByID(t *testing.T) {
	var gotPath, gotStoreID, gotToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStoreID = r.Header.Get("X-Store-ID")
		gotToken = r.Header.Get("X-Access-Token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"_id": "O1",
			"status": "paid",
			"financial_status": {"current": "paid"},
			"buyers": [{"_id": "buyer-1"}],
			"amount": {"total": 50, "freight": 10},
			"currency_id": "BRL",
			"items": [{"sku": "A1", "name": "Widget", "price": 10}]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	order, err := c.FindOrderByID(context.Background(), "51", "O1", testCreds())
	if err != nil {
		t.Fatalf("FindOrderByID error: %v", err)
	}
	if gotPath != "/orders/O1.json" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotStoreID != "51" || gotToken != "key-xyz" {
		t.Fatalf("auth headers not sent: store=%s token=%s", gotStoreID, gotToken)
	}
	if order.ID != "O1" || order.FinancialStatus == nil || order.FinancialStatus.Current != "paid" {
		t.Fatalf("order not decoded: %+v", order)
	}
	if order.Amount.Freight != 10 || len(order.Items) != 1 || order.Items[0].SKU != "A1" {
		t.Fatalf("order fields not decoded: %+v", order)
	}
}

func TestFindOrderByID_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not_found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	_, err := c.FindOrderByID(context.Background(), "51", "missing", testCreds())
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "not_found") {
		t.Fatalf("error should carry status and body: %v", err)
	}
}

func TestGetAppConfig_MergesHiddenData(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {"measurement_id": "M", "ignore_triggers": ["carts"], "custom_events": {"paid": true}},
			"hidden_data": {"api_secret": "S", "refund_event": false}
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	cfg, err := c.GetAppConfig(context.Background(), "51", testCreds())
	if err != nil {
		t.Fatalf("GetAppConfig error: %v", err)
	}
	if gotPath != "/applications/app-123.json" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if cfg.MeasurementID != "M" || cfg.APISecret != "S" {
		t.Fatalf("data/hidden_data not merged: %+v", cfg)
	}
	if !cfg.Ignores("carts") || cfg.Ignores("orders") {
		t.Fatalf("ignore_triggers not decoded: %+v", cfg.IgnoreTriggers)
	}
	if !cfg.CustomEvents["paid"] {
		t.Fatalf("custom_events not decoded: %+v", cfg.CustomEvents)
	}
	if cfg.RefundEnabled() {
		t.Fatal("refund_event=false should disable refund")
	}
}

func TestAppConfig_RefundDefaultsEnabled(t *testing.T) {
	cfg := &AppConfig{}
	if !cfg.RefundEnabled() {
		t.Fatal("unset refund_event must default to enabled")
	}
}
