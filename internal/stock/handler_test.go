package stock

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/stockmitra/stockmitra/internal/company"
	"github.com/stockmitra/stockmitra/internal/txlog"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := company.NewRegistry(t.TempDir(), nil)
	_, err := registry.Add(context.Background(), "Acme")
	require.NoError(t, err)

	svc := NewService(NewFileLedger(), txlog.NewStore(), ServiceConfig{Clock: testClock}, nil)
	handler := NewHandler(nil, svc, registry)

	r := chi.NewRouter()
	r.Route("/api/companies/{company}", func(r chi.Router) {
		handler.MountRoutes(r)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestHandlerAddSellFlow(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/companies/Acme"

	resp := postJSON(t, base+"/stock", map[string]any{
		"product_id":          "para01",
		"product_name":        "Paracetamol 500mg",
		"num_cartons":         2,
		"quantity_per_carton": 10,
		"location":            "A1",
		"date_inwarded":       "2025-03-01",
		"mrp":                 50,
		"purchase_price":      30,
		"sales_price":         40,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var added AddStockResult
	decodeBody(t, resp, &added)
	require.Len(t, added.Cartons, 2)
	require.Equal(t, "PARA01-C01", added.Cartons[0].CartonID)

	resp = postJSON(t, base+"/sales", map[string]any{
		"query":        "paracetamol",
		"loose_pieces": 4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sold SellResult
	decodeBody(t, resp, &sold)
	require.Equal(t, 4, sold.Receipt.TotalUnits)

	resp, err := http.Get(base + "/dashboard")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dash DashboardView
	decodeBody(t, resp, &dash)
	require.Equal(t, 16, dash.Stats.TotalLive)
	require.Equal(t, 2, dash.Stats.TotalCartons)

	resp, err = http.Get(base + "/stock/find?q=para01")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found FindResult
	decodeBody(t, resp, &found)
	require.Equal(t, "PARA01", found.Summary.ProductID)

	resp, err = http.Get(base + "/transactions")
	require.NoError(t, err)
	var history HistoryView
	decodeBody(t, resp, &history)
	require.Len(t, history.Rows, 3, "two purchases and one sale")
}

func TestHandlerErrors(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/companies"

	resp, err := http.Get(base + "/Nobody/dashboard")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(base + "/Acme/stock/find?q=ghost")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, base+"/Acme/sales", map[string]any{"query": "ghost", "loose_pieces": 1})
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, base+"/Acme/stock", map[string]any{"product_id": "X"})
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "validator rejects missing fields")

	req, err := http.NewRequest(http.MethodDelete, base+"/Acme/transactions", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "clearing requires confirm=true")

	req, err = http.NewRequest(http.MethodDelete, base+"/Acme/transactions?confirm=true", nil)
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}
