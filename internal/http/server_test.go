package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kwanghifi/kwanghifi/internal/core"
	"github.com/kwanghifi/kwanghifi/internal/log"
	"github.com/kwanghifi/kwanghifi/internal/services"
	"github.com/kwanghifi/kwanghifi/internal/store"
)

func newTestServer(t *testing.T, requestsPerMinute int) *Server {
	t.Helper()

	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	sales := services.NewSalesService(store.NewMemoryStore(), nil, logger)
	srv := NewServer(":0", sales, logger, requestsPerMinute)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func seedRecord(t *testing.T, srv *Server) core.SaleRecord {
	t.Helper()

	created, err := srv.sales.Create(context.Background(), core.SaleRecord{
		Brand:        "Luxman",
		Category:     core.CategoryAmplifier,
		Model:        "L-550AX",
		CostPrice:    core.Money{Cents: 180000},
		ShippingCost: core.Money{Cents: 6500},
		SellingPrice: core.Money{Cents: 240000},
		Date:         core.Date("2026-05-19"),
		Note:         "one owner",
	})
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return created
}

func doRequest(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func saleForm() url.Values {
	form := url.Values{}
	form.Set("brand", "Rega")
	form.Set("category", "Player/DAC")
	form.Set("model", "Planar 3")
	form.Set("cost_price", "400.00")
	form.Set("shipping_cost", "20.00")
	form.Set("selling_price", "550.00")
	form.Set("date", "2026-08-12")
	form.Set("note", "new belt")
	return form
}

func postForm(srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return doRequest(srv, req)
}

func TestHandleIndex(t *testing.T) {
	srv := newTestServer(t, 60)
	seedRecord(t, srv)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Hi-Fi Sale Ledger") {
		t.Error("index page missing heading")
	}
	if !strings.Contains(body, "Luxman") {
		t.Error("index page missing seeded record")
	}
	if !strings.Contains(body, "2026-05") {
		t.Error("index page missing month option")
	}
}

func TestHandleIndex_UnknownPath(t *testing.T) {
	srv := newTestServer(t, 60)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCreateRecord(t *testing.T) {
	srv := newTestServer(t, 60)

	rr := postForm(srv, "/records", saleForm())

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"record:created"`) {
		t.Errorf("HX-Trigger %q missing record:created", trigger)
	}
	if !strings.Contains(trigger, `"month":"2026-08"`) {
		t.Errorf("HX-Trigger %q missing month", trigger)
	}
	if got := srv.sales.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestCreateRecord_WrongMethod(t *testing.T) {
	srv := newTestServer(t, 60)

	req := httptest.NewRequest(http.MethodPut, "/records", nil)
	rr := doRequest(srv, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
	if got := rr.Header().Get("Allow"); got != "GET, POST" {
		t.Errorf("Allow = %q, want %q", got, "GET, POST")
	}
}

func TestCreateRecord_InvalidAmount(t *testing.T) {
	srv := newTestServer(t, 60)

	form := saleForm()
	form.Set("cost_price", "abc")
	rr := postForm(srv, "/records", form)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rr.Body.String(), "Invalid cost price") {
		t.Errorf("body = %q, want cost price error", rr.Body.String())
	}
	if got := srv.sales.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestCreateRecord_MissingBrand(t *testing.T) {
	srv := newTestServer(t, 60)

	form := saleForm()
	form.Set("brand", "   ")
	rr := postForm(srv, "/records", form)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rr.Body.String(), "Invalid data") {
		t.Errorf("body = %q, want validation error", rr.Body.String())
	}
}

func TestCreateRecord_EmptyShippingDefaultsToZero(t *testing.T) {
	srv := newTestServer(t, 60)

	form := saleForm()
	form.Set("shipping_cost", "")
	rr := postForm(srv, "/records", form)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	records := srv.sales.List(core.MonthAll)
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].ShippingCost.Cents != 0 {
		t.Errorf("ShippingCost = %d, want 0", records[0].ShippingCost.Cents)
	}
}

func TestCreateRecord_EmptyAmountsDefaultToZero(t *testing.T) {
	srv := newTestServer(t, 60)

	form := saleForm()
	form.Set("cost_price", "")
	form.Set("shipping_cost", "")
	form.Set("selling_price", "")
	rr := postForm(srv, "/records", form)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	records := srv.sales.List(core.MonthAll)
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].CostPrice.Cents != 0 {
		t.Errorf("CostPrice = %d, want 0", records[0].CostPrice.Cents)
	}
	if records[0].SellingPrice.Cents != 0 {
		t.Errorf("SellingPrice = %d, want 0", records[0].SellingPrice.Cents)
	}
}

func TestUpdateRecord_EmptyAmountsDefaultToZero(t *testing.T) {
	srv := newTestServer(t, 60)
	seeded := seedRecord(t, srv)

	form := saleForm()
	form.Set("cost_price", "")
	form.Set("shipping_cost", "")
	form.Set("selling_price", "")
	req := httptest.NewRequest(http.MethodPut, "/records/"+seeded.ID, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := doRequest(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	updated, err := srv.sales.Get(seeded.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if updated.CostPrice.Cents != 0 || updated.ShippingCost.Cents != 0 || updated.SellingPrice.Cents != 0 {
		t.Errorf("amounts = %d/%d/%d, want 0/0/0",
			updated.CostPrice.Cents, updated.ShippingCost.Cents, updated.SellingPrice.Cents)
	}
}

func TestUpdateRecord(t *testing.T) {
	srv := newTestServer(t, 60)
	seeded := seedRecord(t, srv)

	form := saleForm()
	form.Set("brand", "Luxman")
	form.Set("model", "L-550AX")
	form.Set("selling_price", "2350.00")
	form.Set("date", "2026-05-19")
	req := httptest.NewRequest(http.MethodPut, "/records/"+seeded.ID, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := doRequest(srv, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	if trigger := rr.Header().Get("HX-Trigger"); !strings.Contains(trigger, `"record:updated"`) {
		t.Errorf("HX-Trigger %q missing record:updated", trigger)
	}

	updated, err := srv.sales.Get(seeded.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if updated.SellingPrice.Cents != 235000 {
		t.Errorf("SellingPrice = %d, want 235000", updated.SellingPrice.Cents)
	}
}

func TestUpdateRecord_NotFound(t *testing.T) {
	srv := newTestServer(t, 60)

	form := saleForm()
	req := httptest.NewRequest(http.MethodPut, "/records/missing", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := doRequest(srv, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestDeleteRecord(t *testing.T) {
	srv := newTestServer(t, 60)
	seeded := seedRecord(t, srv)

	rr := doRequest(srv, httptest.NewRequest(http.MethodDelete, "/records/"+seeded.ID, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	if trigger := rr.Header().Get("HX-Trigger"); !strings.Contains(trigger, `"record:deleted"`) {
		t.Errorf("HX-Trigger %q missing record:deleted", trigger)
	}
	if got := srv.sales.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestDeleteRecord_POSTFallback(t *testing.T) {
	srv := newTestServer(t, 60)
	seeded := seedRecord(t, srv)

	rr := postForm(srv, "/records/"+seeded.ID, url.Values{})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	if got := srv.sales.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
}

func TestDeleteRecord_NotFound(t *testing.T) {
	srv := newTestServer(t, 60)

	rr := doRequest(srv, httptest.NewRequest(http.MethodDelete, "/records/missing", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestRenderRecordsPartial(t *testing.T) {
	srv := newTestServer(t, 60)
	seedRecord(t, srv)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/records?month=2026-05", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Luxman") {
		t.Error("partial missing record row")
	}
}

func TestRenderRecordsPartial_EmptyMonth(t *testing.T) {
	srv := newTestServer(t, 60)
	seedRecord(t, srv)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/records?month=2030-01", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "Luxman") {
		t.Error("partial contains record outside the month filter")
	}
	if !strings.Contains(body, "No sales recorded") {
		t.Error("partial missing empty state")
	}
}

func TestRenderEditForm(t *testing.T) {
	srv := newTestServer(t, 60)
	seeded := seedRecord(t, srv)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/records/"+seeded.ID+"/edit", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	body := rr.Body.String()
	if !strings.Contains(body, `hx-put="/records/`+seeded.ID+`"`) {
		t.Error("edit form missing hx-put attribute")
	}
	if !strings.Contains(body, `value="L-550AX"`) {
		t.Error("edit form missing model value")
	}
}

func TestRenderEditForm_NotFound(t *testing.T) {
	srv := newTestServer(t, 60)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/records/missing/edit", nil))

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, 60)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %q, want ok status", rr.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	srv := newTestServer(t, 60)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %q", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), `"status":"ready"`) {
		t.Errorf("body = %q, want ready status", rr.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	srv := newTestServer(t, 60)

	if rr := postForm(srv, "/records", saleForm()); rr.Code != http.StatusOK {
		t.Fatalf("create status = %d", rr.Code)
	}

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"sale_records 1",
		`sale_mutations_total{op="create"} 1`,
		"http_requests_total 1",
		"uptime_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, 60)

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for key, want := range headers {
		if got := rr.Header().Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if csp := rr.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "default-src 'self'") {
		t.Errorf("Content-Security-Policy = %q", csp)
	}
}

func TestRateLimitMutations(t *testing.T) {
	srv := newTestServer(t, 2)

	for i := 0; i < 2; i++ {
		if rr := postForm(srv, "/records", saleForm()); rr.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d rate limited too early", i+1)
		}
	}

	rr := postForm(srv, "/records", saleForm())
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusTooManyRequests)
	}
	if got := rr.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want %q", got, "60")
	}
}

func TestRateLimitSkipsReads(t *testing.T) {
	srv := newTestServer(t, 1)

	for i := 0; i < 5; i++ {
		rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code == http.StatusTooManyRequests {
			t.Fatalf("GET %d rate limited", i+1)
		}
	}
}

func TestSuspiciousRequestCounted(t *testing.T) {
	srv := newTestServer(t, 60)

	doRequest(srv, httptest.NewRequest(http.MethodGet, "/wp-admin", nil))

	rr := doRequest(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "suspicious_requests_total 1") {
		t.Error("metrics missing suspicious request count")
	}
}
