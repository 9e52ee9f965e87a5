package http

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/kwanghifi/kwanghifi/internal/core"
	"github.com/kwanghifi/kwanghifi/internal/log"
)

// recordRow is a sale record prepared for template rendering.
type recordRow struct {
	ID       string
	Date     string
	Brand    string
	Category string
	Model    string
	Cost     string
	Selling  string
	Profit   string
	Loss     bool
	Note     string
}

// categoryRow is one bar of the category breakdown.
type categoryRow struct {
	Name  string
	Count int
	Width int
}

// ledgerData feeds the ledger partial: summary, breakdown and table.
type ledgerData struct {
	Month        core.Month
	Months       []core.Month
	Count        int
	TotalCost    string
	TotalRevenue string
	TotalProfit  string
	Loss         bool
	Breakdown    []categoryRow
	Records      []recordRow
}

// pageData feeds the full index page.
type pageData struct {
	ledgerData
	Today      core.Date
	Categories []core.Category
}

// editFormData feeds the inline edit form for a single record.
type editFormData struct {
	ID           string
	Date         string
	Brand        string
	Category     core.Category
	Model        string
	CostPrice    string
	ShippingCost string
	SellingPrice string
	Note         string
	Categories   []core.Category
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := pageData{
		ledgerData: s.buildLedgerData(ParseMonthParam(r)),
		Today:      core.Today(),
		Categories: core.KnownCategories(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			"error", err, "template", "index.html")
		http.Error(w, "error rendering page", http.StatusInternalServerError)
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderRecords(w, r, ParseMonthParam(r))
	case http.MethodPost:
		s.handleCreateRecord(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

// handleRecordByID routes /records/{id} and /records/{id}/edit.
func (s *Server) handleRecordByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/records/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		id := parts[0]
		switch r.Method {
		case http.MethodPut:
			s.handleUpdateRecord(w, r, id)
		case http.MethodDelete, http.MethodPost:
			s.handleDeleteRecord(w, r, id)
		default:
			MethodNotAllowedError("PUT, DELETE, POST").Write(w)
		}
	case len(parts) == 2 && parts[0] != "" && parts[1] == "edit":
		if resp := RequireMethod(r, http.MethodGet); resp != nil {
			resp.Write(w)
			return
		}
		s.renderEditForm(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	// Amount fields are optional on the form; empty parses to zero.
	costCents, err := core.ParseDecimalToCents(r.Form.Get("cost_price"))
	if err != nil {
		UnprocessableEntityError("Invalid cost price").Write(w)
		return
	}

	shippingCents, err := core.ParseDecimalToCents(r.Form.Get("shipping_cost"))
	if err != nil {
		UnprocessableEntityError("Invalid shipping cost").Write(w)
		return
	}

	sellingCents, err := core.ParseDecimalToCents(r.Form.Get("selling_price"))
	if err != nil {
		UnprocessableEntityError("Invalid selling price").Write(w)
		return
	}

	record := core.SaleRecord{
		Brand:        sanitizeInput(r.Form.Get("brand")),
		Category:     core.Category(strings.TrimSpace(r.Form.Get("category"))),
		Model:        sanitizeInput(r.Form.Get("model")),
		CostPrice:    core.Money{Cents: costCents},
		ShippingCost: core.Money{Cents: shippingCents},
		SellingPrice: core.Money{Cents: sellingCents},
		Date:         core.Date(strings.TrimSpace(r.Form.Get("date"))),
		Note:         sanitizeInput(r.Form.Get("note")),
	}

	created, err := s.sales.Create(r.Context(), record)
	if err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.recordsCreated, 1)
	s.structured.LogRecordCreated(r.Context(), created.ID, created.Brand, created.Model, created.SellingPrice.Cents)

	month, _ := created.Date.MonthOf()
	successMsg := fmt.Sprintf("Sale recorded: %s %s for %s",
		created.Brand, created.Model, formatEuros(created.SellingPrice.Cents))

	NewHTMXResponse().
		TriggerRecordCreated(string(month)).
		TriggerFormReset().
		TriggerSuccessNotification(successMsg).
		Write(w)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request, id string) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	costCents, err := core.ParseDecimalToCents(parser.Get("cost_price"))
	if err != nil {
		UnprocessableEntityError("Invalid cost price").Write(w)
		return
	}

	shippingCents, err := core.ParseDecimalToCents(parser.Get("shipping_cost"))
	if err != nil {
		UnprocessableEntityError("Invalid shipping cost").Write(w)
		return
	}

	sellingCents, err := core.ParseDecimalToCents(parser.Get("selling_price"))
	if err != nil {
		UnprocessableEntityError("Invalid selling price").Write(w)
		return
	}

	record := core.SaleRecord{
		Brand:        parser.Get("brand"),
		Category:     core.Category(parser.Get("category")),
		Model:        parser.Get("model"),
		CostPrice:    core.Money{Cents: costCents},
		ShippingCost: core.Money{Cents: shippingCents},
		SellingPrice: core.Money{Cents: sellingCents},
		Date:         core.Date(parser.Get("date")),
		Note:         parser.Get("note"),
	}

	updated, err := s.sales.Update(r.Context(), id, record)
	if errors.Is(err, core.ErrNotFound) {
		NotFoundError("Sale record not found").Write(w)
		return
	}
	if err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.recordsUpdated, 1)
	s.logger.InfoContext(r.Context(), "Sale record updated",
		log.FieldRecordID, updated.ID,
		log.FieldBrand, updated.Brand,
		log.FieldModel, updated.Model)

	month, _ := updated.Date.MonthOf()
	successMsg := fmt.Sprintf("Sale updated: %s %s", updated.Brand, updated.Model)

	NewHTMXResponse().
		TriggerRecordUpdated(string(month)).
		TriggerSuccessNotification(successMsg).
		Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request, id string) {
	removed, err := s.sales.Delete(r.Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		NotFoundError("Sale record not found").Write(w)
		return
	}
	if err != nil {
		InternalServerError("Error deleting sale record").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.recordsDeleted, 1)
	s.logger.InfoContext(r.Context(), "Sale record deleted",
		log.FieldRecordID, removed.ID,
		log.FieldBrand, removed.Brand,
		log.FieldModel, removed.Model)

	month, _ := removed.Date.MonthOf()
	successMsg := fmt.Sprintf("Sale deleted: %s %s", removed.Brand, removed.Model)

	NewHTMXResponse().
		TriggerRecordDeleted(string(month)).
		TriggerSuccessNotification(successMsg).
		Write(w)
}

func (s *Server) renderEditForm(w http.ResponseWriter, r *http.Request, id string) {
	record, err := s.sales.Get(id)
	if err != nil {
		NotFoundError("Sale record not found").Write(w)
		return
	}
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}

	data := editFormData{
		ID:           record.ID,
		Date:         string(record.Date),
		Brand:        record.Brand,
		Category:     record.Category,
		Model:        record.Model,
		CostPrice:    formatAmountInput(record.CostPrice.Cents),
		ShippingCost: formatAmountInput(record.ShippingCost.Cents),
		SellingPrice: formatAmountInput(record.SellingPrice.Cents),
		Note:         record.Note,
		Categories:   core.KnownCategories(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "edit_form", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			"error", err, "template", "edit_form", log.FieldRecordID, id)
		InternalServerError("Error rendering edit form").Write(w)
	}
}

func (s *Server) renderRecords(w http.ResponseWriter, r *http.Request, month core.Month) {
	if s.templates == nil {
		InternalServerError("Templates not loaded").Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "ledger", s.buildLedgerData(month)); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			"error", err, "template", "ledger", log.FieldMonth, string(month))
		InternalServerError("Error rendering ledger").Write(w)
	}
}

// buildLedgerData assembles the view model for a month filter.
func (s *Server) buildLedgerData(month core.Month) ledgerData {
	records := s.sales.List(month)
	stats := s.sales.Summary(month)
	counts := s.sales.Breakdown(month)

	data := ledgerData{
		Month:        month,
		Months:       s.sales.Months(),
		Count:        stats.Count,
		TotalCost:    formatEuros(stats.TotalCost.Cents),
		TotalRevenue: formatEuros(stats.TotalRevenue.Cents),
		TotalProfit:  formatEuros(stats.TotalProfit.Cents),
		Loss:         stats.TotalProfit.Cents < 0,
	}

	maxCount := 0
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}
	for category, n := range counts {
		width := 0
		if maxCount > 0 {
			width = n * 100 / maxCount
			if width < 2 {
				width = 2
			}
		}
		data.Breakdown = append(data.Breakdown, categoryRow{
			Name:  string(category),
			Count: n,
			Width: width,
		})
	}
	sort.Slice(data.Breakdown, func(i, j int) bool {
		if data.Breakdown[i].Count != data.Breakdown[j].Count {
			return data.Breakdown[i].Count > data.Breakdown[j].Count
		}
		return data.Breakdown[i].Name < data.Breakdown[j].Name
	})

	for _, record := range records {
		profit := record.Profit()
		data.Records = append(data.Records, recordRow{
			ID:       record.ID,
			Date:     string(record.Date),
			Brand:    record.Brand,
			Category: string(record.Category),
			Model:    record.Model,
			Cost:     formatEuros(record.CostPrice.Cents + record.ShippingCost.Cents),
			Selling:  formatEuros(record.SellingPrice.Cents),
			Profit:   formatEuros(profit.Cents),
			Loss:     profit.Cents < 0,
			Note:     record.Note,
		})
	}

	return data
}
