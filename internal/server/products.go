package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bitvelocity/gatekeeper/auth"
	"github.com/bitvelocity/gatekeeper/observe"
	"github.com/bitvelocity/gatekeeper/product"
)

const maxBodyBytes = 1 << 20

type productHandler struct {
	svc    *product.Service
	logger observe.Logger
}

func newProductHandler(svc *product.Service, logger observe.Logger) *productHandler {
	return &productHandler{svc: svc, logger: logger}
}

func (h *productHandler) routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/search", h.search)
	r.Get("/active", h.active)
	r.Get("/category/{category}", h.byCategory)
	r.Get("/status/{status}", h.byStatus)
	r.Get("/sku/{sku}", h.bySKU)
	r.Get("/{id}", h.get)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Patch("/{id}/stock", h.updateStock)
	r.Delete("/{id}", h.delete)
}

func (h *productHandler) list(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageRequest(w, r, true)
	if !ok {
		return
	}
	result, err := h.svc.List(r.Context(), page)
	h.respondPage(w, r, result, err)
}

func (h *productHandler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		auth.WriteErrorResponse(w, r, http.StatusBadRequest, "Required parameter 'query' is not present")
		return
	}
	page, ok := h.pageRequest(w, r, false)
	if !ok {
		return
	}
	result, err := h.svc.Search(r.Context(), query, page)
	h.respondPage(w, r, result, err)
}

func (h *productHandler) active(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageRequest(w, r, false)
	if !ok {
		return
	}
	result, err := h.svc.Active(r.Context(), page)
	h.respondPage(w, r, result, err)
}

func (h *productHandler) byCategory(w http.ResponseWriter, r *http.Request) {
	page, ok := h.pageRequest(w, r, false)
	if !ok {
		return
	}
	result, err := h.svc.ByCategory(r.Context(), chi.URLParam(r, "category"), page)
	h.respondPage(w, r, result, err)
}

func (h *productHandler) byStatus(w http.ResponseWriter, r *http.Request) {
	status, err := product.ParseStatus(chi.URLParam(r, "status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	page, ok := h.pageRequest(w, r, false)
	if !ok {
		return
	}
	result, err := h.svc.ByStatus(r.Context(), status, page)
	h.respondPage(w, r, result, err)
}

func (h *productHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), id)
	h.respondProduct(w, r, http.StatusOK, p, err)
}

func (h *productHandler) bySKU(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetBySKU(r.Context(), chi.URLParam(r, "sku"))
	h.respondProduct(w, r, http.StatusOK, p, err)
}

func (h *productHandler) create(w http.ResponseWriter, r *http.Request) {
	var in product.CreateInput
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.svc.Create(r.Context(), in, auth.UsernameFromContext(r.Context()))
	if err == nil {
		w.Header().Set("Location", r.URL.Path+"/"+p.ID.String())
	}
	h.respondProduct(w, r, http.StatusCreated, p, err)
}

func (h *productHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var in product.UpdateInput
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.svc.Update(r.Context(), id, in, auth.UsernameFromContext(r.Context()))
	h.respondProduct(w, r, http.StatusOK, p, err)
}

func (h *productHandler) updateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	var in product.StockInput
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.svc.UpdateStock(r.Context(), id, in, auth.UsernameFromContext(r.Context()))
	h.respondProduct(w, r, http.StatusOK, p, err)
}

func (h *productHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, auth.UsernameFromContext(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pageRequest reads page, size and, when sortable, sortBy and sortDir.
func (h *productHandler) pageRequest(w http.ResponseWriter, r *http.Request, sortable bool) (product.PageRequest, bool) {
	q := r.URL.Query()
	pageNum, err := intParam(q.Get("page"), 0)
	if err != nil {
		auth.WriteErrorResponse(w, r, http.StatusBadRequest, "Parameter 'page' must be an integer")
		return product.PageRequest{}, false
	}
	size, err := intParam(q.Get("size"), product.DefaultPageSize)
	if err != nil {
		auth.WriteErrorResponse(w, r, http.StatusBadRequest, "Parameter 'size' must be an integer")
		return product.PageRequest{}, false
	}
	if !sortable {
		return product.PageRequest{Page: pageNum, Size: size}, true
	}
	page, err := product.NewPageRequest(pageNum, size, q.Get("sortBy"), q.Get("sortDir"))
	if err != nil {
		h.fail(w, r, err)
		return product.PageRequest{}, false
	}
	return page, true
}

func (h *productHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		auth.WriteErrorResponse(w, r, http.StatusBadRequest, "Product id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *productHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		auth.WriteErrorResponse(w, r, http.StatusBadRequest, "Malformed JSON request body")
		return false
	}
	return true
}

func (h *productHandler) respondPage(w http.ResponseWriter, r *http.Request, page product.Page, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *productHandler) respondProduct(w http.ResponseWriter, r *http.Request, status int, p product.Product, err error) {
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, status, p)
}

// ValidationErrorResponse adds per-field messages to the error body.
type ValidationErrorResponse struct {
	auth.ErrorResponse
	Errors map[string]string `json:"errors"`
}

func (h *productHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *product.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			ErrorResponse: auth.ErrorResponse{
				Timestamp: time.Now().UTC(),
				Status:    http.StatusBadRequest,
				Error:     http.StatusText(http.StatusBadRequest),
				Message:   "Validation failed",
				Path:      r.URL.Path,
			},
			Errors: verr.Fields,
		})
	case errors.Is(err, product.ErrInvalidProduct):
		auth.WriteErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, product.ErrNotFound):
		auth.WriteErrorResponse(w, r, http.StatusNotFound, "Product not found")
	case errors.Is(err, product.ErrDuplicateSKU):
		auth.WriteErrorResponse(w, r, http.StatusConflict, "Product with this SKU already exists")
	default:
		h.logger.Error(r.Context(), "product request failed",
			observe.F("method", r.Method),
			observe.F("path", r.URL.Path),
			observe.F("error", err),
		)
		auth.WriteErrorResponse(w, r, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
