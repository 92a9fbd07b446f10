package stock

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/loomhouse/fabricdesk/internal/export"
	"github.com/loomhouse/fabricdesk/internal/inventoryapi"
	"github.com/loomhouse/fabricdesk/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the stock screens.
type Handler struct {
	service   *Service
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandler constructs the stock handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, validator: validator.New(), logger: logger}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.listInventory)
		r.Post("/", h.addInventory)
		r.Get("/export.xlsx", h.exportInventory)
		r.Put("/{id}/{operation}", h.updateCondition)
		r.Delete("/{id}", h.deleteInventory)
	})
	r.Get("/master-products", h.masterProducts)
	r.Get("/master-product-names", h.masterProductNames)
	r.Post("/products", h.addProduct)
	r.Get("/customers", h.customers)
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.invoiceHeaders)
		r.Get("/export.xlsx", h.exportInvoices)
		r.Get("/{number}/entries", h.invoiceEntries)
	})
}

type inventoryForm struct {
	ProductName    string  `json:"productName" validate:"required"`
	Color          string  `json:"color" validate:"required"`
	Category       string  `json:"category" validate:"required,oneof=A B C"`
	InventoryUnit  string  `json:"inventoryUnit" validate:"required,oneof=Meter Yard"`
	YardAvailable  float64 `json:"yardAvailable" validate:"gte=0"`
	PieceAvailable float64 `json:"pieceAvailable" validate:"gte=0"`
}

type conditionForm struct {
	ProductName    string  `json:"productName"`
	Color          string  `json:"color"`
	Category       string  `json:"category"`
	YardAvailable  float64 `json:"yardAvailable" validate:"gte=0"`
	PieceAvailable float64 `json:"pieceAvailable" validate:"gte=0"`
}

type productForm struct {
	Name string `json:"addProductName" validate:"required"`
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Inventory(r.Context(), r.URL.Query().Get("product"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) addInventory(w http.ResponseWriter, r *http.Request) {
	var form inventoryForm
	if !h.decode(w, r, &form) {
		return
	}
	err := h.service.AddInventory(r.Context(), inventoryapi.NewInventory{
		ProductName:    form.ProductName,
		Color:          form.Color,
		Category:       form.Category,
		InventoryUnit:  form.InventoryUnit,
		YardAvailable:  form.YardAvailable,
		PieceAvailable: form.PieceAvailable,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) updateCondition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	var form conditionForm
	if !h.decode(w, r, &form) {
		return
	}
	err := h.service.UpdateCondition(r.Context(), id, chi.URLParam(r, "operation"), inventoryapi.ConditionUpdate(form))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteInventory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.id(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteInventory(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportInventory(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.Inventory(r.Context(), r.URL.Query().Get("product"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteInventory(&buf, records); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.attachment(w, "inventory.xlsx", buf.Bytes())
}

func (h *Handler) masterProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.MasterProducts(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) masterProductNames(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.MasterProductNames(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var form productForm
	if !h.decode(w, r, &form) {
		return
	}
	if err := h.service.AddProduct(r.Context(), form.Name); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) customers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.Customers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *Handler) invoiceHeaders(w http.ResponseWriter, r *http.Request) {
	headers, err := h.service.InvoiceHeaders(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, headers)
}

func (h *Handler) exportInvoices(w http.ResponseWriter, r *http.Request) {
	headers, err := h.service.InvoiceHeaders(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteInvoices(&buf, headers); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.attachment(w, "invoices.xlsx", buf.Bytes())
}

func (h *Handler) invoiceEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.InvoiceEntries(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) attachment(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			httpx.ValidationProblem(w, "Please fill in all required fields.", fields)
			return false
		}
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return false
	}
	return true
}

func (h *Handler) id(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid inventory id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrRejected), errors.Is(err, ErrInvalidOperation):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, ErrUnavailable):
		h.logger.Warn("inventory backend failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, httpx.ErrUpstream)
	default:
		h.logger.Error("stock request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		httpx.RespondError(w, err)
	}
}
