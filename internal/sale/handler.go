package sale

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/loomhouse/fabricdesk/internal/platform/httpx"
)

// CommitFailureMessage is the only detail shown to the operator when a commit fails.
const CommitFailureMessage = "Sale failed. Please try again."

// Handler exposes sale workflows over HTTP.
type Handler struct {
	service   *Service
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandler constructs the sale handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, validator: validator.New(), logger: logger}
}

// MountRoutes registers sale endpoints under the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.open)
	r.Route("/{saleID}", func(r chi.Router) {
		r.Get("/", h.show)
		r.Delete("/", h.cancel)
		r.Put("/invoice-number", h.setInvoiceNumber)
		r.Put("/customer", h.setCustomer)
		r.Post("/lines", h.addLine)
		r.Route("/lines/{line}", func(r chi.Router) {
			r.Delete("/", h.removeLine)
			r.Put("/product", h.setProduct)
			r.Put("/color", h.setColor)
			r.Put("/pieces", h.setPieceCount)
			r.Put("/unit-price", h.setUnitPrice)
			r.Put("/quantities/{piece}", h.setQuantity)
			r.Get("/categories", h.categories)
		})
		r.Post("/review", h.review)
		r.Post("/back", h.back)
		r.Post("/confirm", h.confirm)
	})
}

type valueRequest struct {
	Value string `json:"value"`
}

type customerRequest struct {
	CustomerID int64 `json:"customerId" validate:"gte=0"`
}

type productRequest struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
}

type piecesRequest struct {
	PieceCount int `json:"pieceCount"`
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Open(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, view)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.Get(r.Context(), saleID(r)))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), saleID(r)); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	var req valueRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.SetInvoiceNumber(r.Context(), saleID(r), req.Value))
}

func (h *Handler) setCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.SetCustomer(r.Context(), saleID(r), req.CustomerID))
}

func (h *Handler) addLine(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.AddLineItem(r.Context(), saleID(r)))
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	line, ok := h.index(w, r, "line")
	if !ok {
		return
	}
	h.respond(w, r)(h.service.RemoveLineItem(r.Context(), saleID(r), line))
}

func (h *Handler) setProduct(w http.ResponseWriter, r *http.Request) {
	line, ok := h.index(w, r, "line")
	if !ok {
		return
	}
	var req productRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.SetProduct(r.Context(), saleID(r), line, req.ProductID))
}

func (h *Handler) setColor(w http.ResponseWriter, r *http.Request) {
	line, ok := h.index(w, r, "line")
	if !ok {
		return
	}
	var req valueRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.SetColor(r.Context(), saleID(r), line, req.Value))
}

func (h *Handler) setPieceCount(w http.ResponseWriter, r *http.Request) {
	line, ok := h.index(w, r, "line")
	if !ok {
		return
	}
	var req piecesRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.SetPieceCount(r.Context(), saleID(r), line, req.PieceCount))
}

func (h *Handler) setUnitPrice(w http.ResponseWriter, r *http.Request) {
	line, ok := h.index(w, r, "line")
	if !ok {
		return
	}
	var req valueRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.SetUnitPrice(r.Context(), saleID(r), line, req.Value))
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	line, ok := h.index(w, r, "line")
	if !ok {
		return
	}
	piece, ok := h.index(w, r, "piece")
	if !ok {
		return
	}
	var req valueRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r)(h.service.SetQuantity(r.Context(), saleID(r), line, piece, req.Value))
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	line, ok := h.index(w, r, "line")
	if !ok {
		return
	}
	categories, err := h.service.Categories(r.Context(), saleID(r), line)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.Review(r.Context(), saleID(r)))
}

func (h *Handler) back(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.Back(r.Context(), saleID(r)))
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.service.Confirm(r.Context(), saleID(r)))
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request) func(*View, error) {
	return func(view *View, err error) {
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, view)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return false
	}
	return true
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request, param string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, param))
	if err != nil || v < 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+param+" index")
		return 0, false
	}
	return v, true
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		fields := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, string(f))
		}
		httpx.ValidationProblem(w, "Please fill in all required fields.", fields)
	case errors.Is(err, ErrCommitFailed):
		httpx.Problem(w, http.StatusBadGateway, "Sale Failed", CommitFailureMessage)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrLineNotFound), errors.Is(err, ErrPieceNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrProductRequired), errors.Is(err, ErrInvalidPrice):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, ErrInvalidStage), errors.Is(err, ErrBusy):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("sale request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func saleID(r *http.Request) string {
	return chi.URLParam(r, "saleID")
}
