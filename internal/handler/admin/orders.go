package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/torsore/storefront/internal/domain"
	"github.com/torsore/storefront/internal/handler"
	"github.com/torsore/storefront/internal/repository"
	"github.com/torsore/storefront/internal/telemetry"
)

// OrderHandler exposes fulfillment views over orders for back-office staff.
type OrderHandler struct {
	orderService domain.OrderService
	logger       *slog.Logger
}

// NewOrderHandler creates a new admin order handler
func NewOrderHandler(orderService domain.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

type orderResponse struct {
	ID             string `json:"id"`
	SessionID      string `json:"sessionId"`
	Status         string `json:"status"`
	CustomerEmail  string `json:"customerEmail,omitempty"`
	CustomerName   string `json:"customerName,omitempty"`
	ShippingMethod string `json:"shippingMethod,omitempty"`
	SubtotalCents  int64  `json:"subtotalCents"`
	ShippingCents  int64  `json:"shippingCents"`
	TaxCents       int64  `json:"taxCents"`
	TotalCents     int64  `json:"totalCents"`
	Currency       string `json:"currency"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type orderItemResponse struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	Size           string `json:"size,omitempty"`
	Color          string `json:"color,omitempty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int32  `json:"quantity"`
	AmountCents    int64  `json:"amountCents"`
}

type orderDetailResponse struct {
	orderResponse
	Items []orderItemResponse `json:"items"`
}

// List handles GET /api/admin/orders?status=&limit=&offset=
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := domain.ListOrdersParams{
		Status: domain.OrderStatus(q.Get("status")),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			params.Offset = n
		}
	}

	orders, err := h.orderService.ListOrders(r.Context(), params)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	handler.RespondJSON(w, http.StatusOK, map[string]any{"orders": resp})
}

// Get handles GET /api/admin/orders/{id}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.orderService.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, toOrderDetailResponse(detail))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

// SetStatus handles PATCH /api/admin/orders/{id}/status
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := handler.DecodeJSON(r, &req, 1<<12); err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("order.set_status", "Invalid request body"))
		return
	}

	order, err := h.orderService.SetStatus(r.Context(), r.PathValue("id"), domain.OrderStatus(req.Status))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if telemetry.Business != nil {
		telemetry.Business.OrderStatusChange.WithLabelValues(req.Status).Inc()
	}

	h.logger.Info("order status updated",
		"order_id", r.PathValue("id"),
		"status", req.Status)

	handler.RespondJSON(w, http.StatusOK, toOrderResponse(*order))
}

func toOrderResponse(o repository.Order) orderResponse {
	resp := orderResponse{
		SessionID:      o.SessionID,
		Status:         o.Status,
		CustomerEmail:  o.CustomerEmail.String,
		CustomerName:   o.CustomerName.String,
		ShippingMethod: o.ShippingMethod.String,
		SubtotalCents:  o.SubtotalCents,
		ShippingCents:  o.ShippingCents,
		TaxCents:       o.TaxCents,
		TotalCents:     o.TotalCents,
		Currency:       o.Currency,
	}
	if v, err := o.ID.Value(); err == nil {
		if s, ok := v.(string); ok {
			resp.ID = s
		}
	}
	if o.CreatedAt.Valid {
		resp.CreatedAt = o.CreatedAt.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if o.UpdatedAt.Valid {
		resp.UpdatedAt = o.UpdatedAt.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}

func toOrderDetailResponse(detail *domain.OrderDetail) orderDetailResponse {
	resp := orderDetailResponse{orderResponse: toOrderResponse(detail.Order)}
	for _, item := range detail.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:      item.ProductID,
			Name:           item.Name,
			Size:           item.Size.String,
			Color:          item.Color.String,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
			AmountCents:    item.AmountCents,
		})
	}
	return resp
}
