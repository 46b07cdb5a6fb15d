package webhook

import (
	"errors"
	"net/http"

	"sitepay-be/internal/logger"
	"sitepay-be/internal/order"
	"sitepay-be/internal/payment"
	"sitepay-be/internal/utils"

	"go.uber.org/zap"
)

// Handler exposes gateway callbacks and checkout over HTTP.
type Handler struct {
	Payments payment.Service
}

func NewWebhookHandler(payments payment.Service) *Handler {
	return &Handler{Payments: payments}
}

// CallbackHandler receives a gateway notification on
// /payment/{gateway}/callback and replies with the gateway's acknowledgement.
// Error bodies are generic: nothing tells the caller which field failed.
func (h *Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	gateway := r.PathValue("gateway")

	ack, err := h.Payments.HandleCallback(r.Context(), gateway, r)
	if err != nil {
		code := callbackStatus(err)
		if code == http.StatusInternalServerError {
			logger.FromCtx(r.Context()).Error("callback failed",
				zap.String("gateway", gateway),
				zap.Error(err),
			)
		}
		http.Error(w, http.StatusText(code), code)
		return
	}

	if ack.ContentType != "" {
		w.Header().Set("Content-Type", ack.ContentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ack.Body)
}

func callbackStatus(err error) int {
	switch {
	case payment.IsRejection(err):
		return http.StatusForbidden
	case errors.Is(err, payment.ErrUnknownGateway), errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type checkoutResponse struct {
	URL    string          `json:"url"`
	Method string          `json:"method"`
	Fields []payment.Field `json:"fields"`
}

// CheckoutHandler serves /payment/{gateway}/checkout/{orderID} to the
// authenticated owner of the order.
func (h *Handler) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	customerID, ok := utils.GetCustomerIDFromContext(r.Context())
	if !ok {
		utils.WriteJSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	orderID, ok := utils.ParseID(r.PathValue("orderID"))
	if !ok {
		utils.WriteJSONError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	req, err := h.Payments.Checkout(r.Context(), r.PathValue("gateway"), orderID, customerID)
	if err != nil {
		code, msg := checkoutStatus(err)
		utils.WriteJSONError(w, msg, code)
		return
	}

	utils.WriteJSON(w, http.StatusOK, checkoutResponse{
		URL:    req.URL,
		Method: req.Method,
		Fields: req.Fields,
	})
}

func checkoutStatus(err error) (int, string) {
	switch {
	case errors.Is(err, payment.ErrUnknownGateway):
		return http.StatusNotFound, "unknown payment gateway"
	case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, order.ErrUnauthorized):
		// someone else's order looks the same as a missing one
		return http.StatusNotFound, "order not found"
	case errors.Is(err, order.ErrNotPayable):
		return http.StatusConflict, "order cannot be paid"
	case errors.Is(err, payment.ErrCurrencyConversionUnavailable):
		return http.StatusUnprocessableEntity, "order currency is not supported by the gateway"
	case errors.Is(err, payment.ErrUpstreamCall):
		return http.StatusBadGateway, "payment gateway is unavailable"
	case errors.Is(err, payment.ErrConfiguration):
		return http.StatusServiceUnavailable, "payment gateway is unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
