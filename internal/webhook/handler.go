package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"foodbot/internal/domain"
	"foodbot/internal/logger"
	"foodbot/internal/service"
)

// Fallback phrases. Every reachable path answers with a 200 fulfillment
// response; faults never propagate to the dialog platform.
const (
	phraseUnknownIntent = "Sorry, I didn't understand that request."
	phraseInternalError = "Sorry, there was an error processing your request."
)

type Handler struct {
	svc *service.OrderService
	lg  *logger.Logger
}

func NewHandler(svc *service.OrderService, lg *logger.Logger) *Handler {
	return &Handler{svc: svc, lg: lg}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /{$}", h.Webhook)
	mux.HandleFunc("GET /healthz", h.Health)
	return mux
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok"})
}

func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	lg := h.lg.WithRequestID(uuid.NewString())

	defer func() {
		if rec := recover(); rec != nil {
			lg.Error("webhook_panic", fmt.Errorf("panic: %v", rec), nil)
			respond(w, phraseInternalError)
		}
	}()

	var req domain.WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		lg.Error("bad_request_body", err, nil)
		respond(w, phraseInternalError)
		return
	}

	intent := domain.ParseIntent(req.QueryResult.Intent.DisplayName)
	sessionID := ExtractSessionID(req.QueryResult.OutputContexts)
	lg.Info("intent_received", map[string]any{"intent": intent.String(), "session_id": sessionID})

	params := req.QueryResult.Parameters
	ctx := r.Context()

	var text string
	var err error
	switch intent {
	case domain.IntentOrderAdd:
		text, err = h.dispatchCart(ctx, sessionID, params, h.svc.AddItems)
	case domain.IntentOrderRemove:
		text, err = h.dispatchCart(ctx, sessionID, params, h.svc.RemoveItems)
	case domain.IntentOrderComplete:
		if sessionID == "" {
			err = errMissingSession
		} else {
			text, err = h.svc.Finish(ctx, sessionID)
		}
	case domain.IntentTrackOrder:
		text, err = h.trackOrder(ctx, params.Number)
	case domain.IntentUnknown:
		text = phraseUnknownIntent
	}

	if err != nil {
		text = h.phraseFor(intent, err, params, lg)
	}
	respond(w, text)
}

var errMissingSession = errors.New("no session id in output contexts")

type cartOp func(ctx context.Context, sessionID string, items []string, quantities []any) (string, error)

func (h *Handler) dispatchCart(ctx context.Context, sessionID string, params domain.Parameters, op cartOp) (string, error) {
	if sessionID == "" {
		return "", errMissingSession
	}
	return op(ctx, sessionID, params.FoodItems, numberList(params.Number))
}

func (h *Handler) trackOrder(ctx context.Context, raw any) (string, error) {
	orderID, err := orderIDFromParam(raw)
	if err != nil {
		return "", err
	}
	return h.svc.Status(ctx, orderID)
}

// phraseFor maps a taxonomy error onto the user-visible reply for the
// intent that produced it.
func (h *Handler) phraseFor(intent domain.Intent, err error, params domain.Parameters, lg *logger.Logger) string {
	var unknownItem *domain.UnknownItemError
	var persistence *domain.PersistenceError

	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		if intent == domain.IntentTrackOrder {
			return "Please give me your order ID as a number so I can check its status."
		}
		return "Sorry, I didn't catch the quantities. Could you give them as numbers?"

	case errors.Is(err, domain.ErrNoActiveOrder):
		if intent == domain.IntentOrderRemove {
			return "You don't have any items in your cart."
		}
		return "You don't have any active order."

	case errors.As(err, &unknownItem):
		return fmt.Sprintf("Sorry, %s is not available in our menu.", unknownItem.Item)

	case errors.Is(err, domain.ErrOrderNotFound):
		if id, idErr := orderIDFromParam(params.Number); idErr == nil {
			return fmt.Sprintf("I couldn't find any order with ID %d.", id)
		}
		return "I couldn't find that order."

	case errors.As(err, &persistence):
		lg.Error("persistence_failure", err, map[string]any{"intent": intent.String()})
		if intent == domain.IntentOrderComplete {
			return "Sorry, there was an error placing your order. Please try again."
		}
		return phraseInternalError

	default:
		lg.Error("unhandled_error", err, map[string]any{"intent": intent.String()})
		return phraseInternalError
	}
}

// numberList normalizes the "number" slot, which is a list on cart intents
// but can arrive as a bare scalar.
func numberList(v any) []any {
	switch n := v.(type) {
	case nil:
		return nil
	case []any:
		return n
	default:
		return []any{n}
	}
}

// orderIDFromParam reads the queried order id from the "number" slot,
// taking the first element when the platform sends a list.
func orderIDFromParam(v any) (int, error) {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return 0, fmt.Errorf("%w: missing order id", domain.ErrInvalidQuantity)
		}
		v = list[0]
	}
	return domain.ParseQuantity(v)
}

func respond(w http.ResponseWriter, text string) {
	writeJSON(w, domain.WebhookResponse{FulfillmentText: text})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
