package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	kafkax "github.com/ariefcatur/go-table-pos.git/internal/kafka"
	"github.com/ariefcatur/go-table-pos.git/internal/pos"
	"github.com/ariefcatur/go-table-pos.git/internal/queue"
)

// SessionHandler exposes the session engine's upward surface: item and
// charge mutations, table switch, settlement, queue merge and the active
// orders index.
type SessionHandler struct {
	Engine   *pos.Engine
	Queue    *queue.Poller
	Producer *kafkax.Producer // pos.session.settled
	Log      *logrus.Logger
	Service  string
}

type addItemReq struct {
	ItemID    string  `json:"item_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
}

type quantityReq struct {
	Quantity int `json:"quantity"`
}

type chargeReq struct {
	Kind  pos.ChargeKind `json:"kind"`
	Value float64        `json:"value"`
}

type customerReq struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

type settlementReq struct {
	Method         pos.PaymentMethod `json:"method"`
	AmountReceived float64           `json:"amount_received"`
}

type settlementResp struct {
	State          pos.SettlementState `json:"state"`
	Due            float64             `json:"due"`
	AmountReceived float64             `json:"amount_received"`
	Method         pos.PaymentMethod   `json:"method"`
	Change         float64             `json:"change"`
	Valid          bool                `json:"valid"`
}

func (h *SessionHandler) Register(r *chi.Mux) {
	r.Post("/tables/{name}/open", h.openTable)
	r.Get("/session", h.getSession)
	r.Get("/session/bill", h.getBill)
	r.Post("/session/save", h.saveSession)
	r.Delete("/session", h.clearSession)

	r.Post("/session/items", h.addItem)
	r.Put("/session/items/{itemID}", h.updateQuantity)
	r.Delete("/session/items/{itemID}", h.removeItem)
	r.Put("/session/discount", h.setDiscount)
	r.Put("/session/service-charge", h.setServiceCharge)
	r.Put("/session/customer", h.setCustomer)

	r.Post("/settlement", h.openSettlement)
	r.Post("/settlement/confirm", h.confirmSettlement)
	r.Post("/settlement/cancel", h.cancelSettlement)

	r.Get("/orders/active", h.activeOrders)
	r.Post("/orders/active/refresh", h.refreshIndex)
	r.Get("/orders/active/{name}/total", h.tableTotal)

	r.Get("/queue", h.listQueue)
	r.Post("/queue/{id}/merge", h.mergeOrder)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pos.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case pos.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}

func (h *SessionHandler) openTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing table name"})
		return
	}
	if err := h.Engine.SwitchTable(r.Context(), name); err != nil {
		writeErr(w, err)
		return
	}
	snap, _ := h.Engine.Session()
	writeJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) getSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Engine.Session()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": snap, "unsynced": h.Engine.Dirty()})
}

func (h *SessionHandler) getBill(w http.ResponseWriter, r *http.Request) {
	bill, err := h.Engine.Bill()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (h *SessionHandler) saveSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.Save(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) clearSession(w http.ResponseWriter, r *http.Request) {
	h.Engine.ClearSession()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing item_id"})
		return
	}
	if err := h.Engine.AddItem(pos.OrderLineItem{ItemID: req.ItemID, Name: req.Name, UnitPrice: req.UnitPrice}); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := h.Engine.UpdateQuantity(chi.URLParam(r, "itemID"), req.Quantity); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.RemoveItem(chi.URLParam(r, "itemID")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) setDiscount(w http.ResponseWriter, r *http.Request) {
	h.setCharge(w, r, h.Engine.SetDiscount)
}

func (h *SessionHandler) setServiceCharge(w http.ResponseWriter, r *http.Request) {
	h.setCharge(w, r, h.Engine.SetServiceCharge)
}

func (h *SessionHandler) setCharge(w http.ResponseWriter, r *http.Request, set func(pos.Charge) error) {
	var req chargeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := set(pos.Charge{Kind: req.Kind, Value: req.Value}); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) setCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := h.Engine.SetCustomer(req.Name, req.Notes); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) openSettlement(w http.ResponseWriter, r *http.Request) {
	s, err := h.Engine.OpenSettlement()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementView(s))
}

func (h *SessionHandler) confirmSettlement(w http.ResponseWriter, r *http.Request) {
	var req settlementReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	s, err := h.Engine.Settlement()
	if err != nil {
		writeErr(w, err)
		return
	}
	if req.Method != "" {
		s.SetMethod(req.Method)
	}
	if s.Method() == pos.PayCash {
		if err := s.SetReceived(req.AmountReceived); err != nil {
			writeErr(w, err)
			return
		}
	}

	snap, pay, err := h.Engine.ConfirmSettlement(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}

	ev := pos.Envelope{
		EventID:       uuid.NewString(),
		EventType:     pos.EventSessionSettled,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: snap.TableName,
	}
	ev.Payload = kafkax.MustMarshal(pos.SessionSettledPayload{
		TableName:      snap.TableName,
		Lines:          snap.Lines,
		Subtotal:       snap.Subtotal,
		TotalAmount:    snap.TotalAmount,
		AmountReceived: pay.AmountReceived,
		Method:         pay.Method,
		Change:         pay.Change,
	})
	h.Producer.Publish(pos.PartitionKey(snap.TableName), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(pos.EventSessionSettled)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)

	writeJSON(w, http.StatusOK, map[string]any{"table_name": snap.TableName, "payment": pay})
}

func (h *SessionHandler) cancelSettlement(w http.ResponseWriter, r *http.Request) {
	h.Engine.CancelSettlement()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) activeOrders(w http.ResponseWriter, r *http.Request) {
	// served from the index cache; stale between refreshes is fine
	writeJSON(w, http.StatusOK, h.Engine.Summaries())
}

func (h *SessionHandler) refreshIndex(w http.ResponseWriter, r *http.Request) {
	if err := h.Engine.RefreshIndex(r.Context()); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Engine.Summaries())
}

func (h *SessionHandler) tableTotal(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	writeJSON(w, http.StatusOK, map[string]any{"table_name": name, "total": h.Engine.GetTableTotal(name)})
}

func (h *SessionHandler) listQueue(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "1" {
		if err := h.Queue.Refresh(r.Context()); err != nil {
			writeErr(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.Queue.Pending())
}

func (h *SessionHandler) mergeOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, ok := h.Queue.Find(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not pending"})
		return
	}
	err := h.Engine.MergeCustomerOrder(r.Context(), order)
	switch {
	case errors.Is(err, pos.ErrQueueDelete):
		// items are already merged locally; report the failed queue delete
		h.Queue.Drop(id)
		h.Log.WithError(err).WithField("order", id).Warn("merge kept, queue delete failed")
		writeJSON(w, http.StatusOK, map[string]any{"merged": true, "queue_error": err.Error()})
	case err != nil:
		writeErr(w, err)
	default:
		h.Queue.Drop(id)
		snap, _ := h.Engine.Session()
		writeJSON(w, http.StatusOK, map[string]any{"merged": true, "session": snap})
	}
}

func settlementView(s *pos.Settlement) settlementResp {
	return settlementResp{
		State:          s.State(),
		Due:            s.Due(),
		AmountReceived: s.Received(),
		Method:         s.Method(),
		Change:         s.Change(),
		Valid:          s.IsValid(),
	}
}
