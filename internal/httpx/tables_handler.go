package httpx

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-table-pos.git/internal/pos"
)

type TablesHandler struct {
	Registry *pos.Registry
	Coord    *pos.Coordinator
	Gateway  pos.TableGateway
	Log      *logrus.Logger
}

type joinReq struct {
	TableIDs []string `json:"table_ids"`
}

type scheduleReq struct {
	Date       string          `json:"date"`
	Timeslots  []string        `json:"timeslots"`
	Status     pos.TableStatus `json:"status"`
	JoinedWith string          `json:"joined_with,omitempty"`
}

func (h *TablesHandler) Register(r *chi.Mux) {
	r.Get("/tables", h.listTables)
	r.Post("/tables/join", h.join)
	r.Post("/tables/unjoin", h.unjoin)
	r.Get("/tables/{id}/conflicts", h.conflicts)
	r.Put("/tables/{id}/schedule", h.setSchedule)
}

func (h *TablesHandler) listTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Registry.List())
}

func (h *TablesHandler) join(w http.ResponseWriter, r *http.Request) {
	var req joinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	group, err := h.Coord.Join(r.Context(), req.TableIDs)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (h *TablesHandler) unjoin(w http.ResponseWriter, r *http.Request) {
	var req joinReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := h.Coord.Unjoin(r.Context(), req.TableIDs); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TablesHandler) conflicts(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "id")
	today := time.Now().Format("2006-01-02")
	schedules, reservations, err := h.Coord.ConflictsForToday(r.Context(), tableID, today)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":         today,
		"schedules":    schedules,
		"reservations": reservations,
	})
}

func (h *TablesHandler) setSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	sch := pos.Schedule{
		TableID:    chi.URLParam(r, "id"),
		Date:       req.Date,
		Timeslots:  req.Timeslots,
		Status:     req.Status,
		JoinedWith: req.JoinedWith,
	}
	if err := h.Gateway.SetSchedule(r.Context(), sch); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
