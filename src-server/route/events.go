package route

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"eventhorizon/src-server/draft"
	"eventhorizon/src-server/model"
	"eventhorizon/src-server/store"
	"eventhorizon/src-server/suggest"
	"eventhorizon/src-server/utils"

	"github.com/google/uuid"
)

type EventRespBody struct {
	model.Event
	DisplayLocation string `json:"displayLocation"`
}

type SaveRespBody struct {
	Event   EventRespBody `json:"event"`
	Warning string        `json:"warning,omitempty"`
}

type SuggestStatusRespBody struct {
	Available bool `json:"available"`
}

type SuggestRespBody struct {
	Draft   *draft.Draft `json:"draft"`
	Tagline string       `json:"tagline"`
}

func toEventRespBody(event model.Event) EventRespBody {
	return EventRespBody{Event: event, DisplayLocation: event.DisplayLocation()}
}

func Events(muxer *http.ServeMux, as *utils.AppState) {
	// list events, most recent first
	muxer.HandleFunc("GET /events", func(w http.ResponseWriter, r *http.Request) {
		events := as.Store.List()
		resp := make([]EventRespBody, 0, len(events))
		for _, event := range events {
			resp = append(resp, toEventRespBody(event))
		}
		writeJSON(w, http.StatusOK, resp)
	})

	muxer.HandleFunc("GET /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		event, ok := as.Store.FindByID(r.PathValue("id"))
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Event not found"))
			return
		}
		writeJSON(w, http.StatusOK, toEventRespBody(event))
	})

	// commit a draft
	muxer.HandleFunc("POST /events", func(w http.ResponseWriter, r *http.Request) {
		d, ok := readDraft(w, r, as)
		if !ok {
			return
		}

		event, err := draft.NewSession(d, as.Suggester).Save(r.Context(), as.Store)
		var persistErr *store.PersistenceError
		switch {
		case errors.As(err, &persistErr):
			writeJSON(w, http.StatusCreated, SaveRespBody{
				Event:   toEventRespBody(event),
				Warning: persistErr.Error(),
			})
			return
		case errors.Is(err, model.ErrValidation):
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return
		case err != nil:
			slog.Error("can't save event", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("Can't save event: %s", err.Error())))
			return
		}
		writeJSON(w, http.StatusCreated, SaveRespBody{Event: toEventRespBody(event)})
	})

	// unknown ids are fine, the result is the same
	muxer.HandleFunc("DELETE /events/{id}", func(w http.ResponseWriter, r *http.Request) {
		err := as.Store.Delete(r.Context(), r.PathValue("id"))
		var persistErr *store.PersistenceError
		switch {
		case errors.As(err, &persistErr):
			writeJSON(w, http.StatusOK, struct {
				Warning string `json:"warning"`
			}{persistErr.Error()})
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("Can't delete event: %s", err.Error())))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	// lets a form decide whether to offer auto-generation at all
	muxer.HandleFunc("GET /drafts/suggest", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SuggestStatusRespBody{Available: as.Suggester.Available()})
	})

	// fill description, color and agenda of a draft from the AI backend
	muxer.HandleFunc("POST /drafts/suggest", func(w http.ResponseWriter, r *http.Request) {
		d, ok := readDraft(w, r, as)
		if !ok {
			return
		}

		tagline, err := draft.NewSession(d, as.Suggester).AutoGenerate(r.Context())
		switch {
		case errors.Is(err, suggest.ErrMissingCredential):
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("AI suggestions are unavailable: " + err.Error()))
			return
		case errors.Is(err, model.ErrValidation):
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Please provide at least a title and date for the AI to suggest details: " + err.Error()))
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("Can't generate suggestions: %s", err.Error())))
			return
		}
		writeJSON(w, http.StatusOK, SuggestRespBody{Draft: d, Tagline: tagline})
	})
}

// readDraft decodes a draft body on top of the blank form, so omitted
// fields keep their defaults. Dates may be natural language.
func readDraft(w http.ResponseWriter, r *http.Request, as *utils.AppState) (*draft.Draft, bool) {
	d := draft.New(as.Now())
	if err := json.NewDecoder(r.Body).Decode(d); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Invalid request body"))
		return nil, false
	}
	if d.Agenda == nil {
		d.Agenda = []model.AgendaItem{}
	}
	for i := range d.Agenda {
		if d.Agenda[i].ID == "" {
			d.Agenda[i].ID = uuid.NewString()
		}
	}

	date, err := as.ParseDate(d.Date)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(fmt.Sprintf("Can't parse date: %s", err.Error())))
		return nil, false
	}
	d.Date = date

	if d.Type != "" {
		t, err := model.ParseEventType(string(d.Type))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(err.Error()))
			return nil, false
		}
		d.Type = t
	}
	return d, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("can't encode response", "error", err)
	}
}
