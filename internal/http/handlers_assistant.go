package http

import (
	"net/http"

	"fintrack/internal/assistant"
)

type chatInput struct {
	Question string              `json:"question"`
	History  []assistant.Message `json:"history"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleAssistantContext(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(assistant.Context(s.store.View())))
}

func (s *Server) handleAssistantChat(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		writeError(w, http.StatusServiceUnavailable, "assistant not configured")
		return
	}
	var in chatInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Question == "" {
		writeError(w, http.StatusUnprocessableEntity, "question cannot be empty")
		return
	}

	reply, err := s.chat.Ask(r.Context(), s.store.View(), in.History, in.Question)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
