package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"printbridge/internal/constants"
	"printbridge/internal/security"
	"printbridge/internal/types"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a bridge error to its wire status and a structured body.
// Only the public message goes out; wrapped causes stay in the logs.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal error"

	var bridgeErr *types.BridgeError
	if errors.As(err, &bridgeErr) {
		status = bridgeErr.HTTPStatus()
		message = bridgeErr.Message
	}
	writeJSON(w, status, types.ErrorResponse{Success: false, Message: message})
}

// admit runs the request through the auth gate. Health checks never get here.
func (s *Server) admit(r *http.Request) *types.BridgeError {
	identity := security.ClientIP(r)
	token := r.Header.Get(constants.HeaderAPIToken)
	return s.gate.Admit(identity, token, s.Config())
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, constants.MsgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:  "ok",
		Service: constants.ServiceName,
		Version: constants.Version,
	})
}

func (s *Server) HandlePrinters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, constants.MsgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}
	if err := s.admit(r); err != nil {
		writeError(w, err)
		return
	}

	printers, err := s.directory.ListPrinters(r.Context())
	if err != nil {
		s.logger.Error("printer discovery failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, printers)
}

func (s *Server) HandlePrint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, constants.MsgMethodNotAllowed, http.StatusMethodNotAllowed)
		return
	}
	if err := s.admit(r); err != nil {
		writeError(w, err)
		return
	}

	// Transport-layer ceiling, independent of the content-level size check
	// inside the dispatcher.
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxRequestBodySize)

	var req types.PrintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge,
				types.ErrorResponse{Success: false, Message: constants.MsgBodyTooLarge})
			return
		}
		writeJSON(w, http.StatusBadRequest,
			types.ErrorResponse{Success: false, Message: constants.MsgInvalidJSON})
		return
	}

	resp, err := s.dispatcher.Submit(r.Context(), &req, s.Config())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
