package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/bizchat/internal/logger"
	"github.com/bizchat/internal/service"
)

// maxJSONBody bounds action bodies of the messaging and identity APIs.
const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("writeJSON encode: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps a service error kind to its status. Internal causes go to the log only.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		se = service.NewInternalError(op, err)
	}
	switch se.Kind {
	case service.KindValidation:
		writeError(w, http.StatusBadRequest, se.Message)
	case service.KindAuthentication:
		writeError(w, http.StatusUnauthorized, se.Message)
	case service.KindAuthorization:
		writeError(w, http.StatusForbidden, se.Message)
	case service.KindNotFound:
		writeError(w, http.StatusNotFound, se.Message)
	case service.KindRateLimited:
		writeError(w, http.StatusTooManyRequests, se.Message)
	case service.KindInternal:
		logger.Errorf("%s: %v", op, se)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		logger.Errorf("%s: unmapped error kind %v: %v", op, se.Kind, se)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// actionEnvelope is the part of every POST body that selects the operation.
type actionEnvelope struct {
	Action string `json:"action"`
}

// readActionBody returns the raw body and its action field.
func readActionBody(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, "", false
	}
	var env actionEnvelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return nil, "", false
		}
	}
	return body, env.Action, true
}

func decodeBody(w http.ResponseWriter, body []byte, dst any) bool {
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func queryInt64(r *http.Request, key string) (int64, bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}
