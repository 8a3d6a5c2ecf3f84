package rest

import (
	"net/http"

	"github.com/PremHer/kasvarealty-sub001/internal/presentation/access"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

var kindStatus = map[access.Kind]int{
	access.KindInvalid:          http.StatusBadRequest,
	access.KindPrecondition:     http.StatusConflict,
	access.KindNotFound:         http.StatusNotFound,
	access.KindConflict:         http.StatusConflict,
	access.KindUnauthenticated:  http.StatusUnauthorized,
	access.KindPermissionDenied: http.StatusForbidden,
	access.KindTimeout:          http.StatusGatewayTimeout,
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind, code := access.Classify(err)
	if status, ok := kindStatus[kind]; ok {
		writeJSON(w, status, errorBody{Error: code, Message: err.Error()})
		return
	}
	h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: code, Message: "internal error"})
}
