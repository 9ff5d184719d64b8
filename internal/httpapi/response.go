package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/programme-lv/judge/api"
	"github.com/programme-lv/judge/internal/apperr"
)

func ResponseWithJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ResponseError writes err as an api.ErrorResp. Errors that carry no kind
// are reported as internal.
func ResponseError(w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal || kind == apperr.External {
		logger.Error("request failed", "error", err)
	} else {
		logger.Debug("request rejected", "reason", kind.Reason(), "error", err)
	}
	ResponseWithJson(w, kind.HTTPStatus(), api.ErrorResp{
		Code:    kind.Code(),
		Reason:  kind.Reason(),
		Message: err.Error(),
	})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(err, apperr.InvalidArgument, "malformed request body")
	}
	return nil
}
