package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/domain"
)

// requestError 請求本身格式錯誤 (body 解析、欄位驗證、路徑參數)
type requestError struct {
	msg string
}

func (e *requestError) Error() string {
	return e.msg
}

// statusFor 將錯誤轉成 HTTP 狀態碼
func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidAccount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidOperationType),
		errors.Is(err, domain.ErrInvalidDocumentNumber),
		errors.Is(err, domain.ErrInvalidTransaction):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrOperationTypeNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccountAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError 寫出錯誤回應；500 只回傳通用訊息，詳細錯誤只寫進日誌
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		message = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
	})
}
