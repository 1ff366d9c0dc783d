package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JoeShih716/go-txn-ledger/internal/app/core/usecase"
)

// Handler REST API 的 driving adapter
type Handler struct {
	core     *usecase.CoreUseCase
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(core *usecase.CoreUseCase, logger *slog.Logger) *Handler {
	return &Handler{
		core:     core,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Router 建立 chi 路由
//
//	POST   /accounts
//	GET    /accounts/{id}
//	POST   /transactions
//	GET    /transactions/{id}
//	GET    /operation-types
//	PUT    /operation-types
//	DELETE /operation-types/{id}
//	GET    /healthz
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(accessLog(h.logger))

	r.Get("/healthz", h.health)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", h.createAccount)
		r.Get("/{id}", h.getAccount)
	})
	r.Route("/transactions", func(r chi.Router) {
		r.Post("/", h.performTransaction)
		r.Get("/{id}", h.getTransaction)
	})
	r.Route("/operation-types", func(r chi.Router) {
		r.Get("/", h.listOperationTypes)
		r.Put("/", h.upsertOperationType)
		r.Delete("/{id}", h.deleteOperationType)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	account, err := h.core.CreateAccount(r.Context(), req.DocumentNumber)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	account, err := h.core.GetAccount(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

func (h *Handler) performTransaction(w http.ResponseWriter, r *http.Request) {
	var req PerformTransactionRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	tran, err := h.core.PerformTransaction(r.Context(), req.AccountID, *req.OperationTypeID, req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newTransactionResponse(tran))
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tran, err := h.core.GetTransaction(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(tran))
}

func (h *Handler) listOperationTypes(w http.ResponseWriter, r *http.Request) {
	ops, err := h.core.ListOperationTypes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOperationTypeResponses(ops))
}

func (h *Handler) upsertOperationType(w http.ResponseWriter, r *http.Request) {
	var req OperationTypeRequest
	if err := h.bind(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	op, err := req.toDomain()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ops, err := h.core.UpsertOperationType(r.Context(), op)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOperationTypeResponses(ops))
}

func (h *Handler) deleteOperationType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ops, err := h.core.DeleteOperationType(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newOperationTypeResponses(ops))
}

// bind 解析 JSON body 並執行 validator 檢查
func (h *Handler) bind(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &requestError{msg: "failed to parse request body: " + err.Error()}
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &requestError{msg: fmt.Sprintf("field %s failed on the '%s' rule", verrs[0].Field(), verrs[0].Tag())}
		}
		return &requestError{msg: err.Error()}
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &requestError{msg: fmt.Sprintf("invalid id: %q", raw)}
	}
	return id, nil
}

// accessLog 每個請求結束後記錄一行
func accessLog(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"request_id", middleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
