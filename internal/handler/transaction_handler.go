package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"ledger-service/internal/domain"
	"ledger-service/internal/errors"
	"ledger-service/internal/service"
	"ledger-service/internal/validation"
)

type TransactionHandler struct {
	transactionService *service.TransactionService
	accountService     *service.AccountService
}

func NewTransactionHandler(transactionService *service.TransactionService, accountService *service.AccountService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		accountService:     accountService,
	}
}

type TransactionRequest struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	UUID     string `json:"uuid,omitempty"`
}

type TransactionResponse struct {
	ID              int64     `json:"id"`
	AccountID       int64     `json:"account_id"`
	UUID            string    `json:"uuid"`
	TransactionType string    `json:"transaction_type"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              transaction.ID,
		AccountID:       transaction.AccountID,
		UUID:            transaction.UUID,
		TransactionType: transaction.TransactionType,
		Amount:          validation.FormatAmount(transaction.Amount),
		Currency:        transaction.Currency,
		Status:          transaction.Status,
		CreatedAt:       transaction.CreatedAt.UTC(),
		UpdatedAt:       transaction.UpdatedAt.UTC(),
	}
}

type OperationResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Account     AccountResponse     `json:"account"`
}

func newOperationResponse(result *service.Result) OperationResponse {
	return OperationResponse{
		Transaction: newTransactionResponse(result.Transaction),
		Account:     newAccountResponse(result.Account),
	}
}

func (h *TransactionHandler) buildServiceRequest(r *http.Request) (*service.TransactionRequest, *errors.AppError) {
	var req TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.NewAppError(errors.ValidationError, "invalid request body").WithDetails(err.Error())
	}

	// Clients that do not care about retries may omit the idempotency key;
	// a fresh one keeps the core on a single code path.
	if req.UUID == "" {
		req.UUID = uuid.NewString()
	}

	return &service.TransactionRequest{
		AccountID: mux.Vars(r)["account_id"],
		UUID:      req.UUID,
		Currency:  req.Currency,
		Amount:    req.Amount,
	}, nil
}

// Deposit handles POST /accounts/{account_id}/deposit. A newly recorded
// transaction answers 201; an idempotent replay answers 200.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	req, appErr := h.buildServiceRequest(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	result, err := h.transactionService.Deposit(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, createdStatus(result.Created), newOperationResponse(result))
}

// ReserveWithdrawal handles POST /accounts/{account_id}/withdrawals.
func (h *TransactionHandler) ReserveWithdrawal(w http.ResponseWriter, r *http.Request) {
	req, appErr := h.buildServiceRequest(r)
	if appErr != nil {
		writeError(w, appErr)
		return
	}

	result, err := h.transactionService.ReserveWithdrawal(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, createdStatus(result.Created), newOperationResponse(result))
}

func (h *TransactionHandler) ConfirmWithdrawal(w http.ResponseWriter, r *http.Request) {
	result, err := h.transactionService.ConfirmWithdrawal(mux.Vars(r)["uuid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newOperationResponse(result))
}

func (h *TransactionHandler) CancelWithdrawal(w http.ResponseWriter, r *http.Request) {
	result, err := h.transactionService.CancelWithdrawal(mux.Vars(r)["uuid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newOperationResponse(result))
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.accountService.GetTransaction(mux.Vars(r)["uuid"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTransactionResponse(transaction))
}

func createdStatus(created bool) int {
	if created {
		return http.StatusCreated
	}
	return http.StatusOK
}
