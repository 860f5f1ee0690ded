package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"ledger-service/internal/domain"
	"ledger-service/internal/errors"
	"ledger-service/internal/service"
	"ledger-service/internal/validation"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type CreateAccountRequest struct {
	Currency string `json:"currency"`
	Balance  string `json:"balance,omitempty"`
}

type AccountResponse struct {
	ID        int64     `json:"id"`
	Balance   string    `json:"balance"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Balance:   validation.FormatAmount(account.Balance),
		Currency:  account.Currency,
		CreatedAt: account.CreatedAt.UTC(),
		UpdatedAt: account.UpdatedAt.UTC(),
	}
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.ValidationError, "invalid request body").WithDetails(err.Error()))
		return
	}

	account, err := h.accountService.CreateAccount(req.Currency, req.Balance)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	account, err := h.accountService.GetAccount(vars["account_id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
}

func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, errors.NewAppError(errors.ValidationError, "limit must be an integer"))
			return
		}
		limit = parsed
	}

	transactions, err := h.accountService.ListTransactions(vars["account_id"], limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := TransactionListResponse{
		Transactions: make([]TransactionResponse, 0, len(transactions)),
	}
	for _, transaction := range transactions {
		response.Transactions = append(response.Transactions, newTransactionResponse(transaction))
	}

	writeJSON(w, http.StatusOK, response)
}
