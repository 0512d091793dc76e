package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"contentforge/internal/domain"
)

type topupRequest struct {
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

func (a *App) WalletBalance(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	balance, err := a.Wallet.Balance(r.Context(), userID)
	if err != nil {
		a.Logger.Error().Err(err).Msg("load wallet balance failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load balance")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"user_id": userID,
		"balance": balance,
	})
}

func (a *App) WalletTransactions(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			a.error(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	transactions, err := a.Wallet.Transactions(r.Context(), userID, limit)
	if err != nil {
		a.Logger.Error().Err(err).Msg("load wallet transactions failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load transactions")
		return
	}
	items := make([]map[string]any, 0, len(transactions))
	for _, tx := range transactions {
		items = append(items, transactionDTO(tx))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) WalletTopup(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req topupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Amount <= 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "amount must be positive")
		return
	}
	description := req.Description
	if description == "" {
		description = "Credit top-up"
	}
	tx, err := a.Wallet.Credit(r.Context(), userID, req.Amount, description)
	if err != nil {
		a.Logger.Error().Err(err).Msg("wallet topup failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to credit wallet")
		return
	}
	a.recordUsage(r, userID, "", "WALLET_TOPUP", true, map[string]any{"amount": req.Amount})
	a.json(w, http.StatusOK, transactionDTO(*tx))
}

func transactionDTO(tx domain.Transaction) map[string]any {
	return map[string]any{
		"id":            tx.ID,
		"amount":        tx.Amount,
		"description":   tx.Description,
		"balance_after": tx.BalanceAfter,
		"created_at":    tx.CreatedAt,
	}
}
