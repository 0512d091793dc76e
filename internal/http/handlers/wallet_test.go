package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWalletBalance(t *testing.T) {
	app := testApp()
	app.Wallet.(*fakeWalletLedger).balance = 25

	rr := httptest.NewRecorder()
	app.WalletBalance(rr, newRequest("GET", "/v1/wallet", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d, want 200", rr.Code)
	}
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["balance"] != float64(25) {
		t.Fatalf("unexpected balance: %v", payload["balance"])
	}
}

func TestWalletTopupCreditsWallet(t *testing.T) {
	app := testApp()
	wallet := app.Wallet.(*fakeWalletLedger)

	rr := httptest.NewRecorder()
	app.WalletTopup(rr, newRequest("POST", "/v1/wallet/topup", `{"amount":100}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if len(wallet.credits) != 1 || wallet.credits[0] != 100 {
		t.Fatalf("unexpected credits: %v", wallet.credits)
	}

	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["balance_after"] != float64(100) {
		t.Fatalf("unexpected balance_after: %v", payload["balance_after"])
	}
	if payload["description"] != "Credit top-up" {
		t.Fatalf("unexpected description: %v", payload["description"])
	}
}

func TestWalletTopupRejectsNonPositiveAmount(t *testing.T) {
	app := testApp()

	for _, body := range []string{`{"amount":0}`, `{"amount":-5}`, `{}`} {
		rr := httptest.NewRecorder()
		app.WalletTopup(rr, newRequest("POST", "/v1/wallet/topup", body))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %s: unexpected status: got %d, want 400", body, rr.Code)
		}
	}
}

func TestWalletTransactionsRejectsBadLimit(t *testing.T) {
	app := testApp()

	rr := httptest.NewRecorder()
	app.WalletTransactions(rr, newRequest("GET", "/v1/wallet/transactions?limit=zero", ""))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d, want 400", rr.Code)
	}
}

func TestWalletTransactionsListsItems(t *testing.T) {
	app := testApp()

	rr := httptest.NewRecorder()
	app.WalletTransactions(rr, newRequest("GET", "/v1/wallet/transactions", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d, want 200", rr.Code)
	}
	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(payload.Items))
	}
}
