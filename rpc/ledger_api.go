package rpc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alphabill-org/alphabill-fees/txsystem/balances"
	"github.com/alphabill-org/alphabill-fees/types"
)

type (
	Ledger interface {
		Account(id types.AccountID, committed bool) (*balances.Account, error)
		Accounts(committed bool) []balances.AccountEntry
		SubmitExtrinsic(ext *types.Extrinsic) (*types.ServerMetadata, error)
	}

	// LedgerAPI serves account balances and accepts extrinsics.
	LedgerAPI struct {
		ledger Ledger
		log    *slog.Logger
	}

	AccountResponse struct {
		_       struct{}        `cbor:",toarray"`
		ID      types.AccountID `json:"id"`
		Balance types.Amount    `json:"balance,string"`
		Nonce   uint64          `json:"nonce"`
	}

	AccountsResponse struct {
		_        struct{}          `cbor:",toarray"`
		Accounts []AccountResponse `json:"accounts"`
	}
)

func NewLedgerAPI(ledger Ledger, log *slog.Logger) *LedgerAPI {
	return &LedgerAPI{ledger: ledger, log: log}
}

func (a *LedgerAPI) Register(r *mux.Router) {
	r.HandleFunc("/accounts", a.Accounts).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/accounts/{id}", a.Account).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/extrinsics", a.SubmitExtrinsic).Methods(http.MethodPost, http.MethodOptions)
}

func (a *LedgerAPI) Account(w http.ResponseWriter, r *http.Request) {
	id, err := parseAccountID(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, fmt.Errorf("invalid account id: %w", err), http.StatusBadRequest, a.log)
		return
	}
	acc, err := a.ledger.Account(id, true)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, balances.ErrAccountNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, r, err, status, a.log)
		return
	}
	writeResponse(w, r, &AccountResponse{ID: id, Balance: acc.Balance, Nonce: acc.Nonce}, http.StatusOK, a.log)
}

// Accounts lists the committed accounts in ascending account id order.
func (a *LedgerAPI) Accounts(w http.ResponseWriter, r *http.Request) {
	entries := a.ledger.Accounts(true)
	res := &AccountsResponse{Accounts: make([]AccountResponse, 0, len(entries))}
	for _, e := range entries {
		res.Accounts = append(res.Accounts, AccountResponse{ID: e.ID, Balance: e.Account.Balance, Nonce: e.Account.Nonce})
	}
	writeResponse(w, r, res, http.StatusOK, a.log)
}

/*
SubmitExtrinsic accepts CBOR encoded extrinsic. When the extrinsic is
admitted (its fee was charged) the server metadata is returned with status
200, rejected extrinsic gets status 400.
*/
func (a *LedgerAPI) SubmitExtrinsic(w http.ResponseWriter, r *http.Request) {
	ext := &types.Extrinsic{}
	if err := types.Cbor.Decode(r.Body, ext); err != nil {
		writeError(w, r, fmt.Errorf("unable to decode request body as extrinsic: %w", err), http.StatusBadRequest, a.log)
		return
	}
	sm, err := a.ledger.SubmitExtrinsic(ext)
	if err != nil {
		writeError(w, r, err, http.StatusBadRequest, a.log)
		return
	}
	writeResponse(w, r, sm, http.StatusOK, a.log)
}

func parseAccountID(s string) (types.AccountID, error) {
	var id types.AccountID
	if err := id.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	if len(id) == 0 {
		return nil, errors.New("account id is empty")
	}
	return id, nil
}
