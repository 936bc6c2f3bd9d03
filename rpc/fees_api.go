package rpc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alphabill-org/alphabill-fees/txsystem/fees"
	"github.com/alphabill-org/alphabill-fees/types"
)

type (
	FeeRegistry interface {
		AmountOf(c fees.Category) (types.Amount, error)
		Entries() ([]fees.Entry, error)
		Version() (uint64, error)
	}

	FeeCalculator interface {
		CalculateFee(length uint64, call *types.Call) (types.Amount, error)
	}

	// FeesAPI serves the content of the fee registry and fee estimates.
	FeesAPI struct {
		registry   FeeRegistry
		calculator FeeCalculator
		log        *slog.Logger
	}

	RegistryResponse struct {
		_       struct{}     `cbor:",toarray"`
		Version uint64       `json:"version,string"`
		Entries []fees.Entry `json:"entries"`
	}

	EntryResponse struct {
		_        struct{}      `cbor:",toarray"`
		Category fees.Category `json:"category"`
		Amount   types.Amount  `json:"amount,string"`
	}

	// EstimateRequest is the JSON form of the estimate request, the CBOR form
	// is the extrinsic itself.
	EstimateRequest struct {
		Module string `json:"module"`
		Method string `json:"method"`
		Length uint64 `json:"length"`
	}

	EstimateResponse struct {
		_      struct{}     `cbor:",toarray"`
		Call   string       `json:"call"`
		Length uint64       `json:"length"`
		Fee    types.Amount `json:"fee,string"`
	}
)

func NewFeesAPI(registry FeeRegistry, calculator FeeCalculator, log *slog.Logger) *FeesAPI {
	return &FeesAPI{
		registry:   registry,
		calculator: calculator,
		log:        log,
	}
}

func (a *FeesAPI) Register(r *mux.Router) {
	feesRouter := r.PathPrefix("/fees").Subrouter()
	feesRouter.HandleFunc("", a.Registry).Methods(http.MethodGet, http.MethodOptions)
	feesRouter.HandleFunc("/estimate", a.Estimate).Methods(http.MethodPost, http.MethodOptions)
	feesRouter.HandleFunc("/{namespace}/{variant}", a.Entry).Methods(http.MethodGet, http.MethodOptions)
}

func (a *FeesAPI) Registry(w http.ResponseWriter, r *http.Request) {
	version, err := a.registry.Version()
	if err != nil {
		writeError(w, r, fmt.Errorf("reading registry version: %w", err), http.StatusInternalServerError, a.log)
		return
	}
	entries, err := a.registry.Entries()
	if err != nil {
		writeError(w, r, fmt.Errorf("reading registry entries: %w", err), http.StatusInternalServerError, a.log)
		return
	}
	writeResponse(w, r, &RegistryResponse{Version: version, Entries: entries}, http.StatusOK, a.log)
}

func (a *FeesAPI) Entry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	category := fees.NewCategory(vars["namespace"], vars["variant"])
	if err := category.IsValid(); err != nil {
		writeError(w, r, err, http.StatusBadRequest, a.log)
		return
	}
	amount, err := a.registry.AmountOf(category)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fees.ErrMissingRegistryEntry) {
			status = http.StatusNotFound
		}
		writeError(w, r, err, status, a.log)
		return
	}
	writeResponse(w, r, &EntryResponse{Category: category, Amount: amount}, http.StatusOK, a.log)
}

func (a *FeesAPI) Estimate(w http.ResponseWriter, r *http.Request) {
	req, err := a.decodeEstimateRequest(r)
	if err != nil {
		writeError(w, r, fmt.Errorf("unable to decode request body: %w", err), http.StatusBadRequest, a.log)
		return
	}
	call := &types.Call{Module: req.Module, Method: req.Method}
	if err := call.ID().IsValid(); err != nil {
		writeError(w, r, err, http.StatusBadRequest, a.log)
		return
	}

	fee, err := a.calculator.CalculateFee(req.Length, call)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fees.ErrOverflow) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, r, fmt.Errorf("calculating fee: %w", err), status, a.log)
		return
	}
	writeResponse(w, r, &EstimateResponse{Call: call.ID().String(), Length: req.Length, Fee: fee}, http.StatusOK, a.log)
}

/*
decodeEstimateRequest accepts either CBOR encoded extrinsic or JSON encoded
EstimateRequest.
*/
func (a *FeesAPI) decodeEstimateRequest(r *http.Request) (*EstimateRequest, error) {
	if !isCBOR(r.Header.Get(headerContentType)) {
		req := &EstimateRequest{}
		if err := decodeRequest(r, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	ext := &types.Extrinsic{}
	if err := types.Cbor.Decode(r.Body, ext); err != nil {
		return nil, err
	}
	length, err := ext.EncodedLen()
	if err != nil {
		return nil, err
	}
	id := ext.CallID()
	return &EstimateRequest{Module: id.Module, Method: id.Method, Length: length}, nil
}
