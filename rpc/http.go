package rpc

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/alphabill-org/alphabill-fees/logger"
	"github.com/alphabill-org/alphabill-fees/types"
)

type errorResponse struct {
	_   struct{} `cbor:",toarray"`
	Err string   `json:"error"`
}

/*
writeResponse replies to the request with the given response and HTTP code.
Response is CBOR encoded when the client accepts "application/cbor", JSON
otherwise.
*/
func writeResponse(w http.ResponseWriter, r *http.Request, response any, statusCode int, log *slog.Logger) {
	if acceptsCBOR(r) {
		w.Header().Set(headerContentType, applicationCBOR)
		w.WriteHeader(statusCode)
		if err := types.Cbor.Encode(w, response); err != nil {
			log.Warn("failed to write CBOR response", logger.Error(err))
		}
		return
	}

	w.Header().Set(headerContentType, applicationJson)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Warn("failed to write JSON response", logger.Error(err))
	}
}

// writeError replies to the request with the specified error message and HTTP code.
func writeError(w http.ResponseWriter, r *http.Request, e error, statusCode int, log *slog.Logger) {
	writeResponse(w, r, &errorResponse{Err: fmt.Sprintf("%v", e)}, statusCode, log)
}

/*
decodeRequest decodes request body into v, CBOR when the content type of the
request is "application/cbor", JSON otherwise.
*/
func decodeRequest(r *http.Request, v any) error {
	if isCBOR(r.Header.Get(headerContentType)) {
		return types.Cbor.Decode(r.Body, v)
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func acceptsCBOR(r *http.Request) bool {
	for _, v := range strings.Split(r.Header.Get(headerAccept), ",") {
		if isCBOR(v) {
			return true
		}
	}
	return false
}

func isCBOR(contentType string) bool {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(contentType))
	return err == nil && mt == applicationCBOR
}
