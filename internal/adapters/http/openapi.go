package httpadapter

import (
	"context"
	_ "embed"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var contractDocument []byte

// LoadContract parses and validates the embedded API contract. It runs
// at startup so a malformed contract fails the deploy, not a consumer.
func LoadContract() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(contractDocument)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, err
	}
	return doc, nil
}

var (
	contractOnce sync.Once
	contractJSON []byte
	contractErr  error
)

func serializedContract() ([]byte, error) {
	contractOnce.Do(func() {
		doc, err := LoadContract()
		if err != nil {
			contractErr = err
			return
		}
		contractJSON, contractErr = doc.MarshalJSON()
	})
	return contractJSON, contractErr
}

func (rt *Router) openapiSpec(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	payload, err := serializedContract()
	if err != nil {
		rt.logger.Error("serialize api contract", "error", err)
		writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
