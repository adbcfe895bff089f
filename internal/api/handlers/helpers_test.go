package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"melodex-backend/internal/api/middleware"
	"melodex-backend/internal/database"
	melodexEnv "melodex-backend/internal/env"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// Builds the full route table over the given store with a discarding
// logger.
func newServer(store database.Store) *mux.Router {
	router := mux.NewRouter()
	middleware.AddRoutes(router, melodexEnv.New(nil, store))
	return router
}

func doRequest(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst))
}

func requireStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rr.Code, rr.Body.String())
}

// Error responses always carry a JSON body {"error": ...}.
func requireErrorBody(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.NotEmpty(t, body["error"])
}
