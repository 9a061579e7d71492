package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiChecker(t *testing.T) {
	checker := NewMultiChecker(CheckerFunc(func() error { return nil }))
	assert.NoError(t, checker.Check())

	checker.Add(CheckerFunc(func() error { return errors.New("first") }))
	checker.Add(CheckerFunc(func() error { return errors.New("second") }))
	err := checker.Check()
	assert.ErrorContains(t, err, "first")
	assert.ErrorContains(t, err, "second")
}

func TestHealthz(t *testing.T) {
	tests := map[string]struct {
		err              error
		expectedCode     int
		expectedResponse Response
	}{
		"healthy": {
			expectedCode:     http.StatusOK,
			expectedResponse: Response{Status: StatusHealthy},
		},
		"unhealthy": {
			err:              errors.New("no credentials"),
			expectedCode:     http.StatusServiceUnavailable,
			expectedResponse: Response{Status: StatusUnhealthy, Error: "no credentials"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			router := mux.NewRouter()
			SetupHttpMux(router, CheckerFunc(func() error { return tc.err }))

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tc.expectedCode, recorder.Code)
			var response Response
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
			assert.Equal(t, tc.expectedResponse, response)
		})
	}
}

func TestHealthz_MethodNotAllowed(t *testing.T) {
	router := mux.NewRouter()
	SetupHttpMux(router, CheckerFunc(func() error { return nil }))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
}
