package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/G-Research/jobbench/internal/common/health"
	"github.com/G-Research/jobbench/internal/common/jobbencherrors"
	"github.com/G-Research/jobbench/internal/common/logging"
	"github.com/G-Research/jobbench/pkg/client/domain"
)

// Launcher is implemented by TaskService.
type Launcher interface {
	Launch(ctx context.Context, request *domain.LaunchTaskRequest) (*domain.LaunchTaskResponse, error)
	Describe(ctx context.Context, request *domain.TaskStatusRequest) (*domain.TaskStatus, error)
}

type handler struct {
	launcher Launcher
}

// NewRouter returns the gateway routes: POST /execute, POST /status and GET /healthz.
func NewRouter(launcher Launcher, checker health.Checker) *mux.Router {
	h := &handler{launcher: launcher}
	router := mux.NewRouter()
	router.HandleFunc("/execute", h.execute).Methods("POST")
	router.HandleFunc("/status", h.status).Methods("POST")
	health.SetupHttpMux(router, checker)
	return router
}

func (h *handler) execute(w http.ResponseWriter, r *http.Request) {
	request := &domain.LaunchTaskRequest{}
	// An empty body launches the default countdown.
	if err := json.NewDecoder(r.Body).Decode(request); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, &jobbencherrors.ErrInvalidArgument{Name: "body", Message: "invalid request body: " + err.Error()})
		return
	}
	response, err := h.launcher.Launch(r.Context(), request)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *handler) status(w http.ResponseWriter, r *http.Request) {
	request := &domain.TaskStatusRequest{}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		writeError(w, &jobbencherrors.ErrInvalidArgument{Name: "body", Message: "invalid request body: " + err.Error()})
		return
	}
	status, err := h.launcher.Describe(r.Context(), request)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &domain.TaskStatusResponse{TaskArn: request.TaskArn, Status: status})
}

// statusCodeFromError maps error types to HTTP status codes.
func statusCodeFromError(err error) int {
	{
		var e *jobbencherrors.ErrInvalidArgument
		if errors.As(err, &e) {
			return http.StatusBadRequest
		}
	}
	{
		var e *jobbencherrors.ErrNotFound
		if errors.As(err, &e) {
			return http.StatusNotFound
		}
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := statusCodeFromError(err)
	message := err.Error()
	var invalid *jobbencherrors.ErrInvalidArgument
	if errors.As(err, &invalid) && invalid.Message != "" {
		message = invalid.Message
	}
	if code == http.StatusInternalServerError {
		logging.WithStacktrace(log.NewEntry(log.StandardLogger()), err).Error("request failed")
	}
	writeJSON(w, code, &domain.ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("Failed to write response: %v", err)
	}
}

// Serve runs an HTTP server on listenAddress until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, listenAddress string, handler http.Handler, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Addr:              listenAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		log.Infof("Task gateway listening on %s", listenAddress)
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return errors.WithStack(err)
	case <-ctx.Done():
	}

	log.Info("Shutting down task gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.WithStack(err)
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.WithStack(err)
	}
	return nil
}
