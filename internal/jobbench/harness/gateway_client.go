package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/G-Research/jobbench/pkg/client/domain"
)

const (
	defaultRequestTimeout = 30 * time.Second
	maxResponseBytes      = 1 << 20
)

// Gateway launches tasks and reports their status.
type Gateway interface {
	Launch(ctx context.Context, request *domain.LaunchTaskRequest) (*domain.LaunchTaskResponse, error)
	Status(ctx context.Context, request *domain.TaskStatusRequest) (*domain.TaskStatus, error)
}

// GatewayError is returned when the gateway answers with an error status.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (err *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", err.StatusCode, err.Message)
}

// Temporary reports whether the request may succeed if repeated.
func (err *GatewayError) Temporary() bool {
	return err.StatusCode >= http.StatusInternalServerError || err.StatusCode == http.StatusTooManyRequests
}

// GatewayClient talks to the task-launch gateway over HTTP. Responses may be plain JSON or wrapped in
// a {"statusCode": ..., "body": "<json>"} envelope, as returned by function-style handlers.
type GatewayClient struct {
	ExecuteURL string
	StatusURL  string
	HTTPClient *http.Client
}

func NewGatewayClient(executeURL, statusURL string) *GatewayClient {
	return &GatewayClient{
		ExecuteURL: executeURL,
		StatusURL:  statusURL,
		HTTPClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

func (c *GatewayClient) Launch(ctx context.Context, request *domain.LaunchTaskRequest) (*domain.LaunchTaskResponse, error) {
	response := &domain.LaunchTaskResponse{}
	if err := c.post(ctx, c.ExecuteURL, request, response); err != nil {
		return nil, err
	}
	if response.TaskArn == "" {
		return nil, errors.Errorf("gateway response from %s has no task ARN", c.ExecuteURL)
	}
	return response, nil
}

func (c *GatewayClient) Status(ctx context.Context, request *domain.TaskStatusRequest) (*domain.TaskStatus, error) {
	response := &domain.TaskStatusResponse{}
	if err := c.post(ctx, c.StatusURL, request, response); err != nil {
		return nil, err
	}
	if response.Status == nil {
		return nil, errors.Errorf("gateway response from %s has no status", c.StatusURL)
	}
	return response.Status, nil
}

type envelope struct {
	StatusCode int     `json:"statusCode"`
	Body       *string `json:"body"`
}

func (c *GatewayClient) post(ctx context.Context, url string, in interface{}, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.WithStack(err)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	httpResponse, err := httpClient.Do(httpRequest)
	if err != nil {
		return errors.WithStack(err)
	}
	defer httpResponse.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(httpResponse.Body, maxResponseBytes))
	if err != nil {
		return errors.WithStack(err)
	}

	statusCode := httpResponse.StatusCode
	var wrapped envelope
	if json.Unmarshal(payload, &wrapped) == nil && wrapped.Body != nil {
		payload = []byte(*wrapped.Body)
		if wrapped.StatusCode != 0 {
			statusCode = wrapped.StatusCode
		}
	}
	if statusCode >= http.StatusBadRequest {
		message := string(payload)
		var errorResponse domain.ErrorResponse
		if json.Unmarshal(payload, &errorResponse) == nil && errorResponse.Error != "" {
			message = errorResponse.Error
		}
		return &GatewayError{StatusCode: statusCode, Message: message}
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, "could not decode response from %s", url)
	}
	return nil
}
