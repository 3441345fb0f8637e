package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sharetube/mediasync/internal/protocol"
)

// APIError is a non-2xx response of the hosting server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
	}

	return fmt.Sprintf("server responded %d %s: %s", e.Status, e.Code, e.Message)
}

type RESTClient struct {
	baseURL string
	http    *http.Client
}

func NewRESTClient(baseURL string, httpClient *http.Client) *RESTClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &RESTClient{
		baseURL: baseURL,
		http:    httpClient,
	}
}

func (c *RESTClient) CreateInstance(ctx context.Context, input *protocol.CreateInstanceInput) (protocol.CreateInstanceOutput, error) {
	var output protocol.CreateInstanceOutput
	if err := c.do(ctx, http.MethodPost, input, &output, "api/v1/instances"); err != nil {
		return protocol.CreateInstanceOutput{}, fmt.Errorf("failed to create instance: %w", err)
	}

	return output, nil
}

func (c *RESTClient) AddParticipant(ctx context.Context, instanceID string, input *protocol.AddParticipantInput) (protocol.AddParticipantOutput, error) {
	var output protocol.AddParticipantOutput
	if err := c.do(ctx, http.MethodPost, input, &output, "api/v1/instances", instanceID, "participants"); err != nil {
		return protocol.AddParticipantOutput{}, fmt.Errorf("failed to add participant: %w", err)
	}

	return output, nil
}

func (c *RESTClient) GetInstance(ctx context.Context, instanceID string) (protocol.InstanceOutput, error) {
	var output protocol.InstanceOutput
	if err := c.do(ctx, http.MethodGet, nil, &output, "api/v1/instances", instanceID); err != nil {
		return protocol.InstanceOutput{}, fmt.Errorf("failed to get instance: %w", err)
	}

	return output, nil
}

func (c *RESTClient) do(ctx context.Context, method string, input, output any, path ...string) error {
	u, err := url.JoinPath(c.baseURL, path...)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	if input != nil {
		if err := json.NewEncoder(&body).Encode(input); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, u, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		var errBody struct {
			Code  string          `json:"code"`
			Error json.RawMessage `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errBody)

		message := string(errBody.Error)
		var s string
		if json.Unmarshal(errBody.Error, &s) == nil {
			message = s
		}

		return &APIError{Status: resp.StatusCode, Code: errBody.Code, Message: message}
	}

	return json.NewDecoder(resp.Body).Decode(output)
}
