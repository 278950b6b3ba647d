package printer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RelayClient sends print jobs to a station's print relay instead of
// driving USB locally. Consoles use it so the one machine physically
// holding the printer serves the whole room.
type RelayClient struct {
	http *resty.Client
}

func NewRelayClient(baseURL string) *RelayClient {
	return &RelayClient{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(15 * time.Second).
			SetTransport(otelhttp.NewTransport(http.DefaultTransport)),
	}
}

func (c *RelayClient) Print(ctx context.Context, payload Payload) error {
	resp, err := c.http.R().SetContext(ctx).SetBody(payload).Post("/print")
	if err != nil {
		return fmt.Errorf("print relay unreachable: %w", err)
	}
	if resp.IsError() {
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if jsonErr := json.Unmarshal(resp.Body(), &env); jsonErr == nil && env.Error.Message != "" {
			return fmt.Errorf("%s", env.Error.Message)
		}
		return fmt.Errorf("print relay error (status %d)", resp.StatusCode())
	}
	return nil
}
