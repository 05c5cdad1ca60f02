package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"revenue-service/internal/reporting"
)

// Common errors
var (
	ErrDriverNotFound    = errors.New("driver not found")
	ErrRosterUnavailable = errors.New("driver roster unavailable")
)

// Client reads the driver roster from the user service
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new roster client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetAllDrivers retrieves every driver profile
func (c *Client) GetAllDrivers(ctx context.Context) ([]reporting.DriverRecord, error) {
	endpoint := fmt.Sprintf("%s/drivers", c.baseURL)

	var drivers []reporting.DriverRecord
	if err := c.getJSON(ctx, endpoint, &drivers); err != nil {
		return nil, err
	}
	if drivers == nil {
		drivers = []reporting.DriverRecord{}
	}

	return drivers, nil
}

// GetDriver retrieves a single driver profile
func (c *Client) GetDriver(ctx context.Context, driverID string) (*reporting.DriverRecord, error) {
	endpoint := fmt.Sprintf("%s/drivers/%s", c.baseURL, url.PathEscape(driverID))

	var driver reporting.DriverRecord
	if err := c.getJSON(ctx, endpoint, &driver); err != nil {
		return nil, err
	}

	return &driver, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return ErrDriverNotFound
		}
		return fmt.Errorf("%w: status %d", ErrRosterUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode roster response: %w", err)
	}

	return nil
}
