package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/hrishiii27/shopify-insights/internal/models"
)

// MaxPageSize is the external API's hard cap on records per page.
const MaxPageSize = 250

// ErrAuth indicates the upstream rejected the tenant's credential.
var ErrAuth = errors.New("upstream rejected credentials")

// RequestError is any non-success upstream response. The gateway never
// retries; the caller decides retry policy.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("upstream request failed: status=%d body=%s", e.StatusCode, e.Body)
}

// Credentials identify one tenant's store on the external API.
type Credentials struct {
	ShopDomain  string
	AccessToken string
}

// Client is a thin read-only client for the Shopify Admin REST API.
// It issues one authenticated paginated request per call and has no
// side effects beyond the outbound request.
type Client struct {
	http       *http.Client
	apiVersion string
	pageSize   int
}

// NewClient creates a client. pageSize is clamped to MaxPageSize.
func NewClient(apiVersion string, pageSize int, timeout time.Duration) *Client {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		apiVersion: apiVersion,
		pageSize:   pageSize,
	}
}

// ListCustomers fetches one page of customers. pageInfo is the cursor
// from a previous call, empty for the first page. The returned cursor
// is empty when there are no further pages.
func (c *Client) ListCustomers(ctx context.Context, creds Credentials, pageInfo string) ([]models.ShopifyCustomer, string, error) {
	var payload struct {
		Customers []models.ShopifyCustomer `json:"customers"`
	}
	next, err := c.getPage(ctx, creds, "customers", pageInfo, nil, &payload)
	if err != nil {
		return nil, "", err
	}
	return payload.Customers, next, nil
}

// ListOrders fetches one page of orders, any status.
func (c *Client) ListOrders(ctx context.Context, creds Credentials, pageInfo string) ([]models.ShopifyOrder, string, error) {
	var payload struct {
		Orders []models.ShopifyOrder `json:"orders"`
	}
	next, err := c.getPage(ctx, creds, "orders", pageInfo, url.Values{"status": {"any"}}, &payload)
	if err != nil {
		return nil, "", err
	}
	return payload.Orders, next, nil
}

// ListProducts fetches one page of products.
func (c *Client) ListProducts(ctx context.Context, creds Credentials, pageInfo string) ([]models.ShopifyProduct, string, error) {
	var payload struct {
		Products []models.ShopifyProduct `json:"products"`
	}
	next, err := c.getPage(ctx, creds, "products", pageInfo, nil, &payload)
	if err != nil {
		return nil, "", err
	}
	return payload.Products, next, nil
}

// getPage issues one GET against the resource endpoint and decodes the
// response into out. Returns the next-page cursor from the Link header.
func (c *Client) getPage(ctx context.Context, creds Credentials, resource, pageInfo string, extra url.Values, out interface{}) (string, error) {
	query := url.Values{"limit": {strconv.Itoa(c.pageSize)}}
	if pageInfo != "" {
		// A cursored request may only carry limit and page_info.
		query.Set("page_info", pageInfo)
	} else {
		for k, vs := range extra {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
	}

	endpoint := fmt.Sprintf("https://%s/admin/api/%s/%s.json?%s",
		creds.ShopDomain, c.apiVersion, resource, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and transport failures surface as request errors.
		return "", &RequestError{StatusCode: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: status=%d body=%s", ErrAuth, resp.StatusCode, string(body))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", fmt.Errorf("failed to decode %s response: %w", resource, err)
	}

	return nextPageInfo(resp.Header.Get("Link")), nil
}

var nextLinkRe = regexp.MustCompile(`<[^>]*[?&]page_info=([^&>]+)[^>]*>;\s*rel="next"`)

// nextPageInfo extracts the rel="next" page_info cursor from a Link
// header, empty when the last page has been reached.
func nextPageInfo(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	m := nextLinkRe.FindStringSubmatch(linkHeader)
	if m == nil {
		return ""
	}
	return m[1]
}
