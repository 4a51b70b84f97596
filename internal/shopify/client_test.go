package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a client at an httptest TLS server.
func newTestClient(t *testing.T, handler http.Handler) (*Client, Credentials) {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("2024-01", 2, 5*time.Second)
	c.http = srv.Client()

	creds := Credentials{
		ShopDomain:  strings.TrimPrefix(srv.URL, "https://"),
		AccessToken: "shpat_test",
	}
	return c, creds
}

func TestListCustomersAuthError(t *testing.T) {
	c, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":"Invalid API key or access token"}`)
	}))

	_, _, err := c.ListCustomers(context.Background(), creds, "")
	assert.ErrorIs(t, err, ErrAuth)
}

func TestListCustomersRequestError(t *testing.T) {
	c, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "throttled")
	}))

	_, _, err := c.ListCustomers(context.Background(), creds, "")

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusTooManyRequests, reqErr.StatusCode)
	assert.Contains(t, reqErr.Body, "throttled")
}

func TestListOrdersPagination(t *testing.T) {
	var firstQuery, secondQuery string
	c, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))

		if r.URL.Query().Get("page_info") == "" {
			firstQuery = r.URL.RawQuery
			w.Header().Set("Link",
				fmt.Sprintf(`<https://%s/admin/api/2024-01/orders.json?limit=2&page_info=cursor-2>; rel="next"`,
					r.Host))
			fmt.Fprint(w, `{"orders":[{"id":1,"total_price":"10.00"},{"id":2,"total_price":"20.00"}]}`)
			return
		}

		secondQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"orders":[{"id":3,"total_price":"30.00"}]}`)
	}))

	ctx := context.Background()

	orders, next, err := c.ListOrders(ctx, creds, "")
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, "cursor-2", next)
	assert.Contains(t, firstQuery, "status=any")

	orders, next, err = c.ListOrders(ctx, creds, next)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, int64(3), orders[0].ID)
	assert.Equal(t, "", next)
	// A cursored request carries only limit and page_info.
	assert.NotContains(t, secondQuery, "status=any")
	assert.Contains(t, secondQuery, "page_info=cursor-2")
}

func TestNextPageInfo(t *testing.T) {
	header := `<https://shop.myshopify.com/admin/api/2024-01/orders.json?limit=250&page_info=abc123>; rel="next"`
	assert.Equal(t, "abc123", nextPageInfo(header))

	both := `<https://shop.myshopify.com/admin/api/2024-01/orders.json?page_info=prev999&limit=250>; rel="previous", ` +
		`<https://shop.myshopify.com/admin/api/2024-01/orders.json?page_info=next888&limit=250>; rel="next"`
	assert.Equal(t, "next888", nextPageInfo(both))

	prevOnly := `<https://shop.myshopify.com/admin/api/2024-01/orders.json?page_info=prev999>; rel="previous"`
	assert.Equal(t, "", nextPageInfo(prevOnly))

	assert.Equal(t, "", nextPageInfo(""))
}

func TestNewClientClampsPageSize(t *testing.T) {
	c := NewClient("2024-01", 1000, time.Second)
	assert.Equal(t, MaxPageSize, c.pageSize)

	c = NewClient("2024-01", 0, time.Second)
	assert.Equal(t, MaxPageSize, c.pageSize)

	c = NewClient("2024-01", 50, time.Second)
	assert.Equal(t, 50, c.pageSize)
}

func TestRequestErrorFormat(t *testing.T) {
	err := &RequestError{StatusCode: 429, Body: "too many requests"}
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "too many requests")
}
