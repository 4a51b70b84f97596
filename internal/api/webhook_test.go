package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hrishiii27/shopify-insights/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "shhh"
	body := []byte(`{"id":123}`)

	assert.True(t, VerifyWebhookSignature(secret, body, sign(secret, body)))
	assert.False(t, VerifyWebhookSignature(secret, body, sign("wrong-secret", body)))
	assert.False(t, VerifyWebhookSignature(secret, []byte(`{"id":124}`), sign(secret, body)))
	assert.False(t, VerifyWebhookSignature(secret, body, "not-base64!!"))
	assert.False(t, VerifyWebhookSignature(secret, body, ""))
	assert.False(t, VerifyWebhookSignature("", body, sign("", body)))
}

func TestWebhookAlwaysAcknowledges(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// A garbage tenant id never reaches storage; the endpoint must
	// still acknowledge so the upstream does not retry-storm.
	h := &Handler{logger: util.GetLogger()}
	router := gin.New()
	router.POST("/webhooks/:tenantID", h.handleWebhook)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/not-a-number",
		strings.NewReader(`{"id":1}`))
	req.Header.Set("X-Shopify-Topic", "orders/create")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "received")
}
