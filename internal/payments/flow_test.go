package payments_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forge-workshop/backend/internal/models"
	"github.com/forge-workshop/backend/internal/orders"
	"github.com/forge-workshop/backend/internal/payments"
	"github.com/forge-workshop/backend/internal/registrants"
)

// flowStore backs the whole order -> webhook -> status flow in memory with
// the repository's idempotent update semantics.
type flowStore struct {
	byOrder map[string]*models.Registrant
}

func (f *flowStore) Create(_ context.Context, reg *models.Registrant) error {
	if _, exists := f.byOrder[reg.OrderID]; exists {
		return fmt.Errorf("duplicate order id %s", reg.OrderID)
	}
	reg.Links = map[string]string{}
	cp := *reg
	f.byOrder[reg.OrderID] = &cp
	return nil
}

func (f *flowStore) GetByOrderID(_ context.Context, orderID string) (*models.Registrant, error) {
	reg, ok := f.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	cp := *reg
	return &cp, nil
}

func (f *flowStore) MarkVerified(_ context.Context, orderID, paymentID string, links map[string]string) (*models.Registrant, error) {
	reg, ok := f.byOrder[orderID]
	if !ok {
		return nil, nil
	}
	if reg.PaymentID == nil {
		pid := paymentID
		reg.PaymentID = &pid
	}
	reg.Verified = true
	for k, v := range links {
		if _, exists := reg.Links[k]; !exists {
			reg.Links[k] = v
		}
	}
	cp := *reg
	return &cp, nil
}

func (f *flowStore) GetByPaymentID(_ context.Context, paymentID string) (*models.Registrant, error) {
	for _, reg := range f.byOrder {
		if reg.PaymentID != nil && *reg.PaymentID == paymentID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *flowStore) ListRecent(_ context.Context, limit int) ([]models.Registrant, error) {
	var list []models.Registrant
	for _, reg := range f.byOrder {
		if len(list) == limit {
			break
		}
		list = append(list, *reg)
	}
	return list, nil
}

type flowProvider struct{ next int }

func (p *flowProvider) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*payments.Order, error) {
	p.next++
	return &payments.Order{ID: fmt.Sprintf("order_%d", p.next), Amount: amount, Currency: currency, Receipt: receipt}, nil
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(context.Context, *models.Registrant) {}

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestOrderWebhookStatusFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	const secret = "whsec_flow"

	store := &flowStore{byOrder: map[string]*models.Registrant{}}
	links := payments.ResourceLinks{
		WhatsApp: "https://chat.example/wa",
		Telegram: "https://t.example/tg",
		Download: "https://dl.example/bundle",
	}

	router := gin.New()
	router.POST("/create-order", orders.NewHandler(store, &flowProvider{}, "rzp_test_key", "INR", nil).Create)
	router.POST("/webhook", payments.NewWebhookHandler(store, noopDispatcher{}, links, secret, nil).Handle)
	router.GET("/attendee-status/:paymentId", registrants.NewHandler(store, nil).Status)

	// Create the order.
	req := httptest.NewRequest(http.MethodPost, "/create-order",
		strings.NewReader(`{"amount":50000,"name":"A","email":"a@x.com","bundle":true}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var created struct {
		Order payments.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "order_1", created.Order.ID)

	// Deliver the signed captured event.
	event, _ := json.Marshal(gin.H{
		"event": "payment.captured",
		"payload": gin.H{
			"payment": gin.H{"entity": gin.H{"id": "pay_1", "order_id": created.Order.ID}},
		},
	})
	whReq := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(event))
	whReq.Header.Set(payments.SignatureHeader, sign(secret, event))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, whReq)
	require.Equal(t, http.StatusOK, rec.Code)

	// Status reflects exactly what the webhook wrote.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/attendee-status/pay_1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status struct {
		OK       bool              `json:"ok"`
		Verified bool              `json:"verified"`
		Links    map[string]string `json:"links"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.OK)
	assert.True(t, status.Verified)
	assert.Equal(t, map[string]string{
		"whatsapp": "https://chat.example/wa",
		"telegram": "https://t.example/tg",
		"download": "https://dl.example/bundle",
	}, status.Links)
}
