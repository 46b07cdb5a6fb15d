package payment

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"sitepay-be/internal/order"

	"github.com/shopspring/decimal"
)

var (
	testNow      = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	testLocation = time.FixedZone("MSK", 3*60*60)
)

func testOptions() Options {
	return Options{
		PublicBaseURL: "https://shop.example",
		Location:      testLocation,
		Now:           func() time.Time { return testNow },
	}
}

func testSnapshot() *order.Snapshot {
	return &order.Snapshot{
		ID:            123,
		CustomerID:    7,
		TotalAmount:   decimal.RequireFromString("1500.5"),
		Currency:      "RUR",
		SiteName:      "shop.example",
		MarketName:    "Main",
		PublishedPath: "/orders/123",
		Status:        order.StatusPending,
		Email:         "buyer@example.com",
		Phone:         "79990001111",
	}
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func fieldValue(req *OutboundRequest, name string) string {
	v, _ := req.Get(name)
	return v
}
