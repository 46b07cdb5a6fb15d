package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"sitepay-be/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qiwiParams(billURL string) config.GatewayParams {
	return config.GatewayParams{
		"query.url":                    "https://wallet.example/order/external/main.action",
		"query.type":                   "GET",
		"gateway.key":                  "s3cr3t",
		"gateway.shop.id":              "123456",
		"gateway.application.id":       "app-1",
		"gateway.application.password": "app-pass",
		"gateway.bill.url":             billURL,
		"gateway.bill.comment":         "Order on {siteName}",
	}
}

func qiwiCallbackForm() url.Values {
	return url.Values{
		"amount":   {"10.00"},
		"bill_id":  {"00123"},
		"ccy":      {"RUB"},
		"command":  {"pay"},
		"comment":  {"Order"},
		"error":    {"0"},
		"prv_name": {"shop"},
		"status":   {"paid"},
		"user":     {"tel:79990001111"},
	}
}

func qiwiCallbackRequest(form url.Values, signature string) *http.Request {
	req := formRequest("/payment/qiwi/callback", form)
	if signature != "" {
		req.Header.Set("X-Api-Signature", signature)
	}
	return req
}

func TestQIWI_BuildRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesBillThenRedirects", func(t *testing.T) {
		var got url.Values
		var gotPath, gotMethod, gotUser, gotPass, gotAccept, gotContentType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotPath = r.URL.Path
			gotUser, gotPass, _ = r.BasicAuth()
			gotAccept = r.Header.Get("Accept")
			gotContentType = r.Header.Get("Content-Type")
			_ = r.ParseForm()
			got = r.PostForm
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"response":{"result_code":0}}`))
		}))
		defer srv.Close()

		g := NewQIWIGateway(qiwiParams(srv.URL+"/api/v2/prv/"), testOptions())

		req, err := g.BuildRequest(ctx, testSnapshot())
		require.NoError(t, err)

		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "/api/v2/prv/123456/bills/00123", gotPath)
		assert.Equal(t, "app-1", gotUser)
		assert.Equal(t, "app-pass", gotPass)
		assert.Equal(t, "application/json", gotAccept)
		assert.Equal(t, "application/x-www-form-urlencoded; charset=utf-8", gotContentType)
		assert.Equal(t, "tel:79990001111", got.Get("user"))
		assert.Equal(t, "1500.50", got.Get("amount"))
		assert.Equal(t, "RUB", got.Get("ccy"))
		assert.Equal(t, "Order on shop.example", got.Get("comment"))
		assert.Equal(t, "2026-10-19T09:30:00+0000", got.Get("lifetime"))

		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "123456", fieldValue(req, "shop"))
		assert.Equal(t, "00123", fieldValue(req, "transaction"))
		assert.Equal(t, "https://shop.example/orders/123?payment.info=1", fieldValue(req, "successUrl"))
		assert.Equal(t, "https://shop.example/orders/123?payment.info=1&payment.error=1", fieldValue(req, "failUrl"))
	})

	t.Run("NoPhoneOmitsUser", func(t *testing.T) {
		var got url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = r.ParseForm()
			got = r.PostForm
		}))
		defer srv.Close()

		params := qiwiParams(srv.URL + "/")
		params["orders.lifetime"] = "1h"
		g := NewQIWIGateway(params, testOptions())

		snap := testSnapshot()
		snap.Phone = ""
		_, err := g.BuildRequest(ctx, snap)
		require.NoError(t, err)

		_, ok := got["user"]
		assert.False(t, ok)
		assert.Equal(t, "2026-10-16T10:30:00+0000", got.Get("lifetime"))
	})

	t.Run("BillRejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		g := NewQIWIGateway(qiwiParams(srv.URL+"/"), testOptions())

		req, err := g.BuildRequest(ctx, testSnapshot())
		assert.Nil(t, req)
		assert.ErrorIs(t, err, ErrUpstreamCall)
	})

	t.Run("BillUnreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		billURL := srv.URL + "/"
		srv.Close()

		g := NewQIWIGateway(qiwiParams(billURL), testOptions())

		_, err := g.BuildRequest(ctx, testSnapshot())
		assert.ErrorIs(t, err, ErrUpstreamCall)
	})

	t.Run("MissingCredentials", func(t *testing.T) {
		params := qiwiParams("https://unused.example/")
		delete(params, "gateway.application.password")

		_, err := NewQIWIGateway(params, testOptions()).BuildRequest(ctx, testSnapshot())
		assert.ErrorIs(t, err, ErrConfiguration)
	})

	t.Run("BadLifetime", func(t *testing.T) {
		params := qiwiParams("https://unused.example/")
		params["orders.lifetime"] = "3 days"

		_, err := NewQIWIGateway(params, testOptions()).BuildRequest(ctx, testSnapshot())
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestQIWI_Callback(t *testing.T) {
	g := NewQIWIGateway(qiwiParams("https://unused.example/"), testOptions())

	t.Run("Paid", func(t *testing.T) {
		cb, err := g.ParseAndVerify(qiwiCallbackRequest(qiwiCallbackForm(), "AIctaWIJ86nZgAiTi5OLVxTJSh8="))
		require.NoError(t, err)
		assert.Equal(t, "00123", cb.OrderRef)

		res, err := g.ProcessCallback(cb)
		require.NoError(t, err)
		assert.True(t, res.Succeeded)
		assert.Equal(t, int64(123), res.OrderID)
		assert.Equal(t, "0", res.Status)
		assert.Equal(t, DeriveOperationCode("qiwi", "00123"), res.OperationCode)
		assert.Equal(t, "text/xml", res.Ack.ContentType)
		assert.Equal(t, `<?xml version="1.0"?> <result><result_code>0</result_code></result>`, string(res.Ack.Body))
	})

	t.Run("Rejected", func(t *testing.T) {
		form := qiwiCallbackForm()
		form.Set("status", "rejected")
		form.Set("error", "150")

		cb, err := g.ParseAndVerify(qiwiCallbackRequest(form, "UUxqtH+xUTV0sR3PzznE/qlrFJI="))
		require.NoError(t, err)

		res, err := g.ProcessCallback(cb)
		require.NoError(t, err)
		assert.False(t, res.Succeeded)
		assert.Equal(t, "1", res.Status)
		assert.Equal(t, "rejected", res.StatusText)
		// the bill is still acknowledged
		assert.NotEmpty(t, res.Ack.Body)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		_, err := g.ParseAndVerify(qiwiCallbackRequest(qiwiCallbackForm(), ""))
		assert.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("SignatureInBodyIsIgnored", func(t *testing.T) {
		form := qiwiCallbackForm()
		form.Set("X-Api-Signature", "AIctaWIJ86nZgAiTi5OLVxTJSh8=")

		_, err := g.ParseAndVerify(qiwiCallbackRequest(form, ""))
		assert.ErrorIs(t, err, ErrMissingSignature)
	})

	t.Run("Tampered", func(t *testing.T) {
		form := qiwiCallbackForm()
		form.Set("amount", "1000.00")

		_, err := g.ParseAndVerify(qiwiCallbackRequest(form, "AIctaWIJ86nZgAiTi5OLVxTJSh8="))
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})
}
