package payment

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sitepay-be/internal/order"

	"github.com/google/uuid"
)

// Return page query strings appended to an order's published path.
const (
	returnInfoQuery  = "?payment.info=1"
	returnErrorQuery = "?payment.info=1&payment.error=1"
)

// operationNamespace seeds deterministic operation codes.
var operationNamespace = uuid.MustParse("0b7d9d36-5d0e-4f7e-9a43-6c1f3ad0c2b1")

// CurrencyMap translates store currency codes into a gateway's codes.
// Unmapped codes pass through unchanged.
type CurrencyMap map[string]string

func (m CurrencyMap) Translate(currency string) string {
	if c, ok := m[currency]; ok {
		return c
	}
	return currency
}

var rubleCurrencies = CurrencyMap{"RUR": "RUB"}

// DeriveOperationCode is used when a gateway does not name the transaction.
// The same gateway and order always map to the same code, so redelivered
// callbacks land on one payment operation.
func DeriveOperationCode(gateway, orderRef string) string {
	return uuid.NewSHA1(operationNamespace, []byte(gateway+":"+orderRef)).String()
}

func padOrderID(id int64, width int) string {
	return fmt.Sprintf("%0*d", width, id)
}

// parseOrderRef reads a gateway's (possibly zero padded) order number.
func parseOrderRef(ref string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad order reference %q", order.ErrOrderNotFound, ref)
	}
	return id, nil
}

// formatTemplate substitutes {siteName}-style placeholders.
func formatTemplate(tpl string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tpl)
}

// callbackFields collects query and form parameters, first value wins.
func callbackFields(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse callback: %w", err)
	}
	fields := make(map[string]string, len(r.Form))
	for k, v := range r.Form {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return fields, nil
}

func requestMethod(configured string) string {
	if configured == "" {
		return http.MethodPost
	}
	return strings.ToUpper(configured)
}

func returnURL(baseURL string, snap *order.Snapshot, query string) string {
	return baseURL + snap.PublishedPath + query
}
