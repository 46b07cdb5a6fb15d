package payment

import (
	"net/url"
	"time"
)

// Field is one named request parameter; order is significant.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// OutboundRequest is what the customer's browser submits to the gateway.
type OutboundRequest struct {
	Gateway        string  `json:"gateway"`
	URL            string  `json:"url"`
	Method         string  `json:"method"`
	Fields         []Field `json:"fields"`
	SignatureField string  `json:"signature_field,omitempty"`
}

// Set replaces the value of an existing field or appends a new one.
func (r *OutboundRequest) Set(name, value string) {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			r.Fields[i].Value = value
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

func (r *OutboundRequest) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func (r *OutboundRequest) Values() url.Values {
	v := make(url.Values, len(r.Fields))
	for _, f := range r.Fields {
		v.Set(f.Name, f.Value)
	}
	return v
}

// InboundCallback is a gateway notification whose signature has been verified.
type InboundCallback struct {
	Gateway   string
	Fields    map[string]string
	Signature string
	OrderRef  string
}

func (c *InboundCallback) Get(name string) string {
	return c.Fields[name]
}

// Acknowledgement is the body a gateway expects in reply to its callback.
type Acknowledgement struct {
	ContentType string
	Body        []byte
}

// PaymentResult is the normalized outcome of a verified callback.
type PaymentResult struct {
	Gateway       string
	OrderID       int64
	OperationCode string
	OperationTime time.Time
	Succeeded     bool
	Status        string
	StatusText    string
	Ack           Acknowledgement
}

// Operation is a persisted payment attempt, unique by Code.
type Operation struct {
	ID          int64
	Gateway     string
	Code        string
	OrderID     int64
	Status      string
	Description string
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// CallbackRecord is a journal entry of one verified callback delivery.
type CallbackRecord struct {
	Gateway       string
	CallbackID    string
	OrderRef      string
	OperationCode string
	Payload       []byte
}
