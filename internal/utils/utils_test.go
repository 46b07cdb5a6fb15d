package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomerContext(t *testing.T) {
	t.Run("SetCustomerContext and GetCustomerIDFromContext", func(t *testing.T) {
		ctx := SetCustomerContext(context.Background(), 7, "buyer@example.com")

		id, ok := GetCustomerIDFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, int64(7), id)
		assert.Equal(t, "buyer@example.com", GetCustomerEmailFromContext(ctx))
	})

	t.Run("GetCustomerIDFromContext with empty context", func(t *testing.T) {
		_, ok := GetCustomerIDFromContext(context.Background())
		assert.False(t, ok)
		assert.Empty(t, GetCustomerEmailFromContext(context.Background()))
	})
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"123", 123, true},
		{"000123", 123, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseID(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSONError(w, "order not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "order not found", body["error"])
}
