package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

func TestOrderLister_List(t *testing.T) {
	t.Run("Splits pending and fulfilled", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[
				{"id":10,"nombre":"Ana","telefono":"555","ciudad":"Rosario","valor_total":"1.234,50","estado":"proceso"},
				{"nombre":"Beto","valor_total":12,"estado":"atendido","otros":"timbre"},
				{"name":"Caro","total_value":3.5,"status":"FULFILLED"},
				"garbage",
				{"nombre":"Dani"}
			]}`))
		}))
		defer srv.Close()

		pending, fulfilled, err := NewOrderLister(srv.URL, nil, zap.NewNop()).List(context.Background())
		require.NoError(t, err)

		require.Len(t, pending, 2)
		assert.Equal(t, 10, pending[0].ID)
		assert.Equal(t, "Ana", pending[0].Name)
		assert.Equal(t, 1234.5, pending[0].TotalValue)
		assert.Equal(t, models.OrderStatusPending, pending[0].Status)
		assert.Equal(t, 5, pending[1].ID)
		assert.Zero(t, pending[1].TotalValue)

		require.Len(t, fulfilled, 2)
		assert.Equal(t, 2, fulfilled[0].ID)
		assert.Equal(t, "timbre", fulfilled[0].Notes)
		assert.Equal(t, "Caro", fulfilled[1].Name)
		assert.Equal(t, 3.5, fulfilled[1].TotalValue)
	})

	t.Run("Endpoint error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, _, err := NewOrderLister(srv.URL, nil, zap.NewNop()).List(context.Background())
		assert.Error(t, err)
	})

	t.Run("Body without data array", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rows":[]}`))
		}))
		defer srv.Close()

		_, _, err := NewOrderLister(srv.URL, nil, zap.NewNop()).List(context.Background())
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}
