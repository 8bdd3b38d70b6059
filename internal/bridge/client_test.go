package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vigia/internal/common/errors"
	"vigia/internal/common/logger"
)

func TestSend_Delivered(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "5561999990000", req["recipient"])
		assert.Equal(t, "olá", req["message"])

		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	err := client.Send(context.Background(), "5561999990000", "olá")
	assert.NoError(t, err)
}

func TestSend_BridgeRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "recipient not on whatsapp",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	err := client.Send(context.Background(), "5561999990000", "olá")

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSendFailure))
	assert.Contains(t, err.Error(), "recipient not on whatsapp")
}

func TestSend_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	err := client.Send(context.Background(), "5561999990000", "olá")

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTransport))
}

func TestSend_MissingBaseURL(t *testing.T) {
	client := NewClient("", 2*time.Second, logger.NewTestLogger(t))
	err := client.Send(context.Background(), "5561999990000", "olá")

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSendFailure))
}

func TestSend_MalformedAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second, logger.NewTestLogger(t))
	err := client.Send(context.Background(), "5561999990000", "olá")

	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeSendFailure))
}
