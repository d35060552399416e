package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"cancerdetect/ml"
	"cancerdetect/testhelpers"
)

func dialPredict(t *testing.T, handler http.Handler, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/predict"
	return websocket.DefaultDialer.Dial(url, header)
}

func TestWebSocketPredict(t *testing.T) {
	_, handler := newTestServer(t)
	conn, _, err := dialPredict(t, handler, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	require.NoError(t, conn.WriteJSON(PredictRequest{Features: testhelpers.MalignantSample}))
	var reply PredictResponse
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, ml.Malignant, reply.Label)

	require.NoError(t, conn.WriteJSON(PredictRequest{Features: make([]float64, 30)}))
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, ml.Benign, reply.Label)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"features":[1]}`)))
	var failure map[string]string
	require.NoError(t, conn.ReadJSON(&failure))
	assert.Contains(t, failure["error"], "expected 30")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`nope`)))
	failure = nil
	require.NoError(t, conn.ReadJSON(&failure))
	assert.Contains(t, failure["error"], "invalid JSON")
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	h := newTestHandlers(t)
	h.AllowedOrigins = []string{"https://clinic.example"}
	config := DefaultServerConfig()
	config.AllowedOrigins = h.AllowedOrigins
	handler := NewServer(config, h, nil).Handler()

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := dialPredict(t, handler, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebSocketLogsSessionDuration(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	h := newTestHandlers(t)
	h.Logger = zap.New(core)
	conn, _, err := dialPredict(t, NewServer(DefaultServerConfig(), h, h.Logger).Handler(), nil)
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("websocket client disconnected").Len() == 1
	}, 5*time.Second, 10*time.Millisecond)

	entry := logs.FilterMessage("websocket client disconnected").All()[0]
	session, ok := entry.ContextMap()["session"].(time.Duration)
	require.True(t, ok)
	assert.Positive(t, session)
	assert.NotEmpty(t, entry.ContextMap()["request_id"])
}
