package ws

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stellanjoh2/gridzone-sub000/internal/game"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	game.Manager = game.NewGameManager(nil, nil, nil)
	r := gin.New()
	r.GET("/api/v1/session/:token/ws", HandleWebSocket)
	return r
}

func TestWebSocketReadsTokenFromPath(t *testing.T) {
	r := newTestRouter()

	// The path token alone must reach the session lookup: an unknown
	// token is a 404, not a 400 for a missing token.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/unknown-token/ws?pt=abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Path token should be accepted and looked up: code=%d body=%s", w.Code, w.Body.String())
	}
}

func TestWebSocketRequiresPlayerToken(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/unknown-token/ws", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Missing pt should be a 400, got %d", w.Code)
	}
}
