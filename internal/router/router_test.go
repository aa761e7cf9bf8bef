// internal/router/router_test.go
package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/promptbazaar/promptbazaar-backend/internal/cache"
	"github.com/promptbazaar/promptbazaar-backend/internal/config"
	"github.com/promptbazaar/promptbazaar-backend/internal/database"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))

	cfg := &config.Config{
		JWT: config.JWTConfig{
			SecretKey:  "test-secret",
			SessionTTL: 1,
			Issuer:     "test",
		},
		Ledger: config.LedgerConfig{
			MinPromptPrice: 1,
			MaxPromptPrice: 10000,
			MinTipAmount:   1,
			LeaderboardTTL: 60,
		},
	}

	return Initialize(db, cache.NewDisabled(), cfg)
}

// doRequest issues a request with a fixed client address so each test gets
// its own rate limit bucket.
func doRequest(r *gin.Engine, method, path, token, clientAddr string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = clientAddr + ":12345"
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.True(t, env.Success, "response body: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func connect(t *testing.T, r *gin.Engine, address, clientAddr string) string {
	t.Helper()

	w := doRequest(r, http.MethodPost, "/v1/auth/connect", "", clientAddr,
		gin.H{"address": address})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestHealthEndpoint(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodGet, "/health", "", "192.0.2.1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPurchaseFlow(t *testing.T) {
	r := setupRouter(t)
	client := "192.0.2.2"

	creatorAddr := fmt.Sprintf("0x%040x", 1)
	buyerAddr := fmt.Sprintf("0x%040x", 2)
	creatorToken := connect(t, r, creatorAddr, client)
	buyerToken := connect(t, r, buyerAddr, client)

	// Creator publishes a prompt.
	w := doRequest(r, http.MethodPost, "/v1/prompts", creatorToken, client, gin.H{
		"title":       "Incident Postmortem Writer",
		"description": "Drafts a postmortem from a timeline",
		"content":     "You are an SRE writing a postmortem...",
		"preview":     "You are an SRE...",
		"category":    "Programming",
		"type":        "claude",
		"price":       100,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	decodeData(t, w, &created)

	// Anonymous viewers get the preview but never the content.
	w = doRequest(r, http.MethodGet, "/v1/prompts/"+created.ID, "", client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var anonView map[string]json.RawMessage
	decodeData(t, w, &anonView)
	assert.Contains(t, anonView, "preview")
	assert.NotContains(t, anonView, "content")

	// Buyer settles on the external ledger and reports the hash.
	hash := fmt.Sprintf("0x%064x", 7)
	w = doRequest(r, http.MethodPost, "/v1/prompts/"+created.ID+"/purchase", buyerToken, client,
		gin.H{"tx_hash": hash})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Replaying the same hash succeeds without a second charge.
	w = doRequest(r, http.MethodPost, "/v1/prompts/"+created.ID+"/purchase", buyerToken, client,
		gin.H{"tx_hash": hash})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// A rotated hash for an owned prompt is rejected.
	w = doRequest(r, http.MethodPost, "/v1/prompts/"+created.ID+"/purchase", buyerToken, client,
		gin.H{"tx_hash": fmt.Sprintf("0x%064x", 8)})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// The buyer now sees the gated fields.
	w = doRequest(r, http.MethodGet, "/v1/prompts/"+created.ID, buyerToken, client, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var buyerView map[string]json.RawMessage
	decodeData(t, w, &buyerView)
	assert.Contains(t, buyerView, "content")
}

func TestPurchaseRequiresAuth(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/v1/prompts/00000000-0000-0000-0000-000000000000/purchase",
		"", "192.0.2.3", gin.H{"tx_hash": fmt.Sprintf("0x%064x", 1)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
