package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"prompt-server/internal/handler"
	"prompt-server/internal/interfaces/mocks"
	"prompt-server/internal/models"
	"prompt-server/internal/service"
	"prompt-server/internal/store"
)

func setupRouter(t *testing.T, catalog *mocks.PromptCatalog) (*gin.Engine, *service.RotationService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	promptStore := store.NewPromptStore(store.NewMemoryKeyValueStore(), zap.NewNop())
	rotator := service.NewRotationService(catalog, promptStore, nil, service.RotationConfig{}, zap.NewNop())
	rotator.SetPicker(func(n int) int { return 0 })

	router := gin.New()
	h := handler.NewPromptHandler(rotator, catalog, zap.NewNop())
	h.RegisterRoutes(router)
	return router, rotator
}

func performRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetCurrentPromptEndpoint(t *testing.T) {
	prompt := models.Prompt{ID: uuid.New(), Text: "What did you learn today?", Active: true, CreatedAt: time.Now().UTC()}

	t.Run("rotates on first call, serves cache on second", func(t *testing.T) {
		catalog := new(mocks.PromptCatalog)
		catalog.On("ListUnused", mock.Anything, mock.Anything, service.DefaultMaxCandidates).
			Return([]models.Prompt{prompt}, nil).Once()

		router, _ := setupRouter(t, catalog)

		w := performRequest(router, http.MethodGet, "/api/devices/device-1/prompts/current", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var first models.CurrentPrompt
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
		assert.Equal(t, prompt.ID, first.Prompt.ID)
		assert.True(t, first.IsNewPrompt)

		w = performRequest(router, http.MethodGet, "/api/devices/device-1/prompts/current", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var second models.CurrentPrompt
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
		assert.Equal(t, prompt.ID, second.Prompt.ID)
		assert.False(t, second.IsNewPrompt)

		catalog.AssertExpectations(t)
	})

	t.Run("exhausted catalog returns 409", func(t *testing.T) {
		catalog := new(mocks.PromptCatalog)
		catalog.On("ListUnused", mock.Anything, mock.Anything, mock.Anything).
			Return([]models.Prompt{}, nil).Once()

		router, _ := setupRouter(t, catalog)

		w := performRequest(router, http.MethodGet, "/api/devices/device-1/prompts/current", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "error")
	})

	t.Run("overlong device id returns 400", func(t *testing.T) {
		catalog := new(mocks.PromptCatalog)
		router, _ := setupRouter(t, catalog)

		w := performRequest(router, http.MethodGet, "/api/devices/"+strings.Repeat("x", 129)+"/prompts/current", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		catalog.AssertNotCalled(t, "ListUnused", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRotatePromptEndpoint(t *testing.T) {
	promptA := models.Prompt{ID: uuid.New(), Text: "A", Active: true}
	promptB := models.Prompt{ID: uuid.New(), Text: "B", Active: true}

	catalog := new(mocks.PromptCatalog)
	catalog.On("ListUnused", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Prompt{promptA, promptB}, nil).Once()
	catalog.On("ListUnused", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Prompt{promptB}, nil).Once()

	router, _ := setupRouter(t, catalog)

	w := performRequest(router, http.MethodPost, "/api/devices/device-1/prompts/rotate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var first models.CurrentPrompt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.Equal(t, promptA.ID, first.Prompt.ID)

	// The forced rotation bypasses the still-valid cached record.
	w = performRequest(router, http.MethodPost, "/api/devices/device-1/prompts/rotate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var second models.CurrentPrompt
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, promptB.ID, second.Prompt.ID)
	assert.True(t, second.IsNewPrompt)

	catalog.AssertExpectations(t)
}

func TestGetLatenessEndpoint(t *testing.T) {
	t.Run("no active prompt returns 404", func(t *testing.T) {
		catalog := new(mocks.PromptCatalog)
		router, _ := setupRouter(t, catalog)

		w := performRequest(router, http.MethodGet, "/api/devices/device-1/prompts/lateness", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("reports lateness against the active prompt", func(t *testing.T) {
		prompt := models.Prompt{ID: uuid.New(), Text: "measured", Active: true}
		catalog := new(mocks.PromptCatalog)
		catalog.On("ListUnused", mock.Anything, mock.Anything, mock.Anything).
			Return([]models.Prompt{prompt}, nil).Once()

		router, rotator := setupRouter(t, catalog)

		selectedAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
		rotator.SetClock(func() time.Time { return selectedAt })

		w := performRequest(router, http.MethodPost, "/api/devices/device-1/prompts/rotate", nil)
		require.Equal(t, http.StatusOK, w.Code)

		rotator.SetClock(func() time.Time { return selectedAt.Add(20 * time.Minute) })
		w = performRequest(router, http.MethodGet, "/api/devices/device-1/prompts/lateness", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var lateness models.Lateness
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &lateness))
		assert.False(t, lateness.OnTime)
		assert.Equal(t, "00:05:00", lateness.LateBy)
	})
}

func TestCreatePromptEndpoint(t *testing.T) {
	t.Run("creates prompt", func(t *testing.T) {
		catalog := new(mocks.PromptCatalog)
		catalog.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Prompt) bool {
			return p.Text == "What would you redo?"
		})).Run(func(args mock.Arguments) {
			p := args.Get(1).(*models.Prompt)
			p.ID = uuid.New()
			p.Active = true
		}).Return(nil).Once()

		router, _ := setupRouter(t, catalog)

		body, _ := json.Marshal(map[string]string{"text": "What would you redo?"})
		w := performRequest(router, http.MethodPost, "/api/prompts", body)
		require.Equal(t, http.StatusCreated, w.Code)

		var created models.Prompt
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotEqual(t, uuid.Nil, created.ID)
		catalog.AssertExpectations(t)
	})

	t.Run("missing text returns 400", func(t *testing.T) {
		catalog := new(mocks.PromptCatalog)
		router, _ := setupRouter(t, catalog)

		w := performRequest(router, http.MethodPost, "/api/prompts", []byte(`{}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		catalog.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestListPromptsEndpoint(t *testing.T) {
	t.Run("unexpected catalog error returns 500", func(t *testing.T) {
		catalog := new(mocks.PromptCatalog)
		catalog.On("List", mock.Anything).Return(nil, errors.New("connection reset")).Once()

		router, _ := setupRouter(t, catalog)

		w := performRequest(router, http.MethodGet, "/api/prompts", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp models.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, models.ErrInternalServer.Error(), resp.Error)
	})
}

func TestDeactivatePromptEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		id := uuid.New()
		catalog := new(mocks.PromptCatalog)
		catalog.On("Deactivate", mock.Anything, id).Return(nil).Once()

		router, _ := setupRouter(t, catalog)

		w := performRequest(router, http.MethodPost, "/api/prompts/"+id.String()+"/deactivate", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		catalog.AssertExpectations(t)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		id := uuid.New()
		catalog := new(mocks.PromptCatalog)
		catalog.On("Deactivate", mock.Anything, id).Return(models.ErrPromptNotFound).Once()

		router, _ := setupRouter(t, catalog)

		w := performRequest(router, http.MethodPost, "/api/prompts/"+id.String()+"/deactivate", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		catalog := new(mocks.PromptCatalog)
		router, _ := setupRouter(t, catalog)

		w := performRequest(router, http.MethodPost, "/api/prompts/not-a-uuid/deactivate", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		catalog.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
	})
}
