package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wasomaji/kitabu/internal/catalog"
)

type fakeCatalog struct {
	books  []catalog.BookRef
	themes []string
	err    error
}

func (f *fakeCatalog) AllBooks(_ context.Context) ([]catalog.BookRef, error) {
	return f.books, f.err
}

func (f *fakeCatalog) Search(_ context.Context, _ string) ([]catalog.BookRef, error) {
	return f.books, f.err
}

func (f *fakeCatalog) Recommendations(_ context.Context, _ string, _ int) ([]catalog.BookRef, error) {
	return f.books, f.err
}

func (f *fakeCatalog) Themes(_ context.Context) ([]string, error) {
	return f.themes, f.err
}

func catalogRouter(client CatalogClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewCatalogController(client)
	router := gin.New()
	router.GET("/api/catalog/books", controller.Browse)
	router.GET("/api/catalog/search", controller.Search)
	router.GET("/api/catalog/recommendations", controller.Recommendations)
	router.GET("/api/catalog/themes", controller.Themes)
	return router
}

func TestCatalogController_Search(t *testing.T) {
	t.Run("returns catalog matches", func(t *testing.T) {
		router := catalogRouter(&fakeCatalog{books: []catalog.BookRef{
			{LegacyID: "42", Title: "Dune", Author: "Frank Herbert"},
		}})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/catalog/search?q=desert+planet", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, float64(1), response["count"])
	})

	t.Run("missing query is a bad request", func(t *testing.T) {
		router := catalogRouter(&fakeCatalog{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/catalog/search", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("collaborator failure is a bad gateway", func(t *testing.T) {
		router := catalogRouter(&fakeCatalog{err: errors.New("connection refused")})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/catalog/search?q=dune", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "catalog unavailable")
	})
}

func TestCatalogController_Recommendations(t *testing.T) {
	t.Run("requires book_id", func(t *testing.T) {
		router := catalogRouter(&fakeCatalog{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/catalog/recommendations", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a malformed limit", func(t *testing.T) {
		router := catalogRouter(&fakeCatalog{})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/catalog/recommendations?book_id=42&limit=lots", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns recommendations", func(t *testing.T) {
		router := catalogRouter(&fakeCatalog{books: []catalog.BookRef{
			{LegacyID: "7", Title: "Hyperion"},
		}})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/catalog/recommendations?book_id=42&limit=5", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCatalogController_Themes(t *testing.T) {
	router := catalogRouter(&fakeCatalog{themes: []string{"desert", "politics"}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/catalog/themes", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response["themes"], 2)
}
