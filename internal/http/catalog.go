package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CatalogController proxies the discovery/recommendation collaborator. The
// catalog is a request/response contract only; its identifiers never leak
// into stored state without going through the resolver.
type CatalogController struct {
	client CatalogClient
}

func NewCatalogController(client CatalogClient) *CatalogController {
	return &CatalogController{client: client}
}

// Browse returns the full catalog listing.
func (controller *CatalogController) Browse(c *gin.Context) {
	refs, err := controller.client.AllBooks(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusBadGateway, "catalog unavailable")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": refs, "count": len(refs)})
}

// Search runs a semantic search against the catalog.
func (controller *CatalogController) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	refs, err := controller.client.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, http.StatusBadGateway, "catalog unavailable")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": refs, "count": len(refs)})
}

// Recommendations returns catalog books similar to the given one.
func (controller *CatalogController) Recommendations(c *gin.Context) {
	bookID := c.Query("book_id")
	if bookID == "" {
		respondBadRequest(c, "book_id query parameter is required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = parsed
	}

	refs, err := controller.client.Recommendations(c.Request.Context(), bookID, limit)
	if err != nil {
		respondError(c, http.StatusBadGateway, "catalog unavailable")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": refs, "count": len(refs)})
}

// Themes returns the catalog's distinct theme list.
func (controller *CatalogController) Themes(c *gin.Context) {
	themes, err := controller.client.Themes(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusBadGateway, "catalog unavailable")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"themes": themes})
}
