package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BooksController serves the canonical book store for browsing.
type BooksController struct {
	store BookStore
}

func NewBooksController(store BookStore) *BooksController {
	return &BooksController{store: store}
}

// ListBooks returns a paginated slice of the canonical store.
func (controller *BooksController) ListBooks(c *gin.Context) {
	limit, offset := parsePagination(c)

	books, total, err := controller.store.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.IndentedJSON(http.StatusOK, PaginatedResponse{
		Data:    books,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(books)) < total,
	})
}

// GetBook returns a single canonical book.
func (controller *BooksController) GetBook(c *gin.Context) {
	book, err := controller.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}
	c.IndentedJSON(http.StatusOK, book)
}

// SearchBooks runs a substring search over the canonical store. This is the
// local complement to the catalog's semantic search, useful when the
// discovery backend is down.
func (controller *BooksController) SearchBooks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		respondBadRequest(c, "q query parameter is required")
		return
	}

	books, err := controller.store.Search(c.Request.Context(), query)
	if err != nil {
		respondInternalError(c, err, "search books")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"books": books, "count": len(books)})
}
