package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/wasomaji/kitabu/internal/auth"
	"github.com/wasomaji/kitabu/internal/catalog"
	"github.com/wasomaji/kitabu/internal/database"
	"github.com/wasomaji/kitabu/internal/database/lists"
	"github.com/wasomaji/kitabu/internal/entities"
)

// ReadingListController exposes the reconciliation controller over HTTP.
// Every call receives the request's session explicitly; there is no ambient
// user state below this point.
type ReadingListController struct {
	entries EntryController
}

func NewReadingListController(entries EntryController) *ReadingListController {
	return &ReadingListController{entries: entries}
}

type saveEntryRequest struct {
	Book   catalog.BookRef        `json:"book"`
	ListID *string                `json:"list_id"`
	Status entities.ReadingStatus `json:"status"`
}

// SaveEntry adds a catalog book to a reading list. The response is the
// optimistic entry: a provisional identifier in the Saving state, settled in
// the background.
func (controller *ReadingListController) SaveEntry(c *gin.Context) {
	var req saveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.Book.LegacyID == "" && req.Book.Title == "" {
		respondBadRequest(c, "book reference requires an id or a title")
		return
	}

	sess := auth.GetSession(c)
	entry, err := controller.entries.SaveBook(c.Request.Context(), sess, req.Book, req.ListID, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrInvalidStatus) {
			respondBadRequest(c, "unknown reading status")
			return
		}
		respondInternalError(c, err, "save entry")
		return
	}

	// Accepted, not Created: the write settles asynchronously.
	c.JSON(http.StatusAccepted, entry)
}

// ListEntries returns one of the user's lists, merged across the primary
// store, the fallback snapshot and in-flight optimistic writes.
func (controller *ReadingListController) ListEntries(c *gin.Context) {
	sess := auth.GetSession(c)
	entries, err := controller.entries.ListEntries(c.Request.Context(), sess, listIDQuery(c))
	if err != nil {
		respondInternalError(c, err, "list entries")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

type updateEntryRequest struct {
	Status entities.ReadingStatus `json:"status" binding:"required"`
}

// UpdateEntry changes an entry's reading status.
func (controller *ReadingListController) UpdateEntry(c *gin.Context) {
	var req updateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required")
		return
	}

	sess := auth.GetSession(c)
	entry, err := controller.entries.SetStatus(c.Request.Context(), sess, c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrInvalidStatus):
			respondBadRequest(c, "unknown reading status")
		case errors.Is(err, database.ErrEntryNotFound):
			respondNotFound(c, "entry")
		default:
			respondInternalError(c, err, "update entry")
		}
		return
	}
	c.JSON(http.StatusOK, entry)
}

// RemoveEntry deletes an entry from a reading list.
func (controller *ReadingListController) RemoveEntry(c *gin.Context) {
	sess := auth.GetSession(c)
	err := controller.entries.RemoveEntry(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrEntryNotFound) {
			respondNotFound(c, "entry")
			return
		}
		respondInternalError(c, err, "remove entry")
		return
	}
	respondSuccess(c, "entry removed")
}

// ListsController manages named reading-list collections. The default list
// stays virtual: it has no row here, only entries with no list id.
type ListsController struct {
	lists   ListStore
	entries EntryPurger
}

func NewListsController(store ListStore, entries EntryPurger) *ListsController {
	return &ListsController{lists: store, entries: entries}
}

type listRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// CreateList makes a new named list.
func (controller *ListsController) CreateList(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	sess := auth.GetSession(c)
	list, err := controller.lists.Create(c.Request.Context(), sess.UserID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		if errors.Is(err, lists.ErrReservedName) {
			respondBadRequest(c, "list name is reserved")
			return
		}
		respondInternalError(c, err, "create list")
		return
	}
	respondCreated(c, list)
}

// ListLists returns the user's named lists.
func (controller *ListsController) ListLists(c *gin.Context) {
	sess := auth.GetSession(c)
	owned, err := controller.lists.ListForUser(c.Request.Context(), sess.UserID)
	if err != nil {
		respondInternalError(c, err, "list lists")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"lists": owned, "count": len(owned)})
}

// GetList returns a single named list the user owns.
func (controller *ListsController) GetList(c *gin.Context) {
	list, ok := controller.ownedList(c)
	if !ok {
		return
	}
	c.IndentedJSON(http.StatusOK, list)
}

// UpdateList renames a list or changes its description/visibility.
func (controller *ListsController) UpdateList(c *gin.Context) {
	var req listRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	list, ok := controller.ownedList(c)
	if !ok {
		return
	}

	updated, err := controller.lists.Update(c.Request.Context(), list.ID, req.Name, req.Description, req.IsPublic)
	if err != nil {
		if errors.Is(err, lists.ErrReservedName) {
			respondBadRequest(c, "list name is reserved")
			return
		}
		respondInternalError(c, err, "update list")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteList removes a named list and every entry that pointed at it.
func (controller *ListsController) DeleteList(c *gin.Context) {
	list, ok := controller.ownedList(c)
	if !ok {
		return
	}

	sess := auth.GetSession(c)
	if err := controller.entries.RemoveForList(c.Request.Context(), sess.UserID, list.ID); err != nil {
		respondInternalError(c, err, "delete list entries")
		return
	}
	if err := controller.lists.Delete(c.Request.Context(), list.ID); err != nil {
		respondInternalError(c, err, "delete list")
		return
	}
	respondSuccess(c, "list deleted")
}

// ownedList loads the :id list and enforces ownership. Foreign lists read as
// absent, not forbidden.
func (controller *ListsController) ownedList(c *gin.Context) (*entities.ReadingList, bool) {
	list, err := controller.lists.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "list")
			return nil, false
		}
		respondInternalError(c, err, "get list")
		return nil, false
	}

	sess := auth.GetSession(c)
	if list.UserID != sess.UserID {
		respondNotFound(c, "list")
		return nil, false
	}
	return list, true
}
