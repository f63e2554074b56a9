package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/nanban-api/internal/constants"
)

// CursorParams holds the cursor pagination parameters
type CursorParams struct {
	Cursor string
	Limit  int
}

// PageResponse represents a cursor-paginated page in API responses
type PageResponse[T any] struct {
	Page           []T    `json:"page"`
	IsDone         bool   `json:"is_done"`
	ContinueCursor string `json:"continue_cursor"`
}

// GetCursorParams extracts and validates cursor pagination parameters from the request
func GetCursorParams(c *gin.Context) CursorParams {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))
	if err != nil || limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return CursorParams{
		Cursor: c.Query("cursor"),
		Limit:  limit,
	}
}
