package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"student-records/internal/domain"
)

// bindJSON decodes the request body into dst and aborts with 400 when the
// body is malformed or fails its binding rules.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		abortValidation(c, validationFields(verrs))
		return false
	}
	abortWithStatus(c, http.StatusBadRequest, "Malformed request body")
	return false
}

func validationFields(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := jsonFieldName(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = fe.Field() + " is required"
		case "max":
			fields[name] = fe.Field() + " must be at most " + fe.Param() + " characters"
		default:
			fields[name] = fe.Field() + " is invalid"
		}
	}
	return fields
}

func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// pageRequest reads page, size, sortBy and sortDirection from the query
// string. Bounds are checked by the service.
func pageRequest(c *gin.Context) (domain.PageRequest, bool) {
	req := domain.DefaultPageRequest()
	fields := map[string]string{}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields["page"] = "Page must be an integer"
		}
		req.Page = n
	}
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields["size"] = "Size must be an integer"
		}
		req.Size = n
	}

	key, err := domain.ParseSortKey(c.Query("sortBy"))
	if err != nil {
		fields["sortBy"] = "Unsupported sort field: " + c.Query("sortBy")
	}
	req.SortBy = key
	req.Direction = domain.ParseSortDirection(c.Query("sortDirection"))

	if len(fields) > 0 {
		abortValidation(c, fields)
		return req, false
	}
	return req, true
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithStatus(c, http.StatusBadRequest, "invalid student id")
		return 0, false
	}
	return id, true
}
