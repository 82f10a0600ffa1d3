package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"student-records/internal/domain"
	"student-records/internal/storage"
)

type studentRequest struct {
	Username string `json:"username" binding:"required,max=191"`
	Level    string `json:"level" binding:"required"`
}

func (r studentRequest) level() domain.Level {
	return domain.Level(strings.ToUpper(strings.TrimSpace(r.Level)))
}

type StudentResponse struct {
	ID       int64        `json:"id"`
	Username string       `json:"username"`
	Level    domain.Level `json:"level"`
}

// PageResponse mirrors the paging envelope the frontend consumes.
type PageResponse[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Size             int   `json:"size"`
	Number           int   `json:"number"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

type ExportResponse struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"last_modified,omitempty"`
}

func (h *Handler) listStudents(c *gin.Context) {
	req, ok := pageRequest(c)
	if !ok {
		return
	}

	page, err := h.students.List(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page))
}

func (h *Handler) searchStudents(c *gin.Context) {
	req, ok := pageRequest(c)
	if !ok {
		return
	}

	page, err := h.students.Search(c.Request.Context(), c.Query("query"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page))
}

func (h *Handler) listStudentsByLevel(c *gin.Context) {
	level, err := domain.ParseLevel(c.Param("level"))
	if err != nil {
		abortValidation(c, map[string]string{"level": "Invalid level: " + c.Param("level")})
		return
	}
	req, ok := pageRequest(c)
	if !ok {
		return
	}

	page, err := h.students.ListByLevel(c.Request.Context(), level, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageToResponse(page))
}

func (h *Handler) getStudent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	student, err := h.students.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, studentToResponse(*student))
}

func (h *Handler) createStudent(c *gin.Context) {
	var req studentRequest
	if !bindJSON(c, &req) {
		return
	}

	student, err := h.students.Create(c.Request.Context(), req.Username, req.level())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, studentToResponse(*student))
}

func (h *Handler) updateStudent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req studentRequest
	if !bindJSON(c, &req) {
		return
	}

	student, err := h.students.Update(c.Request.Context(), id, req.Username, req.level())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, studentToResponse(*student))
}

func (h *Handler) deleteStudent(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.students.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) exportStudents(c *gin.Context) {
	result, err := h.exports.Export(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ExportResponse{Location: result.Location, Count: result.Count})
}

func (h *Handler) listExports(c *gin.Context) {
	objects, err := h.exports.ListExports(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func studentToResponse(s domain.Student) StudentResponse {
	return StudentResponse{ID: s.ID, Username: s.Username, Level: s.Level}
}

func pageToResponse(p domain.Page[domain.Student]) PageResponse[StudentResponse] {
	items := domain.Map(p, studentToResponse).Items
	return PageResponse[StudentResponse]{
		Content:          items,
		TotalElements:    p.Total,
		TotalPages:       p.TotalPages(),
		Size:             p.Size,
		Number:           p.Page,
		NumberOfElements: len(items),
		First:            p.First(),
		Last:             p.Last(),
		Empty:            len(items) == 0,
	}
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
