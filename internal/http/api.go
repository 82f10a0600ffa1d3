package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"student-records/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	students service.StudentService
	auth     service.AuthService
	exports  service.ExportService
	log      logrus.FieldLogger
}

func NewHandler(students service.StudentService, auth service.AuthService, exports service.ExportService, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		students: students,
		auth:     auth,
		exports:  exports,
		log:      log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), h.requestLogger())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
		})

		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)

		students := api.Group("/students", h.requireAdmin())
		students.GET("", h.listStudents)
		students.POST("", h.createStudent)
		students.GET("/search", h.searchStudents)
		students.GET("/level/:level", h.listStudentsByLevel)
		students.POST("/export", h.exportStudents)
		students.GET("/exports", h.listExports)
		students.GET("/:id", h.getStudent)
		students.PUT("/:id", h.updateStudent)
		students.DELETE("/:id", h.deleteStudent)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, "+requestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type errorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type validationErrorResponse struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

type unauthorizedResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func abortWithStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Status:  status,
		Error:   http.StatusText(status),
		Message: message,
	})
}

func abortValidation(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, validationErrorResponse{
		Status: http.StatusBadRequest,
		Errors: fields,
	})
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedResponse{
		Error:   "Unauthorized",
		Message: message,
	})
}

// writeError maps service failures onto HTTP responses. Anything that is not
// a classified service error is logged and reported as a generic 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExportDisabled) {
		abortWithStatus(c, http.StatusServiceUnavailable, err.Error())
		return
	}

	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		loggerFor(c, h.log).WithError(err).Error("request failed")
		abortWithStatus(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	switch svcErr.Kind {
	case service.KindValidation:
		fields := svcErr.Fields
		if len(fields) == 0 {
			fields = map[string]string{"request": svcErr.Message}
		}
		abortValidation(c, fields)
	case service.KindUnauthorized:
		abortUnauthorized(c, svcErr.Message)
	case service.KindNotFound:
		abortWithStatus(c, http.StatusNotFound, svcErr.Message)
	case service.KindConflict:
		abortWithStatus(c, http.StatusConflict, svcErr.Message)
	default:
		loggerFor(c, h.log).WithError(err).Error("request failed")
		abortWithStatus(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
