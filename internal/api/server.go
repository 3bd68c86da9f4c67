package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhate/leaderflow/internal/agenda"
	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/notify"
	"github.com/tazhate/leaderflow/internal/service"
)

// Session is what the handlers need from the running session.
type Session interface {
	User() domain.User
	Upcoming(now time.Time) []agenda.Item
	HasImminent(now time.Time) bool
	Today(now time.Time) agenda.Summary
	Settings() domain.NotificationSettings
	UpdateSettings(domain.NotificationSettings) error
	UpsertTask(domain.Task) (domain.Task, error)
	ToggleTask(id string) error
	UpsertEvent(domain.Event) (domain.Event, error)
	UpsertDocument(domain.Document) (domain.Document, error)
	SetDocumentStatus(id string, status domain.DocumentStatus) error
	ImportCalendar(ctx context.Context, days int) (service.SyncResult, error)
	ExportEvent(ctx context.Context, id string) error
	RequestPermission(ctx context.Context) (notify.Permission, error)
}

type Users interface {
	Authenticate(username, password string) (*domain.User, error)
	List(actor *domain.User) ([]domain.User, error)
	Create(actor *domain.User, username, fullName, password string, role domain.UserRole) (*domain.User, error)
	Update(actor *domain.User, id, fullName, password string, role domain.UserRole) (*domain.User, error)
	Delete(actor *domain.User, id string) error
}

type Handler struct {
	session Session
	users   Users
	now     func() time.Time
}

func NewHandler(session Session, users Users, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{session: session, users: users, now: now}
}

// NewRouter builds the engine with logging, recovery and all routes.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), GinZapMiddleware(logger))
	RegisterRoutes(r, h)
	return r
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.Use(BasicAuth(h.users, h.session.User().ID))
	{
		api.GET("/upcoming", h.Upcoming)
		api.GET("/summary", h.Summary)
		api.POST("/tasks", h.UpsertTask)
		api.POST("/tasks/:id/toggle", h.ToggleTask)
		api.POST("/events", h.UpsertEvent)
		api.POST("/events/:id/export", h.ExportEvent)
		api.POST("/calendar/import", h.ImportCalendar)
		api.POST("/documents", h.UpsertDocument)
		api.PUT("/documents/:id/status", h.SetDocumentStatus)
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)
		api.POST("/notifications/permission", h.RequestPermission)

		users := api.Group("/users", AdminOnly())
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   h.now().Format("2006-01-02 15:04:05"),
	})
}

func (h *Handler) Upcoming(c *gin.Context) {
	now := h.now()
	items := h.session.Upcoming(now)
	window := h.session.Settings().ReminderWindow()
	c.JSON(http.StatusOK, UpcomingResponse{
		Items:    toUpcomingItems(items, now, window),
		Imminent: agenda.HasImminent(items, now, window),
	})
}

func (h *Handler) Summary(c *gin.Context) {
	s := h.session.Today(h.now())
	resp := SummaryResponse{Events: s.Events, UrgentTasks: s.UrgentTasks}
	if resp.Events == nil {
		resp.Events = []domain.Event{}
	}
	if resp.UrgentTasks == nil {
		resp.UrgentTasks = []domain.Task{}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpsertTask(c *gin.Context) {
	var t domain.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	saved, err := h.session.UpsertTask(t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) ToggleTask(c *gin.Context) {
	if err := h.session.ToggleTask(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) UpsertEvent(c *gin.Context) {
	var e domain.Event
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	saved, err := h.session.UpsertEvent(e)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) ExportEvent(c *gin.Context) {
	if err := h.session.ExportEvent(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ImportCalendar(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 || days > 90 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "days must be between 1 and 90"})
		return
	}
	result, err := h.session.ImportCalendar(c.Request.Context(), days)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"added":   result.Added,
		"updated": result.Updated,
		"deleted": result.Deleted,
	})
}

func (h *Handler) UpsertDocument(c *gin.Context) {
	var d domain.Document
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	saved, err := h.session.UpsertDocument(d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) SetDocumentStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	if err := h.session.SetDocumentStatus(c.Param("id"), req.Status); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Settings())
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var s domain.NotificationSettings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	if err := h.session.UpdateSettings(s); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.session.Settings())
}

func (h *Handler) RequestPermission(c *gin.Context) {
	p, err := h.session.RequestPermission(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"permission": p})
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List(currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]UserItem, 0, len(users))
	for _, u := range users {
		out = append(out, toUserItem(u))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	u, err := h.users.Create(currentUser(c), req.Username, req.FullName, req.Password, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toUserItem(*u))
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err))
		return
	}
	u, err := h.users.Update(currentUser(c), c.Param("id"), req.FullName, req.Password, req.Role)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserItem(*u))
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(currentUser(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrUserExists), errors.Is(err, domain.ErrProtectedUser):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidSettings),
		errors.Is(err, domain.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidUser):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(status, errorBody(err))
}
