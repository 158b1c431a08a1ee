package template

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iamprecieee/distributed-notification-system/internal/apperr"
	"github.com/iamprecieee/distributed-notification-system/internal/repository"
)

// Handler exposes the catalog and resolver over HTTP: one struct
// wrapping both services, one method per route.
type Handler struct {
	catalog  *Catalog
	resolver *Resolver
	repo     *repository.TemplateRepository
}

func NewHandler(catalog *Catalog, resolver *Resolver, repo *repository.TemplateRepository) *Handler {
	return &Handler{catalog: catalog, resolver: resolver, repo: repo}
}

type createRequest struct {
	Code      string            `json:"code" binding:"required"`
	Language  string            `json:"language" binding:"required"`
	Type      string            `json:"type" binding:"required"`
	Content   map[string]string `json:"content" binding:"required"`
	Variables []string          `json:"variables"`
}

func ok(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, gin.H{"success": true, "data": data, "message": message})
}

func writeErr(c *gin.Context, err error) {
	e := apperr.As(err)
	c.JSON(apperr.StatusCode(e.Kind), gin.H{"success": false, "error": e.Kind, "message": e.Message})
}

// Get handles GET /templates/{code}?lang=..&version=...
func (h *Handler) Get(c *gin.Context) {
	code := c.Param("code")
	language := c.DefaultQuery("lang", "en")

	var version *int
	if v := c.Query("version"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeErr(c, apperr.New(apperr.Validation, "version must be an integer"))
			return
		}
		version = &n
	}

	t, err := h.resolver.Resolve(c.Request.Context(), code, language, version)
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusOK, t, "")
}

// List handles GET /templates?page=&limit=.
func (h *Handler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}

	templates, total, err := h.repo.List(page, limit)
	if err != nil {
		writeErr(c, apperr.Wrap(apperr.Internal, "failed listing templates", err))
		return
	}
	ok(c, http.StatusOK, gin.H{"templates": templates, "total": total, "page": page, "limit": limit}, "")
}

// Create handles POST /templates.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, apperr.New(apperr.Validation, err.Error()))
		return
	}

	t, err := h.catalog.Create(c.Request.Context(), Input{
		Code:      req.Code,
		Language:  req.Language,
		Type:      req.Type,
		Content:   req.Content,
		Variables: req.Variables,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusCreated, t, "template created")
}

// Update handles PUT /templates/{code}. Language is read from the body
// since a template's (code, language) pair identifies the row family,
// and merge semantics apply per language.
func (h *Handler) Update(c *gin.Context) {
	code := c.Param("code")
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErr(c, apperr.New(apperr.Validation, err.Error()))
		return
	}
	if req.Language == "" {
		writeErr(c, apperr.New(apperr.Validation, "language is required"))
		return
	}

	t, err := h.catalog.Update(c.Request.Context(), code, req.Language, Input{
		Type:      req.Type,
		Content:   req.Content,
		Variables: req.Variables,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusOK, t, "template updated")
}

// Delete handles DELETE /templates/{code}?lang=...
func (h *Handler) Delete(c *gin.Context) {
	code := c.Param("code")
	language := c.Query("lang")
	if language == "" {
		writeErr(c, apperr.New(apperr.Validation, "lang query parameter is required"))
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), code, language); err != nil {
		writeErr(c, err)
		return
	}
	ok(c, http.StatusNoContent, nil, "template deleted")
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// Routes registers the full template-service surface on router.
func Routes(router gin.IRouter, h *Handler) {
	router.GET("/templates", h.List)
	router.GET("/templates/:code", h.Get)
	router.POST("/templates", h.Create)
	router.PUT("/templates/:code", h.Update)
	router.DELETE("/templates/:code", h.Delete)
}
