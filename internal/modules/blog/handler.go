package blog

import (
	"errors"
	"strconv"

	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const notFoundMsg = "Blog post not found"

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts /blogs. guard runs in front of the public like endpoint.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, guard ...gin.HandlerFunc) {
	g := rg.Group("/blogs")
	g.GET("", h.list)
	g.GET("/tags", h.tags)
	g.GET("/slug/:slug", h.getBySlug)
	g.GET("/:id", h.get)
	g.GET("/:id/related", h.related)
	g.POST("/:id/like", middleware.Guarded(h.like, guard...)...)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

// RegisterLegacyRoutes keeps the unversioned related-posts path working.
func (h *Handler) RegisterLegacyRoutes(rg *gin.RouterGroup) {
	rg.GET("/blogs/:id/related", h.related)
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		Published: pagination.ParseBool(c.Query("published")),
		Featured:  pagination.ParseBool(c.Query("featured")),
		Tag:       c.Query("tag"),
		Author:    c.Query("author"),
		Search:    c.Query("search"),
	}
	items, meta, err := h.svc.List(pagination.FromContext(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, meta)
}

func (h *Handler) tags(c *gin.Context) {
	out, err := h.svc.Tags()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	h.view(c, "id", c.Param("id"))
}

func (h *Handler) getBySlug(c *gin.Context) {
	h.view(c, "slug", c.Param("slug"))
}

func (h *Handler) view(c *gin.Context, column, value string) {
	b, err := h.svc.View(column, value)
	if err != nil {
		response.Error(c, err)
		return
	}
	if b == nil {
		response.NotFound(c, notFoundMsg)
		return
	}
	response.OK(c, b)
}

func (h *Handler) related(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.svc.Related(c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if items == nil {
		response.NotFound(c, notFoundMsg)
		return
	}
	response.OK(c, items)
}

func (h *Handler) like(c *gin.Context) {
	b, err := h.svc.Like(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if b == nil {
		response.NotFound(c, notFoundMsg)
		return
	}
	response.OKMsg(c, gin.H{"id": b.ID, "likes": b.Likes}, "Thanks for the like")
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateBlogDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	b, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, b, "Blog post created successfully")
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateBlogDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	b, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if b == nil {
		response.NotFound(c, notFoundMsg)
		return
	}
	response.OKMsg(c, b, "Blog post updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, notFoundMsg)
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Blog post deleted successfully")
}
