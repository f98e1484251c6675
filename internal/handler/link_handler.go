package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lifehub/internal/dto"
	"lifehub/internal/service"
	"lifehub/pkg/response"
)

type LinkHandler struct {
	service service.LinkService
}

func NewLinkHandler(service service.LinkService) *LinkHandler {
	return &LinkHandler{service: service}
}

func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	link, err := h.service.Create(c.Request.Context(), response.Actor(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, link)
}

func (h *LinkHandler) GetAllLinks(c *gin.Context) {
	links, err := h.service.List(c.Request.Context(), response.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

func (h *LinkHandler) GetLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link id"})
		return
	}

	link, err := h.service.Get(c.Request.Context(), response.Actor(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *LinkHandler) UpdateLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link id"})
		return
	}

	var req dto.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	link, err := h.service.Update(c.Request.Context(), response.Actor(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *LinkHandler) DeleteLink(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link id"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), response.Actor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Redirect resolves a public short code and issues a 302. Private codes
// return 404 like missing ones so their existence does not leak.
func (h *LinkHandler) Redirect(c *gin.Context) {
	target, err := h.service.Resolve(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}
