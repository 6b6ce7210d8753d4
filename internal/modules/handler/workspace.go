package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridspace-io/gridspace/internal/modules/serializer"
	"github.com/gridspace-io/gridspace/internal/modules/service"
)

type WorkspaceHandler struct {
	svc service.WorkspaceService
}

func NewWorkspaceHandler(s service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{svc: s}
}

type CreateWorkspaceReq struct {
	Name        string  `json:"name" binding:"required" example:"Sales"`
	Description *string `json:"description" example:"Q3 pipeline"`
}

// CreateWorkspace godoc
//
//	@Summary		Create workspace
//	@Description	Create a workspace owned by the caller, who becomes its first member
//	@Tags			workspace
//	@Accept			json
//	@Produce		json
//	@Param			payload	body	handler.CreateWorkspaceReq	true	"CreateWorkspace payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Workspace}
//	@Failure		400	{object}	serializer.Response
//	@Failure		402	{object}	serializer.Response
//	@Router			/workspaces [post]
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	req := CreateWorkspaceReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}

	ws, err := h.svc.Create(c.Request.Context(), p.UserID, service.CreateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeErr(c, err)
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{Data: ws})
}

// ListWorkspaces godoc
//
//	@Summary		List workspaces
//	@Description	List the workspaces the caller is a member of, newest first
//	@Tags			workspace
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Workspace}
//	@Router			/workspaces [get]
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), p.UserID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: list})
}

// GetWorkspace godoc
//
//	@Summary		Get workspace
//	@Description	Get a workspace with its members
//	@Tags			workspace
//	@Produce		json
//	@Param			workspace_id	path	string	true	"Workspace ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Workspace}
//	@Failure		403	{object}	serializer.Response
//	@Router			/workspaces/{workspace_id} [get]
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := scopeID(c, "workspace_id")
	if !ok {
		return
	}
	ws, err := h.svc.Get(c.Request.Context(), p.UserID, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: ws})
}

// DeleteWorkspace godoc
//
//	@Summary		Delete workspace
//	@Description	Delete a workspace and all of its tables. Only the owner may delete it.
//	@Tags			workspace
//	@Produce		json
//	@Param			workspace_id	path	string	true	"Workspace ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Failure		403	{object}	serializer.Response
//	@Router			/workspaces/{workspace_id} [delete]
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := scopeID(c, "workspace_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p.UserID, id); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
