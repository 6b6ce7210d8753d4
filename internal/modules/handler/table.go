package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridspace-io/gridspace/internal/modules/serializer"
	"github.com/gridspace-io/gridspace/internal/modules/service"
)

type TableHandler struct {
	svc service.TableService
}

func NewTableHandler(s service.TableService) *TableHandler {
	return &TableHandler{svc: s}
}

type ColumnReq struct {
	Name string `json:"name" example:"email"`
	Type string `json:"type" example:"text" enums:"text,number,date,boolean"`
}

// Columns are validated by the service so that every bad entry is reported at once.
type CreateTableReq struct {
	Name        string      `json:"name" example:"Contacts"`
	Description *string     `json:"description"`
	Columns     []ColumnReq `json:"columns"`
}

func (r ColumnReq) input() service.ColumnInput {
	return service.ColumnInput{Name: r.Name, Type: r.Type}
}

// CreateTable godoc
//
//	@Summary		Create table
//	@Description	Create a table with its initial columns in the given order
//	@Tags			table
//	@Accept			json
//	@Produce		json
//	@Param			workspace_id	path	string					true	"Workspace ID"	Format(uuid)
//	@Param			payload			body	handler.CreateTableReq	true	"CreateTable payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Table}
//	@Failure		400	{object}	serializer.Response
//	@Failure		402	{object}	serializer.Response
//	@Failure		403	{object}	serializer.Response
//	@Router			/workspaces/{workspace_id}/tables [post]
func (h *TableHandler) CreateTable(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	workspaceID, ok := scopeID(c, "workspace_id")
	if !ok {
		return
	}
	req := CreateTableReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}

	in := service.CreateTableInput{Name: req.Name, Description: req.Description}
	for _, col := range req.Columns {
		in.Columns = append(in.Columns, col.input())
	}
	t, err := h.svc.Create(c.Request.Context(), p.UserID, workspaceID, in)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: t})
}

// ListTables godoc
//
//	@Summary		List tables
//	@Description	List the tables of a workspace with their row counts
//	@Tags			table
//	@Produce		json
//	@Param			workspace_id	path	string	true	"Workspace ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=[]model.Table}
//	@Router			/workspaces/{workspace_id}/tables [get]
func (h *TableHandler) ListTables(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	workspaceID, ok := scopeID(c, "workspace_id")
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), p.UserID, workspaceID)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: list})
}

// GetTable godoc
//
//	@Summary		Get table
//	@Description	Get a table with its columns ordered by position
//	@Tags			table
//	@Produce		json
//	@Param			table_id	path	string	true	"Table ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.Table}
//	@Router			/tables/{table_id} [get]
func (h *TableHandler) GetTable(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := scopeID(c, "table_id")
	if !ok {
		return
	}
	t, err := h.svc.Get(c.Request.Context(), p.UserID, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: t})
}

// DeleteTable godoc
//
//	@Summary		Delete table
//	@Description	Delete a table with its columns, rows and cells
//	@Tags			table
//	@Produce		json
//	@Param			table_id	path	string	true	"Table ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Router			/tables/{table_id} [delete]
func (h *TableHandler) DeleteTable(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	id, ok := scopeID(c, "table_id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), p.UserID, id); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}

// AddColumn godoc
//
//	@Summary		Add column
//	@Description	Append a column after the existing ones. Existing rows get no cell for it.
//	@Tags			table
//	@Accept			json
//	@Produce		json
//	@Param			table_id	path	string				true	"Table ID"	Format(uuid)
//	@Param			payload		body	handler.ColumnReq	true	"AddColumn payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.Column}
//	@Failure		400	{object}	serializer.Response
//	@Router			/tables/{table_id}/columns [post]
func (h *TableHandler) AddColumn(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	tableID, ok := scopeID(c, "table_id")
	if !ok {
		return
	}
	req := ColumnReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}
	col, err := h.svc.AddColumn(c.Request.Context(), p.UserID, tableID, req.input())
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: col})
}

// DeleteColumn godoc
//
//	@Summary		Delete column
//	@Description	Delete a column and its cells
//	@Tags			table
//	@Produce		json
//	@Param			table_id	path	string	true	"Table ID"	Format(uuid)
//	@Param			column_id	path	string	true	"Column ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{}
//	@Failure		404	{object}	serializer.Response
//	@Router			/tables/{table_id}/columns/{column_id} [delete]
func (h *TableHandler) DeleteColumn(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	tableID, ok := scopeID(c, "table_id")
	if !ok {
		return
	}
	columnID := childID(c, "column_id")
	if err := h.svc.DeleteColumn(c.Request.Context(), p.UserID, tableID, columnID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{})
}
