package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridspace-io/gridspace/internal/modules/serializer"
	"github.com/gridspace-io/gridspace/internal/modules/service"
)

type RowHandler struct {
	svc service.RowService
}

func NewRowHandler(s service.RowService) *RowHandler {
	return &RowHandler{svc: s}
}

type ListRowsReq struct {
	Page  int `form:"page,default=1" json:"page" binding:"min=0" example:"1"`
	Limit int `form:"limit" json:"limit" binding:"min=0" example:"50"`
}

// Cells maps column names to values. An empty string clears the cell.
type RowCellsReq struct {
	Cells map[string]string `json:"cells" binding:"required"`
}

// ListRows godoc
//
//	@Summary		List rows
//	@Description	List rows in position order as flat objects keyed by column name
//	@Tags			row
//	@Produce		json
//	@Param			table_id	path	string	true	"Table ID"	Format(uuid)
//	@Param			page		query	integer	false	"Page number, starting at 1"
//	@Param			limit		query	integer	false	"Page size"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=service.RowPage}
//	@Router			/tables/{table_id}/rows [get]
func (h *RowHandler) ListRows(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	tableID, ok := scopeID(c, "table_id")
	if !ok {
		return
	}
	req := ListRowsReq{}
	if err := c.ShouldBindQuery(&req); err != nil {
		bindErr(c, err)
		return
	}

	out, err := h.svc.List(c.Request.Context(), p.UserID, tableID, req.Page, req.Limit)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: out})
}

// CreateRow godoc
//
//	@Summary		Create row
//	@Description	Append a row after the existing ones
//	@Tags			row
//	@Accept			json
//	@Produce		json
//	@Param			table_id	path	string				true	"Table ID"	Format(uuid)
//	@Param			payload		body	handler.RowCellsReq	true	"CreateRow payload"
//	@Security		BearerAuth
//	@Success		201	{object}	serializer.Response{data=model.FlatRow}
//	@Failure		400	{object}	serializer.Response
//	@Failure		402	{object}	serializer.Response
//	@Router			/tables/{table_id}/rows [post]
func (h *RowHandler) CreateRow(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	tableID, ok := scopeID(c, "table_id")
	if !ok {
		return
	}
	req := RowCellsReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}

	row, err := h.svc.Create(c.Request.Context(), p.UserID, tableID, req.Cells)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, serializer.Response{Data: row})
}

// UpdateRow godoc
//
//	@Summary		Update row
//	@Description	Set the given cells of a row. Unknown column names are ignored.
//	@Tags			row
//	@Accept			json
//	@Produce		json
//	@Param			table_id	path	string				true	"Table ID"	Format(uuid)
//	@Param			row_id		path	string				true	"Row ID"	Format(uuid)
//	@Param			payload		body	handler.RowCellsReq	true	"UpdateRow payload"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=model.FlatRow}
//	@Failure		404	{object}	serializer.Response
//	@Router			/tables/{table_id}/rows/{row_id} [put]
func (h *RowHandler) UpdateRow(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	tableID, ok := scopeID(c, "table_id")
	if !ok {
		return
	}
	rowID := childID(c, "row_id")
	req := RowCellsReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		bindErr(c, err)
		return
	}

	row, err := h.svc.Update(c.Request.Context(), p.UserID, tableID, rowID, req.Cells)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: row})
}

// DeleteRow godoc
//
//	@Summary		Delete row
//	@Description	Delete a row and its cells
//	@Tags			row
//	@Produce		json
//	@Param			table_id	path	string	true	"Table ID"	Format(uuid)
//	@Param			row_id		path	string	true	"Row ID"	Format(uuid)
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=map[string]bool}
//	@Failure		404	{object}	serializer.Response
//	@Router			/tables/{table_id}/rows/{row_id} [delete]
func (h *RowHandler) DeleteRow(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	tableID, ok := scopeID(c, "table_id")
	if !ok {
		return
	}
	rowID := childID(c, "row_id")
	if err := h.svc.Delete(c.Request.Context(), p.UserID, tableID, rowID); err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: gin.H{"success": true}})
}
