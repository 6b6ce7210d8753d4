package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridspace-io/gridspace/internal/modules/serializer"
	"github.com/gridspace-io/gridspace/internal/modules/service"
)

// multipart framing allowance on top of the file size limit
const multipartOverhead = 64 << 10

type ImportHandler struct {
	svc      service.ImportService
	maxBytes int64
}

func NewImportHandler(s service.ImportService, maxBytes int64) *ImportHandler {
	return &ImportHandler{svc: s, maxBytes: maxBytes}
}

type ImportResp struct {
	Message      string `json:"message" example:"Import successful"`
	RowsImported int    `json:"rowsImported" example:"42"`
}

// ImportCSV godoc
//
//	@Summary		Import CSV
//	@Description	Append every record of a header-first CSV file as rows. Either all rows are imported or none.
//	@Tags			row
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			table_id	path		string	true	"Table ID"	Format(uuid)
//	@Param			file		formData	file	true	"CSV file"
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response{data=handler.ImportResp}
//	@Failure		400	{object}	serializer.Response
//	@Failure		402	{object}	serializer.Response
//	@Router			/tables/{table_id}/import [post]
func (h *ImportHandler) ImportCSV(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	tableID, ok := scopeID(c, "table_id")
	if !ok {
		return
	}

	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(c, &service.ValidationError{Fields: []service.FieldError{{Field: "file", Message: "file is too large"}}})
			return
		}
		writeErr(c, &service.ValidationError{Fields: []service.FieldError{{Field: "file", Message: "is required"}}})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("cannot open file", err))
		return
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxBytes > 0 {
		// one extra byte lets the service detect an oversized file
		r = io.LimitReader(f, h.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("cannot read file", err))
		return
	}

	out, err := h.svc.ImportCSV(c.Request.Context(), p.UserID, tableID, fh.Filename, data)
	if err != nil {
		writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: ImportResp{
		Message:      "Import successful",
		RowsImported: out.RowsImported,
	}})
}
