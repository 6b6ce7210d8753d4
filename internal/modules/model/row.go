package model

import (
	"time"

	"github.com/google/uuid"
)

type Row struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TableID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_rows_table_order,priority:1" json:"tableId"`
	Order   int       `gorm:"column:sort_order;not null;check:sort_order >= 0;uniqueIndex:uq_rows_table_order,priority:2" json:"order"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Row <-> Table
	Table *Table `gorm:"foreignKey:TableID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Row <-> Cell
	Cells []Cell `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Row) TableName() string { return "rows" }

// Cell is the value of one (row, column) pair. Value is untyped storage.
type Cell struct {
	RowID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"rowId"`
	ColumnID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"columnId"`
	Value    *string   `gorm:"type:text" json:"value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Cell <-> Row
	Row *Row `gorm:"foreignKey:RowID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Cell <-> Column
	Column *Column `gorm:"foreignKey:ColumnID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Cell) TableName() string { return "cells" }

// FlatRow is the API shape of a row: cell values keyed by column name.
type FlatRow struct {
	ID        uuid.UUID          `json:"id"`
	Order     int                `json:"order"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
	Data      map[string]*string `json:"data"`
}

// Flatten maps the row's cells onto column names. Cells whose column is not in
// columns are dropped; columns without a cell are reported as null.
func (r *Row) Flatten(columns []Column) FlatRow {
	byID := make(map[uuid.UUID]*string, len(r.Cells))
	for _, c := range r.Cells {
		byID[c.ColumnID] = c.Value
	}

	data := make(map[string]*string, len(columns))
	for _, col := range columns {
		data[col.Name] = byID[col.ID]
	}

	return FlatRow{
		ID:        r.ID,
		Order:     r.Order,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Data:      data,
	}
}
