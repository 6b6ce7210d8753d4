package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ColumnTypeText    = "text"
	ColumnTypeNumber  = "number"
	ColumnTypeDate    = "date"
	ColumnTypeBoolean = "boolean"
)

var ColumnTypes = []string{ColumnTypeText, ColumnTypeNumber, ColumnTypeDate, ColumnTypeBoolean}

// IsValidColumnType Check if the given type is valid
func IsValidColumnType(t string) bool {
	for _, ct := range ColumnTypes {
		if ct == t {
			return true
		}
	}
	return false
}

type Table struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	WorkspaceID uuid.UUID `gorm:"type:uuid;not null;index" json:"workspaceId"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Table <-> Workspace
	Workspace *Workspace `gorm:"foreignKey:WorkspaceID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Table <-> Column
	Columns []Column `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"columns"`

	// Table <-> Row
	Rows []Row `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	RowCount int64 `gorm:"->;-:migration" json:"rowCount"`
}

func (Table) TableName() string { return "tables" }

type Column struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TableID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_columns_table_order,priority:1;uniqueIndex:uq_columns_table_name,priority:1" json:"tableId"`
	Name    string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_columns_table_name,priority:2" json:"name"`
	Type    string    `gorm:"type:text;not null;default:'text';check:type IN ('text','number','date','boolean')" json:"type"`
	Order   int       `gorm:"column:sort_order;not null;check:sort_order >= 0;uniqueIndex:uq_columns_table_order,priority:2" json:"order"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Column <-> Table
	Table *Table `gorm:"foreignKey:TableID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`

	// Column <-> Cell
	Cells []Cell `gorm:"constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Column) TableName() string { return "columns" }
