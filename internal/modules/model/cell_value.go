package model

import (
	"fmt"
	"strconv"
	"time"
)

// CellTypePolicy decides whether cell writes are checked against the column type.
type CellTypePolicy string

const (
	// CellTypeHint treats the column type as a rendering hint; any string is stored.
	CellTypeHint CellTypePolicy = "hint"
	// CellTypeStrict rejects non-empty values that do not parse as the column type.
	CellTypeStrict CellTypePolicy = "strict"
)

func ParseCellTypePolicy(s string) CellTypePolicy {
	if CellTypePolicy(s) == CellTypeStrict {
		return CellTypeStrict
	}
	return CellTypeHint
}

// ValidateCellValue checks value against a column type. Empty values are always valid.
func ValidateCellValue(columnType, value string) error {
	if value == "" {
		return nil
	}
	switch columnType {
	case ColumnTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
	case ColumnTypeDate:
		if _, err := time.Parse(time.RFC3339, value); err == nil {
			return nil
		}
		if _, err := time.Parse(time.DateOnly, value); err != nil {
			return fmt.Errorf("%q is not a date (RFC 3339 or YYYY-MM-DD)", value)
		}
	case ColumnTypeBoolean:
		if value != "true" && value != "false" {
			return fmt.Errorf("%q is not a boolean (true or false)", value)
		}
	}
	return nil
}
