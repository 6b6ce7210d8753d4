package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/repo"
	"github.com/gridspace-io/gridspace/internal/pkg/csvimport"
	"go.uber.org/zap"
)

// EventPublisher sends domain events. queue.Publisher and queue.Nop implement it.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, v any) error
}

// Archiver keeps a copy of an uploaded file and returns where it was stored.
type Archiver interface {
	Archive(ctx context.Context, tableID, filename string, data []byte) (string, error)
}

const RoutingKeyTableImported = "table.imported"

type TableImportedEvent struct {
	TableID      uuid.UUID `json:"tableId"`
	UserID       string    `json:"userId"`
	RowsImported int       `json:"rowsImported"`
	ArchiveKey   string    `json:"archiveKey,omitempty"`
	ImportedAt   time.Time `json:"importedAt"`
}

type ImportService interface {
	ImportCSV(ctx context.Context, userID string, tableID uuid.UUID, filename string, data []byte) (*ImportResult, error)
}

type ImportResult struct {
	RowsImported int `json:"rowsImported"`
}

type ImportOptions struct {
	Policy   model.CellTypePolicy
	MaxBytes int64
}

type importService struct {
	rows       repo.RowRepo
	tables     repo.TableRepo
	workspaces repo.WorkspaceRepo
	guard      Guard
	limits     Limits
	archive    Archiver
	events     EventPublisher
	opts       ImportOptions
	log        *zap.Logger
}

// NewImportService builds the CSV importer. archive may be nil when no bucket is configured.
func NewImportService(rows repo.RowRepo, tables repo.TableRepo, workspaces repo.WorkspaceRepo, guard Guard, limits Limits, archive Archiver, events EventPublisher, opts ImportOptions, log *zap.Logger) ImportService {
	return &importService{
		rows:       rows,
		tables:     tables,
		workspaces: workspaces,
		guard:      guard,
		limits:     limits,
		archive:    archive,
		events:     events,
		opts:       opts,
		log:        log,
	}
}

func (s *importService) ImportCSV(ctx context.Context, userID string, tableID uuid.UUID, filename string, data []byte) (*ImportResult, error) {
	if err := requireTable(ctx, s.guard, userID, tableID); err != nil {
		return nil, err
	}
	if s.opts.MaxBytes > 0 && int64(len(data)) > s.opts.MaxBytes {
		return nil, invalid("file", "must be at most %d bytes", s.opts.MaxBytes)
	}

	parsed, err := csvimport.Parse(data)
	if err != nil {
		return nil, err
	}

	columns, err := s.tables.Columns(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}

	v := &ValidationError{}
	rows := make([]*model.Row, 0, len(parsed.Records))
	for i, rec := range parsed.Records {
		cells := buildCells(columns, rec, s.opts.Policy, true, v, fmt.Sprintf("line %d: ", parsed.Lines[i]))
		rows = append(rows, &model.Row{TableID: tableID, Cells: cells})
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	plan, limit, err := rowLimit(ctx, s.workspaces, s.limits, tableID)
	if err != nil {
		return nil, err
	}
	if err := s.rows.CreateBatch(ctx, tableID, rows, limit); err != nil {
		switch {
		case errors.Is(err, repo.ErrLimitReached):
			return nil, planLimitErr(plan, "rows per table", limit)
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrForbidden
		}
		return nil, err
	}

	s.log.Sugar().Infow("csv imported", "table_id", tableID, "user_id", userID, "rows", len(rows))

	ev := TableImportedEvent{
		TableID:      tableID,
		UserID:       userID,
		RowsImported: len(rows),
		ImportedAt:   time.Now().UTC(),
	}
	if s.archive != nil {
		key, err := s.archive.Archive(ctx, tableID.String(), filename, data)
		if err != nil {
			s.log.Sugar().Warnw("archive csv upload failed", "table_id", tableID, "err", err)
		} else {
			ev.ArchiveKey = key
		}
	}
	if err := s.events.Publish(ctx, RoutingKeyTableImported, ev); err != nil {
		s.log.Sugar().Warnw("publish table.imported failed", "table_id", tableID, "err", err)
	}

	return &ImportResult{RowsImported: len(rows)}, nil
}
