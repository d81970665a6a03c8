package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/inventar/internal/model"
)

const requestColumns = `id, item_name, brand, quantity, reason, requested_by, request_date, status`

// CreateRequest inserts a new request in Pending state.
func CreateRequest(ctx context.Context, db DBTX, req *model.Request) (*model.Request, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO requests (item_name, brand, quantity, reason, requested_by, request_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ItemName, req.Brand, req.Quantity, req.Reason, req.RequestedBy, req.RequestDate.UTC(), model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting request id: %w", err)
	}

	return GetRequest(ctx, db, id)
}

// GetRequest returns an active request by ID.
func GetRequest(ctx context.Context, db DBTX, id int64) (*model.Request, error) {
	req, err := scanRequest(db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	return req, nil
}

// ListRequests returns all active requests, newest first.
func ListRequests(ctx context.Context, db DBTX) ([]model.Request, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requests ORDER BY request_date DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	return collectRequests(rows)
}

// ListResolvedRequests returns every active request in a terminal state.
func ListResolvedRequests(ctx context.Context, db DBTX) ([]model.Request, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE status IN (?, ?) ORDER BY id`,
		model.StatusApproved, model.StatusRejected,
	)
	if err != nil {
		return nil, fmt.Errorf("listing resolved requests: %w", err)
	}
	return collectRequests(rows)
}

// ResolveRequest moves a request from Pending to status. It reports false
// when the request is missing or no longer Pending.
func ResolveRequest(ctx context.Context, db DBTX, id int64, status model.RequestStatus) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE requests SET status = ? WHERE id = ? AND status = ?`,
		status, id, model.StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("resolving request: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolving request: %w", err)
	}
	return n == 1, nil
}

// ArchiveRequest copies a resolved request into the archive and removes it
// from the active table in one transaction. The move only happens while the
// request still has the given status, so a concurrent change or a previous
// run makes it a no-op. It reports whether the active row was removed.
//
// The active row is only deleted once its copy is in the archive. If the
// archive already holds a different request under the same ID, the move is
// aborted with ErrDuplicate and the active row is left alone.
func ArchiveRequest(ctx context.Context, db *sql.DB, id int64, status model.RequestStatus, archivedAt time.Time) (bool, error) {
	var moved bool
	err := withTx(ctx, db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO archived_requests (`+requestColumns+`, archived_at)
			 SELECT `+requestColumns+`, ? FROM requests WHERE id = ? AND status = ?
			 ON CONFLICT(id) DO NOTHING`,
			archivedAt.UTC(), id, status,
		)
		if err != nil {
			return fmt.Errorf("copying request to archive: %w", err)
		}
		copied, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("copying request to archive: %w", err)
		}
		if copied == 0 {
			var active bool
			err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM requests WHERE id = ? AND status = ?)`, id, status,
			).Scan(&active)
			if err != nil {
				return fmt.Errorf("checking active request: %w", err)
			}
			if active {
				return fmt.Errorf("archiving request %d: archive already holds this id: %w", id, ErrDuplicate)
			}
			return nil
		}

		result, err = tx.ExecContext(ctx,
			`DELETE FROM requests WHERE id = ? AND status = ?`, id, status,
		)
		if err != nil {
			return fmt.Errorf("removing archived request: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("removing archived request: %w", err)
		}
		moved = n == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

// GetArchivedRequest returns an archived request by ID.
func GetArchivedRequest(ctx context.Context, db DBTX, id int64) (*model.ArchivedRequest, error) {
	a := &model.ArchivedRequest{}
	err := db.QueryRowContext(ctx,
		`SELECT `+requestColumns+`, archived_at FROM archived_requests WHERE id = ?`, id,
	).Scan(&a.ID, &a.ItemName, &a.Brand, &a.Quantity, &a.Reason, &a.RequestedBy, &a.RequestDate, &a.Status, &a.ArchivedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting archived request: %w", err)
	}
	a.RequestDate = a.RequestDate.UTC()
	a.ArchivedAt = a.ArchivedAt.UTC()
	return a, nil
}

// ListArchivedRequests returns the archive, most recently archived first.
func ListArchivedRequests(ctx context.Context, db DBTX) ([]model.ArchivedRequest, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+requestColumns+`, archived_at FROM archived_requests ORDER BY archived_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing archived requests: %w", err)
	}
	defer rows.Close()

	var archived []model.ArchivedRequest
	for rows.Next() {
		var a model.ArchivedRequest
		if err := rows.Scan(&a.ID, &a.ItemName, &a.Brand, &a.Quantity, &a.Reason, &a.RequestedBy, &a.RequestDate, &a.Status, &a.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scanning archived request: %w", err)
		}
		a.RequestDate = a.RequestDate.UTC()
		a.ArchivedAt = a.ArchivedAt.UTC()
		archived = append(archived, a)
	}
	return archived, rows.Err()
}

// collectRequests drains and closes rows.
func collectRequests(rows *sql.Rows) ([]model.Request, error) {
	defer rows.Close()

	var reqs []model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		reqs = append(reqs, *req)
	}
	return reqs, rows.Err()
}

func scanRequest(s scanner) (*model.Request, error) {
	req := &model.Request{}
	if err := s.Scan(&req.ID, &req.ItemName, &req.Brand, &req.Quantity, &req.Reason, &req.RequestedBy, &req.RequestDate, &req.Status); err != nil {
		return nil, err
	}
	req.RequestDate = req.RequestDate.UTC()
	return req, nil
}
