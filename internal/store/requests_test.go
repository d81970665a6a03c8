package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
)

var requestDate = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newRequest(by string) *model.Request {
	return &model.Request{
		ItemName:    "Monitor",
		Brand:       "LG",
		Quantity:    2,
		Reason:      "new hires",
		RequestedBy: by,
		RequestDate: requestDate,
	}
}

func TestCreateAndGetRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	req, err := CreateRequest(ctx, database, newRequest("bob"))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.Status != model.StatusPending {
		t.Errorf("expected Pending, got %q", req.Status)
	}
	if !req.RequestDate.Equal(requestDate) {
		t.Errorf("expected request date %v, got %v", requestDate, req.RequestDate)
	}

	missing, err := GetRequest(ctx, database, req.ID+1)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing request")
	}
}

func TestResolveRequestOnlyFromPending(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	req, _ := CreateRequest(ctx, database, newRequest("bob"))

	ok, err := ResolveRequest(ctx, database, req.ID, model.StatusApproved)
	if err != nil || !ok {
		t.Fatalf("ResolveRequest: %v %v", ok, err)
	}

	ok, err = ResolveRequest(ctx, database, req.ID, model.StatusRejected)
	if err != nil {
		t.Fatalf("ResolveRequest: %v", err)
	}
	if ok {
		t.Error("expected a resolved request to stay resolved")
	}

	got, _ := GetRequest(ctx, database, req.ID)
	if got.Status != model.StatusApproved {
		t.Errorf("expected Approved, got %q", got.Status)
	}
}

func TestListResolvedRequests(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	pending, _ := CreateRequest(ctx, database, newRequest("a"))
	approved, _ := CreateRequest(ctx, database, newRequest("b"))
	rejected, _ := CreateRequest(ctx, database, newRequest("c"))
	ResolveRequest(ctx, database, approved.ID, model.StatusApproved)
	ResolveRequest(ctx, database, rejected.ID, model.StatusRejected)

	resolved, err := ListResolvedRequests(ctx, database)
	if err != nil {
		t.Fatalf("ListResolvedRequests: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("expected 2 resolved requests, got %d", len(resolved))
	}
	for _, r := range resolved {
		if r.ID == pending.ID {
			t.Error("pending request listed as resolved")
		}
	}

	all, _ := ListRequests(ctx, database)
	if len(all) != 3 {
		t.Errorf("expected 3 active requests, got %d", len(all))
	}
}

func TestArchiveRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	req, _ := CreateRequest(ctx, database, newRequest("bob"))
	ResolveRequest(ctx, database, req.ID, model.StatusRejected)
	archivedAt := requestDate.Add(72 * time.Hour)

	moved, err := ArchiveRequest(ctx, database, req.ID, model.StatusRejected, archivedAt)
	if err != nil {
		t.Fatalf("ArchiveRequest: %v", err)
	}
	if !moved {
		t.Fatal("expected request to be moved")
	}

	active, _ := GetRequest(ctx, database, req.ID)
	if active != nil {
		t.Error("expected request to leave the active table")
	}

	a, err := GetArchivedRequest(ctx, database, req.ID)
	if err != nil {
		t.Fatalf("GetArchivedRequest: %v", err)
	}
	if a == nil {
		t.Fatal("expected archived request")
	}
	if a.ID != req.ID || a.Status != model.StatusRejected || a.RequestedBy != "bob" {
		t.Errorf("unexpected archived row %+v", a)
	}
	if !a.ArchivedAt.Equal(archivedAt) || !a.RequestDate.Equal(requestDate) {
		t.Errorf("unexpected timestamps %v %v", a.RequestDate, a.ArchivedAt)
	}

	// A second run finds nothing to move and leaves the archive intact.
	moved, err = ArchiveRequest(ctx, database, req.ID, model.StatusRejected, archivedAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("second ArchiveRequest: %v", err)
	}
	if moved {
		t.Error("expected second archive to be a no-op")
	}
	archived, _ := ListArchivedRequests(ctx, database)
	if len(archived) != 1 {
		t.Fatalf("expected 1 archived request, got %d", len(archived))
	}
	if !archived[0].ArchivedAt.Equal(archivedAt) {
		t.Errorf("archive timestamp changed to %v", archived[0].ArchivedAt)
	}
}

func TestArchiveRequestStatusChanged(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	req, _ := CreateRequest(ctx, database, newRequest("bob"))
	ResolveRequest(ctx, database, req.ID, model.StatusApproved)

	// Selected as Rejected, but it is Approved now.
	moved, err := ArchiveRequest(ctx, database, req.ID, model.StatusRejected, requestDate)
	if err != nil {
		t.Fatalf("ArchiveRequest: %v", err)
	}
	if moved {
		t.Error("expected no move for a stale status")
	}
	if a, _ := GetArchivedRequest(ctx, database, req.ID); a != nil {
		t.Error("expected nothing in the archive")
	}
	if active, _ := GetRequest(ctx, database, req.ID); active == nil {
		t.Error("expected request to stay active")
	}
}

func TestArchivedRequestIDNotReused(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, _ := CreateRequest(ctx, database, newRequest("bob"))
	ResolveRequest(ctx, database, first.ID, model.StatusRejected)
	if _, err := ArchiveRequest(ctx, database, first.ID, model.StatusRejected, requestDate); err != nil {
		t.Fatalf("ArchiveRequest: %v", err)
	}

	second, err := CreateRequest(ctx, database, newRequest("carol"))
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("archived id %d was handed out again", first.ID)
	}
}

func TestArchiveRequestKeepsActiveRowOnIDClash(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	req, _ := CreateRequest(ctx, database, newRequest("bob"))
	ResolveRequest(ctx, database, req.ID, model.StatusApproved)

	// An unrelated archived row already sits under the same id.
	_, err := database.ExecContext(ctx,
		`INSERT INTO archived_requests (id, item_name, brand, quantity, reason, requested_by, request_date, status, archived_at)
		 VALUES (?, 'Keyboard', 'Logitech', 1, 'broken', 'carol', ?, 'Rejected', ?)`,
		req.ID, requestDate, requestDate,
	)
	if err != nil {
		t.Fatal(err)
	}

	moved, err := ArchiveRequest(ctx, database, req.ID, model.StatusApproved, requestDate.Add(time.Hour))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if moved {
		t.Error("expected no move")
	}
	active, _ := GetRequest(ctx, database, req.ID)
	if active == nil || active.ItemName != "Monitor" {
		t.Fatalf("expected active request to survive, got %+v", active)
	}
	a, _ := GetArchivedRequest(ctx, database, req.ID)
	if a == nil || a.ItemName != "Keyboard" {
		t.Errorf("expected archived row to be untouched, got %+v", a)
	}
}

func TestArchiveRequestRollsBackOnFailure(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO archived_requests").
		WithArgs(sqlmock.AnyArg(), int64(7), model.StatusApproved).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec("DELETE FROM requests").
		WithArgs(int64(7), model.StatusApproved).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	moved, err := ArchiveRequest(context.Background(), mockDB, 7, model.StatusApproved, requestDate)
	if err == nil {
		t.Fatal("expected error")
	}
	if moved {
		t.Error("expected no move on failure")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
