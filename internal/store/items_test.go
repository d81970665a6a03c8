package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/inventar/internal/db"
	"github.com/erazemk/inventar/internal/model"
)

func laptop(serial string) *model.Item {
	return &model.Item{
		SerialNumber: serial,
		Name:         "Laptop",
		Brand:        "Dell",
		DateAdded:    "2024-05-01",
		AddedBy:      "alice",
	}
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, laptop("SN-1"))
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Name != "Laptop" {
		t.Errorf("expected name 'Laptop', got %q", item.Name)
	}
	if item.HasSpecs || item.Specs != nil {
		t.Errorf("expected no specs, got %+v", item.Specs)
	}
	if item.EmployeeUser != "" {
		t.Errorf("expected no employee, got %q", item.EmployeeUser)
	}

	missing, err := GetItem(ctx, database, item.ID+1)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestCreateItemWithSpecs(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	in := laptop("SN-1")
	in.HasSpecs = true
	in.Specs = &model.Specs{Model: "XPS 15", WarrantyExpiration: "2027-05-01", CPU: "i7", RAM: "32GB", Storage: "1TB"}

	item, err := CreateItem(ctx, database, in)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if !item.HasSpecs || item.Specs == nil {
		t.Fatal("expected specs to round-trip")
	}
	if *item.Specs != *in.Specs {
		t.Errorf("expected %+v, got %+v", *in.Specs, *item.Specs)
	}
}

func TestCreateItemDuplicateSerial(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateItem(ctx, database, laptop("SN-1")); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	_, err := CreateItem(ctx, database, laptop("SN-1"))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestListItemsNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, laptop("SN-1"))
	CreateItem(ctx, database, laptop("SN-2"))

	items, err := ListItems(ctx, database)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].SerialNumber != "SN-2" {
		t.Errorf("expected newest item first, got %q", items[0].SerialNumber)
	}
}

func TestUpdateItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, laptop("SN-1"))
	other, _ := CreateItem(ctx, database, laptop("SN-2"))

	item.EmployeeUser = "carol"
	editedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ok, err := UpdateItem(ctx, database, item, "admin", editedAt)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if !ok {
		t.Fatal("expected row to be updated")
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.EmployeeUser != "carol" {
		t.Errorf("expected employee 'carol', got %q", got.EmployeeUser)
	}
	if got.EditedBy != "admin" || got.EditedAt == nil || !got.EditedAt.Equal(editedAt) {
		t.Errorf("unexpected edit stamp %q %v", got.EditedBy, got.EditedAt)
	}
	if got.AddedBy != "alice" {
		t.Errorf("expected added_by to stay 'alice', got %q", got.AddedBy)
	}

	other.SerialNumber = "SN-1"
	_, err = UpdateItem(ctx, database, other, "admin", editedAt)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, laptop("SN-1"))

	ok, err := DeleteItem(ctx, database, item.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteItem: %v %v", ok, err)
	}
	ok, err = DeleteItem(ctx, database, item.ID)
	if err != nil || ok {
		t.Fatalf("second DeleteItem: %v %v", ok, err)
	}

	// The serial number is free again.
	if _, err := CreateItem(ctx, database, laptop("SN-1")); err != nil {
		t.Fatalf("CreateItem after delete: %v", err)
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, laptop("SN-1"))

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if len(data) != 0 || mime != "" {
		t.Error("expected no image initially")
	}

	found, err := SetItemImage(ctx, database, item.ID, []byte{1, 2, 3}, "image/jpeg")
	if err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}
	if !found {
		t.Fatal("expected item to be found")
	}
	data, mime, _ = GetItemImage(ctx, database, item.ID)
	if len(data) != 3 || mime != "image/jpeg" {
		t.Errorf("unexpected image %v %q", data, mime)
	}

	DeleteItem(ctx, database, item.ID)
	found, err = SetItemImage(ctx, database, item.ID, []byte{4, 5, 6}, "image/jpeg")
	if err != nil {
		t.Fatalf("SetItemImage on deleted item: %v", err)
	}
	if found {
		t.Error("expected deleted item to be reported missing")
	}
}
