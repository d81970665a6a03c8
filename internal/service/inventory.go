package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/inventar/internal/imaging"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/policy"
	"github.com/erazemk/inventar/internal/store"
)

// ItemInput is the full mutable field set of an item, as submitted on create
// and update.
type ItemInput struct {
	SerialNumber string       `json:"serialNumber"`
	Name         string       `json:"name"`
	Brand        string       `json:"brand"`
	DateAdded    string       `json:"date_added"`
	EmployeeUser string       `json:"employeeUser"`
	HasSpecs     bool         `json:"hasSpecs"`
	Specs        *model.Specs `json:"specs"`
}

// item validates the input and returns the item it describes. Specs are
// dropped unless HasSpecs is set.
func (in ItemInput) item() (*model.Item, error) {
	item := &model.Item{
		SerialNumber: strings.TrimSpace(in.SerialNumber),
		Name:         strings.TrimSpace(in.Name),
		Brand:        strings.TrimSpace(in.Brand),
		DateAdded:    strings.TrimSpace(in.DateAdded),
		EmployeeUser: strings.TrimSpace(in.EmployeeUser),
	}

	switch {
	case item.Name == "":
		return nil, invalid("name is required")
	case item.Brand == "":
		return nil, invalid("brand is required")
	case item.SerialNumber == "":
		return nil, invalid("serial number is required")
	case item.DateAdded == "":
		return nil, invalid("date added is required")
	}
	if !validDate(item.DateAdded) {
		return nil, invalid("date added must be YYYY-MM-DD")
	}

	if !in.HasSpecs {
		return item, nil
	}
	if in.Specs == nil {
		return nil, invalid("specs are required when hasSpecs is set")
	}
	specs := model.Specs{
		Model:              strings.TrimSpace(in.Specs.Model),
		WarrantyExpiration: strings.TrimSpace(in.Specs.WarrantyExpiration),
		CPU:                strings.TrimSpace(in.Specs.CPU),
		RAM:                strings.TrimSpace(in.Specs.RAM),
		Storage:            strings.TrimSpace(in.Specs.Storage),
	}
	if !specs.Complete() {
		return nil, invalid("all spec fields are required when hasSpecs is set")
	}
	if !validDate(specs.WarrantyExpiration) {
		return nil, invalid("warranty expiration must be YYYY-MM-DD")
	}
	item.HasSpecs = true
	item.Specs = &specs
	return item, nil
}

func validDate(s string) bool {
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}

// Inventory validates and applies item mutations.
type Inventory struct {
	DB     *sql.DB
	Now    func() time.Time
	Logger *slog.Logger
}

func (s *Inventory) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// List returns all items, newest first.
func (s *Inventory) List(ctx context.Context, actor policy.Actor) ([]model.Item, error) {
	if !policy.Allowed(actor, policy.ViewInventory, policy.Resource{}) {
		return nil, ErrForbidden
	}
	items, err := store.ListItems(ctx, s.DB)
	if err != nil {
		return nil, storageError("listing items", err)
	}
	return items, nil
}

// Get returns a single item.
func (s *Inventory) Get(ctx context.Context, actor policy.Actor, id int64) (*model.Item, error) {
	if !policy.Allowed(actor, policy.ViewInventory, policy.Resource{}) {
		return nil, ErrForbidden
	}
	return s.find(ctx, id)
}

func (s *Inventory) find(ctx context.Context, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, s.DB, id)
	if err != nil {
		return nil, storageError("getting item", err)
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// Create adds an item owned by the actor.
func (s *Inventory) Create(ctx context.Context, actor policy.Actor, in ItemInput) (*model.Item, error) {
	if !policy.Allowed(actor, policy.CreateItem, policy.Resource{}) {
		return nil, ErrForbidden
	}

	item, err := in.item()
	if err != nil {
		return nil, err
	}
	item.AddedBy = actor.Username

	created, err := store.CreateItem(ctx, s.DB, item)
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, storageError("creating item", err)
	}

	loggerOrDefault(s.Logger).Info("item created", "user", actor.Username, "item", created.SerialNumber)
	return created, nil
}

// Update rewrites every mutable field of an existing item. Only an Admin or
// the IT user who added the item may do so.
func (s *Inventory) Update(ctx context.Context, actor policy.Actor, id int64, in ItemInput) (*model.Item, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Allowed(actor, policy.EditItem, policy.Resource{Owner: existing.AddedBy}) {
		return nil, ErrForbidden
	}

	item, err := in.item()
	if err != nil {
		return nil, err
	}
	item.ID = existing.ID
	item.AddedBy = existing.AddedBy

	ok, err := store.UpdateItem(ctx, s.DB, item, actor.Username, s.now())
	if errors.Is(err, store.ErrDuplicate) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, storageError("updating item", err)
	}
	if !ok {
		return nil, ErrNotFound
	}

	loggerOrDefault(s.Logger).Info("item updated", "user", actor.Username, "item", item.SerialNumber)
	return s.find(ctx, id)
}

// Delete removes an item under the same rule as Update.
func (s *Inventory) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Allowed(actor, policy.DeleteItem, policy.Resource{Owner: existing.AddedBy}) {
		return ErrForbidden
	}

	ok, err := store.DeleteItem(ctx, s.DB, id)
	if err != nil {
		return storageError("deleting item", err)
	}
	if !ok {
		return ErrNotFound
	}

	loggerOrDefault(s.Logger).Info("item deleted", "user", actor.Username, "item", existing.SerialNumber)
	return nil
}

// SetImage stores a photo for the item, normalized to a bounded JPEG.
func (s *Inventory) SetImage(ctx context.Context, actor policy.Actor, id int64, data []byte) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !policy.Allowed(actor, policy.UploadImage, policy.Resource{Owner: existing.AddedBy}) {
		return ErrForbidden
	}

	photo, err := imaging.Process(data)
	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		return invalid("%v", err)
	}
	if err != nil {
		return storageError("processing image", err)
	}

	found, err := store.SetItemImage(ctx, s.DB, id, photo.Data, photo.MIME)
	if err != nil {
		return storageError("storing image", err)
	}
	if !found {
		return ErrNotFound
	}

	loggerOrDefault(s.Logger).Info("item image set", "user", actor.Username, "item", existing.SerialNumber, "bytes", len(photo.Data))
	return nil
}

// Image returns the item's photo and its MIME type.
func (s *Inventory) Image(ctx context.Context, actor policy.Actor, id int64) ([]byte, string, error) {
	if !policy.Allowed(actor, policy.ViewInventory, policy.Resource{}) {
		return nil, "", ErrForbidden
	}
	data, mime, err := store.GetItemImage(ctx, s.DB, id)
	if err != nil {
		return nil, "", storageError("getting image", err)
	}
	if len(data) == 0 {
		return nil, "", ErrNotFound
	}
	return data, mime, nil
}
