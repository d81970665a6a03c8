package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/policy"
	"github.com/erazemk/inventar/internal/store"
)

var exportHeader = []string{
	"Name", "Brand", "Serial Number", "Date Added", "Added By", "Assigned To",
	"Model", "Warranty Expiration", "CPU", "RAM", "Storage",
}

const signatureLine = "__________________"

// ExportFilename is the attachment name for an export taken at the current time.
func (s *Inventory) ExportFilename() string {
	return fmt.Sprintf("inventory_%d.csv", s.now().Unix())
}

// Export writes the whole inventory as CSV, newest first, followed by a
// sign-off block naming the actor as preparer.
func (s *Inventory) Export(ctx context.Context, actor policy.Actor, w io.Writer) error {
	if !policy.Allowed(actor, policy.ExportInventory, policy.Resource{}) {
		return ErrForbidden
	}

	items, err := store.ListItems(ctx, s.DB)
	if err != nil {
		return storageError("listing items for export", err)
	}

	cw := csv.NewWriter(w)
	records := [][]string{exportHeader}
	for _, item := range items {
		records = append(records, exportRow(item))
	}
	records = append(records,
		nil,
		nil,
		[]string{"Export Date:", s.now().Format(model.DateLayout)},
		[]string{"Prepared By:", actor.Username},
		nil,
		[]string{"Manager Approval:", signatureLine},
		nil,
		[]string{"Audit Checked:", signatureLine},
	)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	loggerOrDefault(s.Logger).Info("inventory exported", "user", actor.Username, "items", len(items))
	return nil
}

func exportRow(item model.Item) []string {
	row := []string{item.Name, item.Brand, item.SerialNumber, item.DateAdded, item.AddedBy, item.EmployeeUser}
	if item.Specs != nil {
		return append(row, item.Specs.Model, item.Specs.WarrantyExpiration, item.Specs.CPU, item.Specs.RAM, item.Specs.Storage)
	}
	return append(row, "", "", "", "", "")
}
