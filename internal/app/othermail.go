package app

import (
	"context"

	"github.com/welldanyogia/webrana-mailsender/internal/models"
)

// OtherRows lists the ad-hoc rows.
func (a *App) OtherRows() []models.RosterEntry {
	return a.other.Rows()
}

// AddOtherRow appends a blank ad-hoc row and returns its index.
func (a *App) AddOtherRow() int {
	return a.other.AddRow()
}

// EditOtherRow stores the typed address in row id. Validity is checked when
// sending, not while typing.
func (a *App) EditOtherRow(ctx context.Context, id, text string) error {
	i, err := a.slotID(ctx, id)
	if err != nil {
		return err
	}
	if err := a.other.Edit(i, text); err != nil {
		return a.fatal(ctx, "edit ad-hoc row", err, id)
	}
	return nil
}

// RemoveOtherRow empties row id.
func (a *App) RemoveOtherRow(ctx context.Context, id string) error {
	i, err := a.slotID(ctx, id)
	if err != nil {
		return err
	}
	if err := a.other.Remove(i); err != nil {
		return a.fatal(ctx, "remove ad-hoc row", err, id)
	}
	return nil
}

// OtherSummary is shown when the ad-hoc editor closes.
type OtherSummary struct {
	HasRows bool `json:"has_rows"`
	Valid   bool `json:"valid"`
}

// CloseOther drops blank rows and reports what is left.
func (a *App) CloseOther() OtherSummary {
	a.other.DropEmpty()
	return OtherSummary{
		HasRows: !a.other.IsEmpty(),
		Valid:   a.other.IsValid(),
	}
}
