package app

import (
	"context"

	"github.com/welldanyogia/webrana-mailsender/internal/models"
	"github.com/welldanyogia/webrana-mailsender/internal/validator"
)

const maxConfigValue = 512

// OpenSettings leaves the send screen: the working set and the ad-hoc rows
// are dropped.
func (a *App) OpenSettings() {
	a.working.Clear()
	a.other.Clear()
}

// SettingsProtected reports whether a settings secret is configured.
func (a *App) SettingsProtected() bool {
	return a.config.SettingsProtected()
}

// CheckSettingsSecret compares candidate with the configured settings secret.
func (a *App) CheckSettingsSecret(candidate string) bool {
	return a.config.CheckSettingsSecret(candidate)
}

// RosterSection lists a category for the roster editor.
func (a *App) RosterSection(c models.Category) ([]models.RosterEntry, error) {
	return a.roster.Section(c)
}

// PersonView is the roster editor's current slot.
type PersonView struct {
	ID   int         `json:"id"`
	Slot models.Slot `json:"person"`
	// Previous is the slot selected before, for the UI to unmark.
	Previous *int `json:"previous,omitempty"`
}

// SelectPerson opens slot id in the roster editor and moves the selection
// marker to it.
func (a *App) SelectPerson(ctx context.Context, id string) (PersonView, error) {
	i, err := a.slotID(ctx, id)
	if err != nil {
		return PersonView{}, err
	}
	slot, err := a.roster.Slot(i)
	if err != nil {
		return PersonView{}, a.fatal(ctx, "load person", err, id)
	}

	a.selectedMu.Lock()
	prev := a.selected
	a.selected = &i
	a.selectedMu.Unlock()

	return PersonView{ID: i, Slot: slot, Previous: prev}, nil
}

// Selected returns the slot open in the roster editor.
func (a *App) Selected() (int, bool) {
	a.selectedMu.Lock()
	defer a.selectedMu.Unlock()
	if a.selected == nil {
		return 0, false
	}
	return *a.selected, true
}

func (a *App) clearSelected() {
	a.selectedMu.Lock()
	a.selected = nil
	a.selectedMu.Unlock()
}

// SetPersonName edits the name of slot id in memory.
func (a *App) SetPersonName(ctx context.Context, id, name string) error {
	i, err := a.slotID(ctx, id)
	if err != nil {
		return err
	}
	if err := a.roster.SetName(i, validator.SanitizeLine(name, maxConfigValue)); err != nil {
		return a.fatal(ctx, "edit person", err, id)
	}
	return nil
}

// SetPersonMail edits the mail of slot id in memory.
func (a *App) SetPersonMail(ctx context.Context, id, mail string) error {
	i, err := a.slotID(ctx, id)
	if err != nil {
		return err
	}
	if err := a.roster.SetMail(i, validator.SanitizeLine(mail, maxConfigValue)); err != nil {
		return a.fatal(ctx, "edit person", err, id)
	}
	return nil
}

// SaveRoster persists the roster. Invalid mails come back as
// *apperrors.ValidationError; storage failures have already run the fallback
// chain by the time they are returned.
func (a *App) SaveRoster(ctx context.Context) error {
	if err := a.roster.Save(ctx); err != nil {
		return err
	}
	a.clearSelected()
	return nil
}

// DiscardRoster drops unsaved roster edits.
func (a *App) DiscardRoster(ctx context.Context) {
	a.roster.Reload(ctx)
	a.clearSelected()
}

// ConfigEntry is one configuration field as shown in the settings editor.
// Secret values are never returned, only whether they are set.
type ConfigEntry struct {
	Field  models.ConfigField `json:"field"`
	Value  string             `json:"value"`
	Secret bool               `json:"secret"`
	Set    bool               `json:"set"`
}

// ConfigEntries lists every configuration field.
func (a *App) ConfigEntries() []ConfigEntry {
	cfg := a.config.Snapshot()
	out := make([]ConfigEntry, 0, len(models.ConfigFields))
	for _, f := range models.ConfigFields {
		v, _ := cfg.Get(f)
		e := ConfigEntry{Field: f, Secret: f.Secret(), Set: v != ""}
		if !e.Secret {
			e.Value = v
		}
		out = append(out, e)
	}
	return out
}

// SetConfigField edits one configuration field in memory.
func (a *App) SetConfigField(name, value string) error {
	f, err := models.ParseConfigField(name)
	if err != nil {
		return err
	}
	return a.config.Set(f, validator.SanitizeLine(value, maxConfigValue))
}

// SaveConfig persists the configuration. Storage failures have already run
// the fallback chain when returned.
func (a *App) SaveConfig(ctx context.Context) error {
	return a.config.Save(ctx)
}

// DiscardConfig drops unsaved configuration edits.
func (a *App) DiscardConfig(ctx context.Context) {
	a.config.Reload(ctx)
}
