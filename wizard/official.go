package wizard

import (
	"context"
	"fmt"

	"github.com/matahariann/kontrakgen/model"
	"github.com/matahariann/kontrakgen/pkg/logger"
)

// The two roles every document carries. New sessions start with one empty
// row per role.
const (
	RolePPK = "Pejabat Pembuat Komitmen"
	RolePP  = "Pejabat Pengadaan"
)

func defaultOfficialRows() []model.Official {
	return []model.Official{
		{Jabatan: RolePPK},
		{Jabatan: RolePP},
	}
}

// Officials returns a copy of the official rows.
func (w *Wizard) Officials() []model.Official {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Official, len(w.officials))
	copy(out, w.officials)
	return out
}

// Periode returns the selected tenure period label.
func (w *Wizard) Periode() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.periode
}

// Periods lists the tenure periods known upstream.
func (w *Wizard) Periods(ctx context.Context) ([]string, error) {
	return w.api.GetPeriode(ctx)
}

// SelectPeriode switches the step between reuse and fresh-entry modes.
// An existing period loads its officials read-only and commits the step;
// an empty selection starts a new period with editable default rows.
func (w *Wizard) SelectPeriode(ctx context.Context, periode string) error {
	if periode == "" {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.periode = ""
		w.officials = defaultOfficialRows()
		w.steps[StepOfficial].Saved = false
		w.steps[StepOfficial].EditMode = false
		w.steps[StepOfficial].touched = false
		if err := w.store.Set(keyPeriode, ""); err != nil {
			return err
		}
		return w.persistOfficialsLocked()
	}

	officials, err := w.api.GetOfficialsByPeriode(ctx, periode)
	if err != nil {
		return err
	}
	if len(officials) == 0 {
		return fmt.Errorf("periode %s tidak memiliki data pejabat", periode)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.periode = periode
	w.officials = officials
	w.steps[StepOfficial].Saved = true
	w.steps[StepOfficial].EditMode = false
	if err := w.store.Set(keyPeriode, periode); err != nil {
		return err
	}
	logger.Info(ctx, "officials loaded from periode", "periode", periode, "count", len(officials))
	return w.persistOfficialsLocked()
}

// UpdateOfficial replaces one row and persists the set.
func (w *Wizard) UpdateOfficial(index int, o model.Official) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepOfficial].Status() == StatusSaved {
		return fmt.Errorf("data pejabat sudah tersimpan, buka mode ubah terlebih dahulu")
	}
	if index < 0 || index >= len(w.officials) {
		return fmt.Errorf("baris pejabat %d tidak ditemukan", index)
	}

	o.ID = w.officials[index].ID
	w.officials[index] = o
	w.steps[StepOfficial].touched = true
	return w.store.Set(keyOfficialData, w.officials)
}

// AddOfficialRow appends an empty row. Rows change only while the step is
// not committed (or is re-opened for editing).
func (w *Wizard) AddOfficialRow() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepOfficial].Status() == StatusSaved {
		return fmt.Errorf("data pejabat sudah tersimpan, buka mode ubah terlebih dahulu")
	}
	w.officials = append(w.officials, model.Official{})
	return w.store.Set(keyOfficialData, w.officials)
}

// RemoveOfficialRow drops one row. The two fixed-role rows always remain.
func (w *Wizard) RemoveOfficialRow(index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepOfficial].Status() == StatusSaved {
		return fmt.Errorf("data pejabat sudah tersimpan, buka mode ubah terlebih dahulu")
	}
	if index < 0 || index >= len(w.officials) {
		return fmt.Errorf("baris pejabat %d tidak ditemukan", index)
	}
	if len(w.officials) <= 2 {
		return fmt.Errorf("minimal dua pejabat diperlukan")
	}
	w.officials = append(w.officials[:index], w.officials[index+1:]...)
	return w.store.Set(keyOfficialData, w.officials)
}

// SubmitOfficials validates all rows (including pairwise-distinct NIP),
// then commits: one batch call for new rows, per-id updates when editing
// with a batch create for rows added during the edit. Validation failures
// block before any network call.
func (w *Wizard) SubmitOfficials(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepOfficial].Status() == StatusSaved {
		return fmt.Errorf("data pejabat sudah tersimpan")
	}

	fields := make(map[string]string)
	for i, o := range w.officials {
		for k, v := range checkRecord(o, fmt.Sprintf("pejabat[%d].", i)) {
			fields[k] = v
		}
	}
	if err := validationError(fields); err != nil {
		return err
	}

	seen := make(map[string]int, len(w.officials))
	for i, o := range w.officials {
		if prev, dup := seen[o.NIP]; dup {
			return &ValidationError{
				Summary: fmt.Sprintf("NIP %s digunakan lebih dari satu kali, setiap pejabat harus memiliki NIP berbeda", o.NIP),
				Fields: map[string]string{
					fmt.Sprintf("pejabat[%d].nip", prev): "NIP duplikat",
					fmt.Sprintf("pejabat[%d].nip", i):    "NIP duplikat",
				},
			}
		}
		seen[o.NIP] = i
	}

	editing := w.steps[StepOfficial].EditMode
	if editing {
		// Rows re-opened for editing are updated in place, fail-fast.
		// Rows added during the edit have no id yet and are created in
		// one batch after the updates.
		var added []int
		for i := range w.officials {
			if w.officials[i].ID == "" {
				added = append(added, i)
				continue
			}
			if err := w.api.UpdateOfficial(ctx, &w.officials[i]); err != nil {
				return fmt.Errorf("gagal memperbarui pejabat baris %d: %w", i+1, err)
			}
		}
		if len(added) > 0 {
			rows := make([]model.Official, len(added))
			for i, idx := range added {
				rows[i] = w.officials[idx]
			}
			ids, err := w.api.AddOfficials(ctx, rows)
			if err != nil {
				return err
			}
			for i, idx := range added {
				w.officials[idx].ID = ids[i]
			}
		}
	} else {
		ids, err := w.api.AddOfficials(ctx, w.officials)
		if err != nil {
			return err
		}
		for i := range w.officials {
			w.officials[i].ID = ids[i]
		}
	}

	w.steps[StepOfficial].Saved = true
	w.steps[StepOfficial].EditMode = false
	if err := w.persistOfficialsLocked(); err != nil {
		return err
	}

	logger.Info(ctx, "officials committed", "count", len(w.officials), "editing", editing)
	w.setNoticeLocked("Data pejabat berhasil disimpan")
	return nil
}

// EditOfficials re-opens the whole collection for editing.
func (w *Wizard) EditOfficials() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.steps[StepOfficial].Saved {
		return fmt.Errorf("data pejabat belum tersimpan")
	}
	w.steps[StepOfficial].EditMode = true
	return w.store.Set(keyOfficialEdit, true)
}

func (w *Wizard) persistOfficialsLocked() error {
	if err := w.store.Set(keyOfficialData, w.officials); err != nil {
		return err
	}
	if err := w.store.Set(keyOfficialSaved, w.steps[StepOfficial].Saved); err != nil {
		return err
	}
	if err := w.store.Set(keyOfficialEdit, w.steps[StepOfficial].EditMode); err != nil {
		return err
	}
	ids := make([]string, len(w.officials))
	for i, o := range w.officials {
		ids[i] = o.ID
	}
	return w.store.Set(keyOfficialIDs, ids)
}
