package wizard

import (
	"context"
	"fmt"

	"github.com/matahariann/kontrakgen/model"
	"github.com/matahariann/kontrakgen/pkg/format"
	"github.com/matahariann/kontrakgen/pkg/logger"
)

// CeilingError reports an aggregate contract value over the type ceiling.
// It names the offending price field and the formatted ceiling.
type CeilingError struct {
	Field   string
	Type    model.ContractType
	Total   int64
	Ceiling int64
}

func (e *CeilingError) Error() string {
	return fmt.Sprintf("Total %s untuk jenis %s sebesar %s melebihi batas %s",
		e.Field, e.Type, format.Rupiah(e.Total), format.Rupiah(e.Ceiling))
}

// SubmitResult records the outcome of one row in a sequential submission.
type SubmitResult struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Err   error  `json:"-"`
}

// priceFields are checked independently against the ceiling.
var priceFields = []struct {
	name  string
	value func(model.Contract) int64
}{
	{"nilai_perkiraan_sendiri", func(k model.Contract) int64 { return k.NilaiPerkiraanSendiri }},
	{"nilai_kontrak_awal", func(k model.Contract) int64 { return k.NilaiKontrakAwal }},
	{"nilai_kontrak_akhir", func(k model.Contract) int64 { return k.NilaiKontrakAkhir }},
}

// checkCeiling verifies sum(price × headcount × duration) per contract
// type, for each price field, against the type ceiling.
func checkCeiling(rows []model.Contract) error {
	for _, pf := range priceFields {
		totals := make(map[model.ContractType]int64)
		for _, k := range rows {
			totals[k.JenisKontrak] += k.Total(pf.value(k))
		}
		for jenis, total := range totals {
			if !jenis.Valid() {
				continue
			}
			if total > jenis.MaxPrice() {
				return &CeilingError{
					Field:   pf.name,
					Type:    jenis,
					Total:   total,
					Ceiling: jenis.MaxPrice(),
				}
			}
		}
	}
	return nil
}

// Contracts returns a copy of the contract rows.
func (w *Wizard) Contracts() []model.Contract {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.Contract, len(w.contracts))
	copy(out, w.contracts)
	return out
}

// UpdateContract replaces one row. A contract type change is only accepted
// when the aggregate ceiling still holds with the new type in place.
func (w *Wizard) UpdateContract(index int, k model.Contract) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepContract].Status() == StatusSaved {
		return fmt.Errorf("data kontrak sudah tersimpan, buka mode ubah terlebih dahulu")
	}
	if index < 0 || index >= len(w.contracts) {
		return fmt.Errorf("baris kontrak %d tidak ditemukan", index)
	}
	if k.JenisKontrak != "" && !k.JenisKontrak.Valid() {
		return &ValidationError{
			Summary: fmt.Sprintf("Jenis kontrak %q tidak dikenal", k.JenisKontrak),
			Fields:  map[string]string{fmt.Sprintf("kontrak[%d].jenis_kontrak", index): "jenis tidak dikenal"},
		}
	}

	if k.JenisKontrak != w.contracts[index].JenisKontrak && k.JenisKontrak != "" {
		trial := make([]model.Contract, len(w.contracts))
		copy(trial, w.contracts)
		trial[index] = k
		if err := checkCeiling(trial); err != nil {
			return err
		}
	}

	k.ID = w.contracts[index].ID
	w.contracts[index] = k
	w.steps[StepContract].touched = true
	return w.store.Set(keyContractData, w.contracts)
}

// AddContractRow appends an empty row.
func (w *Wizard) AddContractRow() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepContract].Status() == StatusSaved {
		return fmt.Errorf("data kontrak sudah tersimpan, buka mode ubah terlebih dahulu")
	}
	w.contracts = append(w.contracts, model.Contract{})
	return w.store.Set(keyContractData, w.contracts)
}

// RemoveContractRow drops one row, deleting it upstream first when it was
// already committed (possible while editing).
func (w *Wizard) RemoveContractRow(ctx context.Context, index int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepContract].Status() == StatusSaved {
		return fmt.Errorf("data kontrak sudah tersimpan, buka mode ubah terlebih dahulu")
	}
	if index < 0 || index >= len(w.contracts) {
		return fmt.Errorf("baris kontrak %d tidak ditemukan", index)
	}
	if len(w.contracts) == 1 {
		return fmt.Errorf("minimal satu kontrak diperlukan")
	}

	if id := w.contracts[index].ID; id != "" {
		if err := w.api.DeleteContract(ctx, id); err != nil {
			return err
		}
	}

	w.contracts = append(w.contracts[:index], w.contracts[index+1:]...)
	return w.persistContractsLocked()
}

// SubmitContracts validates every row and the ceiling invariant, then
// commits the rows sequentially, one call per row, in order. The loop
// stops at the first failure; rows committed before it keep their
// identifiers, rows after it are never attempted. Results carry one entry
// per attempted row.
func (w *Wizard) SubmitContracts(ctx context.Context) ([]SubmitResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepContract].Status() == StatusSaved {
		return nil, fmt.Errorf("data kontrak sudah tersimpan")
	}

	fields := make(map[string]string)
	for i, k := range w.contracts {
		if !k.JenisKontrak.Valid() {
			fields[fmt.Sprintf("kontrak[%d].jenis_kontrak", i)] = "jenis tidak dikenal"
		}
		for key, v := range checkRecord(k, fmt.Sprintf("kontrak[%d].", i)) {
			fields[key] = v
		}
	}
	if err := validationError(fields); err != nil {
		return nil, err
	}
	if err := checkCeiling(w.contracts); err != nil {
		return nil, err
	}

	results := make([]SubmitResult, 0, len(w.contracts))
	for i := range w.contracts {
		res := SubmitResult{Index: i, ID: w.contracts[i].ID}
		if w.contracts[i].ID == "" {
			id, err := w.api.AddContract(ctx, &w.contracts[i])
			if err != nil {
				res.Err = err
				results = append(results, res)
				// Rows 0..i-1 are already committed upstream; keep their ids.
				if perr := w.persistContractRowsLocked(); perr != nil {
					logger.Error(ctx, "failed to persist partial contract ids", "error", perr)
				}
				return results, fmt.Errorf("gagal menyimpan kontrak baris %d: %w", i+1, err)
			}
			w.contracts[i].ID = id
			res.ID = id
		} else {
			if err := w.api.UpdateContract(ctx, &w.contracts[i]); err != nil {
				res.Err = err
				results = append(results, res)
				if perr := w.persistContractRowsLocked(); perr != nil {
					logger.Error(ctx, "failed to persist partial contract ids", "error", perr)
				}
				return results, fmt.Errorf("gagal memperbarui kontrak baris %d: %w", i+1, err)
			}
		}
		results = append(results, res)
	}

	w.steps[StepContract].Saved = true
	w.steps[StepContract].EditMode = false
	if err := w.persistContractsLocked(); err != nil {
		return results, err
	}

	logger.Info(ctx, "contracts committed", "count", len(w.contracts))
	w.setNoticeLocked("Data kontrak berhasil disimpan")
	return results, nil
}

// EditContracts re-opens the whole collection for editing.
func (w *Wizard) EditContracts() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.steps[StepContract].Saved {
		return fmt.Errorf("data kontrak belum tersimpan")
	}
	w.steps[StepContract].EditMode = true
	return w.store.Set(keyContractEdit, true)
}

// persistContractRowsLocked writes the rows and identifiers without
// touching the flags. Used after a partial sequential failure.
func (w *Wizard) persistContractRowsLocked() error {
	if err := w.store.Set(keyContractData, w.contracts); err != nil {
		return err
	}
	ids := make([]string, len(w.contracts))
	for i, k := range w.contracts {
		ids[i] = k.ID
	}
	return w.store.Set(keyContractIDs, ids)
}

// persistContractsLocked writes the post-submit state in resume order:
// record set, flags, then identifiers.
func (w *Wizard) persistContractsLocked() error {
	if err := w.store.Set(keyContractData, w.contracts); err != nil {
		return err
	}
	if err := w.store.Set(keyContractSaved, w.steps[StepContract].Saved); err != nil {
		return err
	}
	if err := w.store.Set(keyContractEdit, w.steps[StepContract].EditMode); err != nil {
		return err
	}
	ids := make([]string, len(w.contracts))
	for i, k := range w.contracts {
		ids[i] = k.ID
	}
	return w.store.Set(keyContractIDs, ids)
}
