package wizard

import (
	"context"
	"fmt"

	"github.com/matahariann/kontrakgen/model"
	"github.com/matahariann/kontrakgen/pkg/logger"
)

// Vendor returns a copy of the vendor draft.
func (w *Wizard) Vendor() model.Vendor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.vendor
}

// UpdateVendor replaces the vendor draft and persists it immediately.
// Rejected while the step is committed and not re-opened for editing.
func (w *Wizard) UpdateVendor(v model.Vendor) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepVendor].Status() == StatusSaved {
		return fmt.Errorf("data vendor sudah tersimpan, buka mode ubah terlebih dahulu")
	}

	v.ID = w.vendor.ID
	w.vendor = v
	w.steps[StepVendor].touched = true
	return w.store.Set(keyVendorData, w.vendor)
}

// SubmitVendor validates the draft, commits it upstream, and marks the
// step Saved. On failure the step state is unchanged.
func (w *Wizard) SubmitVendor(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepVendor].Status() == StatusSaved {
		return fmt.Errorf("data vendor sudah tersimpan")
	}

	if err := validationError(checkRecord(w.vendor, "")); err != nil {
		return err
	}

	if w.vendor.ID == "" {
		id, err := w.api.AddVendor(ctx, &w.vendor)
		if err != nil {
			return err
		}
		w.vendor.ID = id
	} else {
		if err := w.api.UpdateVendor(ctx, &w.vendor); err != nil {
			return err
		}
	}

	w.steps[StepVendor].Saved = true
	w.steps[StepVendor].EditMode = false

	// Persist order matters for resume: record, flags, identifier.
	if err := w.persistVendorLocked(); err != nil {
		return err
	}

	logger.Info(ctx, "vendor committed", "vendor_id", w.vendor.ID)
	w.setNoticeLocked("Data vendor berhasil disimpan")
	return nil
}

// EditVendor re-opens a committed vendor for editing. Calling it again
// while already editing changes nothing.
func (w *Wizard) EditVendor() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.steps[StepVendor].Saved {
		return fmt.Errorf("data vendor belum tersimpan")
	}
	w.steps[StepVendor].EditMode = true
	return w.store.Set(keyVendorEdit, true)
}

// CancelVendor deletes the committed vendor upstream and drops the step
// back to Draft, keeping the entered values for immediate re-submission.
func (w *Wizard) CancelVendor(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.vendor.ID != "" {
		if err := w.api.DeleteVendor(ctx, w.vendor.ID); err != nil {
			return err
		}
	}

	w.vendor.ID = ""
	w.steps[StepVendor].Saved = false
	w.steps[StepVendor].EditMode = false
	return w.persistVendorLocked()
}

func (w *Wizard) persistVendorLocked() error {
	if err := w.store.Set(keyVendorData, w.vendor); err != nil {
		return err
	}
	if err := w.store.Set(keyVendorSaved, w.steps[StepVendor].Saved); err != nil {
		return err
	}
	if err := w.store.Set(keyVendorEdit, w.steps[StepVendor].EditMode); err != nil {
		return err
	}
	return w.store.Set(keyVendorID, w.vendor.ID)
}
