package wizard

import (
	"context"
	"fmt"

	"github.com/matahariann/kontrakgen/model"
	"github.com/matahariann/kontrakgen/pkg/logger"
)

// Document returns a copy of the document draft.
func (w *Wizard) Document() model.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.document
}

// UpdateDocument replaces the document draft and persists it.
func (w *Wizard) UpdateDocument(d model.Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepDocument].Status() == StatusSaved {
		return fmt.Errorf("data dokumen sudah tersimpan, buka mode ubah terlebih dahulu")
	}

	d.ID = w.document.ID
	w.document = d
	w.steps[StepDocument].touched = true
	return w.store.Set(keyDocumentData, w.document)
}

// SubmitDocument validates and commits the umbrella record: created on the
// first successful submit, updated thereafter.
func (w *Wizard) SubmitDocument(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.steps[StepDocument].Status() == StatusSaved {
		return fmt.Errorf("data dokumen sudah tersimpan")
	}

	if err := validationError(checkRecord(w.document, "")); err != nil {
		return err
	}

	if w.document.ID == "" {
		id, err := w.api.AddDocument(ctx, &w.document)
		if err != nil {
			return err
		}
		w.document.ID = id
	} else {
		if err := w.api.UpdateDocument(ctx, &w.document); err != nil {
			return err
		}
	}

	w.steps[StepDocument].Saved = true
	w.steps[StepDocument].EditMode = false
	if err := w.persistDocumentLocked(); err != nil {
		return err
	}

	logger.Info(ctx, "document committed", "document_id", w.document.ID)
	w.setNoticeLocked("Data dokumen berhasil disimpan")
	return nil
}

// EditDocument re-opens the committed document for editing.
func (w *Wizard) EditDocument() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.steps[StepDocument].Saved {
		return fmt.Errorf("data dokumen belum tersimpan")
	}
	w.steps[StepDocument].EditMode = true
	return w.store.Set(keyDocumentEdit, true)
}

func (w *Wizard) persistDocumentLocked() error {
	if err := w.store.Set(keyDocumentData, w.document); err != nil {
		return err
	}
	if err := w.store.Set(keyDocumentSaved, w.steps[StepDocument].Saved); err != nil {
		return err
	}
	if err := w.store.Set(keyDocumentEdit, w.steps[StepDocument].EditMode); err != nil {
		return err
	}
	return w.store.Set(keyDocumentID, w.document.ID)
}
