// Package wizard drives the four-step contract document flow: vendor,
// officials, document data, contracts. Each step commits to the upstream
// backend before the next one opens, and every state change is written
// through to the persisted field store so a restart resumes exactly where
// the user left off.
package wizard

import (
	"fmt"
	"sync"
	"time"

	"github.com/matahariann/kontrakgen/client"
	"github.com/matahariann/kontrakgen/model"
	"github.com/matahariann/kontrakgen/store"
)

// Step indexes one wizard screen.
type Step int

const (
	StepVendor Step = iota
	StepOfficial
	StepDocument
	StepContract

	stepCount = 4
)

func (s Step) String() string {
	switch s {
	case StepVendor:
		return "vendor"
	case StepOfficial:
		return "pejabat"
	case StepDocument:
		return "dokumen"
	case StepContract:
		return "kontrak"
	}
	return "unknown"
}

// Status is the derived commit state of a step.
type Status string

const (
	StatusEmpty   Status = "empty"
	StatusDraft   Status = "draft"
	StatusSaved   Status = "saved"
	StatusEditing Status = "editing"
)

// StepState carries the two persisted flags of one step. Status is derived:
// Saved+EditMode means the step was re-opened for editing.
type StepState struct {
	Saved    bool `json:"saved"`
	EditMode bool `json:"edit_mode"`
	touched  bool
}

func (st StepState) Status() Status {
	switch {
	case st.Saved && st.EditMode:
		return StatusEditing
	case st.Saved:
		return StatusSaved
	case st.touched:
		return StatusDraft
	}
	return StatusEmpty
}

// Notice is a transient success message with an expiry.
type Notice struct {
	Text  string    `json:"text"`
	Until time.Time `json:"until"`
}

const noticeLifetime = 3 * time.Second

// Persisted field store keys, one slot per piece of wizard state.
const (
	keyCurrentStep = "current_step"

	keyVendorData  = "vendor_data"
	keyVendorSaved = "is_vendor_saved"
	keyVendorEdit  = "is_vendor_edit_mode"
	keyVendorID    = "saved_vendor_id"

	keyOfficialData  = "official_data"
	keyOfficialSaved = "is_official_saved"
	keyOfficialEdit  = "is_official_edit_mode"
	keyOfficialIDs   = "saved_official_ids"
	keyPeriode       = "selected_periode"

	keyDocumentData  = "document_data"
	keyDocumentSaved = "is_document_saved"
	keyDocumentEdit  = "is_document_edit_mode"
	keyDocumentID    = "saved_document_id"

	keyContractData  = "contract_data"
	keyContractSaved = "is_contract_saved"
	keyContractEdit  = "is_contract_edit_mode"
	keyContractIDs   = "saved_contract_ids"
)

// wizardKeys lists every slot cleared on reset. The login token is not a
// wizard slot and survives.
var wizardKeys = []string{
	keyCurrentStep,
	keyVendorData, keyVendorSaved, keyVendorEdit, keyVendorID,
	keyOfficialData, keyOfficialSaved, keyOfficialEdit, keyOfficialIDs, keyPeriode,
	keyDocumentData, keyDocumentSaved, keyDocumentEdit, keyDocumentID,
	keyContractData, keyContractSaved, keyContractEdit, keyContractIDs,
}

// Options carries the fixed letterhead inputs of document generation.
type Options struct {
	// EmblemImageID is fetched from the backend at generation time.
	EmblemImageID string
	// Organization lines shown in the running header under the emblem.
	Organization []string
}

// Wizard owns the whole session. All methods are serialized on one mutex;
// there is no other mutation path.
type Wizard struct {
	store *store.Store
	api   *client.Client
	opts  Options

	mu        sync.Mutex
	step      Step
	steps     [stepCount]StepState
	vendor    model.Vendor
	officials []model.Official
	periode   string
	document  model.Document
	contracts []model.Contract
	notice    *Notice
}

// New builds a wizard resumed from whatever the store holds. A fresh store
// yields a blank session at the vendor step.
func New(st *store.Store, api *client.Client, opts Options) *Wizard {
	w := &Wizard{
		store: st,
		api:   api,
		opts:  opts,
	}
	w.resume()
	return w
}

// resume reconstructs the exact post-submit state from the store.
func (w *Wizard) resume() {
	w.step = Step(w.store.GetInt(keyCurrentStep, 0))
	if w.step < StepVendor || w.step > StepContract {
		w.step = StepVendor
	}

	if w.store.Get(keyVendorData, &w.vendor) {
		w.steps[StepVendor].touched = true
	}
	w.vendor.ID = w.store.GetString(keyVendorID, w.vendor.ID)
	w.steps[StepVendor].Saved = w.store.GetBool(keyVendorSaved)
	w.steps[StepVendor].EditMode = w.store.GetBool(keyVendorEdit)

	if w.store.Get(keyOfficialData, &w.officials) {
		w.steps[StepOfficial].touched = true
	}
	if len(w.officials) == 0 {
		w.officials = defaultOfficialRows()
	}
	var officialIDs []string
	if w.store.Get(keyOfficialIDs, &officialIDs) {
		for i := range w.officials {
			if i < len(officialIDs) {
				w.officials[i].ID = officialIDs[i]
			}
		}
	}
	w.periode = w.store.GetString(keyPeriode, "")
	w.steps[StepOfficial].Saved = w.store.GetBool(keyOfficialSaved)
	w.steps[StepOfficial].EditMode = w.store.GetBool(keyOfficialEdit)

	if w.store.Get(keyDocumentData, &w.document) {
		w.steps[StepDocument].touched = true
	}
	w.document.ID = w.store.GetString(keyDocumentID, w.document.ID)
	w.steps[StepDocument].Saved = w.store.GetBool(keyDocumentSaved)
	w.steps[StepDocument].EditMode = w.store.GetBool(keyDocumentEdit)

	if w.store.Get(keyContractData, &w.contracts) {
		w.steps[StepContract].touched = true
	}
	if len(w.contracts) == 0 {
		w.contracts = []model.Contract{{}}
	}
	var contractIDs []string
	if w.store.Get(keyContractIDs, &contractIDs) {
		for i := range w.contracts {
			if i < len(contractIDs) {
				w.contracts[i].ID = contractIDs[i]
			}
		}
	}
	w.steps[StepContract].Saved = w.store.GetBool(keyContractSaved)
	w.steps[StepContract].EditMode = w.store.GetBool(keyContractEdit)
}

// CurrentStep returns the active step.
func (w *Wizard) CurrentStep() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// StepState returns the commit state of one step.
func (w *Wizard) StepState(s Step) StepState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.steps[s]
}

// CanAdvance reports whether navigation past step s is allowed: the step
// must be committed and not re-opened for editing.
func (w *Wizard) CanAdvance(s Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canAdvanceLocked(s)
}

func (w *Wizard) canAdvanceLocked(s Step) bool {
	return w.steps[s].Saved && !w.steps[s].EditMode
}

// Next moves forward one step. It refuses while the active step is not in
// Saved state, so the backend has durably accepted the data first.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepContract {
		return fmt.Errorf("sudah berada di langkah terakhir")
	}
	if !w.canAdvanceLocked(w.step) {
		return fmt.Errorf("data %s belum tersimpan, simpan terlebih dahulu", w.step)
	}

	w.step++
	return w.store.Set(keyCurrentStep, int(w.step))
}

// Prev moves back one step. Going backward is never gated.
func (w *Wizard) Prev() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step == StepVendor {
		return fmt.Errorf("sudah berada di langkah pertama")
	}
	w.step--
	return w.store.Set(keyCurrentStep, int(w.step))
}

// ActiveNotice returns the current success notice, or nil once expired.
func (w *Wizard) ActiveNotice() *Notice {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.notice == nil || time.Now().After(w.notice.Until) {
		w.notice = nil
		return nil
	}
	n := *w.notice
	return &n
}

func (w *Wizard) setNoticeLocked(text string) {
	w.notice = &Notice{Text: text, Until: time.Now().Add(noticeLifetime)}
}

// Reset clears every wizard slot and returns to a blank first step. The
// login token is kept.
func (w *Wizard) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resetLocked()
}

func (w *Wizard) resetLocked() error {
	if err := w.store.RemoveAll(wizardKeys...); err != nil {
		return err
	}
	w.step = StepVendor
	w.steps = [stepCount]StepState{}
	w.vendor = model.Vendor{}
	w.officials = defaultOfficialRows()
	w.periode = ""
	w.document = model.Document{}
	w.contracts = []model.Contract{{}}
	w.notice = nil
	return nil
}
