package wizard

import (
	"context"
	"fmt"

	"github.com/matahariann/kontrakgen/docx"
	"github.com/matahariann/kontrakgen/pkg/format"
	"github.com/matahariann/kontrakgen/pkg/logger"
)

// MsgGenerateFailed prefixes every generation error shown to the user.
const MsgGenerateFailed = "Gagal membuat dokumen"

// GenerateWarning is shown before generation is confirmed. Generation is
// destructive: it ends the session and clears the persisted draft state.
const GenerateWarning = "Membuat dokumen akan mengakhiri sesi dan menghapus data sementara. Pastikan semua data sudah benar sebelum melanjutkan."

// Generate compiles the finished session into a document file. All four
// steps must be committed and closed for editing. The session is cleared
// only after the file bytes exist; any failure leaves the persisted state
// untouched.
func (w *Wizard) Generate(ctx context.Context, filename string) (string, []byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for s := StepVendor; s <= StepContract; s++ {
		if !w.canAdvanceLocked(s) {
			return "", nil, fmt.Errorf("%s: data %s belum tersimpan", MsgGenerateFailed, s)
		}
	}

	letterhead, err := w.api.ShowImage(ctx, w.opts.EmblemImageID)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", MsgGenerateFailed, err)
	}

	snap := docx.Snapshot{
		Vendor:       w.vendor,
		Officials:    w.officials,
		Document:     w.document,
		Contracts:    w.contracts,
		Organization: w.opts.Organization,
	}

	doc, err := docx.Compile(snap, letterhead)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", MsgGenerateFailed, err)
	}

	data, err := doc.Bytes()
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", MsgGenerateFailed, err)
	}

	name := format.SanitizeFilename(filename) + ".docx"

	// The file exists in memory; only now is the destructive clear safe.
	if err := w.resetLocked(); err != nil {
		logger.Error(ctx, "failed to clear session after generation", "error", err)
	}

	logger.Info(ctx, "document generated", "filename", name, "size_bytes", len(data))
	return name, data, nil
}
