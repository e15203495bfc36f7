package wizard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/matahariann/kontrakgen/model"
)

func TestCheckCeiling(t *testing.T) {
	tests := []struct {
		name    string
		rows    []model.Contract
		wantErr bool
	}{
		{
			name: "konsultan at the ceiling",
			rows: []model.Contract{
				{JenisKontrak: model.TypeKonsultan, JumlahOrang: 1, DurasiKontrak: 1,
					NilaiPerkiraanSendiri: 100_000_000, NilaiKontrakAwal: 100_000_000, NilaiKontrakAkhir: 100_000_000},
			},
		},
		{
			name: "konsultan multiplied over the ceiling",
			rows: []model.Contract{
				{JenisKontrak: model.TypeKonsultan, JumlahOrang: 2, DurasiKontrak: 6,
					NilaiPerkiraanSendiri: 10_000_000, NilaiKontrakAwal: 10_000_000, NilaiKontrakAkhir: 10_000_000},
			},
			wantErr: true,
		},
		{
			name: "sum across rows of one type",
			rows: []model.Contract{
				{JenisKontrak: model.TypeBarang, JumlahOrang: 1, DurasiKontrak: 1,
					NilaiPerkiraanSendiri: 150_000_000, NilaiKontrakAwal: 150_000_000, NilaiKontrakAkhir: 150_000_000},
				{JenisKontrak: model.TypeBarang, JumlahOrang: 1, DurasiKontrak: 1,
					NilaiPerkiraanSendiri: 60_000_000, NilaiKontrakAwal: 60_000_000, NilaiKontrakAkhir: 60_000_000},
			},
			wantErr: true,
		},
		{
			name: "different types counted separately",
			rows: []model.Contract{
				{JenisKontrak: model.TypeBarang, JumlahOrang: 1, DurasiKontrak: 1,
					NilaiPerkiraanSendiri: 150_000_000, NilaiKontrakAwal: 150_000_000, NilaiKontrakAkhir: 150_000_000},
				{JenisKontrak: model.TypeKonstruksi, JumlahOrang: 1, DurasiKontrak: 1,
					NilaiPerkiraanSendiri: 150_000_000, NilaiKontrakAwal: 150_000_000, NilaiKontrakAkhir: 150_000_000},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkCeiling(tt.rows)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkCeiling() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubmitContractsCeilingBlocksBeforeNetwork(t *testing.T) {
	b := newFakeBackend(t)
	st, _ := newTestStore(t)
	w := newTestWizard(t, b, st)

	// The type is set while the values are still small, then the values
	// grow: 2 people × 6 months × Rp10.000.000 = Rp120.000.000, over the
	// Rp100.000.000 consultant ceiling. Only submit sees the final sums.
	if err := w.UpdateContract(0, validContract(model.TypeKonsultan, 1_000)); err != nil {
		t.Fatalf("UpdateContract: %v", err)
	}
	k := validContract(model.TypeKonsultan, 10_000_000)
	k.JumlahOrang = 2
	k.DurasiKontrak = 6
	if err := w.UpdateContract(0, k); err != nil {
		t.Fatalf("UpdateContract with raised values: %v", err)
	}

	results, err := w.SubmitContracts(context.Background())
	var cerr *CeilingError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want CeilingError", err)
	}
	if results != nil {
		t.Fatalf("results = %v, want nil before any call", results)
	}
	msg := err.Error()
	if !strings.Contains(msg, "Konsultan") {
		t.Errorf("message %q does not name the contract type", msg)
	}
	if !strings.Contains(msg, "Rp100.000.000") {
		t.Errorf("message %q does not name the formatted ceiling", msg)
	}
	if got := b.callCount(); got != 0 {
		t.Fatalf("backend received %d calls, want 0", got)
	}
	if got := w.StepState(StepContract).Status(); got != StatusDraft {
		t.Fatalf("status = %q, want %q", got, StatusDraft)
	}
}

func TestSubmitContractsSequentialOrder(t *testing.T) {
	b := newFakeBackend(t)
	n := 0
	b.on("POST /add-contract", func(w http.ResponseWriter, r *http.Request) {
		n++
		writeEnvelope(w, http.StatusOK, "ok", map[string]string{"id": fmt.Sprintf("kon-%d", n)})
	})
	st, _ := newTestStore(t)
	w := newTestWizard(t, b, st)

	if err := w.UpdateContract(0, validContract(model.TypeBarang, 5_000_000)); err != nil {
		t.Fatalf("UpdateContract(0): %v", err)
	}
	if err := w.AddContractRow(); err != nil {
		t.Fatalf("AddContractRow: %v", err)
	}
	if err := w.UpdateContract(1, validContract(model.TypeJasaLainnya, 7_000_000)); err != nil {
		t.Fatalf("UpdateContract(1): %v", err)
	}

	results, err := w.SubmitContracts(context.Background())
	if err != nil {
		t.Fatalf("SubmitContracts: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].ID != "kon-1" || results[1].ID != "kon-2" {
		t.Fatalf("assigned ids = %q, %q", results[0].ID, results[1].ID)
	}
	if got := w.StepState(StepContract).Status(); got != StatusSaved {
		t.Fatalf("status = %q, want %q", got, StatusSaved)
	}
}

func TestSubmitContractsFailFastKeepsCommittedRows(t *testing.T) {
	b := newFakeBackend(t)
	n := 0
	b.on("POST /add-contract", func(w http.ResponseWriter, r *http.Request) {
		n++
		if n == 2 {
			writeEnvelope(w, http.StatusInternalServerError, "kontrak ditolak", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "ok", map[string]string{"id": "kon-ok"})
	})
	st, _ := newTestStore(t)
	w := newTestWizard(t, b, st)

	if err := w.UpdateContract(0, validContract(model.TypeBarang, 1_000_000)); err != nil {
		t.Fatalf("UpdateContract(0): %v", err)
	}
	for i := 1; i <= 2; i++ {
		if err := w.AddContractRow(); err != nil {
			t.Fatalf("AddContractRow: %v", err)
		}
		if err := w.UpdateContract(i, validContract(model.TypeBarang, 1_000_000)); err != nil {
			t.Fatalf("UpdateContract(%d): %v", i, err)
		}
	}

	results, err := w.SubmitContracts(context.Background())
	if err == nil {
		t.Fatal("SubmitContracts should fail on the second row")
	}
	if !strings.Contains(err.Error(), "baris 2") {
		t.Fatalf("error %q does not name the failing row", err)
	}
	if n != 2 {
		t.Fatalf("backend saw %d adds, want 2 (third row never attempted)", n)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 attempted rows", len(results))
	}
	if results[0].Err != nil || results[0].ID != "kon-ok" {
		t.Fatalf("first result = %+v, want committed", results[0])
	}
	if results[1].Err == nil {
		t.Fatal("second result should carry the row error")
	}

	// The committed first row keeps its id so a retry updates it in place.
	if got := w.Contracts()[0].ID; got != "kon-ok" {
		t.Fatalf("first row id = %q, want kon-ok", got)
	}
	var ids []string
	if !st.Get("saved_contract_ids", &ids) || ids[0] != "kon-ok" {
		t.Fatalf("persisted ids = %v", ids)
	}
	if st.GetBool("is_contract_saved") {
		t.Fatal("step marked saved despite partial failure")
	}
}

func TestUpdateContractTypeChangeChecksCeiling(t *testing.T) {
	b := newFakeBackend(t)
	st, _ := newTestStore(t)
	w := newTestWizard(t, b, st)

	// Fine as Barang (ceiling 200M), over the line as Konsultan (100M).
	k := validContract(model.TypeBarang, 150_000_000)
	if err := w.UpdateContract(0, k); err != nil {
		t.Fatalf("UpdateContract: %v", err)
	}

	k.JenisKontrak = model.TypeKonsultan
	err := w.UpdateContract(0, k)
	var cerr *CeilingError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want CeilingError", err)
	}
	if got := w.Contracts()[0].JenisKontrak; got != model.TypeBarang {
		t.Fatalf("rejected type change applied anyway: %q", got)
	}
}

func TestRemoveContractRowBounds(t *testing.T) {
	b := newFakeBackend(t)
	st, _ := newTestStore(t)
	w := newTestWizard(t, b, st)

	if err := w.RemoveContractRow(context.Background(), 0); err == nil {
		t.Fatal("removing the last row should fail")
	}
	if err := w.AddContractRow(); err != nil {
		t.Fatalf("AddContractRow: %v", err)
	}
	if err := w.RemoveContractRow(context.Background(), 1); err != nil {
		t.Fatalf("RemoveContractRow: %v", err)
	}
	if got := len(w.Contracts()); got != 1 {
		t.Fatalf("rows = %d, want 1", got)
	}
}
