package model

// ContractType enumerates the procurement contract categories.
type ContractType string

const (
	TypeKonsultan   ContractType = "Konsultan"
	TypeBarang      ContractType = "Barang"
	TypeKonstruksi  ContractType = "Konstruksi"
	TypeJasaLainnya ContractType = "Jasa Lainnya"
)

// ContractTypes lists every valid contract type, in display order.
var ContractTypes = []ContractType{TypeKonsultan, TypeBarang, TypeKonstruksi, TypeJasaLainnya}

// Valid reports whether t is one of the known contract types.
func (t ContractType) Valid() bool {
	for _, ct := range ContractTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// MaxPrice returns the aggregate value ceiling for the contract type.
// The ceiling applies to sum(price × headcount × duration) across all
// contracts of a document, for each price field independently.
func (t ContractType) MaxPrice() int64 {
	if t == TypeKonsultan {
		return 100_000_000
	}
	return 200_000_000
}

// Vendor holds the identity and bank data of the contracted vendor.
type Vendor struct {
	ID            string `json:"id,omitempty"`
	NamaVendor    string `json:"nama_vendor" validate:"required"`
	AlamatVendor  string `json:"alamat_vendor" validate:"required"`
	NamaPj        string `json:"nama_pj" validate:"required"`
	JabatanPj     string `json:"jabatan_pj" validate:"required"`
	NPWP          string `json:"npwp" validate:"required"`
	NamaBank      string `json:"bank_vendor" validate:"required"`
	NomorRekening string `json:"norek_vendor" validate:"required"`
	NamaRekening  string `json:"nama_rek_vendor" validate:"required"`
}

// Official is a role holder attached to a tenure period. The same NIP may
// reappear across periods, but never twice within one submission.
type Official struct {
	ID             string `json:"id,omitempty"`
	NIP            string `json:"nip" validate:"required"`
	Nama           string `json:"nama" validate:"required"`
	Jabatan        string `json:"jabatan" validate:"required"`
	PeriodeJabatan string `json:"periode_jabatan" validate:"required"`
}

// Document is the umbrella record of one contract-generation session: the
// administrative letter numbers and dates for each procurement milestone,
// plus the work package description and budget year. Dates are stored as
// entered, in "2006-01-02" form.
type Document struct {
	ID             string `json:"id,omitempty"`
	NomorKontrak   string `json:"nomor_kontrak" validate:"required"`
	TanggalKontrak string `json:"tanggal_kontrak" validate:"required"`
	PaketPekerjaan string `json:"paket_pekerjaan" validate:"required"`
	TahunAnggaran  string `json:"tahun_anggaran" validate:"required"`

	NomorDIPA   string `json:"nomor_dipa" validate:"required"`
	TanggalDIPA string `json:"tanggal_dipa" validate:"required"`

	NomorSuratPermintaanPenawaran   string `json:"nomor_pp" validate:"required"`
	TanggalSuratPermintaanPenawaran string `json:"tanggal_pp" validate:"required"`

	NomorSuratPenawaran   string `json:"nomor_penawaran" validate:"required"`
	TanggalSuratPenawaran string `json:"tanggal_penawaran" validate:"required"`

	NomorBeritaAcaraEvaluasi   string `json:"nomor_ba_ekn" validate:"required"`
	TanggalBeritaAcaraEvaluasi string `json:"tanggal_ba_ekn" validate:"required"`

	NomorBeritaAcaraNegosiasi   string `json:"nomor_ba_nego" validate:"required"`
	TanggalBeritaAcaraNegosiasi string `json:"tanggal_ba_nego" validate:"required"`

	NomorSPPBJ   string `json:"nomor_pppbj" validate:"required"`
	TanggalSPPBJ string `json:"tanggal_pppbj" validate:"required"`

	NomorSPMK   string `json:"nomor_spmk" validate:"required"`
	TanggalSPMK string `json:"tanggal_spmk" validate:"required"`

	TanggalMulaiPekerjaan   string `json:"tanggal_mulai" validate:"required"`
	TanggalSelesaiPekerjaan string `json:"tanggal_selesai" validate:"required"`

	NomorBAPP   string `json:"nomor_bapp" validate:"required"`
	TanggalBAPP string `json:"tanggal_bapp" validate:"required"`

	NomorBAST   string `json:"nomor_ba_stp" validate:"required"`
	TanggalBAST string `json:"tanggal_ba_stp" validate:"required"`

	NomorBAP   string `json:"nomor_ba_pem" validate:"required"`
	TanggalBAP string `json:"tanggal_ba_pem" validate:"required"`
}

// Contract is one work item under a document. All prices are rupiah with
// zero decimal digits, so int64 arithmetic is exact.
type Contract struct {
	ID                    string       `json:"id,omitempty"`
	JenisKontrak          ContractType `json:"jenis_kontrak" validate:"required"`
	Deskripsi             string       `json:"deskripsi" validate:"required"`
	JumlahOrang           int64        `json:"jumlah_orang" validate:"required,gt=0"`
	DurasiKontrak         int64        `json:"durasi_kontrak" validate:"required,gt=0"`
	NilaiPerkiraanSendiri int64        `json:"nilai_perkiraan_sendiri" validate:"required,gt=0"`
	NilaiKontrakAwal      int64        `json:"nilai_kontrak_awal" validate:"required,gt=0"`
	NilaiKontrakAkhir     int64        `json:"nilai_kontrak_akhir" validate:"required,gt=0"`
}

// Total returns price × headcount × duration for one row.
func (k Contract) Total(price int64) int64 {
	return price * k.JumlahOrang * k.DurasiKontrak
}
