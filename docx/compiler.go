package docx

import (
	"fmt"
	"strconv"

	"github.com/matahariann/kontrakgen/model"
	"github.com/matahariann/kontrakgen/pkg/format"
)

// Snapshot is the read-only aggregate of a finished wizard session. The
// compiler never mutates it.
type Snapshot struct {
	Vendor    model.Vendor
	Officials []model.Official
	Document  model.Document
	Contracts []model.Contract
	// Organization name lines for the running header.
	Organization []string
}

// Compile builds the full document tree from the snapshot and the
// letterhead image. Any missing required input aborts compilation; no
// output is produced.
func Compile(snap Snapshot, letterhead []byte) (*Document, error) {
	if len(letterhead) == 0 {
		return nil, fmt.Errorf("logo kop surat tidak ditemukan")
	}
	if snap.Vendor.NamaVendor == "" {
		return nil, fmt.Errorf("data vendor belum lengkap")
	}
	if snap.Document.NomorKontrak == "" || snap.Document.PaketPekerjaan == "" {
		return nil, fmt.Errorf("data dokumen belum lengkap")
	}
	if len(snap.Contracts) == 0 {
		return nil, fmt.Errorf("data kontrak kosong")
	}
	if len(snap.Officials) == 0 {
		return nil, fmt.Errorf("data pejabat kosong")
	}

	coverEmblem, err := prepareEmblem(letterhead, coverEmblemPx)
	if err != nil {
		return nil, err
	}
	headerEmblem, err := prepareEmblem(letterhead, headerEmblemPx)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Header: Header{Emblem: headerEmblem, Lines: snap.Organization},
	}
	doc.Cover = coverSection(snap, coverEmblem)
	doc.Body = bodySection(snap)
	return doc, nil
}

func coverSection(snap Snapshot, emblem *Image) []Paragraph {
	ppk := findOfficial(snap.Officials, "Pejabat Pembuat Komitmen")

	cover := []Paragraph{
		blank(),
		{Align: AlignCenter, Image: emblem},
		blank(),
		boldLine(AlignCenter, "SURAT PERINTAH KERJA", 16),
		boldLine(AlignCenter, "NOMOR: "+snap.Document.NomorKontrak, 12),
		blank(),
		line(AlignCenter, "PAKET PEKERJAAN"),
		boldLine(AlignCenter, snap.Document.PaketPekerjaan, 12),
		blank(),
		line(AlignCenter, "ANTARA"),
		boldLine(AlignCenter, ppk.Nama, 12),
		line(AlignCenter, ppk.Jabatan),
		blank(),
		line(AlignCenter, "DENGAN"),
		boldLine(AlignCenter, snap.Vendor.NamaVendor, 12),
		line(AlignCenter, snap.Vendor.AlamatVendor),
		blank(),
		boldLine(AlignCenter, "TAHUN ANGGARAN "+snap.Document.TahunAnggaran, 12),
	}
	return cover
}

func bodySection(snap Snapshot) []Paragraph {
	var body []Paragraph
	add := func(p Paragraph) { body = append(body, p) }

	add(boldLine(AlignCenter, "SURAT PERINTAH KERJA (SPK)", 14))
	add(line(AlignCenter, "Nomor: "+snap.Document.NomorKontrak))
	add(line(AlignCenter, "Tanggal: "+format.TanggalString(snap.Document.TanggalKontrak)))
	add(blank())

	add(boldLine(AlignLeft, "I. DATA PENYEDIA", 12))
	v := snap.Vendor
	for _, ln := range []string{
		"Nama Penyedia: " + v.NamaVendor,
		"Alamat: " + v.AlamatVendor,
		"Penanggung Jawab: " + v.NamaPj + " (" + v.JabatanPj + ")",
		"NPWP: " + v.NPWP,
		"Bank: " + v.NamaBank,
		"Nomor Rekening: " + v.NomorRekening + " a.n. " + v.NamaRekening,
	} {
		add(line(AlignLeft, ln))
	}
	add(blank())

	add(boldLine(AlignLeft, "II. RINCIAN PEKERJAAN", 12))
	for i, k := range snap.Contracts {
		add(boldLine(AlignLeft, fmt.Sprintf("Pekerjaan %d: %s", i+1, k.JenisKontrak), 0))
		for _, ln := range []string{
			"Uraian: " + k.Deskripsi,
			"Jumlah Tenaga: " + strconv.FormatInt(k.JumlahOrang, 10) + " orang",
			"Jangka Waktu: " + strconv.FormatInt(k.DurasiKontrak, 10) + " bulan",
			"Nilai Perkiraan Sendiri: " + format.Rupiah(k.NilaiPerkiraanSendiri),
			"Nilai Kontrak Awal: " + format.Rupiah(k.NilaiKontrakAwal),
			"Nilai Kontrak Akhir: " + format.Rupiah(k.NilaiKontrakAkhir),
		} {
			add(line(AlignLeft, ln))
		}
		add(blank())
	}

	add(boldLine(AlignLeft, "III. DASAR PELAKSANAAN", 12))
	d := snap.Document
	refs := []struct {
		label string
		nomor string
		tgl   string
	}{
		{"DIPA", d.NomorDIPA, d.TanggalDIPA},
		{"Surat Permintaan Penawaran", d.NomorSuratPermintaanPenawaran, d.TanggalSuratPermintaanPenawaran},
		{"Surat Penawaran", d.NomorSuratPenawaran, d.TanggalSuratPenawaran},
		{"Berita Acara Evaluasi, Klarifikasi, dan Negosiasi", d.NomorBeritaAcaraEvaluasi, d.TanggalBeritaAcaraEvaluasi},
		{"Berita Acara Hasil Negosiasi", d.NomorBeritaAcaraNegosiasi, d.TanggalBeritaAcaraNegosiasi},
		{"Surat Penunjukan Penyedia Barang/Jasa", d.NomorSPPBJ, d.TanggalSPPBJ},
		{"Surat Perintah Mulai Kerja", d.NomorSPMK, d.TanggalSPMK},
		{"Berita Acara Penyelesaian Pekerjaan", d.NomorBAPP, d.TanggalBAPP},
		{"Berita Acara Serah Terima Pekerjaan", d.NomorBAST, d.TanggalBAST},
		{"Berita Acara Pembayaran", d.NomorBAP, d.TanggalBAP},
	}
	for _, ref := range refs {
		if ref.nomor == "" {
			continue
		}
		add(line(AlignLeft, fmt.Sprintf("%s Nomor %s tanggal %s", ref.label, ref.nomor, format.TanggalString(ref.tgl))))
	}
	add(line(AlignLeft, fmt.Sprintf("Pelaksanaan pekerjaan %s sampai dengan %s",
		format.TanggalString(d.TanggalMulaiPekerjaan), format.TanggalString(d.TanggalSelesaiPekerjaan))))
	add(blank())

	add(boldLine(AlignLeft, "IV. PEJABAT", 12))
	for _, o := range snap.Officials {
		add(line(AlignLeft, fmt.Sprintf("%s (NIP %s) - %s, Periode %s", o.Nama, o.NIP, o.Jabatan, o.PeriodeJabatan)))
	}

	return body
}

func findOfficial(officials []model.Official, jabatan string) model.Official {
	for _, o := range officials {
		if o.Jabatan == jabatan {
			return o
		}
	}
	if len(officials) > 0 {
		return officials[0]
	}
	return model.Official{}
}
