package model

import "strings"

// Rows of the submission form. Every variant keeps its line items as a slice
// of rows, so the parallel arrays sent to the backend always have equal length.
type PengadaanRow struct {
	NamaBarang string `json:"nama_barang"`
	TypeModel  string `json:"type_model"`
	Jumlah     int    `json:"jumlah"`
	Keterangan string `json:"keterangan"`
}

type PerbaikanRow struct {
	NamaBarang     string `json:"nama_barang"`
	TypeModel      string `json:"type_model"`
	Jumlah         int    `json:"jumlah"`
	JenisPekerjaan string `json:"jenis_pekerjaan"`
	Lokasi         string `json:"lokasi"`
}

type PeminjamanRow struct {
	Lokasi          string `json:"lokasi"`
	Kegunaan        string `json:"kegunaan"`
	TglPeminjaman   string `json:"tgl_peminjaman"`
	TglPengembalian string `json:"tgl_pengembalian"`
}

// FormRow is a partial row update. Nil fields are left untouched; fields
// that do not belong to the target variant are ignored.
type FormRow struct {
	NamaBarang      *string `json:"nama_barang,omitempty"`
	TypeModel       *string `json:"type_model,omitempty"`
	Jumlah          *int    `json:"jumlah,omitempty"`
	Keterangan      *string `json:"keterangan,omitempty"`
	JenisPekerjaan  *string `json:"jenis_pekerjaan,omitempty"`
	Lokasi          *string `json:"lokasi,omitempty"`
	Kegunaan        *string `json:"kegunaan,omitempty"`
	TglPeminjaman   *string `json:"tgl_peminjaman,omitempty"`
	TglPengembalian *string `json:"tgl_pengembalian,omitempty"`
}

// FormState holds the draft of a single pengajuan across all variants
type FormState struct {
	JenisRequest string
	Keterangan   string
	Pengadaan    []PengadaanRow
	Perbaikan    []PerbaikanRow
	Peminjaman   []PeminjamanRow
}

// NewFormState returns the blank form: pengadaan selected and one empty row
// per variant.
func NewFormState() FormState {
	return FormState{
		JenisRequest: JenisPengadaan,
		Pengadaan:    []PengadaanRow{{Jumlah: 1}},
		Perbaikan:    []PerbaikanRow{{Jumlah: 1}},
		Peminjaman:   []PeminjamanRow{{}},
	}
}

// RowCount reports the number of rows of the given variant
func (f FormState) RowCount(jenis string) int {
	switch jenis {
	case JenisPengadaan:
		return len(f.Pengadaan)
	case JenisPerbaikan:
		return len(f.Perbaikan)
	case JenisPeminjaman:
		return len(f.Peminjaman)
	}
	return 0
}

// FormView is the form as the browser renders it: one array per input column
type FormView struct {
	JenisRequest string `json:"jenis_request"`
	Keterangan   string `json:"keterangan"`

	NamaBarangArray []string `json:"nama_barang_array"`
	TypeModelArray  []string `json:"type_model_array"`
	JumlahArray     []int    `json:"jumlah_array"`
	KeteranganArray []string `json:"keterangan_array"`

	NamaBarangPerbaikanArray []string `json:"nama_barang_perbaikan_array"`
	TypeModelPerbaikanArray  []string `json:"type_model_perbaikan_array"`
	JumlahPerbaikanArray     []int    `json:"jumlah_perbaikan_array"`
	JenisPekerjaanArray      []string `json:"jenis_pekerjaan_array"`
	LokasiPerbaikanArray     []string `json:"lokasi_perbaikan_array"`

	LokasiPeminjamanArray []string `json:"lokasi_peminjaman_array"`
	KegunaanArray         []string `json:"kegunaan_array"`
	TglPeminjamanArray    []string `json:"tgl_peminjaman_array"`
	TglPengembalianArray  []string `json:"tgl_pengembalian_array"`
}

func (f FormState) View() FormView {
	v := FormView{
		JenisRequest:             f.JenisRequest,
		Keterangan:               f.Keterangan,
		NamaBarangArray:          make([]string, 0, len(f.Pengadaan)),
		TypeModelArray:           make([]string, 0, len(f.Pengadaan)),
		JumlahArray:              make([]int, 0, len(f.Pengadaan)),
		KeteranganArray:          make([]string, 0, len(f.Pengadaan)),
		NamaBarangPerbaikanArray: make([]string, 0, len(f.Perbaikan)),
		TypeModelPerbaikanArray:  make([]string, 0, len(f.Perbaikan)),
		JumlahPerbaikanArray:     make([]int, 0, len(f.Perbaikan)),
		JenisPekerjaanArray:      make([]string, 0, len(f.Perbaikan)),
		LokasiPerbaikanArray:     make([]string, 0, len(f.Perbaikan)),
		LokasiPeminjamanArray:    make([]string, 0, len(f.Peminjaman)),
		KegunaanArray:            make([]string, 0, len(f.Peminjaman)),
		TglPeminjamanArray:       make([]string, 0, len(f.Peminjaman)),
		TglPengembalianArray:     make([]string, 0, len(f.Peminjaman)),
	}
	for _, r := range f.Pengadaan {
		v.NamaBarangArray = append(v.NamaBarangArray, r.NamaBarang)
		v.TypeModelArray = append(v.TypeModelArray, r.TypeModel)
		v.JumlahArray = append(v.JumlahArray, r.Jumlah)
		v.KeteranganArray = append(v.KeteranganArray, r.Keterangan)
	}
	for _, r := range f.Perbaikan {
		v.NamaBarangPerbaikanArray = append(v.NamaBarangPerbaikanArray, r.NamaBarang)
		v.TypeModelPerbaikanArray = append(v.TypeModelPerbaikanArray, r.TypeModel)
		v.JumlahPerbaikanArray = append(v.JumlahPerbaikanArray, r.Jumlah)
		v.JenisPekerjaanArray = append(v.JenisPekerjaanArray, r.JenisPekerjaan)
		v.LokasiPerbaikanArray = append(v.LokasiPerbaikanArray, r.Lokasi)
	}
	for _, r := range f.Peminjaman {
		v.LokasiPeminjamanArray = append(v.LokasiPeminjamanArray, r.Lokasi)
		v.KegunaanArray = append(v.KegunaanArray, r.Kegunaan)
		v.TglPeminjamanArray = append(v.TglPeminjamanArray, r.TglPeminjaman)
		v.TglPengembalianArray = append(v.TglPengembalianArray, r.TglPengembalian)
	}
	return v
}

func (p FormRow) applyPengadaan(r *PengadaanRow) {
	if p.NamaBarang != nil {
		r.NamaBarang = *p.NamaBarang
	}
	if p.TypeModel != nil {
		r.TypeModel = *p.TypeModel
	}
	if p.Jumlah != nil {
		r.Jumlah = normalizeJumlah(*p.Jumlah)
	}
	if p.Keterangan != nil {
		r.Keterangan = *p.Keterangan
	}
}

func (p FormRow) applyPerbaikan(r *PerbaikanRow) {
	if p.NamaBarang != nil {
		r.NamaBarang = *p.NamaBarang
	}
	if p.TypeModel != nil {
		r.TypeModel = *p.TypeModel
	}
	if p.Jumlah != nil {
		r.Jumlah = normalizeJumlah(*p.Jumlah)
	}
	if p.JenisPekerjaan != nil {
		r.JenisPekerjaan = *p.JenisPekerjaan
	}
	if p.Lokasi != nil {
		r.Lokasi = *p.Lokasi
	}
}

func (p FormRow) applyPeminjaman(r *PeminjamanRow) {
	if p.Lokasi != nil {
		r.Lokasi = *p.Lokasi
	}
	if p.Kegunaan != nil {
		r.Kegunaan = *p.Kegunaan
	}
	if p.TglPeminjaman != nil {
		r.TglPeminjaman = *p.TglPeminjaman
	}
	if p.TglPengembalian != nil {
		r.TglPengembalian = *p.TglPengembalian
	}
}

// AddRow appends a blank row to the given variant
func (f *FormState) AddRow(jenis string) bool {
	switch jenis {
	case JenisPengadaan:
		f.Pengadaan = append(f.Pengadaan, PengadaanRow{Jumlah: 1})
	case JenisPerbaikan:
		f.Perbaikan = append(f.Perbaikan, PerbaikanRow{Jumlah: 1})
	case JenisPeminjaman:
		f.Peminjaman = append(f.Peminjaman, PeminjamanRow{})
	default:
		return false
	}
	return true
}

// RemoveRow drops the row at index. The last remaining row is never removed.
func (f *FormState) RemoveRow(jenis string, index int) {
	if f.RowCount(jenis) <= 1 {
		return
	}
	switch jenis {
	case JenisPengadaan:
		f.Pengadaan = append(f.Pengadaan[:index:index], f.Pengadaan[index+1:]...)
	case JenisPerbaikan:
		f.Perbaikan = append(f.Perbaikan[:index:index], f.Perbaikan[index+1:]...)
	case JenisPeminjaman:
		f.Peminjaman = append(f.Peminjaman[:index:index], f.Peminjaman[index+1:]...)
	}
}

// SetRow patches the row at index; the caller checks the bounds
func (f *FormState) SetRow(jenis string, index int, patch FormRow) {
	switch jenis {
	case JenisPengadaan:
		patch.applyPengadaan(&f.Pengadaan[index])
	case JenisPerbaikan:
		patch.applyPerbaikan(&f.Perbaikan[index])
	case JenisPeminjaman:
		patch.applyPeminjaman(&f.Peminjaman[index])
	}
}

// Clone returns a deep copy safe to hand out to readers
func (f FormState) Clone() FormState {
	c := f
	c.Pengadaan = append([]PengadaanRow(nil), f.Pengadaan...)
	c.Perbaikan = append([]PerbaikanRow(nil), f.Perbaikan...)
	c.Peminjaman = append([]PeminjamanRow(nil), f.Peminjaman...)
	return c
}

func normalizeJumlah(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RequestCommon carries the fields shared by every variant payload
type RequestCommon struct {
	JenisRequest string `json:"jenis_request"`
	Unit         string `json:"unit"`
	TglRequest   string `json:"tgl_request"`
	Keterangan   string `json:"keterangan"`
}

// RequestPayload is the body of POST /requests, one implementation per variant
type RequestPayload interface {
	Jenis() string
}

type PengadaanPayload struct {
	RequestCommon
	NamaBarangArray []string `json:"nama_barang_array"`
	TypeModelArray  []string `json:"type_model_array"`
	JumlahArray     []int    `json:"jumlah_array"`
	KeteranganArray []string `json:"keterangan_array"`
	NamaBarang      string   `json:"nama_barang"`
	TypeModel       string   `json:"type_model"`
	Jumlah          int      `json:"jumlah"`
	Lokasi          string   `json:"lokasi"`
}

type PerbaikanPayload struct {
	RequestCommon
	NamaBarangArray     []string `json:"nama_barang_array"`
	TypeModelArray      []string `json:"type_model_array"`
	JumlahArray         []int    `json:"jumlah_array"`
	JenisPekerjaanArray []string `json:"jenis_pekerjaan_array"`
	LokasiArray         []string `json:"lokasi_array"`
	NamaBarang          string   `json:"nama_barang"`
	TypeModel           string   `json:"type_model"`
	Jumlah              int      `json:"jumlah"`
	JenisPekerjaan      string   `json:"jenis_pekerjaan"`
	Lokasi              string   `json:"lokasi"`
}

type PeminjamanPayload struct {
	RequestCommon
	LokasiArray          []string `json:"lokasi_array"`
	KegunaanArray        []string `json:"kegunaan_array"`
	TglPeminjamanArray   []string `json:"tgl_peminjaman_array"`
	TglPengembalianArray []string `json:"tgl_pengembalian_array"`
	Lokasi               string   `json:"lokasi"`
	Kegunaan             string   `json:"kegunaan"`
	TglPeminjaman        *string  `json:"tgl_peminjaman"`
	TglPengembalian      *string  `json:"tgl_pengembalian"`
}

func (PengadaanPayload) Jenis() string  { return JenisPengadaan }
func (PerbaikanPayload) Jenis() string  { return JenisPerbaikan }
func (PeminjamanPayload) Jenis() string { return JenisPeminjaman }

// Payload normalizes the selected variant into its request body. Rows whose
// primary field is blank are dropped, the remaining columns stay parallel and
// the legacy scalars mirror the first surviving row.
func (f FormState) Payload(unit, today string) RequestPayload {
	common := RequestCommon{
		JenisRequest: f.JenisRequest,
		Unit:         unit,
		TglRequest:   today,
		Keterangan:   f.Keterangan,
	}

	switch f.JenisRequest {
	case JenisPerbaikan:
		p := PerbaikanPayload{
			RequestCommon:       common,
			NamaBarangArray:     []string{},
			TypeModelArray:      []string{},
			JumlahArray:         []int{},
			JenisPekerjaanArray: []string{},
			LokasiArray:         []string{},
			Jumlah:              1,
		}
		for _, r := range f.Perbaikan {
			if isBlank(r.NamaBarang) {
				continue
			}
			p.NamaBarangArray = append(p.NamaBarangArray, r.NamaBarang)
			p.TypeModelArray = append(p.TypeModelArray, r.TypeModel)
			p.JumlahArray = append(p.JumlahArray, normalizeJumlah(r.Jumlah))
			p.JenisPekerjaanArray = append(p.JenisPekerjaanArray, r.JenisPekerjaan)
			p.LokasiArray = append(p.LokasiArray, r.Lokasi)
		}
		if len(p.NamaBarangArray) > 0 {
			p.NamaBarang = p.NamaBarangArray[0]
			p.TypeModel = p.TypeModelArray[0]
			p.Jumlah = p.JumlahArray[0]
			p.JenisPekerjaan = p.JenisPekerjaanArray[0]
			p.Lokasi = p.LokasiArray[0]
		}
		return p

	case JenisPeminjaman:
		p := PeminjamanPayload{
			RequestCommon:        common,
			LokasiArray:          []string{},
			KegunaanArray:        []string{},
			TglPeminjamanArray:   []string{},
			TglPengembalianArray: []string{},
		}
		for _, r := range f.Peminjaman {
			if isBlank(r.Lokasi) {
				continue
			}
			p.LokasiArray = append(p.LokasiArray, r.Lokasi)
			p.KegunaanArray = append(p.KegunaanArray, r.Kegunaan)
			p.TglPeminjamanArray = append(p.TglPeminjamanArray, r.TglPeminjaman)
			p.TglPengembalianArray = append(p.TglPengembalianArray, r.TglPengembalian)
		}
		if len(p.LokasiArray) > 0 {
			p.Lokasi = p.LokasiArray[0]
			p.Kegunaan = p.KegunaanArray[0]
			p.TglPeminjaman = nonEmpty(p.TglPeminjamanArray[0])
			p.TglPengembalian = nonEmpty(p.TglPengembalianArray[0])
		}
		return p

	default:
		p := PengadaanPayload{
			RequestCommon:   common,
			NamaBarangArray: []string{},
			TypeModelArray:  []string{},
			JumlahArray:     []int{},
			KeteranganArray: []string{},
			Jumlah:          1,
		}
		p.JenisRequest = JenisPengadaan
		for _, r := range f.Pengadaan {
			if isBlank(r.NamaBarang) {
				continue
			}
			p.NamaBarangArray = append(p.NamaBarangArray, r.NamaBarang)
			p.TypeModelArray = append(p.TypeModelArray, r.TypeModel)
			p.JumlahArray = append(p.JumlahArray, normalizeJumlah(r.Jumlah))
			p.KeteranganArray = append(p.KeteranganArray, r.Keterangan)
		}
		if len(p.NamaBarangArray) > 0 {
			p.NamaBarang = p.NamaBarangArray[0]
			p.TypeModel = p.TypeModelArray[0]
			p.Jumlah = p.JumlahArray[0]
		}
		return p
	}
}

func nonEmpty(s string) *string {
	if isBlank(s) {
		return nil
	}
	return &s
}
