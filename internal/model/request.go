package model

import "strings"

// Jenis request variants
const (
	JenisPengadaan  = "pengadaan"
	JenisPerbaikan  = "perbaikan"
	JenisPeminjaman = "peminjaman"
)

// Backend status_request values
const (
	StatusDiajukan  = "DIAJUKAN"
	StatusDisetujui = "DISETUJUI"
	StatusDitolak   = "DITOLAK"
	StatusDiproses  = "DIPROSES"
	StatusSelesai   = "SELESAI"
)

// Display status values used by the history views
const (
	DisplayPending    = "pending"
	DisplayApproved   = "approved"
	DisplayRejected   = "rejected"
	DisplayProcessing = "processing"
	DisplayCompleted  = "completed"
)

var displayStatus = map[string]string{
	StatusDiajukan:  DisplayPending,
	StatusDisetujui: DisplayApproved,
	StatusDitolak:   DisplayRejected,
	StatusDiproses:  DisplayProcessing,
	StatusSelesai:   DisplayCompleted,
}

// DisplayStatus maps a backend status to its display value. Unknown values
// are returned unchanged.
func DisplayStatus(backendStatus string) string {
	if display, ok := displayStatus[backendStatus]; ok {
		return display
	}
	return backendStatus
}

func IsValidJenis(jenis string) bool {
	return jenis == JenisPengadaan || jenis == JenisPerbaikan || jenis == JenisPeminjaman
}

func IsValidStatus(status string) bool {
	_, ok := displayStatus[status]
	return ok
}

// Request is a pengajuan as returned by the backend. Each variant carries its
// own line-item arrays plus legacy scalars mirroring the first item.
type Request struct {
	ID           int64  `json:"id"`
	JenisRequest string `json:"jenis_request"`
	Unit         string `json:"unit"`

	NamaBarangArray []string `json:"nama_barang_array,omitempty"`
	TypeModelArray  []string `json:"type_model_array,omitempty"`
	JumlahArray     []int    `json:"jumlah_array,omitempty"`
	KeteranganArray []string `json:"keterangan_array,omitempty"`

	NamaBarangPerbaikanArray []string `json:"nama_barang_perbaikan_array,omitempty"`
	TypeModelPerbaikanArray  []string `json:"type_model_perbaikan_array,omitempty"`
	JumlahPerbaikanArray     []int    `json:"jumlah_perbaikan_array,omitempty"`
	JenisPekerjaanArray      []string `json:"jenis_pekerjaan_array,omitempty"`
	LokasiArray              []string `json:"lokasi_array,omitempty"`
	LokasiPerbaikanArray     []string `json:"lokasi_perbaikan_array,omitempty"`

	LokasiPeminjamanArray []string `json:"lokasi_peminjaman_array,omitempty"`
	KegunaanArray         []string `json:"kegunaan_array,omitempty"`
	TglPeminjamanArray    []string `json:"tgl_peminjaman_array,omitempty"`
	TglPengembalianArray  []string `json:"tgl_pengembalian_array,omitempty"`

	NamaBarang      *string `json:"nama_barang,omitempty"`
	TypeModel       *string `json:"type_model,omitempty"`
	Jumlah          *int    `json:"jumlah,omitempty"`
	JenisPekerjaan  *string `json:"jenis_pekerjaan,omitempty"`
	Lokasi          *string `json:"lokasi,omitempty"`
	Kegunaan        *string `json:"kegunaan,omitempty"`
	TglPeminjaman   *string `json:"tgl_peminjaman,omitempty"`
	TglPengembalian *string `json:"tgl_pengembalian,omitempty"`

	TglRequest    string  `json:"tgl_request"`
	Keterangan    *string `json:"keterangan,omitempty"`
	StatusRequest string  `json:"status_request"`
	RequestedBy   string  `json:"requested_by"`
	ApprovedBy    *string `json:"approved_by,omitempty"`
	AcceptedBy    *string `json:"accepted_by,omitempty"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// PrimaryItem resolves the item a list or detail view shows for the request:
// the first non-blank entry of the variant's primary array, falling back to
// the legacy scalar.
func (r Request) PrimaryItem() (string, bool) {
	var arrays [][]string
	var legacy *string

	switch r.JenisRequest {
	case JenisPeminjaman:
		arrays = [][]string{r.LokasiArray, r.LokasiPeminjamanArray}
		legacy = r.Lokasi
	case JenisPerbaikan:
		arrays = [][]string{r.NamaBarangArray, r.NamaBarangPerbaikanArray}
		legacy = r.NamaBarang
	default:
		arrays = [][]string{r.NamaBarangArray}
		legacy = r.NamaBarang
	}

	for _, arr := range arrays {
		for _, v := range arr {
			if strings.TrimSpace(v) != "" {
				return v, true
			}
		}
	}
	if legacy != nil && strings.TrimSpace(*legacy) != "" {
		return *legacy, true
	}
	return "", false
}

// StatusUpdate is the body of PUT /requests/:id/status
type StatusUpdate struct {
	StatusRequest string  `json:"status_request"`
	ApprovedBy    string  `json:"approved_by"`
	AcceptedBy    *string `json:"accepted_by,omitempty"`
	Keterangan    string  `json:"keterangan"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
