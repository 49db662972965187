package model

// HistoryEntry is a riwayat row: a request flattened for list views
type HistoryEntry struct {
	ID               int64   `json:"id"`
	JenisRequest     string  `json:"jenis_request"`
	Unit             string  `json:"unit"`
	Pemohon          string  `json:"pemohon"`
	TanggalPengajuan string  `json:"tanggalPengajuan"`
	Status           string  `json:"status"`
	Approver         string  `json:"approver"`
	NamaBarang       string  `json:"nama_barang,omitempty"`
	TypeModel        string  `json:"type_model,omitempty"`
	Jumlah           *int    `json:"jumlah,omitempty"`
	Lokasi           string  `json:"lokasi,omitempty"`
	JenisPekerjaan   string  `json:"jenis_pekerjaan,omitempty"`
	Kegunaan         string  `json:"kegunaan,omitempty"`
	TglPeminjaman    *string `json:"tgl_peminjaman,omitempty"`
	TglPengembalian  *string `json:"tgl_pengembalian,omitempty"`
	Keterangan       string  `json:"keterangan,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
	UpdatedAt        string  `json:"updated_at,omitempty"`
}

// ToHistoryEntry flattens a backend request into a history row with the
// display status.
func (r Request) ToHistoryEntry() HistoryEntry {
	entry := HistoryEntry{
		ID:               r.ID,
		JenisRequest:     r.JenisRequest,
		Unit:             r.Unit,
		Pemohon:          r.RequestedBy,
		TanggalPengajuan: r.TglRequest,
		Status:           DisplayStatus(r.StatusRequest),
		Approver:         deref(r.ApprovedBy),
		NamaBarang:       deref(r.NamaBarang),
		TypeModel:        deref(r.TypeModel),
		Jumlah:           r.Jumlah,
		Lokasi:           deref(r.Lokasi),
		JenisPekerjaan:   deref(r.JenisPekerjaan),
		Kegunaan:         deref(r.Kegunaan),
		TglPeminjaman:    r.TglPeminjaman,
		TglPengembalian:  r.TglPengembalian,
		Keterangan:       deref(r.Keterangan),
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if entry.NamaBarang == "" && r.JenisRequest != JenisPeminjaman {
		entry.NamaBarang, _ = r.PrimaryItem()
	}
	if entry.Lokasi == "" && r.JenisRequest == JenisPeminjaman {
		entry.Lokasi, _ = r.PrimaryItem()
	}
	return entry
}

// HistoryFilter narrows the history list. Empty fields do not filter.
type HistoryFilter struct {
	StartDate string `json:"startDate" form:"startDate"`
	EndDate   string `json:"endDate" form:"endDate"`
	Unit      string `json:"unit" form:"unit"`
	Status    string `json:"status" form:"status"`
}

// Stats is a fold over the history list
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func ComputeStats(entries []HistoryEntry) Stats {
	s := Stats{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case DisplayPending:
			s.Pending++
		case DisplayApproved:
			s.Approved++
		case DisplayRejected:
			s.Rejected++
		}
	}
	return s
}

// DashboardStats is the backend's /dashboard/stats body
type DashboardStats struct {
	UserID           FlexibleID `json:"user_id,omitempty"`
	Role             string     `json:"role,omitempty"`
	TotalPengajuan   int        `json:"total_pengajuan"`
	TotalPersetujuan int        `json:"total_persetujuan"`
	TotalRiwayat     int        `json:"total_riwayat"`
	TotalPengguna    int        `json:"total_pengguna"`
}
