package repository

import "context"

func (r DocumentTypeRepository) SeedDefaults(ctx context.Context) error {
	defaults := []struct {
		name, description string
	}{
		{"KTP", "Kartu Tanda Penduduk pemilik"},
		{"STNK", "Surat Tanda Nomor Kendaraan"},
		{"BPKB", "Buku Pemilik Kendaraan Bermotor"},
		{"Kwitansi Jual Beli", "Kwitansi bermaterai untuk balik nama"},
		{"Kartu Keluarga", "Kartu Keluarga pemilik"},
	}
	for _, d := range defaults {
		_, err := r.DB.Pool.Exec(ctx, `
			INSERT INTO document_types (name, description)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, d.name, d.description)
		if err != nil {
			return err
		}
	}
	return nil
}
