package notify

import (
	"fmt"
	"strings"

	"github.com/farisali522/birojasaapp/internal/domain"
	"github.com/farisali522/birojasaapp/internal/ports"
)

// Rupiah renders an amount as "Rp 1.250.000".
func Rupiah(amount int64) string {
	s := fmt.Sprintf("%d", amount)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return "Rp " + strings.Join(parts, ".")
}

func wrap(title, titleColor, inner string) string {
	return fmt.Sprintf(`<div style="font-family: Helvetica, Arial, sans-serif; max-width: 600px; margin: auto; border: 1px solid #ddd; border-radius: 8px; overflow: hidden;">
<div style="background-color: %s; padding: 20px; text-align: center;"><h2 style="color: #fff; margin: 0;">%s</h2></div>
<div style="padding: 30px; background-color: #ffffff;">%s</div>
<div style="background-color: #f8f9fa; padding: 15px; text-align: center; font-size: 12px; color: #888;">&copy; BiroJasaApp. Bandung, Jawa Barat.</div>
</div>`, titleColor, title, inner)
}

func WelcomeMessage(cust *domain.Customer, baseURL string) ports.Message {
	inner := fmt.Sprintf(`<h3>Halo, %s!</h3>
<p>Selamat datang di BiroJasaApp. Akun Anda telah berhasil dibuat dan siap digunakan untuk mengurus dokumen kendaraan dari rumah.</p>
<p style="text-align:center;"><a href="%s/me/requests" style="background-color:#2F4F4F;color:#fff;padding:12px 25px;text-decoration:none;border-radius:5px;">Masuk ke Dashboard</a></p>`,
		cust.Name, baseURL)
	return ports.Message{
		To:       cust.Email,
		Subject:  "Selamat Datang di BiroJasaApp!",
		HTMLBody: wrap("BiroJasaApp", "#2F4F4F", inner),
	}
}

func InvoiceIssued(req *domain.Request, pay *domain.Payment, baseURL string) ports.Message {
	inner := fmt.Sprintf(`<p>Halo <strong>%s</strong>,</p>
<p>Permohonan Anda telah diverifikasi oleh admin. Berikut rincian tagihan Anda:</p>
<table style="width:100%%;border-collapse:collapse;">
<tr><td style="padding:10px;color:#777;">Layanan</td><td style="padding:10px;text-align:right;font-weight:bold;">%s</td></tr>
<tr><td style="padding:10px;color:#777;">No. Invoice</td><td style="padding:10px;text-align:right;font-weight:bold;">%s</td></tr>
<tr style="background-color:#f1f8f5;"><td style="padding:10px;font-weight:bold;">TOTAL BAYAR</td><td style="padding:10px;text-align:right;font-weight:bold;">%s</td></tr>
</table>
<p>Detail lengkap tagihan terlampir dalam file PDF (Invoice).</p>
<p style="text-align:center;"><a href="%s/me/requests/%d/billing" style="background-color:#ffc107;color:#000;padding:12px 25px;text-decoration:none;border-radius:5px;">Bayar Sekarang</a></p>`,
		req.Customer.Name, req.Offering.Name, pay.InvoiceNumber, Rupiah(pay.Total.Amount), baseURL, req.ID)
	return ports.Message{
		To:       req.Customer.Email,
		Subject:  "Tagihan Terbit: " + req.Code,
		HTMLBody: wrap("Menunggu Pembayaran", "#ffc107", inner),
	}
}

func PaidReceipt(req *domain.Request, pay *domain.Payment) ports.Message {
	method := "Payment Gateway"
	if pay.Method != nil && *pay.Method != domain.MethodGateway {
		method = string(*pay.Method)
	}
	inner := fmt.Sprintf(`<p>Terima kasih <strong>%s</strong>,</p>
<p>Pembayaran Anda sebesar <b>%s</b> via <b>%s</b> telah kami terima. Struk bukti pembayaran terlampir.</p>
<p>Status permohonan Anda sekarang: <b>%s</b>. Kami akan segera memproses dokumen Anda ke instansi terkait.</p>`,
		req.Customer.Name, Rupiah(pay.Total.Amount), method, domain.StatusLabel[domain.StatusProcessing])
	return ports.Message{
		To:       req.Customer.Email,
		Subject:  "LUNAS: Pembayaran " + req.Code + " Berhasil",
		HTMLBody: wrap("Pembayaran Diterima", "#198754", inner),
	}
}

func CashPending(req *domain.Request) ports.Message {
	inner := fmt.Sprintf(`<p>Halo %s,</p>
<p>Anda memilih pembayaran Tunai untuk permohonan <b>%s</b>. Silakan lakukan pembayaran di kasir kantor kami.</p>`,
		req.Customer.Name, req.Code)
	return ports.Message{
		To:       req.Customer.Email,
		Subject:  "Menunggu Pembayaran Tunai: " + req.Code,
		HTMLBody: wrap("Menunggu Pembayaran", "#ffc107", inner),
	}
}

func ProofReceived(req *domain.Request) ports.Message {
	inner := fmt.Sprintf(`<p>Halo %s,</p>
<p>Bukti pembayaran untuk permohonan <b>%s</b> telah kami terima dan sedang menunggu konfirmasi staff keuangan.</p>`,
		req.Customer.Name, req.Code)
	return ports.Message{
		To:       req.Customer.Email,
		Subject:  "Bukti Pembayaran Diterima: " + req.Code,
		HTMLBody: wrap("Menunggu Konfirmasi", "#0dcaf0", inner),
	}
}

func RevisionRequested(req *domain.Request, docNames []string, baseURL string) ports.Message {
	var items strings.Builder
	for _, name := range docNames {
		items.WriteString("<li>" + name + "</li>")
	}
	inner := fmt.Sprintf(`<p>Halo %s,</p>
<p>Beberapa dokumen permohonan <b>%s</b> perlu diperbaiki:</p>
<ul>%s</ul>
<p>Silakan upload ulang dokumen di atas melalui halaman revisi.</p>
<p style="text-align:center;"><a href="%s/me/requests/%d/revision" style="background-color:#0dcaf0;color:#fff;padding:12px 25px;text-decoration:none;border-radius:5px;">Perbaiki Dokumen</a></p>`,
		req.Customer.Name, req.Code, items.String(), baseURL, req.ID)
	return ports.Message{
		To:       req.Customer.Email,
		Subject:  "Perlu Revisi: " + req.Code,
		HTMLBody: wrap("Dokumen Perlu Revisi", "#0dcaf0", inner),
	}
}

func RequestRejected(req *domain.Request, reason, baseURL string) ports.Message {
	inner := fmt.Sprintf(`<p>Halo %s,</p>
<p>Mohon maaf, permohonan Anda belum dapat kami proses karena alasan berikut:</p>
<div style="background-color:#fce8e6;padding:15px;border-radius:5px;color:#a71d2a;font-weight:bold;">"%s"</div>
<p>Anda tidak perlu membuat permohonan baru. Silakan lakukan revisi (upload ulang dokumen).</p>
<p style="text-align:center;"><a href="%s/me/requests/%d/revision" style="background-color:#dc3545;color:#fff;padding:12px 25px;text-decoration:none;border-radius:5px;">Perbaiki Permohonan</a></p>`,
		req.Customer.Name, reason, baseURL, req.ID)
	return ports.Message{
		To:       req.Customer.Email,
		Subject:  "PENTING: Permohonan Ditolak (" + req.Code + ")",
		HTMLBody: wrap("Permohonan Ditolak", "#dc3545", inner),
	}
}

func ProgressUpdate(req *domain.Request, baseURL string) ports.Message {
	inner := fmt.Sprintf(`<p>Halo %s,</p>
<p>Ada perkembangan terbaru mengenai dokumen <strong>%s</strong> Anda.</p>
<div style="background-color:#f0f8ff;border-left:5px solid #0dcaf0;padding:15px;">
<p style="margin:0;font-size:12px;color:#777;">STATUS TERKINI:</p>
<h3 style="margin:5px 0 0 0;color:#055160;">%s</h3>
</div>
<p style="text-align:center;"><a href="%s/me/requests/%d" style="color:#0dcaf0;font-weight:bold;text-decoration:none;">Buka Aplikasi</a></p>`,
		req.Customer.Name, req.Offering.Name, domain.StatusLabel[req.Status], baseURL, req.ID)
	return ports.Message{
		To:       req.Customer.Email,
		Subject:  "Update Status: " + req.Code,
		HTMLBody: wrap("Update Progres", "#0dcaf0", inner),
	}
}

func Shipped(req *domain.Request, trackingNumber string) ports.Message {
	inner := fmt.Sprintf(`<p>Halo %s,</p>
<p>Dokumen <b>%s</b> Anda telah selesai dan dikirim via kurir.</p>
<p>Nomor resi: <b>%s</b></p>
<p>Mohon konfirmasi penerimaan di aplikasi setelah paket tiba.</p>`,
		req.Customer.Name, req.Offering.Name, trackingNumber)
	return ports.Message{
		To:       req.Customer.Email,
		Subject:  "Dikirim: " + req.Code,
		HTMLBody: wrap("Dokumen Dikirim", "#198754", inner),
	}
}

func ReadyForPickup(req *domain.Request) ports.Message {
	inner := fmt.Sprintf(`<p>Halo %s,</p>
<p>Dokumen <b>%s</b> Anda telah selesai dan siap diambil di kantor kami pada jam kerja.</p>`,
		req.Customer.Name, req.Offering.Name)
	return ports.Message{
		To:       req.Customer.Email,
		Subject:  "SELESAI: " + req.Code,
		HTMLBody: wrap("Dokumen Selesai", "#198754", inner),
	}
}
