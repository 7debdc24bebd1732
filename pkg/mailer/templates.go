package mailer

import "fmt"

// Email bundles a rendered message ready for Mailer.Send.
type Email struct {
	Subject string
	Text    string
	HTML    string
}

// SignupCodeEmail renders the registration verification mail.
func SignupCodeEmail(code string) Email {
	text := fmt.Sprintf(`Halo,

Terima kasih telah mendaftar di Traka.

Kode verifikasi Anda adalah: %s

Kode ini berlaku selama 10 menit.

Masukkan kode ini di aplikasi untuk menyelesaikan pendaftaran.

Jika Anda tidak meminta kode ini, abaikan email ini.

Salam,
Tim Traka`, code)

	html := codeEmailHTML(
		"Terima kasih telah mendaftar di <strong>Traka</strong>.",
		code,
		"Kode ini berlaku selama <strong>10 menit</strong>. Masukkan kode ini di aplikasi untuk menyelesaikan pendaftaran.",
	)

	return Email{
		Subject: "Kode Verifikasi Traka",
		Text:    text,
		HTML:    html,
	}
}

// ForgotPasswordCodeEmail renders the password-reset OTP mail.
func ForgotPasswordCodeEmail(code string) Email {
	text := fmt.Sprintf(`Halo,

Anda meminta kode verifikasi untuk atur ulang kata sandi Traka.

Kode verifikasi Anda: %s

Kode ini berlaku 10 menit. Masukkan di aplikasi, lalu verifikasi wajah dan buat kata sandi baru.

Jika Anda tidak meminta ini, abaikan email ini.

Salam,
Tim Traka`, code)

	html := codeEmailHTML(
		"Lupa kata sandi",
		code,
		"Berlaku 10 menit. Masukkan di aplikasi, lalu verifikasi wajah dan buat kata sandi baru.",
	)

	return Email{
		Subject: "Kode verifikasi lupa kata sandi - Traka",
		Text:    text,
		HTML:    html,
	}
}

// LoginCodeEmail renders the first-device login OTP mail.
func LoginCodeEmail(code string) Email {
	text := fmt.Sprintf(`Halo,

Anda meminta kode verifikasi untuk login pertama di perangkat baru Traka.

Kode verifikasi Anda: %s

Kode ini berlaku 10 menit.

Jika Anda tidak meminta ini, abaikan email ini.

Salam,
Tim Traka`, code)

	html := codeEmailHTML(
		"Verifikasi login",
		code,
		"Berlaku 10 menit.",
	)

	return Email{
		Subject: "Kode verifikasi login - Traka",
		Text:    text,
		HTML:    html,
	}
}

func codeEmailHTML(heading, code, note string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family:Arial;line-height:1.6;color:#333;max-width:600px;margin:0 auto;padding:20px;">
  <div style="background:#f9f9f9;padding:30px;border-radius:8px;">
    <h2>%s</h2>
    <p>Kode verifikasi Anda:</p>
    <div style="background:#2563EB;color:white;font-size:32px;font-weight:bold;text-align:center;padding:20px;border-radius:8px;letter-spacing:5px;">%s</div>
    <p>%s</p>
    <p style="color:#999;font-size:12px;">Jika Anda tidak meminta ini, abaikan email ini.</p>
    <p>Salam,<br>Tim Traka</p>
  </div>
</body>
</html>`, heading, code, note)
}
