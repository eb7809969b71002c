package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	netmail "net/mail"
	"net/textproto"
	"strings"
	"unicode"

	"github.com/ghostshell/pathflow/internal/platform/apperr"
)

// Message is an outgoing email. Raw carries the encoded MIME payload once
// Encode has run.
type Message struct {
	From    string
	To      string
	Subject string
	Body    Content
	Raw     string
}

// Encode assembles a multipart/alternative message with a plain part and,
// when present, an HTML part, and stores it base64url-encoded in Raw.
func (m *Message) Encode() error {
	to, err := headerAddress("To", m.To)
	if err != nil {
		return err
	}
	from, err := headerAddress("From", m.From)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", w.Boundary())

	if err := writePart(w, "text/plain", m.Body.Text); err != nil {
		return err
	}
	if m.Body.HTML != "" {
		if err := writePart(w, "text/html", m.Body.HTML); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close mime writer: %w", err)
	}

	m.Raw = base64.URLEncoding.EncodeToString(buf.Bytes())
	return nil
}

// headerAddress validates a single address for use as a header value.
// Control characters would let a caller start new header lines.
func headerAddress(field, value string) (string, error) {
	if strings.ContainsFunc(value, unicode.IsControl) {
		return "", fmt.Errorf("%s address contains control characters: %w", field, apperr.ErrInvalidInput)
	}
	addr, err := netmail.ParseAddress(value)
	if err != nil {
		return "", fmt.Errorf("%s address %q: %v: %w", field, value, err, apperr.ErrInvalidInput)
	}
	return addr.String(), nil
}

func writePart(w *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType+`; charset="utf-8"`)
	h.Set("Content-Transfer-Encoding", "quoted-printable")
	pw, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	qp := quotedprintable.NewWriter(pw)
	if _, err := qp.Write([]byte(body)); err != nil {
		return fmt.Errorf("write %s part: %w", contentType, err)
	}
	return qp.Close()
}
