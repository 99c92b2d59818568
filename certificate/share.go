package certificate

import (
	"fmt"
	"net/url"
	"strings"
)

// Share builds the public file URL and the WhatsApp share link.
type Share struct {
	BaseURL   string
	MediaPath string
}

// FileURL returns BaseURL + MediaPath + fileName.
func (s Share) FileURL(fileName string) string {
	base := strings.TrimRight(s.BaseURL, "/")
	media := "/" + strings.Trim(s.MediaPath, "/") + "/"
	if media == "//" {
		media = "/"
	}
	return base + media + url.PathEscape(fileName)
}

// Message returns the share text for rec.
func (s Share) Message(rec *Record) string {
	var b strings.Builder
	b.WriteString("🎓 CERTIFICATE GENERATED! 🎓\n\n")
	fmt.Fprintf(&b, "Congratulations %s!\n\n", rec.Staff.FullName)
	fmt.Fprintf(&b, "✅ Course: %s\n", rec.Course.Name)
	fmt.Fprintf(&b, "🏆 Certificate ID: %s\n", rec.ID)
	fmt.Fprintf(&b, "📅 Issue Date: %s\n", rec.IssueDate.Format(ShareDateLayout))
	fmt.Fprintf(&b, "📸 Certificate: %s\n\n", s.FileURL(rec.FileName))
	b.WriteString("To download your certificate:\n")
	b.WriteString("1. Click the link above\n")
	b.WriteString("2. Save the image to your device\n")
	b.WriteString("3. Share with family and friends!\n\n")
	b.WriteString("Well done on completing the course! 🎉\n\n")
	b.WriteString("Best regards,\nCertificate Team")
	return b.String()
}

// Link returns the wa.me link carrying Message as its text.
func (s Share) Link(rec *Record) string {
	// wa.me 期望空格编码为 %20
	return "https://wa.me/?text=" + strings.ReplaceAll(url.QueryEscape(s.Message(rec)), "+", "%20")
}
