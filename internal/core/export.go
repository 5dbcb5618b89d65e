package core

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"voicejournal/internal/journal"
)

// ExportEntryPDF renders an entry into a downloadable PDF: transcript,
// reflection, mood, and the generated image when one is attached inline.
func ExportEntryPDF(entry *journal.Entry) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Journal Entry", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Journal Entry", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, entry.CreatedAt.Format("January 2, 2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Mood: %s", entry.Mood), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Your Entry", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, entry.Transcript, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Reflection", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, entry.AIResponse, "", "L", false)

	if imageData, imageType, ok := decodeDataURL(entry.Metadata.ImageURL); ok {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "Visual Representation", "", 1, "L", false, 0, "")
		opts := fpdf.ImageOptions{ImageType: imageType}
		pdf.RegisterImageOptionsReader("entry-image", opts, bytes.NewReader(imageData))
		pdf.ImageOptions("entry-image", 10, 0, 180, 0, true, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render entry pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeDataURL splits a "data:<mime>;base64,<payload>" reference into raw
// bytes and an fpdf image type. Non-inline references are skipped.
func decodeDataURL(url string) ([]byte, string, bool) {
	if !strings.HasPrefix(url, "data:") {
		return nil, "", false
	}
	header, payload, ok := strings.Cut(url, ";base64,")
	if !ok || payload == "" {
		return nil, "", false
	}

	imageType := "PNG"
	if strings.Contains(header, "jpeg") || strings.Contains(header, "jpg") {
		imageType = "JPG"
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}
	return data, imageType, true
}
