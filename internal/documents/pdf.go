package documents

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

var contractTitles = map[string]string{
	"nda":                 "Non-Disclosure Agreement",
	"consultingAgreement": "Consulting Services Agreement",
	"codeOfConduct":       "Code of Conduct",
}

// RenderContract produces the PDF for a signed legal agreement
func RenderContract(contractType, consultantName string, signedAt time.Time) ([]byte, error) {
	title, ok := contractTitles[contractType]
	if !ok {
		return nil, fmt.Errorf("unknown contract type %q", contractType)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	body := fmt.Sprintf(
		"This agreement is entered into between ConsultBridge and %s.\n\n"+
			"By signing this document the consultant agrees to the terms of the %s "+
			"as published on the ConsultBridge platform at the time of signature.",
		consultantName, title)
	pdf.MultiCell(0, 6, body, "", "L", false)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Signed electronically by %s", consultantName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", signedAt.Format("2006-01-02 15:04 MST")), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render contract pdf: %w", err)
	}
	return buf.Bytes(), nil
}
