package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"example.com/adifmerge/internal/dedupe"
)

// SaveDupePDF renders the duplicate report into a PDF document.
func SaveDupePDF(out string, sum Summary, events []dedupe.Event, tr Translator) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(tr.T("title"), true)
	pdf.SetAuthor("adifctl", false)
	pdf.SetCreator("adifctl", false)
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	translator := pdf.UnicodeTranslatorFromDescriptor("")
	addPDFTitle(pdf, translator(tr.T("title")))
	addSummarySection(pdf, sum, tr, translator)
	addEventsSection(pdf, events, tr, translator)

	if pdf.Err() {
		return pdf.Error()
	}
	return pdf.OutputFileAndClose(out)
}

func addPDFTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
}

func addSummarySection(pdf *gofpdf.Fpdf, sum Summary, tr Translator, translate func(string) string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, translate(tr.T("summary")))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	items := []struct {
		label string
		value string
	}{
		{label: tr.T("generatedAt"), value: sum.GeneratedAt.Format("2006-01-02 15:04:05")},
		{label: tr.T("sources"), value: strconv.Itoa(sum.Sources)},
		{label: tr.T("accepted"), value: strconv.Itoa(sum.Accepted)},
		{label: tr.T("duplicatesFound"), value: strconv.Itoa(sum.Duplicates)},
	}
	for _, item := range items {
		pdf.CellFormat(60, 6, translate(item.label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, translate(item.value), "", 1, "L", false, 0, "")
	}

	if len(sum.MissingCallsign) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, translate(tr.T("missingCallsignWarning")), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		for _, source := range sortedKeys(sum.MissingCallsign) {
			pdf.MultiCell(0, 5, translate(fmt.Sprintf("%s: %d", source, sum.MissingCallsign[source])), "", "L", false)
		}
	}
	pdf.Ln(4)
}

func addEventsSection(pdf *gofpdf.Fpdf, events []dedupe.Event, tr Translator, translate func(string) string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, translate(tr.T("duplicatesFound")))
	pdf.Ln(9)

	if len(events) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, translate(tr.T("noDuplicates")), "", "L", false)
		return
	}

	headers := []string{
		tr.T("colIndex"),
		tr.T("colStation"),
		tr.T("incomingFrom"),
		tr.T("originalFrom"),
		tr.T("labelTime"),
	}
	widths := []float64{12, 44, 44, 44, 36}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, translate(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lineHeight := 5.0
	for i, ev := range events {
		incoming := viewOf(ev.Incoming, tr)
		original := viewOf(ev.Original, tr)
		values := []string{
			strconv.Itoa(i + 1),
			ev.Group,
			fmt.Sprintf("%s %s/%s (%s)", incoming.Call, incoming.Band, incoming.Mode, incoming.Source),
			fmt.Sprintf("%s %s/%s (%s)", original.Call, original.Band, original.Mode, original.Source),
			incoming.When + " / " + original.When,
		}
		for j := range values {
			values[j] = translate(values[j])
		}
		renderTableRow(pdf, widths, values, lineHeight)
	}
}

func renderTableRow(pdf *gofpdf.Fpdf, widths []float64, values []string, lineHeight float64) {
	xStart := pdf.GetX()
	yStart := pdf.GetY()
	maxLines := 1
	splitCols := make([][]string, len(values))
	for i, val := range values {
		text := strings.TrimSpace(val)
		if text == "" {
			text = "-"
		}
		lines := pdf.SplitText(text, widths[i]-2)
		if len(lines) == 0 {
			lines = []string{""}
		}
		splitCols[i] = lines
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	rowHeight := float64(maxLines) * lineHeight
	x := xStart
	for i, lines := range splitCols {
		pdf.SetXY(x, yStart)
		cellText := strings.Join(lines, "\n")
		pdf.MultiCell(widths[i], lineHeight, cellText, "1", "L", false)
		x += widths[i]
	}
	pdf.SetXY(xStart, yStart+rowHeight)
}
