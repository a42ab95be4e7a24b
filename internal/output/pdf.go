package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/temirov/ctxdoc/internal/types"
)

const (
	// DefaultPDFPageSize is used when no page size is configured.
	DefaultPDFPageSize = "Letter"
	// DefaultPDFFontSize is the point size of code blocks.
	DefaultPDFFontSize = 9.0

	pdfMarginMillimeters   = 12.7
	pdfLineHeightFactor    = 0.45
	pdfTitleFontSize       = 20.0
	pdfHeadingFontSize     = 15.0
	pdfPathFontSize        = 11.0
	pdfFooterFontSize      = 8.0
	pdfTabReplacement      = "    "
	pdfUnmappedReplacement = '?'
	pdfFooterFormat        = "Page %d/{nb}"

	pdfSansFont      = "Helvetica"
	pdfMonospaceFont = "Courier"

	errorRenderPDFFormat = "render pdf: %w"
	errorPageSizeFormat  = "unknown pdf page size %q"
)

var pdfPageSizes = map[string]struct{}{
	"a1": {}, "a2": {}, "a3": {}, "a4": {}, "a5": {}, "a6": {},
	"letter": {}, "legal": {}, "tabloid": {},
}

// pdfGlyphReplacer maps box-drawing glyphs absent from the core fonts to ASCII.
var pdfGlyphReplacer = strings.NewReplacer(
	treeBranchConnector, "|-- ",
	treeLastConnector, "`-- ",
	treeBranchPadding, "|   ",
	"│", "|",
	"├", "|",
	"└", "`",
	"─", "-",
	"\t", pdfTabReplacement,
	"\r\n", "\n",
	"\r", "\n",
)

// PDFOptions controls page layout of the PDF document.
type PDFOptions struct {
	PageSize string
	FontSize float64
	// DisableCompression writes uncompressed page streams.
	DisableCompression bool
}

// PDFRenderer writes the document as a paginated PDF using the core fonts.
type PDFRenderer struct {
	options PDFOptions
}

// NewPDFRenderer returns a PDFRenderer, filling unset options with defaults.
func NewPDFRenderer(options PDFOptions) PDFRenderer {
	if strings.TrimSpace(options.PageSize) == "" {
		options.PageSize = DefaultPDFPageSize
	}
	if options.FontSize <= 0 {
		options.FontSize = DefaultPDFFontSize
	}
	return PDFRenderer{options: options}
}

// Format reports the document format produced by the renderer.
func (renderer PDFRenderer) Format() string {
	return types.FormatPDF
}

// Render lays out the document. Text is wrapped to the page width and pages
// are added as needed, so content length is unbounded.
func (renderer PDFRenderer) Render(document Document) ([]byte, error) {
	options := renderer.options
	if _, known := pdfPageSizes[strings.ToLower(options.PageSize)]; !known {
		return nil, fmt.Errorf(errorPageSizeFormat, options.PageSize)
	}
	pdf := fpdf.New("P", "mm", options.PageSize, "")
	pdf.SetCompression(!options.DisableCompression)
	pdf.SetTitle(DocumentTitle(document.ProjectName), true)
	pdf.SetMargins(pdfMarginMillimeters, pdfMarginMillimeters, pdfMarginMillimeters)
	pdf.SetAutoPageBreak(true, pdfMarginMillimeters)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMarginMillimeters + 2)
		pdf.SetFont(pdfSansFont, "I", pdfFooterFontSize)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, fmt.Sprintf(pdfFooterFormat, pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	codeLineHeight := options.FontSize * pdfLineHeightFactor

	pdf.SetFont(pdfSansFont, "B", pdfTitleFontSize)
	pdf.MultiCell(0, pdfTitleFontSize*pdfLineHeightFactor, encodePDFText(DocumentTitle(document.ProjectName)), "", "L", false)
	pdf.Ln(2)
	if document.Summary != nil {
		pdf.SetFont(pdfSansFont, "", pdfPathFontSize)
		pdf.MultiCell(0, pdfPathFontSize*pdfLineHeightFactor, encodePDFText(FormatSummaryLine(*document.Summary)), "", "L", false)
	}
	pdf.Ln(4)

	writePDFHeading(pdf, structureSectionTitle)
	pdf.SetFont(pdfMonospaceFont, "", options.FontSize)
	pdf.MultiCell(0, codeLineHeight, encodePDFText(document.Diagram), "", "L", false)
	pdf.Ln(6)

	writePDFHeading(pdf, filesSectionTitle)
	for _, record := range document.Records {
		pdf.SetFont(pdfMonospaceFont, "B", pdfPathFontSize)
		pdf.SetTextColor(0, 0, 160)
		pdf.MultiCell(0, pdfPathFontSize*pdfLineHeightFactor, encodePDFText(record.RelativePath), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(1)
		if !record.IsReadable() {
			pdf.SetFont(pdfSansFont, "I", options.FontSize)
			pdf.MultiCell(0, codeLineHeight, encodePDFText("("+placeholderText(record)+")"), "", "L", false)
			pdf.Ln(4)
			continue
		}
		pdf.SetFont(pdfMonospaceFont, "", options.FontSize)
		pdf.SetFillColor(235, 235, 235)
		pdf.MultiCell(0, codeLineHeight, encodePDFText(strings.TrimRight(record.Content, "\n")), "", "L", true)
		pdf.Ln(4)
	}

	if pdf.Err() {
		return nil, fmt.Errorf(errorRenderPDFFormat, pdf.Error())
	}
	var buffer bytes.Buffer
	if outputError := pdf.Output(&buffer); outputError != nil {
		return nil, fmt.Errorf(errorRenderPDFFormat, outputError)
	}
	return buffer.Bytes(), nil
}

func writePDFHeading(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont(pdfSansFont, "B", pdfHeadingFontSize)
	pdf.MultiCell(0, pdfHeadingFontSize*pdfLineHeightFactor, encodePDFText(title), "", "L", false)
	pdf.Ln(2)
}

// encodePDFText converts UTF-8 text into the Windows-1252 bytes expected by
// the core fonts. Runes outside the code page become '?'.
func encodePDFText(text string) string {
	replaced := pdfGlyphReplacer.Replace(text)
	encoded := make([]byte, 0, len(replaced))
	for _, runeValue := range replaced {
		if runeValue < 0x80 {
			encoded = append(encoded, byte(runeValue))
			continue
		}
		encodedByte, ok := charmap.Windows1252.EncodeRune(runeValue)
		if !ok {
			encodedByte = pdfUnmappedReplacement
		}
		encoded = append(encoded, encodedByte)
	}
	return string(encoded)
}
