// Package pdf renders a finalized budget into a client-facing PDF document.
// It is purely a presentation transform: every monetary figure is printed as
// received, nothing is rederived.
package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/Aneli0/atelie.works/internal/catalog"
)

type Generator struct{}

func New() *Generator { return &Generator{} }

// Generate produces the budget document: studio header, client block, one
// table row per item, the grand total, the PIX payment block and the studio
// notes.
func (g *Generator) Generate(b catalog.Budget, studio catalog.StudioSettings) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr("Orçamento"), false)
	pdf.AddPage()

	left := 15.0
	if drawLogo(pdf, studio.Logo) {
		left = 50
	}

	studioName := studio.Name
	if studioName == "" {
		studioName = "Meu Ateliê"
	}
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(209, 16, 90)
	pdf.Text(left, 25, tr(studioName))

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 100, 100)
	whatsapp := studio.Whatsapp
	if whatsapp == "" {
		whatsapp = "Não informado"
	}
	pdf.Text(left, 32, tr("WhatsApp: "+whatsapp))
	pdf.Text(left, 37, tr("Data: "+b.CreatedAt.Format("02/01/2006")))

	pdf.SetDrawColor(209, 16, 90)
	pdf.SetLineWidth(0.5)
	pdf.Line(15, 50, 195, 50)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(15, 60, tr("ORÇAMENTO PARA:"))
	pdf.SetFont("Helvetica", "", 14)
	pdf.Text(15, 68, tr(b.ClientName))
	if b.ClientPhone != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(15, 73, tr("Telefone: "+b.ClientPhone))
	}

	pdf.SetY(85)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(209, 16, 90)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(35, 8, tr("Produto"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, tr("Linha"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(60, 8, tr("Descrição"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(15, 8, tr("Qtd"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, tr("Unitário"), "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, tr("Total"), "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, item := range b.Items {
		pdf.CellFormat(35, 7, tr(trim(item.NameSnapshot, 22)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, tr(string(item.LineSnapshot)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 7, tr(trim(item.DescriptionSnapshot, 42)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 7, catalog.FormatQuantity(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, catalog.FormatBRL(item.UnitPriceSnapshot), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, catalog.FormatBRL(item.LineTotal), "1", 1, "R", false, 0, "")
	}

	y := pdf.GetY() + 15
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(140, y, tr("TOTAL GERAL:"))
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(209, 16, 90)
	pdf.Text(140, y+8, catalog.FormatBRL(b.GrandTotal))

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Text(15, y+25, tr("FORMA DE PAGAMENTO (PIX):"))
	pdf.SetFont("Helvetica", "", 10)
	pixKey := studio.PixKey
	if pixKey == "" {
		pixKey = "A combinar"
	}
	pdf.Text(15, y+30, tr(fmt.Sprintf("%s: %s", studio.PixType, pixKey)))

	if studio.Notes != "" {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Text(15, y+40, tr("OBSERVAÇÕES:"))
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetXY(15, y+42)
		pdf.MultiCell(120, 4.5, tr(studio.Notes), "", "L", false)
	}

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.Text(55, 285, tr("Este documento é um orçamento e não um comprovante de pagamento."))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		log.Printf("budget pdf: output failed: %v", err)
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawLogo places the studio logo, stored as base64 PNG (optionally with a
// data URL prefix), and reports whether it was drawn. A broken logo never
// fails document generation.
func drawLogo(pdf *gofpdf.Fpdf, logo string) bool {
	if logo == "" {
		return false
	}
	if i := strings.Index(logo, "base64,"); i >= 0 {
		logo = logo[i+len("base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(logo)
	if err != nil {
		log.Printf("budget pdf: skip logo: %v", err)
		return false
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("studio-logo", opts, bytes.NewReader(raw))
	if pdf.Err() {
		log.Printf("budget pdf: skip logo: %v", pdf.Error())
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions("studio-logo", 15, 10, 30, 30, false, opts, 0, "")
	return true
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// Filename suggests a download name for the budget document.
func Filename(b catalog.Budget) string {
	name := strings.Join(strings.Fields(b.ClientName), "_")
	if name == "" {
		name = "Cliente"
	}
	return "Orcamento_" + name + ".pdf"
}
