package infra

// pdf.go renders the three printed documents of the till with go-pdf/fpdf on
// 80 mm thermal paper:
//   - invoice (Fatura / Fatura-Recibo) of a closed order
//   - pre-check (consulta de mesa) of an open order
//   - shift closing (fecho de caixa)
// Amounts are rounded to whole currency units. The invoice prints the closure
// hash it was given; it never computes one.

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"veredapos/internal/ledger"
	"veredapos/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotClosed = errors.New("pdf: invoice requires a closed order")
	ErrPreCheckNotOpen  = errors.New("pdf: pre-check requires an open order")
)

const (
	paperWidth  = 80.0
	paperHeight = 220.0
	margin      = 4.0
)

// Renderer produces PDF documents. It holds no state and is safe for
// concurrent use.
type Renderer struct{}

func NewRenderer() *Renderer { return &Renderer{} }

// DocumentType is "Fatura" for deferred payments, "Fatura-Recibo" otherwise.
func DocumentType(o *model.Order) string {
	if o.IsDeferred() {
		return "Fatura"
	}
	return "Fatura-Recibo"
}

// ValidationLine is the tax-authority payload printed under the invoice
// (AGT;nif;number;total;timestamp;hash).
func ValidationLine(o *model.Order, s model.Settings) string {
	num, hash := "", ""
	if o.InvoiceNumber != nil {
		num = *o.InvoiceNumber
	}
	if o.Hash != nil {
		hash = *o.Hash
	}
	return fmt.Sprintf("AGT;%s;%s;%s;%s;%s", s.NIF, num, o.Total.StringFixed(2), o.Timestamp.UTC().Format(time.RFC3339), hash)
}

// Money formats an amount rounded to whole units with the currency suffix.
func Money(d decimal.Decimal, currency string) string {
	return d.Round(0).StringFixed(0) + " " + currency
}

type doc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	w   float64
}

func newDoc() *doc {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: paperWidth, Ht: paperHeight},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	return &doc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), w: paperWidth - 2*margin}
}

func (d *doc) line(h float64, style string, size float64, align, text string) {
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.CellFormat(d.w, h, d.tr(text), "", 1, align, false, 0, "")
}

func (d *doc) rule() {
	d.pdf.Ln(1)
	d.pdf.Line(margin, d.pdf.GetY(), paperWidth-margin, d.pdf.GetY())
	d.pdf.Ln(1)
}

// row prints a label on the left and a value on the right.
func (d *doc) row(style string, size float64, label, value string) {
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.CellFormat(d.w*0.6, 5, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.CellFormat(d.w*0.4, 5, d.tr(value), "", 1, "R", false, 0, "")
}

func (d *doc) header(s model.Settings) {
	d.line(6, "B", 12, "C", s.RestaurantName)
	d.line(4, "", 7, "C", s.Address)
	d.line(4, "", 7, "C", "NIF: "+s.NIF+"  Tel: "+s.Phone)
	if s.CommercialReg != "" {
		d.line(4, "", 6, "C", "Reg. Comercial: "+s.CommercialReg)
	}
	d.rule()
}

func (d *doc) items(o *model.Order, menu []model.Dish, currency string) {
	names := make(map[string]string, len(menu))
	for _, m := range menu {
		names[m.ID] = m.Name
	}
	colName, colQty, colTotal := d.w*0.55, d.w*0.15, d.w*0.30

	d.pdf.SetFont("Helvetica", "B", 7)
	d.pdf.CellFormat(colName, 5, d.tr("Artigo"), "B", 0, "L", false, 0, "")
	d.pdf.CellFormat(colQty, 5, "Qtd", "B", 0, "C", false, 0, "")
	d.pdf.CellFormat(colTotal, 5, "Total", "B", 1, "R", false, 0, "")

	d.pdf.SetFont("Helvetica", "", 7)
	for _, it := range o.Items {
		name, ok := names[it.DishID]
		if !ok {
			name = it.DishID
		}
		if r := []rune(name); len(r) > 26 {
			name = string(r[:25]) + "."
		}
		d.pdf.CellFormat(colName, 5, d.tr(name), "", 0, "L", false, 0, "")
		d.pdf.CellFormat(colQty, 5, fmt.Sprintf("%d", it.Quantity), "", 0, "C", false, 0, "")
		d.pdf.CellFormat(colTotal, 5, Money(it.LineTotal(), currency), "", 1, "R", false, 0, "")
		if it.Notes != "" {
			d.line(4, "I", 6, "L", "  "+it.Notes)
		}
	}
	d.rule()
}

func (d *doc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: output: %w", err)
	}
	return buf.Bytes(), nil
}

// Invoice renders the fiscal document of a closed order. customer may be nil
// (consumidor final).
func (r *Renderer) Invoice(o *model.Order, menu []model.Dish, s model.Settings, customer *model.Customer) ([]byte, error) {
	if o.Status != model.OrderClosed || o.InvoiceNumber == nil || o.Hash == nil {
		return nil, ErrInvoiceNotClosed
	}
	d := newDoc()
	d.header(s)

	d.line(5, "B", 9, "L", DocumentType(o)+" "+*o.InvoiceNumber)
	at := o.Timestamp
	if o.ClosedAt != nil {
		at = *o.ClosedAt
	}
	d.line(4, "", 7, "L", "Data: "+at.Format("02/01/2006 15:04"))
	if o.TableID != nil {
		d.line(4, "", 7, "L", fmt.Sprintf("Mesa %d - %s", *o.TableID, o.SubAccountName))
	}
	if customer != nil {
		d.line(4, "", 7, "L", "Cliente: "+customer.Name)
		d.line(4, "", 7, "L", "NIF: "+customer.NIF)
	} else {
		d.line(4, "", 7, "L", "Cliente: Consumidor final")
	}
	d.rule()

	d.items(o, menu, s.Currency)

	net := o.Total.Sub(o.TaxTotal)
	d.row("", 7, "Incidencia", Money(net, s.Currency))
	d.row("", 7, "IVA "+s.TaxRate.String()+"%", Money(o.TaxTotal, s.Currency))
	d.row("B", 10, "TOTAL", Money(o.Total, s.Currency))
	if o.PaymentMethod != nil {
		d.row("", 7, "Pagamento", string(*o.PaymentMethod))
	}
	d.rule()

	d.line(5, "B", 9, "C", ledger.Short(*o.Hash))
	d.line(4, "", 6, "C", "Processado por programa validado n.º "+s.AGTCertificate+"/AGT")
	d.pdf.SetFont("Helvetica", "", 5)
	d.pdf.MultiCell(d.w, 3, d.tr(ValidationLine(o, s)), "", "C", false)
	d.pdf.Ln(2)
	d.line(4, "I", 7, "C", "Obrigado pela preferência!")

	return d.bytes()
}

// PreCheck renders the bill shown to the table before payment. It carries no
// invoice number and is not a fiscal document.
func (r *Renderer) PreCheck(o *model.Order, menu []model.Dish, s model.Settings) ([]byte, error) {
	if !o.IsOpen() {
		return nil, ErrPreCheckNotOpen
	}
	d := newDoc()
	d.header(s)

	d.line(5, "B", 9, "C", "CONSULTA DE MESA")
	if o.TableID != nil {
		d.line(4, "", 7, "C", fmt.Sprintf("Mesa %d - %s", *o.TableID, o.SubAccountName))
	}
	d.line(4, "", 7, "C", o.Timestamp.Format("02/01/2006 15:04"))
	d.rule()

	d.items(o, menu, s.Currency)
	d.row("B", 10, "TOTAL", Money(o.Total, s.Currency))
	d.pdf.Ln(2)
	d.line(4, "I", 6, "C", "Este documento não serve de fatura")

	return d.bytes()
}

// ShiftClosing renders the end-of-day report.
func (r *Renderer) ShiftClosing(sum model.ShiftSummary, s model.Settings) ([]byte, error) {
	d := newDoc()
	d.header(s)

	d.line(5, "B", 9, "C", "FECHO DE CAIXA")
	d.line(4, "", 7, "C", sum.Day.Format("02/01/2006"))
	if sum.Operator != "" {
		d.line(4, "", 7, "C", "Operador: "+sum.Operator)
	}
	d.rule()

	if sum.Count == 0 {
		d.line(5, "", 8, "C", "Nenhuma venda fechada hoje.")
	}
	for _, m := range model.PaymentMethods {
		if v, ok := sum.ByMethod[m]; ok {
			d.row("", 7, string(m), Money(v, s.Currency))
		}
	}
	d.rule()
	d.row("", 7, "Documentos", fmt.Sprintf("%d", sum.Count))
	d.row("", 7, "Total bruto", Money(sum.Gross, s.Currency))
	d.row("", 7, "Total IVA", Money(sum.Tax, s.Currency))
	d.row("B", 9, "Total liquido", Money(sum.Net, s.Currency))
	d.pdf.Ln(3)
	d.line(4, "", 6, "C", "Gerado em "+sum.GeneratedAt.Format("02/01/2006 15:04"))

	return d.bytes()
}
