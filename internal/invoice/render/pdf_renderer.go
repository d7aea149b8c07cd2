package render

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/props"

	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
)

type pdfRenderer struct{}

func NewRenderer() Renderer {
	return pdfRenderer{}
}

func (pdfRenderer) Render(invoice *invoicedomain.Invoice) ([]byte, string, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, "Invoice "+invoice.InvoiceNumber, props.Text{Size: 14, Style: fontstyle.Bold}),
		text.NewCol(4, invoice.IssuedAt.Format("2006-01-02 15:04"), props.Text{Size: 10, Align: align.Right}),
	)
	m.AddRow(8,
		text.NewCol(12, fmt.Sprintf("Table %d", invoice.TableNumber), props.Text{Size: 10}),
	)

	m.AddRow(7,
		text.NewCol(6, "Dish", props.Text{Size: 9, Style: fontstyle.Bold}),
		text.NewCol(2, "Qty", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Unit", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, item := range invoice.Items {
		m.AddRow(6,
			text.NewCol(6, item.DishName, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.LineTotal.StringFixed(2), props.Text{Size: 9, Align: align.Right}),
		)
	}

	addTotal := func(label, value string, bold bool) {
		style := fontstyle.Normal
		if bold {
			style = fontstyle.Bold
		}
		m.AddRow(6,
			text.NewCol(8, "", props.Text{}),
			text.NewCol(2, label, props.Text{Size: 9, Style: style}),
			text.NewCol(2, value, props.Text{Size: 9, Style: style, Align: align.Right}),
		)
	}
	addTotal("Subtotal", invoice.Subtotal.StringFixed(2), false)
	if !invoice.Discount.IsZero() {
		addTotal("Discount", "-"+invoice.Discount.StringFixed(2), false)
	}
	addTotal(fmt.Sprintf("Tax %s%%", invoice.TaxPercentage.String()), invoice.TaxAmount.StringFixed(2), false)
	addTotal(fmt.Sprintf("Service %s%%", invoice.ServicePercentage.String()), invoice.ServiceAmount.StringFixed(2), false)
	addTotal("Total", invoice.GrandTotal.StringFixed(2), true)

	doc, err := m.Generate()
	if err != nil {
		return nil, "", err
	}
	return doc.GetBytes(), "application/pdf", nil
}
