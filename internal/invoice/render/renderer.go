// Package render produces the printable invoice artifact. Rendering is a
// pure function of the invoice; failures are non-fatal to storage.
package render

import (
	"fmt"

	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
)

type Renderer interface {
	// Render returns the artifact bytes and its content type.
	Render(invoice *invoicedomain.Invoice) ([]byte, string, error)
}

// ArtifactKey is the blob key an invoice artifact is stored under.
func ArtifactKey(invoice *invoicedomain.Invoice) string {
	return fmt.Sprintf("invoices/%s/%s.pdf", invoice.HotelID, invoice.InvoiceNumber)
}
