// Package pdf renders a finalized billing request as an invoice document.
package pdf

import (
	"context"

	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	companydomain "github.com/adlift/cashout/internal/company/domain"
	"go.uber.org/fx"
)

// Module provides the maroto-backed renderer.
var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

// Renderer produces the invoice byte stream for a billing request. A
// request without fiscal data cannot be rendered.
type Renderer interface {
	RenderInvoice(ctx context.Context, request billingdomain.BillingRequest, company companydomain.Company) ([]byte, error)
}
