package pdf

import (
	"context"
	"fmt"

	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	companydomain "github.com/adlift/cashout/internal/company/domain"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type marotoRenderer struct{}

func New() Renderer {
	return &marotoRenderer{}
}

func (r *marotoRenderer) RenderInvoice(ctx context.Context, request billingdomain.BillingRequest, company companydomain.Company) ([]byte, error) {
	if !request.HasFiscalData() {
		return nil, billingdomain.ErrNoFiscalData
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Request: "+request.ID.String(), props.Text{Top: 0}),
			text.New("Issued: "+request.UpdatedAt.Format("2006-01-02"), props.Text{Top: 4}),
			text.New("Platform: "+request.Platform, props.Text{Top: 8}),
		),
		col.New(6).Add(
			text.New(company.Name, props.Text{Style: fontstyle.Bold}),
			text.New("Tax ID: "+company.TaxID, props.Text{Top: 5}),
			text.New(company.Region, props.Text{Top: 9}),
		),
	)

	m.AddRow(10,
		text.NewCol(8, "Concept", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	rows := []struct {
		label  string
		amount string
	}{
		{"Base amount", request.BaseAmount.Decimal.StringFixed(2)},
		{"VAT", request.VAT.Decimal.StringFixed(2)},
		{"Withholding offset", request.WithholdingOffset.Decimal.StringFixed(2)},
	}
	for _, row := range rows {
		m.AddRow(8,
			text.NewCol(8, row.label, props.Text{Size: 9}),
			text.NewCol(4, row.amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(12,
		col.New(6),
		text.NewCol(3, "Total invoiced", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(3, request.TotalInvoiced.Decimal.StringFixed(2), props.Text{
			Style: fontstyle.Bold,
			Size:  10,
			Align: align.Right,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}
