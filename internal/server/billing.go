package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	"github.com/adlift/cashout/internal/tenantctx"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createBillingRequestBody struct {
	CompanyID       string `json:"company_id"`
	Platform        string `json:"platform"`
	RequestedAmount string `json:"requested_amount"`
}

func (s *Server) CreateBillingRequest(c *gin.Context) {
	var body createBillingRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(body.RequestedAmount))
	if err != nil {
		AbortWithError(c, billingdomain.ErrInvalidAmount)
		return
	}

	req := billingdomain.CreateRequest{
		Platform:        strings.ToLower(strings.TrimSpace(body.Platform)),
		RequestedAmount: amount,
	}
	if raw := strings.TrimSpace(body.CompanyID); raw != "" {
		companyID, err := snowflake.ParseString(raw)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: malformed company id", billingdomain.ErrValidation))
			return
		}
		req.CompanyID = &companyID
	}

	record, err := s.ledger.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": record})
}

func (s *Server) ListBillingRequests(c *gin.Context) {
	ctx := c.Request.Context()
	actor, ok := tenantctx.ActorFromContext(ctx)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var (
		records []billingdomain.BillingRequest
		err     error
	)
	if actor.IsAdmin() {
		records, err = s.ledger.FindAll(ctx)
	} else {
		records, err = s.ledger.FindByCompany(ctx, actor.CompanyID)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) GetBillingRequest(c *gin.Context) {
	id, err := requestID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	record, err := s.ledger.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) CalculateBillingRequest(c *gin.Context) {
	s.runTransition(c, s.ledger.Calculate)
}

func (s *Server) ApproveBillingRequest(c *gin.Context) {
	s.runTransition(c, s.ledger.Approve)
}

func (s *Server) InvoiceBillingRequest(c *gin.Context) {
	s.runTransition(c, s.ledger.Invoice)
}

func (s *Server) PayBillingRequest(c *gin.Context) {
	s.runTransition(c, s.ledger.Pay)
}

func (s *Server) CompleteBillingRequest(c *gin.Context) {
	s.runTransition(c, s.ledger.Complete)
}

func (s *Server) FailBillingRequest(c *gin.Context) {
	s.runTransition(c, s.ledger.Fail)
}

func (s *Server) GetAuditTrail(c *gin.Context) {
	id, err := requestID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := s.ledger.Get(ctx, id); err != nil {
		AbortWithError(c, err)
		return
	}

	entries, err := s.auditSvc.ListForRequest(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	id, err := requestID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	record, err := s.ledger.Get(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	company, err := s.companies.GetByID(ctx, record.CompanyID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	doc, err := s.renderer.RenderInvoice(ctx, record, company)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, record.ID))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (s *Server) runTransition(c *gin.Context, op func(ctx context.Context, id snowflake.ID) (billingdomain.BillingRequest, error)) {
	id, err := requestID(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	record, err := op(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": record})
}

func requestID(c *gin.Context) (snowflake.ID, error) {
	raw := strings.TrimSpace(c.Param("id"))
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed request id", billingdomain.ErrValidation)
	}
	return id, nil
}
