package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	obscontext "github.com/smallbiznis/crudpark/internal/observability/context"
	ticketdomain "github.com/smallbiznis/crudpark/internal/ticket/domain"
	"github.com/smallbiznis/crudpark/pkg/db/pagination"
)

type entryRequest struct {
	Plate string `json:"plate"`
}

type entryResponse struct {
	Ticket         ticketdomain.Ticket `json:"ticket"`
	ReceiptWarning string              `json:"receipt_warning,omitempty"`
}

func (s *Server) RegisterEntry(c *gin.Context) {
	var req entryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.ticketSvc.RegisterEntry(c.Request.Context(), ticketdomain.EntryRequest{
		Plate:      req.Plate,
		OperatorID: operatorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(obscontext.FolioKey, res.Ticket.Folio)
	c.JSON(http.StatusCreated, gin.H{"data": entryResponse{
		Ticket:         res.Ticket,
		ReceiptWarning: receiptWarning(res.ReceiptErr),
	}})
}

type exitRequest struct {
	Plate  string `json:"plate"`
	Method string `json:"method"`
}

type exitResponse struct {
	Ticket         ticketdomain.Ticket `json:"ticket"`
	Charge         string              `json:"charge"`
	MinutesStayed  int64               `json:"minutes_stayed"`
	PaymentID      string              `json:"payment_id,omitempty"`
	ReceiptWarning string              `json:"receipt_warning,omitempty"`
}

func (s *Server) RegisterExit(c *gin.Context) {
	var req exitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.ticketSvc.RegisterExit(c.Request.Context(), ticketdomain.ExitRequest{
		Plate:      req.Plate,
		OperatorID: operatorID(c),
		Method:     req.Method,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := exitResponse{
		Ticket:         res.Ticket,
		Charge:         res.Charge.StringFixed(2),
		MinutesStayed:  res.MinutesStayed,
		ReceiptWarning: receiptWarning(res.ReceiptErr),
	}
	if res.PaymentID != nil {
		resp.PaymentID = res.PaymentID.String()
	}

	c.Set(obscontext.FolioKey, res.Ticket.Folio)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type manualPaymentRequest struct {
	Plate  string          `json:"plate"`
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

type manualPaymentResponse struct {
	Recorded  bool                `json:"recorded"`
	Ticket    ticketdomain.Ticket `json:"ticket"`
	PaymentID string              `json:"payment_id"`
}

func (s *Server) RegisterManualPayment(c *gin.Context) {
	var req manualPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("amount", "invalid_amount", "amount must be a decimal number"))
		return
	}

	res, err := s.ticketSvc.RegisterManualPayment(c.Request.Context(), ticketdomain.ManualPaymentRequest{
		Plate:      req.Plate,
		Amount:     req.Amount,
		Method:     req.Method,
		OperatorID: operatorID(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(obscontext.FolioKey, res.Ticket.Folio)
	c.JSON(http.StatusOK, gin.H{"data": manualPaymentResponse{
		Recorded:  res.Recorded,
		Ticket:    res.Ticket,
		PaymentID: res.PaymentID.String(),
	}})
}

func (s *Server) ListOpenTickets(c *gin.Context) {
	var query pagination.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ticketSvc.ListOpen(c.Request.Context(), ticketdomain.ListOpenRequest{Pagination: query})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTicketByFolio(c *gin.Context) {
	resp, err := s.ticketSvc.GetByFolio(c.Request.Context(), c.Param("folio"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func receiptWarning(err error) string {
	if err == nil {
		return ""
	}
	return "receipt could not be printed: " + err.Error()
}
