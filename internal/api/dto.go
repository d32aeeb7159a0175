package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/fehu/internal/models"
)

// AskRequest is the request body for the question endpoint.
type AskRequest struct {
	Question string `json:"question" example:"how much did i spend this month" validate:"required"`
}

// Validate enforces the question constraints.
func (r AskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Question, validation.Required, validation.Length(1, 500)),
	)
}

// AskResponse carries the interpreter's answer.
type AskResponse struct {
	Answer string `json:"answer" validate:"required"`
}

// ReceiptListResponse wraps receipt listings.
type ReceiptListResponse struct {
	Receipts []models.Receipt `json:"receipts" validate:"required"`
	Total    int              `json:"total" example:"42" validate:"required"`
}

// ItemListResponse wraps the line items of one receipt.
type ItemListResponse struct {
	Items []models.LineItem `json:"items" validate:"required"`
}

// SummaryResponse wraps the monthly spending summary.
type SummaryResponse struct {
	Months []models.MonthTotal `json:"months" validate:"required"`
}
