package sale

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates the sale workflow does not exist or has closed.
	ErrNotFound = errors.New("sale not found")
	// ErrLineNotFound indicates a line index outside the session.
	ErrLineNotFound = errors.New("line item not found")
	// ErrPieceNotFound indicates a piece index outside the line item.
	ErrPieceNotFound = errors.New("piece not found")
	// ErrProductRequired occurs when color or quantity is set before a product.
	ErrProductRequired = errors.New("product must be selected first")
	// ErrInvalidPrice occurs when a unit price is not a non-negative number.
	ErrInvalidPrice = errors.New("unit price must be a non-negative number")
	// ErrInvalidStage occurs when an operation does not fit the workflow stage.
	ErrInvalidStage = errors.New("operation not allowed in current stage")
	// ErrBusy occurs when another request holds the workflow.
	ErrBusy = errors.New("sale is busy")
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("sale validation failed")
	// ErrCommitFailed wraps any failure while committing a confirmed sale.
	ErrCommitFailed = errors.New("sale commit failed")
)

// Field names the category of a missing or invalid input.
type Field string

const (
	FieldLineItems     Field = "line_items"
	FieldProduct       Field = "product"
	FieldColor         Field = "color"
	FieldQuantity      Field = "quantity"
	FieldInvoiceNumber Field = "invoice_number"
	FieldCustomer      Field = "customer"
)

// fieldOrder is the order in which failing categories are reported.
var fieldOrder = []Field{FieldLineItems, FieldProduct, FieldColor, FieldQuantity, FieldInvoiceNumber, FieldCustomer}

// ValidationError lists every field category blocking the transition to review.
type ValidationError struct {
	Fields []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, string(f))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// CommitStep names the stage of a commit that failed.
type CommitStep string

const (
	StepJournal    CommitStep = "journal"
	StepAdjustment CommitStep = "adjustment"
	StepInvoice    CommitStep = "invoice"
)

// CommitError records where a commit stopped.
type CommitError struct {
	Step CommitStep
	Line int
	Err  error
}

func (e *CommitError) Error() string {
	if e.Step == StepInvoice {
		return fmt.Sprintf("sale: create invoice: %v", e.Err)
	}
	return fmt.Sprintf("sale: %s for line %d: %v", e.Step, e.Line+1, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
