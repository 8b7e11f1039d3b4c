package model

import (
	"time"
)

// Entity categories produced by the recognizer.
const (
	CategoryOrg   = "ORG"
	CategoryPer   = "PER"
	CategoryLoc   = "LOC"
	CategoryMoney = "MONEY"
	CategoryDate  = "DATE"
	CategoryTime  = "TIME"
)

// Categories lists all recognizer output classes in canonical order.
var Categories = []string{
	CategoryOrg,
	CategoryPer,
	CategoryLoc,
	CategoryMoney,
	CategoryDate,
	CategoryTime,
}

// EntitySet maps an entity category to the raw strings recognized for it.
// Absent categories are treated as empty.
type EntitySet map[string][]string

// FieldMapping maps a contract field name to its resolved value. A mapping
// produced by the field mapper contains every key of FieldNames.
type FieldMapping map[string]string

// FieldNames is the fixed schema of a filled contract. Template consumers may
// assume every one of these keys is present in a mapper result.
var FieldNames = []string{
	"contract_number",
	"contract_date",
	"contract_location",
	"pihak1_name",
	"pihak1_company",
	"pihak1_position",
	"pihak1_address",
	"pihak1_npwp",
	"pihak1_bank_account",
	"pihak2_name",
	"pihak2_company",
	"pihak2_position",
	"pihak2_address",
	"pihak2_npwp",
	"pihak2_bank_account",
	"contract_value",
	"contract_value_words",
	"start_date",
	"end_date",
	"scope_of_work",
	"terms",
	"payment_terms",
	"penalty_percentage",
	"force_majeure_days",
}

// Contract represents one uploaded vendor contract and its derived draft.
type Contract struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	Tenant      string       `json:"tenant"`
	PDFURL      string       `json:"pdf_url"`
	Status      string       `json:"status"` // pending, processing, completed, failed
	Pages       int          `json:"pages,omitempty"`
	Entities    EntitySet    `json:"entities,omitempty"`
	Fields      FieldMapping `json:"fields,omitempty"`
	DraftObject string       `json:"draft_object,omitempty"`
	DraftURL    string       `json:"draft_url,omitempty"`
	ErrorMsg    string       `json:"error_msg,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Contract status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
