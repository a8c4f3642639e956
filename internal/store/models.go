package store

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/shopspring/decimal"
)

// SC represents the 'scs' table, one purchase requisition per row.
// ID is the 1-based row position in the source sheet.
type SC struct {
	ID           int64               `db:"id"`
	RequestDate  civil.Date          `db:"request_date"`
	Description  string              `db:"description"`
	Status       string              `db:"status"`
	Priority     string              `db:"priority"`
	Requester    string              `db:"requester"`
	Department   string              `db:"department"`
	Category     string              `db:"category"`
	PurchaseDate civil.Date          `db:"purchase_date"`
	OrderID      sql.NullInt64       `db:"order_id"`
	LeadTimeDays sql.NullInt64       `db:"lead_time_days"`
	PaymentDays  sql.NullInt64       `db:"payment_term_days"`
	Amount       decimal.NullDecimal `db:"amount"`
	Supplier     string              `db:"supplier"`
	Buyer        string              `db:"buyer"`
}

// Saving represents the 'savings' table. ReductionAmount and
// ReductionPercent are stored as the sheet had them, never recomputed.
type Saving struct {
	ID               int64               `db:"id"`
	Date             civil.Date          `db:"saving_date"`
	OrderID          sql.NullInt64       `db:"order_id"`
	Supplier         string              `db:"supplier"`
	InitialAmount    decimal.NullDecimal `db:"initial_amount"`
	FinalAmount      decimal.NullDecimal `db:"final_amount"`
	ReductionAmount  decimal.NullDecimal `db:"reduction_amount"`
	ReductionPercent decimal.NullDecimal `db:"reduction_percent"`
	NegotiationNotes string              `db:"negotiation_notes"`
	SavingType       string              `db:"saving_type"`
	Buyer            string              `db:"buyer"`
}

// Snapshot represents the single row of 'ingest_snapshot'. Missing holds the
// labels of the roles the source sheets did not have.
type Snapshot struct {
	UploadTime  Timestamp `db:"upload_time" json:"upload_time"`
	SourceFile  string    `db:"source_file" json:"source_file"`
	SCCount     int       `db:"sc_count" json:"sc_count"`
	SavingCount int       `db:"saving_count" json:"saving_count"`
	Missing     Labels    `db:"missing_columns" json:"missing,omitempty"`
}

// Labels is a list of role labels stored as a JSON array in a TEXT column.
type Labels []string

func (l Labels) Value() (driver.Value, error) {
	if l == nil {
		l = Labels{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *Labels) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("store: cannot scan %T into Labels", src)
	}

	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("store: invalid labels %q: %w", b, err)
	}
	if len(out) == 0 {
		out = nil
	}
	*l = out
	return nil
}

// Dataset is everything one successful ingest committed.
type Dataset struct {
	Snapshot Snapshot
	SCs      []SC
	Savings  []Saving
}
