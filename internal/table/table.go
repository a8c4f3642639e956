// Package table moves rows between gota dataframes and store records.
//
// Conversion from a loaded sheet is tolerant: a role whose column is
// missing leaves its field empty and is reported once, a cell that does
// not parse is stored as NULL and reported with its row. Neither stops
// the conversion.
package table

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/farxc/purchasing-kpi/internal/parse"
	"github.com/farxc/purchasing-kpi/internal/store"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
)

// Issue is one cell that could not be converted.
type Issue struct {
	Row    int // 1-based, header excluded
	Column string
	Value  string
	Err    error
}

func (i Issue) String() string {
	return fmt.Sprintf("row %d, column %q, value %q: %v", i.Row, i.Column, i.Value, i.Err)
}

// Report collects what a conversion could not use.
type Report struct {
	Missing []string
	Issues  []Issue
}

func (r Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Issues) == 0
}

// cells reads typed values out of a frame, one series per resolved role.
type cells struct {
	cols   map[string]series.Series
	names  map[string]string
	issues []Issue
}

func newCells(df dataframe.DataFrame, roles []columns.Role) (*cells, []string) {
	// Positions count from the stored layout, which starts with ID. A raw
	// sheet has no ID column, so its offsets are one lower.
	shift := 0
	if _, ok := columns.Resolve(df, columns.SCID.Aliases...); !ok {
		shift = 1
	}

	shifted := make([]columns.Role, len(roles))
	for i, r := range roles {
		if r.Position != columns.NoPosition {
			r.Position -= shift
			if r.Position < 0 {
				r.Position = columns.NoPosition
			}
		}
		shifted[i] = r
	}

	res := columns.Lookup(df, shifted...)
	c := &cells{
		cols:  make(map[string]series.Series, len(roles)),
		names: make(map[string]string, len(roles)),
	}
	for _, r := range shifted {
		if name := res.Column(r); name != "" {
			c.cols[r.Label] = df.Col(name)
			c.names[r.Label] = name
		}
	}
	return c, res.Missing
}

func (c *cells) raw(i int, r columns.Role) (string, bool) {
	s, ok := c.cols[r.Label]
	if !ok {
		return "", false
	}
	e := s.Elem(i)
	if e.IsNA() {
		return "", false
	}
	return strings.TrimSpace(e.String()), true
}

func (c *cells) fail(i int, r columns.Role, v string, err error) {
	c.issues = append(c.issues, Issue{Row: i + 1, Column: c.names[r.Label], Value: v, Err: err})
}

func (c *cells) str(i int, r columns.Role) string {
	v, _ := c.raw(i, r)
	return v
}

func (c *cells) date(i int, r columns.Role) civil.Date {
	v, ok := c.raw(i, r)
	if !ok {
		return civil.Date{}
	}
	d, err := parse.Date(v)
	if errors.Is(err, parse.ErrEmpty) {
		return civil.Date{}
	}
	if err != nil {
		c.fail(i, r, v, err)
	}
	return d
}

func (c *cells) integer(i int, r columns.Role) sql.NullInt64 {
	v, ok := c.raw(i, r)
	if !ok {
		return sql.NullInt64{}
	}
	n, err := parse.Int(v)
	if errors.Is(err, parse.ErrEmpty) {
		return sql.NullInt64{}
	}
	if err != nil {
		c.fail(i, r, v, err)
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

func (c *cells) money(i int, r columns.Role) decimal.NullDecimal {
	v, ok := c.raw(i, r)
	if !ok {
		return decimal.NullDecimal{}
	}
	d, err := parse.Amount(v)
	if errors.Is(err, parse.ErrEmpty) {
		return decimal.NullDecimal{}
	}
	if err != nil {
		c.fail(i, r, v, err)
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// SCs converts an SC's sheet into records in row order.
func SCs(df dataframe.DataFrame) ([]store.SC, Report) {
	c, missing := newCells(df, columns.SCRoles[1:])

	rows := make([]store.SC, df.Nrow())
	for i := range rows {
		rows[i] = store.SC{
			RequestDate:  c.date(i, columns.SCRequestDate),
			Description:  c.str(i, columns.SCDescription),
			Status:       c.str(i, columns.SCStatus),
			Priority:     c.str(i, columns.SCPriority),
			Requester:    c.str(i, columns.SCRequester),
			Department:   c.str(i, columns.SCDepartment),
			Category:     c.str(i, columns.SCCategory),
			PurchaseDate: c.date(i, columns.SCPurchaseDate),
			OrderID:      c.integer(i, columns.SCOrderID),
			LeadTimeDays: c.integer(i, columns.SCLeadTime),
			PaymentDays:  c.integer(i, columns.SCPaymentTerm),
			Amount:       c.money(i, columns.SCAmount),
			Supplier:     c.str(i, columns.SCSupplier),
			Buyer:        c.str(i, columns.SCBuyer),
		}
	}
	return rows, Report{Missing: missing, Issues: c.issues}
}

// Savings converts a Saving sheet into records in row order.
func Savings(df dataframe.DataFrame) ([]store.Saving, Report) {
	c, missing := newCells(df, columns.SavingRoles[1:])

	rows := make([]store.Saving, df.Nrow())
	for i := range rows {
		rows[i] = store.Saving{
			Date:             c.date(i, columns.SavingDate),
			OrderID:          c.integer(i, columns.SavingOrderID),
			Supplier:         c.str(i, columns.SavingSupplier),
			InitialAmount:    c.money(i, columns.SavingInitialAmount),
			FinalAmount:      c.money(i, columns.SavingFinalAmount),
			ReductionAmount:  c.money(i, columns.SavingReduction),
			ReductionPercent: c.money(i, columns.SavingReductionPercent),
			NegotiationNotes: c.str(i, columns.SavingNotes),
			SavingType:       c.str(i, columns.SavingType),
			Buyer:            c.str(i, columns.SavingBuyer),
		}
	}
	return rows, Report{Missing: missing, Issues: c.issues}
}
