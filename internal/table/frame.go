package table

import (
	"database/sql"
	"strconv"

	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/farxc/purchasing-kpi/internal/store"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/shopspring/decimal"
)

// gota turns this string into an NA element for every series type.
const na = "NaN"

type column struct {
	role columns.Role
	typ  series.Type
	vals []string
}

func newColumn(r columns.Role, t series.Type, n int) *column {
	return &column{role: r, typ: t, vals: make([]string, 0, n)}
}

func (c *column) series() series.Series {
	return series.New(c.vals, c.typ, c.role.Canonical())
}

// placeholder keeps the offset of a role the source sheet lacked. Every cell
// is NA and the header never resolves.
func (c *column) placeholder() series.Series {
	vals := make([]string, len(c.vals))
	for i := range vals {
		vals[i] = na
	}
	return series.New(vals, c.typ, c.role.Absent())
}

func frame(cols []*column, missing []string) dataframe.DataFrame {
	absent := make(map[string]bool, len(missing))
	for _, m := range missing {
		absent[m] = true
	}

	s := make([]series.Series, len(cols))
	for i, c := range cols {
		if absent[c.role.Label] {
			s[i] = c.placeholder()
			continue
		}
		s[i] = c.series()
	}
	return dataframe.New(s...)
}

func dateCell(d civil.Date) string {
	if d.IsZero() {
		return na
	}
	return d.String()
}

func intCell(v sql.NullInt64) string {
	if !v.Valid {
		return na
	}
	return strconv.FormatInt(v.Int64, 10)
}

func moneyCell(v decimal.NullDecimal) string {
	if !v.Valid {
		return na
	}
	return v.Decimal.String()
}

// SCFrame builds the canonical SC's frame: the headers of columns.SCRoles in
// that order, dates as YYYY-MM-DD strings, ids and day counts as Int, amounts
// as Float. NULLs become NA. The roles labelled in missing get a placeholder
// column, so lookups on the frame report them missing as on the source sheet.
func SCFrame(rows []store.SC, missing ...string) dataframe.DataFrame {
	n := len(rows)
	var (
		id           = newColumn(columns.SCID, series.Int, n)
		requestDate  = newColumn(columns.SCRequestDate, series.String, n)
		description  = newColumn(columns.SCDescription, series.String, n)
		status       = newColumn(columns.SCStatus, series.String, n)
		priority     = newColumn(columns.SCPriority, series.String, n)
		requester    = newColumn(columns.SCRequester, series.String, n)
		department   = newColumn(columns.SCDepartment, series.String, n)
		category     = newColumn(columns.SCCategory, series.String, n)
		purchaseDate = newColumn(columns.SCPurchaseDate, series.String, n)
		orderID      = newColumn(columns.SCOrderID, series.Int, n)
		leadTime     = newColumn(columns.SCLeadTime, series.Int, n)
		paymentTerm  = newColumn(columns.SCPaymentTerm, series.Int, n)
		amount       = newColumn(columns.SCAmount, series.Float, n)
		supplier     = newColumn(columns.SCSupplier, series.String, n)
		buyer        = newColumn(columns.SCBuyer, series.String, n)
	)

	for _, r := range rows {
		id.vals = append(id.vals, strconv.FormatInt(r.ID, 10))
		requestDate.vals = append(requestDate.vals, dateCell(r.RequestDate))
		description.vals = append(description.vals, r.Description)
		status.vals = append(status.vals, r.Status)
		priority.vals = append(priority.vals, r.Priority)
		requester.vals = append(requester.vals, r.Requester)
		department.vals = append(department.vals, r.Department)
		category.vals = append(category.vals, r.Category)
		purchaseDate.vals = append(purchaseDate.vals, dateCell(r.PurchaseDate))
		orderID.vals = append(orderID.vals, intCell(r.OrderID))
		leadTime.vals = append(leadTime.vals, intCell(r.LeadTimeDays))
		paymentTerm.vals = append(paymentTerm.vals, intCell(r.PaymentDays))
		amount.vals = append(amount.vals, moneyCell(r.Amount))
		supplier.vals = append(supplier.vals, r.Supplier)
		buyer.vals = append(buyer.vals, r.Buyer)
	}

	return frame([]*column{
		id, requestDate, description, status, priority, requester, department,
		category, purchaseDate, orderID, leadTime, paymentTerm, amount, supplier, buyer,
	}, missing)
}

// SavingFrame builds the canonical Saving frame in columns.SavingRoles order.
func SavingFrame(rows []store.Saving, missing ...string) dataframe.DataFrame {
	n := len(rows)
	var (
		id        = newColumn(columns.SavingID, series.Int, n)
		date      = newColumn(columns.SavingDate, series.String, n)
		orderID   = newColumn(columns.SavingOrderID, series.Int, n)
		supplier  = newColumn(columns.SavingSupplier, series.String, n)
		initial   = newColumn(columns.SavingInitialAmount, series.Float, n)
		final     = newColumn(columns.SavingFinalAmount, series.Float, n)
		reduction = newColumn(columns.SavingReduction, series.Float, n)
		percent   = newColumn(columns.SavingReductionPercent, series.Float, n)
		notes     = newColumn(columns.SavingNotes, series.String, n)
		kind      = newColumn(columns.SavingType, series.String, n)
		buyer     = newColumn(columns.SavingBuyer, series.String, n)
	)

	for _, r := range rows {
		id.vals = append(id.vals, strconv.FormatInt(r.ID, 10))
		date.vals = append(date.vals, dateCell(r.Date))
		orderID.vals = append(orderID.vals, intCell(r.OrderID))
		supplier.vals = append(supplier.vals, r.Supplier)
		initial.vals = append(initial.vals, moneyCell(r.InitialAmount))
		final.vals = append(final.vals, moneyCell(r.FinalAmount))
		reduction.vals = append(reduction.vals, moneyCell(r.ReductionAmount))
		percent.vals = append(percent.vals, moneyCell(r.ReductionPercent))
		notes.vals = append(notes.vals, r.NegotiationNotes)
		kind.vals = append(kind.vals, r.SavingType)
		buyer.vals = append(buyer.vals, r.Buyer)
	}

	return frame([]*column{
		id, date, orderID, supplier, initial, final, reduction, percent, notes, kind, buyer,
	}, missing)
}
