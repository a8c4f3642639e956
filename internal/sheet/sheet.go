// Package sheet loads the two upstream sheets into string dataframes.
//
// Every column is kept as series.String. Typing happens later in package
// table, where a cell that does not parse can be reported instead of
// silently turned into NA by type detection.
package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var ErrNoRows = errors.New("sheet has no data rows")

// Tables is one upload: the SC's sheet and the Saving sheet, unconverted.
type Tables struct {
	SCs     dataframe.DataFrame
	Savings dataframe.DataFrame
}

type Encoding string

const (
	UTF8        Encoding = "utf8"
	Windows1252 Encoding = "windows1252"
)

func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "")) {
	case "", "utf8":
		return UTF8, nil
	case "windows1252", "cp1252", "latin1":
		return Windows1252, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", s)
}

// CSVOptions control ReadCSVPair. A zero Delimiter is sniffed from the
// header line.
type CSVOptions struct {
	Encoding  Encoding
	Delimiter rune
}

// load builds a string frame from a header row and its data rows. A
// header-only table gives a frame with those columns and no rows.
func load(records [][]string) (dataframe.DataFrame, error) {
	if len(records) == 0 {
		return dataframe.DataFrame{}, ErrNoRows
	}
	if len(records) == 1 {
		cols := make([]series.Series, len(records[0]))
		for i, name := range records[0] {
			cols[i] = series.New([]string{}, series.String, name)
		}
		df := dataframe.New(cols...)
		return df, df.Error()
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.HasHeader(true),
	)
	return df, df.Error()
}

// ReadWorkbook reads the SC's and Saving sheets of an .xlsx workbook.
// Cells are taken raw, so dates arrive as spreadsheet serials and amounts
// without the sheet's number format. The SC's sheet needs data rows; the
// Saving sheet only needs its header.
func ReadWorkbook(r io.Reader) (Tables, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Tables{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	scs, err := readSheet(f, columns.SheetSCs, false)
	if err != nil {
		return Tables{}, err
	}
	savings, err := readSheet(f, columns.SheetSavings, true)
	if err != nil {
		return Tables{}, err
	}
	return Tables{SCs: scs, Savings: savings}, nil
}

func readSheet(f *excelize.File, name string, allowEmpty bool) (dataframe.DataFrame, error) {
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to read sheet %q: %w", name, err)
	}

	records := normalize(rows)
	if len(records) == 0 || (len(records) == 1 && !allowEmpty) {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %q: %w", name, ErrNoRows)
	}

	df, err := load(records)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to load sheet %q: %w", name, err)
	}
	return df, nil
}

// normalize drops blank rows and pads short rows to the header width.
// excelize trims trailing empty cells, so rows come back ragged.
func normalize(rows [][]string) [][]string {
	if len(rows) == 0 {
		return nil
	}
	width := len(rows[0])

	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		if i > 0 && blank(row) {
			continue
		}
		if len(row) > width {
			row = row[:width]
		}
		for len(row) < width {
			row = append(row, "")
		}
		out = append(out, row)
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ReadCSVPair reads one CSV file per sheet. As with ReadWorkbook, the
// Saving file may hold only its header.
func ReadCSVPair(scs, savings io.Reader, opts CSVOptions) (Tables, error) {
	scDF, err := ReadCSV(scs, opts)
	if err != nil {
		return Tables{}, fmt.Errorf("%s: %w", columns.SheetSCs, err)
	}
	savingDF, err := readCSV(savings, opts)
	if err != nil {
		return Tables{}, fmt.Errorf("%s: %w", columns.SheetSavings, err)
	}
	return Tables{SCs: scDF, Savings: savingDF}, nil
}

// ReadCSV reads one sheet exported as CSV. It returns ErrNoRows when the
// file has no data rows.
func ReadCSV(r io.Reader, opts CSVOptions) (dataframe.DataFrame, error) {
	df, err := readCSV(r, opts)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if df.Nrow() == 0 {
		return dataframe.DataFrame{}, ErrNoRows
	}
	return df, nil
}

func readCSV(r io.Reader, opts CSVOptions) (dataframe.DataFrame, error) {
	if opts.Encoding == Windows1252 {
		r = charmap.Windows1252.NewDecoder().Reader(r)
	}

	br := bufio.NewReader(r)
	if opts.Encoding != Windows1252 {
		if bom, _ := br.Peek(3); bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
			br.Discard(3)
		}
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(br)
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to read csv: %w", err)
	}

	df, err := load(normalize(rows))
	if err != nil {
		if errors.Is(err, ErrNoRows) {
			return dataframe.DataFrame{}, err
		}
		return dataframe.DataFrame{}, fmt.Errorf("failed to read csv: %w", err)
	}
	return df, nil
}

// Exports from pt-BR spreadsheets use ';' because ',' is the decimal mark.
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(4096)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) >= bytes.Count(head, []byte{','}) && bytes.Contains(head, []byte{';'}) {
		return ';'
	}
	return ','
}
