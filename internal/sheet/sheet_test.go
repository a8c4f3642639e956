package sheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/farxc/purchasing-kpi/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func workbook(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadWorkbook(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		columns.SheetSCs: {
			{"Data", "Descrição", "Pedido", "Valor", "Comprador"},
			{time.Date(2025, time.July, 14, 0, 0, 0, 0, time.UTC), "SENSOR", 122978, 235.5, "MATHEUS"},
			{},
			{"15/07/2025", "VÁLVULA", 123058},
		},
		columns.SheetSavings: {
			{"Data", "Número Pedido", "VALOR FINAL"},
			{"15/07/2025", 123058, 1180},
		},
	})

	tables, err := ReadWorkbook(buf)
	require.NoError(t, err)

	scs := tables.SCs
	assert.Equal(t, 2, scs.Nrow())
	assert.Equal(t, []string{"Data", "Descrição", "Pedido", "Valor", "Comprador"}, scs.Names())

	d, err := parse.Date(scs.Col("Data").Elem(0).String())
	require.NoError(t, err)
	assert.Equal(t, civil.New(2025, time.July, 14), d)
	assert.Equal(t, "122978", scs.Col("Pedido").Elem(0).String())
	assert.Equal(t, "235.5", scs.Col("Valor").Elem(0).String())

	// Short rows are padded.
	assert.Equal(t, "", scs.Col("Comprador").Elem(1).String())

	assert.Equal(t, 1, tables.Savings.Nrow())
	assert.Equal(t, "1180", tables.Savings.Col("VALOR FINAL").Elem(0).String())
}

func TestReadWorkbookMissingSheet(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		columns.SheetSCs: {{"Pedido"}, {1}},
	})
	_, err := ReadWorkbook(buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), columns.SheetSavings)
}

func TestReadWorkbookHeaderOnly(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		columns.SheetSCs:     {{"Pedido"}},
		columns.SheetSavings: {{"Número Pedido"}, {1}},
	})
	_, err := ReadWorkbook(buf)
	assert.ErrorIs(t, err, ErrNoRows)
	assert.Contains(t, err.Error(), columns.SheetSCs)
}

func TestReadWorkbookEmptySavingSheet(t *testing.T) {
	buf := workbook(t, map[string][][]any{
		columns.SheetSCs:     {{"Pedido", "Valor"}, {1, 10}},
		columns.SheetSavings: {{"Data", "Número Pedido", "VALOR FINAL"}},
	})
	tables, err := ReadWorkbook(buf)
	require.NoError(t, err)
	assert.Equal(t, 1, tables.SCs.Nrow())
	assert.Equal(t, 0, tables.Savings.Nrow())
	assert.Equal(t, []string{"Data", "Número Pedido", "VALOR FINAL"}, tables.Savings.Names())

	// Without even a header the sheet is still rejected.
	buf = workbook(t, map[string][][]any{
		columns.SheetSCs:     {{"Pedido"}, {1}},
		columns.SheetSavings: {},
	})
	_, err = ReadWorkbook(buf)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestReadWorkbookNotAWorkbook(t *testing.T) {
	_, err := ReadWorkbook(strings.NewReader("Pedido;Valor\n1;2\n"))
	assert.Error(t, err)
}

func TestReadCSVSniffsDelimiter(t *testing.T) {
	semi, err := ReadCSV(strings.NewReader("Pedido;Valor\n100;1.234,56\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pedido", "Valor"}, semi.Names())
	assert.Equal(t, "1.234,56", semi.Col("Valor").Elem(0).String())

	comma, err := ReadCSV(strings.NewReader("Pedido,Valor\n100,1234.56\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, "1234.56", comma.Col("Valor").Elem(0).String())
}

func TestReadCSVKeepsStrings(t *testing.T) {
	// Leading zeros would be lost to type detection.
	df, err := ReadCSV(strings.NewReader("Pedido;Valor\n00100;10\n"), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, "00100", df.Col("Pedido").Elem(0).String())
}

func TestReadCSVWindows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("Descrição;Número Pedido\nVÁLVULA;1\n")
	require.NoError(t, err)

	df, err := ReadCSV(strings.NewReader(encoded), CSVOptions{Encoding: Windows1252})
	require.NoError(t, err)
	assert.Equal(t, []string{"Descrição", "Número Pedido"}, df.Names())
	assert.Equal(t, "VÁLVULA", df.Col("Descrição").Elem(0).String())
}

func TestReadCSVStripsBOM(t *testing.T) {
	df, err := ReadCSV(strings.NewReader("\xEF\xBB\xBFPedido;Valor\n1;2\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Pedido", df.Names()[0])
}

func TestReadCSVPair(t *testing.T) {
	tables, err := ReadCSVPair(
		strings.NewReader("Pedido;Valor\n1;2\n"),
		strings.NewReader("Número Pedido;VALOR FINAL\n1;2\n"),
		CSVOptions{},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, tables.SCs.Nrow())
	assert.Equal(t, 1, tables.Savings.Nrow())
}

func TestReadCSVPairEmptySaving(t *testing.T) {
	tables, err := ReadCSVPair(
		strings.NewReader("Pedido;Valor\n1;2\n"),
		strings.NewReader("Número Pedido;VALOR FINAL\n"),
		CSVOptions{},
	)
	require.NoError(t, err)
	assert.Equal(t, 0, tables.Savings.Nrow())
	assert.Equal(t, []string{"Número Pedido", "VALOR FINAL"}, tables.Savings.Names())

	_, err = ReadCSVPair(
		strings.NewReader("Pedido;Valor\n"),
		strings.NewReader("Número Pedido;VALOR FINAL\n1;2\n"),
		CSVOptions{},
	)
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestReadCSVPadsRaggedRows(t *testing.T) {
	df, err := ReadCSV(strings.NewReader("Pedido;Valor;Comprador\n1;2\n\n3;4;ANA\n"), CSVOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, df.Nrow())
	assert.Equal(t, "", df.Col("Comprador").Elem(0).String())
	assert.Equal(t, "ANA", df.Col("Comprador").Elem(1).String())
}

func TestParseEncoding(t *testing.T) {
	for in, want := range map[string]Encoding{"": UTF8, "UTF-8": UTF8, "windows-1252": Windows1252, "latin1": Windows1252} {
		got, err := ParseEncoding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseEncoding("ebcdic")
	assert.Error(t, err)
}
