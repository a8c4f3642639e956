package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/farxc/purchasing-kpi/internal/columns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestReadCSVPair(t *testing.T) {
	dir := t.TempDir()
	latin, err := charmap.Windows1252.NewEncoder().String("Data;Descrição;Pedido;Valor\n01/07/2025;VÁLVULA;100;1.000,00\n")
	require.NoError(t, err)

	in := input{
		scs:      writeFile(t, dir, "scs.csv", []byte(latin)),
		savings:  writeFile(t, dir, "saving.csv", []byte("Data,Pedido,VALOR FINAL\n2025-07-01,100,1000\n")),
		encoding: "windows1252",
	}

	tables, source, err := in.read()
	require.NoError(t, err)
	assert.Equal(t, "scs.csv+saving.csv", source)
	assert.Equal(t, []string{"Data", "Descrição", "Pedido", "Valor"}, tables.SCs.Names())
	assert.Equal(t, "VÁLVULA", tables.SCs.Col("Descrição").Elem(0).String())
	assert.Equal(t, 1, tables.Savings.Nrow())
}

func TestReadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	for _, name := range []string{columns.SheetSCs, columns.SheetSavings} {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(name, "A1", &[]any{"Data", "Pedido"}))
		require.NoError(t, f.SetSheetRow(name, "A2", &[]any{45839, 100}))
	}
	require.NoError(t, f.DeleteSheet("Sheet1"))

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))

	tables, source, err := input{workbook: path, source: "july"}.read()
	require.NoError(t, err)
	assert.Equal(t, "july", source)
	assert.Equal(t, 1, tables.SCs.Nrow())
	assert.Equal(t, 1, tables.Savings.Nrow())
}

func TestReadRejectsFlagCombinations(t *testing.T) {
	for _, in := range []input{
		{},
		{scs: "a.csv"},
		{workbook: "book.xlsx", savings: "b.csv"},
	} {
		_, _, err := in.read()
		assert.Error(t, err)
	}

	_, _, err := input{scs: "a.csv", savings: "b.csv", encoding: "ebcdic"}.read()
	assert.ErrorContains(t, err, "unsupported encoding")
}
