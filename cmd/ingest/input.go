package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/farxc/purchasing-kpi/internal/sheet"
)

// input is what the flags ask to load: a workbook, or a CSV pair.
type input struct {
	workbook string
	scs      string
	savings  string
	source   string
	encoding string
}

func (in input) read() (sheet.Tables, string, error) {
	switch {
	case in.workbook != "" && (in.scs != "" || in.savings != ""):
		return sheet.Tables{}, "", errors.New("use either -file or -scs with -savings, not both")
	case in.workbook != "":
		return in.readWorkbook()
	case in.scs != "" && in.savings != "":
		return in.readCSVPair()
	}
	return sheet.Tables{}, "", errors.New("nothing to ingest: pass -file, or -scs and -savings")
}

func (in input) sourceName(fallback string) string {
	if in.source != "" {
		return in.source
	}
	return fallback
}

func (in input) readWorkbook() (sheet.Tables, string, error) {
	f, err := os.Open(in.workbook)
	if err != nil {
		return sheet.Tables{}, "", err
	}
	defer f.Close()

	tables, err := sheet.ReadWorkbook(f)
	if err != nil {
		return sheet.Tables{}, "", fmt.Errorf("%s: %w", in.workbook, err)
	}
	return tables, in.sourceName(filepath.Base(in.workbook)), nil
}

func (in input) readCSVPair() (sheet.Tables, string, error) {
	encoding, err := sheet.ParseEncoding(in.encoding)
	if err != nil {
		return sheet.Tables{}, "", err
	}

	scs, err := os.Open(in.scs)
	if err != nil {
		return sheet.Tables{}, "", err
	}
	defer scs.Close()

	savings, err := os.Open(in.savings)
	if err != nil {
		return sheet.Tables{}, "", err
	}
	defer savings.Close()

	tables, err := sheet.ReadCSVPair(scs, savings, sheet.CSVOptions{Encoding: encoding})
	if err != nil {
		return sheet.Tables{}, "", err
	}
	return tables, in.sourceName(filepath.Base(in.scs) + "+" + filepath.Base(in.savings)), nil
}
