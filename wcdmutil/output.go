/*
Copyright © 2019 the WCDM authors.
This file is part of WCDM.

WCDM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WCDM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WCDM.  If not, see <http://www.gnu.org/licenses/>.
*/

package wcdmutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spatialmodel/wcdm"
	"github.com/tealeg/xlsx"
)

// table arranges snapshots and output variables into rows. Each row
// holds the step number, the time, the amount in each patch, and then
// each output variable in alphabetical order.
func table(r *wcdm.Snapshots, o *wcdm.Outputter) (header []string, rows [][]float64, err error) {
	results, err := o.Results(r)
	if err != nil {
		return nil, nil, err
	}
	header = append([]string{"Step", wcdm.TimeVar}, r.Names...)
	header = append(header, o.Names()...)
	rows = make([][]float64, r.Len())
	for i := range rows {
		row := make([]float64, 0, len(header))
		row = append(row, float64(i), r.Times[i])
		row = append(row, r.Amounts[i]...)
		for _, n := range o.Names() {
			row = append(row, results[n][i])
		}
		rows[i] = row
	}
	return header, rows, nil
}

// WriteCSV writes the snapshots and output variables to w in CSV format.
func WriteCSV(w io.Writer, r *wcdm.Snapshots, o *wcdm.Outputter) error {
	header, rows, err := table(r, o)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	rec := make([]string, len(header))
	for _, row := range rows {
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the snapshots and output variables to an Excel
// workbook with an "Amounts" sheet and a "Shares" sheet.
func WriteXLSX(w io.Writer, r *wcdm.Snapshots, o *wcdm.Outputter) error {
	header, rows, err := table(r, o)
	if err != nil {
		return err
	}
	f := xlsx.NewFile()
	amounts, err := f.AddSheet("Amounts")
	if err != nil {
		return err
	}
	addRows(amounts, header, rows)

	shares, err := f.AddSheet("Shares")
	if err != nil {
		return err
	}
	shareRows := make([][]float64, r.Len())
	for i, s := range r.Shares() {
		shareRows[i] = append([]float64{float64(i), r.Times[i]}, s...)
	}
	addRows(shares, append([]string{"Step", wcdm.TimeVar}, r.Names...), shareRows)

	return f.Write(w)
}

func addRows(sheet *xlsx.Sheet, header []string, rows [][]float64) {
	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().SetString(h)
	}
	for _, row := range rows {
		xr := sheet.AddRow()
		for _, v := range row {
			xr.AddCell().SetFloat(v)
		}
	}
}

// writeOutput writes the results to fileName, choosing the format
// from the file extension.
func writeOutput(fileName string, r *wcdm.Snapshots, o *wcdm.Outputter) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("wcdmutil: problem creating output file: %v", err)
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		err = WriteXLSX(f, r, o)
	default:
		err = WriteCSV(f, r, o)
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("wcdmutil: problem writing output file: %v", err)
	}
	return f.Close()
}
