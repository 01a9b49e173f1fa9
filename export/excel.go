// Package export persists traversal results: an xlsx workbook for the
// combination table and local copies of the referenced images.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sku-traverser/sku"
)

const sheetName = "Sheet1"

// WriteExcel writes the result table to path. Columns are the dimension
// names in traversal order followed by Price and Image. Prices that parse
// as numbers are stored as numeric cells so the workbook can be summed
// directly; everything else (currency-tagged text, the not-found sentinel)
// stays a string.
func WriteExcel(path string, res *sku.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	header := make([]interface{}, 0, len(res.Dimensions)+2)
	for _, d := range res.Dimensions {
		header = append(header, d.Name)
	}
	header = append(header, "Price", "Image")
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range res.Rows {
		cells := make([]interface{}, 0, len(row.Options)+2)
		for _, opt := range row.Options {
			cells = append(cells, opt)
		}
		cells = append(cells, priceCell(row.Price), row.ImageURL)

		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// priceCell strips a leading currency marker and returns a float64 when the
// remainder is a plain number.
func priceCell(price string) interface{} {
	trimmed := strings.TrimLeft(price, "￥¥$€ ")
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return v
	}
	return price
}
