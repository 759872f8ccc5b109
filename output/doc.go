// Package output provides formatters for writing tibbles.
//
// This package defines the Formatter interface and implementations for
// CSV, JSON Lines, parquet and a rendered text table. Every formatter
// keeps the tibble's column order.
//
// # Supported Formats
//
//   - table: a bordered text table for terminals, NA shown as "NA"
//   - csv: comma-separated values with a header row, NA as an empty field
//   - jsonl: one JSON object per line, NA as null
//   - parquet: optional columns, snappy compressed
//
// # Basic Usage
//
//	formatter, err := output.NewFormatter("csv", os.Stdout)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := formatter.Format(t); err != nil {
//	    log.Fatal(err)
//	}
//
// # Writing Files
//
// WriteFile picks the format from the extension and compresses when the
// path ends in .gz, .zst, .lz4 or .sz:
//
//	if err := output.WriteFile("out.jsonl.gz", t); err != nil {
//	    log.Fatal(err)
//	}
//
// # CSV Injection
//
// Text fields starting with =, +, -, @, |, a tab or a line break are
// prefixed with a single quote so spreadsheet applications do not run
// them as formulas. Signed numbers are written unchanged.
package output
