// Package reader loads CSV, parquet and JSON Lines files into tibbles.
//
// # Basic Usage
//
// Reading a single file, with the format chosen by extension:
//
//	t, err := reader.ReadFile(ctx, "data.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(t)
//
// Compressed files are recognized by a trailing .gz, .zst, .lz4 or .sz
// extension, as in "events.jsonl.gz".
//
// # Multi-file Operations
//
// Reading multiple files using glob patterns:
//
//	t, err := reader.ReadMultipleFiles(ctx, "data/*.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Each row carries a "_file" column with its source path.
//
// # Schema Introspection
//
//	infos, err := reader.ExtractSchemaInfo("data.parquet")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(reader.String(infos))
//
// # Resource Management
//
// A Reader holds an open file; always call Close when done:
//
//	r, err := reader.NewReader("data.parquet")
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
package reader
