package main

import (
	"log"

	"github.com/vegasq/tibble/output"
	"github.com/vegasq/tibble/tibble"
)

func main() {
	users, err := tibble.FromRows(
		[]string{"id", "name", "age", "active", "score", "team"},
		[][]interface{}{
			{1, "alice", 30, true, 95.5, "red"},
			{2, "bob", 25, false, 82.3, "blue"},
			{3, "charlie", 35, true, 88.7, "red"},
			{4, "diana", 28, true, 91.2, "green"},
			{5, "eve", 42, false, nil, "blue"},
		},
	)
	if err != nil {
		log.Fatal(err)
	}

	for _, path := range []string{"simple.csv", "simple.parquet", "simple.jsonl.gz"} {
		if err := output.WriteFile(path, users); err != nil {
			log.Fatal(err)
		}
		log.Printf("Generated %s with %d users", path, users.Nrow())
	}
}
