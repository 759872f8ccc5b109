// Package tibble provides a tibble-flavored verb API over gota data frames.
//
// A Tibble wraps one dataframe.DataFrame and never modifies it: every verb
// returns a new Tibble.
//
// # Basic Usage
//
//	t, err := tibble.ReadCSV(f)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := t.Filter(tibble.Expr("$price > 10"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err = out.Arrange("category", "-price")
//
// # Grouped Verbs
//
// GroupBy partitions rows by key columns. Mutate, Summarize, Filter and the
// slice verbs then run once per group and the results are concatenated in
// the order each group was first seen:
//
//	g, err := t.GroupBy("cat")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	summary, err := g.Summarize(
//	    tibble.As("mu", tibble.Expr("mean($v)")),
//	    tibble.As("n", tibble.Expr("n()")),
//	)
//
// Computations are either expressions in the expr language or Go
// functions receiving the group as a Tibble:
//
//	tibble.As("range", tibble.Func(func(g *tibble.Tibble) (interface{}, error) {
//	    ...
//	}))
//
// # Joins
//
// JoinLeft, JoinRight, JoinInner, JoinOuter, JoinSemi, JoinAnti and
// JoinFuzzy take the right-hand tibble and options:
//
//	joined, err := orders.JoinLeft(customers, tibble.On("customer_id"))
//	nearest, err := trades.JoinFuzzy(quotes, tibble.On("time"), tibble.By("ticker"))
//
// # Values
//
// Column values are int, float64, string, bool or nil for NA. Values of
// other integer widths are stored as int and float32 as float64. The string
// "NaN" is read as NA by the underlying series implementation.
package tibble
