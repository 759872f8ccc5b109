package export

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/vegasq/tibble/expr"
	"github.com/vegasq/tibble/tibble"
)

// CSR is a compressed sparse row matrix. Row i holds the entries
// Data[Indptr[i]:Indptr[i+1]] in the columns Indices[Indptr[i]:Indptr[i+1]],
// with column indices increasing within a row.
type CSR struct {
	rows, cols int
	Indptr     []int
	Indices    []int
	Data       []float64
}

var _ mat.Matrix = (*CSR)(nil)

// NewCSR builds a CSR matrix from coordinate triplets. Duplicate
// coordinates are summed.
func NewCSR(rows, cols int, i, j []int, v []float64) (*CSR, error) {
	if len(i) != len(j) || len(i) != len(v) {
		return nil, fmt.Errorf("csr: %w: %d rows, %d cols and %d values", tibble.ErrInvalidValue, len(i), len(j), len(v))
	}
	order := make([]int, len(i))
	for k := range order {
		if i[k] < 0 || i[k] >= rows || j[k] < 0 || j[k] >= cols {
			return nil, fmt.Errorf("csr: %w: entry (%d, %d) outside %dx%d", tibble.ErrInvalidValue, i[k], j[k], rows, cols)
		}
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		ka, kb := order[a], order[b]
		if i[ka] != i[kb] {
			return i[ka] < i[kb]
		}
		return j[ka] < j[kb]
	})

	m := &CSR{rows: rows, cols: cols, Indptr: make([]int, rows+1)}
	prevRow, prevCol := -1, -1
	for _, k := range order {
		if i[k] == prevRow && j[k] == prevCol {
			m.Data[len(m.Data)-1] += v[k]
			continue
		}
		m.Indices = append(m.Indices, j[k])
		m.Data = append(m.Data, v[k])
		m.Indptr[i[k]+1]++
		prevRow, prevCol = i[k], j[k]
	}
	for r := 1; r <= rows; r++ {
		m.Indptr[r] += m.Indptr[r-1]
	}
	return m, nil
}

// Dims returns the matrix dimensions
func (m *CSR) Dims() (int, int) { return m.rows, m.cols }

// At returns the element at row i, column j
func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= m.cols {
		panic(mat.ErrColAccess)
	}
	lo, hi := m.Indptr[i], m.Indptr[i+1]
	k := lo + sort.SearchInts(m.Indices[lo:hi], j)
	if k < hi && m.Indices[k] == j {
		return m.Data[k]
	}
	return 0
}

// T returns the transpose of the matrix
func (m *CSR) T() mat.Matrix { return mat.Transpose{Matrix: m} }

// NNZ returns the number of stored entries
func (m *CSR) NNZ() int { return len(m.Data) }

// DTMOptions configures ToDTM
type DTMOptions struct {
	Doc  string
	Term string
	// Weight sums a numeric column per (document, term); empty counts rows
	Weight string
	// Target takes one value per document from its first row
	Target string
	// TopNTerms keeps only the terms with the largest total weight; zero
	// keeps every term
	TopNTerms int
}

// DTM is a document-term matrix. Rows follow Docs and columns follow
// Terms, both sorted ascending. Target is nil unless requested.
type DTM struct {
	Matrix *CSR
	Docs   []interface{}
	Terms  []interface{}
	Target []interface{}
}

const weightColumn = "__weight__"

// ToDTM aggregates (document, term) pairs into a sparse matrix. Rows with
// an NA document or term are ignored.
func ToDTM(t *tibble.Tibble, opts DTMOptions) (*DTM, error) {
	if opts.Doc == "" || opts.Term == "" {
		return nil, fmt.Errorf("to dtm: %w: doc and term columns are required", tibble.ErrInvalidArgument)
	}
	if opts.TopNTerms < 0 {
		return nil, fmt.Errorf("to dtm: %w: negative top n %d", tibble.ErrInvalidValue, opts.TopNTerms)
	}
	need := []string{opts.Doc, opts.Term}
	if opts.Weight != "" {
		need = append(need, opts.Weight)
	}
	if opts.Target != "" {
		need = append(need, opts.Target)
	}
	for _, n := range need {
		if !t.Has(n) {
			return nil, fmt.Errorf("to dtm: %w: %q", tibble.ErrColumnNotFound, n)
		}
	}
	if opts.Weight != "" {
		if _, err := numericColumn(t, opts.Weight); err != nil {
			return nil, fmt.Errorf("to dtm: weight: %w", err)
		}
	}

	agg, err := aggregatePairs(t, opts)
	if err != nil {
		return nil, fmt.Errorf("to dtm: %w", err)
	}
	if opts.TopNTerms > 0 && agg.Nrow() > 0 {
		if agg, err = topTerms(agg, opts.Term, opts.TopNTerms); err != nil {
			return nil, fmt.Errorf("to dtm: %w", err)
		}
	}
	if agg.Nrow() == 0 {
		out := &DTM{Matrix: &CSR{Indptr: []int{0}}, Docs: []interface{}{}, Terms: []interface{}{}}
		if opts.Target != "" {
			out.Target = []interface{}{}
		}
		return out, nil
	}

	docs, _ := agg.Column(opts.Doc)
	terms, _ := agg.Column(opts.Term)
	weights, _ := agg.Column(weightColumn)

	out := &DTM{Docs: sortedUnique(docs), Terms: sortedUnique(terms)}
	docRow := indexOf(out.Docs)
	termCol := indexOf(out.Terms)

	ri := make([]int, len(docs))
	ci := make([]int, len(docs))
	v := make([]float64, len(docs))
	for k := range docs {
		ri[k] = docRow[expr.Key(docs[k])]
		ci[k] = termCol[expr.Key(terms[k])]
		v[k], _ = expr.ToFloat64(weights[k])
	}
	if out.Matrix, err = NewCSR(len(out.Docs), len(out.Terms), ri, ci, v); err != nil {
		return nil, fmt.Errorf("to dtm: %w", err)
	}

	if opts.Target != "" {
		out.Target, err = firstTargets(t, opts.Doc, opts.Target, out.Docs)
		if err != nil {
			return nil, fmt.Errorf("to dtm: %w", err)
		}
	}
	return out, nil
}

// aggregatePairs returns one row per (doc, term) with its summed weight
func aggregatePairs(t *tibble.Tibble, opts DTMOptions) (*tibble.Tibble, error) {
	present, err := t.Filter(tibble.Func(func(part *tibble.Tibble) (interface{}, error) {
		docs, _ := part.Column(opts.Doc)
		terms, _ := part.Column(opts.Term)
		mask := make([]bool, len(docs))
		for i := range mask {
			mask[i] = docs[i] != nil && terms[i] != nil
		}
		return mask, nil
	}))
	if err != nil {
		return nil, err
	}
	g, err := present.GroupBy(opts.Doc, opts.Term)
	if err != nil {
		return nil, err
	}
	return g.Summarize(tibble.As(weightColumn, tibble.Func(func(part *tibble.Tibble) (interface{}, error) {
		if opts.Weight == "" {
			return float64(part.Nrow()), nil
		}
		return columnSum(part, opts.Weight)
	})))
}

// topTerms keeps the pairs whose term is among the n heaviest terms
func topTerms(agg *tibble.Tibble, term string, n int) (*tibble.Tibble, error) {
	g, err := agg.GroupBy(term)
	if err != nil {
		return nil, err
	}
	totals, err := g.Summarize(tibble.As("total", tibble.Func(func(part *tibble.Tibble) (interface{}, error) {
		return columnSum(part, weightColumn)
	})))
	if err != nil {
		return nil, err
	}
	ranked, err := totals.Arrange("-total")
	if err != nil {
		return nil, err
	}
	top, err := ranked.SliceHead(n)
	if err != nil {
		return nil, err
	}
	keep, err := top.Select(term)
	if err != nil {
		return nil, err
	}
	return agg.JoinSemi(keep, tibble.On(term))
}

func columnSum(t *tibble.Tibble, name string) (float64, error) {
	vals, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range vals {
		if f, ok := expr.ToFloat64(v); ok && v != nil {
			sum += f
		}
	}
	return sum, nil
}

// firstTargets returns the target of the first row of each document
func firstTargets(t *tibble.Tibble, doc, target string, docs []interface{}) ([]interface{}, error) {
	g, err := t.GroupBy(doc)
	if err != nil {
		return nil, err
	}
	firsts, err := g.SliceHead(1)
	if err != nil {
		return nil, err
	}
	keys, _ := firsts.Column(doc)
	vals, _ := firsts.Column(target)
	byDoc := make(map[string]interface{}, len(keys))
	for i, k := range keys {
		byDoc[expr.Key(k)] = vals[i]
	}
	out := make([]interface{}, len(docs))
	for i, d := range docs {
		out[i] = byDoc[expr.Key(d)]
	}
	return out, nil
}

func sortedUnique(vals []interface{}) []interface{} {
	seen := make(map[string]bool, len(vals))
	var out []interface{}
	for _, v := range vals {
		k := expr.Key(v)
		if !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return expr.CompareValues(out[a], out[b]) < 0 })
	return out
}

func indexOf(vals []interface{}) map[string]int {
	idx := make(map[string]int, len(vals))
	for i, v := range vals {
		idx[expr.Key(v)] = i
	}
	return idx
}
