package pipeline

import (
	"context"
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"

	"github.com/vegasq/tibble/reader"
	"github.com/vegasq/tibble/tibble"
)

type verb struct {
	grouped bool
	apply   func(ctx context.Context, p *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error)
}

var verbs = map[string]verb{
	"select":       {apply: selectStep},
	"drop":         {apply: dropStep},
	"rename":       {apply: renameStep},
	"filter":       {grouped: true, apply: filterStep},
	"omit_na":      {apply: omitNAStep},
	"arrange":      {apply: arrangeStep},
	"slice_head":   {grouped: true, apply: sliceHeadStep},
	"slice_tail":   {grouped: true, apply: sliceTailStep},
	"slice_sample": {grouped: true, apply: sliceSampleStep},
	"mutate":       {grouped: true, apply: mutateStep},
	"summarize":    {grouped: true, apply: summarizeStep},
	"table":        {apply: tableStep},
	"join":         {apply: joinStep},
	"pivot_longer": {apply: pivotLongerStep},
	"pivot_wider":  {apply: pivotWiderStep},
	"keys":         {grouped: true, apply: keysStep},
}

func selectStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	cols, err := stringList(&s.args)
	if err != nil {
		return nil, err
	}
	return t.Select(cols...)
}

func dropStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	cols, err := stringList(&s.args)
	if err != nil {
		return nil, err
	}
	return t.Drop(cols...)
}

func renameStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	var names map[string]string
	if err := s.args.Decode(&names); err != nil {
		return nil, fmt.Errorf("%w: rename takes a mapping of old to new names: %v", ErrInvalidPipeline, err)
	}
	// tibble.Rename maps new to old
	byNew := make(map[string]string, len(names))
	for old, newName := range names {
		if prev, ok := byNew[newName]; ok {
			return nil, fmt.Errorf("%w: rename: %q and %q both renamed to %q", tibble.ErrInvalidValue, prev, old, newName)
		}
		byNew[newName] = old
	}
	return t.Rename(byNew)
}

func filterStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	src, err := scalar(&s.args)
	if err != nil {
		return nil, err
	}
	g, err := t.GroupBy(s.GroupBy...)
	if err != nil {
		return nil, err
	}
	return g.Filter(tibble.Expr(src))
}

func omitNAStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, _ Step) (*tibble.Tibble, error) {
	return t.OmitNA()
}

func arrangeStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	cols, err := stringList(&s.args)
	if err != nil {
		return nil, err
	}
	return t.Arrange(cols...)
}

func sliceHeadStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	var n int
	if err := s.args.Decode(&n); err != nil {
		return nil, fmt.Errorf("%w: slice_head takes a row count: %v", ErrInvalidPipeline, err)
	}
	g, err := t.GroupBy(s.GroupBy...)
	if err != nil {
		return nil, err
	}
	return g.SliceHead(n)
}

func sliceTailStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	var n int
	if err := s.args.Decode(&n); err != nil {
		return nil, fmt.Errorf("%w: slice_tail takes a row count: %v", ErrInvalidPipeline, err)
	}
	g, err := t.GroupBy(s.GroupBy...)
	if err != nil {
		return nil, err
	}
	return g.SliceTail(n)
}

type sampleArgs struct {
	N    int     `yaml:"n"`
	Frac float64 `yaml:"frac"`
	Seed *int64  `yaml:"seed"`
}

func sliceSampleStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	var args sampleArgs
	if s.args.Kind == yaml.ScalarNode {
		if err := s.args.Decode(&args.N); err != nil {
			return nil, fmt.Errorf("%w: slice_sample takes a row count or {n, frac, seed}: %v", ErrInvalidPipeline, err)
		}
	} else if err := s.args.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: slice_sample takes a row count or {n, frac, seed}: %v", ErrInvalidPipeline, err)
	}

	sample := tibble.Sample{N: args.N, Frac: args.Frac}
	if args.Seed != nil {
		sample.Rand = rand.New(rand.NewSource(*args.Seed))
	}
	g, err := t.GroupBy(s.GroupBy...)
	if err != nil {
		return nil, err
	}
	return g.SliceSample(sample)
}

func mutateStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	defs, err := namedDefs(&s.args)
	if err != nil {
		return nil, err
	}
	g, err := t.GroupBy(s.GroupBy...)
	if err != nil {
		return nil, err
	}
	return g.Mutate(defs...)
}

func summarizeStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	defs, err := namedDefs(&s.args)
	if err != nil {
		return nil, err
	}
	g, err := t.GroupBy(s.GroupBy...)
	if err != nil {
		return nil, err
	}
	return g.Summarize(defs...)
}

type tableArgs struct {
	Row string `yaml:"row"`
	Col string `yaml:"col"`
}

// tableStep accepts a column name, a [row, col] list or a {row, col}
// mapping
func tableStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	var args tableArgs
	if s.args.Kind == yaml.MappingNode {
		if err := s.args.Decode(&args); err != nil {
			return nil, fmt.Errorf("%w: table: %v", ErrInvalidPipeline, err)
		}
		return t.Table(args.Row, args.Col)
	}

	cols, err := stringList(&s.args)
	if err != nil {
		return nil, err
	}
	switch len(cols) {
	case 1:
		return t.Table(cols[0], "")
	case 2:
		return t.Table(cols[0], cols[1])
	}
	return nil, fmt.Errorf("%w: table takes one or two columns, got %d", ErrInvalidPipeline, len(cols))
}

type joinArgs struct {
	How       string   `yaml:"how"`
	With      string   `yaml:"with"`
	On        []string `yaml:"on"`
	LeftOn    []string `yaml:"left_on"`
	RightOn   []string `yaml:"right_on"`
	By        []string `yaml:"by"`
	LeftBy    []string `yaml:"left_by"`
	RightBy   []string `yaml:"right_by"`
	Direction string   `yaml:"direction"`
	Suffix    []string `yaml:"suffix"`
}

func (a joinArgs) options() ([]tibble.JoinOption, error) {
	var opts []tibble.JoinOption
	if len(a.On) > 0 {
		opts = append(opts, tibble.On(a.On...))
	}
	if len(a.LeftOn) > 0 || len(a.RightOn) > 0 {
		opts = append(opts, tibble.OnLeft(a.LeftOn...), tibble.OnRight(a.RightOn...))
	}
	if len(a.By) > 0 {
		opts = append(opts, tibble.By(a.By...))
	}
	if len(a.LeftBy) > 0 || len(a.RightBy) > 0 {
		opts = append(opts, tibble.ByLeft(a.LeftBy...), tibble.ByRight(a.RightBy...))
	}
	if a.Suffix != nil {
		if len(a.Suffix) != 2 {
			return nil, fmt.Errorf("%w: join suffix takes two values, got %d", ErrInvalidPipeline, len(a.Suffix))
		}
		opts = append(opts, tibble.Suffix(a.Suffix[0], a.Suffix[1]))
	}
	if a.Direction != "" {
		d, err := tibble.ParseDirection(a.Direction)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tibble.WithDirection(d))
	}
	return opts, nil
}

// joinStep reads the right-hand table from a file or glob and joins it
func joinStep(ctx context.Context, p *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	var args joinArgs
	if err := s.args.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: join: %v", ErrInvalidPipeline, err)
	}
	if args.With == "" {
		return nil, fmt.Errorf("%w: join needs a with file", ErrInvalidPipeline)
	}
	opts, err := args.options()
	if err != nil {
		return nil, err
	}

	right, err := reader.ReadMultipleFiles(ctx, p.path(args.With))
	if err != nil {
		return nil, err
	}

	switch args.How {
	case "", "left":
		return t.JoinLeft(right, opts...)
	case "right":
		return t.JoinRight(right, opts...)
	case "inner":
		return t.JoinInner(right, opts...)
	case "outer":
		return t.JoinOuter(right, opts...)
	case "semi":
		return t.JoinSemi(right, opts...)
	case "anti":
		return t.JoinAnti(right, opts...)
	case "fuzzy":
		return t.JoinFuzzy(right, opts...)
	}
	return nil, fmt.Errorf("%w: unknown join %q", ErrInvalidPipeline, args.How)
}

type longerArgs struct {
	IDVars    []string `yaml:"id_vars"`
	ValueVars []string `yaml:"value_vars"`
	NamesTo   string   `yaml:"names_to"`
	ValuesTo  string   `yaml:"values_to"`
}

func pivotLongerStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	var args longerArgs
	if err := s.args.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: pivot_longer: %v", ErrInvalidPipeline, err)
	}
	return t.PivotLonger(tibble.Longer{
		IDVars:    args.IDVars,
		ValueVars: args.ValueVars,
		NamesTo:   args.NamesTo,
		ValuesTo:  args.ValuesTo,
	})
}

type widerArgs struct {
	NamesFrom  string `yaml:"names_from"`
	ValuesFrom string `yaml:"values_from"`
}

func pivotWiderStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	var args widerArgs
	if err := s.args.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: pivot_wider: %v", ErrInvalidPipeline, err)
	}
	return t.PivotWider(args.NamesFrom, args.ValuesFrom)
}

// keysStep keeps the distinct combinations of the listed columns and the
// groupby columns; with neither it keeps the distinct rows
func keysStep(_ context.Context, _ *Pipeline, t *tibble.Tibble, s Step) (*tibble.Tibble, error) {
	cols, err := stringList(&s.args)
	if err != nil {
		return nil, err
	}
	return t.Distinct(append(append([]string{}, s.GroupBy...), cols...)...)
}

// namedDefs turns a {name: expression} mapping into definitions, keeping
// the mapping's order
func namedDefs(node *yaml.Node) ([]tibble.Def, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: expected a mapping of column to expression", ErrInvalidPipeline, node.Line)
	}
	defs := make([]tibble.Def, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, src := node.Content[i], node.Content[i+1]
		if src.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: line %d: expression for %q must be a string", ErrInvalidPipeline, src.Line, name.Value)
		}
		defs = append(defs, tibble.As(name.Value, tibble.Expr(src.Value)))
	}
	return defs, nil
}

func scalar(node *yaml.Node) (string, error) {
	if node.Kind != yaml.ScalarNode || node.ShortTag() == nullTag {
		return "", fmt.Errorf("%w: line %d: expected an expression", ErrInvalidPipeline, node.Line)
	}
	return node.Value, nil
}
