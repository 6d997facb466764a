package query

import (
	"strconv"
	"strings"

	"joinengine/pkg/dberror"
	"joinengine/pkg/relation"
)

// tokenKind classifies one '&'-separated predicate token, following
// the tokenize-then-parse shape this codebase's SQL lexer uses
// elsewhere, scaled down to the three productions this grammar has.
type tokenKind int

const (
	tokenJoin tokenKind = iota
	tokenFilter
)

// Parse parses one query line of the R|P|S grammar (spec §6, "Query
// text format") into a QueryInfo, and resolves every SelectInfo's RelID
// against the binding table. Bindings are not range-checked here; an
// out-of-range binding gets the sentinel RelID set by Resolve.
func Parse(line string) (*QueryInfo, error) {
	parts := strings.Split(line, "|")
	if len(parts) != 3 {
		return nil, dberror.Newf(dberror.CategoryParse, "query.Parse", "malformed query line",
			"expected 3 '|'-separated parts, got %d: %q", len(parts), line)
	}

	bindings, err := parseBindings(parts[0])
	if err != nil {
		return nil, err
	}

	predicates, filters, err := parsePredicates(parts[1])
	if err != nil {
		return nil, err
	}

	selections, err := parseSelections(parts[2])
	if err != nil {
		return nil, err
	}

	q := &QueryInfo{
		Bindings:   bindings,
		Predicates: predicates,
		Filters:    filters,
		Selections: selections,
	}
	q.Resolve()
	return q, nil
}

func parseBindings(field string) ([]relation.ID, error) {
	toks := strings.Fields(field)
	if len(toks) == 0 {
		return nil, dberror.New(dberror.CategoryParse, "query.Parse", "empty binding list")
	}
	bindings := make([]relation.ID, len(toks))
	for i, t := range toks {
		v, err := strconv.ParseUint(t, 10, 32)
		if err != nil {
			return nil, dberror.Newf(dberror.CategoryParse, "query.Parse", "unparseable relation id", "%q: %v", t, err)
		}
		bindings[i] = relation.ID(v)
	}
	return bindings, nil
}

func parsePredicates(field string) ([]PredicateInfo, []FilterInfo, error) {
	if field == "" {
		return nil, nil, nil
	}

	var predicates []PredicateInfo
	var filters []FilterInfo

	for _, tok := range strings.Split(field, "&") {
		kind, op, lhs, rhs, err := classifyToken(tok)
		if err != nil {
			return nil, nil, err
		}

		left, err := parseSelectInfo(lhs)
		if err != nil {
			return nil, nil, err
		}

		switch kind {
		case tokenJoin:
			right, err := parseSelectInfo(rhs)
			if err != nil {
				return nil, nil, err
			}
			predicates = append(predicates, PredicateInfo{Left: left, Right: right})
		case tokenFilter:
			value, err := strconv.ParseUint(rhs, 10, 64)
			if err != nil {
				return nil, nil, dberror.Newf(dberror.CategoryParse, "query.Parse", "unparseable filter constant", "%q: %v", rhs, err)
			}
			filters = append(filters, FilterInfo{Select: left, Op: op, Value: value})
		}
	}

	return predicates, filters, nil
}

// classifyToken splits one predicate token on its comparison operator
// and decides, by the absence of a '.' on the right-hand side,
// whether the token is a join predicate or a constant filter (spec
// §6: "'Constant' is determined by absence of '.'").
func classifyToken(tok string) (kind tokenKind, op CompareOp, lhs, rhs string, err error) {
	for i, r := range tok {
		switch r {
		case '<':
			return tokenFilter, Less, tok[:i], tok[i+1:], nil
		case '>':
			return tokenFilter, Greater, tok[:i], tok[i+1:], nil
		case '=':
			lhs, rhs = tok[:i], tok[i+1:]
			if strings.Contains(rhs, ".") {
				return tokenJoin, Equal, lhs, rhs, nil
			}
			return tokenFilter, Equal, lhs, rhs, nil
		}
	}
	return 0, 0, "", "", dberror.Newf(dberror.CategoryParse, "query.Parse", "predicate token has no comparison operator", "%q", tok)
}

func parseSelectInfo(field string) (SelectInfo, error) {
	dot := strings.IndexByte(field, '.')
	if dot < 0 {
		return SelectInfo{}, dberror.Newf(dberror.CategoryParse, "query.Parse", "expected binding.column", "%q", field)
	}
	b, err := strconv.ParseUint(field[:dot], 10, 32)
	if err != nil {
		return SelectInfo{}, dberror.Newf(dberror.CategoryParse, "query.Parse", "unparseable binding", "%q: %v", field[:dot], err)
	}
	c, err := strconv.ParseUint(field[dot+1:], 10, 32)
	if err != nil {
		return SelectInfo{}, dberror.Newf(dberror.CategoryParse, "query.Parse", "unparseable column", "%q: %v", field[dot+1:], err)
	}
	return SelectInfo{Binding: Binding(b), Column: ColumnID(c)}, nil
}

func parseSelections(field string) ([]SelectInfo, error) {
	toks := strings.Fields(field)
	if len(toks) == 0 {
		return nil, dberror.New(dberror.CategoryParse, "query.Parse", "empty selection list")
	}
	selections := make([]SelectInfo, len(toks))
	for i, t := range toks {
		sel, err := parseSelectInfo(t)
		if err != nil {
			return nil, err
		}
		selections[i] = sel
	}
	return selections, nil
}
