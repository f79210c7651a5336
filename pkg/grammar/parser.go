package grammar

import (
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sqlshift/pkg/ast"
	"github.com/walteh/sqlshift/pkg/token"
)

// Parse consumes stream and returns the tree rooted at the single
// top-level statement production. The tree's spans index into stream.
func Parse(stream *token.Stream) (*ast.Statement, error) {
	p := &parser{stream: stream}
	for _, t := range stream.Tokens() {
		if t.Channel == token.ChannelMain {
			p.main = append(p.main, t)
		}
	}
	return p.parseSingleStatement()
}

// Check reports whether sql lexes and parses as a single statement.
func Check(sql string) error {
	stream, err := Lex(sql)
	if err != nil {
		return err
	}
	if _, err := Parse(stream); err != nil {
		return err
	}
	return nil
}

// parser is a recursive-descent parser over the main-channel tokens of a
// stream. Trivia never reaches it; spans still refer to original stream
// indices so edits anchored through them stay exact.
type parser struct {
	stream *token.Stream
	main   []token.Token
	pos    int
}

func (p *parser) cur() token.Token {
	return p.main[p.pos]
}

func (p *parser) peek() token.Token {
	if p.pos+1 >= len(p.main) {
		return p.main[len(p.main)-1]
	}
	return p.main[p.pos+1]
}

func (p *parser) next() token.Token {
	t := p.main[p.pos]
	if p.pos < len(p.main)-1 {
		p.pos++
	}
	return t
}

func (p *parser) atEOF() bool {
	return p.cur().Type == token.EOF
}

// at reports whether the current token's text matches any of words,
// ignoring case.
func (p *parser) at(words ...string) bool {
	for _, w := range words {
		if p.cur().Match(w) {
			return true
		}
	}
	return false
}

func (p *parser) accept(word string) (token.Token, bool) {
	if p.at(word) {
		return p.next(), true
	}
	return token.Token{}, false
}

func (p *parser) expect(word string) (token.Token, error) {
	if t, ok := p.accept(word); ok {
		return t, nil
	}
	return token.Token{}, errors.Errorf("expected %q, found %q", word, p.cur().Text)
}

// lastIndex is the stream index of the most recently consumed token.
func (p *parser) lastIndex() int {
	if p.pos == 0 {
		return 0
	}
	return p.main[p.pos-1].Index
}

func (p *parser) parseSingleStatement() (*ast.Statement, error) {
	body, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	p.accept(";")
	if !p.atEOF() {
		return nil, errors.Errorf("unexpected %q after statement", p.cur().Text)
	}
	return &ast.Statement{
		Span: ast.Span{Start: body.Bounds().Start, End: p.lastIndex()},
		Body: body,
	}, nil
}

func (p *parser) parseStatement() (ast.Node, error) {
	switch {
	case p.at("SELECT"):
		return p.parseQuery()
	case p.at("CREATE"):
		return p.parseCreateTable()
	case p.at("INSERT"):
		return p.parseInsert()
	}
	return nil, errors.Errorf("unsupported statement starting with %q", p.cur().Text)
}

func (p *parser) parseQuery() (ast.Node, error) {
	sel, err := p.expect("SELECT")
	if err != nil {
		return nil, err
	}
	var kids []ast.Node
	if !p.at("DISTINCT") {
		p.accept("ALL")
	} else {
		p.next()
	}

	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		kids = append(kids, item)
		if _, ok := p.accept(","); !ok {
			break
		}
	}

	if _, ok := p.accept("FROM"); ok {
		for {
			rel, err := p.parseRelation()
			if err != nil {
				return nil, err
			}
			kids = append(kids, rel)
			if _, ok := p.accept(","); !ok {
				break
			}
		}
	}

	if _, ok := p.accept("WHERE"); ok {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		kids = append(kids, cond)
	}

	if _, ok := p.accept("GROUP"); ok {
		if _, err := p.expect("BY"); err != nil {
			return nil, err
		}
		exprs, err := p.parseExpressionList()
		if err != nil {
			return nil, err
		}
		kids = append(kids, exprs...)
	}

	if _, ok := p.accept("HAVING"); ok {
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		kids = append(kids, cond)
	}

	org, err := p.parseQueryOrganization()
	if err != nil {
		return nil, err
	}
	if org != nil {
		kids = append(kids, org)
	}

	return &ast.Fragment{
		Span: ast.Span{Start: sel.Index, End: p.lastIndex()},
		Kids: kids,
	}, nil
}

func (p *parser) parseSelectItem() (ast.Node, error) {
	if t, ok := p.accept("*"); ok {
		return &ast.Fragment{Span: ast.Span{Start: t.Index, End: t.Index}}, nil
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	kids := []ast.Node{expr}
	if _, ok := p.accept("AS"); ok {
		alias, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		kids = append(kids, alias)
	} else if p.atIdentifier() {
		alias, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		kids = append(kids, alias)
	}
	return &ast.Fragment{
		Span: ast.Span{Start: expr.Bounds().Start, End: p.lastIndex()},
		Kids: kids,
	}, nil
}

func (p *parser) parseRelation() (ast.Node, error) {
	rel, err := p.parseRelationPrimary()
	if err != nil {
		return nil, err
	}
	kids := []ast.Node{rel}

	for {
		switch {
		case p.at("JOIN", "INNER", "CROSS", "LEFT", "RIGHT", "FULL"):
			join, err := p.parseJoin()
			if err != nil {
				return nil, err
			}
			kids = append(kids, join)
			continue
		case p.at("LATERAL"):
			lv, err := p.parseLateralView()
			if err != nil {
				return nil, err
			}
			kids = append(kids, lv)
			continue
		}
		break
	}

	return &ast.Fragment{
		Span: ast.Span{Start: rel.Bounds().Start, End: p.lastIndex()},
		Kids: kids,
	}, nil
}

func (p *parser) parseRelationPrimary() (ast.Node, error) {
	if p.at("(") {
		lp := p.next()
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		kids := []ast.Node{q}
		if alias, ok, err := p.parseOptionalAlias(); err != nil {
			return nil, err
		} else if ok {
			kids = append(kids, alias)
		}
		return &ast.Fragment{Span: ast.Span{Start: lp.Index, End: p.lastIndex()}, Kids: kids}, nil
	}

	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	kids := []ast.Node{name}
	if alias, ok, err := p.parseOptionalAlias(); err != nil {
		return nil, err
	} else if ok {
		kids = append(kids, alias)
	}
	return &ast.Fragment{Span: ast.Span{Start: name.Bounds().Start, End: p.lastIndex()}, Kids: kids}, nil
}

func (p *parser) parseOptionalAlias() (ast.Node, bool, error) {
	if _, ok := p.accept("AS"); ok {
		alias, err := p.parseIdentifier()
		if err != nil {
			return nil, false, err
		}
		return alias, true, nil
	}
	if p.atIdentifier() {
		alias, err := p.parseIdentifier()
		if err != nil {
			return nil, false, err
		}
		return alias, true, nil
	}
	return nil, false, nil
}

func (p *parser) parseJoin() (ast.Node, error) {
	start := p.cur().Index
	crossed := p.at("CROSS")
	for p.at("INNER", "CROSS", "LEFT", "RIGHT", "FULL", "OUTER", "SEMI") {
		p.next()
	}
	if _, err := p.expect("JOIN"); err != nil {
		return nil, err
	}
	rel, err := p.parseRelationPrimary()
	if err != nil {
		return nil, err
	}
	kids := []ast.Node{rel}
	if !crossed {
		if _, ok := p.accept("ON"); ok {
			cond, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			kids = append(kids, cond)
		}
	}
	return &ast.Fragment{Span: ast.Span{Start: start, End: p.lastIndex()}, Kids: kids}, nil
}

func (p *parser) parseLateralView() (*ast.LateralView, error) {
	lat, err := p.expect("LATERAL")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("VIEW"); err != nil {
		return nil, err
	}
	p.accept("OUTER")

	fn, err := p.parseNameOrCall()
	if err != nil {
		return nil, err
	}
	call, ok := fn.(*ast.FunctionCall)
	if !ok {
		return nil, errors.Errorf("expected a table-generating function call in lateral view")
	}

	tableAlias, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	var asTok *token.Token
	if t, ok := p.accept("AS"); ok {
		asTok = &t
	}

	var cols []ast.Node
	if asTok != nil || p.atIdentifier() {
		for {
			col, err := p.parseIdentifier()
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
			if _, ok := p.accept(","); !ok {
				break
			}
		}
	}

	return &ast.LateralView{
		Span:       ast.Span{Start: lat.Index, End: p.lastIndex()},
		Call:       call,
		TableAlias: tableAlias,
		As:         asTok,
		ColAliases: cols,
	}, nil
}

// parseQueryOrganization collects the trailing order/cluster/distribute/
// sort/limit clauses into one node, or returns nil if none are present.
func (p *parser) parseQueryOrganization() (*ast.QueryOrganization, error) {
	if !p.at("ORDER", "CLUSTER", "DISTRIBUTE", "SORT", "LIMIT") {
		return nil, nil
	}
	qo := &ast.QueryOrganization{Span: ast.Span{Start: p.cur().Index}}

	for {
		switch {
		case p.at("ORDER"):
			p.next()
			if _, err := p.expect("BY"); err != nil {
				return nil, err
			}
			exprs, err := p.parseSortItemList()
			if err != nil {
				return nil, err
			}
			qo.Kids = append(qo.Kids, exprs...)
		case p.at("CLUSTER"):
			kw := p.next()
			if _, err := p.expect("BY"); err != nil {
				return nil, err
			}
			exprs, err := p.parseExpressionList()
			if err != nil {
				return nil, err
			}
			qo.Kids = append(qo.Kids, exprs...)
			qo.ClusterBy = &ast.ClausePos{Keyword: kw.Index, End: p.lastIndex()}
		case p.at("DISTRIBUTE"):
			kw := p.next()
			if _, err := p.expect("BY"); err != nil {
				return nil, err
			}
			exprs, err := p.parseExpressionList()
			if err != nil {
				return nil, err
			}
			qo.Kids = append(qo.Kids, exprs...)
			qo.DistributeBy = &ast.ClausePos{Keyword: kw.Index, End: p.lastIndex()}
		case p.at("SORT"):
			kw := p.next()
			if _, err := p.expect("BY"); err != nil {
				return nil, err
			}
			exprs, err := p.parseSortItemList()
			if err != nil {
				return nil, err
			}
			qo.Kids = append(qo.Kids, exprs...)
			qo.Sort = &kw
		case p.at("LIMIT"):
			p.next()
			if p.cur().Type != token.Number {
				return nil, errors.Errorf("expected a limit count, found %q", p.cur().Text)
			}
			p.next()
		default:
			qo.End = p.lastIndex()
			return qo, nil
		}
	}
}

func (p *parser) parseSortItemList() ([]ast.Node, error) {
	var items []ast.Node
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.at("ASC") {
			p.accept("DESC")
		} else {
			p.next()
		}
		if _, ok := p.accept("NULLS"); ok {
			if !p.at("FIRST") {
				if _, err := p.expect("LAST"); err != nil {
					return nil, err
				}
			} else {
				p.next()
			}
		}
		items = append(items, expr)
		if _, ok := p.accept(","); !ok {
			return items, nil
		}
	}
}

func (p *parser) parseExpressionList() ([]ast.Node, error) {
	var exprs []ast.Node
	for {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
		if _, ok := p.accept(","); !ok {
			return exprs, nil
		}
	}
}

func (p *parser) parseCreateTable() (ast.Node, error) {
	cr, err := p.expect("CREATE")
	if err != nil {
		return nil, err
	}
	p.accept("EXTERNAL")
	if _, err := p.expect("TABLE"); err != nil {
		return nil, err
	}
	if _, ok := p.accept("IF"); ok {
		if _, err := p.expect("NOT"); err != nil {
			return nil, err
		}
		if _, err := p.expect("EXISTS"); err != nil {
			return nil, err
		}
	}
	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	kids := []ast.Node{name}

	if _, ok := p.accept("("); ok {
		for {
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			kids = append(kids, col)
			if _, ok := p.accept(","); !ok {
				break
			}
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
	}

	if _, ok := p.accept("COMMENT"); ok {
		if p.cur().Type != token.String {
			return nil, errors.Errorf("expected a table comment string, found %q", p.cur().Text)
		}
		p.next()
	}

	if _, ok := p.accept("AS"); ok {
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		kids = append(kids, q)
	}

	return &ast.Fragment{Span: ast.Span{Start: cr.Index, End: p.lastIndex()}, Kids: kids}, nil
}

func (p *parser) parseColumnDef() (ast.Node, error) {
	name, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	typ, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	kids := []ast.Node{name, typ}
	if _, ok := p.accept("COMMENT"); ok {
		if p.cur().Type != token.String {
			return nil, errors.Errorf("expected a column comment string, found %q", p.cur().Text)
		}
		seg := p.next()
		kids = append(kids, &ast.StringLiteral{
			Span:     ast.Span{Start: seg.Index, End: seg.Index},
			Segments: []token.Token{seg},
		})
	}
	return &ast.Fragment{Span: ast.Span{Start: name.Bounds().Start, End: p.lastIndex()}, Kids: kids}, nil
}

func (p *parser) parseDataType() (ast.Node, error) {
	if p.cur().Type != token.Keyword && p.cur().Type != token.Ident {
		return nil, errors.Errorf("expected a type name, found %q", p.cur().Text)
	}
	base := p.next()

	// complex types: array<t>, map<k, v>, struct<name: t, ...>
	if base.Match("ARRAY") || base.Match("MAP") || base.Match("STRUCT") {
		if p.at("<") {
			p.next()
			var kids []ast.Node
			for {
				if base.Match("STRUCT") {
					if _, err := p.parseIdentifier(); err != nil {
						return nil, err
					}
					if _, err := p.expect(":"); err != nil {
						return nil, err
					}
				}
				inner, err := p.parseDataType()
				if err != nil {
					return nil, err
				}
				kids = append(kids, inner)
				if _, ok := p.accept(","); !ok {
					break
				}
			}
			if _, err := p.expect(">"); err != nil {
				return nil, err
			}
			return &ast.Fragment{Span: ast.Span{Start: base.Index, End: p.lastIndex()}, Kids: kids}, nil
		}
	}

	typ := &ast.PrimitiveType{Span: ast.Span{Start: base.Index, End: base.Index}, Name: base}
	if _, ok := p.accept("("); ok {
		for {
			if p.cur().Type != token.Number {
				return nil, errors.Errorf("expected a type parameter, found %q", p.cur().Text)
			}
			p.next()
			if _, ok := p.accept(","); !ok {
				break
			}
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		typ.End = p.lastIndex()
	}
	return typ, nil
}

func (p *parser) parseInsert() (ast.Node, error) {
	ins, err := p.expect("INSERT")
	if err != nil {
		return nil, err
	}
	if !p.at("INTO") && !p.at("OVERWRITE") {
		return nil, errors.Errorf("expected INTO or OVERWRITE, found %q", p.cur().Text)
	}
	p.next()
	p.accept("TABLE")
	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	return &ast.Fragment{
		Span: ast.Span{Start: ins.Index, End: p.lastIndex()},
		Kids: []ast.Node{name, q},
	}, nil
}

// ---- expressions ----

func (p *parser) parseExpression() (ast.Node, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at("OR") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.Fragment{
			Span: ast.Span{Start: left.Bounds().Start, End: right.Bounds().End},
			Kids: []ast.Node{left, right},
		}
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.at("AND") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.Fragment{
			Span: ast.Span{Start: left.Bounds().Start, End: right.Bounds().End},
			Kids: []ast.Node{left, right},
		}
	}
	return left, nil
}

func (p *parser) parseNot() (ast.Node, error) {
	if t, ok := p.accept("NOT"); ok {
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.Fragment{
			Span: ast.Span{Start: t.Index, End: inner.Bounds().End},
			Kids: []ast.Node{inner},
		}, nil
	}
	return p.parsePredicated()
}

// parsePredicated parses a comparison and an optional predicate suffix.
// The [NOT] RLIKE/REGEXP/LIKE form becomes a Predicate node whose span
// includes the left operand, matching what the rewrite rules need.
func (p *parser) parsePredicated() (ast.Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	save := p.pos
	var notTok *token.Token
	if t, ok := p.accept("NOT"); ok {
		notTok = &t
	}

	switch {
	case p.at("RLIKE", "REGEXP", "LIKE"):
		op := p.next()
		pattern, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		return &ast.Predicate{
			Span:    ast.Span{Start: left.Bounds().Start, End: pattern.Bounds().End},
			Left:    left,
			Not:     notTok,
			Op:      op,
			Pattern: pattern,
		}, nil

	case p.at("IN"):
		p.next()
		if _, err := p.expect("("); err != nil {
			return nil, err
		}
		var kids []ast.Node
		kids = append(kids, left)
		if p.at("SELECT") {
			q, err := p.parseQuery()
			if err != nil {
				return nil, err
			}
			kids = append(kids, q)
		} else {
			exprs, err := p.parseExpressionList()
			if err != nil {
				return nil, err
			}
			kids = append(kids, exprs...)
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
		return &ast.Fragment{
			Span: ast.Span{Start: left.Bounds().Start, End: p.lastIndex()},
			Kids: kids,
		}, nil

	case p.at("BETWEEN"):
		p.next()
		lower, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("AND"); err != nil {
			return nil, err
		}
		upper, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &ast.Fragment{
			Span: ast.Span{Start: left.Bounds().Start, End: upper.Bounds().End},
			Kids: []ast.Node{left, lower, upper},
		}, nil
	}

	if notTok != nil {
		p.pos = save
		return left, nil
	}

	if _, ok := p.accept("IS"); ok {
		p.accept("NOT")
		if _, err := p.expect("NULL"); err != nil {
			return nil, err
		}
		return &ast.Fragment{
			Span: ast.Span{Start: left.Bounds().Start, End: p.lastIndex()},
			Kids: []ast.Node{left},
		}, nil
	}

	return left, nil
}

var comparisonOps = map[string]struct{}{
	"=": {}, "<": {}, ">": {}, "<=": {}, ">=": {}, "<>": {}, "!=": {}, "<=>": {},
}

func (p *parser) parseComparison() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		cur := p.cur()
		if cur.Type != token.Operator {
			return left, nil
		}
		if _, ok := comparisonOps[cur.Text]; !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Fragment{
			Span: ast.Span{Start: left.Bounds().Start, End: right.Bounds().End},
			Kids: []ast.Node{left, right},
		}
	}
}

func (p *parser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.Operator &&
		(p.cur().Text == "+" || p.cur().Text == "-" || p.cur().Text == "||") {
		op := p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.ArithmeticBinary{
			Span:  ast.Span{Start: left.Bounds().Start, End: right.Bounds().End},
			Left:  left,
			Op:    op,
			Right: right,
		}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.Operator &&
		(p.cur().Text == "*" || p.cur().Text == "/" || p.cur().Text == "%") {
		op := p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.ArithmeticBinary{
			Span:  ast.Span{Start: left.Bounds().Start, End: right.Bounds().End},
			Left:  left,
			Op:    op,
			Right: right,
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Node, error) {
	cur := p.cur()
	if cur.Type == token.Operator && (cur.Text == "-" || cur.Text == "+" || cur.Text == "~") {
		t := p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Fragment{
			Span: ast.Span{Start: t.Index, End: inner.Bounds().End},
			Kids: []ast.Node{inner},
		}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Node, error) {
	cur := p.cur()
	switch {
	case cur.Type == token.Number:
		t := p.next()
		return &ast.Fragment{Span: ast.Span{Start: t.Index, End: t.Index}}, nil

	case cur.Type == token.String:
		return p.parseStringLiteral(), nil

	case p.at("TRUE", "FALSE", "NULL"):
		t := p.next()
		return &ast.Fragment{Span: ast.Span{Start: t.Index, End: t.Index}}, nil

	case p.at("("):
		lp := p.next()
		var inner ast.Node
		var err error
		if p.at("SELECT") {
			inner, err = p.parseQuery()
		} else {
			inner, err = p.parseExpression()
		}
		if err != nil {
			return nil, err
		}
		rp, err := p.expect(")")
		if err != nil {
			return nil, err
		}
		return &ast.Fragment{
			Span: ast.Span{Start: lp.Index, End: rp.Index},
			Kids: []ast.Node{inner},
		}, nil

	case p.at("CAST"):
		return p.parseCast()

	case p.at("CASE"):
		return p.parseCase()

	case p.at("*"):
		t := p.next()
		return &ast.Fragment{Span: ast.Span{Start: t.Index, End: t.Index}}, nil

	case p.atIdentifier() || p.atFunctionKeyword():
		return p.parseNameOrCall()
	}
	return nil, errors.Errorf("unexpected token %q in expression", cur.Text)
}

func (p *parser) parseCast() (ast.Node, error) {
	kw, err := p.expect("CAST")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("AS"); err != nil {
		return nil, err
	}
	typ, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	rp, err := p.expect(")")
	if err != nil {
		return nil, err
	}
	return &ast.Fragment{
		Span: ast.Span{Start: kw.Index, End: rp.Index},
		Kids: []ast.Node{expr, typ},
	}, nil
}

func (p *parser) parseCase() (ast.Node, error) {
	kw, err := p.expect("CASE")
	if err != nil {
		return nil, err
	}
	var kids []ast.Node
	if !p.at("WHEN") {
		operand, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		kids = append(kids, operand)
	}
	for {
		if _, err := p.expect("WHEN"); err != nil {
			return nil, err
		}
		cond, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("THEN"); err != nil {
			return nil, err
		}
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		kids = append(kids, cond, val)
		if !p.at("WHEN") {
			break
		}
	}
	if _, ok := p.accept("ELSE"); ok {
		val, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		kids = append(kids, val)
	}
	end, err := p.expect("END")
	if err != nil {
		return nil, err
	}
	return &ast.Fragment{
		Span: ast.Span{Start: kw.Index, End: end.Index},
		Kids: kids,
	}, nil
}

func (p *parser) parseStringLiteral() *ast.StringLiteral {
	first := p.next()
	segs := []token.Token{first}
	for p.cur().Type == token.String {
		segs = append(segs, p.next())
	}
	return &ast.StringLiteral{
		Span:     ast.Span{Start: first.Index, End: segs[len(segs)-1].Index},
		Segments: segs,
	}
}

// parseNameOrCall parses a qualified name and, if a parenthesized argument
// list follows, a function call around it.
func (p *parser) parseNameOrCall() (ast.Node, error) {
	name, err := p.parseQualifiedName()
	if err != nil {
		return nil, err
	}

	// t.* in a select list
	if p.at(".") && p.peek().Text == "*" {
		p.next()
		star := p.next()
		return &ast.Fragment{
			Span: ast.Span{Start: name.Bounds().Start, End: star.Index},
			Kids: []ast.Node{name},
		}, nil
	}

	if !p.at("(") {
		return name, nil
	}

	lp := p.next()
	var args []ast.Node
	if !p.at(")") {
		if !p.at("DISTINCT") {
			p.accept("ALL")
		} else {
			p.next()
		}
		if p.at("*") {
			t := p.next()
			args = append(args, &ast.Fragment{Span: ast.Span{Start: t.Index, End: t.Index}})
		} else {
			args, err = p.parseExpressionList()
			if err != nil {
				return nil, err
			}
		}
	}
	rp, err := p.expect(")")
	if err != nil {
		return nil, err
	}
	return &ast.FunctionCall{
		Span:   ast.Span{Start: name.Bounds().Start, End: rp.Index},
		Name:   name,
		LParen: lp.Index,
		RParen: rp.Index,
		Args:   args,
	}, nil
}

func (p *parser) parseQualifiedName() (*ast.QualifiedName, error) {
	part, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	parts := []ast.Node{part}
	for p.at(".") && (p.peek().Type == token.Ident || p.peek().Type == token.QuotedIdent) {
		p.next()
		part, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return &ast.QualifiedName{
		Span:  ast.Span{Start: parts[0].Bounds().Start, End: p.lastIndex()},
		Parts: parts,
	}, nil
}

func (p *parser) atIdentifier() bool {
	return p.cur().Type == token.Ident || p.cur().Type == token.QuotedIdent
}

// Keywords that may also start a function-call-like expression.
var functionKeywords = map[string]struct{}{
	"ARRAY": {}, "MAP": {}, "STRUCT": {}, "IF": {},
}

func (p *parser) atFunctionKeyword() bool {
	_, ok := functionKeywords[strings.ToUpper(p.cur().Text)]
	return p.cur().Type == token.Keyword && ok
}

func (p *parser) parseIdentifier() (ast.Node, error) {
	cur := p.cur()
	switch {
	case cur.Type == token.Ident:
		t := p.next()
		return &ast.UnquotedIdentifier{Span: ast.Span{Start: t.Index, End: t.Index}, Tok: t}, nil
	case cur.Type == token.QuotedIdent:
		t := p.next()
		return &ast.QuotedIdentifier{Span: ast.Span{Start: t.Index, End: t.Index}, Tok: t}, nil
	case p.atFunctionKeyword():
		t := p.next()
		return &ast.UnquotedIdentifier{Span: ast.Span{Start: t.Index, End: t.Index}, Tok: t}, nil
	}
	return nil, errors.Errorf("expected an identifier, found %q", cur.Text)
}
