package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ErrMalformedRule is wrapped by every error reported while parsing a rule.
var ErrMalformedRule = errors.New("malformed date rule")

// =============================================================================
// Expression tree
// =============================================================================

// Expr is a parsed date expression. Eval reports false when the expression
// produces no date in the given year.
type Expr interface {
	Eval(year int) (time.Time, bool)
	String() string
}

// Placeholder is the "_" expression: not applicable, never a date.
type Placeholder struct{}

func (Placeholder) Eval(int) (time.Time, bool) { return time.Time{}, false }
func (Placeholder) String() string { return "_" }

// FixedDate is a month/day in the target year. Days that do not exist in
// that year (2/29 in a common year, 4/31, 1/396) produce nothing.
type FixedDate struct {
	Month time.Month
	Day   int
}

func (f FixedDate) Eval(year int) (time.Time, bool) {
	if f.Month < time.January || f.Month > time.December || f.Day < 1 {
		return time.Time{}, false
	}
	d := Date(year, f.Month, f.Day)
	if d.Year() != year || d.Month() != f.Month || d.Day() != f.Day {
		return time.Time{}, false
	}
	return d, true
}

func (f FixedDate) String() string {
	return fmt.Sprintf("%d/%d", int(f.Month), f.Day)
}

// EasterRelative is Easter Sunday shifted by Offset days.
type EasterRelative struct {
	Offset int
}

func (e EasterRelative) Eval(year int) (time.Time, bool) {
	return EasterDate(year).AddDate(0, 0, e.Offset), true
}

func (e EasterRelative) String() string {
	switch {
	case e.Offset > 0:
		return fmt.Sprintf("E+%d", e.Offset)
	case e.Offset < 0:
		return fmt.Sprintf("E-%d", -e.Offset)
	}
	return "E"
}

// WeekdayRounded moves the date of Base forward to the next Weekday,
// staying put when Base already falls on it.
type WeekdayRounded struct {
	Base    Expr
	Weekday time.Weekday
}

func (w WeekdayRounded) Eval(year int) (time.Time, bool) {
	d, ok := w.Base.Eval(year)
	if !ok {
		return time.Time{}, false
	}
	return NextWeekday(d, w.Weekday), true
}

func (w WeekdayRounded) String() string {
	return w.Base.String() + "→" + w.Weekday.String()[:3]
}

// =============================================================================
// Rules
// =============================================================================

// ConditionKind selects how a Condition filters an item's date.
type ConditionKind int

const (
	// CondBefore keeps the date only if it is strictly before the condition date.
	CondBefore ConditionKind = iota + 1
	// CondNotOn drops the date if it equals the condition date.
	CondNotOn
)

// Condition is the parenthesized exclusion attached to a rule item.
type Condition struct {
	Kind ConditionKind
	Expr Expr
}

// allows reports whether date survives the condition in the given year.
// A condition whose own expression yields no date cannot be satisfied
// by "before" and never excludes anything for "not on".
func (c Condition) allows(date time.Time, year int) bool {
	target, ok := c.Expr.Eval(year)
	switch c.Kind {
	case CondBefore:
		return ok && date.Before(target)
	case CondNotOn:
		return !ok || !date.Equal(target)
	}
	return false
}

// Item is one comma-separated alternative of a rule. Err is set when the
// item could not be parsed; such items produce no date.
type Item struct {
	Raw  string
	Expr Expr
	Cond *Condition
	Err  error
}

// Rule is a parsed date rule: a list of independent alternatives.
type Rule struct {
	Raw   string
	Items []Item
}

// ParseRule parses a rule string such as "11/27→Sun, E-46 (not on 3/25)".
// It never fails: malformed alternatives are recorded with Err set and are
// skipped during expansion so one bad item cannot hide the others.
func ParseRule(raw string) Rule {
	rule := Rule{Raw: raw}
	for _, part := range splitAlternatives(raw) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		rule.Items = append(rule.Items, parseItem(part))
	}
	return rule
}

// Expand evaluates every alternative against year and returns the dates
// that survive their conditions, in item order. Duplicates are kept.
func (r Rule) Expand(year int) []time.Time {
	var dates []time.Time
	for _, item := range r.Items {
		if item.Err != nil || item.Expr == nil {
			continue
		}
		d, ok := item.Expr.Eval(year)
		if !ok {
			continue
		}
		if item.Cond != nil && !item.Cond.allows(d, year) {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// Matches reports whether the rule produces date in date's own year.
func (r Rule) Matches(date time.Time) bool {
	date = Day(date)
	for _, d := range r.Expand(date.Year()) {
		if d.Equal(date) {
			return true
		}
	}
	return false
}

// Errors returns the parse errors of all malformed alternatives.
func (r Rule) Errors() []error {
	var errs []error
	for _, item := range r.Items {
		if item.Err != nil {
			errs = append(errs, item.Err)
		}
	}
	return errs
}

// ExpandRule parses and expands raw for year in one step.
func ExpandRule(raw string, year int) []time.Time {
	return ParseRule(raw).Expand(year)
}

// ParseDateExpression evaluates a single expression (no conditions, no
// alternatives) for year.
func ParseDateExpression(raw string, year int) (time.Time, bool) {
	expr, err := ParseExpr(raw)
	if err != nil {
		return time.Time{}, false
	}
	return expr.Eval(year)
}

// SplitCondition separates "12/25 (before 12/26)" into its base expression
// and the condition text inside the parentheses.
func SplitCondition(item string) (base, condition string) {
	open := strings.Index(item, "(")
	if open < 0 {
		return strings.TrimSpace(item), ""
	}
	base = strings.TrimSpace(item[:open])
	rest := item[open+1:]
	if end := strings.LastIndex(rest, ")"); end >= 0 {
		rest = rest[:end]
	}
	return base, strings.TrimSpace(rest)
}

func parseItem(raw string) Item {
	item := Item{Raw: strings.TrimSpace(raw)}
	base, cond := SplitCondition(raw)

	expr, err := ParseExpr(base)
	if err != nil {
		item.Err = err
		return item
	}
	item.Expr = expr

	if cond != "" {
		c, err := parseCondition(cond)
		if err != nil {
			item.Err = err
			return item
		}
		item.Cond = &c
	}
	return item
}

func parseCondition(text string) (Condition, error) {
	fields := strings.Fields(text)
	switch {
	case len(fields) >= 2 && strings.EqualFold(fields[0], "before"):
		expr, err := ParseExpr(strings.Join(fields[1:], ""))
		if err != nil {
			return Condition{}, err
		}
		return Condition{Kind: CondBefore, Expr: expr}, nil
	case len(fields) >= 3 && strings.EqualFold(fields[0], "not") && strings.EqualFold(fields[1], "on"):
		expr, err := ParseExpr(strings.Join(fields[2:], ""))
		if err != nil {
			return Condition{}, err
		}
		return Condition{Kind: CondNotOn, Expr: expr}, nil
	}
	return Condition{}, fmt.Errorf("%w: unknown condition %q", ErrMalformedRule, text)
}

// splitAlternatives splits on commas that are not inside parentheses.
func splitAlternatives(raw string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range raw {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, raw[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, raw[start:])
}

// =============================================================================
// Expression parser
// =============================================================================
//
//	expr    := primary { arrow weekday }
//	primary := "_" | number "/" number | "E" [ ("+" | "-") number ]
//	arrow   := "→" | "->"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokSlash
	tokPlus
	tokMinus
	tokArrow
	tokEaster
	tokWeekday
	tokPlaceholder
)

type token struct {
	kind    tokenKind
	text    string
	num     int
	weekday time.Weekday
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseExpr parses a single date expression. Whitespace is ignored.
func ParseExpr(raw string) (Expr, error) {
	tokens, err := tokenize(raw)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens, raw: raw}
	expr, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf("unexpected %q", t.text)
	}
	return expr, nil
}

func tokenize(raw string) ([]token, error) {
	src := []rune(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw))

	var tokens []token
	for i := 0; i < len(src); {
		r := src[i]
		switch {
		case unicode.IsDigit(r):
			j := i
			for j < len(src) && unicode.IsDigit(src[j]) {
				j++
			}
			n, err := strconv.Atoi(string(src[i:j]))
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrMalformedRule, raw, err)
			}
			tokens = append(tokens, token{kind: tokNumber, text: string(src[i:j]), num: n})
			i = j
		case unicode.IsLetter(r):
			j := i
			for j < len(src) && unicode.IsLetter(src[j]) {
				j++
			}
			word := string(src[i:j])
			if strings.EqualFold(word, "E") {
				tokens = append(tokens, token{kind: tokEaster, text: word})
			} else if wd, ok := weekdayNames[strings.ToLower(word)]; ok {
				tokens = append(tokens, token{kind: tokWeekday, text: word, weekday: wd})
			} else {
				return nil, fmt.Errorf("%w: %q: unknown word %q", ErrMalformedRule, raw, word)
			}
			i = j
		case r == '→':
			tokens = append(tokens, token{kind: tokArrow, text: "→"})
			i++
		case r == '-' && i+1 < len(src) && src[i+1] == '>':
			tokens = append(tokens, token{kind: tokArrow, text: "->"})
			i += 2
		case r == '-':
			tokens = append(tokens, token{kind: tokMinus, text: "-"})
			i++
		case r == '+':
			tokens = append(tokens, token{kind: tokPlus, text: "+"})
			i++
		case r == '/':
			tokens = append(tokens, token{kind: tokSlash, text: "/"})
			i++
		case r == '_':
			tokens = append(tokens, token{kind: tokPlaceholder, text: "_"})
			i++
		default:
			return nil, fmt.Errorf("%w: %q: unexpected character %q", ErrMalformedRule, raw, r)
		}
	}
	return append(tokens, token{kind: tokEOF}), nil
}

type parser struct {
	tokens []token
	pos    int
	raw    string
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		if t.kind == tokEOF {
			return t, p.errorf("expected %s, got end of input", what)
		}
		return t, p.errorf("expected %s, got %q", what, t.text)
	}
	return t, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %q: %s", ErrMalformedRule, p.raw, fmt.Sprintf(format, args...))
}

func (p *parser) expr() (Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokArrow {
		p.next()
		wd, err := p.expect(tokWeekday, "weekday")
		if err != nil {
			return nil, err
		}
		expr = WeekdayRounded{Base: expr, Weekday: wd.weekday}
	}
	return expr, nil
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokPlaceholder:
		return Placeholder{}, nil
	case tokNumber:
		if _, err := p.expect(tokSlash, `"/"`); err != nil {
			return nil, err
		}
		day, err := p.expect(tokNumber, "day")
		if err != nil {
			return nil, err
		}
		return FixedDate{Month: time.Month(t.num), Day: day.num}, nil
	case tokEaster:
		sign := 1
		switch p.peek().kind {
		case tokPlus:
		case tokMinus:
			sign = -1
		default:
			return EasterRelative{}, nil
		}
		p.next()
		n, err := p.expect(tokNumber, "day offset")
		if err != nil {
			return nil, err
		}
		return EasterRelative{Offset: sign * n.num}, nil
	case tokEOF:
		return nil, p.errorf("empty expression")
	}
	return nil, p.errorf("unexpected %q", t.text)
}
