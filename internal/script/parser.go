package script

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"ownlint/internal/diag"
	"ownlint/internal/ops"
	"ownlint/internal/source"
)

type parser struct {
	file     *source.File
	reporter diag.Reporter
	builder  *ops.Builder
	depth    int
	lastSpan source.Span
}

// Parse turns file's content into an operation program, reporting malformed
// lines to reporter. A program is always returned; callers decide whether
// parse errors gate the check.
func Parse(file *source.File, reporter diag.Reporter) *ops.Program {
	p := &parser{
		file:     file,
		reporter: reporter,
		builder:  ops.NewBuilder(),
	}
	p.run()
	return p.builder.Program()
}

func (p *parser) run() {
	content := p.file.Content
	offset := 0
	for offset <= len(content) {
		end := offset
		for end < len(content) && content[end] != '\n' {
			end++
		}
		p.line(string(content[offset:end]), uint32(offset))
		if end >= len(content) {
			break
		}
		offset = end + 1
	}
	if p.depth > 0 {
		p.report(diag.ScriptUnbalancedScope, p.lastSpan,
			"%d scope(s) left open at end of script", p.depth)
	}
}

func (p *parser) line(raw string, lineStart uint32) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}
	start := lineStart + uint32(len(raw)-len(strings.TrimLeft(raw, " \t")))
	span := source.Span{File: p.file.ID, Start: start, End: start + uint32(len(trimmed))}
	p.lastSpan = span

	fields := strings.Fields(trimmed)
	directive, rest := fields[0], fields[1:]
	switch directive {
	case "bind":
		p.parseBind(span, rest)
	case "param":
		p.parseParam(span, rest)
	case "ref":
		p.parseRef(span, rest)
	case "move":
		p.parseMove(span, rest)
	case "mutate", "use", "drop", "return":
		p.parseUnary(span, directive, rest)
	case "scope", "{":
		p.depth++
		p.builder.EnterScope(span)
	case "}", "end":
		if p.depth == 0 {
			p.report(diag.ScriptUnbalancedScope, span, "closing brace without an open scope")
			return
		}
		p.depth--
		p.builder.ExitScope(span)
	default:
		p.report(diag.ScriptUnknownDirective, span, "unknown directive %q", directive)
	}
}

// bind NAME [= VALUE...]
func (p *parser) parseBind(span source.Span, rest []string) {
	if len(rest) == 0 {
		p.report(diag.ScriptBadOperand, span, "bind needs a binding name")
		return
	}
	name, ok := p.internName(span, rest[0])
	if !ok {
		return
	}
	value := source.NoStringID
	if len(rest) > 1 {
		if rest[1] != "=" {
			p.report(diag.ScriptBadOperand, span, "expected '=' after the binding name, got %q", rest[1])
			return
		}
		value = p.builder.Intern(strings.Join(rest[2:], " "))
	}
	p.builder.Bind(span, name, value)
}

// param NAME ['LIFE]
func (p *parser) parseParam(span source.Span, rest []string) {
	if len(rest) == 0 {
		p.report(diag.ScriptBadOperand, span, "param needs a binding name")
		return
	}
	name, ok := p.internName(span, rest[0])
	if !ok {
		return
	}
	life := source.NoStringID
	if len(rest) > 1 {
		life, ok = p.internLifetime(span, rest[1])
		if !ok {
			return
		}
	}
	p.builder.Param(span, name, life)
}

// ref NAME = &TARGET | &mut TARGET | &'life TARGET | &'life mut TARGET
func (p *parser) parseRef(span source.Span, rest []string) {
	if len(rest) < 3 || rest[1] != "=" {
		p.report(diag.ScriptBadOperand, span, "ref syntax: ref NAME = &[mut] TARGET")
		return
	}
	name, ok := p.internName(span, rest[0])
	if !ok {
		return
	}
	head := rest[2]
	if !strings.HasPrefix(head, "&") {
		p.report(diag.ScriptBadRefKind, span, "reference operand must start with '&', got %q", head)
		return
	}
	head = strings.TrimPrefix(head, "&")
	tail := rest[3:]

	life := source.NoStringID
	if strings.HasPrefix(head, "'") {
		life, ok = p.internLifetime(span, head)
		if !ok {
			return
		}
		if len(tail) == 0 {
			p.report(diag.ScriptBadOperand, span, "reference target missing after lifetime label")
			return
		}
		head, tail = tail[0], tail[1:]
	}

	kind := ops.RefShared
	if head == "mut" {
		kind = ops.RefMut
		if len(tail) == 0 {
			p.report(diag.ScriptBadOperand, span, "reference target missing after 'mut'")
			return
		}
		head, tail = tail[0], tail[1:]
	}
	if len(tail) != 0 {
		p.report(diag.ScriptBadOperand, span, "unexpected trailing tokens after reference target")
		return
	}
	target, ok := p.internName(span, head)
	if !ok {
		return
	}
	p.builder.TakeRef(span, name, target, kind, life)
}

// move DEST <- SRC
func (p *parser) parseMove(span source.Span, rest []string) {
	if len(rest) != 3 || rest[1] != "<-" {
		p.report(diag.ScriptBadOperand, span, "move syntax: move DEST <- SRC")
		return
	}
	dest, ok := p.internName(span, rest[0])
	if !ok {
		return
	}
	src, ok := p.internName(span, rest[2])
	if !ok {
		return
	}
	p.builder.Move(span, dest, src)
}

func (p *parser) parseUnary(span source.Span, directive string, rest []string) {
	if len(rest) != 1 {
		p.report(diag.ScriptBadOperand, span, "%s takes exactly one binding name", directive)
		return
	}
	name, ok := p.internName(span, rest[0])
	if !ok {
		return
	}
	switch directive {
	case "mutate":
		p.builder.Mutate(span, name)
	case "use":
		p.builder.Use(span, name)
	case "drop":
		p.builder.Drop(span, name)
	case "return":
		p.builder.Return(span, name)
	}
}

// internName validates and NFC-normalizes a binding name before interning,
// so visually identical identifiers compare equal.
func (p *parser) internName(span source.Span, raw string) (source.StringID, bool) {
	name := norm.NFC.String(raw)
	if !validName(name) {
		p.report(diag.ScriptBadName, span, "invalid binding name %q", raw)
		return source.NoStringID, false
	}
	return p.builder.Intern(name), true
}

// internLifetime parses a 'label token.
func (p *parser) internLifetime(span source.Span, raw string) (source.StringID, bool) {
	if !strings.HasPrefix(raw, "'") {
		p.report(diag.ScriptBadLifetime, span, "lifetime label must look like 'a, got %q", raw)
		return source.NoStringID, false
	}
	label := norm.NFC.String(raw[1:])
	if !validName(label) {
		p.report(diag.ScriptBadLifetime, span, "lifetime label must look like 'a, got %q", raw)
		return source.NoStringID, false
	}
	return p.builder.Intern(label), true
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

func (p *parser) report(code diag.Code, span source.Span, format string, args ...any) {
	if p.reporter == nil {
		return
	}
	p.reporter.Report(code, diag.SevError, span, fmt.Sprintf(format, args...), nil, nil)
}
