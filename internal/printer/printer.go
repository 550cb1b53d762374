// Package printer reprints a parsed ast.Script back into canonical shell
// source text. It is a debugging/formatting aid (cmd/hsh's "fmt"
// subcommand), not a byte-for-byte reproduction of the original source:
// whitespace and comments are not preserved by internal/parser's AST, so
// the output is a normalized rendering of the same semantics.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
)

// Print renders script as canonical shell source.
func Print(script *ast.Script) string {
	p := &printer{}
	p.script(script, 0)
	return p.sb.String()
}

type printer struct {
	sb strings.Builder
}

func (p *printer) indent(depth int) {
	p.sb.WriteString(strings.Repeat("  ", depth))
}

func (p *printer) script(s *ast.Script, depth int) {
	for _, st := range s.Statements {
		p.statement(st, depth)
	}
}

func (p *printer) statement(st *ast.Statement, depth int) {
	p.indent(depth)
	if st.Negate {
		p.sb.WriteString("! ")
	}
	p.pipeline(st.Pipeline, depth)
	switch st.AndOr {
	case ast.SeqAnd:
		p.sb.WriteString(" &&\n")
	case ast.SeqOr:
		p.sb.WriteString(" ||\n")
	default:
		if st.Background {
			p.sb.WriteString(" &\n")
		} else {
			p.sb.WriteString("\n")
		}
	}
}

func (p *printer) pipeline(pl *ast.Pipeline, depth int) {
	for i, cmd := range pl.Commands {
		if i > 0 {
			if pl.PipeStderr[i-1] {
				p.sb.WriteString(" |& ")
			} else {
				p.sb.WriteString(" | ")
			}
		}
		p.command(cmd, depth)
	}
}

func (p *printer) command(cmd ast.Command, depth int) {
	switch c := cmd.(type) {
	case *ast.Simple:
		p.simple(c)
	case *ast.Compound:
		p.compound(c, depth)
	case *ast.FunctionDef:
		fmt.Fprintf(&p.sb, "%s() ", c.Name)
		p.compound(c.Body, depth)
	}
}

func (p *printer) simple(s *ast.Simple) {
	var parts []string
	for _, a := range s.Assignments {
		parts = append(parts, p.assignment(a))
	}
	for _, w := range s.Words {
		parts = append(parts, p.word(w))
	}
	p.sb.WriteString(strings.Join(parts, " "))
	for _, r := range s.Redirects {
		p.sb.WriteString(" ")
		p.redirect(r)
	}
}

func (p *printer) assignment(a *ast.Assignment) string {
	name := a.Name
	if a.Index != nil {
		name += "[" + p.word(a.Index) + "]"
	}
	op := "="
	if a.Append {
		op = "+="
	}
	return name + op + p.word(a.Value)
}

func (p *printer) redirect(r *ast.Redirect) {
	fd := ""
	if r.Fd >= 0 && r.Fd != defaultFd(r.Kind) {
		fd = strconv.Itoa(r.Fd)
	}
	switch r.Kind {
	case ast.RedirIn:
		fmt.Fprintf(&p.sb, "%s<%s", fd, p.word(r.Target))
	case ast.RedirOut:
		fmt.Fprintf(&p.sb, "%s>%s", fd, p.word(r.Target))
	case ast.RedirAppend:
		fmt.Fprintf(&p.sb, "%s>>%s", fd, p.word(r.Target))
	case ast.RedirClobber:
		fmt.Fprintf(&p.sb, "%s>|%s", fd, p.word(r.Target))
	case ast.RedirHeredoc:
		p.sb.WriteString(fd + "<<HEREDOC")
	case ast.RedirHeredocTab:
		p.sb.WriteString(fd + "<<-HEREDOC")
	case ast.RedirHereString:
		fmt.Fprintf(&p.sb, "%s<<<%s", fd, p.word(r.Target))
	case ast.RedirDupIn:
		fmt.Fprintf(&p.sb, "%s<&%s", fd, p.word(r.Target))
	case ast.RedirDupOut:
		fmt.Fprintf(&p.sb, "%s>&%s", fd, p.word(r.Target))
	case ast.RedirBoth:
		fmt.Fprintf(&p.sb, "&>%s", p.word(r.Target))
	}
}

// defaultFd is the file descriptor internal/parser fills in for a
// redirection with no explicit "N>"/"N<" prefix: 0 for the input-reading
// kinds, 1 for everything else. Used to suppress a redundant fd number on
// the common, unprefixed case.
func defaultFd(kind ast.RedirKind) int {
	switch kind {
	case ast.RedirIn, ast.RedirDupIn, ast.RedirHeredoc, ast.RedirHeredocTab, ast.RedirHereString:
		return 0
	default:
		return 1
	}
}

func (p *printer) compound(c *ast.Compound, depth int) {
	switch c.Kind {
	case ast.KindIf:
		p.sb.WriteString("if ")
		for i, cond := range c.Cond {
			if i > 0 {
				p.indent(depth)
				p.sb.WriteString("elif ")
			}
			p.inlineScript(cond)
			p.sb.WriteString("; then\n")
			p.script(c.Then[i], depth+1)
		}
		if c.Else != nil {
			p.indent(depth)
			p.sb.WriteString("else\n")
			p.script(c.Else, depth+1)
		}
		p.indent(depth)
		p.sb.WriteString("fi")
	case ast.KindFor:
		fmt.Fprintf(&p.sb, "for %s in %s; do\n", c.Name, p.words(c.Words))
		p.script(c.Body, depth+1)
		p.indent(depth)
		p.sb.WriteString("done")
	case ast.KindCStyleFor:
		p.sb.WriteString("for ((...)); do\n")
		p.script(c.Body, depth+1)
		p.indent(depth)
		p.sb.WriteString("done")
	case ast.KindWhile:
		p.sb.WriteString("while ")
		p.inlineScript(c.CondScript)
		p.sb.WriteString("; do\n")
		p.script(c.Body, depth+1)
		p.indent(depth)
		p.sb.WriteString("done")
	case ast.KindUntil:
		p.sb.WriteString("until ")
		p.inlineScript(c.CondScript)
		p.sb.WriteString("; do\n")
		p.script(c.Body, depth+1)
		p.indent(depth)
		p.sb.WriteString("done")
	case ast.KindCase:
		fmt.Fprintf(&p.sb, "case %s in\n", p.word(c.Subject))
		for _, arm := range c.Arms {
			p.indent(depth + 1)
			p.sb.WriteString(p.words(arm.Patterns) + ")\n")
			p.script(arm.Body, depth+2)
			p.indent(depth + 1)
			switch arm.Term {
			case ast.TermFallThru:
				p.sb.WriteString(";&\n")
			case ast.TermTestNext:
				p.sb.WriteString(";;&\n")
			default:
				p.sb.WriteString(";;\n")
			}
		}
		p.indent(depth)
		p.sb.WriteString("esac")
	case ast.KindSelect:
		fmt.Fprintf(&p.sb, "select %s in %s; do\n", c.Name, p.words(c.Words))
		p.script(c.Body, depth+1)
		p.indent(depth)
		p.sb.WriteString("done")
	case ast.KindSubshell:
		p.sb.WriteString("(\n")
		p.script(c.Inner, depth+1)
		p.indent(depth)
		p.sb.WriteString(")")
	case ast.KindGroup:
		p.sb.WriteString("{\n")
		p.script(c.Inner, depth+1)
		p.indent(depth)
		p.sb.WriteString("}")
	case ast.KindArithmeticCmd:
		p.sb.WriteString("((...))")
	case ast.KindConditionalCmd:
		p.sb.WriteString("[[ ... ]]")
	}
	for _, r := range c.Redirects {
		p.sb.WriteString(" ")
		p.redirect(r)
	}
}

// inlineScript prints a condition clause's statements on one line, joined
// by ";", since if/while/until conditions read better that way than as a
// full indented block.
func (p *printer) inlineScript(s *ast.Script) {
	var parts []string
	for _, st := range s.Statements {
		var b strings.Builder
		saved := p.sb
		p.sb = strings.Builder{}
		if st.Negate {
			p.sb.WriteString("! ")
		}
		p.pipeline(st.Pipeline, 0)
		b.WriteString(p.sb.String())
		p.sb = saved
		parts = append(parts, b.String())
	}
	p.sb.WriteString(strings.Join(parts, "; "))
}

func (p *printer) words(ws []*ast.Word) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = p.word(w)
	}
	return strings.Join(parts, " ")
}

func (p *printer) word(w *ast.Word) string {
	if w == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range w.Parts {
		sb.WriteString(p.wordPart(part))
	}
	return sb.String()
}

func (p *printer) wordPart(wp *ast.WordPart) string {
	switch wp.Kind {
	case ast.PartLiteral:
		return wp.Literal
	case ast.PartSingleQuoted:
		return "'" + wp.Literal + "'"
	case ast.PartDoubleQuoted:
		var sb strings.Builder
		sb.WriteString(`"`)
		for _, inner := range wp.Parts {
			sb.WriteString(p.wordPart(inner))
		}
		sb.WriteString(`"`)
		return sb.String()
	case ast.PartParam:
		return p.param(wp.Param)
	case ast.PartCommandSub:
		return "$(" + strings.TrimRight(Print(wp.Sub), "\n") + ")"
	case ast.PartArithSub:
		return "$((...))"
	case ast.PartProcessSub:
		if wp.SubIn {
			return "<(" + strings.TrimRight(Print(wp.Sub), "\n") + ")"
		}
		return ">(" + strings.TrimRight(Print(wp.Sub), "\n") + ")"
	case ast.PartTilde:
		return "~" + wp.Tilde
	}
	return ""
}

func (p *printer) param(pr *ast.Param) string {
	name := pr.Name
	if pr.Index != nil {
		name += "[" + p.word(pr.Index) + "]"
	} else if pr.AtStar != 0 {
		name += string(pr.AtStar)
	}
	switch pr.Op {
	case ast.ParamPlain:
		return "$" + name
	case ast.ParamLength:
		return "${#" + name + "}"
	default:
		return "${" + name + "...}"
	}
}
