package builtin

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/hermetic-sh/hsh/internal/command"
	"github.com/hermetic-sh/hsh/internal/state"
	"github.com/hermetic-sh/hsh/internal/vfs"
)

func registerIOBuiltins(r *command.Registry) {
	r.Register("echo", builtinEcho)
	r.Register("printf", builtinPrintf)
	r.Register("pwd", builtinPwd)
	r.Register("cd", builtinCd)
	r.Register("test", builtinTest)
	r.Register("[", builtinTest)
	r.Register("read", builtinRead)
}

// builtinEcho mirrors the teacher's builtinPrint/builtinPrintLn pairing:
// write each argument space-separated, honoring -n (no trailing newline)
// and -e (backslash-escape expansion).
func builtinEcho(ctx *command.Context) (int, error) {
	args := ctx.Args[1:]
	newline := true
	escapes := false
	for len(args) > 0 {
		switch args[0] {
		case "-n":
			newline = false
		case "-e":
			escapes = true
		case "-E":
			escapes = false
		default:
			goto done
		}
		args = args[1:]
	}
done:
	for i, a := range args {
		if i > 0 {
			fmt.Fprint(ctx.Stdout, " ")
		}
		if escapes {
			a = expandEchoEscapes(a)
		}
		fmt.Fprint(ctx.Stdout, a)
	}
	if newline {
		fmt.Fprintln(ctx.Stdout)
	}
	return 0, nil
}

func expandEchoEscapes(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '\\':
			sb.WriteByte('\\')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

// builtinPrintf implements a practical subset of POSIX printf: %s %d %i %o
// %x %X %c %%, with the format cycled over extra argument groups the way
// bash's printf recycles its format string. Flags and field widths are not
// parsed: a directive such as "%-5s" is written out literally.
func builtinPrintf(ctx *command.Context) (int, error) {
	args := ctx.Args[1:]
	if len(args) == 0 {
		fmt.Fprintln(ctx.Stderr, "printf: usage: printf format [arguments]")
		return 2, nil
	}
	format := args[0]
	rest := args[1:]
	if len(rest) == 0 {
		out, _ := renderPrintf(format, nil)
		fmt.Fprint(ctx.Stdout, out)
		return 0, nil
	}
	for len(rest) > 0 {
		out, consumed := renderPrintf(format, rest)
		fmt.Fprint(ctx.Stdout, out)
		if consumed == 0 {
			break
		}
		rest = rest[consumed:]
	}
	return 0, nil
}

func renderPrintf(format string, args []string) (string, int) {
	var sb strings.Builder
	consumed := 0
	next := func() string {
		if consumed < len(args) {
			v := args[consumed]
			consumed++
			return v
		}
		return ""
	}
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			if c == '\\' && i < len(format)-1 {
				i++
				sb.WriteString(expandEchoEscapes("\\" + string(format[i])))
				continue
			}
			sb.WriteByte(c)
			continue
		}
		i++
		verb := format[i]
		switch verb {
		case '%':
			sb.WriteByte('%')
		case 's':
			sb.WriteString(next())
		case 'd', 'i':
			n, _ := strconv.ParseInt(strings.TrimSpace(next()), 10, 64)
			fmt.Fprintf(&sb, "%d", n)
		case 'o':
			n, _ := strconv.ParseInt(strings.TrimSpace(next()), 10, 64)
			fmt.Fprintf(&sb, "%o", n)
		case 'x':
			n, _ := strconv.ParseInt(strings.TrimSpace(next()), 10, 64)
			fmt.Fprintf(&sb, "%x", n)
		case 'X':
			n, _ := strconv.ParseInt(strings.TrimSpace(next()), 10, 64)
			fmt.Fprintf(&sb, "%X", n)
		case 'c':
			v := next()
			if len(v) > 0 {
				sb.WriteByte(v[0])
			}
		default:
			sb.WriteByte('%')
			sb.WriteByte(verb)
		}
	}
	return sb.String(), consumed
}

func builtinPwd(ctx *command.Context) (int, error) {
	if c, ok := ctx.Store.Get("PWD"); ok {
		fmt.Fprintln(ctx.Stdout, c.Scalar)
		return 0, nil
	}
	fmt.Fprintln(ctx.Stdout, "/")
	return 0, nil
}

func builtinCd(ctx *command.Context) (int, error) {
	target := "/"
	if c, ok := ctx.Store.Get("HOME"); ok {
		target = c.Scalar
	}
	if len(ctx.Args) > 1 {
		target = ctx.Args[1]
	}
	if target == "-" {
		if c, ok := ctx.Store.Get("OLDPWD"); ok {
			target = c.Scalar
		}
	}
	if !strings.HasPrefix(target, "/") {
		if cwd, ok := ctx.Store.Get("PWD"); ok {
			target = joinPath(cwd.Scalar, target)
		} else {
			target = "/" + target
		}
	}
	info, err := ctx.FS.Stat(target)
	if err != nil || !info.IsDir {
		fmt.Fprintf(ctx.Stderr, "cd: %s: %s\n", target, vfsErrText(err))
		return 1, nil
	}
	old, _ := ctx.Store.Get("PWD")
	oldVal := "/"
	if old != nil {
		oldVal = old.Scalar
	}
	ctx.Store.Set("OLDPWD", state.NewScalarCell(oldVal))
	ctx.Store.Set("PWD", state.NewScalarCell(target))
	return 0, nil
}

// builtinRead reads one line from stdin and splits it on IFS into the
// named variables, the way runSelect's own line reader does for menu
// choices; the last variable absorbs any remaining fields, and a bare
// "read" with no names sets REPLY, matching bash.
func builtinRead(ctx *command.Context) (int, error) {
	names := ctx.Args[1:]
	if len(names) == 0 {
		names = []string{"REPLY"}
	}

	reader := bufio.NewReader(ctx.Stdin)
	line, err := reader.ReadString('\n')
	line = strings.TrimRight(line, "\n")
	if line == "" && err != nil {
		return 1, nil
	}

	ifs := " \t\n"
	if c, ok := ctx.Store.Get("IFS"); ok {
		ifs = c.Scalar
	}
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(ifs, r)
	})

	for i, name := range names {
		switch {
		case i == len(names)-1:
			rest := fields[min(i, len(fields)):]
			ctx.Store.Set(name, state.NewScalarCell(strings.Join(rest, ifsSep(ifs))))
		case i < len(fields):
			ctx.Store.Set(name, state.NewScalarCell(fields[i]))
		default:
			ctx.Store.Set(name, state.NewScalarCell(""))
		}
	}
	return 0, nil
}

func ifsSep(ifs string) string {
	if ifs == "" {
		return ""
	}
	return string(ifs[0])
}

func joinPath(base, rel string) string {
	if base == "" {
		base = "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + rel
}

func vfsErrText(err error) string {
	if err == nil {
		return "not a directory"
	}
	switch err {
	case vfs.ErrNotFound:
		return "No such file or directory"
	case vfs.ErrNotDir:
		return "Not a directory"
	case vfs.ErrPermissionDenied:
		return "Permission denied"
	default:
		return err.Error()
	}
}
