package expand

// expandTilde resolves "~", "~+", "~-", and "~user" (spec string from
// ast.WordPart.Tilde). A hermetic interpreter has no real user database,
// so "~user" only resolves if a HOME-like convention variable
// "HOME_<user>" happens to be set (a documented approximation); otherwise
// it is left as the literal "~user" text, matching bash's own fallback
// when getpwnam fails.
func (e *Expander) expandTilde(spec string) string {
	switch spec {
	case "":
		if c, ok := e.Store.Get("HOME"); ok {
			return c.Scalar
		}
		return "~"
	case "+":
		if c, ok := e.Store.Get("PWD"); ok {
			return c.Scalar
		}
		return "~+"
	case "-":
		if c, ok := e.Store.Get("OLDPWD"); ok {
			return c.Scalar
		}
		return "~-"
	default:
		if c, ok := e.Store.Get("HOME_" + spec); ok {
			return c.Scalar
		}
		return "~" + spec
	}
}
