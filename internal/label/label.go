// Package label parses build-tool target labels such as
// "//pkg/sub:target" or "@repo//pkg:target" into their components.
//
// Only syntax is checked; nothing here knows whether a package or target
// actually exists.
package label

import (
	"strings"
)

// Label is a parsed target label.
type Label struct {
	// Repository is the external repository name without the leading "@".
	// Empty for the main repository.
	Repository string

	// Package is the package path relative to the workspace root.
	// Empty for the root package or for relative labels like ":target".
	Package string

	// Target is the target name. When a label omits it, the last package
	// path element is used ("//pkg/sub" means "//pkg/sub:sub").
	Target string

	absolute bool
}

// Parse parses s as a label. Bare paths without "//" (for example "pkg/sub")
// are accepted and treated as package paths.
func Parse(s string) (Label, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Label{}, &ParseError{Input: raw, Message: "empty label"}
	}
	if strings.ContainsAny(s, " \t\n") {
		return Label{}, &ParseError{Input: raw, Message: "label contains whitespace"}
	}

	var l Label

	if strings.HasPrefix(s, "@") {
		repo, rest, ok := strings.Cut(s[1:], "//")
		if !ok {
			// "@repo" alone is shorthand for "@repo//:repo".
			if repo == "" || strings.Contains(repo, ":") {
				return Label{}, &ParseError{Input: raw, Message: "repository label is missing \"//\""}
			}
			return Label{Repository: repo, Target: repo, absolute: true}, nil
		}
		l.Repository = repo
		s = "//" + rest
	}

	if rest, ok := strings.CutPrefix(s, "//"); ok {
		l.absolute = true
		s = rest
	}
	if strings.Contains(s, "//") {
		return Label{}, &ParseError{Input: raw, Message: "unexpected \"//\" inside label"}
	}

	pkg, target, hasTarget := strings.Cut(s, ":")
	if strings.Contains(target, ":") {
		return Label{}, &ParseError{Input: raw, Message: "more than one \":\""}
	}
	if hasTarget && target == "" {
		return Label{}, &ParseError{Input: raw, Message: "empty target name"}
	}

	l.Package = strings.Trim(pkg, "/")
	l.Target = target
	if !hasTarget {
		l.Target = l.Package[strings.LastIndex(l.Package, "/")+1:]
	}
	if l.Package == "" && l.Target == "" {
		return Label{}, &ParseError{Input: raw, Message: "label names neither a package nor a target"}
	}

	return l, nil
}

// PackageName returns the package path and whether the label names one.
// Relative labels (":target") and root-package labels ("//:target") have
// no package component.
func (l Label) PackageName() (string, bool) {
	if l.Package == "" {
		return "", false
	}
	return l.Package, true
}

// IsRelative reports whether the label was written without a leading "//".
func (l Label) IsRelative() bool {
	return !l.absolute
}

// String returns the canonical absolute form of the label.
func (l Label) String() string {
	var b strings.Builder
	if l.Repository != "" {
		b.WriteString("@")
		b.WriteString(l.Repository)
	}
	b.WriteString("//")
	b.WriteString(l.Package)
	if l.Target != "" {
		b.WriteString(":")
		b.WriteString(l.Target)
	}
	return b.String()
}

// PackageOf is a convenience wrapper returning the package component of s,
// or false when s does not parse or has no package.
func PackageOf(s string) (string, bool) {
	l, err := Parse(s)
	if err != nil {
		return "", false
	}
	return l.PackageName()
}
