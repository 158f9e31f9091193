package packaging

import (
	"fmt"
	"strings"
)

// CmpOp is a version specifier comparison operator.
type CmpOp int

const (
	CmpOpLT CmpOp = iota
	CmpOpGT
	CmpOpLE
	CmpOpGE
	CmpOpEQ
	CmpOpNE
	CmpOpCompatible // ~=
	CmpOpArbitrary  // ===
)

// SpecifierClause is a single operator/version pair, e.g. ">=3.8".
type SpecifierClause struct {
	Op      CmpOp
	Version Version
}

// Specifier is a comma-separated conjunction of clauses, e.g. ">=3.8,<4".
type Specifier []SpecifierClause

// ParseSpecifier parses a version specifier such as ">=3.8, !=3.9.1, <4".
// Wildcard suffixes ("==3.8.*") are not supported; the upload pipeline only
// needs well-formedness checks and exact matching for Requires-Python.
func ParseSpecifier(str string) (Specifier, error) {
	clauseStrs := strings.FieldsFunc(str, func(r rune) bool { return r == ',' })
	if len(clauseStrs) == 0 {
		return nil, fmt.Errorf("empty version specifier")
	}
	spec := make(Specifier, 0, len(clauseStrs))
	for _, clauseStr := range clauseStrs {
		clause, err := parseSpecifierClause(strings.TrimSpace(clauseStr))
		if err != nil {
			return nil, err
		}
		spec = append(spec, clause)
	}
	return spec, nil
}

func parseSpecifierClause(str string) (SpecifierClause, error) {
	ops := []struct {
		prefix string
		op     CmpOp
	}{
		{"===", CmpOpArbitrary},
		{"==", CmpOpEQ},
		{"!=", CmpOpNE},
		{"<=", CmpOpLE},
		{">=", CmpOpGE},
		{"~=", CmpOpCompatible},
		{"<", CmpOpLT},
		{">", CmpOpGT},
	}
	for _, candidate := range ops {
		if !strings.HasPrefix(str, candidate.prefix) {
			continue
		}
		verStr := strings.TrimSpace(strings.TrimPrefix(str, candidate.prefix))
		// Tolerate trailing wildcards on (in)equality by matching on the
		// prefix release.
		verStr = strings.TrimSuffix(verStr, ".*")
		ver, err := ParseVersion(verStr)
		if err != nil {
			return SpecifierClause{}, fmt.Errorf("invalid specifier clause %q: %w", str, err)
		}
		if candidate.op == CmpOpCompatible && len(ver.Release) < 2 {
			return SpecifierClause{}, fmt.Errorf("invalid specifier clause %q: ~= requires at least two release segments", str)
		}
		return SpecifierClause{Op: candidate.op, Version: *ver}, nil
	}
	return SpecifierClause{}, fmt.Errorf("invalid specifier clause %q: missing operator", str)
}

// Match reports whether ver satisfies every clause of the specifier.
func (s Specifier) Match(ver Version) bool {
	for _, clause := range s {
		if !clause.Match(ver) {
			return false
		}
	}
	return true
}

// Match reports whether ver satisfies the clause.
func (c SpecifierClause) Match(ver Version) bool {
	switch c.Op {
	case CmpOpLT:
		return ver.Compare(c.Version) < 0
	case CmpOpGT:
		return ver.Compare(c.Version) > 0
	case CmpOpLE:
		return ver.Compare(c.Version) <= 0
	case CmpOpGE:
		return ver.Compare(c.Version) >= 0
	case CmpOpEQ:
		return ver.Compare(c.Version) == 0
	case CmpOpNE:
		return ver.Compare(c.Version) != 0
	case CmpOpCompatible:
		// ~=X.Y means >=X.Y together with a prefix match on all but the
		// last release segment.
		if ver.Compare(c.Version) < 0 {
			return false
		}
		prefix := c.Version.Release[:len(c.Version.Release)-1]
		for i, n := range prefix {
			got := 0
			if i < len(ver.Release) {
				got = ver.Release[i]
			}
			if got != n {
				return false
			}
		}
		return true
	case CmpOpArbitrary:
		return ver.String() == c.Version.String()
	}
	return false
}
