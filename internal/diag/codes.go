package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// загрузка сценариев
	LoadInfo        Code = 1000
	LoadIO          Code = 1001
	LoadSyntax      Code = 1002
	LoadDecl        Code = 1003
	LoadHierarchy   Code = 1004
	LoadUnknownName Code = 1005

	// несовпадение ожиданий кейса
	CaseInfo            Code = 3000
	CaseUnexpectedMatch Code = 3001
	CaseWrongKind       Code = 3002
	CaseWrongResolution Code = 3003
	CaseWrongReturn     Code = 3004

	// matcher
	MatchGeneric        Code = 4000
	MatchArity          Code = 4001
	MatchBound          Code = 4002
	MatchConstraint     Code = 4003
	MatchHierarchy      Code = 4004
	MatchVariance       Code = 4005
	MatchUnification    Code = 4006
	MatchRecursionLimit Code = 4007
)

var codeDescription = map[Code]string{
	UnknownCode:         "Unknown error",
	LoadInfo:            "Scenario information",
	LoadIO:              "Cannot read scenario file",
	LoadSyntax:          "Malformed type expression",
	LoadDecl:            "Invalid declaration",
	LoadHierarchy:       "Invalid class hierarchy",
	LoadUnknownName:     "Unknown class or type variable",
	CaseInfo:            "Case information",
	CaseUnexpectedMatch: "Expected a mismatch but the types matched",
	CaseWrongKind:       "Mismatch kind differs from the expected kind",
	CaseWrongResolution: "Type variable resolved differently than expected",
	CaseWrongReturn:     "Call returned a different type than expected",
	MatchGeneric:        "Type mismatch",
	MatchArity:          "Callable arity mismatch",
	MatchBound:          "Type variable bound violated",
	MatchConstraint:     "Type variable constraints violated",
	MatchHierarchy:      "Class is not a subclass of the expected class",
	MatchVariance:       "Type argument variance conflict",
	MatchUnification:    "Type variable bound to incompatible types",
	MatchRecursionLimit: "Type nesting exceeds the recursion limit",
}

// ID returns the stable identifier, e.g. TM4001.
func (c Code) ID() string {
	ic := int(c)
	switch {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LOAD%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CASE%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TM%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
