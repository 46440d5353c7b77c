package types

import (
	"strings"

	"typematch/internal/source"
)

const maxLabelDepth = 8

// Label returns a user-friendly label for a TypeID, type variables shown
// symbolically.
func Label(typesIn *Interner, id TypeID) string {
	return LabelResolved(typesIn, id, nil)
}

// LabelResolved renders id with type variables replaced by their resolution
// where resolve knows one, symbolic otherwise.
func LabelResolved(typesIn *Interner, id TypeID, resolve Resolver) string {
	var sb strings.Builder
	writeLabel(&sb, typesIn, id, resolve, 0, nil)
	return sb.String()
}

func writeLabel(sb *strings.Builder, typesIn *Interner, id TypeID, resolve Resolver, depth int, expanding []TypeID) {
	if typesIn == nil || id == NoTypeID {
		sb.WriteString("?")
		return
	}
	if depth > maxLabelDepth {
		sb.WriteString("...")
		return
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		sb.WriteString("?")
		return
	}
	switch tt.Kind {
	case KindAny:
		sb.WriteString("Any")
	case KindNone:
		sb.WriteString("None")
	case KindNothing:
		sb.WriteString("nothing")
	case KindClass:
		sb.WriteString(typesIn.ClassName(tt.Class))
	case KindGeneric:
		info, _ := typesIn.GenericInfo(id)
		sb.WriteString(typesIn.ClassName(info.Class))
		writeList(sb, typesIn, info.Args, resolve, depth, expanding)
	case KindUnion:
		info, _ := typesIn.UnionInfo(id)
		none := typesIn.Builtins().None
		if len(info.Members) == 2 && (info.Members[0] == none || info.Members[1] == none) {
			other := info.Members[0]
			if other == none {
				other = info.Members[1]
			}
			sb.WriteString("Optional[")
			writeLabel(sb, typesIn, other, resolve, depth+1, expanding)
			sb.WriteString("]")
			return
		}
		sb.WriteString("Union")
		writeList(sb, typesIn, info.Members, resolve, depth, expanding)
	case KindCallable:
		info, _ := typesIn.CallableInfo(id)
		sb.WriteString("Callable[")
		if info.Variadic {
			sb.WriteString("...")
		} else {
			sb.WriteString("[")
			for i, p := range info.EffectiveParams() {
				if i > 0 {
					sb.WriteString(", ")
				}
				writeLabel(sb, typesIn, p, resolve, depth+1, expanding)
			}
			sb.WriteString("]")
		}
		sb.WriteString(", ")
		writeLabel(sb, typesIn, info.Result, resolve, depth+1, expanding)
		sb.WriteString("]")
	case KindTypeVar:
		if resolve != nil && !containsID(expanding, id) {
			if r, ok := resolve(id); ok && r != id {
				writeLabel(sb, typesIn, r, resolve, depth, append(expanding, id))
				return
			}
		}
		sb.WriteString(typesIn.TypeVarName(id))
	case KindClassObject:
		sb.WriteString("Type[")
		writeLabel(sb, typesIn, tt.Elem, resolve, depth+1, expanding)
		sb.WriteString("]")
	default:
		sb.WriteString("?")
	}
}

func writeList(sb *strings.Builder, typesIn *Interner, ids []TypeID, resolve Resolver, depth int, expanding []TypeID) {
	sb.WriteString("[")
	for i, a := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeLabel(sb, typesIn, a, resolve, depth+1, expanding)
	}
	sb.WriteString("]")
}

func containsID(ids []TypeID, id TypeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func lookupNameFallback(strs *source.Interner, id source.StringID) string {
	if strs == nil {
		return "?"
	}
	if s, ok := strs.Lookup(id); ok && s != "" {
		return s
	}
	return "?"
}
