package ruby

import "lintel/internal/syntax"

// kindOf maps tree-sitter node kinds that convert one to one. Anything not
// listed becomes syntax.KindOther.
var kindOf = map[string]syntax.Kind{
	"program":          syntax.KindProgram,
	"method":           syntax.KindDef,
	"singleton_method": syntax.KindDefs,
	"class":            syntax.KindClass,
	"singleton_class":  syntax.KindSClass,
	"module":           syntax.KindModule,

	"operator_assignment": syntax.KindOpAsgn,

	"constant":         syntax.KindConst,
	"scope_resolution": syntax.KindConst,
	"identifier":       syntax.KindIdent,

	"simple_symbol":    syntax.KindSym,
	"hash_key_symbol":  syntax.KindSym,
	"delimited_symbol": syntax.KindSym,
	"string":           syntax.KindStr,
	"chained_string":   syntax.KindStr,
	"heredoc_body":     syntax.KindStr,
	"integer":          syntax.KindInt,
	"float":            syntax.KindFloat,
	"hash":             syntax.KindHash,
	"pair":             syntax.KindPair,
	"array":            syntax.KindArray,
	"string_array":     syntax.KindArray,
	"symbol_array":     syntax.KindArray,

	"method_parameters": syntax.KindArgs,
	"block_parameters":  syntax.KindArgs,
	"lambda_parameters": syntax.KindArgs,

	"body_statement":           syntax.KindBegin,
	"block_body":               syntax.KindBegin,
	"begin":                    syntax.KindBegin,
	"parenthesized_statements": syntax.KindBegin,

	"if":              syntax.KindIf,
	"unless":          syntax.KindIf,
	"elsif":           syntax.KindIf,
	"if_modifier":     syntax.KindIf,
	"unless_modifier": syntax.KindIf,
	"conditional":     syntax.KindIf,
	"case":            syntax.KindCase,
	"case_match":      syntax.KindCase,
	"while":           syntax.KindWhile,
	"until":           syntax.KindWhile,
	"while_modifier":  syntax.KindWhile,
	"until_modifier":  syntax.KindWhile,
	"return":          syntax.KindReturn,

	"comment": syntax.KindComment,
}

// assignKind tags an assignment by the kind of its left-hand side.
var assignKind = map[string]syntax.Kind{
	"constant":          syntax.KindCasgn,
	"scope_resolution":  syntax.KindCasgn,
	"class_variable":    syntax.KindCvasgn,
	"instance_variable": syntax.KindIvasgn,
	"global_variable":   syntax.KindGvasgn,
	"identifier":        syntax.KindLvasgn,
}

// dropped named nodes carry no structure the cops look at.
var dropped = map[string]bool{
	"string_content":  true,
	"escape_sequence": true,
	"heredoc_content": true,
	"heredoc_end":     true,
}

func lookupKind(tsKind string) syntax.Kind {
	if k, ok := kindOf[tsKind]; ok {
		return k
	}
	return syntax.KindOther
}
