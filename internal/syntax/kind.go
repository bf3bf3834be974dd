package syntax

// Kind is the node tag of a syntax tree node. The set mirrors the node types
// of the Ruby parser gem as far as the cops need to tell them apart.
type Kind uint8

const (
	// KindInvalid is the zero value; a node must never carry it.
	KindInvalid Kind = iota
	KindProgram
	// Вызовы
	KindSend  // recv.meth(args) or meth(args)
	KindCSend // recv&.meth(args)
	// Блоки и лямбды
	KindBlock    // send + block args + body; also `-> { }`
	KindNumBlock // block using _1.._9 or `it`
	KindLambda   // the `->` part of a lambda literal
	// Определения
	KindDef    // def meth
	KindDefs   // def self.meth
	KindClass  // class Foo
	KindSClass // class << self
	KindModule // module Foo
	// Присваивания
	KindCasgn  // CONST = value
	KindCvasgn // @@var = value
	KindIvasgn // @var = value
	KindGvasgn // $var = value
	KindLvasgn // var = value
	KindOpAsgn // var += value, var ||= value
	// Литералы и прочее
	KindConst
	KindIdent
	KindSym
	KindStr
	KindInt
	KindFloat
	KindHash
	KindPair
	KindArray
	KindArgs
	KindBegin
	KindIf
	KindCase
	KindWhile
	KindReturn
	KindComment
	KindOther

	kindCount
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindProgram:  "program",
	KindSend:     "send",
	KindCSend:    "csend",
	KindBlock:    "block",
	KindNumBlock: "numblock",
	KindLambda:   "lambda",
	KindDef:      "def",
	KindDefs:     "defs",
	KindClass:    "class",
	KindSClass:   "sclass",
	KindModule:   "module",
	KindCasgn:    "casgn",
	KindCvasgn:   "cvasgn",
	KindIvasgn:   "ivasgn",
	KindGvasgn:   "gvasgn",
	KindLvasgn:   "lvasgn",
	KindOpAsgn:   "op_asgn",
	KindConst:    "const",
	KindIdent:    "ident",
	KindSym:      "sym",
	KindStr:      "str",
	KindInt:      "int",
	KindFloat:    "float",
	KindHash:     "hash",
	KindPair:     "pair",
	KindArray:    "array",
	KindArgs:     "args",
	KindBegin:    "begin",
	KindIf:       "if",
	KindCase:     "case",
	KindWhile:    "while",
	KindReturn:   "return",
	KindComment:  "comment",
	KindOther:    "other",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "unknown"
}

// Valid reports whether k is a real node tag.
func (k Kind) Valid() bool {
	return k > KindInvalid && k < kindCount
}

// IsCall reports whether nodes of kind k carry a method name.
func (k Kind) IsCall() bool {
	return k == KindSend || k == KindCSend
}

// ParseKind maps a kind name as returned by String back to the Kind.
func ParseKind(name string) (Kind, bool) {
	for k := KindProgram; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, true
		}
	}
	return KindInvalid, false
}
