package rdf

const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// Helper values for common XSD datatypes
var (
	XSDString  = NewNamedNode(XSDNamespace + "string")
	XSDInteger = NewNamedNode(XSDNamespace + "integer")
	XSDDecimal = NewNamedNode(XSDNamespace + "decimal")
	XSDDouble  = NewNamedNode(XSDNamespace + "double")
	XSDBoolean = NewNamedNode(XSDNamespace + "boolean")
)

// RDF vocabulary used by the Turtle desugarings
var (
	RDFType  = NewNamedNode(RDFNamespace + "type")
	RDFFirst = NewNamedNode(RDFNamespace + "first")
	RDFRest  = NewNamedNode(RDFNamespace + "rest")
	RDFNil   = NewNamedNode(RDFNamespace + "nil")
)

func NewIntegerLiteral(lexical string) TypedLiteral {
	return NewTypedLiteral(lexical, XSDInteger)
}

func NewDecimalLiteral(lexical string) TypedLiteral {
	return NewTypedLiteral(lexical, XSDDecimal)
}

func NewDoubleLiteral(lexical string) TypedLiteral {
	return NewTypedLiteral(lexical, XSDDouble)
}

func NewBooleanLiteral(value bool) TypedLiteral {
	if value {
		return NewTypedLiteral("true", XSDBoolean)
	}
	return NewTypedLiteral("false", XSDBoolean)
}
