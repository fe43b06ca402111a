package symbols

var (
	Null   = NewScalarTypeSymbol("null")
	Scalar = NewScalarTypeSymbol("scalar")
	Bool   = NewScalarTypeSymbol("bool", Scalar)
	String = NewScalarTypeSymbol("string", Scalar)
	Num    = NewScalarTypeSymbol("num", Scalar)
	Int    = NewScalarTypeSymbol("int", Num)
	Float  = NewScalarTypeSymbol("float", Num)
	Array  = NewArrayTypeSymbol("array")
)

// Builtins maps the absolute name of every predefined type to its symbol
func Builtins() map[string]TypeSymbol {
	return map[string]TypeSymbol{
		MixedName:             Mixed,
		Null.AbsoluteName():   Null,
		Scalar.AbsoluteName(): Scalar,
		Bool.AbsoluteName():   Bool,
		String.AbsoluteName(): String,
		Num.AbsoluteName():    Num,
		Int.AbsoluteName():    Int,
		Float.AbsoluteName():  Float,
		Array.AbsoluteName():  Array,
	}
}

// DefaultConversions are the implicit conversions of the language
func DefaultConversions() []Conversion {
	return []Conversion{
		{From: Bool, To: Int},
		{From: Int, To: Float},
		{From: Int, To: String},
		{From: Float, To: String},
	}
}
