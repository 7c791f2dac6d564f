package ir

const (
	DataInteger = iota
	DataFloat
)

// DTyp defines string for print friendly output of int and float.
var DTyp = []string{
	"integer",
	"float",
}
