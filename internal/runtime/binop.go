package runtime

import (
	stderrors "errors"
	"iron/internal/object"
	"math"
)

var errDivisionByZero = stderrors.New("integer division by zero")

// builtinBinop is the fallback operator table for Int/Int and Float/Float
// operands. ok is false when the table has no entry. Integer arithmetic wraps.
func builtinBinop(op string, l, r object.Union) (result object.Union, ok bool, err error) {
	if a, isInt := l.AsInt(); isInt {
		b, isInt := r.AsInt()
		if !isInt {
			return object.Union{}, false, nil
		}
		return intBinop(op, a, b)
	}
	if a, isFloat := l.AsFloat(); isFloat {
		b, isFloat := r.AsFloat()
		if !isFloat {
			return object.Union{}, false, nil
		}
		return floatBinop(op, a, b)
	}
	return object.Union{}, false, nil
}

func intBinop(op string, a, b int32) (object.Union, bool, error) {
	switch op {
	case "+":
		return object.Int(a + b), true, nil
	case "-":
		return object.Int(a - b), true, nil
	case "*":
		return object.Int(a * b), true, nil
	case "/":
		if b == 0 {
			return object.Union{}, true, errDivisionByZero
		}
		return object.Int(a / b), true, nil
	case "%":
		if b == 0 {
			return object.Union{}, true, errDivisionByZero
		}
		return object.Int(a % b), true, nil
	case ">":
		return object.Bool(a > b), true, nil
	case "<":
		return object.Bool(a < b), true, nil
	case ">=":
		return object.Bool(a >= b), true, nil
	case "<=":
		return object.Bool(a <= b), true, nil
	case "==":
		return object.Bool(a == b), true, nil
	}
	return object.Union{}, false, nil
}

func floatBinop(op string, a, b float32) (object.Union, bool, error) {
	switch op {
	case "+":
		return object.Float(a + b), true, nil
	case "-":
		return object.Float(a - b), true, nil
	case "*":
		return object.Float(a * b), true, nil
	case "/":
		return object.Float(a / b), true, nil
	case "%":
		return object.Float(float32(math.Mod(float64(a), float64(b)))), true, nil
	case ">":
		return object.Bool(a > b), true, nil
	case "<":
		return object.Bool(a < b), true, nil
	case ">=":
		return object.Bool(a >= b), true, nil
	case "<=":
		return object.Bool(a <= b), true, nil
	case "==":
		return object.Bool(a == b), true, nil
	}
	return object.Union{}, false, nil
}
