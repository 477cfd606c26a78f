package value

import "github.com/mqlang/mq/pkg/ast"

// Env is the minimal closure-capture surface a Function needs. pkg/eval's
// Environment satisfies it; keeping the interface here (rather than
// importing pkg/eval) avoids a value<->eval import cycle, since eval must
// import value for its runtime representation.
type Env interface {
	// Child returns a new child scope of the receiver.
	Child() Env
}

// Function is a user-defined closure: a def or fn literal paired with the
// environment it closed over at definition time.
type Function struct {
	Name    string // empty for anonymous fn literals
	Params  []ast.Param
	Body    []*ast.Node
	Closure Env
	IsMacro bool
}

func (*Function) Kind() Kind { return KindFunction }

func (f *Function) String() string {
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	return "<function " + name + "/" + itoa(len(f.Params)) + ">"
}

// NativeFunction is a built-in implemented in Go. Args are already
// evaluated; Call returns the result or an error value described via the
// error-taxonomy types in pkg/eval.
type NativeFunction struct {
	Name string
	Arity int // -1 for variadic
	Fn    func(args []Value) (Value, error)
}

func (*NativeFunction) Kind() Kind { return KindNativeFunction }

func (n *NativeFunction) String() string {
	return "<native_function " + n.Name + ">"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
