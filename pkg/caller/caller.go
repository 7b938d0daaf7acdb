package caller

import (
	"runtime"
	"strings"
)

// Name returns the name of the function that called Name, or of a function
// further up the stack when skip is given:
//
//	func (r *reducer) run() {
//		caller.Name()  // "reducer.run"
//		caller.Name(1) // name of whoever called run
//	}
//
// Closures report the enclosing function.
func Name(skip ...int) string {
	depth := 1
	if len(skip) > 0 {
		depth += skip[0]
	}

	pc, _, _, ok := runtime.Caller(depth)
	if !ok {
		return ""
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}

	return shorten(fn.Name())
}

// shorten turns "github.com/x/pkg.(*reducer).run.func1" into "reducer.run".
func shorten(full string) string {
	// drop the import path, keep "pkg.(*reducer).run.func1"
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}

	parts := strings.Split(full, ".")[1:]
	for len(parts) > 1 && isClosure(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}

	for i, p := range parts {
		parts[i] = strings.Trim(p, "(*)")
	}

	return strings.Join(parts, ".")
}

func isClosure(part string) bool {
	if !strings.HasPrefix(part, "func") {
		return false
	}

	for _, r := range part[len("func"):] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
