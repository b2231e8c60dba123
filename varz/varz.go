/*
Package varz creates expvar variables named for the package that declares
them, so "round.batchesApplied" rather than a bare "batchesApplied".
Importing it registers expvar, which the webapp serves to admins at
/debug/vars.
*/
package varz

import (
	"expvar"
	"runtime"
	"strconv"
	"strings"
)

// callerPackage returns the last path element of the package that called
// the varz constructor.  If the variable is declared in a var block, the
// caller is the package's init and that bit is dropped too.
func callerPackage() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown"
	}
	return packageOf(fn.Name())
}

// packageOf takes "github.com/ts4z/shortlist/round.init" to "round".
func packageOf(funcName string) string {
	n := funcName
	if slash := strings.LastIndex(n, "/"); slash != -1 {
		n = n[slash+1:]
	}
	if dot := strings.Index(n, "."); dot != -1 {
		n = n[:dot]
	}
	return n
}

func NewInt(name string) *expvar.Int {
	return expvar.NewInt(callerPackage() + "." + name)
}

func NewMap(name string) *expvar.Map {
	return expvar.NewMap(callerPackage() + "." + name)
}

// AddCode counts an HTTP status in m.
func AddCode(m *expvar.Map, code int) {
	m.Add(strconv.Itoa(code), 1)
}
