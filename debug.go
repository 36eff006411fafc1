package structreader

import (
	"github.com/davecgh/go-spew/spew"
	"www.velocidex.com/golang/vfilter"
)

// DebugEnabled reports whether the scope requests engine debugging.
func DebugEnabled(scope vfilter.Scope) bool {
	value, pres := scope.Resolve("DEBUG_STRUCTREADER")
	return pres && scope.Bool(value)
}

// ScopeDebug logs through the scope logger when debugging is enabled
// on the scope.
func ScopeDebug(scope vfilter.Scope, format string, args ...interface{}) {
	if !DebugEnabled(scope) {
		return
	}
	scope.Log(format, args...)
}

// Dump renders a parse result for debug logging. Records and dicts
// nest arbitrarily, so plain %v is not enough to see what was parsed.
func Dump(v interface{}) string {
	return spew.Sdump(v)
}
