package engine

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
)

var crashHandler atomic.Pointer[func(any)]

// SetCrashHandler installs the function run when a goroutine started by Go panics
// The front end uses it to restore the terminal before exiting
func SetCrashHandler(fn func(any)) {
	crashHandler.Store(&fn)
}

// HandleCrash runs the installed handler, without one the panic is re-raised with its stack
func HandleCrash(r any) {
	if r == nil {
		return
	}
	if fn := crashHandler.Load(); fn != nil && *fn != nil {
		(*fn)(r)
		return
	}
	panic(fmt.Sprintf("%v\n%s", r, debug.Stack()))
}

// Go runs fn on a new goroutine with panic recovery
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
