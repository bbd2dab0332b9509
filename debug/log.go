/*
Copyright 2020 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package debug

import (
	"io/ioutil"
	"log"
	"os"
	"sync"
)

// if this directory is defined, the loggers will be instantiated
// (derived.log is automatically initialized)
const (
	traceLogDir = "DERIVED_TRACE_DIR"
)

var (
	lock         sync.Mutex
	cleanupFuncs = make([]LoggerCleanupFunc, 0)

	defaultLogger = NewDebugLogger("derived.log")
)

type LoggerCleanupFunc func()

func initNoopLogger() *log.Logger {
	return log.New(ioutil.Discard, "", log.Llongfile)
}

func registerCleanupFunc(cleanup func()) {
	lock.Lock()
	defer lock.Unlock()
	cleanupFuncs = append(cleanupFuncs, cleanup)
}

// Teardown flushes and closes every trace file opened this run.
func Teardown() {
	lock.Lock()
	fns := cleanupFuncs
	cleanupFuncs = nil
	lock.Unlock()
	for _, f := range fns {
		f()
	}
}

func NewDebugLogger(logfileName string) *log.Logger {
	lgr := initNoopLogger()
	if l := os.Getenv(traceLogDir); l != "" {
		f, err := os.OpenFile(l+"/"+logfileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
		if err == nil {
			lgr = log.New(f, "", log.LstdFlags)
			lgr.Printf("%v enabled\n", logfileName)
			registerCleanupFunc(func() {
				f.Close()
			})
		}
	}
	return lgr
}

// Tracef writes a trace line through the package default logger. It is a
// no-op unless DERIVED_TRACE_DIR is set, the same contract NewDebugLogger
// gives any other caller.
func Tracef(format string, args ...interface{}) {
	defaultLogger.Printf(format, args...)
}

// Traceln is the Println counterpart to Tracef.
func Traceln(args ...interface{}) {
	defaultLogger.Println(args...)
}
