// Package testing moves the working directory of a test binary to the module root, so
// relative paths (logs/, .env, sqlite files) resolve the same way they do for cmd/server.
//
// Blank import it from a _test.go file:
//
//	import _ "liyu1981.xyz/sensor-api-service/pkg/testing"
package testing

import (
	"os"
	"path"
	"runtime"
)

func init() {
	_, filename, _, _ := runtime.Caller(0)
	root := path.Join(path.Dir(filename), "..", "..")
	if err := os.Chdir(root); err != nil {
		panic(err)
	}
}
