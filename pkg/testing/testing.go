package testing

import (
	"os"
	"path"
	"runtime"
)

func init() {
	// tests import this package for its side effect: the working directory becomes the
	// module root, so the logs/ directory and any sqlite file land in one place
	//
	//   import (
	//     _ "liyu1981.xyz/iot-datalogger/pkg/testing"
	//   )

	_, filename, _, _ := runtime.Caller(0)
	dir := path.Join(path.Dir(filename), "..", "..")
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
}
