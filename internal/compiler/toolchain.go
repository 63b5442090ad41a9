package compiler

import (
	"fmt"
	"runtime"
	"sort"
)

// Greeting is what every default template prints when run.
const Greeting = "Hello, world!"

// Toolchain is a compiler preset: how sources are named, how they are
// compiled and what a new command starts out as.
type Toolchain struct {
	Name      string
	SourceExt string // Without the leading dot
	BinaryExt string // Platform executable suffix
	Command   string // Compiler command line, see Invoker.Argv
	Template  []byte // Default source for a new command
}

var goTemplate = []byte(`package main

import "fmt"

func main() {
	fmt.Println("` + Greeting + `")
}
`)

var rustTemplate = []byte(`fn main() {
    println!("` + Greeting + `");
}
`)

var toolchains = map[string]Toolchain{
	"go": {
		Name:      "go",
		SourceExt: "go",
		Command:   `go build -o "$OUT" "$SRC"`,
		Template:  goTemplate,
	},
	"rust": {
		Name:      "rust",
		SourceExt: "rs",
		Command:   `rustc --out-dir "$OUTDIR" "$SRC"`,
		Template:  rustTemplate,
	},
}

// Lookup returns the named toolchain preset with the platform binary suffix
// filled in.
func Lookup(name string) (Toolchain, error) {
	tc, ok := toolchains[name]
	if !ok {
		return Toolchain{}, fmt.Errorf("unknown toolchain %q (valid: %v)", name, Names())
	}
	tc.BinaryExt = PlatformBinaryExt()
	return tc, nil
}

// Names returns the sorted preset names.
func Names() []string {
	names := make([]string, 0, len(toolchains))
	for name := range toolchains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlatformBinaryExt returns ".exe" on Windows and "" elsewhere.
func PlatformBinaryExt() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
