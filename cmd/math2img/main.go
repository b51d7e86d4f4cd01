// Command math2img renders the equations of a LaTeX or Markdown document
// to one PNG per equation.
//
// Usage:
//
//	math2img paper.tex -o out/
//	math2img notes.md --theme light --scale 2
//	cat notes.md | math2img - --format markdown
//	math2img serve --addr :8080
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "math2img: %v\n", err)
		os.Exit(1)
	}
}
