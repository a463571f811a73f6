package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// console reads trimmed lines from standard input.
type console struct {
	scanner *bufio.Scanner
}

func newConsole() *console {
	return &console{scanner: bufio.NewScanner(os.Stdin)}
}

// prompt prints label (when non-empty) and returns the next input line,
// trimmed. A closed stdin exits the program.
func (c *console) prompt(label string) string {
	if label != "" {
		fmt.Println(label)
	}
	if !c.scanner.Scan() {
		fmt.Println("Input closed. Exiting.")
		os.Exit(0)
	}
	return strings.TrimSpace(c.scanner.Text())
}
