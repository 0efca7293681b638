package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrAborted is returned when the user enters 0 at the page prompt.
var ErrAborted = errors.New("aborted by user")

// Prompter asks the user questions on an interactive terminal.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// IntInRange asks question until the answer is an integer within
// [min, max]. It fails only when input runs out.
func (p *Prompter) IntInRange(question string, min, max int) (int, error) {
	for {
		fmt.Fprintf(p.out, "%s ", question)
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return 0, fmt.Errorf("prompt: read input: %w", err)
			}
			return 0, fmt.Errorf("prompt: %w", io.ErrUnexpectedEOF)
		}

		n, err := strconv.Atoi(strings.TrimSpace(p.in.Text()))
		if err != nil {
			fmt.Fprintln(p.out, "Invalid input. Please enter a whole number.")
			continue
		}
		if n < min || n > max {
			fmt.Fprintf(p.out, "Please enter a number between %d and %d.\n", min, max)
			continue
		}
		return n, nil
	}
}

// MaxPages asks for the number of listing pages to walk. 0 yields ErrAborted.
func (p *Prompter) MaxPages(limit int) (int, error) {
	n, err := p.IntInRange(fmt.Sprintf("Max pages to scrape (max %d, 0 to quit):", limit), 0, limit)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrAborted
	}
	return n, nil
}

// Choose asks the user to pick one of options by number and returns its index.
func (p *Prompter) Choose(question string, options []string) (int, error) {
	fmt.Fprintln(p.out, question)
	for i, o := range options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}
	n, err := p.IntInRange("Choice:", 1, len(options))
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}
