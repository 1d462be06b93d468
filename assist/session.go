package assist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Commenter answers questions about a dashboard.
type Commenter interface {
	Comment(ctx context.Context, question string) (string, error)
}

// Printer prints an answer, typically rendering its markdown.
type Printer func(w io.Writer, answer string) error

// Session is an interactive question and answer loop.
type Session struct {
	w     io.Writer
	r     *bufio.Reader
	c     Commenter
	print Printer
}

const prompt = "assist> "

// NewSession creates a session reading questions from r and writing
// answers to w. A nil print writes answers as they are.
func NewSession(w io.Writer, r io.Reader, c Commenter, print Printer) *Session {
	if print == nil {
		print = func(w io.Writer, answer string) error {
			_, err := fmt.Fprintln(w, answer)
			return err
		}
	}
	return &Session{w: w, r: bufio.NewReader(r), c: c, print: print}
}

// Run answers prompts first, then questions read from the input until "bye"
// or the end of the input.
func (s *Session) Run(ctx context.Context, prompts ...string) error {
	fmt.Fprintln(s.w, "Ask anything about this dashboard. Type 'bye' to exit.")
	for {
		fmt.Fprint(s.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(s.w, input)
		} else {
			line, err := s.r.ReadString('\n')
			if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
				fmt.Fprintln(s.w)
				return nil
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			input = strings.TrimSpace(line)
		}

		switch input {
		case "":
			continue
		case "bye":
			return nil
		}

		answer, err := s.c.Comment(ctx, input)
		if err != nil {
			return err
		}
		if err := s.print(s.w, answer); err != nil {
			return err
		}
	}
}
