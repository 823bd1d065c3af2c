package portal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"n3portal/internal/service"
	"n3portal/internal/validate"
)

var (
	ErrTooManyAttempts = errors.New("too many invalid attempts")

	errInvalidChoice = errors.New("invalid choice")
)

type lineResult struct {
	line string
	err  error
}

// readLines feeds p.lines from the input until done is closed. A final line
// without a newline is still delivered; after that the read error repeats.
func (p *Portal) readLines(done <-chan struct{}) {
	send := func(r lineResult) bool {
		select {
		case p.lines <- r:
			return true
		case <-done:
			return false
		}
	}
	for {
		line, err := p.in.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && line != "" && !send(lineResult{line: line}) {
				return
			}
			for send(lineResult{err: err}) {
			}
			return
		}
		if !send(lineResult{line: line}) {
			return
		}
	}
}

// readLine prints label and waits for the next input line, without its line
// ending, or for ctx to end.
func (p *Portal) readLine(ctx context.Context, label string) (string, error) {
	fmt.Fprint(p.out, label)
	select {
	case r := <-p.lines:
		if r.err != nil {
			return "", r.err
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// retryable reports whether err is the user's fault and worth a re-prompt.
func retryable(err error) bool {
	return errors.Is(err, validate.ErrInvalidFormat) ||
		errors.Is(err, errInvalidChoice) ||
		errors.Is(err, service.ErrOrderNotFound)
}

// ask prompts until parse accepts the answer. Retryable errors are reported
// and re-prompted up to the portal's attempt limit; any other error is
// returned as is.
func ask[T any](ctx context.Context, p *Portal, label string, parse func(string) (T, error)) (T, error) {
	var zero T
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		line, err := p.readLine(ctx, label)
		if err != nil {
			return zero, err
		}

		v, err := parse(line)
		if err == nil {
			return v, nil
		}
		if !retryable(err) {
			return zero, err
		}
		p.invalid(err)
	}
	return zero, ErrTooManyAttempts
}

// choose reads a menu selection; the trimmed answer must be one of options.
func (p *Portal) choose(ctx context.Context, options ...string) (string, error) {
	return ask(ctx, p, "Your Selection: ", func(line string) (string, error) {
		s := strings.TrimSpace(line)
		for _, o := range options {
			if s == o {
				return s, nil
			}
		}
		return "", fmt.Errorf("%w: the number you have provided %q is not available, please select again", errInvalidChoice, s)
	})
}

func (p *Portal) confirm(ctx context.Context, label string) (bool, error) {
	return ask(ctx, p, label, validate.YesNo)
}

func (p *Portal) invalid(err error) {
	msg := err.Error()
	for _, prefix := range []error{validate.ErrInvalidFormat, errInvalidChoice} {
		msg = strings.TrimPrefix(msg, prefix.Error()+": ")
	}
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, p.styles.warn.Render(fmt.Sprintf("Invalid data: %s. Please check the entry and try again.", msg)))
	fmt.Fprintln(p.out)
}
