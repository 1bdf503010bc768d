// Package command parses and dispatches marketplace command lines. A line
// holds a verb and shell-style positional arguments; the dispatcher maps
// the verb to a market operation and is the single place where errors
// raised anywhere below are turned into reported, per-line failures.
package command

import (
	"context"
	"fmt"
	"io"
	"strings"

	"giftcard-market/internal/domain"
	"giftcard-market/internal/market"

	shellwords "github.com/mattn/go-shellwords"
)

// handler binds one verb to a market operation with explicit arity.
type handler struct {
	minArgs int
	maxArgs int
	run     func(ctx context.Context, args []string) error
}

// Dispatcher executes command lines against a market. It keeps no state
// between lines beyond the record store itself.
type Dispatcher struct {
	handlers     map[string]handler
	errOut       io.Writer
	abortOnError bool
}

// New creates a dispatcher over the given market. Errors are reported to
// errOut, one line each. With abortOnError set, the first error is
// reported with an "ABORTING - " prefix and returned to the caller so the
// run can terminate with a non-zero status.
func New(m *market.Market, errOut io.Writer, abortOnError bool) *Dispatcher {
	return &Dispatcher{
		errOut:       errOut,
		abortOnError: abortOnError,
		handlers: map[string]handler{
			"add_account": {minArgs: 1, maxArgs: 2, run: func(ctx context.Context, args []string) error {
				// An omitted rate means the default; a given rate is
				// validated as-is, so `add_account Bob ""` still fails.
				var rate *string
				if len(args) == 2 {
					rate = &args[1]
				}
				_, err := m.AddAccount(ctx, args[0], rate)
				return err
			}},
			"list_product": {minArgs: 5, maxArgs: 5, run: func(ctx context.Context, args []string) error {
				_, err := m.ListProduct(ctx, args[0], args[1], args[2], args[3], args[4])
				return err
			}},
			"buy_product": {minArgs: 3, maxArgs: 3, run: func(ctx context.Context, args []string) error {
				_, err := m.BuyProduct(ctx, args[0], args[1], args[2])
				return err
			}},
		},
	}
}

// Process executes one line. source and lineNumber only feed error
// reporting. The returned error is non-nil only in abort mode, after the
// aborting message has been written.
func (d *Dispatcher) Process(ctx context.Context, line, source string, lineNumber int) error {
	err := d.Execute(ctx, line)
	if err == nil {
		return nil
	}

	message := fmt.Sprintf("%s:%d - %s", source, lineNumber, err)
	if d.abortOnError {
		fmt.Fprintln(d.errOut, "ABORTING - "+message)
		return err
	}
	fmt.Fprintln(d.errOut, message)
	return nil
}

// Execute parses and dispatches one line, returning the typed error from
// parsing, arity checking, or the market operation. Blank lines are a
// no-op.
func (d *Dispatcher) Execute(ctx context.Context, line string) error {
	args, err := shellwords.Parse(strings.TrimSpace(line))
	if err != nil {
		return fmt.Errorf("invalid command line: %w", err)
	}
	if len(args) == 0 {
		return nil
	}

	verb, rest := args[0], args[1:]
	h, ok := d.handlers[verb]
	if !ok {
		return &domain.UnknownCommandError{Verb: verb}
	}
	if len(rest) < h.minArgs || len(rest) > h.maxArgs {
		return &domain.ArityError{Verb: verb, Given: len(rest), Min: h.minArgs, Max: h.maxArgs}
	}
	return h.run(ctx, rest)
}
