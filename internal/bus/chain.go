package bus

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/deforce/multichat/internal/message"
)

type registration struct {
	module   Module
	priority int
	index    int
}

// Chain is the fixed, priority-ordered sequence of modules applied to every
// event. Registration happens during the load phase, before the bus starts;
// the order never changes while dispatching is in flight.
type Chain struct {
	regs []registration
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Register appends a module and re-sorts the chain. Smaller priorities run
// first; equal priorities keep registration order.
func (c *Chain) Register(m Module, priority int) {
	c.regs = append(c.regs, registration{module: m, priority: priority, index: len(c.regs)})
	sort.SliceStable(c.regs, func(i, j int) bool {
		if c.regs[i].priority != c.regs[j].priority {
			return c.regs[i].priority < c.regs[j].priority
		}
		return c.regs[i].index < c.regs[j].index
	})
}

// Len reports the number of registered modules.
func (c *Chain) Len() int {
	return len(c.regs)
}

// Names returns the module names in processing order.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.regs))
	for _, reg := range c.regs {
		names = append(names, reg.module.Name())
	}
	return names
}

// ProcessAll runs the event through every module in order. The first error
// aborts the remaining chain; ErrDrop is passed through unchanged so callers
// can tell an intentional drop from a failure.
func (c *Chain) ProcessAll(ctx context.Context, ev message.Event) (message.Event, error) {
	for _, reg := range c.regs {
		out, err := reg.module.Process(ctx, ev)
		if err != nil {
			if errors.Is(err, ErrDrop) {
				return nil, ErrDrop
			}
			return nil, fmt.Errorf("module %s: %w", reg.module.Name(), err)
		}
		if out == nil {
			return nil, ErrDrop
		}
		ev = out
	}
	return ev, nil
}
