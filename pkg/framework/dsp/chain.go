// Package dsp builds the block processing chain applied to the summed voice
// bus before it is copied to the stereo outputs.
package dsp

import (
	"errors"
	"fmt"
)

// ErrEmptyChain is returned by Build when no stage was added
var ErrEmptyChain = errors.New("chain is empty")

// Processor processes a mono block in place
type Processor interface {
	Process(buffer []float32)
	Reset()
}

// ProcessorFunc allows using a stateless function as a Processor
type ProcessorFunc func([]float32)

func (f ProcessorFunc) Process(buffer []float32) {
	f(buffer)
}

func (f ProcessorFunc) Reset() {}

type stage struct {
	name string
	proc Processor
}

// Chain runs its stages in order on one buffer
type Chain struct {
	name   string
	stages []stage
	bypass bool
}

// NewChain creates an empty chain
func NewChain(name string) *Chain {
	return &Chain{name: name}
}

// Add appends a stage
func (c *Chain) Add(name string, p Processor) *Chain {
	c.stages = append(c.stages, stage{name: name, proc: p})
	return c
}

// AddFunc appends a stateless stage
func (c *Chain) AddFunc(name string, process func([]float32)) *Chain {
	return c.Add(name, ProcessorFunc(process))
}

// Process runs every stage on buffer unless the chain is bypassed
func (c *Chain) Process(buffer []float32) {
	if c.bypass {
		return
	}
	for _, s := range c.stages {
		s.proc.Process(buffer)
	}
}

// Reset resets every stage
func (c *Chain) Reset() {
	for _, s := range c.stages {
		s.proc.Reset()
	}
}

// SetBypass turns the whole chain off without removing stages
func (c *Chain) SetBypass(bypass bool) {
	c.bypass = bypass
}

// Bypassed reports the bypass state
func (c *Chain) Bypassed() bool {
	return c.bypass
}

// Name returns the chain name
func (c *Chain) Name() string {
	return c.name
}

// Len returns the number of stages
func (c *Chain) Len() int {
	return len(c.stages)
}

// Stages returns the stage names in processing order
func (c *Chain) Stages() []string {
	names := make([]string, len(c.stages))
	for i, s := range c.stages {
		names[i] = s.name
	}
	return names
}

// Builder collects stages and reports every construction error at once
type Builder struct {
	chain *Chain
	errs  []error
}

// NewBuilder creates a builder for a chain called name
func NewBuilder(name string) *Builder {
	return &Builder{chain: NewChain(name)}
}

// WithProcessor appends p
func (b *Builder) WithProcessor(name string, p Processor) *Builder {
	if p == nil {
		b.errs = append(b.errs, fmt.Errorf("stage %q: nil processor", name))
		return b
	}
	b.chain.Add(name, p)
	return b
}

// WithFunc appends a stateless stage
func (b *Builder) WithFunc(name string, process func([]float32)) *Builder {
	if process == nil {
		b.errs = append(b.errs, fmt.Errorf("stage %q: nil function", name))
		return b
	}
	b.chain.AddFunc(name, process)
	return b
}

// WithError records an error from building a stage elsewhere
func (b *Builder) WithError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

// Build returns the chain, or the joined errors
func (b *Builder) Build() (*Chain, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("chain %q: %w", b.chain.name, errors.Join(b.errs...))
	}
	if b.chain.Len() == 0 {
		return nil, fmt.Errorf("chain %q: %w", b.chain.name, ErrEmptyChain)
	}
	return b.chain, nil
}
