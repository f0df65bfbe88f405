// Package coordinator drives a play-through from the title screen to a
// revealed illustration.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/pictoword/internal/imagegen"
	"github.com/verte-zerg/pictoword/internal/join"
	"github.com/verte-zerg/pictoword/internal/selection"
)

// State is the coordinator's screen-level state.
type State int

// Coordinator states.
const (
	StateTitle State = iota
	StateSelecting
	StateGenerating
	StateViewing
)

func (s State) String() string {
	switch s {
	case StateTitle:
		return "title"
	case StateSelecting:
		return "selecting"
	case StateGenerating:
		return "generating"
	case StateViewing:
		return "viewing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	partyPresentation = "presentation"
	partyGeneration   = "generation"
)

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrSelectionIncomplete is returned by StartGeneration before every slot is filled.
	ErrSelectionIncomplete = errors.New("selection incomplete")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("coordinator closed")
)

// Generator produces images for a prompt.
type Generator interface {
	Generate(ctx context.Context, keywords string, count int) (imagegen.Result, error)
}

// Presenter runs the waiting sequence shown during generation. Run blocks
// until the sequence finishes or ctx is done.
type Presenter interface {
	Run(ctx context.Context) error
}

// Display receives revealed results.
type Display interface {
	Show(res imagegen.Result)
	Clear()
}

// Displays fans results out to several displays in order.
type Displays []Display

// Show implements Display.
func (d Displays) Show(res imagegen.Result) {
	for _, disp := range d {
		disp.Show(res)
	}
}

// Clear implements Display.
func (d Displays) Clear() {
	for _, disp := range d {
		disp.Clear()
	}
}

// Transition describes one state change.
type Transition struct {
	From  State
	To    State
	Epoch join.Epoch
}

// Options wires a Coordinator.
type Options struct {
	Selection  *selection.Machine
	Generator  Generator
	Presenter  Presenter
	Display    Display
	ImageCount int
}

// Coordinator joins presentation and generation before revealing a result.
// State, the barrier round and the result are guarded by mu; completions
// arrive on worker goroutines. Every transition holds notifyMu until its
// listeners and display hand-off have run, so deliveries never interleave.
// Listeners and displays must not call back into the coordinator.
type Coordinator struct {
	sel        *selection.Machine
	gen        Generator
	presenter  Presenter
	display    Display
	imageCount int

	barrier *join.Barrier

	// notifyMu is taken before mu.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	state     State
	epoch     join.Epoch
	result    *imagegen.Result
	cancel    context.CancelFunc
	closed    bool
	listeners map[int]func(Transition)
	nextID    int

	wg sync.WaitGroup
}

// New builds a coordinator in StateTitle.
func New(opts Options) *Coordinator {
	sel := opts.Selection
	if sel == nil {
		sel = selection.New()
	}
	count := opts.ImageCount
	if count <= 0 {
		count = 1
	}
	return &Coordinator{
		sel:        sel,
		gen:        opts.Generator,
		presenter:  opts.Presenter,
		display:    opts.Display,
		imageCount: count,
		barrier:    join.New(),
		state:      StateTitle,
		listeners:  map[int]func(Transition){},
	}
}

// Selection returns the selection machine driven by this coordinator.
func (c *Coordinator) Selection() *selection.Machine {
	return c.sel
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Result returns the revealed result while viewing.
func (c *Coordinator) Result() (imagegen.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateViewing || c.result == nil {
		return imagegen.Result{}, false
	}
	return *c.result, true
}

// Subscribe registers fn for every transition and returns its unsubscribe func.
// fn runs on the goroutine that caused the transition, after the state changed.
func (c *Coordinator) Subscribe(fn func(Transition)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Start leaves the title screen.
func (c *Coordinator) Start() error {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateTitle {
		from := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, from)
	}
	c.sel.Reset()
	tr, listeners := c.transitionLocked(StateSelecting)
	c.mu.Unlock()
	c.notify(tr, listeners)
	return nil
}

// StartGeneration composes the prompt and runs presentation and generation
// concurrently. It does nothing but log a warning when the selection is incomplete.
func (c *Coordinator) StartGeneration(ctx context.Context) error {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateSelecting {
		from := c.state
		c.mu.Unlock()
		log.Warn().Str("state", from.String()).Msg("Ignoring generation request outside selection")
		return fmt.Errorf("%w: generate from %s", ErrInvalidTransition, from)
	}
	prompt, err := c.sel.ComposePrompt()
	if err != nil {
		c.mu.Unlock()
		log.Warn().Int("filled", c.sel.Filled()).Msg("Selection incomplete; not generating")
		return ErrSelectionIncomplete
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.result = nil
	epoch := c.barrier.Begin(partyPresentation, partyGeneration)
	c.epoch = epoch
	tr, listeners := c.transitionLocked(StateGenerating)
	c.wg.Add(2)
	c.mu.Unlock()

	c.notify(tr, listeners)
	log.Info().Str("prompt", prompt).Uint64("epoch", uint64(epoch)).Int("images", c.imageCount).Msg("Starting generation")

	go c.runPresentation(runCtx, epoch)
	go c.runGeneration(runCtx, epoch, prompt)
	return nil
}

// Retry drops any outstanding or revealed result and returns to selection.
// It waits for a reveal that is already being handed to the display.
func (c *Coordinator) Retry() error {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	switch c.state {
	case StateViewing, StateGenerating:
	case StateSelecting:
		c.sel.Reset()
		c.mu.Unlock()
		return nil
	default:
		from := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: retry from %s", ErrInvalidTransition, from)
	}
	c.barrier.Cancel()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.result = nil
	c.sel.Reset()
	tr, listeners := c.transitionLocked(StateSelecting)
	c.mu.Unlock()

	if c.display != nil {
		c.display.Clear()
	}
	c.notify(tr, listeners)
	return nil
}

// Close cancels outstanding work and waits for worker goroutines.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.barrier.Cancel()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Coordinator) runPresentation(ctx context.Context, epoch join.Epoch) {
	defer c.wg.Done()
	if c.presenter != nil {
		if err := c.presenter.Run(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("Presentation failed; treating as finished")
		}
	}
	c.arrive(epoch, partyPresentation, nil)
}

func (c *Coordinator) runGeneration(ctx context.Context, epoch join.Epoch, prompt string) {
	defer c.wg.Done()
	var res imagegen.Result
	if c.gen == nil {
		res = imagegen.Fallback(c.imageCount)
	} else {
		var err error
		res, err = c.gen.Generate(ctx, prompt, c.imageCount)
		if err != nil {
			log.Error().Err(err).Msg("Generation rejected; using placeholders")
			res = imagegen.Fallback(c.imageCount)
		}
	}
	c.arrive(epoch, partyGeneration, &res)
}

func (c *Coordinator) arrive(epoch join.Epoch, party string, res *imagegen.Result) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Lock()
	done, err := c.barrier.Arrive(epoch, party)
	if err != nil {
		c.mu.Unlock()
		log.Debug().Err(err).Str("party", party).Msg("Discarding completion")
		return
	}
	if res != nil {
		c.result = res
	}
	if !done {
		c.mu.Unlock()
		log.Debug().Str("party", party).Uint64("epoch", uint64(epoch)).Msg("Waiting for remaining task")
		return
	}
	result := *c.result
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	tr, listeners := c.transitionLocked(StateViewing)
	c.mu.Unlock()

	c.notify(tr, listeners)
	if c.display != nil && c.current(epoch, StateViewing) {
		c.display.Show(result)
	}
}

// current reports whether the coordinator is still in state for epoch.
func (c *Coordinator) current(epoch join.Epoch, state State) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch == epoch && c.state == state
}

// transitionLocked moves to next and snapshots listeners. Callers hold mu.
func (c *Coordinator) transitionLocked(next State) (Transition, []func(Transition)) {
	tr := Transition{From: c.state, To: next, Epoch: c.epoch}
	c.state = next
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	listeners := make([]func(Transition), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, c.listeners[id])
	}
	return tr, listeners
}

func (c *Coordinator) notify(tr Transition, listeners []func(Transition)) {
	log.Debug().Str("from", tr.From.String()).Str("to", tr.To.String()).Msg("State changed")
	for _, fn := range listeners {
		fn(tr)
	}
}
