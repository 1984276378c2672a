package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/logging"
	"github.com/hupe1980/fashionagent/session"
)

// Config defines tuning parameters for the Engine's operational behavior.
type Config struct {
	// MaxConcurrentTurns limits the number of turns executing at the same
	// time across all sessions. Zero means unlimited.
	MaxConcurrentTurns int
}

// DefaultConfig provides default configuration values.
var DefaultConfig = Config{
	MaxConcurrentTurns: 10,
}

// Runner executes one orchestrator turn. flow.Flow implements it.
type Runner interface {
	Run(ctx context.Context, st *core.ConversationState, input string) (*core.ConversationState, core.Message, error)
}

// Options configures an Engine instance using the functional options pattern.
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// SessionStore checkpoints conversation state between turns.
	// Defaults to an in-memory implementation if not provided.
	SessionStore core.SessionStore

	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Engine executes turns with bounded concurrency and per-session ordering.
type Engine struct {
	runner       Runner
	sessionStore core.SessionStore
	logger       logging.Logger
	config       Config

	sem chan struct{} // nil when unlimited

	locksMu sync.Mutex
	locks   map[string]*sessionLock

	turnsMu sync.Mutex
	turns   map[string]context.CancelFunc // active turn cancellation by session id
}

type sessionLock struct {
	ch   chan struct{}
	refs int
}

// New creates a new Engine driving runner.
func New(runner Runner, optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:       DefaultConfig,
		SessionStore: session.NewInMemoryStore(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	e := &Engine{
		runner:       runner,
		sessionStore: opts.SessionStore,
		logger:       opts.Logger,
		config:       opts.Config,
		locks:        make(map[string]*sessionLock),
		turns:        make(map[string]context.CancelFunc),
	}
	if opts.Config.MaxConcurrentTurns > 0 {
		e.sem = make(chan struct{}, opts.Config.MaxConcurrentTurns)
	}

	return e
}

// SessionStore returns the store used for checkpoints.
func (e *Engine) SessionStore() core.SessionStore { return e.sessionStore }

// Turn executes one user turn for sessionID and returns the final assistant
// message. It blocks while the concurrency bound is exhausted or another
// turn of the same session is running.
func (e *Engine) Turn(ctx context.Context, sessionID, input string) (core.Message, error) {
	if sessionID == "" {
		return core.Message{}, core.Errorf("engine.turn", core.KindInvalidInput, "session id must not be empty")
	}

	// Queued turns of a busy session must not hold global slots.
	unlock, err := e.lockSession(ctx, sessionID)
	if err != nil {
		return core.Message{}, err
	}
	defer unlock()

	if err := e.acquire(ctx); err != nil {
		return core.Message{}, err
	}
	defer e.release()

	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.turnsMu.Lock()
	e.turns[sessionID] = cancel
	e.turnsMu.Unlock()

	defer func() {
		e.turnsMu.Lock()
		delete(e.turns, sessionID)
		e.turnsMu.Unlock()
	}()

	start := time.Now()
	log := logging.ForSession(e.logger, sessionID)

	st, err := e.sessionStore.Load(turnCtx, sessionID)
	if err != nil {
		return core.Message{}, fmt.Errorf("failed to load session: %w", err)
	}

	next, final, err := e.runner.Run(turnCtx, st, input)
	if err != nil {
		log.Error("engine.turn.failed", "error", err)
		return core.Message{}, fmt.Errorf("turn failed: %w", err)
	}

	if err := e.sessionStore.Save(turnCtx, next); err != nil {
		return core.Message{}, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info("engine.turn.complete", "messages", next.Conversation.Len(), "duration_ms", time.Since(start).Milliseconds())

	return final, nil
}

// History returns the messages of a session.
func (e *Engine) History(ctx context.Context, sessionID string) ([]core.Message, error) {
	st, err := e.sessionStore.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return st.Conversation.Messages(), nil
}

// CancelTurn cancels the active turn of sessionID.
func (e *Engine) CancelTurn(sessionID string) error {
	e.turnsMu.Lock()
	cancel, exists := e.turns[sessionID]
	e.turnsMu.Unlock()

	if !exists {
		return fmt.Errorf("no active turn for session %s", sessionID)
	}

	cancel()
	return nil
}

// ActiveTurns returns the number of turns currently executing.
func (e *Engine) ActiveTurns() int {
	e.turnsMu.Lock()
	defer e.turnsMu.Unlock()
	return len(e.turns)
}

func (e *Engine) acquire(ctx context.Context) error {
	if e.sem == nil {
		return nil
	}
	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) release() {
	if e.sem != nil {
		<-e.sem
	}
}

// lockSession serialises turns of one session. Lock entries are reference
// counted and dropped once no turn holds or waits for them.
func (e *Engine) lockSession(ctx context.Context, sessionID string) (func(), error) {
	e.locksMu.Lock()
	l, ok := e.locks[sessionID]
	if !ok {
		l = &sessionLock{ch: make(chan struct{}, 1)}
		e.locks[sessionID] = l
	}
	l.refs++
	e.locksMu.Unlock()

	drop := func() {
		e.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(e.locks, sessionID)
		}
		e.locksMu.Unlock()
	}

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		drop()
		return nil, ctx.Err()
	}

	return func() {
		<-l.ch
		drop()
	}, nil
}
