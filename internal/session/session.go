// Package session owns per-call state and drives generation cycles against
// the language model.
package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/drew-ai/voice-relay/internal/comms"
	"github.com/drew-ai/voice-relay/internal/model"
	"github.com/drew-ai/voice-relay/internal/prompt"
	"github.com/drew-ai/voice-relay/internal/tools"
	"github.com/drew-ai/voice-relay/pkg/logger"
)

// Backend is the slice of the communications client a session needs.
type Backend interface {
	FetchSnapshot(ctx context.Context, userID string) (*comms.Snapshot, error)
	PersistCallSummary(ctx context.Context, callID, userID, assistantID string) error
}

// Config carries per-session presentation settings.
type Config struct {
	AssistantName string
}

const snapshotFetchTimeout = 10 * time.Second

// Session is the state machine for one call connection. It is created on
// accept, populated by the call-details event, and destroyed on teardown.
// All mutable state is owned by the connection's task set.
type Session struct {
	cfg       Config
	engine    *Engine
	assembler *prompt.Assembler
	backend   Backend
	logger    *logger.Logger
	now       func() time.Time

	// latest is the most recently started response id. Generations check it
	// before every fragment emission.
	latest atomic.Int64

	mu           sync.Mutex
	callID       string
	metadata     map[string]string
	snapshot     *comms.Snapshot
	history      []model.Message
	firstContact bool
	cleaned      bool
}

// New creates a session for one connection.
func New(cfg Config, engine *Engine, assembler *prompt.Assembler, backend Backend, log *logger.Logger) *Session {
	if cfg.AssistantName == "" {
		cfg.AssistantName = "Drew"
	}
	return &Session{
		cfg:       cfg,
		engine:    engine,
		assembler: assembler,
		backend:   backend,
		logger:    log,
		now:       time.Now,
	}
}

// SetMetadata records the call id and dynamic variables from the one-time
// call-details event. The call id and metadata are set at most once. When a
// user identity is present the communications snapshot is refreshed in the
// background without delaying the caller.
func (s *Session) SetMetadata(details *model.CallDetails) {
	if details == nil {
		return
	}

	s.mu.Lock()
	if s.callID == "" && details.CallID != "" {
		s.callID = details.CallID
	}

	var userID string
	if s.metadata == nil && details.DynamicVariables != nil {
		s.metadata = details.DynamicVariables
		userID = details.DynamicVariables["user_id"]
	}
	s.mu.Unlock()

	if userID != "" {
		go s.refreshSnapshot(userID)
	}
}

// refreshSnapshot is fire-and-forget: failures are logged and the session
// keeps running with an empty snapshot.
func (s *Session) refreshSnapshot(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotFetchTimeout)
	defer cancel()

	snapshot, err := s.backend.FetchSnapshot(ctx, userID)
	if err != nil {
		s.logger.Warn("communications snapshot refresh failed",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.firstContact = !snapshot.HasAssistantHistory()
	s.mu.Unlock()
}

// DraftBeginMessage selects the opening greeting, appends it to the session
// history, and returns it as a complete frame under response id 0.
func (s *Session) DraftBeginMessage() model.ResponseFrame {
	s.mu.Lock()
	defer s.mu.Unlock()

	salutation := timeGreeting(s.now())

	var greeting string
	switch {
	case s.metadata == nil:
		greeting = pickVariant(genericGreetings(salutation, s.cfg.AssistantName))
	default:
		botName := s.metadata["bot_name"]
		if botName == "" {
			botName = s.cfg.AssistantName
		}
		userName := s.metadata["user_name"]

		switch {
		case isFirstInteraction(s.metadata["first_interaction"]):
			greeting = pickVariant(onboardingGreetings(salutation, userName, botName))
		case userName != "":
			greeting = pickVariant(contextualGreetings(salutation, userName))
		default:
			greeting = pickVariant(openingLines(botName))
		}
	}

	s.history = append(s.history, model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   greeting,
		CreatedAt: s.now(),
	})

	return model.NewResponseFrame(0, greeting, true, false)
}

func isFirstInteraction(flag string) bool {
	switch strings.ToLower(flag) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// IsCurrent reports whether the given response id is still allowed to emit.
func (s *Session) IsCurrent(responseID int) bool {
	return int64(responseID) >= s.latest.Load()
}

// HandleInteraction marks the request's response id as started and runs one
// generation cycle against it. Marking happens before prompt assembly so an
// older in-flight cycle observes the supersession as early as possible.
func (s *Session) HandleInteraction(ctx context.Context, req *model.InteractionRequest, emit Emitter) {
	for {
		current := s.latest.Load()
		if int64(req.ResponseID) <= current {
			break
		}
		if s.latest.CompareAndSwap(current, int64(req.ResponseID)) {
			break
		}
	}

	s.mu.Lock()
	input := prompt.Input{
		Metadata:        s.metadata,
		Snapshot:        s.snapshot,
		History:         append([]model.Message(nil), s.history...),
		Transcript:      req.Transcript,
		InteractionType: req.InteractionType,
	}
	identity := tools.Identity{
		UserID:      s.metadata["user_id"],
		AssistantID: s.metadata["drew_id"],
	}
	s.mu.Unlock()

	messages := s.assembler.Build(input)
	s.engine.Run(ctx, req.ResponseID, messages, identity, s.IsCurrent, emit)
}

// CallID returns the call id, empty until the call-details event arrives.
func (s *Session) CallID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callID
}

// Cleanup flushes the call summary to the communications backend and clears
// session state. It is idempotent and never propagates persistence faults.
func (s *Session) Cleanup(ctx context.Context) {
	s.mu.Lock()
	if s.cleaned {
		s.mu.Unlock()
		return
	}
	s.cleaned = true

	callID := s.callID
	var userID, assistantID string
	if s.metadata != nil {
		userID = s.metadata["user_id"]
		assistantID = s.metadata["drew_id"]
	}

	s.history = nil
	s.metadata = nil
	s.snapshot = nil
	s.mu.Unlock()

	if callID == "" || userID == "" {
		return
	}

	if err := s.backend.PersistCallSummary(ctx, callID, userID, assistantID); err != nil {
		s.logger.Warn("call summary persistence failed",
			zap.String("call_id", callID),
			zap.Error(err),
		)
	}
}
