package assistant

import (
	"context"
	"strings"
	"sync"

	"go-crm-assistant/internal/features/activity"
	"go-crm-assistant/internal/metrics"

	"go.uber.org/zap"
)

// Fallback answers utterances the classifier could not place
type Fallback interface {
	Reply(ctx context.Context, utterance string) (string, error)
}

type Interpretation struct {
	Command  *Command `json:"command,omitempty"`
	Response Response `json:"response"`
}

type AssistantService interface {
	Interpret(ctx context.Context, sessionID, utterance string) Interpretation
	Parse(utterance string) *Command
	Intents() []IntentDefinition
	ExportSales(ctx context.Context, period string) ([]byte, string, error)
}

type AssistantServiceImpl struct {
	classifier *Classifier
	executor   *Executor
	activity   activity.ActivityService
	fallback   Fallback
	metrics    *metrics.Metrics
	logger     *zap.Logger
	sessions   *sessionLocks
}

func NewAssistantService(
	classifier *Classifier,
	executor *Executor,
	activityService activity.ActivityService,
	fallback Fallback,
	m *metrics.Metrics,
	logger *zap.Logger,
) AssistantService {
	return &AssistantServiceImpl{
		classifier: classifier,
		executor:   executor,
		activity:   activityService,
		fallback:   fallback,
		metrics:    m,
		logger:     logger,
		sessions:   newSessionLocks(),
	}
}

func (s *AssistantServiceImpl) Parse(utterance string) *Command {
	return s.classifier.Parse(utterance)
}

func (s *AssistantServiceImpl) Intents() []IntentDefinition {
	return s.classifier.Intents()
}

// Interpret handles one utterance. Utterances of the same session are
// processed one at a time, in arrival order of the lock.
func (s *AssistantServiceImpl) Interpret(ctx context.Context, sessionID, utterance string) Interpretation {
	unlock := s.sessions.lock(sessionID)
	defer unlock()

	cmd := s.classifier.Parse(utterance)
	if cmd == nil {
		s.metrics.Unparsed()
		return Interpretation{Response: s.unparsed(ctx, utterance)}
	}

	resp := s.executor.Execute(ctx, *cmd)
	s.metrics.CommandExecuted(string(cmd.Intent), resp.Success)
	s.logger.Info("Assistant command executed",
		zap.String("session", sessionID),
		zap.String("intent", string(cmd.Intent)),
		zap.Float64("confidence", cmd.Confidence),
		zap.Bool("success", resp.Success))

	if resp.Success {
		s.recordMutation(ctx, utterance, cmd)
	}
	if resp.retryable {
		resp.FollowUpSuggestions = append([]string{strings.TrimSpace(utterance)}, resp.FollowUpSuggestions...)
	}
	return Interpretation{Command: cmd, Response: resp}
}

func (s *AssistantServiceImpl) unparsed(ctx context.Context, utterance string) Response {
	if s.fallback != nil {
		reply, err := s.fallback.Reply(ctx, utterance)
		if err == nil && reply != "" {
			return Response{
				Success:             true,
				Message:             reply,
				FollowUpSuggestions: helpSuggestions,
			}
		}
		if err != nil {
			s.logger.Warn("Assistant fallback failed", zap.Error(err))
		}
	}
	return Response{
		Success:             false,
		Message:             "Sorry, I didn't understand that. Try one of the commands below, or type \"help\" for the full list.",
		FollowUpSuggestions: helpSuggestions,
	}
}

// mutatingIntents maps intents that change data to the entity type they touch
var mutatingIntents = map[Intent]string{
	IntentAddProduct:      "product",
	IntentUpdateInventory: "product",
	IntentCreateCustomer:  "customer",
	IntentCreateOrder:     "order",
	IntentCreateInvoice:   "invoice",
}

func (s *AssistantServiceImpl) recordMutation(ctx context.Context, utterance string, cmd *Command) {
	entityType, ok := mutatingIntents[cmd.Intent]
	if !ok || s.activity == nil {
		return
	}
	name := cmd.Entities.ProductName
	if name == "" {
		name = cmd.Entities.SearchTerm
	}
	s.activity.Record(ctx, "ai_command", entityType, name, map[string]any{
		"utterance":  utterance,
		"intent":     string(cmd.Intent),
		"confidence": cmd.Confidence,
	})
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// sessionLocks hands out one mutex per session id and forgets it once no
// caller holds or waits on it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

func (s *sessionLocks) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
