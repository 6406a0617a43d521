// Package chat is the public action surface of the client: it turns
// user operations into gateway turns and folds everything a turn
// produces into state actions.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/calder-dev/tidechat/internal/attach"
	"github.com/calder-dev/tidechat/internal/auth"
	"github.com/calder-dev/tidechat/internal/eventbus"
	"github.com/calder-dev/tidechat/internal/log"
	"github.com/calder-dev/tidechat/internal/models"
	"github.com/calder-dev/tidechat/internal/sse"
	"github.com/calder-dev/tidechat/internal/state"
	"github.com/calder-dev/tidechat/internal/stream"
)

// sendRequest is the gateway request body for both turn flavors.
type sendRequest struct {
	Message            string           `json:"message"`
	ConversationID     string           `json:"conversationId,omitempty"`
	ImageDataURIs      []string         `json:"imageDataUris,omitempty"`
	FileDataURIs       []string         `json:"fileDataUris,omitempty"`
	PreviousResponseID string           `json:"previousResponseId,omitempty"`
	MCPApproval        *approvalPayload `json:"mcpApproval,omitempty"`
}

type approvalPayload struct {
	ApprovalRequestID string `json:"approvalRequestId"`
	Approved          bool   `json:"approved"`
}

// turn is the currently streaming exchange, if any.
type turn struct {
	orch   *stream.Orchestrator
	cancel context.CancelFunc
}

// Service drives turns against the gateway. At most one stream-consuming
// loop is active per Service; starting a new turn cancels the old one
// first, so the UI never observes two streaming assistant messages.
type Service struct {
	client   *http.Client
	endpoint string
	store    *state.Store
	tokens   auth.TokenSource
	convert  attach.ConvertFunc
	bus      *eventbus.Bus
	logger   log.Logger
	limiter  *rate.Limiter
	retry    RetryConfig

	ctx        context.Context
	cancelLoop context.CancelFunc
	loopDone   chan struct{}

	mu     sync.Mutex
	active *turn
}

// NewService creates a service for the given gateway base URL.
func NewService(gatewayURL string, store *state.Store, tokens auth.TokenSource, bus *eventbus.Bus, logger log.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		client:     &http.Client{},
		endpoint:   strings.TrimRight(gatewayURL, "/") + "/api/chat/stream",
		store:      store,
		tokens:     tokens,
		convert:    attach.Convert,
		bus:        bus,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 3),
		retry:      DefaultRetryConfig(),
		ctx:        ctx,
		cancelLoop: cancel,
	}
}

// Start resolves the initial auth state and begins consuming UI events.
func (s *Service) Start() {
	s.resolveAuth()
	s.loopDone = make(chan struct{})
	go s.eventLoop()
}

// Stop cancels any active stream and shuts the event loop down. It does
// not return until the loop has exited, so callers may tear down the
// bus afterwards without racing a late dispatch.
func (s *Service) Stop() {
	s.CancelStream()
	s.cancelLoop()
	if s.loopDone != nil {
		<-s.loopDone
	}
}

func (s *Service) resolveAuth() {
	token, err := s.tokens.Token(s.ctx)
	if err != nil {
		s.logger.Warn("auth unavailable", "error", err)
		s.store.Dispatch(state.AuthFailed{Reason: err.Error()})
		return
	}
	s.store.Dispatch(state.AuthResolved{User: auth.Identity(token)})
}

func (s *Service) eventLoop() {
	defer close(s.loopDone)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.bus.UIToCore():
			if !ok {
				return
			}
			// select has no case priority: an event queued before Stop
			// may win the race against ctx.Done.
			if s.ctx.Err() != nil {
				return
			}
			s.handleUIEvent(event)
		}
	}
}

func (s *Service) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SendMessageEvent:
		snap := s.store.State()
		s.SendMessage(s.ctx, e.Text, snap.Chat.ConversationID, e.Files, snap.Chat.LastResponseID)
	case eventbus.ApprovalResponseEvent:
		snap := s.store.State()
		s.SendApproval(s.ctx, e.RequestID, e.Approved, snap.Chat.ConversationID, snap.Chat.LastResponseID)
	case eventbus.ClearChatEvent:
		s.ClearChat()
	case eventbus.ClearErrorEvent:
		s.ClearError()
	}
}

// SendMessage starts a new turn for text with optional attachments. Any
// active stream is cancelled first. The call blocks until the stream
// ends, is cancelled, or fails; every effect reaches the UI through
// dispatched state actions.
func (s *Service) SendMessage(ctx context.Context, text, conversationID string, files []attach.File, previousResponseID string) {
	s.CancelStream()

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.fail(err, func() {
			s.SendMessage(s.ctx, text, conversationID, files, previousResponseID)
		})
		return
	}

	// Attachment conversion happens before any state change so a
	// rejected file aborts the turn cleanly.
	payload := &attach.Payload{}
	if len(files) > 0 {
		payload, err = s.convert(files)
		if err != nil {
			s.logger.Warn("attachment conversion failed", "error", err)
			s.store.Dispatch(state.ChatFailed{Err: validationError(err)})
			return
		}
	}

	now := time.Now()
	userMsg := models.Message{
		ID:          uuid.NewString(),
		Role:        models.RoleUser,
		Content:     text,
		CreatedAt:   now,
		Attachments: append(append([]models.Attachment{}, payload.Images...), payload.Documents...),
	}
	assistant := models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		CreatedAt: now,
	}

	s.store.Dispatch(state.MessageSent{Message: userMsg})
	s.store.Dispatch(state.AssistantAdded{Message: assistant})
	s.store.Dispatch(state.StreamingStarted{MessageID: assistant.ID})

	body := sendRequest{
		Message:            text,
		ConversationID:     conversationID,
		ImageDataURIs:      dataURIs(payload.Images),
		FileDataURIs:       dataURIs(payload.Documents),
		PreviousResponseID: previousResponseID,
	}

	s.runTurn(ctx, token, body, assistant.ID, func() {
		s.SendMessage(s.ctx, text, conversationID, files, previousResponseID)
	})
}

// SendApproval resolves a pending tool-approval request. It is a turn
// like any other: same intents, same retry policy, but the body carries
// the decision instead of new text.
func (s *Service) SendApproval(ctx context.Context, requestID string, approved bool, conversationID, previousResponseID string) {
	s.CancelStream()

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.fail(err, func() {
			s.SendApproval(s.ctx, requestID, approved, conversationID, previousResponseID)
		})
		return
	}

	text := "Approved"
	if !approved {
		text = "Rejected"
	}

	now := time.Now()
	userMsg := models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleUser,
		Content:   text,
		CreatedAt: now,
	}
	assistant := models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		CreatedAt: now,
	}

	s.store.Dispatch(state.MessageSent{Message: userMsg})
	s.store.Dispatch(state.AssistantAdded{Message: assistant})
	s.store.Dispatch(state.StreamingStarted{MessageID: assistant.ID})

	body := sendRequest{
		Message:            text,
		ConversationID:     conversationID,
		PreviousResponseID: previousResponseID,
		MCPApproval:        &approvalPayload{ApprovalRequestID: requestID, Approved: approved},
	}

	s.runTurn(ctx, token, body, assistant.ID, func() {
		s.SendApproval(s.ctx, requestID, approved, conversationID, previousResponseID)
	})
}

// CancelStream stops the active stream, if any. The cancel action is
// dispatched before returning so a follow-up turn starts from a settled
// state. Safe to call from the UI goroutine while a turn is blocked in
// a network read.
func (s *Service) CancelStream() {
	s.mu.Lock()
	t := s.active
	s.active = nil
	s.mu.Unlock()

	if t == nil {
		return
	}

	s.logger.Debug("cancelling active stream")
	t.orch.Cancel()
	s.store.Dispatch(state.StreamCancelled{})
}

// ClearChat resets the conversation. An in-flight stream is left alone;
// its late events land on unknown message ids and fall through the
// reducer's no-op guard.
func (s *Service) ClearChat() {
	s.store.Dispatch(state.ChatCleared{})
}

// ClearError drops the recorded chat error.
func (s *Service) ClearError() {
	s.store.Dispatch(state.ErrorCleared{})
}

// runTurn issues the initiating request and drives the orchestrator
// over the resulting body.
func (s *Service) runTurn(ctx context.Context, token string, body sendRequest, streamMsgID string, retryFn func()) {
	tctx, cancel := context.WithCancel(ctx)
	orch := stream.New(cancel, s.logger)

	s.mu.Lock()
	s.active = &turn{orch: orch, cancel: cancel}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.active != nil && s.active.orch == orch {
			s.active = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	resp, err := s.openStream(tctx, token, body)
	if err != nil {
		if orch.Cancelled() {
			return
		}
		s.fail(err, retryFn)
		return
	}

	err = orch.Run(resp.Body, func(ev sse.Event) {
		s.dispatchEvent(streamMsgID, ev)
	})
	if err != nil {
		if orch.Cancelled() {
			return
		}
		s.fail(err, retryFn)
	}
}

// dispatchEvent maps one accepted stream event onto a state action.
func (s *Service) dispatchEvent(streamMsgID string, ev sse.Event) {
	switch e := ev.(type) {
	case sse.ConversationEvent:
		s.store.Dispatch(state.ConversationStarted{ConversationID: e.ConversationID})
	case sse.ChunkEvent:
		s.store.Dispatch(state.StreamChunk{MessageID: streamMsgID, Content: e.Content})
	case sse.AnnotationsEvent:
		s.store.Dispatch(state.StreamAnnotations{MessageID: streamMsgID, Annotations: e.Annotations})
	case sse.ApprovalEvent:
		req := e.Request
		s.store.Dispatch(state.ApprovalRequired{Message: models.Message{
			ID:        uuid.NewString(),
			Role:      models.RoleApproval,
			CreatedAt: time.Now(),
			Approval:  &req,
		}})
	case sse.UsageEvent:
		s.store.Dispatch(state.StreamCompleted{
			MessageID:  streamMsgID,
			Usage:      e.Usage,
			ResponseID: e.ResponseID,
		})
	}
}

// openStream performs the initiating request with bounded retries.
// Retries cover transport failures and 5xx responses only; a non-2xx
// response is converted to a typed error before the retry decision.
func (s *Service) openStream(ctx context.Context, token string, payload sendRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var lastErr error
	delay := s.retry.InitialInterval

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "text/event-stream")
		req.Header.Set("Authorization", "Bearer "+token)

		resp, doErr := s.client.Do(req)
		if doErr == nil {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
			doErr = newStatusError(resp)
		}

		lastErr = doErr
		if !retryable(doErr) || attempt == s.retry.MaxAttempts {
			break
		}

		s.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "error", doErr)
		delay, err = backoff(ctx, s.retry, delay)
		if err != nil {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// fail surfaces a turn failure. Expired credentials additionally flip
// the global auth status so the outer UI can re-authenticate.
func (s *Service) fail(err error, retryFn func()) {
	s.logger.Error("turn failed", "error", err)
	if authExpired(err) {
		s.store.Dispatch(state.AuthExpired{})
	}
	s.store.Dispatch(state.ChatFailed{Err: classify(err, retryFn)})
}

func dataURIs(atts []models.Attachment) []string {
	if len(atts) == 0 {
		return nil
	}
	uris := make([]string, len(atts))
	for i, a := range atts {
		uris[i] = a.DataURI
	}
	return uris
}
