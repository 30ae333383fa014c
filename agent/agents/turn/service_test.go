package turn

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/wearly/concierge/agent/contract"
	replyx "github.com/wearly/concierge/agent/reply"
	routerx "github.com/wearly/concierge/agent/router"
	sessionx "github.com/wearly/concierge/agent/session"
	taskx "github.com/wearly/concierge/agent/task"
	cartx "github.com/wearly/concierge/commerce/cart"
	catalogx "github.com/wearly/concierge/commerce/catalog"
	loyaltyx "github.com/wearly/concierge/commerce/loyalty"
	orderx "github.com/wearly/concierge/commerce/order"
	recommendx "github.com/wearly/concierge/commerce/recommend"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Complete(ctx context.Context, messages []contractx.ChatMessage) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeStore struct {
	inner   *sessionx.MemoryStore
	getErr  error
	saveErr error
	saves   int
}

func (f *fakeStore) Get(ctx context.Context, sessionID string) (*sessionx.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.inner.Get(ctx, sessionID)
}

func (f *fakeStore) Save(ctx context.Context, s *sessionx.Session) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	return f.inner.Save(ctx, s)
}

func (f *fakeStore) AppendMessage(ctx context.Context, sessionID string, role contractx.Role, content string) error {
	return f.inner.AppendMessage(ctx, sessionID, role, content)
}

func (f *fakeStore) GetMessages(ctx context.Context, sessionID string) ([]contractx.ChatMessage, error) {
	return f.inner.GetMessages(ctx, sessionID)
}

func newTestOrchestrator(t *testing.T, store sessionx.Store, routerLLM, replyLLM contractx.LLMClient) *Orchestrator {
	t.Helper()

	repo := catalogx.NewMemoryRepository(catalogx.DefaultCatalog())
	carts := cartx.NewService(repo)
	proc, err := taskx.NewProcessor(recommendx.NewService(repo), carts, orderx.NewService(), loyaltyx.NewService(nil))
	if err != nil {
		t.Fatalf("NewProcessor() error = %v", err)
	}

	o, err := New(store, routerx.New(routerLLM), proc, replyx.NewComposer(replyLLM), Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestHandleTurnInvalidInput(t *testing.T) {
	t.Parallel()

	store := &fakeStore{inner: sessionx.NewMemoryStore()}
	o := newTestOrchestrator(t, store, &fakeLLM{}, &fakeLLM{})

	_, err := o.HandleTurn(context.Background(), contractx.TurnRequest{
		SessionID: "   ", CustomerID: "c1", Message: "hello",
	})
	if !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}

	_, err = o.HandleTurn(context.Background(), contractx.TurnRequest{
		SessionID: "s1", CustomerID: "c1", Message: "   ",
	})
	if !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}

	_, err = o.HandleTurn(context.Background(), contractx.TurnRequest{
		SessionID: "s1", Message: "hello",
	})
	if !errors.Is(err, ErrInvalidCustomer) {
		t.Fatalf("expected ErrInvalidCustomer, got %v", err)
	}
}

func TestHandleTurnEndToEnd(t *testing.T) {
	t.Parallel()

	store := &fakeStore{inner: sessionx.NewMemoryStore()}
	routerLLM := &fakeLLM{response: `{"intent":"browse","tasks":[{"type":"RECOMMEND_PRODUCTS"}],"confidence":0.9}`}
	replyLLM := &fakeLLM{response: "Here are a few dresses you might like."}

	o := newTestOrchestrator(t, store, routerLLM, replyLLM)

	result, err := o.HandleTurn(context.Background(), contractx.TurnRequest{
		SessionID:  "s1",
		CustomerID: "c1",
		Channel:    "chat",
		Message:    "show me black dresses under 3000",
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if result.Reply != "Here are a few dresses you might like." {
		t.Fatalf("unexpected reply: %q", result.Reply)
	}
	if result.Intent != "browse" {
		t.Fatalf("unexpected intent: %q", result.Intent)
	}
	if result.PersistFailed {
		t.Fatalf("persist must succeed")
	}
	recs, ok := result.Results["recommendations"].([]contractx.Recommendation)
	if !ok || len(recs) == 0 {
		t.Fatalf("expected recommendations in results, got %v", result.Results)
	}
	for _, r := range recs {
		if r.Price > 3000 {
			t.Fatalf("heuristic max price not applied, got %+v", r)
		}
	}

	sess, err := store.Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("expected user+assistant history, got %v", sess.Messages)
	}
	if sess.Messages[0].Role != contractx.RoleUser || sess.Messages[1].Role != contractx.RoleAssistant {
		t.Fatalf("unexpected history roles: %v", sess.Messages)
	}
	if sess.LastIntent != "browse" {
		t.Fatalf("expected intent persisted, got %q", sess.LastIntent)
	}
}

func TestHandleTurnSecondTurnExtendsHistory(t *testing.T) {
	t.Parallel()

	store := &fakeStore{inner: sessionx.NewMemoryStore()}
	routerLLM := &fakeLLM{response: `{"intent":"browse","tasks":[{"type":"RECOMMEND_PRODUCTS"}]}`}
	replyLLM := &fakeLLM{response: "ok"}
	o := newTestOrchestrator(t, store, routerLLM, replyLLM)

	for _, msg := range []string{"show dresses", "anything cheaper?"} {
		if _, err := o.HandleTurn(context.Background(), contractx.TurnRequest{
			SessionID: "s1", CustomerID: "c1", Message: msg,
		}); err != nil {
			t.Fatalf("HandleTurn(%q) error = %v", msg, err)
		}
	}

	msgs, err := store.GetMessages(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetMessages() error = %v", err)
	}
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages after two turns, got %d", len(msgs))
	}
	if msgs[2].Content != "anything cheaper?" {
		t.Fatalf("unexpected third message: %v", msgs[2])
	}
}

func TestHandleTurnStoreOutageIsFatal(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		inner:  sessionx.NewMemoryStore(),
		getErr: contractx.ErrUnavailable,
	}
	o := newTestOrchestrator(t, store, &fakeLLM{response: "{}"}, &fakeLLM{response: "ok"})

	_, err := o.HandleTurn(context.Background(), contractx.TurnRequest{
		SessionID: "s1", CustomerID: "c1", Message: "hello",
	})
	if !errors.Is(err, contractx.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestHandleTurnSaveFailureFlagsNotFails(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		inner:   sessionx.NewMemoryStore(),
		saveErr: errors.New("redis gone"),
	}
	routerLLM := &fakeLLM{response: `{"intent":"browse","tasks":[{"type":"RECOMMEND_PRODUCTS"}]}`}
	o := newTestOrchestrator(t, store, routerLLM, &fakeLLM{response: "here you go"})

	result, err := o.HandleTurn(context.Background(), contractx.TurnRequest{
		SessionID: "s1", CustomerID: "c1", Message: "show dresses",
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if !result.PersistFailed {
		t.Fatalf("expected PersistFailed flag")
	}
	if result.Reply != "here you go" {
		t.Fatalf("reply must survive save failure, got %q", result.Reply)
	}
}

func TestHandleTurnDegradedModelsStillReply(t *testing.T) {
	t.Parallel()

	store := &fakeStore{inner: sessionx.NewMemoryStore()}
	down := errors.New("model down")
	o := newTestOrchestrator(t, store, &fakeLLM{err: down}, &fakeLLM{err: down})

	result, err := o.HandleTurn(context.Background(), contractx.TurnRequest{
		SessionID: "s1", CustomerID: "c1", Message: "show me black dresses",
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if result.Intent != "unknown" {
		t.Fatalf("expected fallback intent, got %q", result.Intent)
	}
	if result.Reply == "" {
		t.Fatalf("expected canned reply, got empty")
	}
	if store.saves != 1 {
		t.Fatalf("degraded turn must still persist, got %d saves", store.saves)
	}
}
