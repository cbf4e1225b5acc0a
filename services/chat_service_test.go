package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"dietvision/models"

	"github.com/stretchr/testify/require"
)

type geminiStub struct {
	mu       sync.Mutex
	requests []geminiRequest
	replies  []string
}

func (g *geminiStub) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/gemini-test:generateContent"))
		require.Equal(t, "k", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		g.mu.Lock()
		reply := ""
		if n := len(g.requests); n < len(g.replies) {
			reply = g.replies[n]
		}
		g.requests = append(g.requests, req)
		g.mu.Unlock()

		parts := "[]"
		if reply != "" {
			b, _ := json.Marshal([]geminiPart{{Text: reply}})
			parts = string(b)
		}
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":` + parts + `}}]}`))
	}
}

func newTestChat(t *testing.T, stub *geminiStub) *ChatService {
	srv := httptest.NewServer(stub.handler(t))
	t.Cleanup(srv.Close)
	svc := NewChatService("k", "gemini-test")
	svc.baseURL = srv.URL
	svc.client = srv.Client()
	return svc
}

func testSession() *Session {
	age := 40
	return NewSessionStore().Create(models.Profile{Email: "a@x.com", FirstName: "Ana", LastName: "Lee"}, &models.Preferences{
		Age:              &age,
		HealthConditions: []string{"Diabetes"},
		Goals:            []string{"Weight Loss"},
	})
}

func TestChatReplySendsContextAndHistory(t *testing.T) {
	stub := &geminiStub{replies: []string{"Hi Ana!", "Try grilled fish."}}
	svc := newTestChat(t, stub)
	sess := testSession()
	sess.SetLastAnalysis(models.Analysis{
		Prediction: models.Prediction{FoodName: "Pizza", Confidence: 91.5},
		Nutrition:  &models.NutritionFacts{PortionSize: "1 slice", Calories: 285},
	})
	ctx := context.Background()

	reply, err := svc.Reply(ctx, sess, "hello")
	require.NoError(t, err)
	require.Equal(t, models.RoleAssistant, reply.Role)
	require.Equal(t, "Hi Ana!", reply.Content)

	_, err = svc.Reply(ctx, sess, "what should I eat?")
	require.NoError(t, err)

	require.Len(t, stub.requests, 2)
	second := stub.requests[1]
	system := second.SystemInstruction.Parts[0].Text
	require.Contains(t, system, "You are Ella")
	require.Contains(t, system, "- Name: Ana Lee")
	require.Contains(t, system, "- Age: 40")
	require.Contains(t, system, "- Health conditions: Diabetes")
	require.Contains(t, system, "Last analysed meal: Pizza")

	require.Len(t, second.Contents, 3)
	require.Equal(t, "user", second.Contents[0].Role)
	require.Equal(t, "hello", second.Contents[0].Parts[0].Text)
	require.Equal(t, "model", second.Contents[1].Role)
	require.Equal(t, "what should I eat?", second.Contents[2].Parts[0].Text)
	require.Equal(t, 1024, second.GenerationConfig.MaxOutputTokens)

	require.Len(t, sess.Chat(), 4)
}

func TestChatRetriesEmptyReplyOnce(t *testing.T) {
	stub := &geminiStub{replies: []string{"", "Short answer."}}
	svc := newTestChat(t, stub)

	reply, err := svc.Reply(context.Background(), testSession(), "explain carbs")
	require.NoError(t, err)
	require.Equal(t, "Short answer.", reply.Content)
	require.Len(t, stub.requests, 2)
	last := stub.requests[1].Contents
	require.Equal(t, briefRetryHint+"explain carbs", last[len(last)-1].Parts[0].Text)
}

func TestChatGivesUpAfterRetry(t *testing.T) {
	stub := &geminiStub{}
	reply, err := newTestChat(t, stub).Reply(context.Background(), testSession(), "hi")
	require.NoError(t, err)
	require.Equal(t, noReplyText, reply.Content)
	require.Len(t, stub.requests, 2)
}

func TestChatAPIErrorLeavesTranscript(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	svc := NewChatService("k", "gemini-test")
	svc.baseURL = srv.URL
	sess := testSession()

	_, err := svc.Reply(context.Background(), sess, "hi")
	require.Error(t, err)
	require.Empty(t, sess.Chat())
}

func TestChatWithoutKeyIsScripted(t *testing.T) {
	sess := testSession()
	reply, err := NewChatService("", "").Reply(context.Background(), sess, "hi")
	require.NoError(t, err)
	require.Contains(t, reply.Content, "Ana")
	require.Len(t, sess.Chat(), 2)

	_, err = NewChatService("", "").Reply(context.Background(), sess, "  ")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecentHistoryWindow(t *testing.T) {
	var msgs []models.ChatMessage
	for i := 0; i < 20; i++ {
		msgs = append(msgs,
			models.ChatMessage{Role: models.RoleUser, Content: "q"},
			models.ChatMessage{Role: models.RoleAssistant, Content: "a"},
		)
	}
	hist := recentHistory(msgs, 8, 3500)
	require.Len(t, hist, 16)
	require.Equal(t, "user", hist[0].Role)
	require.Equal(t, "model", hist[15].Role)

	long := []models.ChatMessage{
		{Role: models.RoleUser, Content: strings.Repeat("x", 3000)},
		{Role: models.RoleAssistant, Content: strings.Repeat("y", 400)},
		{Role: models.RoleUser, Content: strings.Repeat("z", 200)},
	}
	hist = recentHistory(long, 8, 3500)
	require.Len(t, hist, 2)
	require.Equal(t, "model", hist[0].Role)
	require.Equal(t, "user", hist[1].Role)
}
