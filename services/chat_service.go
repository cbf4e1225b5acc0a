package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dietvision/logger"
	"dietvision/models"

	"go.uber.org/zap"
)

const (
	geminiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	historyTurns    = 8
	historyMaxChars = 3500
	briefRetryHint  = "Please answer briefly (≤3 sentences). "
	noReplyText     = "I couldn't generate a reply."
)

const ellaPersona = `You are Ella, the DietVision.ai nutrition assistant.
Be warm, conversational and direct. Reply in under three sentences unless the user asks for more detail.
Avoid lists or bullet points unless requested.
Use the user context below when it is relevant, and never invent facts about the user.
You are not a doctor. For medical conditions, suggest the user confirm changes with a professional.`

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"systemInstruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// ChatService talks to Gemini on behalf of a session.
type ChatService struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewChatService(apiKey, model string) *ChatService {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &ChatService{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
		now:     time.Now,
	}
}

// Reply answers message in the context of sess and records both turns on the
// session transcript.
func (s *ChatService) Reply(ctx context.Context, sess *Session, message string) (models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.ChatMessage{}, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	prior := sess.Chat()

	var text string
	if s.apiKey == "" {
		text = scriptedReply(sess.Profile)
	} else {
		system := ellaPersona + "\n\n" + userContext(sess)
		history := recentHistory(prior, historyTurns, historyMaxChars)

		var err error
		text, err = s.generate(ctx, system, append(history, userTurn(message)))
		if err != nil {
			return models.ChatMessage{}, err
		}
		if text == "" {
			logger.Debug("empty reply, retrying with brevity hint", zap.String("session", sess.ID))
			text, err = s.generate(ctx, system, append(history, userTurn(briefRetryHint+message)))
			if err != nil {
				return models.ChatMessage{}, err
			}
		}
		if text == "" {
			text = noReplyText
		}
	}

	now := s.now()
	reply := models.ChatMessage{Role: models.RoleAssistant, Content: text, At: now}
	sess.AppendChat(models.ChatMessage{Role: models.RoleUser, Content: message, At: now}, reply)
	return reply, nil
}

func (s *ChatService) generate(ctx context.Context, system string, contents []geminiContent) (string, error) {
	body, err := json.Marshal(geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
		Contents:          contents,
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: 1024,
			Temperature:     0.6,
			TopP:            0.8,
			TopK:            40,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call gemini: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini request failed with status %d: %s", resp.StatusCode, string(raw))
	}

	var gr geminiResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}
	for _, c := range gr.Candidates {
		var parts []string
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
		if len(parts) > 0 {
			return strings.TrimSpace(strings.Join(parts, " ")), nil
		}
	}
	return "", nil
}

func userTurn(text string) geminiContent {
	return geminiContent{Role: "user", Parts: []geminiPart{{Text: text}}}
}

// recentHistory keeps the newest messages that fit in maxTurns exchanges and
// maxChars characters, returned oldest first.
func recentHistory(msgs []models.ChatMessage, maxTurns, maxChars int) []geminiContent {
	var rev []geminiContent
	total := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		role := "user"
		switch m.Role {
		case models.RoleUser:
		case models.RoleAssistant:
			role = "model"
		default:
			continue
		}
		if total+len(m.Content) > maxChars || len(rev)/2 >= maxTurns {
			break
		}
		rev = append(rev, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Content}}})
		total += len(m.Content)
	}
	out := make([]geminiContent, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

func userContext(sess *Session) string {
	var b strings.Builder
	b.WriteString("User context:\n")
	if name := sess.Profile.FullName(); name != "" {
		fmt.Fprintf(&b, "- Name: %s\n", name)
	}

	if prefs := sess.CurrentPreferences(); prefs != nil {
		fmt.Fprintf(&b, "- Age: %d\n", prefs.AgeOrDefault())
		writeField(&b, "Sex", prefs.Sex)
		writeField(&b, "Country", prefs.Country)
		writeField(&b, "Activity level", prefs.ActivityLevel)
		writeField(&b, "Cuisine", strings.Join(prefs.Cuisine, ", "))
		writeField(&b, "Health conditions", strings.Join(prefs.HealthConditions, ", "))
		writeField(&b, "Goals", strings.Join(prefs.Goals, ", "))
		writeField(&b, "Dietary preferences", strings.Join(prefs.DietaryPreferences, ", "))
	}

	if a := sess.LastAnalysis(); a != nil {
		fmt.Fprintf(&b, "- Last analysed meal: %s (%.2f%% confidence)\n", a.Prediction.FoodName, a.Prediction.Confidence)
		if n := a.Nutrition; n != nil {
			fmt.Fprintf(&b, "  per %s: %.0f kcal, protein %.1f g, fat %.1f g, carbs %.1f g, fiber %.1f g, sugar %.1f g\n",
				n.PortionSize, n.Calories, n.Protein, n.Fat, n.Carbs, n.Fiber, n.Sugar)
		}
		for _, w := range a.Warnings {
			fmt.Fprintf(&b, "  warning: %s\n", w.Message)
		}
	}
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "- %s: %s\n", label, value)
	}
}

func scriptedReply(p models.Profile) string {
	name := p.FirstName
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("That's a great question, %s! I can't reach my nutrition brain right now, so please try again a little later.", name)
}
