package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/greenloop/ecotrack/config"
)

// QuizQuestion is a single multiple-choice question. Answer is the index into
// Options and is never serialized to clients.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"-"`
}

var (
	quizHTTPClient = &http.Client{Timeout: 15 * time.Second}
	quizSettings   = config.Get
)

// GenerateQuizQuestions produces a question set for topic/difficulty. When an
// OpenAI-compatible endpoint is configured it is asked first; any failure
// falls back to the builtin bank so the feature degrades instead of erroring.
func GenerateQuizQuestions(ctx context.Context, topic, difficulty string, count int) []QuizQuestion {
	if count <= 0 {
		count = 5
	}
	cfg := quizSettings()
	if cfg.QuizAPIBase != "" && cfg.QuizAPIKey != "" {
		if qs, err := fetchRemoteQuiz(ctx, topic, difficulty, count); err == nil && len(qs) > 0 {
			return qs
		} else if err != nil && Sugar != nil {
			Sugar.Warnf("remote quiz generation failed, using builtin bank: %v", err)
		}
	}
	return builtinQuiz(topic, count)
}

// chat completions request/response, trimmed to the fields we read
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type remoteQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

func fetchRemoteQuiz(ctx context.Context, topic, difficulty string, count int) ([]QuizQuestion, error) {
	cfg := quizSettings()

	prompt := fmt.Sprintf(
		"Generate %d %s-difficulty multiple-choice questions about %s in the context of household waste management and recycling. "+
			"Respond with a JSON array only, each element: {\"question\": string, \"options\": [4 strings], \"answer\": index of correct option}.",
		count, difficulty, topic,
	)

	body, err := json.Marshal(chatRequest{
		Model: cfg.QuizModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You write environmental-education quizzes. Output strict JSON."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(cfg.QuizAPIBase, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.QuizAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := quizHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quiz api status %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, err
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("quiz api returned no choices")
	}

	content := strings.TrimSpace(cr.Choices[0].Message.Content)
	// Models sometimes wrap JSON in a markdown fence
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var remote []remoteQuestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &remote); err != nil {
		return nil, fmt.Errorf("parse quiz json: %w", err)
	}

	out := make([]QuizQuestion, 0, len(remote))
	for _, q := range remote {
		if q.Question == "" || len(q.Options) < 2 || q.Answer < 0 || q.Answer >= len(q.Options) {
			continue
		}
		out = append(out, QuizQuestion{Question: q.Question, Options: q.Options, Answer: q.Answer})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("quiz api returned no usable questions")
	}
	return out, nil
}

// builtinQuiz serves a fixed bank so quizzes work without an API key.
func builtinQuiz(topic string, count int) []QuizQuestion {
	bank := quizBank[strings.ToLower(topic)]
	if len(bank) == 0 {
		bank = quizBank["recycling"]
	}
	if count > len(bank) {
		count = len(bank)
	}
	out := make([]QuizQuestion, count)
	copy(out, bank[:count])
	return out
}

var quizBank = map[string][]QuizQuestion{
	"recycling": {
		{
			Question: "Which bin should a rinsed glass jar go into?",
			Options:  []string{"General waste", "Glass recycling", "Organic waste", "Hazardous waste"},
			Answer:   1,
		},
		{
			Question: "What should you do with a greasy pizza box?",
			Options:  []string{"Recycle it whole", "Compost or trash the greasy part, recycle the clean part", "Burn it", "Put it in glass recycling"},
			Answer:   1,
		},
		{
			Question: "Which plastic resin code is most widely recyclable kerbside?",
			Options:  []string{"PET (1)", "PVC (3)", "PS (6)", "Other (7)"},
			Answer:   0,
		},
		{
			Question: "Why should recyclables be empty and dry?",
			Options:  []string{"They weigh less", "Food residue contaminates whole batches", "It looks nicer", "Trucks require it by law"},
			Answer:   1,
		},
		{
			Question: "Which of these is NOT kerbside recyclable in most programs?",
			Options:  []string{"Aluminium cans", "Newspaper", "Plastic film bags", "Cardboard"},
			Answer:   2,
		},
	},
	"composting": {
		{
			Question: "Which item belongs in a home compost bin?",
			Options:  []string{"Vegetable peelings", "Glossy magazines", "Plastic cutlery", "Batteries"},
			Answer:   0,
		},
		{
			Question: "What keeps a compost pile from smelling?",
			Options:  []string{"Adding meat scraps", "Balancing greens with browns and turning it", "Keeping it soaking wet", "Sealing it airtight"},
			Answer:   1,
		},
		{
			Question: "Which is a 'brown' compost material?",
			Options:  []string{"Grass clippings", "Fruit scraps", "Dry leaves", "Coffee grounds"},
			Answer:   2,
		},
		{
			Question: "Roughly how long does home composting take to produce usable compost?",
			Options:  []string{"A day", "2-6 months", "10 years", "It never finishes"},
			Answer:   1,
		},
		{
			Question: "Why avoid composting dairy at home?",
			Options:  []string{"It attracts pests and smells", "It is toxic to soil", "It never decomposes", "It is illegal everywhere"},
			Answer:   0,
		},
	},
	"e-waste": {
		{
			Question: "How should old phone batteries be disposed of?",
			Options:  []string{"General waste", "Designated battery/e-waste drop-off", "Organic bin", "Down the drain"},
			Answer:   1,
		},
		{
			Question: "Why is e-waste hazardous in landfill?",
			Options:  []string{"It takes up space", "Heavy metals can leach into soil and water", "It attracts animals", "It is radioactive"},
			Answer:   1,
		},
		{
			Question: "Which valuable material is commonly recovered from circuit boards?",
			Options:  []string{"Gold", "Wool", "Limestone", "Rubber"},
			Answer:   0,
		},
		{
			Question: "Before recycling a laptop you should first:",
			Options:  []string{"Remove stickers", "Wipe personal data", "Paint it", "Freeze it"},
			Answer:   1,
		},
		{
			Question: "What fraction of e-waste is formally recycled worldwide (approx.)?",
			Options:  []string{"Under 25%", "About 50%", "About 75%", "Nearly all"},
			Answer:   0,
		},
	},
}
