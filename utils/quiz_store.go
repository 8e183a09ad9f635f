package utils

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const quizKeyTTL = 30 * time.Minute

// QuizKey is the server-side record of a generated quiz: what was asked and
// which option indexes are correct. Grading never trusts the client.
type QuizKey struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Answers    []int  `json:"answers"`
}

type quizKeyEntry struct {
	key       QuizKey
	expiresAt time.Time
}

var (
	quizKeys   = map[string]quizKeyEntry{}
	quizKeysMu sync.Mutex
)

// SaveQuizAnswerKey stores the answer key for a generated quiz. Prefers Redis;
// falls back to in-memory (single-instance only).
func SaveQuizAnswerKey(quizID string, key QuizKey) {
	if rc := GetRedis(); rc != nil {
		if b, err := json.Marshal(key); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := rc.Set(ctx, "quiz:key:"+quizID, b, quizKeyTTL).Err(); err == nil {
				return
			}
		}
	}
	quizKeysMu.Lock()
	quizKeys[quizID] = quizKeyEntry{key: key, expiresAt: time.Now().Add(quizKeyTTL)}
	quizKeysMu.Unlock()
}

// ConsumeQuizAnswerKey returns and removes the answer key for a quiz, making
// each generated quiz gradeable exactly once.
func ConsumeQuizAnswerKey(quizID string) (QuizKey, bool) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if v, err := rc.GetDel(ctx, "quiz:key:"+quizID).Bytes(); err == nil {
			var key QuizKey
			if json.Unmarshal(v, &key) == nil {
				return key, true
			}
			return QuizKey{}, false
		}
	}
	quizKeysMu.Lock()
	entry, ok := quizKeys[quizID]
	if ok {
		delete(quizKeys, quizID)
	}
	quizKeysMu.Unlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return QuizKey{}, false
	}
	return entry.key, true
}
