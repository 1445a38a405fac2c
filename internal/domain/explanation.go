package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ExplanationEntry: одно правило, сработавшее для аномальной записи.
type ExplanationEntry struct {
	Key   string
	Value string
}

// Explanation хранит объяснения в порядке следования ключей в JSON-объекте.
// Обычная map порядок теряет, а UI обязан выводить строки в исходном порядке.
type Explanation struct {
	entries []ExplanationEntry
}

func NewExplanation(entries ...ExplanationEntry) *Explanation {
	e := &Explanation{}
	for _, entry := range entries {
		e.set(entry.Key, entry.Value)
	}
	return e
}

// Len безопасен для nil.
func (e *Explanation) Len() int {
	if e == nil {
		return 0
	}
	return len(e.entries)
}

func (e *Explanation) Entries() []ExplanationEntry {
	if e == nil {
		return nil
	}
	out := make([]ExplanationEntry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Values возвращает только тексты объяснений: ключи наружу не показываются.
func (e *Explanation) Values() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.entries))
	for _, entry := range e.entries {
		out = append(out, entry.Value)
	}
	return out
}

// set повторяет семантику JS-объекта: повторный ключ меняет значение, но не позицию.
func (e *Explanation) set(key, value string) {
	for i := range e.entries {
		if e.entries[i].Key == key {
			e.entries[i].Value = value
			return
		}
	}
	e.entries = append(e.entries, ExplanationEntry{Key: key, Value: value})
}

func (e *Explanation) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("explanation: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("explanation: expected object, got %v", tok)
	}

	e.entries = e.entries[:0]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("explanation key: %w", err)
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("explanation %q: %w", key, err)
		}
		e.set(key, explanationText(raw))
	}

	// закрывающая '}'
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("explanation: %w", err)
	}
	return nil
}

func (e Explanation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range e.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// explanationText: строки без кавычек, остальное компактным JSON как есть.
func explanationText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(raw)
	}
	return compact.String()
}
