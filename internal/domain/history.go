package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type HistoryKind string

const (
	KindGeneration HistoryKind = "generation"
	KindChat       HistoryKind = "chat"
)

// ID prefixes. IDs are prefix + unix milliseconds, so two entries created in
// the same millisecond share an ID.
const (
	GenerationIDPrefix = "gen_"
	ChatIDPrefix       = "chat_"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// HistoryEntry is one persisted record of a past generation or chat.
// Implementations: GenerationRecord, ChatRecord, UnknownRecord.
type HistoryEntry interface {
	EntryID() string
	Kind() HistoryKind
	When() string
	Heading() string
}

type GenerationRecord struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

func (r GenerationRecord) EntryID() string   { return r.ID }
func (r GenerationRecord) Kind() HistoryKind { return KindGeneration }
func (r GenerationRecord) When() string      { return r.Timestamp }
func (r GenerationRecord) Heading() string   { return r.Title }

func (r GenerationRecord) MarshalJSON() ([]byte, error) {
	type alias GenerationRecord
	return json.Marshal(struct {
		Type HistoryKind `json:"type"`
		alias
	}{KindGeneration, alias(r)})
}

type ChatRecord struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
	Message   string `json:"message"`
}

func (r ChatRecord) EntryID() string   { return r.ID }
func (r ChatRecord) Kind() HistoryKind { return KindChat }
func (r ChatRecord) When() string      { return r.Timestamp }
func (r ChatRecord) Heading() string   { return r.Title }

func (r ChatRecord) MarshalJSON() ([]byte, error) {
	type alias ChatRecord
	return json.Marshal(struct {
		Type HistoryKind `json:"type"`
		alias
	}{KindChat, alias(r)})
}

// UnknownRecord carries an entry whose type this client does not know.
// It is written back byte for byte.
type UnknownRecord struct {
	ID        string
	Type      HistoryKind
	Timestamp string
	Title     string
	Raw       json.RawMessage
}

func (r UnknownRecord) EntryID() string   { return r.ID }
func (r UnknownRecord) Kind() HistoryKind { return r.Type }
func (r UnknownRecord) When() string      { return r.Timestamp }
func (r UnknownRecord) Heading() string   { return r.Title }

func (r UnknownRecord) MarshalJSON() ([]byte, error) {
	return r.Raw, nil
}

func NewEntryID(prefix string, now time.Time) string {
	return prefix + strconv.FormatInt(now.UnixMilli(), 10)
}

// FormatTimestamp renders t as an ISO-8601 UTC string with milliseconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func NewGenerationRecord(now time.Time, mode GenerationMode, description, imageURL string) GenerationRecord {
	return GenerationRecord{
		ID:          NewEntryID(GenerationIDPrefix, now),
		Timestamp:   FormatTimestamp(now),
		Title:       mode.Title(),
		Description: description,
		ImageURL:    imageURL,
	}
}

func NewChatRecord(now time.Time, userText, reply string) ChatRecord {
	return ChatRecord{
		ID:        NewEntryID(ChatIDPrefix, now),
		Timestamp: FormatTimestamp(now),
		Title:     "AI Assistant Chat",
		Message:   userText + " → " + reply,
	}
}

// EncodeHistory serializes entries as a JSON array, newest first.
func EncodeHistory(entries []HistoryEntry) ([]byte, error) {
	if entries == nil {
		entries = []HistoryEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return data, nil
}

// DecodeHistory parses a JSON array of entries, dispatching on "type".
func DecodeHistory(data []byte) ([]HistoryEntry, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(raws))
	for i, raw := range raws {
		var head struct {
			ID        string      `json:"id"`
			Type      HistoryKind `json:"type"`
			Timestamp string      `json:"timestamp"`
			Title     string      `json:"title"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("decode history entry %d: %w", i, err)
		}

		switch head.Type {
		case KindGeneration:
			var r GenerationRecord
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, fmt.Errorf("decode generation entry %d: %w", i, err)
			}
			entries = append(entries, r)
		case KindChat:
			var r ChatRecord
			if err := json.Unmarshal(raw, &r); err != nil {
				return nil, fmt.Errorf("decode chat entry %d: %w", i, err)
			}
			entries = append(entries, r)
		default:
			entries = append(entries, UnknownRecord{
				ID:        head.ID,
				Type:      head.Type,
				Timestamp: head.Timestamp,
				Title:     head.Title,
				Raw:       append(json.RawMessage(nil), raw...),
			})
		}
	}
	return entries, nil
}
