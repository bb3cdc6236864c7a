package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestHistoryEncodingKeepsDiscriminator(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 30, 0, 5_000_000, time.UTC)
	entries := []HistoryEntry{
		NewChatRecord(now, "hi", "hello"),
		NewGenerationRecord(now, Mode3D, "a chair", "http://b/x.png"),
	}

	data, err := EncodeHistory(entries)
	if err != nil {
		t.Fatalf("EncodeHistory() error = %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw[0]["type"] != "chat" || raw[1]["type"] != "generation" {
		t.Errorf("types = %v, %v", raw[0]["type"], raw[1]["type"])
	}
	if raw[1]["imageUrl"] != "http://b/x.png" {
		t.Errorf("imageUrl = %v", raw[1]["imageUrl"])
	}

	decoded, err := DecodeHistory(data)
	if err != nil {
		t.Fatalf("DecodeHistory() error = %v", err)
	}
	chat, ok := decoded[0].(ChatRecord)
	if !ok {
		t.Fatalf("entry 0 is %T, want ChatRecord", decoded[0])
	}
	if chat.Message != "hi → hello" || chat.ID != "chat_"+"1772368200005" {
		t.Errorf("chat = %+v", chat)
	}
	if chat.Timestamp != "2026-03-01T12:30:00.005Z" {
		t.Errorf("Timestamp = %q", chat.Timestamp)
	}
	gen, ok := decoded[1].(GenerationRecord)
	if !ok {
		t.Fatalf("entry 1 is %T, want GenerationRecord", decoded[1])
	}
	if gen.Title != "Generated 3D Design" || gen.Description != "a chair" {
		t.Errorf("generation = %+v", gen)
	}
}

func TestDecodeHistoryPreservesUnknownKinds(t *testing.T) {
	in := `[{"id":"x_1","type":"video","title":"clip","extra":[1,2]}]`

	entries, err := DecodeHistory([]byte(in))
	if err != nil {
		t.Fatalf("DecodeHistory() error = %v", err)
	}
	if entries[0].Kind() != "video" || entries[0].Heading() != "clip" {
		t.Errorf("entry = %+v", entries[0])
	}

	out, err := EncodeHistory(entries)
	if err != nil {
		t.Fatalf("EncodeHistory() error = %v", err)
	}
	if !strings.Contains(string(out), `"extra":[1,2]`) {
		t.Errorf("unknown entry not preserved: %s", out)
	}
}

func TestDecodeHistoryRejectsGarbage(t *testing.T) {
	for _, in := range []string{"not json", `{"id":1}`, `[1,2]`} {
		if _, err := DecodeHistory([]byte(in)); err == nil {
			t.Errorf("DecodeHistory(%q) error = nil", in)
		}
	}
}

func TestEncodeEmptyHistory(t *testing.T) {
	data, err := EncodeHistory(nil)
	if err != nil {
		t.Fatalf("EncodeHistory() error = %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("EncodeHistory(nil) = %s, want []", data)
	}
}
