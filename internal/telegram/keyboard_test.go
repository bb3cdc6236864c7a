package telegram

import (
	"testing"

	"github.com/set-night/sketchbot/internal/domain"
)

func TestPaginationRow(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		total     int
		wantTexts []string
	}{
		{"first", 0, 3, []string{"1/3", "➡️"}},
		{"middle", 1, 3, []string{"⬅️", "2/3", "➡️"}},
		{"last", 2, 3, []string{"⬅️", "3/3"}},
		{"single", 0, 1, []string{"1/1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := PaginationRow(tt.page, tt.total, CallbackHistoryPrefix)
			if len(row) != len(tt.wantTexts) {
				t.Fatalf("row = %+v", row)
			}
			for i, want := range tt.wantTexts {
				if row[i].Text != want {
					t.Errorf("button %d = %q, want %q", i, row[i].Text, want)
				}
			}
		})
	}
}

func TestPaginationRoundTrip(t *testing.T) {
	row := PaginationRow(1, 3, CallbackHistoryPrefix)
	next := row[len(row)-1].CallbackData
	if next != "history_page_2" {
		t.Fatalf("next callback = %q", next)
	}
	if page, ok := ParsePage(next, CallbackHistoryPrefix); !ok || page != 2 {
		t.Errorf("ParsePage() = %d, %v", page, ok)
	}
	for _, bad := range []string{"cur", "history_page_x", "history_page_-1", "mode_ui"} {
		if _, ok := ParsePage(bad, CallbackHistoryPrefix); ok {
			t.Errorf("ParsePage(%q) ok = true", bad)
		}
	}
}

func TestModeKeyboardMarksCurrent(t *testing.T) {
	kb := ModeKeyboard(domain.Mode3D)
	row := kb.InlineKeyboard[0]
	if row[0].CallbackData != "mode_ui" || row[1].CallbackData != "mode_3d" {
		t.Errorf("callbacks = %q, %q", row[0].CallbackData, row[1].CallbackData)
	}
	if row[0].Text != "Sketch → UI" || row[1].Text != "✅ Sketch → 3D Product" {
		t.Errorf("labels = %q, %q", row[0].Text, row[1].Text)
	}
}
