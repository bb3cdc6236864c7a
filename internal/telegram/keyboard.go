package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/set-night/sketchbot/internal/domain"
)

// Callback data.
const (
	CallbackModePrefix    = "mode_"
	CallbackHistoryPrefix = "history_page"
	CallbackNoop          = "cur"
)

func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: callbackData}
}

func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// ModeKeyboard offers both generation modes and ticks the current one.
func ModeKeyboard(current domain.GenerationMode) *models.InlineKeyboardMarkup {
	row := make([]models.InlineKeyboardButton, 0, 2)
	for _, m := range []domain.GenerationMode{domain.ModeUI, domain.Mode3D} {
		label := m.Label()
		if m == current {
			label = "✅ " + label
		}
		row = append(row, InlineButton(label, CallbackModePrefix+string(m)))
	}
	return InlineKeyboard(row)
}

// PaginationRow builds a prev / "n/total" / next row. Page is zero based.
func PaginationRow(page, totalPages int, callbackPrefix string) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton
	if page > 0 {
		row = append(row, InlineButton("⬅️", fmt.Sprintf("%s_%d", callbackPrefix, page-1)))
	}
	row = append(row, InlineButton(fmt.Sprintf("%d/%d", page+1, totalPages), CallbackNoop))
	if page < totalPages-1 {
		row = append(row, InlineButton("➡️", fmt.Sprintf("%s_%d", callbackPrefix, page+1)))
	}
	return row
}

// ParsePage extracts the page number from callback data built by
// PaginationRow.
func ParsePage(data, callbackPrefix string) (int, bool) {
	rest, ok := strings.CutPrefix(data, callbackPrefix+"_")
	if !ok {
		return 0, false
	}
	page, err := strconv.Atoi(rest)
	if err != nil || page < 0 {
		return 0, false
	}
	return page, true
}
