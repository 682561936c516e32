package services

import (
	"cashcontrol/models"
	"strconv"
	"strings"
)

// Link описывает ссылку на карточку кассовой смены
type Link struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// LinkOptions задает параметры построения ссылки
type LinkOptions struct {
	BaseURL        string
	MaxLength      int  // Если > 0, подпись обрезается посередине
	SaveLastSearch bool // Сохранять ли фильтры списка при переходе
}

// CashFenceLink строит ссылку на карточку смены. Отрисовка остается на стороне клиента.
func CashFenceLink(fence *models.CashFence, opts LinkOptions) Link {
	label := fence.Ref
	if label == "" {
		label = strconv.FormatUint(uint64(fence.ID), 10)
	}
	if opts.MaxLength > 0 {
		label = truncateMiddle(label, opts.MaxLength)
	}

	url := strings.TrimRight(opts.BaseURL, "/") + "/cash-fences/" + strconv.FormatUint(uint64(fence.ID), 10)
	if opts.SaveLastSearch {
		url += "?save_lastsearch_values=1"
	}

	return Link{
		ID:    fence.ID,
		Label: label,
		URL:   url,
	}
}

// truncateMiddle обрезает строку до max символов, заменяя середину на "…"
func truncateMiddle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	head := (max - 1) / 2
	tail := max - 1 - head
	return string(runes[:head]) + "…" + string(runes[len(runes)-tail:])
}
