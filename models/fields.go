package models

// FieldMeta описывает колонку таблицы кассовых смен для списков и карточек
type FieldMeta struct {
	Column   string `json:"column"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	Visible  int    `json:"visible"` // 0 - скрыто, 1 - видно везде, -1 - только в списке
	NotNull  bool   `json:"notNull"`
	Position int    `json:"position"`
	Computed bool   `json:"computed"` // значение вычисляется, в таблице колонки нет
}

// CashFenceFields - метаданные колонок pos_cash_fence, упорядоченные по позиции
var CashFenceFields = []FieldMeta{
	{Column: "rowid", Type: "integer", Label: "ID", Visible: 0, NotNull: true, Position: 10},
	{Column: "entity", Type: "integer", Label: "Entity", Visible: 0, NotNull: true, Position: 15},
	{Column: "ref", Type: "varchar(64)", Label: "Ref", Visible: 1, Position: 18, Computed: true},
	{Column: "label", Type: "varchar(255)", Label: "Label", Visible: 0, Position: 20},
	{Column: "opening", Type: "double(24,8)", Label: "Opening", Visible: 1, Position: 25},
	{Column: "cash", Type: "double(24,8)", Label: "Cash", Visible: 1, Position: 30},
	{Column: "cheque", Type: "double(24,8)", Label: "Cheque", Visible: 1, Position: 35},
	{Column: "day_close", Type: "integer", Label: "Day close", Visible: 1, Position: 50},
	{Column: "month_close", Type: "integer", Label: "Month close", Visible: 1, Position: 55},
	{Column: "year_close", Type: "integer", Label: "Year close", Visible: 1, Position: 60},
	{Column: "posmodule", Type: "varchar(30)", Label: "Module", Visible: 1, Position: 65},
	{Column: "posnumber", Type: "varchar(30)", Label: "CashDesk", Visible: 1, Position: 70},
	{Column: "date_creation", Type: "datetime", Label: "Date creation", Visible: -1, NotNull: true, Position: 500},
	{Column: "tms", Type: "timestamp", Label: "Tms", Visible: 0, NotNull: true, Position: 505},
	{Column: "import_key", Type: "varchar(14)", Label: "Import key", Visible: 0, Position: 510},
	{Column: "status", Type: "integer", Label: "Status", Visible: 1, NotNull: true, Position: 1000},
}

// VisibleCashFenceFields возвращает колонки, которые показываются в списке
func VisibleCashFenceFields() []FieldMeta {
	var fields []FieldMeta
	for _, f := range CashFenceFields {
		if f.Visible != 0 {
			fields = append(fields, f)
		}
	}
	return fields
}
