package controllers

import (
	"cashcontrol/database"
	"cashcontrol/middleware"
	"cashcontrol/models"
	"cashcontrol/services"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// CashFenceDTO - кассовая смена вместе со ссылкой на карточку
type CashFenceDTO struct {
	*models.CashFence
	Link services.Link `json:"link"`
}

// CashFenceController обрабатывает запросы, связанные с кассовыми сменами
type CashFenceController struct {
	cashFenceService *services.CashFenceService
	baseURL          string
}

// NewCashFenceController создает новый экземпляр CashFenceController
func NewCashFenceController(db *database.Database, notifier services.Notifier, baseURL string) *CashFenceController {
	return &CashFenceController{
		cashFenceService: services.NewCashFenceService(db.GetDB(), notifier),
		baseURL:          baseURL,
	}
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *CashFenceController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/cash-fences", c.CreateCashFence).Methods("POST")
	router.HandleFunc("/cash-fences", c.GetCashFences).Methods("GET")
	router.HandleFunc("/cash-fences/fields", c.GetFields).Methods("GET")
	router.HandleFunc("/cash-fences/{id:[0-9]+}", c.GetCashFence).Methods("GET")
	router.HandleFunc("/cash-fences/{id:[0-9]+}/totals", c.UpdateTotals).Methods("PUT")
	router.HandleFunc("/cash-fences/{id:[0-9]+}/close", c.CloseCashFence).Methods("POST")
}

// actor получает пользователя и организацию из контекста (установлен middleware)
func actor(r *http.Request) (services.Actor, bool) {
	userID, entity, err := middleware.GetActorFromContext(r)
	if err != nil {
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, Entity: entity}, true
}

// fenceID разбирает ID смены из пути. rowid - SERIAL, поэтому больше 2^31-1 не бывает.
func fenceID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 31)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// writeError переводит ошибку сервиса в HTTP статус
func writeError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrCashFenceNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrCashFenceClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (c *CashFenceController) toDTO(fence *models.CashFence) CashFenceDTO {
	return CashFenceDTO{
		CashFence: fence,
		Link:      services.CashFenceLink(fence, services.LinkOptions{BaseURL: c.baseURL}),
	}
}

// CreateCashFence обрабатывает запрос на открытие кассовой смены
func (c *CashFenceController) CreateCashFence(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var dto services.CreateCashFenceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fence, err := c.cashFenceService.Create(act, dto)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, c.toDTO(fence))
}

// GetCashFence обрабатывает запрос на получение кассовой смены
func (c *CashFenceController) GetCashFence(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := fenceID(r)
	if err != nil {
		http.Error(w, "Invalid cash fence id", http.StatusBadRequest)
		return
	}

	fence, err := c.cashFenceService.Get(act, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c.toDTO(fence))
}

// GetCashFences обрабатывает запрос на получение списка кассовых смен
func (c *CashFenceController) GetCashFences(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query()
	filter := services.ListFilter{
		PosModule: query.Get("posmodule"),
		PosNumber: query.Get("posnumber"),
	}
	if v := query.Get("status"); v != "" {
		status, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
		s := models.CashFenceStatus(status)
		filter.Status = &s
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}
	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid offset", http.StatusBadRequest)
			return
		}
		filter.Offset = offset
	}

	fences, err := c.cashFenceService.List(act, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]CashFenceDTO, 0, len(fences))
	for i := range fences {
		dtos = append(dtos, c.toDTO(&fences[i]))
	}

	writeJSON(w, http.StatusOK, dtos)
}

// UpdateTotals обрабатывает запрос на запись посчитанных сумм
func (c *CashFenceController) UpdateTotals(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := fenceID(r)
	if err != nil {
		http.Error(w, "Invalid cash fence id", http.StatusBadRequest)
		return
	}

	var dto services.UpdateTotalsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fence, err := c.cashFenceService.UpdateTotals(act, id, dto)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c.toDTO(fence))
}

// CloseCashFence обрабатывает запрос на закрытие кассовой смены
func (c *CashFenceController) CloseCashFence(w http.ResponseWriter, r *http.Request) {
	act, ok := actor(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := fenceID(r)
	if err != nil {
		http.Error(w, "Invalid cash fence id", http.StatusBadRequest)
		return
	}

	fence, err := c.cashFenceService.Close(act, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, c.toDTO(fence))
}

// GetFields возвращает описание колонок таблицы смен
func (c *CashFenceController) GetFields(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("visible") == "1" {
		writeJSON(w, http.StatusOK, models.VisibleCashFenceFields())
		return
	}
	writeJSON(w, http.StatusOK, models.CashFenceFields)
}
