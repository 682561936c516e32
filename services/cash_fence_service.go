package services

import (
	"cashcontrol/models"
	"cashcontrol/utils"
	"errors"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Actor - пользователь и организация (entity), от имени которых выполняется операция
type Actor struct {
	UserID uint
	Entity int
}

// CreateCashFenceDTO представляет данные для открытия кассовой смены
type CreateCashFenceDTO struct {
	Opening   decimal.Decimal `json:"opening" validate:"gte=0"`
	PosModule string          `json:"posmodule" validate:"required,max=30"`
	PosNumber string          `json:"posnumber" validate:"required,max=30"`
	Label     string          `json:"label" validate:"max=255"`
}

// UpdateTotalsDTO представляет посчитанные суммы наличных и чеков
type UpdateTotalsDTO struct {
	Cash   decimal.Decimal `json:"cash" validate:"gte=0"`
	Cheque decimal.Decimal `json:"cheque" validate:"gte=0"`
}

// ListFilter задает условия выборки списка смен
type ListFilter struct {
	PosModule string
	PosNumber string
	Status    *models.CashFenceStatus
	Limit     int
	Offset    int
}

// Notifier получает уведомления о закрытых сменах
type Notifier interface {
	SendCashFenceClosedNotification(fence *models.CashFence) error
}

// CashFenceService предоставляет методы для работы с кассовыми сменами
type CashFenceService struct {
	db        *gorm.DB
	validator *validator.Validate
	notifier  Notifier
	now       func() time.Time
}

// NewCashFenceService создает новый экземпляр CashFenceService.
// notifier может быть nil, тогда уведомления не отправляются.
func NewCashFenceService(db *gorm.DB, notifier Notifier) *CashFenceService {
	return &CashFenceService{
		db:        db,
		validator: newValidator(),
		notifier:  notifier,
		now:       time.Now,
	}
}

// newValidator создает валидатор, который умеет сравнивать decimal.Decimal
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func logEntry(op string, actor Actor, id uint) *logrus.Entry {
	return utils.Log.WithFields(logrus.Fields{
		"op":            "CashFence::" + op,
		"user_id":       actor.UserID,
		"entity":        actor.Entity,
		"cash_fence_id": id,
	})
}

// Create открывает новую смену в статусе черновика
func (s *CashFenceService) Create(actor Actor, dto CreateCashFenceDTO) (fence *models.CashFence, err error) {
	start := time.Now()
	defer func() { utils.LogOperation("create", start, err) }()

	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		return nil, newValidationError(err)
	}

	now := s.now()
	fence = &models.CashFence{
		Entity:       actor.Entity,
		Label:        dto.Label,
		Opening:      dto.Opening,
		Cash:         decimal.Zero,
		Cheque:       decimal.Zero,
		PosModule:    dto.PosModule,
		PosNumber:    dto.PosNumber,
		DateCreation: now,
		Tms:          now,
		Status:       models.CashFenceStatusDraft,
	}

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, &StorageError{Op: "create", Err: tx.Error}
	}

	logEntry("create", actor, 0).Debug("inserting cash fence")
	if err := tx.Create(fence).Error; err != nil {
		tx.Rollback()
		return nil, &StorageError{Op: "create", Err: err}
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, &StorageError{Op: "create", Err: err}
	}

	fence.SyncRef()
	return fence, nil
}

// Close закрывает смену: проставляет день, месяц и год закрытия и статус "закрыта".
// Повторное закрытие возвращает сохраненную запись без изменений.
func (s *CashFenceService) Close(actor Actor, id uint) (fence *models.CashFence, err error) {
	start := time.Now()
	defer func() { utils.LogOperation("close", start, err) }()

	now := s.now()

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, &StorageError{Op: "close", Err: tx.Error}
	}

	// Обновляем только открытую смену своей организации
	logEntry("close", actor, id).Debug("closing cash fence")
	result := tx.Model(&models.CashFence{}).
		Where("rowid = ? AND entity = ? AND status = ?", id, actor.Entity, int(models.CashFenceStatusDraft)).
		Updates(map[string]interface{}{
			"day_close":   now.Day(),
			"month_close": int(now.Month()),
			"year_close":  now.Year(),
			"status":      int(models.CashFenceStatusClosed),
		})
	if result.Error != nil {
		tx.Rollback()
		return nil, &StorageError{Op: "close", Err: result.Error}
	}
	closedNow := result.RowsAffected > 0

	fence, err = s.reload(tx, actor, id, "close")
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, &StorageError{Op: "close", Err: err}
	}

	if closedNow {
		s.notifyClosed(actor, fence)
	} else {
		logEntry("close", actor, id).Info("cash fence already closed")
	}

	return fence, nil
}

// UpdateTotals записывает посчитанные суммы наличных и чеков в открытую смену
func (s *CashFenceService) UpdateTotals(actor Actor, id uint, dto UpdateTotalsDTO) (fence *models.CashFence, err error) {
	start := time.Now()
	defer func() { utils.LogOperation("update_totals", start, err) }()

	// Валидируем DTO
	if err := s.validator.Struct(dto); err != nil {
		return nil, newValidationError(err)
	}

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, &StorageError{Op: "update_totals", Err: tx.Error}
	}

	result := tx.Model(&models.CashFence{}).
		Where("rowid = ? AND entity = ? AND status = ?", id, actor.Entity, int(models.CashFenceStatusDraft)).
		Updates(map[string]interface{}{
			"cash":   dto.Cash,
			"cheque": dto.Cheque,
		})
	if result.Error != nil {
		tx.Rollback()
		return nil, &StorageError{Op: "update_totals", Err: result.Error}
	}

	fence, err = s.reload(tx, actor, id, "update_totals")
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Строка есть, но не обновилась - смена уже не открыта
	if result.RowsAffected == 0 {
		tx.Rollback()
		if !fence.IsClosed() {
			logEntry("update_totals", actor, id).Warnf("unexpected status %s", fence.Status)
		}
		return nil, ErrCashFenceClosed
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, &StorageError{Op: "update_totals", Err: err}
	}

	return fence, nil
}

// Fetch загружает смену в fence. Если смена не найдена, возвращает nil и не трогает fence.
func (s *CashFenceService) Fetch(actor Actor, id uint, fence *models.CashFence) (err error) {
	start := time.Now()
	defer func() { utils.LogOperation("fetch", start, err) }()

	if fence == nil {
		return errors.New("fence не может быть nil")
	}

	logEntry("fetch", actor, id).Debug("fetching cash fence")
	var row models.CashFence
	result := s.db.Where("rowid = ? AND entity = ?", id, actor.Entity).Find(&row)
	if result.Error != nil {
		return &StorageError{Op: "fetch", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return nil
	}

	row.SyncRef()
	*fence = row
	return nil
}

// Get возвращает смену по ID или ErrCashFenceNotFound
func (s *CashFenceService) Get(actor Actor, id uint) (*models.CashFence, error) {
	var fence models.CashFence
	if err := s.Fetch(actor, id, &fence); err != nil {
		return nil, err
	}
	if fence.ID == 0 {
		return nil, ErrCashFenceNotFound
	}
	return &fence, nil
}

// List возвращает смены организации, начиная с самых новых
func (s *CashFenceService) List(actor Actor, filter ListFilter) (fences []models.CashFence, err error) {
	start := time.Now()
	defer func() { utils.LogOperation("list", start, err) }()

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := s.db.Where("entity = ?", actor.Entity)
	if filter.PosModule != "" {
		query = query.Where("posmodule = ?", filter.PosModule)
	}
	if filter.PosNumber != "" {
		query = query.Where("posnumber = ?", filter.PosNumber)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", int(*filter.Status))
	}

	if err := query.Order("rowid DESC").Limit(limit).Offset(offset).Find(&fences).Error; err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}

	// Если смен не найдено, возвращаем пустой слайс
	if len(fences) == 0 {
		return []models.CashFence{}, nil
	}
	for i := range fences {
		fences[i].SyncRef()
	}
	return fences, nil
}

// reload перечитывает смену внутри транзакции
func (s *CashFenceService) reload(tx *gorm.DB, actor Actor, id uint, op string) (*models.CashFence, error) {
	var fence models.CashFence
	result := tx.Where("rowid = ? AND entity = ?", id, actor.Entity).Find(&fence)
	if result.Error != nil {
		return nil, &StorageError{Op: op, Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return nil, ErrCashFenceNotFound
	}
	fence.SyncRef()
	return &fence, nil
}

// notifyClosed отправляет уведомление о закрытии смены, ошибки только логируются
func (s *CashFenceService) notifyClosed(actor Actor, fence *models.CashFence) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendCashFenceClosedNotification(fence); err != nil {
		logEntry("close", actor, fence.ID).WithError(err).Warn("ошибка отправки уведомления")
	}
}
