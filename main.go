package main

import (
	"cashcontrol/config"
	"cashcontrol/controllers"
	"cashcontrol/database"
	"cashcontrol/middleware"
	"cashcontrol/services"
	"cashcontrol/utils"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// healthHandler проверяет доступность базы данных
func healthHandler(db *database.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// newServer собирает HTTP-сервер: gin снаружи, API-маршруты на gorilla/mux
func newServer(cfg *config.Config, db *database.Database, notifier services.Notifier) *gin.Engine {
	// Создаем роутер API
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.RouteTemplate, middleware.AuthMiddleware([]byte(cfg.JWT.SecretKey)))

	cashFenceController := controllers.NewCashFenceController(db, notifier, cfg.Server.BaseURL)
	cashFenceController.RegisterRoutes(api)

	engine := gin.New()
	engine.Use(middleware.Recovery(), middleware.Logger(), middleware.Metrics(), middleware.CORSMiddleware())

	engine.GET("/health", healthHandler(db))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.Any("/api/*path", gin.WrapH(router))

	return engine
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if err := utils.InitLogger(cfg.Log.Level, cfg.Log.Dir); err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}

	// Инициализируем подключение к базе данных
	db, err := database.NewDatabase(cfg)
	if err != nil {
		utils.Log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	// Уведомления о закрытии смен отправляются, только если настроен SMTP
	var notifier services.Notifier
	if emailService := services.NewEmailService(cfg); emailService != nil {
		notifier = emailService
	} else {
		utils.LogInfo("email notifications disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := newServer(cfg, db, notifier)

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	utils.LogInfo("Сервер запущен на порту %s", port)
	if err := engine.Run(port); err != nil {
		utils.Log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
