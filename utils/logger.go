package utils

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Log - общий логгер приложения
var Log = newLogger()

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

// InitLogger настраивает уровень логирования и, если задана директория, файл для логов
func InitLogger(level, dir string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if dir == "" {
		return nil
	}

	// Создаем директорию для логов, если она не существует
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(filepath.Join(dir, "cashcontrol.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	Log.SetOutput(file)
	return nil
}

// caller возвращает место вызова в формате file:line
func caller() logrus.Fields {
	_, file, line, _ := runtime.Caller(2)
	return logrus.Fields{"caller": filepath.Base(file) + ":" + strconv.Itoa(line)}
}

// LogInfo логирует информационное сообщение
func LogInfo(format string, v ...interface{}) {
	Log.WithFields(caller()).Infof(format, v...)
}

// LogError логирует сообщение об ошибке
func LogError(format string, v ...interface{}) {
	Log.WithFields(caller()).Errorf(format, v...)
}

// LogDebug логирует отладочное сообщение
func LogDebug(format string, v ...interface{}) {
	Log.WithFields(caller()).Debugf(format, v...)
}

// LogOperation логирует операцию с метриками
func LogOperation(operation string, startTime time.Time, err error) {
	duration := time.Since(startTime)
	entry := Log.WithFields(logrus.Fields{
		"operation": operation,
		"duration":  duration.String(),
	})
	if err != nil {
		entry.WithError(err).Error("operation failed")
	} else {
		entry.Info("operation completed")
	}
	RecordOperation(operation, err)
}
