package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/amarajasa/weddingpay/internal/app/api/server"
	notificationhandler "github.com/amarajasa/weddingpay/internal/app/service/notification_handler"
	notificationlog "github.com/amarajasa/weddingpay/internal/app/service/notification_log"
	"github.com/amarajasa/weddingpay/internal/app/service/statistics"
	"github.com/amarajasa/weddingpay/internal/app/service/transaction"
	"github.com/amarajasa/weddingpay/internal/platform/db"
	"github.com/amarajasa/weddingpay/internal/platform/midtrans"
	"github.com/amarajasa/weddingpay/pkg/config"
	"github.com/amarajasa/weddingpay/pkg/logger"
	"github.com/amarajasa/weddingpay/pkg/metrics"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	metrics.Module,
	midtrans.Module,
	server.Module,
	statistics.Module,
	notificationlog.Module,
	notificationhandler.Module,
	transaction.Module,
)
