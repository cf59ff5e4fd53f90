package notification

import (
	"time"

	"terrasite_backend/internal/email"
	"terrasite_backend/internal/telegram"
	"terrasite_backend/internal/whatsapp"
	"terrasite_backend/platform/config"
	"terrasite_backend/platform/logger"
)

// ChannelsConfig combines the settings of every notifier.
type ChannelsConfig interface {
	config.SMTPConfig
	config.TelegramConfig
	config.WhatsAppConfig
}

// NewDispatcherFromConfig enables each channel whose settings are complete.
// A Telegram token the Bot API rejects disables that channel only.
func NewDispatcherFromConfig(cfg ChannelsConfig, log *logger.Logger) *Dispatcher {
	var notifiers []Notifier

	if cfg.IsSMTPEnabled() {
		notifiers = append(notifiers, email.NewSMTPSender(cfg))
	} else {
		log.Warn("SMTP not configured; email notifications disabled")
	}

	if cfg.IsTelegramEnabled() {
		tg, err := telegram.NewNotifier(cfg)
		if err != nil {
			log.Error("failed to initialize telegram notifier", "error", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	} else {
		log.Info("telegram not configured; telegram notifications disabled")
	}

	if cfg.IsWhatsAppEnabled() {
		notifiers = append(notifiers, whatsapp.NewClient(cfg))
	}

	return NewDispatcher(log, time.Local, notifiers...)
}
