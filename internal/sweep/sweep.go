// Package sweep runs the scheduled overdue-invoice transition: pending
// invoices past their due date are marked overdue, a notification is raised
// for the landlord, and a reminder email is sent to the customer.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"rental-service/internal/billing"
	"rental-service/internal/mailer"
	"rental-service/internal/model"
	"rental-service/pkg/config"
	"rental-service/prometheus"
)

// Sweeper owns the cron schedule and the sweep routine
type Sweeper struct {
	cron      *cron.Cron
	db        *gorm.DB
	mailer    mailer.Mailer
	cfg       *config.SweepConfig
	log       *zap.Logger
	isRunning bool
}

// New creates a sweeper over the given database and mailer
func New(db *gorm.DB, m mailer.Mailer, cfg *config.SweepConfig, log *zap.Logger) *Sweeper {
	return &Sweeper{
		cron:   cron.New(),
		db:     db,
		mailer: m,
		cfg:    cfg,
		log:    log,
	}
}

// Start registers the daily sweep job and starts the cron scheduler
func (s *Sweeper) Start() error {
	if !s.cfg.Enabled {
		s.log.Info("Overdue sweep is disabled in configuration")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		s.log.Info("Starting overdue invoice sweep")
		if err := s.RunOnce(context.Background(), time.Now()); err != nil {
			s.log.Error("Overdue sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	s.log.Info("Overdue sweep scheduled", zap.String("schedule", s.cfg.Schedule))
	return nil
}

// Stop stops the cron scheduler
func (s *Sweeper) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		s.log.Info("Overdue sweep stopped")
	}
}

// RunOnce marks every pending invoice whose due date has passed as overdue.
// Each invoice is transitioned in its own transaction; email delivery happens
// outside the transaction and a failed send never aborts the sweep.
func (s *Sweeper) RunOnce(ctx context.Context, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var due []model.Invoice
	if err := s.db.Where("status = ? AND due_date < ?", model.InvoicePending, today).Find(&due).Error; err != nil {
		return err
	}

	s.log.Info("Found invoices past due date", zap.Int("count", len(due)))

	for i := range due {
		invoice := &due[i]
		if err := s.markOverdue(invoice); err != nil {
			s.log.Error("Failed to mark invoice overdue",
				zap.Uint("invoice_id", invoice.ID),
				zap.Error(err))
			continue
		}
		prometheus.OverdueSweepCounter.WithLabelValues("marked_overdue").Inc()

		s.remind(ctx, invoice)
	}

	billing.RefreshOpenInvoicesGauge(s.db)
	return nil
}

// markOverdue transitions one invoice and raises the landlord notification.
// The status filter in the update keeps a concurrently paid or cancelled
// invoice from being clobbered. Landlords who turned notifications off still
// get the status transition, just no notification row.
func (s *Sweeper) markOverdue(invoice *model.Invoice) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Invoice{}).
			Where("id = ? AND status = ?", invoice.ID, model.InvoicePending).
			Update("status", model.InvoiceOverdue)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("invoice %d is no longer pending", invoice.ID)
		}
		invoice.Status = model.InvoiceOverdue

		var owner model.User
		switch err := tx.First(&owner, invoice.UserID).Error; {
		case err == nil && !owner.NotificationsEnabled:
			return nil
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		notification := model.Notification{
			UserID:    invoice.UserID,
			InvoiceID: invoice.ID,
			Message:   fmt.Sprintf("Invoice #%d is overdue: %.2f outstanding", invoice.ID, invoice.Remaining()),
		}
		return tx.Create(&notification).Error
	})
}

// remind sends the overdue reminder email and records the attempt
func (s *Sweeper) remind(ctx context.Context, invoice *model.Invoice) {
	var customer model.Customer
	if err := s.db.First(&customer, invoice.CustomerID).Error; err != nil {
		s.log.Warn("Customer lookup failed for reminder",
			zap.Uint("invoice_id", invoice.ID),
			zap.Error(err))
		return
	}
	if customer.Email == "" {
		s.log.Info("Customer has no email, skipping reminder",
			zap.Uint("customer_id", customer.ID))
		return
	}

	body := mailer.OverdueReminderBody(customer.Name, invoice.ID, invoice.Remaining(), invoice.DueDate)
	sendErr := s.mailer.Send(ctx, customer.Email, "Important: Invoice Payment Overdue", body)

	entry := model.EmailLog{
		InvoiceID:      invoice.ID,
		RecipientEmail: customer.Email,
		EmailType:      "overdue_reminder",
		Success:        sendErr == nil,
		SentAt:         time.Now(),
	}
	if sendErr != nil {
		entry.ErrorMessage = sendErr.Error()
		prometheus.OverdueSweepCounter.WithLabelValues("email_failed").Inc()
		s.log.Error("Reminder email failed",
			zap.Uint("invoice_id", invoice.ID),
			zap.String("recipient", customer.Email),
			zap.Error(sendErr))
	} else {
		prometheus.OverdueSweepCounter.WithLabelValues("email_sent").Inc()
	}

	if err := s.db.Create(&entry).Error; err != nil {
		s.log.Error("Failed to write email log", zap.Error(err))
	}
}
