package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lncalendar/lncalendar/lightning"
	"github.com/lncalendar/lncalendar/models"
)

// PaymentTag marks invoices created by this extension; payment events carrying
// any other tag are not ours and must be ignored.
const PaymentTag = "lncalendar"

// RetentionWindow is how long an unpaid appointment is kept before the purge
// sweep deletes it.
const RetentionWindow = 24 * time.Hour

// Converter is the slice of the exchange-rate contract this package needs.
type Converter interface {
	FiatAsSats(ctx context.Context, amount float64, currency string) (int64, error)
}

// Notifier delivers best-effort out-of-band messages; implementations must
// never block the caller.
type Notifier interface {
	Notify(recipientPubkey, msg string)
}

// Mailer sends best-effort confirmation mail.
type Mailer interface {
	Configured() bool
	SendEmail(to, subject, body string) error
}

// Service owns the appointment lifecycle: slot reservation, invoice creation,
// payment confirmation and purging.
type Service struct {
	db        *gorm.DB
	ln        lightning.Client
	converter Converter
	notifier  Notifier
	mailer    Mailer

	// StrictSlotCheck rejects bookings outside the schedule window or
	// overlapping an unavailable block. Off, payment alone gates validity.
	StrictSlotCheck bool
}

func NewService(db *gorm.DB, ln lightning.Client, converter Converter) *Service {
	return &Service{db: db, ln: ln, converter: converter, StrictSlotCheck: true}
}

// WithNotifier attaches the nostr dispatcher.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// WithMailer attaches the SMTP dispatcher.
func (s *Service) WithMailer(m Mailer) *Service {
	s.mailer = m
	return s
}

// InvoiceResult is what a client needs to pay for a new appointment.
type InvoiceResult struct {
	PaymentHash    string `json:"payment_hash"`
	PaymentRequest string `json:"payment_request"`
}

// CreateAppointment reserves a slot: it verifies the schedule and slot, asks
// the host for an invoice and only then persists the unpaid appointment keyed
// by the invoice's payment hash. A failed invoice call leaves no row behind.
func (s *Service) CreateAppointment(ctx context.Context, data models.CreateAppointment) (*InvoiceResult, error) {
	var schedule models.Schedule
	if err := s.db.WithContext(ctx).First(&schedule, "id = ?", data.Schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	start, err := time.Parse(models.TimeLayout, data.StartTime)
	if err != nil {
		return nil, ErrInvalidTime
	}
	if _, err := time.Parse(models.TimeLayout, data.EndTime); err != nil {
		return nil, ErrInvalidTime
	}

	if s.StrictSlotCheck {
		if !schedule.CoversSlot(start) {
			return nil, ErrOutsideSchedule
		}
		blocked, err := s.slotBlocked(ctx, schedule.ID, data.StartTime)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, ErrSlotUnavailable
		}
	}

	var taken int64
	err = s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("schedule = ? AND start_time = ? AND paid = ?", schedule.ID, data.StartTime, true).
		Count(&taken).Error
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, ErrSlotTaken
	}

	amountSats, err := s.expectedSats(ctx, &schedule)
	if err != nil {
		return nil, err
	}

	// Invoices go to the schedule owner's wallet when we know its key.
	var walletKey string
	var wallet models.Wallet
	if err := s.db.WithContext(ctx).First(&wallet, "id = ?", schedule.Wallet).Error; err == nil {
		walletKey = wallet.InKey
	}

	invoice, err := s.ln.CreateInvoice(ctx, lightning.InvoiceParams{
		WalletKey: walletKey,
		Amount:    amountSats,
		Memo:      schedule.Name,
		Extra: map[string]string{
			"tag":   PaymentTag,
			"name":  data.Name,
			"email": data.Email,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	appointment := models.Appointment{
		ID:          invoice.PaymentHash,
		Name:        data.Name,
		Email:       data.Email,
		NostrPubkey: data.NostrPubkey,
		Info:        data.Info,
		StartTime:   data.StartTime,
		EndTime:     data.EndTime,
		Schedule:    schedule.ID,
	}
	if err := s.db.WithContext(ctx).Create(&appointment).Error; err != nil {
		return nil, err
	}

	return &InvoiceResult{
		PaymentHash:    invoice.PaymentHash,
		PaymentRequest: invoice.Bolt11,
	}, nil
}

func (s *Service) slotBlocked(ctx context.Context, scheduleID, startTime string) (bool, error) {
	var blocks []models.UnavailableTime
	if err := s.db.WithContext(ctx).Where("schedule = ?", scheduleID).Find(&blocks).Error; err != nil {
		return false, err
	}
	for _, b := range blocks {
		if b.Blocks(startTime) {
			return true, nil
		}
	}
	return false, nil
}

// expectedSats computes the settlement amount in sats at the current rate.
// For "sat" schedules the stored amount is the answer; fiat amounts are stored
// in cents and converted at call time.
func (s *Service) expectedSats(ctx context.Context, schedule *models.Schedule) (int64, error) {
	if schedule.Currency == "" || schedule.Currency == "sat" {
		return schedule.Amount, nil
	}
	return s.converter.FiatAsSats(ctx, float64(schedule.Amount)/100, schedule.Currency)
}

// Confirm applies the paid transition for a settled payment event. A missing
// appointment is a race with deletion or purge and is skipped with a warning;
// a second settlement event for an already-paid appointment is flagged for
// refund. Only the payment-event path may flag a refund; the poll path never
// does, since re-polling a settled invoice is normal client behavior.
func (s *Service) Confirm(ctx context.Context, payment *lightning.Payment) error {
	var appointment models.Appointment
	err := s.db.WithContext(ctx).First(&appointment, "id = ?", payment.PaymentHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("payment_hash", payment.PaymentHash).Msg("appointment not found for settled payment")
		return nil
	}
	if err != nil {
		return err
	}

	if appointment.Paid {
		log.Warn().Str("appointment", appointment.ID).Msg("appointment already paid, flagging for refund")
		appointment.Extra.MustRefund = true
		return s.db.WithContext(ctx).Select("extra").Updates(&appointment).Error
	}

	_, err = s.settle(ctx, &appointment, payment)
	return err
}

// settle runs the tolerance check and the conditional paid-transition, and
// reports whether the appointment is paid afterwards. The transition is a
// conditional update on paid=false, and only the call that wins the update
// fires the one-shot notifications. A missing schedule is a broken invariant
// and reported as an error.
func (s *Service) settle(ctx context.Context, appointment *models.Appointment, payment *lightning.Payment) (bool, error) {
	var schedule models.Schedule
	if err := s.db.WithContext(ctx).First(&schedule, "id = ?", appointment.Schedule).Error; err != nil {
		return false, fmt.Errorf("schedule %s missing for appointment %s: %w", appointment.Schedule, appointment.ID, err)
	}

	expectedSats, err := s.expectedSats(ctx, &schedule)
	if err != nil {
		return false, err
	}
	expectedMsat := expectedSats * 1000

	// One-sided 1% tolerance: rate drift between invoice creation and
	// settlement must not reject honest payers; real underpayment must.
	if payment.Amount*100 < expectedMsat*99 {
		log.Warn().
			Str("appointment", appointment.ID).
			Int64("received_msat", payment.Amount).
			Int64("expected_msat", expectedMsat).
			Msg("settlement below tolerance, appointment stays unpaid")
		return false, nil
	}

	res := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND paid = ?", appointment.ID, false).
		Update("paid", true)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the race to a concurrent confirmation; the row is paid.
		return true, nil
	}

	log.Info().Str("appointment", appointment.ID).Str("schedule", schedule.ID).Msg("appointment paid")
	s.notifyBooked(appointment, &schedule)
	return true, nil
}

// CheckInvoice is the poll fallback for clients the event stream does not
// reach. It reports the appointment's current paid flag, applying the paid
// transition first when the host says the invoice settled.
func (s *Service) CheckInvoice(ctx context.Context, scheduleID, paymentHash string) (bool, error) {
	var schedule models.Schedule
	if err := s.db.WithContext(ctx).First(&schedule, "id = ?", scheduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrScheduleNotFound
		}
		return false, err
	}

	var appointment models.Appointment
	err := s.db.WithContext(ctx).First(&appointment, "id = ?", paymentHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrAppointmentNotFound
	}
	if err != nil {
		return false, err
	}
	if appointment.Paid {
		return true, nil
	}

	payment, err := s.ln.Payment(ctx, paymentHash)
	if err != nil {
		return false, ErrPaymentNotFound
	}
	if !payment.Settled {
		return false, nil
	}

	return s.settle(ctx, &appointment, payment)
}

// Purge deletes unpaid appointments older than the retention window.
// An empty scheduleID sweeps all schedules.
func (s *Service) Purge(ctx context.Context, scheduleID string) error {
	cutoff := time.Now().Add(-RetentionWindow)
	q := s.db.WithContext(ctx).Where("paid = ? AND created_at < ?", false, cutoff)
	if scheduleID != "" {
		q = q.Where("schedule = ?", scheduleID)
	}
	res := q.Delete(&models.Appointment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		log.Info().Int64("purged", res.RowsAffected).Str("schedule", scheduleID).Msg("purged stale unpaid appointments")
	}
	return nil
}

func (s *Service) notifyBooked(appointment *models.Appointment, schedule *models.Schedule) {
	if s.notifier != nil {
		if appointment.NostrPubkey != "" {
			msg := fmt.Sprintf(
				"[DO NOT REPLY TO THIS MESSAGE]\n\nYour appointment for %s is confirmed.\nDate: %s",
				schedule.Name, appointment.StartTime,
			)
			s.notifier.Notify(appointment.NostrPubkey, msg)
		}
		if schedule.PublicKey != "" {
			msg := fmt.Sprintf(
				"[DO NOT REPLY TO THIS MESSAGE]\n\nNew appointment booked on %s.\nClient: %s\nDate: %s",
				schedule.Name, appointment.Name, appointment.StartTime,
			)
			s.notifier.Notify(schedule.PublicKey, msg)
		}
	}

	if s.mailer != nil && s.mailer.Configured() && appointment.Email != "" {
		to := appointment.Email
		subject := fmt.Sprintf("Appointment confirmed - %s", schedule.Name)
		body := fmt.Sprintf(`
			<p>Dear %s,</p>
			<p>Your payment was received and your appointment is confirmed.</p>
			<ul>
				<li><strong>Schedule:</strong> %s</li>
				<li><strong>Start Time:</strong> %s</li>
				<li><strong>End Time:</strong> %s</li>
			</ul>
		`, appointment.Name, schedule.Name, appointment.StartTime, appointment.EndTime)
		go func() {
			if err := s.mailer.SendEmail(to, subject, body); err != nil {
				log.Warn().Err(err).Str("appointment", appointment.ID).Msg("confirmation email failed")
			}
		}()
	}
}
