package controllers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/lncalendar/lncalendar/middleware"
	"github.com/lncalendar/lncalendar/nostr"
	"github.com/lncalendar/lncalendar/payments"
)

var (
	validate = validator.New()

	// Payments and Notifier are wired by main before the routes are served.
	Payments *payments.Service
	Notifier *nostr.Notifier
)

// Setup injects the service dependencies used by the handlers.
func Setup(svc *payments.Service, notifier *nostr.Notifier) {
	Payments = svc
	Notifier = notifier
}

// walletOwns reports whether the authenticated caller's user owns walletID.
func walletOwns(c *fiber.Ctx, walletID string) (bool, error) {
	ids, err := middleware.UserWalletIDs(c)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == walletID {
			return true, nil
		}
	}
	return false, nil
}
