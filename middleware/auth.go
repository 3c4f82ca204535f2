package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lncalendar/lncalendar/db"
	"github.com/lncalendar/lncalendar/models"
)

// Wallet returns the authenticated wallet set by RequireAdminKey or
// RequireInvoiceKey.
func Wallet(c *fiber.Ctx) *models.Wallet {
	wallet, _ := c.Locals("wallet").(*models.Wallet)
	return wallet
}

// UserWalletIDs returns the ids of every wallet belonging to the same user as
// the authenticated wallet.
func UserWalletIDs(c *fiber.Ctx) ([]string, error) {
	wallet := Wallet(c)
	if wallet == nil {
		return nil, errors.New("no authenticated wallet")
	}

	var ids []string
	err := db.DB.Model(&models.Wallet{}).
		Where("user_id = ?", wallet.UserID).
		Pluck("id", &ids).Error
	return ids, err
}

// RequireAdminKey authenticates the X-Api-Key header against wallet admin
// keys. Admin keys authorize mutations on the wallet's resources.
func RequireAdminKey() fiber.Handler {
	return requireKey("adminkey")
}

// RequireInvoiceKey authenticates the X-Api-Key header against either key
// tier; the invoice key grants read-only access.
func RequireInvoiceKey() fiber.Handler {
	return requireKey("inkey")
}

func requireKey(tier string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-Api-Key")
		if key == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "X-Api-Key header missing",
			})
		}

		var wallet models.Wallet
		query := db.DB.Where("admin_key = ?", key)
		if tier == "inkey" {
			query = db.DB.Where("admin_key = ? OR in_key = ?", key, key)
		}
		if err := query.First(&wallet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid API key",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to authenticate",
			})
		}

		c.Locals("wallet", &wallet)
		return c.Next()
	}
}

// RequireMasterKey guards the admin-only settings endpoints with the
// service-wide key from configuration.
func RequireMasterKey(masterKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if masterKey == "" || c.Get("X-Api-Key") != masterKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Admin key required",
			})
		}
		return c.Next()
	}
}
