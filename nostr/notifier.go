package nostr

import (
	"context"
	"fmt"
	"time"

	gonostr "github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip04"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lncalendar/lncalendar/models"
)

const (
	maxRelays      = 50
	dispatchWindow = 10 * time.Second
)

// Notifier sends best-effort NIP-04 encrypted direct messages signed with the
// calendar's configured nostr identity. Every failure is logged and dropped;
// delivery is never part of booking correctness.
type Notifier struct {
	db *gorm.DB
}

func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{db: db}
}

// Notify dispatches msg to the recipient in a detached goroutine. The caller
// never waits on, or learns about, the outcome.
func (n *Notifier) Notify(recipientPubkey, msg string) {
	if recipientPubkey == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchWindow+5*time.Second)
		defer cancel()
		if err := n.send(ctx, recipientPubkey, msg); err != nil {
			log.Warn().Err(err).Msg("nostr notification failed")
		}
	}()
}

func (n *Notifier) send(ctx context.Context, recipientPubkey, msg string) error {
	var settings models.CalendarSettings
	if err := n.db.WithContext(ctx).First(&settings).Error; err != nil {
		return fmt.Errorf("calendar settings not configured")
	}
	if settings.NostrPrivateKey == "" || len(settings.Relays) == 0 {
		return fmt.Errorf("nostr identity or relays not configured")
	}

	sk, err := ParsePrivateKey(settings.NostrPrivateKey)
	if err != nil {
		return err
	}
	pk, err := gonostr.GetPublicKey(sk)
	if err != nil {
		return err
	}
	recipient, err := NormalizePublicKey(ctx, recipientPubkey)
	if err != nil {
		return err
	}

	shared, err := nip04.ComputeSharedSecret(recipient, sk)
	if err != nil {
		return err
	}
	content, err := nip04.Encrypt(msg, shared)
	if err != nil {
		return err
	}

	event := gonostr.Event{
		PubKey:    pk,
		CreatedAt: gonostr.Now(),
		Kind:      gonostr.KindEncryptedDirectMessage,
		Tags:      gonostr.Tags{gonostr.Tag{"p", recipient}},
		Content:   content,
	}
	if err := event.Sign(sk); err != nil {
		return err
	}

	relays := settings.Relays
	if len(relays) > maxRelays {
		relays = relays[:maxRelays]
	}

	publishCtx, cancel := context.WithTimeout(ctx, dispatchWindow)
	defer cancel()

	done := make(chan struct{}, len(relays))
	for _, url := range relays {
		go func(url string) {
			defer func() { done <- struct{}{} }()
			relay, err := gonostr.RelayConnect(publishCtx, url)
			if err != nil {
				log.Debug().Err(err).Str("relay", url).Msg("relay connect failed")
				return
			}
			defer relay.Close()
			if err := relay.Publish(publishCtx, event); err != nil {
				log.Debug().Err(err).Str("relay", url).Msg("relay publish failed")
			}
		}(url)
	}

	for range relays {
		select {
		case <-done:
		case <-publishCtx.Done():
			return nil
		}
	}
	return nil
}
