package service

import (
	"context"
	"fmt"
	"html"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/adapter/email"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
)

// PurchaseReceipt describes one completed purchase.
type PurchaseReceipt struct {
	Listing entity.SaleListing
	Seller  entity.Owner
	Buyer   entity.Owner
}

type ReceiptService interface {
	// SendPurchaseReceipts mails both parties. Failures are logged, never returned.
	SendPurchaseReceipts(ctx context.Context, r PurchaseReceipt)
}

type receiptService struct {
	sender email.EmailSender
	log    logger.Logger
}

// NewReceiptService returns a service that only logs when sender is nil.
func NewReceiptService(sender email.EmailSender, log logger.Logger) ReceiptService {
	return &receiptService{sender: sender, log: log}
}

func (s *receiptService) SendPurchaseReceipts(ctx context.Context, r PurchaseReceipt) {
	if s.sender == nil {
		s.log.Debugf("Receipts disabled, skipping purchase of %s", r.Listing.ID())
		return
	}

	card := r.Listing.Photocard
	title := fmt.Sprintf("%s (%s) from %s", card.Idol, card.Group, card.Album)

	if r.Buyer.Email != "" {
		subject := fmt.Sprintf("You bought %s", title)
		text := receiptText("Thank you for your purchase.", title, r.Listing, "Seller", r.Seller)
		if err := s.sender.Send(ctx, []string{r.Buyer.Email}, subject, receiptHTML(text), text); err != nil {
			s.log.Warnf("Failed to send buyer receipt for %s to %s: %v", r.Listing.ID(), r.Buyer.UID, err)
		}
	}
	if r.Seller.Email != "" {
		subject := fmt.Sprintf("Your %s photocard was sold", title)
		text := receiptText("Your sale listing was bought.", title, r.Listing, "Buyer", r.Buyer)
		if err := s.sender.Send(ctx, []string{r.Seller.Email}, subject, receiptHTML(text), text); err != nil {
			s.log.Warnf("Failed to send seller receipt for %s to %s: %v", r.Listing.ID(), r.Seller.UID, err)
		}
	}
}

func receiptText(intro, title string, l entity.SaleListing, role string, other entity.Owner) string {
	name := other.DisplayName
	if name == "" {
		name = other.UID
	}
	return fmt.Sprintf(
		"%s\n\nPhotocard: %s\nPrice: $%d\nCondition: %s\nLocation: %s\n%s: %s\n",
		intro, title, l.Price, l.Condition, l.Location.Title, role, name,
	)
}

func receiptHTML(text string) string {
	return "<pre>" + html.EscapeString(text) + "</pre>"
}
