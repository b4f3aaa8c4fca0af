package usecase

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/circley-tech/storefront/internal/domain"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
)

// ContactUseCase принимает обращения с формы обратной связи и отдаёт их в админку.
type ContactUseCase struct {
	contactRepo ContactMessageRepository
	logger      logger.Logger
}

func NewContactUC(contactRepo ContactMessageRepository, logger logger.Logger) *ContactUseCase {
	return &ContactUseCase{contactRepo: contactRepo, logger: logger}
}

func (c *ContactUseCase) SendMessage(ctx context.Context, req *SendMessageReq) (*domain.ContactMessage, error) {
	const op = "ContactUseCase.SendMessage"

	message := domain.NewContactMessage(
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.Email),
		strings.TrimSpace(req.Message),
	)

	switch {
	case message.SenderName == "":
		return nil, e.Wrap(op, e.ErrSenderNameRequired)
	case utf8.RuneCountInString(message.SenderName) > domain.SenderNameMaxLen:
		return nil, e.Wrap(op, e.ErrSenderNameTooLong)
	case message.Message == "":
		return nil, e.Wrap(op, e.ErrMessageRequired)
	}

	addr, err := mail.ParseAddress(message.SenderEmail)
	if err != nil {
		return nil, e.Wrap(op, e.ErrInvalidEmail)
	}
	message.SenderEmail = addr.Address

	created, err := c.contactRepo.Create(ctx, message)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.logger.Infof("Contact message received. message_id: %d", created.ID)
	return created, nil
}

func (c *ContactUseCase) ListMessages(ctx context.Context, filter ContactFilter) ([]domain.ContactMessage, error) {
	const op = "ContactUseCase.ListMessages"

	messages, err := c.contactRepo.List(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return messages, nil
}

// SetRead отмечает обращение прочитанным или возвращает его в непрочитанные.
func (c *ContactUseCase) SetRead(ctx context.Context, id int64, read bool) (*domain.ContactMessage, error) {
	const op = "ContactUseCase.SetRead"

	message, err := c.contactRepo.SetRead(ctx, id, read)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return message, nil
}
