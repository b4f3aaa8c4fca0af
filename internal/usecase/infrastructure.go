package usecase

import "context"

type ImagesInfra interface {
	UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// EventEncoder сериализует полезную нагрузку события outbox.
type EventEncoder interface {
	Encode(event *OrderEvent) ([]byte, error)
}

// TxManager выполняет функцию в одной транзакции БД.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
