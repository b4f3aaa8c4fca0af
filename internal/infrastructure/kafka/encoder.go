package kafka

import (
	"fmt"
	"time"

	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/e"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ProtoEncoder кодирует событие заказа как google.protobuf.Struct.
// Денежные суммы передаются строками с двумя знаками.
type ProtoEncoder struct{}

func NewProtoEncoder() *ProtoEncoder {
	return &ProtoEncoder{}
}

func (ProtoEncoder) Encode(event *usecase.OrderEvent) ([]byte, error) {
	const op = "ProtoEncoder.Encode"

	ts := timestamppb.New(event.OccurredAt)
	if err := ts.CheckValid(); err != nil {
		return nil, e.Wrap(op, err)
	}

	payload, err := structpb.NewStruct(map[string]any{
		"event_id":     event.EventID.String(),
		"event_type":   string(event.Type),
		"order_id":     fmt.Sprintf("%d", event.OrderID),
		"order_number": event.OrderNumber.String(),
		"customer_id":  fmt.Sprintf("%d", event.CustomerID),
		"status":       string(event.Status),
		"subtotal":     event.Subtotal.StringFixed(2),
		"discount":     event.Discount.StringFixed(2),
		"total":        event.Total.StringFixed(2),
		"occurred_at":  ts.AsTime().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(payload)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return data, nil
}

// Decode разбирает полезную нагрузку обратно в набор полей.
func Decode(data []byte) (map[string]any, error) {
	var payload structpb.Struct
	if err := proto.Unmarshal(data, &payload); err != nil {
		return nil, e.Wrap("kafka.Decode", err)
	}

	return payload.AsMap(), nil
}
