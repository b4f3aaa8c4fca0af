package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/circley-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactUseCase_SendMessage(t *testing.T) {
	env := newTestEnv()

	message, err := env.contact.SendMessage(context.Background(), &SendMessageReq{
		Name:    " Luis ",
		Email:   "Luis Perez <luis@example.com>",
		Message: "¿Tienen envíos a Cuenca?",
	})
	require.NoError(t, err)

	assert.NotZero(t, message.ID)
	assert.Equal(t, "Luis", message.SenderName)
	assert.Equal(t, "luis@example.com", message.SenderEmail)
	assert.False(t, message.IsRead)
	assert.Equal(t, testNow, message.SentAt)
}

func TestContactUseCase_SendMessageValidation(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tests := []struct {
		name string
		req  SendMessageReq
		want error
	}{
		{"no name", SendMessageReq{Email: "a@example.com", Message: "hola"}, e.ErrSenderNameRequired},
		{"long name", SendMessageReq{Name: strings.Repeat("n", 121), Email: "a@example.com", Message: "hola"}, e.ErrSenderNameTooLong},
		{"no message", SendMessageReq{Name: "Ana", Email: "a@example.com", Message: "  "}, e.ErrMessageRequired},
		{"bad email", SendMessageReq{Name: "Ana", Email: "ana-at-example", Message: "hola"}, e.ErrInvalidEmail},
		{"no email", SendMessageReq{Name: "Ana", Message: "hola"}, e.ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.contact.SendMessage(ctx, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Empty(t, env.s.messages)
}

func TestContactUseCase_ReadFlag(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"Ana", "Luis", "Eva"} {
		m, err := env.contact.SendMessage(ctx, &SendMessageReq{Name: name, Email: "x@example.com", Message: "hola"})
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	read, err := env.contact.SetRead(ctx, ids[1], true)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	all, err := env.contact.ListMessages(ctx, ContactFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Eva", all[0].SenderName)

	unread, err := env.contact.ListMessages(ctx, ContactFilter{OnlyUnread: true})
	require.NoError(t, err)
	require.Len(t, unread, 2)
	for _, m := range unread {
		assert.NotEqual(t, ids[1], m.ID)
	}

	_, err = env.contact.SetRead(ctx, ids[1], false)
	require.NoError(t, err)
	unread, err = env.contact.ListMessages(ctx, ContactFilter{OnlyUnread: true})
	require.NoError(t, err)
	assert.Len(t, unread, 3)

	_, err = env.contact.SetRead(ctx, 999, true)
	assert.ErrorIs(t, err, e.ErrMessageNotFound)
}
