package amqp

import (
	"bytes"
	"context"
	"testing"

	"github.com/YelzhanWeb/cafe/internal/adapter/logger"
	"github.com/YelzhanWeb/cafe/internal/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockKitchen struct {
	mock.Mock
}

func (m *MockKitchen) ProcessOrder(ctx context.Context, msg interfaces.OrderMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func TestOrderHandler(t *testing.T) {
	ctx := context.Background()
	kitchen := new(MockKitchen)
	kitchen.On("ProcessOrder", ctx, mock.MatchedBy(func(m interfaces.OrderMessage) bool {
		return m.OrderNumber == "ORD-20250821-0001" && m.Source == interfaces.SourceAPI
	})).Return(nil)

	h := NewOrderHandler(kitchen, logger.Nop())
	require.NoError(t, h.HandleOrder(ctx, []byte(`{"order_number":"ORD-20250821-0001","source":"api","items":[]}`)))
	assert.Error(t, h.HandleOrder(ctx, []byte(`not json`)))
	kitchen.AssertNumberOfCalls(t, "ProcessOrder", 1)
}

func TestNotificationHandler(t *testing.T) {
	var buf bytes.Buffer
	h := NewNotificationHandler(&buf, logger.Nop())

	body := []byte(`{"order_number":"ORD-20250821-0001","old_status":"pending","new_status":"confirmed","changed_by":"admin"}`)
	require.NoError(t, h.HandleNotification(context.Background(), body))
	assert.Equal(t, "Order ORD-20250821-0001: pending -> confirmed by admin\n", buf.String())
}
