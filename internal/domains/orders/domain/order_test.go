package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validShipping() ShippingDetails {
	return ShippingDetails{
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		AddressLine:   "12 Analytical Way",
		City:          "London",
		ZipCode:       "N1 9GU",
	}
}

func TestNewOrder_ComputesTotalFromLines(t *testing.T) {
	lines := []OrderLine{
		{VariantID: "v1", Quantity: 2, Price: 500},
		{VariantID: "v2", Quantity: 1, Price: 1200},
	}

	order, err := NewOrder(nil, validShipping(), lines)
	require.NoError(t, err)
	require.Equal(t, int64(2200), order.Total)
	require.Equal(t, StatusPending, order.Status)
	require.NotEmpty(t, order.ID)
	require.Nil(t, order.UserID)
}

func TestNewOrder_RequiresLines(t *testing.T) {
	_, err := NewOrder(nil, validShipping(), nil)
	require.ErrorIs(t, err, ErrNoLines)
}

func TestShippingDetails_Validate(t *testing.T) {
	shipping := validShipping()
	require.NoError(t, shipping.Validate())

	missingName := validShipping()
	missingName.CustomerName = "  "
	require.ErrorIs(t, missingName.Validate(), ErrIncompleteShipping)

	badEmail := validShipping()
	badEmail.CustomerEmail = "not-an-email"
	require.ErrorIs(t, badEmail.Validate(), ErrIncompleteShipping)
}

func TestCartLine_Validate(t *testing.T) {
	require.NoError(t, CartLine{VariantID: "v1", Quantity: 1}.Validate())
	require.ErrorIs(t, CartLine{VariantID: "", Quantity: 1}.Validate(), ErrInvalidQuantity)
	require.ErrorIs(t, CartLine{VariantID: "v1", Quantity: 0}.Validate(), ErrInvalidQuantity)
	require.ErrorIs(t, CartLine{VariantID: "v1", Quantity: -3}.Validate(), ErrInvalidQuantity)
}

func TestTransition_FollowsLifecycle(t *testing.T) {
	order, err := NewOrder(nil, validShipping(), []OrderLine{{VariantID: "v1", Quantity: 1, Price: 100}})
	require.NoError(t, err)

	require.NoError(t, order.Transition(StatusShipped))
	require.Equal(t, StatusShipped, order.Status)
	require.NoError(t, order.Transition(StatusDelivered))
	require.Equal(t, StatusDelivered, order.Status)

	// Delivered is terminal.
	require.ErrorIs(t, order.Transition(StatusCancelled), ErrInvalidTransition)
}

func TestTransition_PendingCanCancel(t *testing.T) {
	order, err := NewOrder(nil, validShipping(), []OrderLine{{VariantID: "v1", Quantity: 1, Price: 100}})
	require.NoError(t, err)

	require.NoError(t, order.Transition(StatusCancelled))
	require.ErrorIs(t, order.Transition(StatusShipped), ErrInvalidTransition)
}

func TestTransition_RejectsUnknownStatus(t *testing.T) {
	order, err := NewOrder(nil, validShipping(), []OrderLine{{VariantID: "v1", Quantity: 1, Price: 100}})
	require.NoError(t, err)
	require.ErrorIs(t, order.Transition(Status("MISPLACED")), ErrInvalidStatus)
}
