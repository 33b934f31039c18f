package checkout

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"companyhouse/internal/ports"
)

// ErrDeclined is returned by a gateway that refused the card.
var ErrDeclined = errString("payment declined")

type errString string

func (e errString) Error() string { return string(e) }

// DeclinedCard is the test card number the simulated gateway always refuses.
const DeclinedCard = "4000000000000002"

// SimulatedGateway approves every charge except DeclinedCard. No money moves.
type SimulatedGateway struct{}

func (SimulatedGateway) Charge(ctx context.Context, c ports.Charge) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.CardNumber == DeclinedCard {
		return "", ErrDeclined
	}
	return "TXN_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")), nil
}
