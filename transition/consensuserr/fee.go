package consensuserr

import (
	"fmt"

	"github.com/rony4d/go-platform-drive/inter"
)

const CodeBalanceIsNotEnough Code = 30001

type BalanceIsNotEnoughError struct {
	Identity inter.Identifier
	Balance  inter.Credits
	Required inter.Credits
}

func (e BalanceIsNotEnoughError) Code() Code { return CodeBalanceIsNotEnough }
func (e BalanceIsNotEnoughError) Error() string {
	return fmt.Sprintf("identity %s balance %d is lower than required %d", e.Identity, e.Balance, e.Required)
}
