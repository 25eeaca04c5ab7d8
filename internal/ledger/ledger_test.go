// internal/ledger/ledger_test.go
package ledger

import (
	"testing"
	"time"

	"atm-backend/internal/domain"
	"atm-backend/internal/rules"
	"atm-backend/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestAccount(balance string) *domain.Account {
	acct := domain.NewAccount(100000000001, 1)
	acct.Balance = dec(balance)
	return acct
}

var (
	day1 = time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	day2 = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
)

func TestDeposit(t *testing.T) {
	led := New(newTestAccount("100.00"), rules.DefaultPolicy())

	newBalance, err := led.Deposit(dec("25.50"))
	require.NoError(t, err)
	assert.True(t, dec("125.50").Equal(newBalance))

	_, err = led.Deposit(dec("-5"))
	assert.ErrorIs(t, err, util.ErrInvalidAmount)
	assert.True(t, dec("125.50").Equal(led.Balance()), "rejected deposit must not change the balance")
}

func TestWithdraw(t *testing.T) {
	t.Run("ChargesFeeBelowThreshold", func(t *testing.T) {
		acct := newTestAccount("500.00")
		led := New(acct, rules.DefaultPolicy())

		newBalance, fee, err := led.Withdraw(dec("50.00"), day1)
		require.NoError(t, err)
		assert.True(t, dec("2.00").Equal(fee))
		assert.True(t, dec("448.00").Equal(newBalance), "total debit is amount plus fee")
		assert.True(t, dec("50.00").Equal(acct.DailyWithdrawn), "fee is not counted against the limit")
		require.NotNil(t, acct.LastWithdrawalDate)
		assert.True(t, sameDay(*acct.LastWithdrawalDate, day1))
	})

	t.Run("NoFeeAtThreshold", func(t *testing.T) {
		acct := newTestAccount("500.00")
		led := New(acct, rules.DefaultPolicy())

		newBalance, fee, err := led.Withdraw(dec("150.00"), day1)
		require.NoError(t, err)
		assert.True(t, fee.IsZero())
		assert.True(t, dec("350.00").Equal(newBalance))
	})

	t.Run("RejectionMutatesNothing", func(t *testing.T) {
		acct := newTestAccount("30.00")
		led := New(acct, rules.DefaultPolicy())

		_, _, err := led.Withdraw(dec("50.00"), day1)
		assert.ErrorIs(t, err, util.ErrInsufficientFunds)
		assert.True(t, dec("30.00").Equal(acct.Balance))
		assert.True(t, acct.DailyWithdrawn.IsZero())
		assert.Nil(t, acct.LastWithdrawalDate)
	})

	t.Run("DailyCounterAccumulatesWithinDay", func(t *testing.T) {
		acct := newTestAccount("100000.00")
		led := New(acct, rules.DefaultPolicy())

		_, _, err := led.Withdraw(dec("4900.00"), day1)
		require.NoError(t, err)

		// Exactly reaching the limit is allowed.
		_, _, err = led.Withdraw(dec("100.00"), day1)
		require.NoError(t, err)
		assert.True(t, dec("5000.00").Equal(acct.DailyWithdrawn))

		// Anything further today is rejected without touching state.
		_, _, err = led.Withdraw(dec("0.01"), day1)
		assert.ErrorIs(t, err, util.ErrDailyLimitExceeded)
		assert.True(t, dec("5000.00").Equal(acct.DailyWithdrawn))
	})

	t.Run("CounterResetsOnNewDay", func(t *testing.T) {
		acct := newTestAccount("100000.00")
		led := New(acct, rules.DefaultPolicy())

		_, _, err := led.Withdraw(dec("10.00"), day1)
		require.NoError(t, err)
		_, _, err = led.Withdraw(dec("10.00"), day2)
		require.NoError(t, err)

		assert.True(t, dec("10.00").Equal(acct.DailyWithdrawn), "day rollover restarts the counter")
		require.NotNil(t, acct.LastWithdrawalDate)
		assert.True(t, sameDay(*acct.LastWithdrawalDate, day2))
	})

	t.Run("NewDayUnblocksLimit", func(t *testing.T) {
		acct := newTestAccount("100000.00")
		led := New(acct, rules.DefaultPolicy())

		_, _, err := led.Withdraw(dec("5000.00"), day1)
		require.NoError(t, err)
		_, _, err = led.Withdraw(dec("5000.00"), day1)
		assert.ErrorIs(t, err, util.ErrDailyLimitExceeded)

		_, _, err = led.Withdraw(dec("5000.00"), day2)
		require.NoError(t, err)
	})
}

func TestTransfer(t *testing.T) {
	policy := rules.DefaultPolicy()

	t.Run("MovesAmountAndKeepsFeeOnSource", func(t *testing.T) {
		src := newTestAccount("200.00")
		dst := newTestAccount("50.00")
		dst.AccountNumber = 100000000002

		newBalance, fee, err := New(src, policy).Transfer(dec("50.00"), New(dst, policy), day1)
		require.NoError(t, err)
		assert.True(t, dec("2.00").Equal(fee))
		assert.True(t, dec("148.00").Equal(newBalance))
		assert.True(t, dec("100.00").Equal(dst.Balance), "target receives the amount without the fee")
	})

	t.Run("DailyLimitLeavesBothUntouched", func(t *testing.T) {
		src := newTestAccount("200.00")
		src.DailyWithdrawn = dec("4950.00")
		withdrawalDay := day1.Truncate(24 * time.Hour)
		src.LastWithdrawalDate = &withdrawalDay
		dst := newTestAccount("50.00")
		dst.AccountNumber = 100000000002

		_, _, err := New(src, policy).Transfer(dec("100.00"), New(dst, policy), day1)
		assert.ErrorIs(t, err, util.ErrDailyLimitExceeded)
		assert.True(t, dec("200.00").Equal(src.Balance))
		assert.True(t, dec("50.00").Equal(dst.Balance))
		assert.True(t, dec("4950.00").Equal(src.DailyWithdrawn))
	})

	t.Run("SameAccountRejected", func(t *testing.T) {
		src := newTestAccount("200.00")
		_, _, err := New(src, policy).Transfer(dec("10.00"), New(src, policy), day1)
		assert.ErrorIs(t, err, util.ErrSameAccountTransfer)
	})

	t.Run("CountsAgainstSourceDailyLimit", func(t *testing.T) {
		src := newTestAccount("100000.00")
		dst := newTestAccount("0.00")
		dst.AccountNumber = 100000000002

		_, _, err := New(src, policy).Transfer(dec("4000.00"), New(dst, policy), day1)
		require.NoError(t, err)
		assert.True(t, dec("4000.00").Equal(src.DailyWithdrawn))

		// A follow-up cash withdrawal shares the same daily allowance.
		_, _, err = New(src, policy).Withdraw(dec("1500.00"), day1)
		assert.ErrorIs(t, err, util.ErrDailyLimitExceeded)
	})
}
