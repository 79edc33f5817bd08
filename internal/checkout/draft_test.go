package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
)

func validDraft() *Draft {
	d := NewDraft()
	d.Phone = "+998901234567"
	d.City = "Ташкент"
	d.Address = "ул. Мира, дом 5"
	return d
}

func TestNewDraft_Defaults(t *testing.T) {
	d := NewDraft()
	assert.Equal(t, domain.StepContact, d.Step)
	assert.Equal(t, domain.PaymentCash, d.PaymentMethod)
	assert.False(t, d.Coupon.Applied)
}

func TestAdvance_BlockedByInvalidPhone(t *testing.T) {
	d := NewDraft()
	d.Phone = "901234567" // missing prefix

	err := d.Advance()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "phone")
	assert.Equal(t, domain.StepContact, d.Step)
}

func TestAdvance_BlockedByInvalidDelivery(t *testing.T) {
	d := validDraft()
	require.NoError(t, d.Advance())
	d.Address = "ул. Мира" // 8 runes

	err := d.Advance()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "address")
	assert.NotContains(t, verr.Fields, "city")
	assert.Equal(t, domain.StepDelivery, d.Step)
}

func TestAdvance_WalksToPaymentAndCaps(t *testing.T) {
	d := validDraft()
	require.NoError(t, d.Advance())
	require.NoError(t, d.Advance())
	assert.Equal(t, domain.StepPayment, d.Step)

	// step 3 is structurally valid and the cap holds
	require.NoError(t, d.Advance())
	assert.Equal(t, domain.StepPayment, d.Step)
}

func TestRetreat(t *testing.T) {
	d := validDraft()
	require.NoError(t, d.Advance())
	d.Retreat()
	assert.Equal(t, domain.StepContact, d.Step)

	// floor at step 1
	d.Retreat()
	assert.Equal(t, domain.StepContact, d.Step)
}

func TestRetreat_AllowedWithInvalidFields(t *testing.T) {
	d := validDraft()
	require.NoError(t, d.Advance())
	d.Phone = ""
	d.Retreat()
	assert.Equal(t, domain.StepContact, d.Step)
}

func TestJumpTo_BackwardOnly(t *testing.T) {
	d := validDraft()
	require.NoError(t, d.Advance())
	require.NoError(t, d.Advance())

	require.NoError(t, d.JumpTo(domain.StepContact))
	assert.Equal(t, domain.StepContact, d.Step)

	err := d.JumpTo(domain.StepPayment)
	require.ErrorIs(t, err, ErrForwardJump)
	assert.Equal(t, domain.StepContact, d.Step)
}

func TestJumpTo_UnknownStep(t *testing.T) {
	d := validDraft()
	require.ErrorIs(t, d.JumpTo(domain.Step(0)), ErrUnknownStep)
	require.ErrorIs(t, d.JumpTo(domain.Step(4)), ErrUnknownStep)
}

func TestValidateAll_CollectsEveryField(t *testing.T) {
	d := NewDraft()
	errs := d.ValidateAll()
	assert.Len(t, errs, 3)

	d = validDraft()
	assert.Empty(t, d.ValidateAll())
}
