package transaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceValid(t *testing.T) {
	assert.True(t, SourceBankFeed.Valid())
	assert.True(t, SourceAccounting.Valid())
	assert.True(t, SourceFieldService.Valid())
	assert.False(t, Source("crm").Valid())
	assert.False(t, Source("").Valid())
}

func TestReviewStatusValid(t *testing.T) {
	assert.True(t, ReviewPending.Valid())
	assert.True(t, ReviewApproved.Valid())
	assert.True(t, ReviewRejected.Valid())
	assert.False(t, ReviewStatus("maybe").Valid())
}
