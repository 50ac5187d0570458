package handler

import (
	"testing"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("from", "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseDate("from", "2026-10-18")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.Local), *got)

	_, err = parseDate("to", "2026-02-30")
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeValidation, domainErr.Code)
	assert.Contains(t, domainErr.Message, "to must be a date")
}
