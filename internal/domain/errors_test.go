package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Buceo-api/internal/domain"
)

func TestValidationDenied_IsPorRazon(t *testing.T) {
	err := fmt.Errorf("assign: %w", domain.ScheduleConflict("IM-001"))

	assert.ErrorIs(t, err, domain.ErrScheduleConflict)
	assert.NotErrorIs(t, err, domain.ErrTeamRequired)

	d, ok := domain.AsDenied(err)
	assert.True(t, ok)
	assert.Equal(t, "IM-001", d.ConflictingImmersionID)
	assert.Contains(t, err.Error(), "IM-001")
}

func TestIsInfrastructure(t *testing.T) {
	assert.False(t, domain.IsInfrastructure(nil))
	assert.False(t, domain.IsInfrastructure(domain.ErrTeamRequired))
	assert.False(t, domain.IsInfrastructure(fmt.Errorf("x: %w", domain.ErrNotFound)))
	assert.True(t, domain.IsInfrastructure(errors.New("connection refused")))
	assert.True(t, domain.IsInfrastructure(domain.Infra("get crew", errors.New("timeout"))))
}
