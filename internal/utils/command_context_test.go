package utils_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/temirov/multireview/internal/utils"
)

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithConfigurationFilePath(context.Background(), "/etc/multireview/config.yaml")
	executionContext = accessor.WithRunIdentifier(executionContext, "fixed-run")

	configurationFilePath, configurationFound := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, configurationFound)
	require.Equal(testInstance, "/etc/multireview/config.yaml", configurationFilePath)

	runIdentifier, runIdentifierFound := accessor.RunIdentifier(executionContext)
	require.True(testInstance, runIdentifierFound)
	require.Equal(testInstance, "fixed-run", runIdentifier)
}

func TestCommandContextAccessorGeneratesRunIdentifier(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithRunIdentifier(nil, "")
	runIdentifier, runIdentifierFound := accessor.RunIdentifier(executionContext)
	require.True(testInstance, runIdentifierFound)

	_, parseError := uuid.Parse(runIdentifier)
	require.NoError(testInstance, parseError)
}

func TestCommandContextAccessorMissingValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, configurationFound := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, configurationFound)

	_, runIdentifierFound := accessor.RunIdentifier(nil)
	require.False(testInstance, runIdentifierFound)
}
