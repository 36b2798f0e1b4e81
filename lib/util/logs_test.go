package util

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetLogLevel(t *testing.T) {
	logger := logrus.New()

	SetLogLevel(logger, "error")
	assert.Equal(t, logrus.ErrorLevel, logger.GetLevel())

	SetLogLevel(logger, "debug")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	SetLogLevel(logger, "warn")
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())

	SetLogLevel(logger, "other")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
