package routes

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRules(t *testing.T) {
	log, hook := test.NewNullLogger()
	v := validator.New()

	assert.Equal(t, 0, registerRules(v, bindingRules, log))
	assert.Empty(t, hook.AllEntries())

	type payload struct {
		Status   string `validate:"room_status"`
		Category string `validate:"service_category"`
	}
	assert.NoError(t, v.Struct(payload{Status: "CLEANING", Category: "HOUSEKEEPING"}))
	assert.Error(t, v.Struct(payload{Status: "FLOODED", Category: "HOUSEKEEPING"}))

	// an empty tag is refused by the validator
	failed := registerRules(v, map[string]validator.Func{"": bindingRules["room_status"]}, log)
	assert.Equal(t, 1, failed)
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "register binding rule", entry.Message)
	assert.Error(t, entry.Data[logrus.ErrorKey].(error))
}
