package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdempotencyRecord_Replay_NullResponseColumns(t *testing.T) {
	// Before completion all response columns are NULL.
	var r IdempotencyRecord

	replay := r.replay()
	assert.Equal(t, 200, replay.StatusCode)
	assert.Equal(t, "application/json", replay.ContentType)
	assert.Nil(t, replay.Body)
}

func TestIdempotencyRecord_Replay_CompletedKey(t *testing.T) {
	status := 201
	contentType := "application/json; charset=utf-8"
	r := IdempotencyRecord{
		Status:      IdempotencyStatusSuccess,
		Response:    []byte(`{"id":"a"}`),
		StatusCode:  &status,
		ContentType: &contentType,
	}

	replay := r.replay()
	assert.Equal(t, 201, replay.StatusCode)
	assert.Equal(t, contentType, replay.ContentType)
	assert.Equal(t, []byte(`{"id":"a"}`), replay.Body)
}
