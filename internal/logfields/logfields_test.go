package logfields

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttrs(t *testing.T) {
	assert.Equal(t, "chain", Chain("HLT_mu10").Key)
	assert.Equal(t, "HLT_mu10", Chain("HLT_mu10").Value.String())
	assert.Equal(t, int64(3), Legs(3).Value.Int64())
	assert.Equal(t, 1.5, Duration(1500*time.Microsecond).Value.Float64())
}

func TestError(t *testing.T) {
	assert.Equal(t, "", Error(nil).Value.String())
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
