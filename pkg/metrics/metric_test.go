package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObserveQuery(t *testing.T) {
	before := QueryCount("jps", RESULT_FOUND)
	ObserveQuery("jps", RESULT_FOUND, time.Millisecond, 12)
	ObserveQuery("jps", RESULT_FOUND, 2*time.Millisecond, 40)
	ObserveQuery("jps", RESULT_INVALID_QUERY, 0, 0)

	assert.Equal(t, before+2, QueryCount("jps", RESULT_FOUND))
	assert.GreaterOrEqual(t, QueryCount("jps", RESULT_INVALID_QUERY), 1.0)
	assert.Equal(t, 0.0, QueryCount("astar", RESULT_TIME_BUDGET))
}
