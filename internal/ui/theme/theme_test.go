package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeStyles(t *testing.T) {
	assert.Equal(t, Finite.GetForeground(), Outcome("finite").GetForeground())
	assert.Equal(t, AllCorrect.GetForeground(), Outcome("all_correct").GetForeground())
	assert.Equal(t, AllIncorrect.GetForeground(), Outcome("all_incorrect").GetForeground())
	assert.Equal(t, Hint.GetForeground(), Outcome("something else").GetForeground())
}

func TestFieldContainsLabelAndValue(t *testing.T) {
	out := Field("theta", "0.6287")
	assert.Contains(t, out, "theta")
	assert.Contains(t, out, "0.6287")
}

func TestTableRendersRows(t *testing.T) {
	out := Table("ID", "A").Row("q1", "1.2").Row("q2", "0.9").String()
	for _, want := range []string{"ID", "q1", "q2", "0.9"} {
		assert.Contains(t, out, want)
	}
}
