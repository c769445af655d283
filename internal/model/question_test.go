package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionOption(t *testing.T) {
	q := Question{OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d"}
	assert.Equal(t, "a", q.Option("A"))
	assert.Equal(t, "b", q.Option("B"))
	assert.Equal(t, "c", q.Option("C"))
	assert.Equal(t, "d", q.Option("D"))
	assert.Equal(t, "", q.Option("E"))
	assert.Equal(t, "", q.Option(""))
}

func TestStudentViewStripsAnswerKey(t *testing.T) {
	q := Question{
		ID:            5,
		Text:          "?",
		OptionA:       "a",
		OptionB:       "b",
		OptionC:       "c",
		OptionD:       "d",
		CorrectOption: "C",
		Explanation:   "because",
	}

	raw, err := json.Marshal(q.StudentView())
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "correct_option")
	assert.NotContains(t, fields, "explanation")
	assert.EqualValues(t, 5, fields["id"])
}
