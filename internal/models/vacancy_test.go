package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVacancySalaryBounds(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantFrom *int
		wantTo   *int
	}{
		{
			name:    "salary object absent",
			payload: `{"id":"1","salary":null}`,
		},
		{
			name:     "both bounds",
			payload:  `{"id":"1","salary":{"from":1000,"to":2000,"currency":"RUR"}}`,
			wantFrom: intPtr(1000),
			wantTo:   intPtr(2000),
		},
		{
			name:     "zero lower bound is kept",
			payload:  `{"id":"1","salary":{"from":0,"to":500}}`,
			wantFrom: intPtr(0),
			wantTo:   intPtr(500),
		},
		{
			name:    "explicit nulls",
			payload: `{"id":"1","salary":{"from":null,"to":null}}`,
		},
		{
			name:    "only upper bound",
			payload: `{"id":"1","salary":{"to":300000}}`,
			wantTo:  intPtr(300000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Vacancy
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &v))

			from, to := v.SalaryBounds()
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantTo, to)
		})
	}
}

func intPtr(v int) *int { return &v }
