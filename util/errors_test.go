package util

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ErrorUnknown},
		{"api 404", &APIError{StatusCode: 404, URL: "https://x"}, ErrorAPI},
		{"wrapped api", fmt.Errorf("lookup: %w", &APIError{StatusCode: 500}), ErrorAPI},
		{"validation", &ValidationError{Reason: "purl is empty"}, ErrorValidation},
		{"json syntax", jsonErr(), ErrorParsing},
		{"deadline", context.DeadlineExceeded, ErrorNetwork},
		{"plain", fmt.Errorf("boom"), ErrorUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func jsonErr() error {
	var v map[string]any
	return json.Unmarshal([]byte("{bad"), &v)
}

func TestAPIErrorPredicates(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 404}).IsNotFound())
	assert.True(t, (&APIError{StatusCode: 429}).IsRateLimited())
	assert.True(t, (&APIError{StatusCode: 503}).IsServerError())
	assert.False(t, (&APIError{StatusCode: 400}).IsServerError())
}

func TestDescribeErrorGivesActionableMessage(t *testing.T) {
	msg := DescribeError(&APIError{StatusCode: 429, URL: "https://api.osv.dev"})
	assert.NotEmpty(t, msg.Title)
	assert.NotEmpty(t, msg.Message)
	assert.NotEmpty(t, msg.Action)

	msg = DescribeError(jsonErr())
	assert.NotEmpty(t, msg.Title)
}
