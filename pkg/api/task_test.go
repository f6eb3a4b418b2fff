package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalTime_Unmarshal(t *testing.T) {
	due := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		want    *time.Time
		name    string
		body    string
		wantSet bool
		wantErr bool
	}{
		{name: "absent", body: `{"title":"x"}`},
		{name: "explicit null", body: `{"dueDate":null}`, wantSet: true},
		{name: "timestamp", body: `{"dueDate":"2025-06-10T15:00:00Z"}`, wantSet: true, want: &due},
		{name: "garbage", body: `{"dueDate":"tomorrow"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req TaskRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSet, req.DueDate.Set)
			if tt.want == nil {
				assert.Nil(t, req.DueDate.Time)
				return
			}
			require.NotNil(t, req.DueDate.Time)
			assert.True(t, tt.want.Equal(*req.DueDate.Time))
		})
	}
}

func TestOptionalTime_Marshal(t *testing.T) {
	title := "x"
	due := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)

	data, err := json.Marshal(TaskRequest{Title: &title})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"x"}`, string(data))

	data, err = json.Marshal(TaskRequest{DueDate: NewOptionalTime(nil)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dueDate":null}`, string(data))

	data, err = json.Marshal(TaskRequest{DueDate: NewOptionalTime(&due)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dueDate":"2025-06-10T15:00:00Z"}`, string(data))
}
